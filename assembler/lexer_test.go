package assembler

import "testing"

func TestLexBasicLine(t *testing.T) {
	fileTable.reset()
	lx := NewLexer(fileTable.register("test.asm"))
	tokens, err := lx.Lex("LDA #$09\n")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	want := []TokenKind{Identifier, HashImmediate, HexNumber, Newline, EOF}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(tokens), len(want), tokens)
	}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, tokens[i].Kind, k)
		}
	}
	if tokens[2].Number.Value != 9 || tokens[2].Number.Width != Byte {
		t.Errorf("got %+v, want value 9 width Byte", tokens[2].Number)
	}
}

func TestLexHexWidthFromDigitCount(t *testing.T) {
	fileTable.reset()
	lx := NewLexer(fileTable.register("test.asm"))

	cases := []struct {
		src   string
		value int
		width Width
	}{
		{"$9", 9, Byte},
		{"$09", 9, Byte},
		{"$0900", 0x0900, Word},
		{"$FFFF", 0xFFFF, Word},
	}
	for _, c := range cases {
		tokens, err := lx.Lex(c.src + "\n")
		if err != nil {
			t.Fatalf("%s: Lex: %v", c.src, err)
		}
		num := tokens[0].Number
		if num.Value != c.value || num.Width != c.width {
			t.Errorf("%s: got %+v, want value %d width %v", c.src, num, c.value, c.width)
		}
	}
}

func TestLexBinaryWidthFromDigitCount(t *testing.T) {
	fileTable.reset()
	lx := NewLexer(fileTable.register("test.asm"))

	tokens, err := lx.Lex("%00001001\n")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if tokens[0].Number.Value != 9 || tokens[0].Number.Width != Byte {
		t.Errorf("got %+v, want value 9 width Byte", tokens[0].Number)
	}

	tokens, err = lx.Lex("%0000000100000000\n")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if tokens[0].Number.Value != 256 || tokens[0].Number.Width != Word {
		t.Errorf("got %+v, want value 256 width Word", tokens[0].Number)
	}
}

func TestLexDecimalWidthFromValue(t *testing.T) {
	fileTable.reset()
	lx := NewLexer(fileTable.register("test.asm"))

	tokens, err := lx.Lex("255\n")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if tokens[0].Number.Width != Byte {
		t.Errorf("255 should be tagged Byte, got %v", tokens[0].Number.Width)
	}

	tokens, err = lx.Lex("256\n")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if tokens[0].Number.Width != Word {
		t.Errorf("256 should be tagged Word, got %v", tokens[0].Number.Width)
	}
}

func TestLexOversizeHexIsError(t *testing.T) {
	fileTable.reset()
	lx := NewLexer(fileTable.register("test.asm"))
	if _, err := lx.Lex("$10000\n"); err == nil {
		t.Fatal("expected an error for a 5-digit hex literal")
	}
}

func TestLexLocalIdentifierAndDirective(t *testing.T) {
	fileTable.reset()
	lx := NewLexer(fileTable.register("test.asm"))
	tokens, err := lx.Lex("@loop: .ORG $0600\n")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if tokens[0].Kind != LocalIdentifier || tokens[0].Lexeme != "loop" {
		t.Errorf("got %+v, want LocalIdentifier \"loop\"", tokens[0])
	}
	if tokens[1].Kind != Colon {
		t.Errorf("got %s, want Colon", tokens[1].Kind)
	}
	if tokens[2].Kind != Directive || tokens[2].Lexeme != "org" {
		t.Errorf("got %+v, want Directive \"org\" (lowercased)", tokens[2])
	}
}

func TestLexStringAndComment(t *testing.T) {
	fileTable.reset()
	lx := NewLexer(fileTable.register("test.asm"))
	tokens, err := lx.Lex(`.ascii "hi" ; trailing comment, with a comma`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if tokens[1].Kind != String || tokens[1].Lexeme != "hi" {
		t.Errorf("got %+v, want String \"hi\"", tokens[1])
	}
}

func TestLexUnterminatedStringIsError(t *testing.T) {
	fileTable.reset()
	lx := NewLexer(fileTable.register("test.asm"))
	if _, err := lx.Lex(`.ascii "unterminated`); err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
}

func TestLexRegisterLettersStayPlainIdentifiers(t *testing.T) {
	fileTable.reset()
	lx := NewLexer(fileTable.register("test.asm"))
	tokens, err := lx.Lex("LDA $10,X\nLDA ($20),Y\n")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	var letters []string
	for _, tok := range tokens {
		if tok.Kind == Identifier && (tok.Lexeme == "X" || tok.Lexeme == "Y") {
			letters = append(letters, tok.Lexeme)
		}
	}
	if len(letters) != 2 || letters[0] != "X" || letters[1] != "Y" {
		t.Errorf("got %v, want [X Y] lexed as plain identifiers", letters)
	}
}

func TestLexLabelNamedXIsIdentifierNotRegister(t *testing.T) {
	fileTable.reset()
	lx := NewLexer(fileTable.register("test.asm"))
	tokens, err := lx.Lex("X: INX\n")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if tokens[0].Kind != Identifier || tokens[0].Lexeme != "X" {
		t.Errorf("got %+v, want a plain Identifier \"X\"", tokens[0])
	}
	if tokens[1].Kind != Colon {
		t.Errorf("got %s, want Colon", tokens[1].Kind)
	}
}

func TestLexIllegalCharacter(t *testing.T) {
	fileTable.reset()
	lx := NewLexer(fileTable.register("test.asm"))
	if _, err := lx.Lex("LDA ^5\n"); err == nil {
		t.Fatal("expected an error for an illegal character")
	}
}

func TestPositionIncludesFileName(t *testing.T) {
	fileTable.reset()
	idx := fileTable.register("main.asm")
	lx := NewLexer(idx)
	tokens, err := lx.Lex("!\n")
	if err == nil {
		t.Fatal("expected a lex error")
	}
	le, ok := err.(*LexError)
	if !ok {
		t.Fatalf("got %T, want *LexError", err)
	}
	if le.Pos.File != "main.asm" {
		t.Errorf("got file %q, want \"main.asm\"", le.Pos.File)
	}
	_ = tokens
}
