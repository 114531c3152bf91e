package assembler

import (
	"path/filepath"
	"strings"

	"github.com/ochaton/sixfiveasm/mos6502"
)

// errHalt unwinds every parser frame once the sink has recorded a
// fatal diagnostic. It is never shown to a user; it only short-circuits
// further parsing once compilation is already doomed.
type errHalt struct{}

func (errHalt) Error() string { return "halt" }

// Parser turns a token stream — including whatever .include splices in
// along the way — into a flat Program. One Parser handles an entire
// translation unit; recursive includes share its item list, its
// active-file stack (for cycle detection), and its notion of the most
// recent global label (so a global label defined just before an
// .include still scopes locals that follow the include).
type Parser struct {
	sink        *Sink
	provider    SourceProvider
	activeFiles []int
	items       []Item
	global      string
}

// NewParser returns a Parser reporting diagnostics to sink and
// resolving include/incbin paths through provider.
func NewParser(sink *Sink, provider SourceProvider) *Parser {
	return &Parser{sink: sink, provider: provider}
}

// ParseFile parses path as the top-level translation unit and returns
// the flattened program. The top-level file is read with an empty
// base directory; .include paths inside it are resolved against the
// directory of the file that names them.
func (p *Parser) ParseFile(path string) (*Program, error) {
	if err := p.includeFile(path, ""); err != nil {
		if _, ok := err.(errHalt); ok {
			return &Program{Items: p.items}, nil
		}
		return nil, err
	}
	return &Program{Items: p.items}, nil
}

func (p *Parser) includeFile(path, dir string) error {
	data, resolved, err := p.provider.Read(dir, path)
	if err != nil {
		p.sink.Errorf(KindFileNotFound, Position{}, "cannot open %q: %v", path, err)
		return errHalt{}
	}

	fileIndex := fileTable.register(resolved)
	for _, active := range p.activeFiles {
		if active == fileIndex {
			p.sink.Errorf(KindIncludeCycle, Position{File: resolved}, "include cycle: %q is already being parsed", resolved)
			return errHalt{}
		}
	}

	lx := NewLexer(fileIndex)
	tokens, err := lx.Lex(string(data))
	if err != nil {
		if le, ok := err.(*LexError); ok {
			p.sink.Errorf(KindLexError, le.Pos, "%s", le.Msg)
		}
		return errHalt{}
	}

	p.activeFiles = append(p.activeFiles, fileIndex)
	err = p.parseTokens(tokens, filepath.Dir(resolved))
	p.activeFiles = p.activeFiles[:len(p.activeFiles)-1]
	return err
}

func (p *Parser) parseTokens(tokens []Token, dir string) error {
	i := 0
	for i < len(tokens) {
		switch tokens[i].Kind {
		case EOF:
			return nil
		case Newline:
			i++
			continue
		}

		start := i
		for i < len(tokens) && tokens[i].Kind != Newline && tokens[i].Kind != EOF {
			i++
		}
		if err := p.parseStatement(tokens[start:i], dir); err != nil {
			return err
		}
		if p.sink.HasFatal() {
			return errHalt{}
		}
		if i < len(tokens) && tokens[i].Kind == Newline {
			i++
		}
	}
	return nil
}

// parseStatement handles one line's worth of tokens. It may recurse
// once, via includeFile, when the line is an .include directive; the
// returned error is non-nil only for errHalt.
func (p *Parser) parseStatement(line []Token, dir string) error {
	if len(line) == 0 {
		return nil
	}

	tok := line[0]
	switch {
	case tok.Kind == Identifier && len(line) >= 2 && line[1].Kind == Colon:
		if err := p.parseGlobalLabel(tok); err != nil {
			return err
		}
		return p.parseStatement(line[2:], dir)

	case tok.Kind == LocalIdentifier && len(line) >= 2 && line[1].Kind == Colon:
		if err := p.parseLocalLabel(tok); err != nil {
			return err
		}
		return p.parseStatement(line[2:], dir)

	case tok.Kind == Identifier && len(line) >= 2 && line[1].Kind == Equals:
		return p.parseConstDef(tok, line[2:])

	case tok.Kind == Directive:
		return p.parseDirective(tok, line[1:], dir)

	case tok.Kind == Identifier:
		return p.parseInstruction(tok, line[1:])

	default:
		p.sink.Errorf(KindParseError, pos(tok), "unexpected token %s", tok.Kind)
		return nil
	}
}

func (p *Parser) parseGlobalLabel(tok Token) error {
	p.global = tok.Lexeme
	p.items = append(p.items, Item{Label: &LabelDef{Name: tok.Lexeme, Local: false, Pos: pos(tok)}})
	return nil
}

func (p *Parser) parseLocalLabel(tok Token) error {
	if p.global == "" {
		p.sink.Errorf(KindDanglingLocal, pos(tok), "local label '@%s' has no preceding global label", tok.Lexeme)
		return nil
	}
	p.items = append(p.items, Item{Label: &LabelDef{Name: LocalKey(p.global, tok.Lexeme), Local: true, Pos: pos(tok)}})
	return nil
}

func (p *Parser) parseConstDef(name Token, rest []Token) error {
	if len(rest) != 1 {
		p.sink.Errorf(KindParseError, pos(name), "constant '%s' must be assigned a single numeric literal", name.Lexeme)
		return nil
	}
	number, ok := p.literalValue(rest[0])
	if !ok {
		p.sink.Errorf(KindParseError, pos(rest[0]), "invalid value for constant '%s'", name.Lexeme)
		return nil
	}
	operand := Operand{Kind: OperandLiteral, Literal: number, Pos: pos(rest[0])}
	p.items = append(p.items, Item{Const: &ConstDef{Name: name.Lexeme, Value: operand, Pos: pos(name)}})
	return nil
}

func (p *Parser) parseDirective(tok Token, args []Token, dir string) error {
	switch tok.Lexeme {
	case "org":
		return p.parseSingleValueDirective(tok, args, DirOrg)
	case "fillvalue":
		return p.parseSingleValueDirective(tok, args, DirFillValue)
	case "pad":
		return p.parsePad(tok, args)
	case "byte":
		return p.parseByteOrWordList(tok, args, DirByte)
	case "word":
		return p.parseByteOrWordList(tok, args, DirWord)
	case "dsb":
		return p.parseDs(tok, args, DirDsb)
	case "dsw":
		return p.parseDs(tok, args, DirDsw)
	case "ascii":
		return p.parseStringDirective(tok, args, DirAscii)
	case "asciiz":
		return p.parseStringDirective(tok, args, DirAsciiz)
	case "warning":
		return p.parseStringDirective(tok, args, DirWarning)
	case "fail":
		return p.parseStringDirective(tok, args, DirFail)
	case "incbin":
		return p.parseStringDirective(tok, args, DirIncbin)
	case "include":
		return p.parseInclude(tok, args, dir)
	default:
		msg := "unknown directive '." + tok.Lexeme + "'"
		if suggestion := p.sink.SuggestDirective(tok.Lexeme); suggestion != "" {
			msg += "; did you mean '." + suggestion + "'?"
		}
		p.sink.Errorf(KindParseError, pos(tok), "%s", msg)
		return nil
	}
}

func (p *Parser) parseSingleValueDirective(tok Token, args []Token, kind DirectiveKind) error {
	if len(args) != 1 {
		p.sink.Errorf(KindParseError, pos(tok), ".%s takes exactly one value", tok.Lexeme)
		return nil
	}
	number, ok := p.literalValue(args[0])
	if !ok {
		p.sink.Errorf(KindParseError, pos(args[0]), "invalid value for .%s", tok.Lexeme)
		return nil
	}
	operand := Operand{Kind: OperandLiteral, Literal: number, Pos: pos(args[0])}
	p.items = append(p.items, Item{Directive: &DirectiveItem{Kind: kind, Args: []DirectiveArg{{Operand: operand}}, Pos: pos(tok)}})
	return nil
}

func (p *Parser) parsePad(tok Token, args []Token) error {
	groups := splitComma(args)
	if len(groups) < 1 || len(groups) > 2 || len(groups[0]) != 1 || (len(groups) == 2 && len(groups[1]) != 1) {
		p.sink.Errorf(KindParseError, pos(tok), ".pad takes a target address and an optional fill byte")
		return nil
	}
	targetNum, ok := p.literalValue(groups[0][0])
	if !ok {
		p.sink.Errorf(KindParseError, pos(groups[0][0]), "invalid .pad target")
		return nil
	}
	dargs := []DirectiveArg{{Operand: Operand{Kind: OperandLiteral, Literal: targetNum, Pos: pos(groups[0][0])}}}
	if len(groups) == 2 {
		fillNum, ok := p.literalValue(groups[1][0])
		if !ok {
			p.sink.Errorf(KindParseError, pos(groups[1][0]), "invalid .pad fill value")
			return nil
		}
		dargs = append(dargs, DirectiveArg{Operand: Operand{Kind: OperandLiteral, Literal: fillNum, Pos: pos(groups[1][0])}})
	}
	p.items = append(p.items, Item{Directive: &DirectiveItem{Kind: DirPad, Args: dargs, Pos: pos(tok)}})
	return nil
}

func (p *Parser) parseDs(tok Token, args []Token, kind DirectiveKind) error {
	groups := splitComma(args)
	if len(groups) < 1 || len(groups) > 2 || len(groups[0]) != 1 || (len(groups) == 2 && len(groups[1]) != 1) {
		p.sink.Errorf(KindParseError, pos(tok), ".%s takes a size and an optional fill value", tok.Lexeme)
		return nil
	}
	sizeNum, ok := p.literalValue(groups[0][0])
	if !ok {
		p.sink.Errorf(KindParseError, pos(groups[0][0]), "invalid .%s size", tok.Lexeme)
		return nil
	}
	dargs := []DirectiveArg{{Operand: Operand{Kind: OperandLiteral, Literal: sizeNum, Pos: pos(groups[0][0])}}}
	if len(groups) == 2 {
		fillNum, ok := p.literalValue(groups[1][0])
		if !ok {
			p.sink.Errorf(KindParseError, pos(groups[1][0]), "invalid .%s fill value", tok.Lexeme)
			return nil
		}
		dargs = append(dargs, DirectiveArg{Operand: Operand{Kind: OperandLiteral, Literal: fillNum, Pos: pos(groups[1][0])}})
	}
	p.items = append(p.items, Item{Directive: &DirectiveItem{Kind: kind, Args: dargs, Pos: pos(tok)}})
	return nil
}

func (p *Parser) parseByteOrWordList(tok Token, args []Token, kind DirectiveKind) error {
	groups := splitComma(args)
	if len(groups) == 0 {
		p.sink.Errorf(KindParseError, pos(tok), ".%s requires at least one argument", tok.Lexeme)
		return nil
	}
	dargs := make([]DirectiveArg, 0, len(groups))
	for _, g := range groups {
		if len(g) == 1 && g[0].Kind == String {
			dargs = append(dargs, DirectiveArg{IsString: true, String: g[0].Lexeme})
			continue
		}
		if len(g) != 1 {
			p.sink.Errorf(KindParseError, pos(tok), "invalid .%s argument", tok.Lexeme)
			return nil
		}
		number, ok := p.literalValue(g[0])
		if !ok {
			p.sink.Errorf(KindParseError, pos(g[0]), "invalid .%s argument", tok.Lexeme)
			return nil
		}
		dargs = append(dargs, DirectiveArg{Operand: Operand{Kind: OperandLiteral, Literal: number, Pos: pos(g[0])}})
	}
	p.items = append(p.items, Item{Directive: &DirectiveItem{Kind: kind, Args: dargs, Pos: pos(tok)}})
	return nil
}

func (p *Parser) parseStringDirective(tok Token, args []Token, kind DirectiveKind) error {
	if len(args) != 1 || args[0].Kind != String {
		p.sink.Errorf(KindParseError, pos(tok), ".%s requires a single string argument", tok.Lexeme)
		return nil
	}
	p.items = append(p.items, Item{Directive: &DirectiveItem{Kind: kind, Args: []DirectiveArg{{IsString: true, String: args[0].Lexeme}}, Pos: pos(tok)}})
	return nil
}

func (p *Parser) parseInclude(tok Token, args []Token, dir string) error {
	if len(args) != 1 || args[0].Kind != String {
		p.sink.Errorf(KindParseError, pos(tok), ".include requires a single string path")
		return nil
	}
	return p.includeFile(args[0].Lexeme, dir)
}

func (p *Parser) parseInstruction(mnemonic Token, rest []Token) error {
	set := mos6502.Get()
	if len(set.Variants(mnemonic.Lexeme)) == 0 {
		msg := "unknown mnemonic '" + mnemonic.Lexeme + "'"
		if suggestion := p.sink.SuggestMnemonic(mnemonic.Lexeme); suggestion != "" {
			msg += "; did you mean '" + suggestion + "'?"
		}
		p.sink.Errorf(KindUnknownMnemonic, pos(mnemonic), "%s", msg)
		return nil
	}

	mode, operand, ok := p.parseOperand(mnemonic, rest)
	if !ok {
		return nil
	}
	p.items = append(p.items, Item{Instruction: &InstructionItem{
		Mnemonic: strings.ToUpper(mnemonic.Lexeme),
		Mode:     mode,
		Operand:  operand,
		Pos:      pos(mnemonic),
	}})
	return nil
}

// parseOperand applies the operand disambiguation table against the
// tokens following a mnemonic.
func (p *Parser) parseOperand(mnemonic Token, rest []Token) (AddrMode, Operand, bool) {
	switch {
	case len(rest) == 0:
		return AddrImplicit, Operand{}, true

	case len(rest) == 1 && isRegister(rest[0], "A"):
		return AddrAccumulator, Operand{}, true

	case len(rest) >= 2 && rest[0].Kind == HashImmediate:
		operand, ok := p.operandValue(rest[1])
		if !ok || len(rest) != 2 {
			p.sink.Errorf(KindParseError, pos(mnemonic), "bad immediate operand for '%s'", mnemonic.Lexeme)
			return 0, Operand{}, false
		}
		return AddrImmediate, operand, true

	case len(rest) == 5 && rest[0].Kind == OpenParen && rest[2].Kind == Comma && isRegister(rest[3], "X") && rest[4].Kind == CloseParen:
		operand, ok := p.operandValue(rest[1])
		if !ok {
			p.sink.Errorf(KindParseError, pos(mnemonic), "bad indexed-indirect operand for '%s'", mnemonic.Lexeme)
			return 0, Operand{}, false
		}
		return AddrIndirectX, operand, true

	case len(rest) == 5 && rest[0].Kind == OpenParen && rest[2].Kind == CloseParen && rest[3].Kind == Comma && isRegister(rest[4], "Y"):
		operand, ok := p.operandValue(rest[1])
		if !ok {
			p.sink.Errorf(KindParseError, pos(mnemonic), "bad indirect-indexed operand for '%s'", mnemonic.Lexeme)
			return 0, Operand{}, false
		}
		return AddrIndirectY, operand, true

	case len(rest) == 3 && rest[0].Kind == OpenParen && rest[2].Kind == CloseParen:
		operand, ok := p.operandValue(rest[1])
		if !ok {
			p.sink.Errorf(KindParseError, pos(mnemonic), "bad indirect operand for '%s'", mnemonic.Lexeme)
			return 0, Operand{}, false
		}
		return AddrIndirect, operand, true

	case len(rest) == 3 && rest[1].Kind == Comma && isRegister(rest[2], "X"):
		operand, ok := p.operandValue(rest[0])
		if !ok {
			p.sink.Errorf(KindParseError, pos(mnemonic), "bad indexed operand for '%s'", mnemonic.Lexeme)
			return 0, Operand{}, false
		}
		return AddrAbsoluteX, operand, true

	case len(rest) == 3 && rest[1].Kind == Comma && isRegister(rest[2], "Y"):
		operand, ok := p.operandValue(rest[0])
		if !ok {
			p.sink.Errorf(KindParseError, pos(mnemonic), "bad indexed operand for '%s'", mnemonic.Lexeme)
			return 0, Operand{}, false
		}
		return AddrAbsoluteY, operand, true

	case len(rest) == 1:
		operand, ok := p.operandValue(rest[0])
		if !ok {
			p.sink.Errorf(KindParseError, pos(mnemonic), "bad operand for '%s'", mnemonic.Lexeme)
			return 0, Operand{}, false
		}
		if mos6502.IsBranch(mnemonic.Lexeme) {
			return AddrRelative, operand, true
		}
		return AddrAbsolute, operand, true

	default:
		p.sink.Errorf(KindParseError, pos(mnemonic), "unrecognized operand form for '%s'", mnemonic.Lexeme)
		return 0, Operand{}, false
	}
}

// operandValue converts a single token into an Operand, qualifying a
// local-identifier reference against the most recent global label.
func (p *Parser) operandValue(tok Token) (Operand, bool) {
	switch tok.Kind {
	case DecimalNumber, HexNumber, BinaryNumber:
		return Operand{Kind: OperandLiteral, Literal: tok.Number, Pos: pos(tok)}, true
	case Identifier:
		return Operand{Kind: OperandSymbol, Symbol: tok.Lexeme, Pos: pos(tok)}, true
	case LocalIdentifier:
		if p.global == "" {
			p.sink.Errorf(KindDanglingLocal, pos(tok), "local reference '@%s' has no preceding global label", tok.Lexeme)
			return Operand{}, false
		}
		return Operand{Kind: OperandSymbol, Symbol: LocalKey(p.global, tok.Lexeme), Pos: pos(tok)}, true
	default:
		return Operand{}, false
	}
}

// literalValue requires tok to be a bare numeric literal. Directive
// arguments and constant definitions carry a Number, never a symbol:
// their values must be known immediately, before the symbol table is
// complete, since layout sizing depends on them.
func (p *Parser) literalValue(tok Token) (Number, bool) {
	switch tok.Kind {
	case DecimalNumber, HexNumber, BinaryNumber:
		return tok.Number, true
	default:
		return Number{}, false
	}
}

// splitComma breaks a token slice on top-level Comma tokens. Operands
// never nest commas inside parentheses more than the addressing-mode
// forms already matched above, so no paren-depth tracking is needed.
func splitComma(tokens []Token) [][]Token {
	var groups [][]Token
	start := 0
	for i, t := range tokens {
		if t.Kind == Comma {
			groups = append(groups, tokens[start:i])
			start = i + 1
		}
	}
	groups = append(groups, tokens[start:])
	return groups
}

// isRegister reports whether tok is a bare identifier spelling the
// register name letter (case-insensitively) — "X", "Y", or "A" —
// resolved contextually by the operand disambiguation table rather
// than carved out as its own lexer token kind, so a label or constant
// legitimately named "x"/"y"/"a" still parses as an identifier outside
// operand position.
func isRegister(tok Token, letter string) bool {
	return tok.Kind == Identifier && strings.EqualFold(tok.Lexeme, letter)
}

func pos(tok Token) Position {
	return Position{File: fileTable.name(tok.File), Line: tok.Line, Column: tok.Column}
}
