package assembler

import (
	"bufio"
	"strconv"
	"strings"
)

// A LexError reports a lexical problem at a specific source position:
// an unterminated string, an illegal character, or a hex/binary
// literal wider than 16 bits.
type LexError struct {
	Pos Position
	Msg string
}

func (e *LexError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// Position identifies a single point in a source unit by logical file
// name, 1-based line, and 0-based column.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	return p.File + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column+1)
}

// Lexer turns source text into a flat token stream. One Lexer instance
// is created per file (top-level or included), but all instances share
// the assembler's file table so token positions remain globally
// meaningful across an include chain.
type Lexer struct {
	fileIndex int
}

// NewLexer creates a lexer that tags every token it produces with
// fileIndex, the position of source within the assembler's file table.
func NewLexer(fileIndex int) *Lexer {
	return &Lexer{fileIndex: fileIndex}
}

// Lex scans source line by line and returns its token stream, ending
// with a single EOF token. Every source line — blank or not — produces
// a trailing Newline token, since newlines are what terminate
// statements; the parser is responsible for skipping empty statements.
func (lx *Lexer) Lex(source string) ([]Token, error) {
	var tokens []Token

	scanner := bufio.NewScanner(strings.NewReader(source))
	row := 1
	for scanner.Scan() {
		line := newFstring(lx.fileIndex, row, scanner.Text()).stripTrailingComment()
		lineTokens, err := lx.lexLine(line)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, lineTokens...)
		tokens = append(tokens, Token{Kind: Newline, File: lx.fileIndex, Line: row})
		row++
	}

	tokens = append(tokens, Token{Kind: EOF, File: lx.fileIndex, Line: row})
	return tokens, nil
}

func (lx *Lexer) lexLine(line fstring) ([]Token, error) {
	var tokens []Token
	for {
		line = line.consumeWhitespace()
		if line.isEmpty() {
			return tokens, nil
		}

		tok, remain, err := lx.lexToken(line)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		line = remain
	}
}

func (lx *Lexer) lexToken(l fstring) (Token, fstring, error) {
	base := Token{File: l.fileIndex, Line: l.row, Column: l.column}

	switch {
	case l.startsWithChar('$'):
		return lx.lexPrefixedNumber(l, HexNumber, isHexDigit, 4, 4, 16)

	case l.startsWithChar('%'):
		return lx.lexPrefixedNumber(l, BinaryNumber, isBinaryDigit, 16, 1, 2)

	case l.startsWith(isDecimalDigit):
		digits, remain := l.consumeWhile(isDecimalDigit)
		value, err := strconv.Atoi(digits.str)
		if err != nil {
			return Token{}, l, &LexError{Pos: position(l), Msg: "invalid decimal number '" + digits.str + "'"}
		}
		width := Byte
		if value >= 256 {
			width = Word
		}
		base.Kind, base.Lexeme, base.Number = DecimalNumber, digits.str, Number{Value: value, Width: width}
		return base, remain, nil

	case l.startsWithChar('"'):
		return lx.lexString(l)

	case l.startsWithChar('@'):
		name, remain := l.consume(1).consumeWhile(isIdentChar)
		if name.isEmpty() {
			return Token{}, l, &LexError{Pos: position(l), Msg: "'@' must be followed by a local label name"}
		}
		base.Kind, base.Lexeme = LocalIdentifier, name.str
		return base, remain, nil

	case l.startsWithChar('.'):
		name, remain := l.consume(1).consumeWhile(isIdentChar)
		if name.isEmpty() {
			return Token{}, l, &LexError{Pos: position(l), Msg: "'.' must be followed by a directive name"}
		}
		base.Kind, base.Lexeme = Directive, strings.ToLower(name.str)
		return base, remain, nil

	case l.startsWithChar('#'):
		base.Kind, base.Lexeme = HashImmediate, "#"
		return base, l.consume(1), nil
	case l.startsWithChar(','):
		base.Kind, base.Lexeme = Comma, ","
		return base, l.consume(1), nil
	case l.startsWithChar(':'):
		base.Kind, base.Lexeme = Colon, ":"
		return base, l.consume(1), nil
	case l.startsWithChar('='):
		base.Kind, base.Lexeme = Equals, "="
		return base, l.consume(1), nil
	case l.startsWithChar('('):
		base.Kind, base.Lexeme = OpenParen, "("
		return base, l.consume(1), nil
	case l.startsWithChar(')'):
		base.Kind, base.Lexeme = CloseParen, ")"
		return base, l.consume(1), nil

	case l.startsWith(isIdentStart):
		word, remain := l.consumeWhile(isIdentChar)
		base.Kind, base.Lexeme = Identifier, word.str
		return base, remain, nil

	default:
		return Token{}, l, &LexError{Pos: position(l), Msg: "illegal character '" + string(l.str[0]) + "'"}
	}
}

// lexPrefixedNumber handles the $hex and %binary literal forms. maxDigits
// is the widest literal that still fits in 16 bits (4 hex digits, 16
// binary digits); bitsPerDigit converts a digit count into a bit width
// so Byte vs Word can be chosen from the literal's length, not its value.
func (lx *Lexer) lexPrefixedNumber(l fstring, kind TokenKind, digitFn func(byte) bool, maxDigits, bitsPerDigit, base int) (Token, fstring, error) {
	prefix := l.str[0]
	rest := l.consume(1)
	digits, remain := rest.consumeWhile(digitFn)
	if digits.isEmpty() {
		return Token{}, l, &LexError{Pos: position(l), Msg: "expected digits after '" + string(prefix) + "'"}
	}
	if len(digits.str) > maxDigits {
		return Token{}, l, &LexError{Pos: position(l), Msg: "numeric literal '" + l.str[:1+len(digits.str)] + "' exceeds 16 bits"}
	}

	value, err := strconv.ParseInt(digits.str, base, 32)
	if err != nil {
		return Token{}, l, &LexError{Pos: position(l), Msg: "invalid numeric literal '" + digits.str + "'"}
	}

	width := Byte
	if len(digits.str)*bitsPerDigit > 8 {
		width = Word
	}

	tok := Token{
		Kind:   kind,
		Lexeme: digits.str,
		Number: Number{Value: int(value), Width: width},
		File:   l.fileIndex,
		Line:   l.row,
		Column: l.column,
	}
	return tok, remain, nil
}

func (lx *Lexer) lexString(l fstring) (Token, fstring, error) {
	body, remain := l.consume(1).consumeUntil(func(c byte) bool { return c == '"' })
	if remain.isEmpty() {
		return Token{}, l, &LexError{Pos: position(l), Msg: "unterminated string"}
	}
	tok := Token{Kind: String, Lexeme: body.str, File: l.fileIndex, Line: l.row, Column: l.column}
	return tok, remain.consume(1), nil
}

func position(l fstring) Position {
	return Position{File: fileTable.name(l.fileIndex), Line: l.row, Column: l.column}
}

func isHexDigit(c byte) bool {
	return isDecimalDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isBinaryDigit(c byte) bool { return c == '0' || c == '1' }

func isDecimalDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(c byte) bool { return isAlpha(c) || c == '_' }

func isIdentChar(c byte) bool { return isAlpha(c) || isDecimalDigit(c) || c == '_' }
