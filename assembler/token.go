package assembler

// TokenKind identifies the lexical category of a Token.
type TokenKind byte

// All token kinds the lexer can produce.
const (
	Identifier TokenKind = iota
	LocalIdentifier
	DecimalNumber
	HexNumber
	BinaryNumber
	String
	Directive
	HashImmediate
	Comma
	Colon
	Equals
	Newline
	OpenParen
	CloseParen
	EOF
)

func (k TokenKind) String() string {
	switch k {
	case Identifier:
		return "identifier"
	case LocalIdentifier:
		return "local identifier"
	case DecimalNumber:
		return "decimal number"
	case HexNumber:
		return "hex number"
	case BinaryNumber:
		return "binary number"
	case String:
		return "string"
	case Directive:
		return "directive"
	case HashImmediate:
		return "'#'"
	case Comma:
		return "','"
	case Colon:
		return "':'"
	case Equals:
		return "'='"
	case Newline:
		return "newline"
	case OpenParen:
		return "'('"
	case CloseParen:
		return "')'"
	case EOF:
		return "end of file"
	default:
		return "unknown token"
	}
}

// Width tags a Number as fitting in one byte or requiring two.
type Width byte

const (
	// Byte values fit in 0..=255. A numeric literal tagged Byte is
	// eligible for zero-page addressing.
	Byte Width = iota
	// Word values need 256..=65535. A numeric literal tagged Word
	// forces absolute addressing.
	Word
)

// Number is a parsed numeric literal together with the width implied
// by its source form (not merely by its value): the literal's digit
// count or prefix determines Byte vs Word, per spec.
type Number struct {
	Value int
	Width Width
}

// Token is one lexical unit with its source position.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Number Number // populated when Kind is one of the number kinds
	File   int
	Line   int
	Column int
}

func (t Token) pos() fstring {
	return fstring{fileIndex: t.File, row: t.Line, column: t.Column, str: t.Lexeme, full: t.Lexeme}
}
