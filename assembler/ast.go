package assembler

// AddrMode tags how an instruction's operand was written in source,
// before the resolver commits to a concrete mos6502.Mode. IMM, IMP,
// ACC and REL map straight through to mos6502.Mode, as do the three
// indirect forms; the zero-page vs absolute forms of the plain and
// indexed absolute modes are chosen later by the resolver once the
// operand's width is known.
type AddrMode byte

const (
	AddrImplicit AddrMode = iota
	AddrAccumulator
	AddrImmediate
	AddrAbsolute   // ABS or ZPG, width decided at resolve time
	AddrAbsoluteX  // ABX or ZPX
	AddrAbsoluteY  // ABY or ZPY
	AddrIndirect   // IND, always a word
	AddrIndirectX  // IDX, always zero page
	AddrIndirectY  // IDY, always zero page
	AddrRelative   // REL, branch target
)

// OperandKind tags what an Operand's value actually is, independent of
// the addressing mode it's wrapped in.
type OperandKind byte

const (
	OperandNone OperandKind = iota
	OperandLiteral
	OperandSymbol
)

// Operand is the single value an instruction addressing mode may
// carry: one numeric literal or one symbol reference. Arithmetic
// combining the two is out of scope.
type Operand struct {
	Kind    OperandKind
	Literal Number // valid when Kind == OperandLiteral
	Symbol  string // valid when Kind == OperandSymbol; already scope-qualified for locals
	Pos     Position
}

// InstructionItem is one mnemonic statement: a 6502 opcode together
// with the addressing mode and operand the source line spelled out.
type InstructionItem struct {
	Mnemonic string
	Mode     AddrMode
	Operand  Operand // zero value for AddrImplicit/AddrAccumulator
	Pos      Position
}

// LabelDef introduces a symbol bound to the current assembly address.
// Local is true for "@name:" labels, scoped to the most recent global
// label; Name never carries the "@" sigil, and for a local label the
// parser has already composed the flat "parent.local" key into it.
type LabelDef struct {
	Name  string
	Local bool
	Pos   Position
}

// ConstDef introduces a symbol bound to a fixed value via
// "name = literal", independent of assembly address. Value is always
// a single numeric literal.
type ConstDef struct {
	Name  string
	Value Operand
	Pos   Position
}

// DirectiveKind enumerates the closed set of pseudo-ops understood by
// the assembler.
type DirectiveKind byte

const (
	DirOrg DirectiveKind = iota
	DirPad
	DirFillValue
	DirByte
	DirWord
	DirDsb
	DirDsw
	DirAscii
	DirAsciiz
	DirIncbin
	DirInclude
	DirFail
	DirWarning
)

// DirectiveArg is one comma-separated argument to a directive: either
// a numeric literal operand (as used by .org, .fillvalue, .pad, .byte,
// .word, .dsb, .dsw; symbols are not accepted) or a raw string (as
// used by .ascii, .asciiz, .incbin, .include, .fail, .warning, and as
// a list element of .byte or .word).
type DirectiveArg struct {
	IsString bool
	String   string
	Operand  Operand
}

// DirectiveItem is one pseudo-op statement together with its
// comma-separated argument list.
type DirectiveItem struct {
	Kind DirectiveKind
	Args []DirectiveArg
	Pos  Position
}

// Item is one parsed statement. Exactly one of the embedded pointers
// is non-nil; Item itself is a plain sum type rather than an
// interface so the resolver can switch on it without type assertions
// scattered through the codebase.
type Item struct {
	Instruction *InstructionItem
	Label       *LabelDef
	Const       *ConstDef
	Directive   *DirectiveItem
}

// Program is the flattened statement list produced by the parser,
// after all .include directives have been spliced in. File boundaries
// remain visible only through each Item's embedded Position.
type Program struct {
	Items []Item
}
