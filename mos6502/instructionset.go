// Package mos6502 describes the NMOS 6502 instruction set: its 56
// mnemonics, its 13 addressing modes, and the opcode/length table that
// maps a (mnemonic, mode) pair to the bytes a code generator must emit.
//
// It intentionally stops at data: there is no CPU, no registers, no
// execution. Emulating the chip is out of scope for a cross-assembler.
package mos6502

import "strings"

// Mode identifies one of the 6502's 13 legal addressing modes.
type Mode byte

// All addressing modes the 6502 supports.
const (
	IMM Mode = iota // Immediate: #$nn
	IMP             // Implicit: no operand
	REL             // Relative: branch displacement
	ZPG             // Zero Page: $nn
	ZPX             // Zero Page,X: $nn,X
	ZPY             // Zero Page,Y: $nn,Y
	ABS             // Absolute: $nnnn
	ABX             // Absolute,X: $nnnn,X
	ABY             // Absolute,Y: $nnnn,Y
	IND             // Indirect: ($nnnn)
	IDX             // Indexed Indirect: ($nn,X)
	IDY             // Indirect Indexed: ($nn),Y
	ACC             // Accumulator: A
)

// Name returns the three-letter mnemonic form of a mode, for diagnostics.
func (m Mode) Name() string {
	return modeNames[m]
}

var modeNames = [...]string{
	"IMM", "IMP", "REL", "ZPG", "ZPX", "ZPY",
	"ABS", "ABX", "ABY", "IND", "IDX", "IDY", "ACC",
}

// Instruction describes one legal (mnemonic, addressing mode) encoding.
type Instruction struct {
	Name   string // mnemonic, e.g. "LDA"
	Mode   Mode
	Opcode byte
	Length byte // total size of opcode + operand, in bytes: 1, 2 or 3
}

// data is the fixed table of legal NMOS 6502 (mnemonic, mode) encodings.
// Illegal/undocumented opcodes are out of scope; this assembler only
// ever emits the 56 documented mnemonics.
var data = []Instruction{
	{"LDA", IMM, 0xa9, 2}, {"LDA", ZPG, 0xa5, 2}, {"LDA", ZPX, 0xb5, 2},
	{"LDA", ABS, 0xad, 3}, {"LDA", ABX, 0xbd, 3}, {"LDA", ABY, 0xb9, 3},
	{"LDA", IDX, 0xa1, 2}, {"LDA", IDY, 0xb1, 2},

	{"LDX", IMM, 0xa2, 2}, {"LDX", ZPG, 0xa6, 2}, {"LDX", ZPY, 0xb6, 2},
	{"LDX", ABS, 0xae, 3}, {"LDX", ABY, 0xbe, 3},

	{"LDY", IMM, 0xa0, 2}, {"LDY", ZPG, 0xa4, 2}, {"LDY", ZPX, 0xb4, 2},
	{"LDY", ABS, 0xac, 3}, {"LDY", ABX, 0xbc, 3},

	{"STA", ZPG, 0x85, 2}, {"STA", ZPX, 0x95, 2}, {"STA", ABS, 0x8d, 3},
	{"STA", ABX, 0x9d, 3}, {"STA", ABY, 0x99, 3}, {"STA", IDX, 0x81, 2},
	{"STA", IDY, 0x91, 2},

	{"STX", ZPG, 0x86, 2}, {"STX", ZPY, 0x96, 2}, {"STX", ABS, 0x8e, 3},

	{"STY", ZPG, 0x84, 2}, {"STY", ZPX, 0x94, 2}, {"STY", ABS, 0x8c, 3},

	{"ADC", IMM, 0x69, 2}, {"ADC", ZPG, 0x65, 2}, {"ADC", ZPX, 0x75, 2},
	{"ADC", ABS, 0x6d, 3}, {"ADC", ABX, 0x7d, 3}, {"ADC", ABY, 0x79, 3},
	{"ADC", IDX, 0x61, 2}, {"ADC", IDY, 0x71, 2},

	{"SBC", IMM, 0xe9, 2}, {"SBC", ZPG, 0xe5, 2}, {"SBC", ZPX, 0xf5, 2},
	{"SBC", ABS, 0xed, 3}, {"SBC", ABX, 0xfd, 3}, {"SBC", ABY, 0xf9, 3},
	{"SBC", IDX, 0xe1, 2}, {"SBC", IDY, 0xf1, 2},

	{"CMP", IMM, 0xc9, 2}, {"CMP", ZPG, 0xc5, 2}, {"CMP", ZPX, 0xd5, 2},
	{"CMP", ABS, 0xcd, 3}, {"CMP", ABX, 0xdd, 3}, {"CMP", ABY, 0xd9, 3},
	{"CMP", IDX, 0xc1, 2}, {"CMP", IDY, 0xd1, 2},

	{"CPX", IMM, 0xe0, 2}, {"CPX", ZPG, 0xe4, 2}, {"CPX", ABS, 0xec, 3},
	{"CPY", IMM, 0xc0, 2}, {"CPY", ZPG, 0xc4, 2}, {"CPY", ABS, 0xcc, 3},

	{"BIT", ZPG, 0x24, 2}, {"BIT", ABS, 0x2c, 3},

	{"CLC", IMP, 0x18, 1}, {"SEC", IMP, 0x38, 1},
	{"CLI", IMP, 0x58, 1}, {"SEI", IMP, 0x78, 1},
	{"CLD", IMP, 0xd8, 1}, {"SED", IMP, 0xf8, 1},
	{"CLV", IMP, 0xb8, 1},

	{"BCC", REL, 0x90, 2}, {"BCS", REL, 0xb0, 2}, {"BEQ", REL, 0xf0, 2},
	{"BNE", REL, 0xd0, 2}, {"BMI", REL, 0x30, 2}, {"BPL", REL, 0x10, 2},
	{"BVC", REL, 0x50, 2}, {"BVS", REL, 0x70, 2},

	{"BRK", IMP, 0x00, 1},

	{"AND", IMM, 0x29, 2}, {"AND", ZPG, 0x25, 2}, {"AND", ZPX, 0x35, 2},
	{"AND", ABS, 0x2d, 3}, {"AND", ABX, 0x3d, 3}, {"AND", ABY, 0x39, 3},
	{"AND", IDX, 0x21, 2}, {"AND", IDY, 0x31, 2},

	{"ORA", IMM, 0x09, 2}, {"ORA", ZPG, 0x05, 2}, {"ORA", ZPX, 0x15, 2},
	{"ORA", ABS, 0x0d, 3}, {"ORA", ABX, 0x1d, 3}, {"ORA", ABY, 0x19, 3},
	{"ORA", IDX, 0x01, 2}, {"ORA", IDY, 0x11, 2},

	{"EOR", IMM, 0x49, 2}, {"EOR", ZPG, 0x45, 2}, {"EOR", ZPX, 0x55, 2},
	{"EOR", ABS, 0x4d, 3}, {"EOR", ABX, 0x5d, 3}, {"EOR", ABY, 0x59, 3},
	{"EOR", IDX, 0x41, 2}, {"EOR", IDY, 0x51, 2},

	{"INC", ZPG, 0xe6, 2}, {"INC", ZPX, 0xf6, 2}, {"INC", ABS, 0xee, 3}, {"INC", ABX, 0xfe, 3},
	{"DEC", ZPG, 0xc6, 2}, {"DEC", ZPX, 0xd6, 2}, {"DEC", ABS, 0xce, 3}, {"DEC", ABX, 0xde, 3},

	{"INX", IMP, 0xe8, 1}, {"INY", IMP, 0xc8, 1},
	{"DEX", IMP, 0xca, 1}, {"DEY", IMP, 0x88, 1},

	{"JMP", ABS, 0x4c, 3}, {"JMP", IND, 0x6c, 3},
	{"JSR", ABS, 0x20, 3}, {"RTS", IMP, 0x60, 1},
	{"RTI", IMP, 0x40, 1},

	{"NOP", IMP, 0xea, 1},

	{"TAX", IMP, 0xaa, 1}, {"TXA", IMP, 0x8a, 1},
	{"TAY", IMP, 0xa8, 1}, {"TYA", IMP, 0x98, 1},
	{"TXS", IMP, 0x9a, 1}, {"TSX", IMP, 0xba, 1},

	{"PHA", IMP, 0x48, 1}, {"PLA", IMP, 0x68, 1},
	{"PHP", IMP, 0x08, 1}, {"PLP", IMP, 0x28, 1},

	{"ASL", ACC, 0x0a, 1}, {"ASL", ZPG, 0x06, 2}, {"ASL", ZPX, 0x16, 2},
	{"ASL", ABS, 0x0e, 3}, {"ASL", ABX, 0x1e, 3},

	{"LSR", ACC, 0x4a, 1}, {"LSR", ZPG, 0x46, 2}, {"LSR", ZPX, 0x56, 2},
	{"LSR", ABS, 0x4e, 3}, {"LSR", ABX, 0x5e, 3},

	{"ROL", ACC, 0x2a, 1}, {"ROL", ZPG, 0x26, 2}, {"ROL", ZPX, 0x36, 2},
	{"ROL", ABS, 0x2e, 3}, {"ROL", ABX, 0x3e, 3},

	{"ROR", ACC, 0x6a, 1}, {"ROR", ZPG, 0x66, 2}, {"ROR", ZPX, 0x76, 2},
	{"ROR", ABS, 0x6e, 3}, {"ROR", ABX, 0x7e, 3},
}

// branchMnemonics forces Relative addressing regardless of operand form,
// per spec: BCC, BCS, BEQ, BMI, BNE, BPL, BVC, BVS.
var branchMnemonics = map[string]bool{
	"BCC": true, "BCS": true, "BEQ": true, "BMI": true,
	"BNE": true, "BPL": true, "BVC": true, "BVS": true,
}

// IsBranch reports whether mnemonic is one of the eight conditional
// branch instructions, which always use Relative addressing.
func IsBranch(mnemonic string) bool {
	return branchMnemonics[strings.ToUpper(mnemonic)]
}

// InstructionSet indexes the fixed NMOS opcode table by mnemonic.
type InstructionSet struct {
	variants map[string][]*Instruction
	names    []string
}

var instructionSet *InstructionSet

// Get returns the singleton NMOS 6502 instruction set.
func Get() *InstructionSet {
	if instructionSet == nil {
		instructionSet = build()
	}
	return instructionSet
}

func build() *InstructionSet {
	set := &InstructionSet{variants: make(map[string][]*Instruction, 56)}
	seen := make(map[string]bool, 56)
	for i := range data {
		inst := &data[i]
		set.variants[inst.Name] = append(set.variants[inst.Name], inst)
		if !seen[inst.Name] {
			seen[inst.Name] = true
			set.names = append(set.names, inst.Name)
		}
	}
	return set
}

// Variants returns every legal (mode, opcode) encoding for mnemonic, or
// nil if mnemonic isn't one of the 56 supported instructions.
func (s *InstructionSet) Variants(mnemonic string) []*Instruction {
	return s.variants[strings.ToUpper(mnemonic)]
}

// Lookup returns the single encoding of mnemonic in the given mode, or
// nil if that (mnemonic, mode) pair isn't legal.
func (s *InstructionSet) Lookup(mnemonic string, mode Mode) *Instruction {
	for _, inst := range s.Variants(mnemonic) {
		if inst.Mode == mode {
			return inst
		}
	}
	return nil
}

// SupportsZeroPage reports whether mnemonic has a ZPG/ZPX/ZPY encoding
// in any of the three zero-page modes.
func (s *InstructionSet) SupportsZeroPage(mnemonic string) bool {
	for _, inst := range s.Variants(mnemonic) {
		if inst.Mode == ZPG || inst.Mode == ZPX || inst.Mode == ZPY {
			return true
		}
	}
	return false
}

// SupportsAbsolute reports whether mnemonic has an ABS/ABX/ABY encoding.
func (s *InstructionSet) SupportsAbsolute(mnemonic string) bool {
	for _, inst := range s.Variants(mnemonic) {
		if inst.Mode == ABS || inst.Mode == ABX || inst.Mode == ABY {
			return true
		}
	}
	return false
}

// Names returns every supported mnemonic, for use by the prefix-tree
// suggestion index in the diagnostic sink.
func (s *InstructionSet) Names() []string {
	return s.names
}
