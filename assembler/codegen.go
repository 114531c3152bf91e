package assembler

import "github.com/ochaton/sixfiveasm/mos6502"

// InvalidAddressingModeError reports that a mnemonic has no encoding
// for the addressing mode its operand resolved to.
type InvalidAddressingModeError struct {
	Mnemonic string
	Mode     mos6502.Mode
	Pos      Position
}

func (e *InvalidAddressingModeError) Error() string {
	return e.Pos.String() + ": " + e.Mnemonic + " has no " + e.Mode.Name() + " addressing mode"
}

// EncodeInstruction emits the opcode and operand bytes for mnemonic in
// mode with the given resolved operand value. value is ignored for
// IMP/ACC; for REL it is the already-computed signed displacement
// (0..255, wrapped); for single-byte modes only the low 8 bits are
// used; for two-byte modes the value is written little-endian.
func EncodeInstruction(mnemonic string, mode mos6502.Mode, value int, pos Position) ([]byte, error) {
	inst := mos6502.Get().Lookup(mnemonic, mode)
	if inst == nil {
		return nil, &InvalidAddressingModeError{Mnemonic: mnemonic, Mode: mode, Pos: pos}
	}
	switch inst.Length {
	case 1:
		return []byte{inst.Opcode}, nil
	case 2:
		return []byte{inst.Opcode, byte(value)}, nil
	case 3:
		return []byte{inst.Opcode, byte(value), byte(value >> 8)}, nil
	default:
		return []byte{inst.Opcode}, nil
	}
}

// EncodeWord returns v as two little-endian bytes.
func EncodeWord(v int) []byte {
	return []byte{byte(v), byte(v >> 8)}
}

// EncodeAscii returns s's raw bytes, with a single trailing 0 appended
// when asciiz is true and s doesn't already end in a zero byte.
func EncodeAscii(s string, asciiz bool) []byte {
	b := []byte(s)
	if asciiz && (len(b) == 0 || b[len(b)-1] != 0) {
		b = append(b, 0)
	}
	return b
}

// EncodeFill returns n copies of fill.
func EncodeFill(n int, fill byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = fill
	}
	return b
}
