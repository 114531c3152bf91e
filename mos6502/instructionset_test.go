package mos6502

import "testing"

func TestLookupKnownEncodings(t *testing.T) {
	set := Get()

	cases := []struct {
		mnemonic string
		mode     Mode
		opcode   byte
		length   byte
	}{
		{"LDA", IMM, 0xa9, 2},
		{"LDA", ABS, 0xad, 3},
		{"JSR", ABS, 0x20, 3},
		{"BNE", REL, 0xd0, 2},
		{"BRK", IMP, 0x00, 1},
		{"ASL", ACC, 0x0a, 1},
	}
	for _, c := range cases {
		inst := set.Lookup(c.mnemonic, c.mode)
		if inst == nil {
			t.Fatalf("%s %s: no such encoding", c.mnemonic, c.mode.Name())
		}
		if inst.Opcode != c.opcode || inst.Length != c.length {
			t.Errorf("%s %s: got opcode %#02x len %d, want %#02x len %d",
				c.mnemonic, c.mode.Name(), inst.Opcode, inst.Length, c.opcode, c.length)
		}
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	set := Get()
	upper := set.Lookup("LDA", IMM)
	lower := set.Lookup("lda", IMM)
	mixed := set.Lookup("Lda", IMM)
	if upper == nil || lower == nil || mixed == nil {
		t.Fatal("mnemonic lookup should be case-insensitive")
	}
	if upper.Opcode != lower.Opcode || lower.Opcode != mixed.Opcode {
		t.Error("case variants resolved to different opcodes")
	}
}

func TestLookupUnsupportedMode(t *testing.T) {
	set := Get()
	if set.Lookup("JSR", ZPG) != nil {
		t.Error("JSR has no zero-page encoding")
	}
	if set.Lookup("NOSUCH", IMP) != nil {
		t.Error("unknown mnemonic should have no variants")
	}
}

func TestIsBranch(t *testing.T) {
	for _, m := range []string{"BCC", "BCS", "BEQ", "BMI", "BNE", "BPL", "BVC", "BVS", "bne"} {
		if !IsBranch(m) {
			t.Errorf("%s should be a branch mnemonic", m)
		}
	}
	for _, m := range []string{"JMP", "LDA", "BRK"} {
		if IsBranch(m) {
			t.Errorf("%s should not be a branch mnemonic", m)
		}
	}
}

func TestZeroPageAndAbsoluteSupport(t *testing.T) {
	set := Get()
	if !set.SupportsZeroPage("LDA") {
		t.Error("LDA supports zero page")
	}
	if !set.SupportsAbsolute("LDA") {
		t.Error("LDA supports absolute")
	}
	if set.SupportsZeroPage("JSR") {
		t.Error("JSR has no zero-page form")
	}
	if !set.SupportsAbsolute("JSR") {
		t.Error("JSR only has an absolute form")
	}
}

func TestNamesCoversAll56Mnemonics(t *testing.T) {
	set := Get()
	if len(set.Names()) != 56 {
		t.Fatalf("got %d mnemonics, want 56", len(set.Names()))
	}
}
