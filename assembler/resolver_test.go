package assembler

import "testing"

func layoutAndEncode(t *testing.T, src string, origin int, fill byte) ([]byte, *SymbolTable, *Sink) {
	t.Helper()
	fileTable.reset()
	sink := NewSink(mnemonicsForTest(), directiveNames)
	provider := MapSourceProvider{"main.asm": []byte(src)}
	p := NewParser(sink, provider)
	program, err := p.ParseFile("main.asm")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if sink.HasFatal() {
		t.Fatalf("unexpected parse diagnostics: %v", sink.All())
	}

	symtab := NewSymbolTable()
	r := NewResolver(program, sink, symtab, provider, origin, fill)
	r.Layout()
	if sink.HasFatal() {
		return nil, symtab, sink
	}
	return r.Encode(), symtab, sink
}

func TestResolverBackwardBranchDisplacement(t *testing.T) {
	image, symtab, sink := layoutAndEncode(t, "loop: INX\nCPX #5\nBNE loop\n", 0x0600, 0)
	if sink.HasFatal() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}
	sym, ok := symtab.Lookup("loop")
	if !ok || sym.Value != 0x0600 {
		t.Fatalf("got %+v, want loop bound to $0600", sym)
	}
	want := []byte{0xE8, 0xE0, 0x05, 0xD0, 0xFB}
	if string(image) != string(want) {
		t.Errorf("got % X, want % X", image, want)
	}
}

func TestResolverBranchOutOfRange(t *testing.T) {
	var lines string
	lines = "loop: NOP\n"
	for i := 0; i < 130; i++ {
		lines += "NOP\n"
	}
	lines += "BNE loop\n"
	_, _, sink := layoutAndEncode(t, lines, 0x0600, 0)
	if !sink.HasFatal() {
		t.Fatal("expected BranchOutOfRange to be fatal")
	}
	found := false
	for _, d := range sink.All() {
		if d.Kind == KindBranchOutOfRange {
			found = true
		}
	}
	if !found {
		t.Errorf("got %v, want a BranchOutOfRange diagnostic", sink.All())
	}
}

func TestResolverOrgDoesNotMoveOutputOffset(t *testing.T) {
	image, symtab, sink := layoutAndEncode(t, ".org $0600\nstart: NOP\n.org $0800\nother: NOP\n", 0, 0)
	if sink.HasFatal() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}
	start, _ := symtab.Lookup("start")
	other, _ := symtab.Lookup("other")
	if start.Value != 0x0600 || other.Value != 0x0800 {
		t.Fatalf("got start=%#x other=%#x, want $0600/$0800", start.Value, other.Value)
	}
	if len(image) != 2 {
		t.Fatalf("got %d output bytes, want 2 (org does not pad output)", len(image))
	}
}

func TestResolverPadDefaultsToFillvalueRegister(t *testing.T) {
	image, _, sink := layoutAndEncode(t, ".fillvalue $EA\n.pad 3\n", 0, 0)
	if sink.HasFatal() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}
	want := []byte{0xEA, 0xEA, 0xEA}
	if string(image) != string(want) {
		t.Errorf("got % X, want % X", image, want)
	}
}

func TestResolverDsbDefaultFillIgnoresFillvalueRegister(t *testing.T) {
	image, _, sink := layoutAndEncode(t, ".fillvalue $EA\n.dsb 3\n", 0, 0)
	if sink.HasFatal() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}
	want := []byte{0x00, 0x00, 0x00}
	if string(image) != string(want) {
		t.Errorf("got % X, want % X (dsb default fill is always $00)", image, want)
	}
}

func TestResolverDsbExplicitFillOverridesDefault(t *testing.T) {
	image, _, sink := layoutAndEncode(t, ".dsb 2, $FF\n", 0, 0)
	if sink.HasFatal() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}
	want := []byte{0xFF, 0xFF}
	if string(image) != string(want) {
		t.Errorf("got % X, want % X", image, want)
	}
}

func TestResolverDswWordFill(t *testing.T) {
	image, _, sink := layoutAndEncode(t, ".dsw 2, $1234\n", 0, 0)
	if sink.HasFatal() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}
	want := []byte{0x34, 0x12, 0x34, 0x12}
	if string(image) != string(want) {
		t.Errorf("got % X, want % X", image, want)
	}
}

func TestResolverPadNegativeIsFatal(t *testing.T) {
	_, _, sink := layoutAndEncode(t, ".org $0600\n.pad $0500\n", 0, 0)
	if !sink.HasFatal() {
		t.Fatal("expected NegativePad to be fatal")
	}
}

func TestResolverForwardAbsoluteReferenceDefaultsToWord(t *testing.T) {
	image, _, sink := layoutAndEncode(t, "JMP target\ntarget: NOP\n", 0, 0)
	if sink.HasFatal() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}
	if len(image) != 4 {
		t.Fatalf("got %d bytes, want 4 (3-byte JMP + 1-byte NOP)", len(image))
	}
	if image[0] != 0x4C {
		t.Errorf("got opcode %#02x, want JMP absolute 0x4C", image[0])
	}
}

func TestResolverBackwardConstantKeepsItsLiteralTag(t *testing.T) {
	// FOO is written as a 4-hex-digit literal, tagged Word by form even
	// though its value fits in a byte; a backward reference to it must
	// carry that tag forward into Absolute,X rather than reclassifying
	// by magnitude into ZeroPage,X.
	image, _, sink := layoutAndEncode(t, "FOO = $0005\nLDA FOO,X\n", 0, 0)
	if sink.HasFatal() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}
	if len(image) != 3 {
		t.Fatalf("got %d bytes, want 3 (absolute,X LDA)", len(image))
	}
	if image[0] != 0xBD {
		t.Errorf("got opcode %#02x, want LDA absolute,X 0xBD", image[0])
	}
}

func TestResolverForwardZeroPageOnlyReferenceStaysByte(t *testing.T) {
	// STY has no absolute,X form; a forward reference in that specific
	// family must size as zero page per the conservative rule.
	image, _, sink := layoutAndEncode(t, "STY zp,X\nzp = $10\n", 0, 0)
	if sink.HasFatal() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}
	if len(image) != 2 {
		t.Fatalf("got %d bytes, want 2 (zero-page,X STY)", len(image))
	}
	if image[0] != 0x94 {
		t.Errorf("got opcode %#02x, want STY zeropage,X 0x94", image[0])
	}
}

func TestResolverUndefinedSymbolIsFatal(t *testing.T) {
	_, _, sink := layoutAndEncode(t, "LDA missing\n", 0, 0)
	if !sink.HasFatal() {
		t.Fatal("expected UndefinedSymbol to be fatal")
	}
}

func TestResolverAsciizAppendsTerminator(t *testing.T) {
	image, _, sink := layoutAndEncode(t, ".asciiz \"hi\"\n", 0, 0)
	if sink.HasFatal() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}
	want := []byte{'h', 'i', 0}
	if string(image) != string(want) {
		t.Errorf("got % X, want % X", image, want)
	}
}

func TestResolverRedefinedSymbolMismatchIsFatal(t *testing.T) {
	_, _, sink := layoutAndEncode(t, "foo = 1\nfoo = 2\n", 0, 0)
	if !sink.HasFatal() {
		t.Fatal("expected a value-mismatched redefinition to be fatal")
	}
}

func TestResolverRedefinedSymbolMatchIsAccepted(t *testing.T) {
	_, _, sink := layoutAndEncode(t, "foo = 7\nfoo = 7\n", 0, 0)
	if sink.HasFatal() {
		t.Fatalf("unexpected diagnostics for an identical redefinition: %v", sink.All())
	}
}
