package assembler

import (
	"path/filepath"

	"github.com/ochaton/sixfiveasm/mos6502"
)

// BranchOutOfRangeError reports a relative branch whose target lies
// outside the encodable -128..127 displacement.
type BranchOutOfRangeError struct {
	Mnemonic   string
	Pos        Position
	Displace   int
}

func (e *BranchOutOfRangeError) Error() string {
	return e.Pos.String() + ": branch displacement " + itoa(e.Displace) + " out of range for " + e.Mnemonic
}

// NegativePadError reports a .pad whose target address lies behind
// the current reference_pc.
type NegativePadError struct {
	Pos    Position
	Target int
	PC     int
}

func (e *NegativePadError) Error() string {
	return e.Pos.String() + ": .pad target " + itoa(e.Target) + " is behind current address " + itoa(e.PC)
}

func itoa(n int) string {
	if n < 0 {
		return "-" + itoa(-n)
	}
	if n < 10 {
		return string(rune('0' + n))
	}
	return itoa(n/10) + string(rune('0'+n%10))
}

// layout is what Pass 1 records about one AST item: the addressing
// mode it locks in for an instruction, the byte count it contributes
// to the output image, and the (reference_pc, output_offset) pair in
// effect when the item was sized. Pass 2 replays exactly this
// decision rather than re-deriving it, so size can never drift
// between passes.
type layout struct {
	item      *Item
	mode      mos6502.Mode
	size      int
	refPC     int
	outOffset int
	fill      int    // effective filler for Pad/Dsb (byte) and Dsw (word)
	incbin    []byte // cached file contents for DirIncbin
}

// Resolver runs the two-pass layout algorithm over a parsed Program:
// Pass 1 sizes every item and builds the symbol table; Pass 2 (driven
// by Encode) emits the final byte image using that symbol table.
type Resolver struct {
	program   *Program
	sink      *Sink
	symtab    *SymbolTable
	provider  SourceProvider
	origin    int
	fillvalue byte
	layouts   []layout
}

// NewResolver prepares a Resolver. origin is the initial reference_pc
// (normally 0, or the configured default origin); fillvalue is the
// initial pad/dsb/dsw filler byte, overridden by any .fillvalue
// directive encountered during layout.
func NewResolver(program *Program, sink *Sink, symtab *SymbolTable, provider SourceProvider, origin int, fillvalue byte) *Resolver {
	return &Resolver{program: program, sink: sink, symtab: symtab, provider: provider, origin: origin, fillvalue: fillvalue}
}

// Layout runs Pass 1: sizing and symbol-table construction. It stops
// early, returning what it has so far, the moment the sink records a
// fatal diagnostic.
func (r *Resolver) Layout() {
	set := mos6502.Get()
	refPC := r.origin
	outOffset := 0

	for i := range r.program.Items {
		item := &r.program.Items[i]
		lay := layout{item: item, refPC: refPC, outOffset: outOffset, fill: int(r.fillvalue)}

		switch {
		case item.Label != nil:
			sym := Symbol{Kind: SymLabel, Value: refPC, Pos: item.Label.Pos}
			if err := r.symtab.Define(item.Label.Name, sym); err != nil {
				r.reportRedefine(err)
			}

		case item.Const != nil:
			sym := Symbol{Kind: SymConstant, Value: item.Const.Value.Literal.Value, Width: item.Const.Value.Literal.Width, Pos: item.Const.Pos}
			if err := r.symtab.Define(item.Const.Name, sym); err != nil {
				r.reportRedefine(err)
			}

		case item.Instruction != nil:
			mode, size := r.sizeInstruction(set, item.Instruction)
			lay.mode, lay.size = mode, size

		case item.Directive != nil:
			r.sizeDirective(item.Directive, &lay, &refPC)
		}

		r.layouts = append(r.layouts, lay)
		refPC += lay.size
		outOffset += lay.size

		if r.sink.HasFatal() {
			return
		}
	}
}

func (r *Resolver) reportRedefine(err error) {
	if re, ok := err.(*RedefinedSymbolError); ok {
		r.sink.Errorf(KindRedefinedSymbol, re.Pos, "%s", re.Error())
	}
}

// sizeInstruction implements the Pass 1 sizing rule from §4.3: fixed
// sizes for Implicit/Accumulator/Immediate/Indirect*/Relative, and a
// symbol-aware Byte/Word choice for the absolute-family modes.
func (r *Resolver) sizeInstruction(set *mos6502.InstructionSet, inst *InstructionItem) (mos6502.Mode, int) {
	switch inst.Mode {
	case AddrImplicit:
		return mos6502.IMP, 1
	case AddrAccumulator:
		return mos6502.ACC, 1
	case AddrImmediate:
		return mos6502.IMM, 2
	case AddrIndirect:
		return mos6502.IND, 3
	case AddrIndirectX:
		return mos6502.IDX, 2
	case AddrIndirectY:
		return mos6502.IDY, 2
	case AddrRelative:
		return mos6502.REL, 2
	case AddrAbsolute, AddrAbsoluteX, AddrAbsoluteY:
		zp, abs := familyModes(inst.Mode)
		width := r.operandWidth(set, inst.Mnemonic, inst.Operand, zp, abs)
		if width == Byte {
			return zp, 2
		}
		return abs, 3
	default:
		return mos6502.IMP, 1
	}
}

// familyModes maps an absolute-family AddrMode to its zero-page and
// absolute mos6502.Mode counterparts.
func familyModes(mode AddrMode) (zp, abs mos6502.Mode) {
	switch mode {
	case AddrAbsoluteX:
		return mos6502.ZPX, mos6502.ABX
	case AddrAbsoluteY:
		return mos6502.ZPY, mos6502.ABY
	default:
		return mos6502.ZPG, mos6502.ABS
	}
}

// operandWidth decides Byte vs Word for an absolute-family operand
// during Pass 1. A literal's own tag is authoritative — and so is a
// resolved constant's tag, carried forward via Symbol.Width from the
// ConstDef's literal, since spec ties the zero-page/absolute choice to
// how a value was written, not merely to its magnitude. A label
// address carries no such tag (it's bound to reference_pc, not to a
// literal form), so a backward-referenced label is classified by its
// actual value instead. A symbol not yet defined (forward reference)
// falls back to the conservative rule from §4.3 and §9: Word unless
// the mnemonic supports only the zero-page form.
func (r *Resolver) operandWidth(set *mos6502.InstructionSet, mnemonic string, operand Operand, zp, abs mos6502.Mode) Width {
	switch operand.Kind {
	case OperandLiteral:
		return operand.Literal.Width
	case OperandSymbol:
		if sym, ok := r.symtab.Lookup(operand.Symbol); ok {
			if sym.Kind == SymConstant {
				return sym.Width
			}
			if sym.Value < 256 {
				return Byte
			}
			return Word
		}
		zpOK := set.Lookup(mnemonic, zp) != nil
		absOK := set.Lookup(mnemonic, abs) != nil
		if zpOK && !absOK {
			return Byte
		}
		return Word
	default:
		return Word
	}
}

func (r *Resolver) sizeDirective(d *DirectiveItem, lay *layout, refPC *int) {
	switch d.Kind {
	case DirOrg:
		*refPC = d.Args[0].Operand.Literal.Value
		lay.refPC = *refPC
		lay.size = 0

	case DirFillValue:
		r.fillvalue = byte(d.Args[0].Operand.Literal.Value)
		lay.size = 0

	case DirPad:
		target := d.Args[0].Operand.Literal.Value
		delta := target - *refPC
		if delta < 0 {
			r.sink.Errorf(KindNegativePad, d.Pos, "%s", (&NegativePadError{Pos: d.Pos, Target: target, PC: *refPC}).Error())
			lay.size = 0
			return
		}
		lay.size = delta
		lay.fill = int(r.fillvalue)
		if len(d.Args) == 2 {
			lay.fill = d.Args[1].Operand.Literal.Value
		}

	case DirByte:
		n := 0
		for _, a := range d.Args {
			if a.IsString {
				n += len(a.String)
			} else {
				n++
			}
		}
		lay.size = n

	case DirWord:
		lay.size = 2 * len(d.Args)

	case DirDsb:
		lay.size = d.Args[0].Operand.Literal.Value
		lay.fill = 0
		if len(d.Args) == 2 {
			lay.fill = d.Args[1].Operand.Literal.Value
		}

	case DirDsw:
		lay.size = 2 * d.Args[0].Operand.Literal.Value
		lay.fill = 0
		if len(d.Args) == 2 {
			lay.fill = d.Args[1].Operand.Literal.Value
		}

	case DirAscii:
		lay.size = len(d.Args[0].String)

	case DirAsciiz:
		lay.size = len(EncodeAscii(d.Args[0].String, true))

	case DirIncbin:
		data, _, err := r.provider.Read(filepath.Dir(d.Pos.File), d.Args[0].String)
		if err != nil {
			r.sink.Errorf(KindFileNotFound, d.Pos, "cannot read incbin %q: %v", d.Args[0].String, err)
			return
		}
		lay.incbin = data
		lay.size = len(data)

	case DirWarning:
		r.sink.Warnf(d.Pos, "%s", d.Args[0].String)
		lay.size = 0

	case DirFail:
		r.sink.Errorf(KindUserFail, d.Pos, "%s", d.Args[0].String)
		lay.size = 0
	}
}

// Encode runs Pass 2 over the layouts Layout computed, returning the
// final byte image. It must be called only after Layout leaves the
// sink without a fatal diagnostic.
func (r *Resolver) Encode() []byte {
	total := 0
	for _, lay := range r.layouts {
		total += lay.size
	}
	out := make([]byte, 0, total)

	for _, lay := range r.layouts {
		item := lay.item
		switch {
		case item.Instruction != nil:
			out = append(out, r.encodeInstruction(item.Instruction, lay)...)

		case item.Directive != nil:
			out = append(out, r.encodeDirective(item.Directive, lay)...)
		}

		if r.sink.HasFatal() {
			return out
		}
	}
	return out
}

func (r *Resolver) encodeInstruction(inst *InstructionItem, lay layout) []byte {
	value, ok := r.resolveOperandValue(inst, lay)
	if !ok {
		return nil
	}

	if inst.Mode == AddrRelative {
		target := value
		pcAfter := lay.refPC + lay.size
		disp := target - pcAfter
		if disp < -128 || disp > 127 {
			r.sink.Errorf(KindBranchOutOfRange, inst.Pos, "%s",
				(&BranchOutOfRangeError{Mnemonic: inst.Mnemonic, Pos: inst.Pos, Displace: disp}).Error())
			return nil
		}
		value = disp & 0xFF
	}

	b, err := EncodeInstruction(inst.Mnemonic, lay.mode, value, inst.Pos)
	if err != nil {
		r.sink.Errorf(KindInvalidAddressingMode, inst.Pos, "%s", err.Error())
		return nil
	}
	return b
}

func (r *Resolver) resolveOperandValue(inst *InstructionItem, lay layout) (int, bool) {
	if inst.Mode == AddrImplicit || inst.Mode == AddrAccumulator {
		return 0, true
	}
	switch inst.Operand.Kind {
	case OperandLiteral:
		return inst.Operand.Literal.Value, true
	case OperandSymbol:
		sym, ok := r.symtab.Lookup(inst.Operand.Symbol)
		if !ok {
			r.sink.Errorf(KindUndefinedSymbol, inst.Operand.Pos, "%s",
				(&UndefinedSymbolError{Name: inst.Operand.Symbol, Pos: inst.Operand.Pos}).Error())
			return 0, false
		}
		return sym.Value, true
	default:
		return 0, true
	}
}

func (r *Resolver) encodeDirective(d *DirectiveItem, lay layout) []byte {
	switch d.Kind {
	case DirPad, DirDsb:
		return EncodeFill(lay.size, byte(lay.fill))

	case DirDsw:
		b := make([]byte, 0, lay.size)
		for i := 0; i < lay.size/2; i++ {
			b = append(b, EncodeWord(lay.fill)...)
		}
		return b

	case DirByte:
		b := make([]byte, 0, lay.size)
		for _, a := range d.Args {
			if a.IsString {
				b = append(b, []byte(a.String)...)
			} else {
				b = append(b, byte(a.Operand.Literal.Value))
			}
		}
		return b

	case DirWord:
		b := make([]byte, 0, lay.size)
		for _, a := range d.Args {
			b = append(b, EncodeWord(a.Operand.Literal.Value)...)
		}
		return b

	case DirAscii:
		return EncodeAscii(d.Args[0].String, false)

	case DirAsciiz:
		return EncodeAscii(d.Args[0].String, true)

	case DirIncbin:
		return lay.incbin

	default:
		return nil
	}
}
