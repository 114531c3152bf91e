package assembler

import "fmt"

// SymbolKind distinguishes a named constant from a label bound to an
// assembly address.
type SymbolKind byte

const (
	SymConstant SymbolKind = iota
	SymLabel
)

// Symbol is one entry of the symbol table: a fully-qualified name
// bound either to a literal value (ConstDef) or to the reference_pc
// captured when its LabelDef was visited.
type Symbol struct {
	Kind  SymbolKind
	Value int // constant value, or label address (0..65535)
	Width Width
	Pos   Position
}

// RedefinedSymbolError reports that name was bound to two different
// values, either within one file or across an include merge. Equal
// redefinitions (e.g. a header included twice with the same constant)
// are silently accepted; only a mismatch in value or kind is fatal.
type RedefinedSymbolError struct {
	Name  string
	First Position
	Pos   Position
}

func (e *RedefinedSymbolError) Error() string {
	return fmt.Sprintf("%s: symbol %q redefined (first defined at %s)", e.Pos, e.Name, e.First)
}

// UndefinedSymbolError reports a reference to a name with no matching
// ConstDef or LabelDef anywhere in the translation unit.
type UndefinedSymbolError struct {
	Name string
	Pos  Position
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("%s: undefined symbol %q", e.Pos, e.Name)
}

// SymbolTable maps fully-qualified names to their bound value. Local
// labels are stored flat, under their composite "parent.local" key, so
// lookups never need to walk a scope chain; DanglingLocal is caught at
// parse time, before a composite key can even be formed.
type SymbolTable struct {
	symbols map[string]Symbol
}

// NewSymbolTable returns an empty table ready for Define/Lookup.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]Symbol)}
}

// Define binds name to sym. A second Define of the same name is
// accepted only if sym.Value and sym.Kind exactly match the existing
// binding; otherwise it returns RedefinedSymbolError identifying both
// source positions.
func (t *SymbolTable) Define(name string, sym Symbol) error {
	if existing, ok := t.symbols[name]; ok {
		if existing.Kind == sym.Kind && existing.Value == sym.Value {
			return nil
		}
		return &RedefinedSymbolError{Name: name, First: existing.Pos, Pos: sym.Pos}
	}
	t.symbols[name] = sym
	return nil
}

// Lookup returns the symbol bound to name and whether it exists.
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	sym, ok := t.symbols[name]
	return sym, ok
}

// Names returns every defined name, in no particular order.
func (t *SymbolTable) Names() []string {
	names := make([]string, 0, len(t.symbols))
	for name := range t.symbols {
		names = append(names, name)
	}
	return names
}

// LocalKey composes the flat symbol-table key for a local label or
// local reference scoped to parent.
func LocalKey(parent, local string) string {
	return parent + "." + local
}
