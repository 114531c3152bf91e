// Package assembler implements the lexer, parser, two-pass layout
// resolver, and code generator for a MOS 6502 cross-assembler.
package assembler

import (
	"github.com/go-faster/errors"
	"gopkg.in/Sirupsen/logrus.v0"

	"github.com/ochaton/sixfiveasm/mos6502"
)

// Options configures one assembly run. Origin and Fillvalue mirror
// the [assemble] section of the optional TOML config file, from which
// the CLI fills them. Assemble reads only Origin and Fillvalue; the
// CLI uses SearchPaths to build its FileSourceProvider.
type Options struct {
	Origin      int
	Fillvalue   byte
	SearchPaths []string
	Verbose     bool
}

// Result is everything a caller needs after a successful assembly:
// the byte image, the symbol table it was laid out against, and any
// non-fatal warnings collected along the way.
type Result struct {
	Image       []byte
	Symbols     *SymbolTable
	Diagnostics []Diagnostic
}

// Assemble runs the full pipeline — lex, parse (splicing includes),
// lay out, encode — over path, reading source through provider. It
// returns the completed image and symbol table, or a non-nil error
// carrying the diagnostics collected up to and including the first
// fatal one.
func Assemble(path string, provider SourceProvider, opts Options) (*Result, error) {
	log := logrus.StandardLogger().WithField("component", "assembler")

	sink := NewSink(mos6502.Get().Names(), directiveNames)

	log.WithField("input", path).Info("parsing")
	parser := NewParser(sink, provider)
	program, err := parser.ParseFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}
	if sink.HasFatal() {
		return nil, &AssemblyError{Diagnostics: sink.All()}
	}

	log.WithField("items", len(program.Items)).Info("laying out program")
	symtab := NewSymbolTable()
	resolver := NewResolver(program, sink, symtab, provider, opts.Origin, opts.Fillvalue)
	resolver.Layout()
	if sink.HasFatal() {
		return nil, &AssemblyError{Diagnostics: sink.All()}
	}

	log.Info("encoding")
	image := resolver.Encode()
	if sink.HasFatal() {
		return nil, &AssemblyError{Diagnostics: sink.All()}
	}

	return &Result{Image: image, Symbols: symtab, Diagnostics: sink.All()}, nil
}

// directiveNames seeds the diagnostic sink's "did you mean" tree for
// unrecognized directives.
var directiveNames = []string{
	"org", "byte", "word", "ascii", "asciiz", "incbin",
	"warning", "fail", "include", "pad", "fillvalue", "dsb", "dsw",
}

// AssemblyError wraps the diagnostic list produced by a run that
// failed with at least one fatal error. Its Error() reports only the
// first fatal diagnostic; callers that want the full list (including
// any warnings collected before it) should inspect Diagnostics
// directly, the way the CLI does when printing every entry.
type AssemblyError struct {
	Diagnostics []Diagnostic
}

func (e *AssemblyError) Error() string {
	for _, d := range e.Diagnostics {
		if d.Severity == SevError {
			return d.String()
		}
	}
	return "assembly failed"
}
