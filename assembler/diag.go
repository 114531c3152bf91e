package assembler

import (
	"fmt"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

// Severity distinguishes a fatal diagnostic (aborts compilation) from
// a warning (reported but non-blocking).
type Severity byte

const (
	SevError Severity = iota
	SevWarning
)

// Kind names one of the closed set of diagnostic categories.
type Kind string

const (
	KindLexError             Kind = "LexError"
	KindParseError           Kind = "ParseError"
	KindUnknownMnemonic      Kind = "UnknownMnemonic"
	KindInvalidAddressingMode Kind = "InvalidAddressingMode"
	KindUndefinedSymbol      Kind = "UndefinedSymbol"
	KindRedefinedSymbol      Kind = "RedefinedSymbol"
	KindBranchOutOfRange     Kind = "BranchOutOfRange"
	KindNegativePad          Kind = "NegativePad"
	KindIncludeCycle         Kind = "IncludeCycle"
	KindFileNotFound         Kind = "FileNotFound"
	KindUserFail             Kind = "UserFail"
	KindDanglingLocal        Kind = "DanglingLocal"
	KindWarning              Kind = "Warning"
)

// Diagnostic is one reportable event: a source position, a kind, a
// human-readable message, and whether it's fatal.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Pos      Position
	Message  string
}

func (d Diagnostic) String() string {
	label := "error"
	if d.Severity == SevWarning {
		label = "warning"
	}
	return fmt.Sprintf("%s: %s: %s", d.Pos, label, d.Message)
}

// Sink collects diagnostics in source order and deduplicates by
// position: once a diagnostic (error or warning) has been recorded at
// a given (file, line, column), a second one at that exact position is dropped
// rather than reported twice. Sink also owns the prefix trees used to
// offer a "did you mean" suggestion on an unknown mnemonic or
// directive, the same shortest-unambiguous-prefix mechanism the
// teacher's interactive command trees use for abbreviation lookup.
type Sink struct {
	diagnostics []Diagnostic
	seen        map[Position]bool
	mnemonics   *prefixtree.Tree[string]
	directives  *prefixtree.Tree[string]
}

// NewSink builds a Sink whose suggestion trees are seeded from the
// known mnemonic and directive name sets.
func NewSink(mnemonics, directives []string) *Sink {
	s := &Sink{
		seen:       make(map[Position]bool),
		mnemonics:  prefixtree.New[string](),
		directives: prefixtree.New[string](),
	}
	for _, m := range mnemonics {
		s.mnemonics.Add(strings.ToLower(m), m)
	}
	for _, d := range directives {
		s.directives.Add(d, d)
	}
	return s
}

// Report records a diagnostic, skipping it if one was already
// recorded at the same position.
func (s *Sink) Report(d Diagnostic) {
	if s.seen[d.Pos] {
		return
	}
	s.seen[d.Pos] = true
	s.diagnostics = append(s.diagnostics, d)
}

// Errorf records a fatal diagnostic of kind at pos.
func (s *Sink) Errorf(kind Kind, pos Position, format string, args ...interface{}) {
	s.Report(Diagnostic{Severity: SevError, Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Warnf records a non-fatal diagnostic at pos.
func (s *Sink) Warnf(pos Position, format string, args ...interface{}) {
	s.Report(Diagnostic{Severity: SevWarning, Kind: KindWarning, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// HasFatal reports whether any recorded diagnostic is an error rather
// than a warning.
func (s *Sink) HasFatal() bool {
	for _, d := range s.diagnostics {
		if d.Severity == SevError {
			return true
		}
	}
	return false
}

// All returns every recorded diagnostic in source order.
func (s *Sink) All() []Diagnostic { return s.diagnostics }

// SuggestMnemonic returns the mnemonic that name uniquely abbreviates,
// or "" if name is not an unambiguous prefix of exactly one known
// mnemonic.
func (s *Sink) SuggestMnemonic(name string) string {
	full, err := s.mnemonics.FindValue(strings.ToLower(name))
	if err != nil {
		return ""
	}
	return full
}

// SuggestDirective returns the directive that name uniquely
// abbreviates, or "" otherwise.
func (s *Sink) SuggestDirective(name string) string {
	full, err := s.directives.FindValue(strings.ToLower(name))
	if err != nil {
		return ""
	}
	return full
}
