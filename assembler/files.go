package assembler

import "sync"

// fileRegistry assigns small integer indices to source file names so
// that tokens and diagnostics can carry a cheap int instead of a
// string, while still resolving back to a human-readable path when a
// Position is printed. One registry is shared process-wide: assembly
// is single-threaded per run, and indices persist across runs until
// reset clears them, so a bare package-level instance is sufficient.
type fileRegistry struct {
	mu    sync.Mutex
	names []string
}

var fileTable = &fileRegistry{}

// register returns the index for name, minting a new one if this is
// the first time name has been seen.
func (r *fileRegistry) register(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.names {
		if n == name {
			return i
		}
	}
	r.names = append(r.names, name)
	return len(r.names) - 1
}

// name resolves an index back to the file path it was registered
// with, or "<unknown>" if the index is out of range.
func (r *fileRegistry) name(index int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.names) {
		return "<unknown>"
	}
	return r.names[index]
}

// reset clears the registry. Tests call this between assembler runs
// so file indices stay small and predictable.
func (r *fileRegistry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = nil
}
