package assembler

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
)

// SourceProvider resolves a logical file name to bytes. The filesystem
// implementation below is the only one wired into the CLI, but the
// interface lets tests substitute an in-memory map without touching
// disk.
type SourceProvider interface {
	// Read returns the full contents of name. base is the directory of
	// the file that referenced name (empty for the top-level input),
	// used to resolve relative .include/.incbin paths the way a C
	// preprocessor would: relative to the referencing file, not the
	// process's working directory.
	Read(base, name string) (data []byte, resolved string, err error)
}

// FileSourceProvider reads source and incbin files from disk, trying
// each of SearchPaths in order before giving up. Relative to the
// referencing file always wins over the search path, mirroring how a
// local include should shadow a configured library directory.
type FileSourceProvider struct {
	SearchPaths []string
}

func (p *FileSourceProvider) Read(base, name string) ([]byte, string, error) {
	candidates := make([]string, 0, len(p.SearchPaths)+1)
	if filepath.IsAbs(name) {
		candidates = append(candidates, name)
	} else {
		if base != "" {
			candidates = append(candidates, filepath.Join(base, name))
		} else {
			candidates = append(candidates, name)
		}
		for _, dir := range p.SearchPaths {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	var firstErr error
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, path, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, "", &FileError{Name: name, Cause: firstErr}
}

// FileError reports that a referenced source or incbin file could not
// be located or read; it is wrapped into a FileNotFound diagnostic by
// the parser.
type FileError struct {
	Name  string
	Cause error
}

func (e *FileError) Error() string {
	return errors.Wrapf(e.Cause, "cannot read %q", e.Name).Error()
}

func (e *FileError) Unwrap() error { return e.Cause }

// MapSourceProvider serves file contents from an in-memory map, keyed
// by logical name exactly as written in .include/.incbin arguments.
// Tests use this to exercise include/incbin handling without a
// filesystem fixture.
type MapSourceProvider map[string][]byte

func (m MapSourceProvider) Read(base, name string) ([]byte, string, error) {
	if data, ok := m[name]; ok {
		return data, name, nil
	}
	return nil, "", &FileError{Name: name, Cause: os.ErrNotExist}
}
