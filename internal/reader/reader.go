// Package reader selects a geometry file reader by file extension.
// Format handling is behind a single capability interface instead of
// type-tag branches in the engine.
package reader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/stepmesh/stepmesh/pkg/kernel"
	"github.com/stepmesh/stepmesh/pkg/kernel/facet"
)

// Reader imports one geometry file into a Solid.
type Reader interface {
	Read(path string) (kernel.Solid, error)
}

// Registry maps lowercased file extensions to readers.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// Default returns the registry with all built-in formats wired:
// STL is read natively; STEP and IGES require a B-rep kernel binding
// and report a read failure until one is configured.
func Default() *Registry {
	r := NewRegistry()
	r.Register(".stl", stlReader{})
	for _, ext := range []string{".step", ".stp", ".iges", ".igs"} {
		r.Register(ext, brepReader{format: strings.TrimPrefix(ext, ".")})
	}
	return r
}

// Register wires a reader for an extension (with leading dot).
func (r *Registry) Register(ext string, reader Reader) {
	r.readers[strings.ToLower(ext)] = reader
}

// ForPath returns the reader responsible for a file. Unknown
// extensions fail with kernel.ErrUnsupportedFormat.
func (r *Registry) ForPath(path string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	reader, ok := r.readers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", kernel.ErrUnsupportedFormat, ext)
	}
	return reader, nil
}

// Read imports a file using the reader registered for its extension.
func (r *Registry) Read(path string) (kernel.Solid, error) {
	reader, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}
	return reader.Read(path)
}

type stlReader struct{}

func (stlReader) Read(path string) (kernel.Solid, error) {
	return facet.ReadSTL(path)
}

// brepReader stands in for the native CAD formats. Importing STEP/IGES
// is delegated to an external B-rep kernel; without one configured the
// read fails cleanly instead of guessing at the format.
type brepReader struct {
	format string
}

func (b brepReader) Read(path string) (kernel.Solid, error) {
	return nil, fmt.Errorf("%w: %s import requires a B-rep kernel binding", kernel.ErrRead, b.format)
}
