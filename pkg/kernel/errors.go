package kernel

import "errors"

// Sentinel errors for the failure kinds the engine distinguishes.
// Callers match them with errors.Is; concrete errors wrap these with
// context via fmt.Errorf("...: %w", ...).
var (
	// ErrUnsupportedFormat: the input file type cannot be read.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrRead: the kernel failed to import or transfer geometry.
	ErrRead = errors.New("geometry read failure")

	// ErrMeshing: tessellation did not complete; no partial mesh exists.
	ErrMeshing = errors.New("meshing failed")

	// ErrGeometryExtraction: malformed triangulation data on one face.
	// Fatal for that face only.
	ErrGeometryExtraction = errors.New("geometry extraction failed")

	// ErrGeometry: degenerate geometry, e.g. a void bounding box.
	ErrGeometry = errors.New("geometry error")

	// ErrNotFound: lookup of an unknown solid identifier.
	ErrNotFound = errors.New("solid not found")
)
