// Package kernel defines the interface to a B-rep/tessellation kernel.
// The extraction engine consumes per-face triangulations through this
// interface and never depends on a concrete kernel implementation.
package kernel

import (
	"github.com/stepmesh/stepmesh/pkg/geometry"
)

// Solid is an opaque handle to a solid body owned by a Kernel.
// The engine only reads geometry from it and may ask the kernel to
// apply rigid transforms; it never mutates topology.
type Solid interface {
	// AABB returns the axis-aligned bounding box of the solid.
	// An empty box signals a void solid with no extent.
	AABB() geometry.BoundingBox
}

// Face is an opaque handle to one topological face of a Solid.
type Face interface{}

// FaceTriangulation is the raw tessellation of a single face as reported
// by the kernel: local nodes, 1-based index triples into those nodes, and
// the rigid transform that places the nodes in the global frame.
type FaceTriangulation struct {
	Nodes     []geometry.Vector3
	Triangles [][3]int
	Transform geometry.Transform
}

// Kernel is a B-rep geometry kernel. Implementations must tolerate
// concurrent calls on distinct solids.
type Kernel interface {
	// Tessellate meshes the solid with the given linear and angular
	// tolerances. It must be called, and succeed, before Faces or
	// Triangulation are queried.
	Tessellate(s Solid, linearTol, angularTol float64) error

	// Faces returns the ordered face handles of a tessellated solid.
	Faces(s Solid) []Face

	// Triangulation returns the tessellation of one face. The second
	// return is false when the face carries no triangulation; such
	// faces are skipped by callers, not treated as errors.
	Triangulation(f Face) (*FaceTriangulation, bool)

	// MakeBox creates an axis-aligned box spanning min..max.
	MakeBox(min, max geometry.Vector3) Solid

	// Subtract returns a solid representing a minus b.
	Subtract(a, b Solid) Solid

	// Translate returns a copy of the solid moved by offset.
	Translate(s Solid, offset geometry.Vector3) Solid

	// WriteSTL serializes the solid to a binary STL file, tessellating
	// at the given tolerance if the kernel needs to.
	WriteSTL(s Solid, path string, tol float64) error
}
