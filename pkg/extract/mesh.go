// Package extract converts per-face kernel triangulations into one
// indexed global mesh with face metadata for picking, plus synthesized
// vertex normals.
package extract

import (
	"github.com/stepmesh/stepmesh/pkg/geometry"
)

// FaceMesh is the indexed local mesh of a single face: deduplicated
// vertices in the global frame and 0-based triangle indices into them.
type FaceMesh struct {
	ID       string
	Vertices []geometry.Vector3
	Indices  [][3]int
}

// FaceInfo is the per-face metadata row of a GlobalMesh, used by the
// viewer to map picked triangles back to topological faces.
type FaceInfo struct {
	ID            string
	VertexStart   int
	VertexCount   int
	TriangleStart int
	TriangleCount int

	Area   float64
	Center geometry.Vector3
	Normal geometry.Vector3
	Bounds geometry.BoundingBox
}

// GlobalMesh is the assembled solid mesh. Vertices and Normals are flat
// xyz sequences, Indices are flat triangle index triples. Vertices are
// deliberately not deduplicated across faces: adjacent faces sharing a
// geometric edge keep their own coincident copies, which preserves hard
// face boundaries for flat shading and per-face picking.
type GlobalMesh struct {
	Vertices []float64
	Indices  []uint32
	Normals  []float64
	Faces    []FaceInfo
}

// VertexCount returns the number of vertices.
func (m *GlobalMesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *GlobalMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// FaceCount returns the number of mapped faces.
func (m *GlobalMesh) FaceCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *GlobalMesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}
