package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepmesh/stepmesh/pkg/geometry"
	"github.com/stepmesh/stepmesh/pkg/kernel"
	"github.com/stepmesh/stepmesh/pkg/kernel/facet"
)

func TestMeshBoxCounts(t *testing.T) {
	k := facet.New()
	box := k.MakeBox(geometry.Vector3{}, geometry.NewVector3(10, 10, 10))

	mesh, err := Mesh(k, box, DefaultOptions(), nil)
	require.NoError(t, err)

	assert.Equal(t, 6, mesh.FaceCount())
	assert.Equal(t, 24, mesh.VertexCount(), "four vertices per face, no cross-face merge")
	assert.Equal(t, 12, mesh.TriangleCount())
	assert.Len(t, mesh.Normals, len(mesh.Vertices))
}

func TestMeshIdempotent(t *testing.T) {
	k := facet.New()
	box := k.MakeBox(geometry.Vector3{}, geometry.NewVector3(3, 4, 5))

	first, err := Mesh(k, box, DefaultOptions(), nil)
	require.NoError(t, err)
	second, err := Mesh(k, box, DefaultOptions(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.Vertices, second.Vertices)
	assert.Equal(t, first.Indices, second.Indices)
	assert.Equal(t, first.Normals, second.Normals)
	assert.Equal(t, first.Faces, second.Faces)
}

func TestMeshFaceAreas(t *testing.T) {
	k := facet.New()
	box := k.MakeBox(geometry.Vector3{}, geometry.NewVector3(10, 10, 10))

	mesh, err := Mesh(k, box, DefaultOptions(), nil)
	require.NoError(t, err)

	for _, f := range mesh.Faces {
		assert.InDelta(t, 100.0, f.Area, 1e-9, "each face of a 10-cube is 100 square units")
		assert.InDelta(t, 1.0, f.Normal.Length(), 1e-12)
	}
}

// stubKernel reports a fixed set of face triangulations, some of which
// may be malformed or absent.
type stubKernel struct {
	faces []*kernel.FaceTriangulation // nil entry = face without triangulation
}

type stubSolid struct{}

func (stubSolid) AABB() geometry.BoundingBox { return geometry.NewBoundingBox() }

func (s *stubKernel) Tessellate(kernel.Solid, float64, float64) error { return nil }

func (s *stubKernel) Faces(kernel.Solid) []kernel.Face {
	handles := make([]kernel.Face, len(s.faces))
	for i, f := range s.faces {
		handles[i] = f
	}
	return handles
}

func (s *stubKernel) Triangulation(f kernel.Face) (*kernel.FaceTriangulation, bool) {
	tri, _ := f.(*kernel.FaceTriangulation)
	if tri == nil {
		return nil, false
	}
	return tri, true
}

func (s *stubKernel) MakeBox(_, _ geometry.Vector3) kernel.Solid                  { return stubSolid{} }
func (s *stubKernel) Subtract(a, _ kernel.Solid) kernel.Solid                     { return a }
func (s *stubKernel) Translate(sol kernel.Solid, _ geometry.Vector3) kernel.Solid { return sol }
func (s *stubKernel) WriteSTL(kernel.Solid, string, float64) error                { return nil }

func TestMeshIsolatesBadFaces(t *testing.T) {
	bad := quadTriangulation()
	bad.Triangles = [][3]int{{1, 2, 99}}

	k := &stubKernel{faces: []*kernel.FaceTriangulation{
		quadTriangulation(),
		bad,
		nil, // absent triangulation, skipped silently
		quadTriangulation(),
	}}

	mesh, err := Mesh(k, stubSolid{}, DefaultOptions(), nil)
	require.NoError(t, err, "a bad face must not fail the extraction")

	require.Len(t, mesh.Faces, 2)
	assert.Equal(t, "face_0", mesh.Faces[0].ID)
	assert.Equal(t, "face_3", mesh.Faces[1].ID, "face ids keep their topological index")
}

func TestMeshDropsEmptyFaces(t *testing.T) {
	k := &stubKernel{faces: []*kernel.FaceTriangulation{
		{Transform: geometry.IdentityTransform()}, // zero triangles
		quadTriangulation(),
	}}

	mesh, err := Mesh(k, stubSolid{}, DefaultOptions(), nil)
	require.NoError(t, err)
	require.Len(t, mesh.Faces, 1)
	assert.Equal(t, "face_1", mesh.Faces[0].ID)
}
