package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepmesh/stepmesh/pkg/geometry"
	"github.com/stepmesh/stepmesh/pkg/kernel"
)

func quadTriangulation() *kernel.FaceTriangulation {
	// Two triangles sharing the 1-4 diagonal of a unit quad.
	return &kernel.FaceTriangulation{
		Nodes: []geometry.Vector3{
			geometry.NewVector3(0, 0, 0),
			geometry.NewVector3(1, 0, 0),
			geometry.NewVector3(1, 1, 0),
			geometry.NewVector3(0, 1, 0),
		},
		Triangles: [][3]int{{1, 2, 3}, {1, 3, 4}},
		Transform: geometry.IdentityTransform(),
	}
}

func TestExtractFaceDeduplicatesSharedNodes(t *testing.T) {
	mesh, err := ExtractFace("face_0", quadTriangulation())
	require.NoError(t, err)

	assert.Len(t, mesh.Vertices, 4, "shared diagonal nodes stored once")
	require.Len(t, mesh.Indices, 2)
	assert.Equal(t, [3]int{0, 1, 2}, mesh.Indices[0])
	assert.Equal(t, [3]int{0, 2, 3}, mesh.Indices[1])
}

func TestExtractFaceAppliesTransform(t *testing.T) {
	tri := quadTriangulation()
	tri.Transform = geometry.TranslationTransform(geometry.NewVector3(10, 0, 0))

	mesh, err := ExtractFace("face_0", tri)
	require.NoError(t, err)

	assert.Equal(t, geometry.NewVector3(10, 0, 0), mesh.Vertices[0])
	assert.Equal(t, geometry.NewVector3(11, 0, 0), mesh.Vertices[1])
}

func TestExtractFacePreservesWinding(t *testing.T) {
	tri := quadTriangulation()
	tri.Triangles = [][3]int{{3, 2, 1}}

	mesh, err := ExtractFace("face_0", tri)
	require.NoError(t, err)

	// First-seen order defines local indices; winding order is intact.
	require.Len(t, mesh.Indices, 1)
	assert.Equal(t, [3]int{0, 1, 2}, mesh.Indices[0])
	assert.Equal(t, geometry.NewVector3(1, 1, 0), mesh.Vertices[0])
	assert.Equal(t, geometry.NewVector3(1, 0, 0), mesh.Vertices[1])
	assert.Equal(t, geometry.NewVector3(0, 0, 0), mesh.Vertices[2])
}

func TestExtractFaceRejectsOutOfRangeNodes(t *testing.T) {
	tri := quadTriangulation()
	tri.Triangles = [][3]int{{1, 2, 5}}

	_, err := ExtractFace("face_0", tri)
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrGeometryExtraction)

	tri.Triangles = [][3]int{{0, 1, 2}}
	_, err = ExtractFace("face_0", tri)
	assert.ErrorIs(t, err, kernel.ErrGeometryExtraction, "node indices are 1-based")
}

func TestExtractFaceEmptyTriangulation(t *testing.T) {
	tri := &kernel.FaceTriangulation{Transform: geometry.IdentityTransform()}

	mesh, err := ExtractFace("face_0", tri)
	require.NoError(t, err, "zero triangles is not an error")
	assert.Empty(t, mesh.Vertices)
	assert.Empty(t, mesh.Indices)
}
