package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepmesh/stepmesh/pkg/geometry"
)

// twoAdjacentFaces builds two face meshes sharing the edge x=1.
func twoAdjacentFaces(t *testing.T) []*FaceMesh {
	t.Helper()

	left, err := ExtractFace("face_0", quadTriangulation())
	require.NoError(t, err)

	rightTri := quadTriangulation()
	rightTri.Transform = geometry.TranslationTransform(geometry.NewVector3(1, 0, 0))
	right, err := ExtractFace("face_1", rightTri)
	require.NoError(t, err)

	return []*FaceMesh{left, right}
}

func TestAssembleOffsets(t *testing.T) {
	mesh := Assemble(twoAdjacentFaces(t))

	require.Len(t, mesh.Faces, 2)
	assert.Equal(t, 0, mesh.Faces[0].VertexStart)
	assert.Equal(t, 4, mesh.Faces[0].VertexCount)
	assert.Equal(t, 4, mesh.Faces[1].VertexStart)
	assert.Equal(t, 4, mesh.Faces[1].VertexCount)

	assert.Equal(t, 0, mesh.Faces[0].TriangleStart)
	assert.Equal(t, 2, mesh.Faces[0].TriangleCount)
	assert.Equal(t, 2, mesh.Faces[1].TriangleStart)
	assert.Equal(t, 2, mesh.Faces[1].TriangleCount)
}

func TestAssembleTriangleCountsCoverIndices(t *testing.T) {
	mesh := Assemble(twoAdjacentFaces(t))

	total := 0
	for _, f := range mesh.Faces {
		total += f.TriangleCount
	}
	assert.Equal(t, mesh.TriangleCount(), total)
}

func TestAssembleIndicesInRange(t *testing.T) {
	mesh := Assemble(twoAdjacentFaces(t))

	for _, idx := range mesh.Indices {
		assert.Less(t, int(idx), mesh.VertexCount())
	}
}

func TestAssembleRangesAreDisjoint(t *testing.T) {
	mesh := Assemble(twoAdjacentFaces(t))

	// Every index inside a face's triangle range points into that
	// face's own vertex range and no other's.
	for _, f := range mesh.Faces {
		for ti := f.TriangleStart; ti < f.TriangleStart+f.TriangleCount; ti++ {
			for c := 0; c < 3; c++ {
				idx := int(mesh.Indices[3*ti+c])
				assert.GreaterOrEqual(t, idx, f.VertexStart)
				assert.Less(t, idx, f.VertexStart+f.VertexCount)
			}
		}
	}
}

func TestAssembleKeepsFaceBoundaryDuplicates(t *testing.T) {
	mesh := Assemble(twoAdjacentFaces(t))

	// The shared edge x=1 exists twice: once per incident face.
	assert.Equal(t, 8, mesh.VertexCount(), "coincident boundary vertices are not merged")

	onBoundary := 0
	for i := 0; i < mesh.VertexCount(); i++ {
		if mesh.Vertices[3*i] == 1.0 {
			onBoundary++
		}
	}
	assert.Equal(t, 4, onBoundary, "two coincident copies of each boundary vertex")
}

func TestAssembleEmptyInput(t *testing.T) {
	mesh := Assemble(nil)
	assert.True(t, mesh.IsEmpty())
	assert.Zero(t, mesh.FaceCount())
}
