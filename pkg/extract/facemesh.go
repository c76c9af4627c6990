package extract

import (
	"fmt"

	"github.com/stepmesh/stepmesh/pkg/kernel"
)

// ExtractFace converts one face's raw triangulation into an indexed
// local mesh. Nodes are deduplicated by their original (1-based) node
// index, the face transform is applied at extraction time so all
// coordinates come out in the global frame, and triangle winding is
// kept exactly as supplied.
//
// A triangulation referencing a node outside 1..len(Nodes) fails with
// kernel.ErrGeometryExtraction. A face with zero triangles yields an
// empty FaceMesh, not an error.
func ExtractFace(id string, tri *kernel.FaceTriangulation) (*FaceMesh, error) {
	mesh := &FaceMesh{ID: id}
	localIndex := make(map[int]int, len(tri.Nodes))

	for _, triple := range tri.Triangles {
		var local [3]int
		for j, node := range triple {
			if node < 1 || node > len(tri.Nodes) {
				return nil, fmt.Errorf("%w: face %s: node index %d outside 1..%d",
					kernel.ErrGeometryExtraction, id, node, len(tri.Nodes))
			}
			idx, seen := localIndex[node]
			if !seen {
				idx = len(mesh.Vertices)
				mesh.Vertices = append(mesh.Vertices, tri.Transform.Apply(tri.Nodes[node-1]))
				localIndex[node] = idx
			}
			local[j] = idx
		}
		mesh.Indices = append(mesh.Indices, local)
	}

	return mesh, nil
}
