package extract

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/stepmesh/stepmesh/pkg/kernel"
)

// Options controls tessellation quality.
type Options struct {
	// LinearTolerance is the maximum chord deviation of the mesh.
	LinearTolerance float64
	// AngularTolerance is the maximum angular deviation in radians.
	AngularTolerance float64
}

// DefaultOptions returns the tolerances used by the server by default.
func DefaultOptions() Options {
	return Options{LinearTolerance: 0.1, AngularTolerance: 0.5}
}

// Mesh tessellates a solid and extracts its full indexed global mesh
// with per-face metadata and vertex normals.
//
// Per-face failures are isolated: a malformed or empty face is skipped
// with a logged warning and the remaining faces still produce a mesh.
// A tessellation failure aborts the whole extraction.
func Mesh(k kernel.Kernel, solid kernel.Solid, opts Options, log *zap.Logger) (*GlobalMesh, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if err := k.Tessellate(solid, opts.LinearTolerance, opts.AngularTolerance); err != nil {
		return nil, fmt.Errorf("tessellation: %w", err)
	}

	var faceMeshes []*FaceMesh
	for i, f := range k.Faces(solid) {
		id := fmt.Sprintf("face_%d", i)

		tri, ok := k.Triangulation(f)
		if !ok {
			// Not every face carries a triangulation after meshing.
			continue
		}

		fm, err := ExtractFace(id, tri)
		if err != nil {
			log.Warn("skipping malformed face",
				zap.String("face", id),
				zap.Error(err))
			continue
		}
		if len(fm.Indices) == 0 {
			log.Warn("dropping face without triangles", zap.String("face", id))
			continue
		}
		faceMeshes = append(faceMeshes, fm)
	}

	mesh := Assemble(faceMeshes)
	mesh.Normals = SynthesizeNormals(mesh.Vertices, mesh.Indices)

	log.Debug("extraction complete",
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("faces", mesh.FaceCount()))

	return mesh, nil
}
