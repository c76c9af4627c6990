package extract

import (
	"github.com/stepmesh/stepmesh/pkg/geometry"
)

// SynthesizeNormals computes one unit normal per vertex by accumulating
// the unit normals of all incident triangles and renormalizing.
//
// Each triangle contributes a unit-length vector regardless of its
// area; degenerate triangles contribute nothing. Vertices that end up
// with a zero accumulated vector (isolated or fully degenerate) default
// to (0,0,1).
func SynthesizeNormals(vertices []float64, indices []uint32) []float64 {
	count := len(vertices) / 3
	accum := make([]geometry.Vector3, count)

	at := func(i uint32) geometry.Vector3 {
		return geometry.NewVector3(vertices[3*i], vertices[3*i+1], vertices[3*i+2])
	}

	for t := 0; t+2 < len(indices); t += 3 {
		i1, i2, i3 := indices[t], indices[t+1], indices[t+2]
		v1 := at(i1)
		cross := at(i2).Sub(v1).Cross(at(i3).Sub(v1))
		if cross.Length() <= degenerateEpsilon {
			continue
		}
		n := cross.Normalize()
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
		accum[i3] = accum[i3].Add(n)
	}

	normals := make([]float64, 0, len(vertices))
	for _, n := range accum {
		if n.Length() <= degenerateEpsilon {
			n = geometry.NewVector3(0, 0, 1)
		} else {
			n = n.Normalize()
		}
		normals = append(normals, n.X, n.Y, n.Z)
	}
	return normals
}
