package extract

import (
	"github.com/stepmesh/stepmesh/pkg/geometry"
)

// degenerateEpsilon is the cross-product magnitude below which a
// triangle is treated as collinear.
const degenerateEpsilon = 1e-12

// FaceProperties are the derived geometric properties of one face mesh.
type FaceProperties struct {
	Area   float64
	Center geometry.Vector3
	Normal geometry.Vector3
	Bounds geometry.BoundingBox
}

// Analyze computes area, centroid, unit normal and bounds for a face
// mesh. Every triangle contributes its own area; the centroid is the
// plain mean of the vertices, not area-weighted. Degenerate geometry
// falls back to a (0,0,1) normal and zero bounds instead of failing.
func Analyze(mesh *FaceMesh) FaceProperties {
	props := FaceProperties{
		Normal: geometry.NewVector3(0, 0, 1),
		Bounds: geometry.NewBoundingBoxFromCorners(geometry.Vector3{}, geometry.Vector3{}),
	}
	if len(mesh.Vertices) == 0 {
		return props
	}

	for _, tri := range mesh.Indices {
		v1 := mesh.Vertices[tri[0]]
		v2 := mesh.Vertices[tri[1]]
		v3 := mesh.Vertices[tri[2]]
		props.Area += v2.Sub(v1).Cross(v3.Sub(v1)).Length() / 2.0
	}

	var sum geometry.Vector3
	bounds := geometry.NewBoundingBox()
	for _, v := range mesh.Vertices {
		sum = sum.Add(v)
		bounds.Extend(v)
	}
	props.Center = sum.Mul(1.0 / float64(len(mesh.Vertices)))
	props.Bounds = bounds

	if len(mesh.Indices) > 0 {
		first := mesh.Indices[0]
		v1 := mesh.Vertices[first[0]]
		v2 := mesh.Vertices[first[1]]
		v3 := mesh.Vertices[first[2]]
		cross := v2.Sub(v1).Cross(v3.Sub(v1))
		if cross.Length() > degenerateEpsilon {
			props.Normal = cross.Normalize()
		}
	}

	return props
}
