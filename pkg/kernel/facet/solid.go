package facet

import (
	"github.com/stepmesh/stepmesh/pkg/geometry"
)

// face is one planar-ish patch of a faceted solid: its own node list,
// 1-based triangle indices into that list, and a rigid placement.
type face struct {
	nodes     []geometry.Vector3
	triangles [][3]int
	transform geometry.Transform
}

// Solid is a faceted boundary representation: an ordered list of faces,
// each carrying its own triangulation. Solids are immutable; transforms
// produce new solids.
type Solid struct {
	faces  []*face
	meshed bool
}

// AABB returns the bounding box over all transformed face nodes.
// A solid with no geometry yields an empty box.
func (s *Solid) AABB() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	empty := true
	for _, f := range s.faces {
		for _, n := range f.nodes {
			bbox.Extend(f.transform.Apply(n))
			empty = false
		}
	}
	if empty {
		return geometry.NewBoundingBox()
	}
	return bbox
}

// FaceCount returns the number of faces in the solid.
func (s *Solid) FaceCount() int {
	return len(s.faces)
}

// reverse returns a copy of the face with triangle winding flipped,
// turning an outward-facing surface into a cavity wall.
func (f *face) reverse() *face {
	tris := make([][3]int, len(f.triangles))
	for i, t := range f.triangles {
		tris[i] = [3]int{t[0], t[2], t[1]}
	}
	return &face{
		nodes:     f.nodes,
		triangles: tris,
		transform: f.transform,
	}
}
