// Package sdfxkernel implements kernel.Kernel on top of the
// github.com/deadsy/sdfx SDF CAD library. Booleans are exact on the
// distance field; tessellation uses marching cubes, which reports the
// whole surface as a single face.
package sdfxkernel

import (
	"fmt"
	"os"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/unixpickle/model3d/model3d"

	"github.com/stepmesh/stepmesh/pkg/geometry"
	"github.com/stepmesh/stepmesh/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// defaultMeshCells controls marching cubes resolution.
const defaultMeshCells = 200

// Solid wraps an sdf.SDF3 together with its cached tessellation.
type Solid struct {
	s   sdf.SDF3
	tri *kernel.FaceTriangulation
}

// AABB returns the bounding box of the distance field.
func (s *Solid) AABB() geometry.BoundingBox {
	if s.s == nil {
		return geometry.NewBoundingBox()
	}
	bb := s.s.BoundingBox()
	return geometry.NewBoundingBoxFromCorners(
		geometry.NewVector3(bb.Min.X, bb.Min.Y, bb.Min.Z),
		geometry.NewVector3(bb.Max.X, bb.Max.Y, bb.Max.Z),
	)
}

// Kernel is the sdfx-backed kernel.
type Kernel struct {
	// MeshCells overrides the marching cubes resolution when > 0.
	MeshCells int
}

// New returns a new sdfx kernel with default resolution.
func New() *Kernel {
	return &Kernel{}
}

func (k *Kernel) cells() int {
	if k.MeshCells > 0 {
		return k.MeshCells
	}
	return defaultMeshCells
}

func unwrap(s kernel.Solid) (*Solid, error) {
	ss, ok := s.(*Solid)
	if !ok {
		return nil, fmt.Errorf("%w: solid is not an sdfx solid (%T)", kernel.ErrMeshing, s)
	}
	return ss, nil
}

func wrap(s sdf.SDF3) *Solid {
	return &Solid{s: s}
}

// Tessellate runs marching cubes over the solid and caches the result
// as a single-face triangulation. The tolerances select nothing here;
// resolution is a fixed cell count over the bounding volume.
func (k *Kernel) Tessellate(s kernel.Solid, linearTol, angularTol float64) error {
	ss, err := unwrap(s)
	if err != nil {
		return err
	}
	if ss.tri != nil {
		return nil
	}
	if ss.s == nil {
		return fmt.Errorf("%w: nil distance field", kernel.ErrMeshing)
	}

	renderer := render.NewMarchingCubesUniform(k.cells())
	triangles := render.ToTriangles(ss.s, renderer)
	if len(triangles) == 0 {
		return fmt.Errorf("%w: marching cubes produced no triangles", kernel.ErrMeshing)
	}

	face := &kernel.FaceTriangulation{Transform: geometry.IdentityTransform()}
	index := make(map[geometry.Vector3]int)
	nodeIndex := func(v geometry.Vector3) int {
		if i, ok := index[v]; ok {
			return i
		}
		face.Nodes = append(face.Nodes, v)
		index[v] = len(face.Nodes) // 1-based
		return len(face.Nodes)
	}

	for _, tri := range triangles {
		var idx [3]int
		for j := 0; j < 3; j++ {
			v := tri[j]
			idx[j] = nodeIndex(geometry.NewVector3(v.X, v.Y, v.Z))
		}
		face.Triangles = append(face.Triangles, idx)
	}

	ss.tri = face
	return nil
}

// Faces returns the single face of a tessellated solid.
func (k *Kernel) Faces(s kernel.Solid) []kernel.Face {
	ss, err := unwrap(s)
	if err != nil || ss.tri == nil {
		return nil
	}
	return []kernel.Face{ss.tri}
}

// Triangulation returns the cached tessellation for a face handle.
func (k *Kernel) Triangulation(f kernel.Face) (*kernel.FaceTriangulation, bool) {
	tri, ok := f.(*kernel.FaceTriangulation)
	if !ok || tri == nil {
		return nil, false
	}
	return tri, true
}

// MakeBox creates an axis-aligned box spanning min..max.
// sdf.Box3D centers the box at the origin, so it is shifted into place.
func (k *Kernel) MakeBox(min, max geometry.Vector3) kernel.Solid {
	size := max.Sub(min)
	s, err := sdf.Box3D(v3.Vec{X: size.X, Y: size.Y, Z: size.Z}, 0)
	if err != nil {
		return &Solid{}
	}
	center := min.Add(size.Mul(0.5))
	m := sdf.Translate3d(v3.Vec{X: center.X, Y: center.Y, Z: center.Z})
	return wrap(sdf.Transform3D(s, m))
}

// Subtract returns the boolean difference a - b.
func (k *Kernel) Subtract(a, b kernel.Solid) kernel.Solid {
	sa, errA := unwrap(a)
	sb, errB := unwrap(b)
	if errA != nil || errB != nil || sa.s == nil || sb.s == nil {
		return &Solid{}
	}
	return wrap(sdf.Difference3D(sa.s, sb.s))
}

// Translate moves a solid by offset.
func (k *Kernel) Translate(s kernel.Solid, offset geometry.Vector3) kernel.Solid {
	ss, err := unwrap(s)
	if err != nil || ss.s == nil {
		return &Solid{}
	}
	m := sdf.Translate3d(v3.Vec{X: offset.X, Y: offset.Y, Z: offset.Z})
	return wrap(sdf.Transform3D(ss.s, m))
}

// WriteSTL tessellates the solid if needed and writes a binary STL.
func (k *Kernel) WriteSTL(s kernel.Solid, path string, tol float64) error {
	ss, err := unwrap(s)
	if err != nil {
		return err
	}
	if err := k.Tessellate(ss, tol, 0); err != nil {
		return err
	}

	var tris []*model3d.Triangle
	for _, t := range ss.tri.Triangles {
		v1 := ss.tri.Nodes[t[0]-1]
		v2 := ss.tri.Nodes[t[1]-1]
		v3c := ss.tri.Nodes[t[2]-1]
		tris = append(tris, &model3d.Triangle{
			model3d.XYZ(v1.X, v1.Y, v1.Z),
			model3d.XYZ(v2.X, v2.Y, v2.Z),
			model3d.XYZ(v3c.X, v3c.Y, v3c.Z),
		})
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create STL file: %w", err)
	}
	defer out.Close()

	if err := model3d.WriteSTL(out, tris); err != nil {
		return fmt.Errorf("failed to write STL: %w", err)
	}
	return nil
}
