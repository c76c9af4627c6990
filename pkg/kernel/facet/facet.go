// Package facet implements kernel.Kernel with faceted solids whose
// per-face triangulations are intrinsic: boxes carry six quad faces,
// imported STL bodies carry a single face with the whole mesh.
package facet

import (
	"fmt"
	"os"

	"github.com/unixpickle/model3d/model3d"

	"github.com/stepmesh/stepmesh/pkg/geometry"
	"github.com/stepmesh/stepmesh/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// Kernel is the faceted kernel. It is stateless; all geometry lives in
// the solids it hands out.
type Kernel struct{}

// New returns a new faceted kernel.
func New() *Kernel {
	return &Kernel{}
}

func asSolid(s kernel.Solid) (*Solid, error) {
	fs, ok := s.(*Solid)
	if !ok {
		return nil, fmt.Errorf("%w: solid is not a facet solid (%T)", kernel.ErrMeshing, s)
	}
	return fs, nil
}

// Tessellate marks the solid as meshed. Faceted solids are triangulated
// at construction time, so the tolerances are accepted and ignored.
func (k *Kernel) Tessellate(s kernel.Solid, linearTol, angularTol float64) error {
	fs, err := asSolid(s)
	if err != nil {
		return err
	}
	fs.meshed = true
	return nil
}

// Faces returns the ordered face handles of a tessellated solid.
func (k *Kernel) Faces(s kernel.Solid) []kernel.Face {
	fs, err := asSolid(s)
	if err != nil || !fs.meshed {
		return nil
	}
	handles := make([]kernel.Face, len(fs.faces))
	for i, f := range fs.faces {
		handles[i] = f
	}
	return handles
}

// Triangulation returns the tessellation of one face. Faces without
// triangles report absence rather than an empty triangulation.
func (k *Kernel) Triangulation(f kernel.Face) (*kernel.FaceTriangulation, bool) {
	fd, ok := f.(*face)
	if !ok || len(fd.triangles) == 0 && len(fd.nodes) == 0 {
		return nil, false
	}
	return &kernel.FaceTriangulation{
		Nodes:     fd.nodes,
		Triangles: fd.triangles,
		Transform: fd.transform,
	}, true
}

// MakeBox creates an axis-aligned box spanning min..max with six quad
// faces, two triangles each, wound outward.
func (k *Kernel) MakeBox(min, max geometry.Vector3) kernel.Solid {
	quad := func(a, b, c, d geometry.Vector3) *face {
		return &face{
			nodes:     []geometry.Vector3{a, b, c, d},
			triangles: [][3]int{{1, 2, 3}, {1, 3, 4}},
			transform: geometry.IdentityTransform(),
		}
	}

	v := func(x, y, z float64) geometry.Vector3 { return geometry.NewVector3(x, y, z) }

	return &Solid{faces: []*face{
		// -X / +X
		quad(v(min.X, min.Y, min.Z), v(min.X, min.Y, max.Z), v(min.X, max.Y, max.Z), v(min.X, max.Y, min.Z)),
		quad(v(max.X, min.Y, min.Z), v(max.X, max.Y, min.Z), v(max.X, max.Y, max.Z), v(max.X, min.Y, max.Z)),
		// -Y / +Y
		quad(v(min.X, min.Y, min.Z), v(max.X, min.Y, min.Z), v(max.X, min.Y, max.Z), v(min.X, min.Y, max.Z)),
		quad(v(min.X, max.Y, min.Z), v(min.X, max.Y, max.Z), v(max.X, max.Y, max.Z), v(max.X, max.Y, min.Z)),
		// -Z / +Z
		quad(v(min.X, min.Y, min.Z), v(min.X, max.Y, min.Z), v(max.X, max.Y, min.Z), v(max.X, min.Y, min.Z)),
		quad(v(min.X, min.Y, max.Z), v(max.X, min.Y, max.Z), v(max.X, max.Y, max.Z), v(min.X, max.Y, max.Z)),
	}}
}

// Subtract forms a cavity: the faces of a plus the faces of b with
// reversed winding. This is exact when b lies strictly inside a, which
// is the hollow-shell construction this kernel exists for.
func (k *Kernel) Subtract(a, b kernel.Solid) kernel.Solid {
	fa, errA := asSolid(a)
	fb, errB := asSolid(b)
	if errA != nil || errB != nil {
		return &Solid{}
	}

	faces := make([]*face, 0, len(fa.faces)+len(fb.faces))
	faces = append(faces, fa.faces...)
	for _, f := range fb.faces {
		faces = append(faces, f.reverse())
	}
	return &Solid{faces: faces}
}

// Translate returns a copy of the solid moved by offset. The shift is
// folded into each face's placement transform.
func (k *Kernel) Translate(s kernel.Solid, offset geometry.Vector3) kernel.Solid {
	fs, err := asSolid(s)
	if err != nil {
		return &Solid{}
	}

	shift := geometry.TranslationTransform(offset)
	faces := make([]*face, len(fs.faces))
	for i, f := range fs.faces {
		faces[i] = &face{
			nodes:     f.nodes,
			triangles: f.triangles,
			transform: shift.Compose(f.transform),
		}
	}
	return &Solid{faces: faces, meshed: fs.meshed}
}

// WriteSTL serializes the solid to a binary STL file. The tolerance is
// ignored since faceted solids carry a fixed triangulation.
func (k *Kernel) WriteSTL(s kernel.Solid, path string, tol float64) error {
	fs, err := asSolid(s)
	if err != nil {
		return err
	}

	var tris []*model3d.Triangle
	for _, f := range fs.faces {
		for _, t := range f.triangles {
			for _, idx := range t {
				if idx < 1 || idx > len(f.nodes) {
					return fmt.Errorf("%w: triangle node index %d out of range", kernel.ErrGeometryExtraction, idx)
				}
			}
			v1 := f.transform.Apply(f.nodes[t[0]-1])
			v2 := f.transform.Apply(f.nodes[t[1]-1])
			v3 := f.transform.Apply(f.nodes[t[2]-1])
			tris = append(tris, &model3d.Triangle{
				model3d.XYZ(v1.X, v1.Y, v1.Z),
				model3d.XYZ(v2.X, v2.Y, v2.Z),
				model3d.XYZ(v3.X, v3.Y, v3.Z),
			})
		}
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
