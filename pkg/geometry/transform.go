package geometry

// Transform is a rigid transform: a rotation followed by a translation.
// The rotation is stored row-major.
type Transform struct {
	Rotation    [3][3]float64
	Translation Vector3
}

// IdentityTransform returns the transform that leaves points unchanged
func IdentityTransform() Transform {
	return Transform{
		Rotation: [3][3]float64{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
	}
}

// TranslationTransform returns a pure translation by offset
func TranslationTransform(offset Vector3) Transform {
	t := IdentityTransform()
	t.Translation = offset
	return t
}

// Apply transforms a point: rotate, then translate
func (t Transform) Apply(p Vector3) Vector3 {
	r := t.Rotation
	return Vector3{
		X: r[0][0]*p.X + r[0][1]*p.Y + r[0][2]*p.Z + t.Translation.X,
		Y: r[1][0]*p.X + r[1][1]*p.Y + r[1][2]*p.Z + t.Translation.Y,
		Z: r[2][0]*p.X + r[2][1]*p.Y + r[2][2]*p.Z + t.Translation.Z,
	}
}

// IsIdentity reports whether the transform leaves points unchanged
func (t Transform) IsIdentity() bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if t.Rotation[i][j] != want {
				return false
			}
		}
	}
	return t.Translation == Vector3{}
}

// Compose returns the transform equivalent to applying t after first
func (t Transform) Compose(first Transform) Transform {
	var out Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out.Rotation[i][j] += t.Rotation[i][k] * first.Rotation[k][j]
			}
		}
	}
	out.Translation = t.Apply(first.Translation)
	return out
}
