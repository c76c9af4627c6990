// Package shell builds hollow bounding shells: the axis-aligned outer
// box of a solid minus an inset inner box, for enclosure and packaging
// use.
package shell

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/stepmesh/stepmesh/pkg/geometry"
	"github.com/stepmesh/stepmesh/pkg/kernel"
)

// Build constructs the hollow bounding shell of a solid with the given
// wall thickness.
//
// The outer box spans the solid's AABB exactly; the inner box is inset
// by the wall thickness on every side. When the inset leaves no room on
// some axis (strict > comparison: a wall of exactly half the smallest
// dimension is infeasible) the builder degrades to the solid outer box
// instead of failing. A solid with no extent fails with
// kernel.ErrGeometry.
func Build(k kernel.Kernel, solid kernel.Solid, wallThickness float64, log *zap.Logger) (kernel.Solid, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if wallThickness <= 0 {
		return nil, fmt.Errorf("%w: wall thickness must be positive, got %v", kernel.ErrGeometry, wallThickness)
	}

	bbox := solid.AABB()
	if bbox.IsEmpty() {
		return nil, fmt.Errorf("%w: void bounding box", kernel.ErrGeometry)
	}

	outer := k.MakeBox(bbox.Min, bbox.Max)

	wall := geometry.NewVector3(wallThickness, wallThickness, wallThickness)
	innerMin := bbox.Min.Add(wall)
	innerMax := bbox.Max.Sub(wall)

	if innerMax.X > innerMin.X && innerMax.Y > innerMin.Y && innerMax.Z > innerMin.Z {
		inner := k.MakeBox(innerMin, innerMax)
		return k.Subtract(outer, inner), nil
	}

	log.Warn("wall thickness leaves no interior, falling back to solid box",
		zap.Float64("wallThickness", wallThickness),
		zap.Float64("minDimension", minDimension(bbox)))
	return outer, nil
}

func minDimension(b geometry.BoundingBox) float64 {
	size := b.Size()
	min := size.X
	if size.Y < min {
		min = size.Y
	}
	if size.Z < min {
		min = size.Z
	}
	return min
}

// Center translates a solid so its bounding-box center sits at the
// coordinate origin. It must run before tessellation or extraction so
// that all downstream vertex coordinates already reflect the shift.
func Center(k kernel.Kernel, solid kernel.Solid) (kernel.Solid, error) {
	bbox := solid.AABB()
	if bbox.IsEmpty() {
		return nil, fmt.Errorf("%w: void bounding box", kernel.ErrGeometry)
	}
	return k.Translate(solid, bbox.Center().Neg()), nil
}
