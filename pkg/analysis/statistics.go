// Package analysis derives summary statistics from extracted meshes for
// reporting and inspection tooling.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/stepmesh/stepmesh/pkg/extract"
	"github.com/stepmesh/stepmesh/pkg/geometry"
)

// MeshStatistics contains various measurements of an extracted mesh
type MeshStatistics struct {
	VertexCount   int
	TriangleCount int
	FaceCount     int
	TotalArea     float64
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	MinFaceArea   float64
	MaxFaceArea   float64
	AvgFaceArea   float64
}

// AnalyzeMesh computes summary statistics over a global mesh
func AnalyzeMesh(mesh *extract.GlobalMesh) *MeshStatistics {
	stats := &MeshStatistics{
		VertexCount:   mesh.VertexCount(),
		TriangleCount: mesh.TriangleCount(),
		FaceCount:     mesh.FaceCount(),
	}

	bbox := geometry.NewBoundingBox()
	for i := 0; i < mesh.VertexCount(); i++ {
		bbox.Extend(geometry.NewVector3(
			mesh.Vertices[3*i],
			mesh.Vertices[3*i+1],
			mesh.Vertices[3*i+2],
		))
	}
	if mesh.VertexCount() == 0 {
		bbox = geometry.NewBoundingBoxFromCorners(geometry.Vector3{}, geometry.Vector3{})
	}
	stats.BoundingBox = bbox
	stats.Dimensions = bbox.Size()

	minArea := math.MaxFloat64
	maxArea := 0.0
	for _, f := range mesh.Faces {
		stats.TotalArea += f.Area
		if f.Area < minArea {
			minArea = f.Area
		}
		if f.Area > maxArea {
			maxArea = f.Area
		}
	}
	if stats.FaceCount > 0 {
		stats.MinFaceArea = minArea
		stats.MaxFaceArea = maxArea
		stats.AvgFaceArea = stats.TotalArea / float64(stats.FaceCount)
	}

	return stats
}

// LargestFaces returns the N faces with the largest area
func LargestFaces(mesh *extract.GlobalMesh, count int) []extract.FaceInfo {
	faces := make([]extract.FaceInfo, len(mesh.Faces))
	copy(faces, mesh.Faces)

	sort.Slice(faces, func(i, j int) bool {
		return faces[i].Area > faces[j].Area
	})

	if count > len(faces) {
		count = len(faces)
	}
	return faces[:count]
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
