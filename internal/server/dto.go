package server

import (
	"github.com/stepmesh/stepmesh/pkg/extract"
	"github.com/stepmesh/stepmesh/pkg/geometry"
)

// The wire format keeps flat coordinate arrays and a face table with
// explicit index lists so viewers can map picked triangles back to
// model faces without re-deriving topology.

type meshDTO struct {
	Vertices      []float64 `json:"vertices"`
	Indices       []uint32  `json:"indices"`
	Normals       []float64 `json:"normals"`
	Faces         []faceDTO `json:"faces"`
	FaceIndex     int       `json:"faceIndex"`
	VertexCount   int       `json:"vertexCount"`
	TriangleCount int       `json:"triangleCount"`
	FaceCount     int       `json:"faceCount"`
}

type faceDTO struct {
	ID                 string     `json:"id"`
	FaceIndex          int        `json:"faceIndex"`
	MeshIndex          int        `json:"meshIndex"`
	TriangleIndices    []int      `json:"triangleIndices"`
	VertexIndices      []int      `json:"vertexIndices"`
	Area               float64    `json:"area"`
	Center             [3]float64 `json:"center"`
	Normal             [3]float64 `json:"normal"`
	Bounds             boundsDTO  `json:"bounds"`
	VertexCount        int        `json:"vertexCount"`
	TriangleCount      int        `json:"triangleCount"`
	StartVertexIndex   int        `json:"startVertexIndex"`
	StartTriangleIndex int        `json:"startTriangleIndex"`
}

type boundsDTO struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

type processResponse struct {
	Success bool        `json:"success"`
	Data    processData `json:"data"`
}

type processData struct {
	SolidID    string        `json:"solidId"`
	Meshes     []meshDTO     `json:"meshes"`
	Faces      int           `json:"faces"`
	Statistics statisticsDTO `json:"statistics"`
}

type statisticsDTO struct {
	TotalVertices  int    `json:"totalVertices"`
	TotalTriangles int    `json:"totalTriangles"`
	TotalFaces     int    `json:"totalFaces"`
	FileName       string `json:"fileName"`
	FileSize       int64  `json:"fileSize"`
}

func newMeshDTO(mesh *extract.GlobalMesh) meshDTO {
	faces := make([]faceDTO, 0, mesh.FaceCount())
	for i, face := range mesh.Faces {
		faces = append(faces, newFaceDTO(i, face))
	}
	return meshDTO{
		Vertices:      mesh.Vertices,
		Indices:       mesh.Indices,
		Normals:       mesh.Normals,
		Faces:         faces,
		FaceIndex:     1,
		VertexCount:   mesh.VertexCount(),
		TriangleCount: mesh.TriangleCount(),
		FaceCount:     mesh.FaceCount(),
	}
}

func newFaceDTO(meshIndex int, face extract.FaceInfo) faceDTO {
	vertexIndices := make([]int, face.VertexCount)
	for i := range vertexIndices {
		vertexIndices[i] = face.VertexStart + i
	}
	triangleIndices := make([]int, face.TriangleCount)
	for i := range triangleIndices {
		triangleIndices[i] = face.TriangleStart + i
	}
	return faceDTO{
		ID:                 face.ID,
		FaceIndex:          meshIndex,
		MeshIndex:          0,
		TriangleIndices:    triangleIndices,
		VertexIndices:      vertexIndices,
		Area:               face.Area,
		Center:             vecDTO(face.Center),
		Normal:             vecDTO(face.Normal),
		Bounds:             boundsDTO{Min: vecDTO(face.Bounds.Min), Max: vecDTO(face.Bounds.Max)},
		VertexCount:        face.VertexCount,
		TriangleCount:      face.TriangleCount,
		StartVertexIndex:   face.VertexStart,
		StartTriangleIndex: face.TriangleStart,
	}
}

func vecDTO(v geometry.Vector3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
