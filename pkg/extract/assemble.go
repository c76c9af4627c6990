package extract

// Assemble concatenates per-face meshes into one global indexed mesh
// and builds the face metadata table.
//
// The vertex offset for each face is read from the running global
// vertex count immediately before that face's vertices are appended,
// and never from an earlier snapshot: a stale offset would produce
// overlapping or out-of-range global indices, which is the one
// invariant everything downstream depends on.
func Assemble(faceMeshes []*FaceMesh) *GlobalMesh {
	global := &GlobalMesh{}

	for _, fm := range faceMeshes {
		vertexOffset := global.VertexCount()
		triangleOffset := global.TriangleCount()

		for _, v := range fm.Vertices {
			global.Vertices = append(global.Vertices, v.X, v.Y, v.Z)
		}
		for _, tri := range fm.Indices {
			global.Indices = append(global.Indices,
				uint32(vertexOffset+tri[0]),
				uint32(vertexOffset+tri[1]),
				uint32(vertexOffset+tri[2]),
			)
		}

		props := Analyze(fm)
		global.Faces = append(global.Faces, FaceInfo{
			ID:            fm.ID,
			VertexStart:   vertexOffset,
			VertexCount:   len(fm.Vertices),
			TriangleStart: triangleOffset,
			TriangleCount: len(fm.Indices),
			Area:          props.Area,
			Center:        props.Center,
			Normal:        props.Normal,
			Bounds:        props.Bounds,
		})
	}

	return global
}
