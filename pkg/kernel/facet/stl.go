package facet

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/stepmesh/stepmesh/pkg/geometry"
	"github.com/stepmesh/stepmesh/pkg/kernel"
)

// ReadSTL reads an STL file into a single-face Solid. The format
// (ASCII or binary) is detected from the first bytes. Coincident
// vertices are merged into one indexed node list; triangle winding is
// kept exactly as stored in the file.
func ReadSTL(path string) (*Solid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kernel.ErrRead, err)
	}
	defer file.Close()

	header := make([]byte, 6)
	n, err := file.Read(header)
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", kernel.ErrRead, err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("%w: seeking: %v", kernel.ErrRead, err)
	}

	var tris []geometry.Triangle
	if n >= 5 && strings.HasPrefix(string(header[:5]), "solid") {
		tris, err = parseASCII(file)
	} else {
		tris, err = parseBinary(file)
	}
	if err != nil {
		return nil, err
	}

	return solidFromTriangles(tris), nil
}

// solidFromTriangles indexes a triangle soup into one face, merging
// vertices that coincide exactly.
func solidFromTriangles(tris []geometry.Triangle) *Solid {
	f := &face{transform: geometry.IdentityTransform()}
	index := make(map[geometry.Vector3]int)

	nodeIndex := func(v geometry.Vector3) int {
		if i, ok := index[v]; ok {
			return i
		}
		f.nodes = append(f.nodes, v)
		index[v] = len(f.nodes) // 1-based
		return len(f.nodes)
	}

	for _, t := range tris {
		f.triangles = append(f.triangles, [3]int{
			nodeIndex(t.V1),
			nodeIndex(t.V2),
			nodeIndex(t.V3),
		})
	}

	if len(f.nodes) == 0 {
		return &Solid{}
	}
	return &Solid{faces: []*face{f}}
}

// parseASCII parses an ASCII STL stream
func parseASCII(reader io.Reader) ([]geometry.Triangle, error) {
	scanner := bufio.NewScanner(reader)

	var tris []geometry.Triangle
	var currentNormal geometry.Vector3
	var vertices []geometry.Vector3

	for scanner.Scan() {
		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "facet":
			if len(fields) >= 5 && fields[1] == "normal" {
				x, _ := strconv.ParseFloat(fields[2], 64)
				y, _ := strconv.ParseFloat(fields[3], 64)
				z, _ := strconv.ParseFloat(fields[4], 64)
				currentNormal = geometry.NewVector3(x, y, z)
			}

		case "vertex":
			if len(fields) >= 4 {
				x, _ := strconv.ParseFloat(fields[1], 64)
				y, _ := strconv.ParseFloat(fields[2], 64)
				z, _ := strconv.ParseFloat(fields[3], 64)
				vertices = append(vertices, geometry.NewVector3(x, y, z))
			}

		case "endfacet":
			if len(vertices) == 3 {
				tris = append(tris, geometry.NewTriangle(currentNormal, vertices[0], vertices[1], vertices[2]))
			}
			vertices = vertices[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading ASCII STL: %v", kernel.ErrRead, err)
	}
	return tris, nil
}

// parseBinary parses a binary STL stream
func parseBinary(reader io.Reader) ([]geometry.Triangle, error) {
	header := make([]byte, 80)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, fmt.Errorf("%w: reading binary header: %v", kernel.ErrRead, err)
	}

	var triangleCount uint32
	if err := binary.Read(reader, binary.LittleEndian, &triangleCount); err != nil {
		return nil, fmt.Errorf("%w: reading triangle count: %v", kernel.ErrRead, err)
	}

	tris := make([]geometry.Triangle, 0, triangleCount)
	for i := uint32(0); i < triangleCount; i++ {
		var raw struct {
			Normal, V1, V2, V3 [3]float32
			Attribute          uint16
		}
		if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
			return nil, fmt.Errorf("%w: reading triangle %d: %v", kernel.ErrRead, i, err)
		}

		toVec := func(v [3]float32) geometry.Vector3 {
			return geometry.NewVector3(float64(v[0]), float64(v[1]), float64(v[2]))
		}
		tris = append(tris, geometry.NewTriangle(toVec(raw.Normal), toVec(raw.V1), toVec(raw.V2), toVec(raw.V3)))
	}

	return tris, nil
}
