package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stepmesh/stepmesh/internal/config"
	"github.com/stepmesh/stepmesh/internal/reader"
	"github.com/stepmesh/stepmesh/pkg/analysis"
	"github.com/stepmesh/stepmesh/pkg/extract"
	"github.com/stepmesh/stepmesh/pkg/shell"
)

var (
	meshLinearTol  float64
	meshAngularTol float64
	meshCenter     bool
	meshTopFaces   int
)

var meshCmd = &cobra.Command{
	Use:   "mesh [file]",
	Short: "Tessellate a solid and report mesh statistics",
	Long:  "Extract the indexed mesh and face mapping table from a geometry file and print summary statistics.",
	Args:  cobra.ExactArgs(1),
	Run:   runMesh,
}

func init() {
	meshCmd.Flags().Float64Var(&meshLinearTol, "linear-tol", 0.1, "linear deflection tolerance")
	meshCmd.Flags().Float64Var(&meshAngularTol, "angular-tol", 0.5, "angular deflection tolerance")
	meshCmd.Flags().BoolVar(&meshCenter, "center", false, "center the solid on the origin before meshing")
	meshCmd.Flags().IntVar(&meshTopFaces, "top-faces", 5, "number of largest faces to list")
	rootCmd.AddCommand(meshCmd)
}

func runMesh(cmd *cobra.Command, args []string) {
	filename := args[0]
	k, err := newKernel(mustConfig())
	if err != nil {
		fail(err)
	}

	solid, err := reader.Default().Read(filename)
	if err != nil {
		fail(fmt.Errorf("reading %s: %w", filename, err))
	}

	if meshCenter {
		solid, err = shell.Center(k, solid)
		if err != nil {
			fail(err)
		}
	}

	opts := extract.Options{LinearTolerance: meshLinearTol, AngularTolerance: meshAngularTol}
	mesh, err := extract.Mesh(k, solid, opts, zap.NewNop())
	if err != nil {
		fail(fmt.Errorf("meshing %s: %w", filename, err))
	}

	stats := analysis.AnalyzeMesh(mesh)

	fmt.Println("Mesh Statistics")
	fmt.Println("===============")
	fmt.Printf("File: %s\n\n", filename)

	fmt.Printf("  Faces: %d\n", stats.FaceCount)
	fmt.Printf("  Vertices: %d\n", stats.VertexCount)
	fmt.Printf("  Triangles: %d\n", stats.TriangleCount)
	fmt.Printf("  Surface Area: %.6f square units\n\n", stats.TotalArea)

	fmt.Println("Bounding Box:")
	fmt.Printf("  Min: %s\n", analysis.FormatVector(stats.BoundingBox.Min))
	fmt.Printf("  Max: %s\n", analysis.FormatVector(stats.BoundingBox.Max))
	fmt.Printf("  Center: %s\n\n", analysis.FormatVector(stats.BoundingBox.Center()))

	fmt.Println("Dimensions:")
	fmt.Printf("  Width (X): %.6f units\n", stats.Dimensions.X)
	fmt.Printf("  Depth (Y): %.6f units\n", stats.Dimensions.Y)
	fmt.Printf("  Height (Z): %.6f units\n\n", stats.Dimensions.Z)

	if stats.FaceCount > 0 {
		fmt.Println("Face Areas:")
		fmt.Printf("  Minimum: %.6f\n", stats.MinFaceArea)
		fmt.Printf("  Maximum: %.6f\n", stats.MaxFaceArea)
		fmt.Printf("  Average: %.6f\n\n", stats.AvgFaceArea)

		fmt.Println("Largest Faces:")
		for _, face := range analysis.LargestFaces(mesh, meshTopFaces) {
			fmt.Printf("  %s: area %.6f, center %s\n", face.ID, face.Area, analysis.FormatVector(face.Center))
		}
	}
}

func mustConfig() *config.Config {
	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}
	return cfg
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
