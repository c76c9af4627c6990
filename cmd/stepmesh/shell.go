package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stepmesh/stepmesh/internal/reader"
	"github.com/stepmesh/stepmesh/pkg/analysis"
	sh "github.com/stepmesh/stepmesh/pkg/shell"
)

var (
	shellWall   float64
	shellTol    float64
	shellCenter bool
)

var shellCmd = &cobra.Command{
	Use:   "shell [file] [output.stl]",
	Short: "Generate a hollow bounding shell for a solid",
	Long: `Build a hollow box shell around the solid's bounding box and write it as
STL. When the requested wall thickness leaves no room for a cavity, a
solid bounding box is written instead.`,
	Args: cobra.ExactArgs(2),
	Run:  runShell,
}

func init() {
	shellCmd.Flags().Float64Var(&shellWall, "wall", 2.0, "shell wall thickness")
	shellCmd.Flags().Float64Var(&shellTol, "tol", 0.1, "tessellation tolerance for STL output")
	shellCmd.Flags().BoolVar(&shellCenter, "center", false, "center the solid on the origin first")
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) {
	filename, output := args[0], args[1]

	k, err := newKernel(mustConfig())
	if err != nil {
		fail(err)
	}

	solid, err := reader.Default().Read(filename)
	if err != nil {
		fail(fmt.Errorf("reading %s: %w", filename, err))
	}

	if shellCenter {
		solid, err = sh.Center(k, solid)
		if err != nil {
			fail(err)
		}
	}

	hollow, err := sh.Build(k, solid, shellWall, zap.NewNop())
	if err != nil {
		fail(fmt.Errorf("building shell: %w", err))
	}

	if err := k.WriteSTL(hollow, output, shellTol); err != nil {
		fail(fmt.Errorf("writing %s: %w", output, err))
	}

	bbox := solid.AABB()
	fmt.Printf("Shell written to %s\n", output)
	fmt.Printf("  Source bounds: %s to %s\n", analysis.FormatVector(bbox.Min), analysis.FormatVector(bbox.Max))
	fmt.Printf("  Wall thickness: %.3f units\n", shellWall)
}
