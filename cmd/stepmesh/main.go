package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stepmesh/stepmesh/internal/config"
	"github.com/stepmesh/stepmesh/pkg/kernel"
	"github.com/stepmesh/stepmesh/pkg/kernel/facet"
	"github.com/stepmesh/stepmesh/pkg/kernel/sdfxkernel"
	"github.com/stepmesh/stepmesh/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "stepmesh",
	Short: "Mesh extraction and hollow shell generation for 3D solids",
	Long: `stepmesh tessellates solid models into indexed triangle meshes with a
per-face mapping table, generates hollow bounding shells, and serves both
over an HTTP API with per-project STL storage.`,
	Version: version.GetFullVersion(),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: ./stepmesh.yaml)")
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func newKernel(cfg *config.Config) (kernel.Kernel, error) {
	switch cfg.Mesh.Kernel {
	case "", "facet":
		return facet.New(), nil
	case "sdfx":
		return sdfxkernel.New(), nil
	default:
		return nil, fmt.Errorf("unknown kernel %q", cfg.Mesh.Kernel)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
