package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stepmesh/stepmesh/internal/exporter"
	"github.com/stepmesh/stepmesh/internal/logger"
	"github.com/stepmesh/stepmesh/internal/reader"
	"github.com/stepmesh/stepmesh/internal/server"
	"github.com/stepmesh/stepmesh/internal/storage"
	"github.com/stepmesh/stepmesh/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the meshing HTTP server",
	Long:  "Start the HTTP API for mesh extraction, STL export and per-project artifact storage.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	k, err := newKernel(cfg)
	if err != nil {
		return err
	}

	artifacts, err := storage.New(cfg.Storage.StlDir, log)
	if err != nil {
		return err
	}
	defer artifacts.Close()

	exp := exporter.New(k, artifacts, cfg.Shell.WallThickness, cfg.Mesh.LinearTolerance, log)
	defer exp.Close()

	srv := server.New(cfg, k, reader.Default(), store.New(), artifacts, exp, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting server",
		zap.String("kernel", cfg.Mesh.Kernel),
		zap.String("storage", cfg.Storage.StlDir))
	return srv.Run(ctx)
}
