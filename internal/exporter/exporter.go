// Package exporter runs STL export jobs on a background worker so web
// requests can acknowledge immediately. Each job writes the full solid
// and, when geometry allows, a hollow bounding shell.
package exporter

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stepmesh/stepmesh/internal/storage"
	"github.com/stepmesh/stepmesh/pkg/kernel"
	"github.com/stepmesh/stepmesh/pkg/shell"
)

// Job describes one export request.
type Job struct {
	Solid kernel.Solid
	// Base names the project and the artifact file stem, usually the
	// uploaded file's name without extension.
	Base string
}

// Result reports the artifacts one job produced.
type Result struct {
	SolidPath string
	ShellPath string
}

// Exporter drains a queue of export jobs with a single worker.
type Exporter struct {
	kernel        kernel.Kernel
	store         *storage.Store
	wallThickness float64
	tolerance     float64
	log           *zap.Logger

	jobs chan Job
	wg   sync.WaitGroup

	// now is swapped in tests for deterministic filenames.
	now func() time.Time
}

// New starts an exporter draining jobs into the given store.
func New(k kernel.Kernel, store *storage.Store, wallThickness, tolerance float64, log *zap.Logger) *Exporter {
	e := &Exporter{
		kernel:        k,
		store:         store,
		wallThickness: wallThickness,
		tolerance:     tolerance,
		log:           log,
		jobs:          make(chan Job, 16),
		now:           time.Now,
	}
	e.wg.Add(1)
	go e.run()
	return e
}

// Submit queues a job. It never blocks the caller beyond queue
// capacity and reports nothing back, outcomes are logged.
func (e *Exporter) Submit(job Job) {
	e.jobs <- job
}

// Close stops accepting jobs and waits for the queue to drain.
func (e *Exporter) Close() {
	close(e.jobs)
	e.wg.Wait()
}

func (e *Exporter) run() {
	defer e.wg.Done()
	for job := range e.jobs {
		result, err := e.Export(job)
		if err != nil {
			e.log.Error("export failed", zap.String("base", job.Base), zap.Error(err))
			continue
		}
		e.log.Info("export finished",
			zap.String("base", job.Base),
			zap.String("solid", result.SolidPath),
			zap.String("shell", result.ShellPath))
	}
}

// Export writes the artifacts for one job synchronously. The solid and
// shell exports succeed or fail independently, a shell failure does not
// discard the solid artifact.
func (e *Exporter) Export(job Job) (*Result, error) {
	if job.Solid == nil {
		return nil, fmt.Errorf("export %q: no solid", job.Base)
	}

	dir, err := e.store.ProjectDir(job.Base)
	if err != nil {
		return nil, fmt.Errorf("export %q: %w", job.Base, err)
	}

	stamp := e.now().UnixNano()
	result := &Result{}

	solidPath := filepath.Join(dir, fmt.Sprintf("%s-%d.stl", job.Base, stamp))
	if err := e.kernel.WriteSTL(job.Solid, solidPath, e.tolerance); err != nil {
		return nil, fmt.Errorf("export %q: write solid: %w", job.Base, err)
	}
	result.SolidPath = solidPath

	hollow, err := shell.Build(e.kernel, job.Solid, e.wallThickness, e.log)
	if err != nil {
		e.log.Warn("shell export skipped", zap.String("base", job.Base), zap.Error(err))
	} else {
		shellPath := filepath.Join(dir, fmt.Sprintf("%s-%d-shell.stl", job.Base, stamp))
		if err := e.kernel.WriteSTL(hollow, shellPath, e.tolerance); err != nil {
			e.log.Warn("shell export failed", zap.String("base", job.Base), zap.Error(err))
		} else {
			result.ShellPath = shellPath
		}
	}

	e.store.Invalidate()
	return result, nil
}
