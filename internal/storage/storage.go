// Package storage keeps generated STL artifacts on disk, grouped per
// project, and serves directory listings from a cache invalidated by
// filesystem notifications.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stepmesh/stepmesh/pkg/kernel"
)

// FileInfo describes one stored STL artifact.
type FileInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// ProjectInfo describes one project directory and its artifacts.
type ProjectInfo struct {
	Name      string     `json:"name"`
	FileCount int        `json:"fileCount"`
	Files     []FileInfo `json:"files"`
}

// Metadata is written next to a project's artifacts when meshes are
// saved, recording where the geometry came from.
type Metadata struct {
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
	FileSize  int64     `json:"fileSize,omitempty"`
}

const metadataFile = "metadata.json"

// Store manages a root directory of per-project STL files.
type Store struct {
	root string
	log  *zap.Logger

	mu       sync.Mutex
	projects []ProjectInfo
	cached   bool

	watcher *dirWatcher
}

// New returns a store rooted at dir, creating it if needed. The
// listing cache is invalidated whenever the directory tree changes.
func New(dir string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	s := &Store{root: dir, log: log}

	w, err := newDirWatcher(dir, 200*time.Millisecond, s.invalidate, log)
	if err != nil {
		// Listings still work without notifications, every call
		// just rescans the tree.
		log.Warn("storage watcher unavailable, listing cache disabled", zap.Error(err))
	} else {
		s.watcher = w
	}

	return s, nil
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// ProjectDir returns the directory for a project, creating it.
func (s *Store) ProjectDir(project string) (string, error) {
	clean, err := s.safeName(project)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(s.root, clean)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create project dir: %w", err)
	}
	if s.watcher != nil {
		s.watcher.Add(dir)
	}
	return dir, nil
}

// Save writes an artifact into a project directory and returns the
// absolute path written.
func (s *Store) Save(project, name string, data []byte) (string, error) {
	dir, err := s.ProjectDir(project)
	if err != nil {
		return "", err
	}
	clean, err := s.safeName(name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, clean)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	s.invalidate()
	return path, nil
}

// WriteMetadata records the source of a project's artifacts.
func (s *Store) WriteMetadata(project string, meta Metadata) error {
	dir, err := s.ProjectDir(project)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// ReadMetadata loads a project's metadata if present.
func (s *Store) ReadMetadata(project string) (*Metadata, error) {
	clean, err := s.safeName(project)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, clean, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: metadata for %q", kernel.ErrNotFound, project)
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &meta, nil
}

// ListProjects returns every project and its STL artifacts, sorted by
// name. Results are cached until the directory tree changes.
func (s *Store) ListProjects() ([]ProjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached && s.watcher != nil {
		return s.projects, nil
	}

	projects, err := s.scan()
	if err != nil {
		return nil, err
	}
	s.projects = projects
	s.cached = true
	return projects, nil
}

// Project returns a single project's listing.
func (s *Store) Project(name string) (*ProjectInfo, error) {
	projects, err := s.ListProjects()
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].Name == name {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: project %q", kernel.ErrNotFound, name)
}

// Resolve maps a project and file name to an absolute path inside the
// store, rejecting traversal and missing files.
func (s *Store) Resolve(project, name string) (string, error) {
	cleanProject, err := s.safeName(project)
	if err != nil {
		return "", err
	}
	cleanName, err := s.safeName(name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.root, cleanProject, cleanName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s/%s", kernel.ErrNotFound, project, name)
		}
		return "", fmt.Errorf("stat artifact: %w", err)
	}
	return path, nil
}

// Invalidate drops the cached listing. Writers that bypass Save, for
// example kernels streaming STL straight to disk, call this after
// writing into a project directory.
func (s *Store) Invalidate() {
	s.invalidate()
}

// Close stops the filesystem watcher.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}

func (s *Store) invalidate() {
	s.mu.Lock()
	s.cached = false
	s.mu.Unlock()
}

func (s *Store) scan() ([]ProjectInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read storage root: %w", err)
	}

	var projects []ProjectInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		files, err := s.scanProject(entry.Name())
		if err != nil {
			s.log.Warn("skipping unreadable project", zap.String("project", entry.Name()), zap.Error(err))
			continue
		}
		projects = append(projects, ProjectInfo{
			Name:      entry.Name(),
			FileCount: len(files),
			Files:     files,
		})
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

func (s *Store) scanProject(name string) ([]FileInfo, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, name))
	if err != nil {
		return nil, err
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".stl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:     entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// safeName rejects path components that would escape the store.
func (s *Store) safeName(name string) (string, error) {
	clean := filepath.Base(filepath.Clean(name))
	if clean == "" || clean == "." || clean == ".." || clean != name {
		return "", fmt.Errorf("invalid name %q", name)
	}
	return clean, nil
}
