package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/stepmesh/stepmesh/internal/exporter"
	"github.com/stepmesh/stepmesh/internal/storage"
	"github.com/stepmesh/stepmesh/pkg/extract"
	"github.com/stepmesh/stepmesh/pkg/kernel"
	"github.com/stepmesh/stepmesh/pkg/shell"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"server":    "stepmesh",
	})
}

// handleProcess accepts a geometry upload, meshes it and returns the
// indexed mesh with its face mapping table. The solid stays registered
// in memory so a follow-up export request can reference it.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.cfg.Server.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("stepFile")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "No file uploaded", err)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.writeError(w, http.StatusBadRequest, "No file selected", nil)
		return
	}
	if _, err := s.readers.ForPath(header.Filename); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid file type", err)
		return
	}

	stagingPath, size, err := s.stageUpload(file, header.Filename)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to store upload", err)
		return
	}
	defer os.Remove(stagingPath)

	solid, err := s.readers.Read(stagingPath)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, kernel.ErrUnsupportedFormat) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, "Failed to process file", err)
		return
	}

	if s.cfg.Mesh.Center {
		solid, err = shell.Center(s.kernel, solid)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "Failed to center solid", err)
			return
		}
	}

	opts := extract.Options{
		LinearTolerance:  s.cfg.Mesh.LinearTolerance,
		AngularTolerance: s.cfg.Mesh.AngularTolerance,
	}
	mesh, err := extract.Mesh(s.kernel, solid, opts, s.log)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to process file", err)
		return
	}

	solidID := s.solids.Put(solid)
	s.log.Info("processed upload",
		zap.String("file", header.Filename),
		zap.String("solidID", solidID),
		zap.Int("faces", mesh.FaceCount()),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()))

	dto := newMeshDTO(mesh)
	s.writeJSON(w, http.StatusOK, processResponse{
		Success: true,
		Data: processData{
			SolidID: solidID,
			Meshes:  []meshDTO{dto},
			Faces:   mesh.FaceCount(),
			Statistics: statisticsDTO{
				TotalVertices:  mesh.VertexCount(),
				TotalTriangles: mesh.TriangleCount(),
				TotalFaces:     mesh.FaceCount(),
				FileName:       header.Filename,
				FileSize:       size,
			},
		},
	})
}

type exportRequest struct {
	Base string `json:"base"`
}

// handleExport queues STL export of a previously processed solid and
// acknowledges before the artifacts are written.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	solidID := chi.URLParam(r, "solidID")
	solid, err := s.solids.Get(solidID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "Solid not found", err)
		return
	}

	var req exportRequest
	if r.Body != nil {
		// The base name is optional, a bad body falls back to the id.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	base := sanitizeBase(req.Base)
	if base == "" {
		base = solidID
	}

	s.exporter.Submit(exporter.Job{Solid: solid, Base: base})
	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"queued":  true,
		"solidId": solidID,
		"base":    base,
	})
}

type storeSTLRequest struct {
	ProjectID string            `json:"projectId"`
	GroupName string            `json:"groupName"`
	STLData   string            `json:"stlData"`
	Metadata  *storeSTLMetadata `json:"metadata"`
}

type storeSTLMetadata struct {
	Source string `json:"source"`
}

// handleStoreSTL stores base64 STL data under a project, with an
// optional metadata sidecar recording the geometry's source.
func (s *Server) handleStoreSTL(w http.ResponseWriter, r *http.Request) {
	var req storeSTLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "No JSON data received", err)
		return
	}
	if req.ProjectID == "" || req.GroupName == "" || req.STLData == "" {
		s.writeError(w, http.StatusBadRequest, "Missing required fields: projectId, groupName, stlData", nil)
		return
	}
	if !safeComponent(req.ProjectID) || !safeComponent(req.GroupName) {
		s.writeError(w, http.StatusBadRequest, "Invalid projectId or groupName", nil)
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.STLData)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Failed to decode base64 STL data", err)
		return
	}

	path, err := s.storage.Save(req.ProjectID, req.GroupName+".stl", data)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to store STL", err)
		return
	}

	if req.Metadata != nil {
		meta := storage.Metadata{
			Source:    req.Metadata.Source,
			CreatedAt: time.Now(),
			FileSize:  int64(len(data)),
		}
		if err := s.storage.WriteMetadata(req.ProjectID, meta); err != nil {
			s.log.Warn("metadata write failed", zap.String("project", req.ProjectID), zap.Error(err))
		}
	}

	s.log.Info("stored STL",
		zap.String("project", req.ProjectID),
		zap.String("group", req.GroupName),
		zap.Int("bytes", len(data)))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"filePath":  path,
		"fileSize":  len(data),
		"projectId": req.ProjectID,
		"groupName": req.GroupName,
	})
}

type saveSTLRequest struct {
	Filename string `json:"filename"`
	STLData  string `json:"stlData"`
}

// handleSaveSTL stores client-produced STL text in the export
// directory, outside the per-project store.
func (s *Server) handleSaveSTL(w http.ResponseWriter, r *http.Request) {
	var req saveSTLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "No JSON data received", err)
		return
	}
	if req.Filename == "" || req.STLData == "" {
		s.writeError(w, http.StatusBadRequest, "Missing filename or stlData", nil)
		return
	}
	name := filepath.Base(req.Filename)
	if name == "." || name == ".." || !strings.EqualFold(filepath.Ext(name), ".stl") {
		s.writeError(w, http.StatusBadRequest, "Invalid filename", nil)
		return
	}

	if err := os.MkdirAll(s.cfg.Storage.ExportDir, 0o755); err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to save STL", err)
		return
	}
	path := filepath.Join(s.cfg.Storage.ExportDir, name)
	if err := os.WriteFile(path, []byte(req.STLData), 0o644); err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to save STL", err)
		return
	}

	s.log.Info("saved client STL", zap.String("path", path), zap.Int("bytes", len(req.STLData)))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"filePath": path,
		"fileSize": len(req.STLData),
	})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.storage.ListProjects()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}

	out := make([]map[string]any, 0, len(projects))
	for _, p := range projects {
		out = append(out, map[string]any{
			"projectId": p.Name,
			"fileCount": p.FileCount,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"projects": out,
	})
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	project, err := s.storage.Project(projectID)
	if err != nil {
		if errors.Is(err, kernel.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Project not found", err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Failed to read project", err)
		return
	}

	var totalSize int64
	files := make([]map[string]any, 0, len(project.Files))
	for _, f := range project.Files {
		totalSize += f.Size
		files = append(files, map[string]any{
			"name":     f.Name,
			"size":     f.Size,
			"modified": f.Modified.Format(time.RFC3339),
		})
	}
	body := map[string]any{
		"success":    true,
		"projectId":  project.Name,
		"files":      files,
		"totalFiles": len(files),
		"totalSize":  totalSize,
	}
	if meta, err := s.storage.ReadMetadata(projectID); err == nil {
		body["metadata"] = meta
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	filename := chi.URLParam(r, "filename")

	path, err := s.storage.Resolve(projectID, filename)
	if err != nil {
		if errors.Is(err, kernel.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "File not found", err)
			return
		}
		s.writeError(w, http.StatusBadRequest, "Invalid file reference", err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", "model/stl")
	http.ServeFile(w, r, path)
}

// stageUpload copies the request body into the upload directory under
// a timestamped name and returns the path and byte count.
func (s *Server) stageUpload(src io.Reader, filename string) (string, int64, error) {
	if err := os.MkdirAll(s.cfg.Storage.UploadDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s", time.Now().Unix(), filepath.Base(filename))
	path := filepath.Join(s.cfg.Storage.UploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create staging file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("write staging file: %w", err)
	}
	return path, size, nil
}

// safeComponent reports whether s can be used as a single path
// component inside the artifact store.
func safeComponent(s string) bool {
	return s != "" && s != "." && s != ".." && s == filepath.Base(s)
}

func sanitizeBase(base string) string {
	base = filepath.Base(strings.TrimSpace(base))
	if base == "." || base == ".." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]any{
		"success": false,
		"error":   msg,
	}
	if err != nil {
		body["details"] = err.Error()
		s.log.Warn(msg, zap.Error(err))
	}
	s.writeJSON(w, status, body)
}
