package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stepmesh/stepmesh/internal/config"
	"github.com/stepmesh/stepmesh/internal/exporter"
	"github.com/stepmesh/stepmesh/internal/reader"
	"github.com/stepmesh/stepmesh/internal/storage"
	"github.com/stepmesh/stepmesh/internal/store"
	"github.com/stepmesh/stepmesh/pkg/geometry"
	"github.com/stepmesh/stepmesh/pkg/kernel/facet"
)

type testEnv struct {
	server   *Server
	router   http.Handler
	exporter *exporter.Exporter
	storage  *storage.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Storage.UploadDir = filepath.Join(t.TempDir(), "uploads")
	cfg.Storage.StlDir = filepath.Join(t.TempDir(), "stl")
	cfg.Storage.ExportDir = filepath.Join(t.TempDir(), "exports")

	log := zap.NewNop()
	k := facet.New()

	artifacts, err := storage.New(cfg.Storage.StlDir, log)
	require.NoError(t, err)
	t.Cleanup(func() { artifacts.Close() })

	exp := exporter.New(k, artifacts, cfg.Shell.WallThickness, cfg.Mesh.LinearTolerance, log)

	srv := New(cfg, k, reader.Default(), store.New(), artifacts, exp, log)
	return &testEnv{
		server:   srv,
		router:   srv.Router(),
		exporter: exp,
		storage:  artifacts,
	}
}

// boxSTL renders a unit box to STL bytes through the kernel.
func boxSTL(t *testing.T) []byte {
	t.Helper()
	k := facet.New()
	box := k.MakeBox(geometry.Vector3{X: 0, Y: 0, Z: 0}, geometry.Vector3{X: 10, Y: 10, Z: 10})

	path := filepath.Join(t.TempDir(), "box.stl")
	require.NoError(t, k.WriteSTL(box, path, 0.1))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func uploadRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/process-step", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/health", "/api/health"} {
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
	}
}

func TestProcessUpload(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "stepFile", "box.stl", boxSTL(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp processResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.SolidID)
	require.Len(t, resp.Data.Meshes, 1)

	mesh := resp.Data.Meshes[0]
	assert.Equal(t, mesh.VertexCount*3, len(mesh.Vertices))
	assert.Equal(t, mesh.VertexCount*3, len(mesh.Normals))
	assert.Equal(t, mesh.TriangleCount*3, len(mesh.Indices))
	assert.Equal(t, 12, mesh.TriangleCount)
	require.Len(t, mesh.Faces, 1)
	assert.Equal(t, mesh.VertexCount, mesh.Faces[0].VertexCount)

	assert.Equal(t, "box.stl", resp.Data.Statistics.FileName)
	assert.Equal(t, mesh.VertexCount, resp.Data.Statistics.TotalVertices)
	assert.Equal(t, mesh.FaceCount, resp.Data.Statistics.TotalFaces)
}

func TestProcessNoFile(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/process-step", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessWrongField(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "otherField", "box.stl", boxSTL(t)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessUnsupportedExtension(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "stepFile", "box.obj", []byte("o box")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid file type", body["error"])
}

func TestExportUnknownSolid(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/export/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProcessExportDownloadFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "stepFile", "box.stl", boxSTL(t)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp processResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	exportBody := bytes.NewBufferString(`{"base":"box"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/export/"+resp.Data.SolidID, exportBody)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	// Close drains the queue so the artifacts are on disk.
	env.exporter.Close()

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/project/box", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var project struct {
		Success    bool `json:"success"`
		TotalFiles int  `json:"totalFiles"`
		Files      []struct {
			Name string `json:"name"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
	assert.True(t, project.Success)
	require.Equal(t, 2, project.TotalFiles)

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/download-stl/box/"+project.Files[0].Name, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.NotZero(t, rec.Body.Len())
}

func TestListProjectsEmpty(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/list-projects", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success  bool             `json:"success"`
		Projects []map[string]any `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Empty(t, body.Projects)
}

func TestStoreSTL(t *testing.T) {
	env := newTestEnv(t)

	stlData := base64.StdEncoding.EncodeToString([]byte("solid g\nendsolid g\n"))
	payload := fmt.Sprintf(`{"projectId":"bracket","groupName":"arm","stlData":%q,"metadata":{"source":"arm.step"}}`, stlData)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/store-stl", bytes.NewBufferString(payload)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success   bool   `json:"success"`
		FilePath  string `json:"filePath"`
		ProjectID string `json:"projectId"`
		GroupName string `json:"groupName"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "bracket", resp.ProjectID)
	assert.Equal(t, "arm", resp.GroupName)
	assert.FileExists(t, resp.FilePath)

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/project/bracket", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var project struct {
		Files []struct {
			Name string `json:"name"`
		} `json:"files"`
		Metadata *struct {
			Source   string `json:"source"`
			FileSize int64  `json:"fileSize"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
	require.Len(t, project.Files, 1)
	assert.Equal(t, "arm.stl", project.Files[0].Name)
	require.NotNil(t, project.Metadata)
	assert.Equal(t, "arm.step", project.Metadata.Source)
	assert.EqualValues(t, 19, project.Metadata.FileSize)
}

func TestStoreSTLRejectsBadRequests(t *testing.T) {
	env := newTestEnv(t)

	stlData := base64.StdEncoding.EncodeToString([]byte("x"))
	for _, payload := range []string{
		`not json`,
		`{"projectId":"","groupName":"g","stlData":"eA=="}`,
		`{"projectId":"p","groupName":"","stlData":"eA=="}`,
		`{"projectId":"p","groupName":"g","stlData":""}`,
		`{"projectId":"p","groupName":"g","stlData":"%%%not base64%%%"}`,
		fmt.Sprintf(`{"projectId":"..","groupName":"g","stlData":%q}`, stlData),
		fmt.Sprintf(`{"projectId":"p","groupName":"../g","stlData":%q}`, stlData),
	} {
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/store-stl", bytes.NewBufferString(payload)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
	}
}

func TestSaveSTL(t *testing.T) {
	env := newTestEnv(t)

	body := bytes.NewBufferString(`{"filename":"render.stl","stlData":"solid r\nendsolid r\n"}`)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/save-stl", body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success  bool   `json:"success"`
		FilePath string `json:"filePath"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.FileExists(t, resp.FilePath)
}

func TestSaveSTLRejectsBadNames(t *testing.T) {
	env := newTestEnv(t)

	for _, payload := range []string{
		`{"filename":"","stlData":"x"}`,
		`{"filename":"render.stl","stlData":""}`,
		`{"filename":"render.txt","stlData":"x"}`,
		`not json`,
	} {
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/save-stl", bytes.NewBufferString(payload)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
	}
}

func TestProjectNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/project/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
