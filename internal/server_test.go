package internal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/internal/config"
	"github.com/kazz187/inspectguild/internal/inspector"
	"github.com/kazz187/inspectguild/internal/metrics"
	"github.com/kazz187/inspectguild/internal/persistence/yamlstore"
	"github.com/kazz187/inspectguild/internal/task"
	"github.com/kazz187/inspectguild/pkg/storage"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store := yamlstore.New(local)
	m := metrics.New()
	srv := NewServer(
		&config.Env{},
		inspector.NewServer(inspector.NewService(store.Inspectors())),
		task.NewServer(task.NewService(store.Tasks())),
		assignment.NewServer(assignment.NewEngine(store, assignment.WithObserver(m))),
		m,
	)
	return srv.Handler()
}

func call(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func idOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var v struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	require.NotEmpty(t, v.ID)
	return v.ID
}

func TestServer_EndToEnd(t *testing.T) {
	h := newTestHandler(t)

	rec := call(t, h, http.MethodPost, "/inspector", `{"name":"John Doe","email":"j@example.com","timezone":"Madrid"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	inspectorID := idOf(t, rec)

	rec = call(t, h, http.MethodPost, "/task", `{"title":"Inspect","deadline":"2030-01-01T00:00:00Z","location":"Madrid"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	taskID := idOf(t, rec)

	rec = call(t, h, http.MethodPost, "/task_assignment/assign/inspector/"+inspectorID+"/task/"+taskID, `{"scheduled_datetime":"2029-12-01T00:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assignmentID := idOf(t, rec)

	rec = call(t, h, http.MethodGet, "/task/available/all", "")
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = call(t, h, http.MethodPost, "/task_assignment/"+assignmentID+"/finish", `{"rating":5,"evaluation_datetime":"2029-11-30T00:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `inspectguild_assignment_operations_total{code="ok",operation="assign"} 1`)
	assert.Contains(t, rec.Body.String(), `inspectguild_assignment_operations_total{code="ok",operation="finish"} 1`)
}

func TestServer_Probes(t *testing.T) {
	h := newTestHandler(t)

	rec := call(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodGet, "/does/not/exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"code":"not_found","message":"not found"}`, rec.Body.String())

	rec = call(t, h, http.MethodPatch, "/inspector/all", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
