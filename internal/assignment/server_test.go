package assignment_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/inspectguild/internal/assignment"
	"github.com/kazz187/inspectguild/pkg/cerr"
)

func (f *fixture) router() http.Handler {
	r := chi.NewRouter()
	r.Use(cerr.NewConvertErrorChiMiddleware())
	assignment.NewServer(f.engine).Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestServer_AssignFinishFlow(t *testing.T) {
	f := newFixture(t)
	i, tk := f.johnDoe(t)
	h := f.router()

	rec, body := do(t, h, http.MethodPost, "/task_assignment/assign/inspector/"+i.ID+"/task/"+tk.ID,
		`{"scheduled_datetime":"2029-12-01T00:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "2029-12-01T00:00:00Z", body["scheduled_datetime"])
	assert.Nil(t, body["rating"])
	assert.Nil(t, body["evaluation_datetime"])
	assert.Contains(t, body, "rating_description")
	id := body["id"].(string)

	rec, body = do(t, h, http.MethodPost, "/task_assignment/assign/inspector/"+i.ID+"/task/"+tk.ID,
		`{"scheduled_datetime":"2029-12-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_exists", body["code"])

	rec, body = do(t, h, http.MethodGet, "/task_assignment/inspector/"+i.ID+"/unfinished/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec, body = do(t, h, http.MethodPost, "/task_assignment/"+id+"/finish",
		`{"rating":4.5,"rating_description":"fine","evaluation_datetime":"2029-11-30T12:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, 4.5, body["rating"])
	assert.Equal(t, "fine", body["rating_description"])

	rec, _ = do(t, h, http.MethodGet, "/task_assignment/inspector/"+i.ID+"/finished/all", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec, _ = do(t, h, http.MethodDelete, "/task_assignment/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())

	rec, body = do(t, h, http.MethodGet, "/task_assignment/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "task assignment not found", body["message"])
}

func TestServer_AssignPastDeadline(t *testing.T) {
	f := newFixture(t)
	i, tk := f.johnDoe(t)

	rec, body := do(t, f.router(), http.MethodPost, "/task_assignment/assign/inspector/"+i.ID+"/task/"+tk.ID,
		`{"scheduled_datetime":"2030-01-01T00:00:01Z"}`)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Equal(t, "failed_precondition", body["code"])
}

func TestServer_AssignMissingParents(t *testing.T) {
	f := newFixture(t)
	i, _ := f.johnDoe(t)

	rec, body := do(t, f.router(), http.MethodPost, "/task_assignment/assign/inspector/"+i.ID+"/task/nope",
		`{"scheduled_datetime":"2029-12-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "task not found", body["message"])

	rec, body = do(t, f.router(), http.MethodPost, "/task_assignment/assign/inspector/nope/task/nope",
		`{"scheduled_datetime":"2029-12-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "inspector not found", body["message"])
}

func TestServer_RejectsMalformedBodies(t *testing.T) {
	f := newFixture(t)
	i, tk := f.johnDoe(t)
	a := f.assign(t, i.ID, tk.ID)
	h := f.router()

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"missing scheduled", http.MethodPost, "/task_assignment/assign/inspector/" + i.ID + "/task/" + tk.ID, `{}`},
		{"bad date", http.MethodPost, "/task_assignment/assign/inspector/" + i.ID + "/task/" + tk.ID, `{"scheduled_datetime":"tomorrow"}`},
		{"unknown status", http.MethodPut, "/task_assignment/" + a.ID, `{"status":"archived"}`},
		{"rating as string", http.MethodPost, "/task_assignment/" + a.ID + "/finish", `{"rating":"five","evaluation_datetime":"2029-11-30T00:00:00Z"}`},
		{"not json", http.MethodPost, "/task_assignment/" + a.ID + "/finish", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "invalid_argument", body["code"])
		})
	}
}

func TestServer_UpdateKeepsOmittedFields(t *testing.T) {
	f := newFixture(t)
	i, tk := f.johnDoe(t)
	a := f.assign(t, i.ID, tk.ID)

	rec, body := do(t, f.router(), http.MethodPut, "/task_assignment/"+a.ID, `{"status":"in_progress"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "in_progress", body["status"])
	assert.Equal(t, "2029-12-01T00:00:00Z", body["scheduled_datetime"])
}

func TestServer_ListAllEmpty(t *testing.T) {
	f := newFixture(t)
	rec, _ := do(t, f.router(), http.MethodGet, "/task_assignment/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
