package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/inspectguild/pkg/cerr"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()
	m.Observe("assign", nil)
	m.Observe("assign", nil)
	m.Observe("assign", cerr.NewError(cerr.AlreadyExists, "task already assigned", nil))
	m.Observe("finish", errors.New("driver exploded"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("assign", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("assign", "already_exists")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("finish", "unknown")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Observe("delete", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `inspectguild_assignment_operations_total{code="ok",operation="delete"} 1`)
}
