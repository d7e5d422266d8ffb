package cerr

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h http.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewConvertErrorChiMiddleware()(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestChiMiddleware_JSONResponse(t *testing.T) {
	rec := serve(func(w http.ResponseWriter, r *http.Request) {
		SetJSONResponse(r.Context(), map[string]string{"id": "x"})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"x"}`, rec.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestChiMiddleware_Created(t *testing.T) {
	rec := serve(func(w http.ResponseWriter, r *http.Request) {
		SetJSONResponseWithStatus(r.Context(), http.StatusCreated, map[string]int{"n": 1})
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}

func TestChiMiddleware_NoContent(t *testing.T) {
	rec := serve(func(w http.ResponseWriter, r *http.Request) {
		SetNoContent(r.Context())
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestChiMiddleware_Error(t *testing.T) {
	rec := serve(func(w http.ResponseWriter, r *http.Request) {
		err := NewError(FailedPrecondition, "scheduled after deadline", nil)
		err.AddDetailMessageWithCode("scheduled_datetime must not be after deadline", "scheduling_conflict")
		SetJSONError(r.Context(), err)
	})
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.JSONEq(t, `{
		"code": "failed_precondition",
		"message": "scheduled after deadline",
		"details": ["scheduling_conflict: scheduled_datetime must not be after deadline"]
	}`, rec.Body.String())
}

func TestChiMiddleware_ForeignErrorIsUnknown(t *testing.T) {
	rec := serve(func(w http.ResponseWriter, r *http.Request) {
		SetJSONError(r.Context(), errors.New("boom"))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":"unknown","message":"unknown error"}`, rec.Body.String())
}

func TestChiMiddleware_Panic(t *testing.T) {
	rec := serve(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":"internal","message":"server error"}`, rec.Body.String())
}

func TestDecodeHTTPError(t *testing.T) {
	e := DecodeHTTPError(http.StatusConflict, []byte(`{"code":"already_exists","message":"task already assigned","details":["a"]}`))
	assert.Equal(t, AlreadyExists, e.Code)
	assert.Equal(t, "task already assigned", e.Msg)
	assert.Equal(t, []string{"a"}, e.DetailMessages())

	e = DecodeHTTPError(http.StatusBadGateway, []byte("<html>bad gateway</html>"))
	assert.Equal(t, Unknown, e.Code)
	require.Error(t, e.Err)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, OK, CodeOf(nil))
	assert.Equal(t, NotFound, CodeOf(NewError(NotFound, "missing", nil)))
	assert.Equal(t, Unknown, CodeOf(errors.New("x")))
	assert.True(t, IsCode(errors.Join(errors.New("ctx"), NewError(AlreadyExists, "dup", nil)), AlreadyExists))
}
