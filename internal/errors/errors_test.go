package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MisterMushn/bilanzieren/internal/infrastructure"
)

func TestAPIErrorInterface(t *testing.T) {
	err := New(http.StatusNotFound, "WORKSPACE_NOT_FOUND", "Workspace not found")
	assert.Equal(t, "Workspace not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
}

func TestNewWithDetails(t *testing.T) {
	err := IngestFailedError(fmt.Errorf("can't detect delimiter"))
	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode)
	assert.Equal(t, "INGEST_FAILED", err.ErrorCode)
	assert.Equal(t, "can't detect delimiter", err.Details)
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("category", "is required")
	details, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "category", details.Field)
}

func TestProblemDetailsJSON(t *testing.T) {
	p := NewProblemDetails(404, TypeNotFound, "Not Found", "workspace gone", "/api/workspaces/x")
	p.WithExtension("error_code", "WORKSPACE_NOT_FOUND")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeNotFound, decoded["type"])
	assert.Equal(t, float64(404), decoded["status"])
	assert.Equal(t, "WORKSPACE_NOT_FOUND", decoded["error_code"])
	assert.Equal(t, "workspace gone", decoded["detail"])
}

func TestHandleErrorRendersProblem(t *testing.T) {
	handler := NewErrorHandler(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/workspaces/x", nil)
	req = req.WithContext(infrastructure.WithTraceID(req.Context(), "trace-1"))
	rec := httptest.NewRecorder()

	handler.HandleError(rec, req, ErrWorkspaceNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "WORKSPACE_NOT_FOUND", problem["error_code"])
	assert.Equal(t, "trace-1", problem["trace_id"])
}

func TestHandleErrorUnknownErrorIsInternal(t *testing.T) {
	handler := NewErrorHandler(nil)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	handler.HandleError(rec, req, fmt.Errorf("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	// Internal details never leak.
	assert.NotContains(t, rec.Body.String(), "boom")
	assert.Equal(t, TypeInternal, problem["type"])
}

func TestErrorToProblemStatusMapping(t *testing.T) {
	handler := NewErrorHandler(nil)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	cases := []struct {
		err      *APIError
		wantType string
	}{
		{ErrValidationFailed, TypeValidation},
		{ErrWorkspaceNotFound, TypeNotFound},
		{ErrPayloadTooLarge, TypePayloadTooLarge},
		{ErrIngestFailed, TypeIngestFailed},
		{ErrRateLimitExceeded, TypeRateLimit},
		{ErrInternalServer, TypeInternal},
	}
	for _, tc := range cases {
		problem := handler.ErrorToProblem(tc.err, req)
		assert.Equal(t, tc.wantType, problem.Type, tc.err.ErrorCode)
		assert.Equal(t, tc.err.StatusCode, problem.Status)
	}
}
