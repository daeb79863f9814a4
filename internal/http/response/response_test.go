package response_test

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tickstack/tickstack-server/internal/errors"
	"github.com/tickstack/tickstack-server/internal/http/response"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Success(rec, map[string]string{"list_id": "u1-1"}, slog.New(slog.DiscardHandler))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Empty(t, env.Error)
}

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Created(rec, map[string]string{"item_id": "u1-5"}, slog.New(slog.DiscardHandler))

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	response.NoContent(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	response.NotFound(rec, "checklist not found", slog.New(slog.DiscardHandler))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "checklist not found", env.Error)
}

func TestHandleError_CodedError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", apperrors.NotFound("checklist not found"), http.StatusNotFound},
		{"unauthenticated", apperrors.Unauthenticated("no token"), http.StatusUnauthorized},
		{"validation", apperrors.Validation("bad payload"), http.StatusBadRequest},
		{"permission denied", apperrors.PermissionDenied("nope"), http.StatusForbidden},
		{"store", apperrors.Store("txn failed", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			response.HandleError(rec, tt.err, slog.New(slog.DiscardHandler))

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := apperrors.ValidationWithDetails("validation failed", map[string]string{"title": "is required"})
	response.HandleError(rec, err, slog.New(slog.DiscardHandler))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "is required")
}

func TestHandleError_UnknownErrorBecomes500(t *testing.T) {
	rec := httptest.NewRecorder()
	response.HandleError(rec, assert.AnError, slog.New(slog.DiscardHandler))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "internal server error", env.Error)
}
