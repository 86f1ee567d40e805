package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/errors"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/logger"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusAccepted, Response{Data: "queued"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "queued", decodeResponse(t, rec).Data)
}

func TestResponse_OmitsEmptyFields(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, Response{Data: "ok"})

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	_, hasError := raw["error"]
	assert.False(t, hasError)

	rec = httptest.NewRecorder()
	WriteJSON(rec, http.StatusBadRequest, Response{Error: &ErrorResponse{Code: "ERR", Message: "msg"}})
	raw = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	_, hasData := raw["data"]
	assert.False(t, hasData)
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app error", apperrors.NotFound("product", "sku-1"), http.StatusNotFound, "NOT_FOUND"},
		{"app invalid input", apperrors.InvalidInput("name is required"), http.StatusBadRequest, "INVALID_INPUT"},
		{"app unavailable", apperrors.ServiceUnavailable("catalog not loaded"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"sentinel not found", apperrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped sentinel", fmt.Errorf("lookup: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"sentinel conflict", apperrors.ErrConflict, http.StatusConflict, "CONFLICT"},
		{"sentinel invalid input", apperrors.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
		{"sentinel rate limited", apperrors.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"sentinel unavailable", apperrors.ErrServiceUnavail, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"unknown", fmt.Errorf("something unexpected"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)

			WriteError(rec, req, tt.err, testLogger())

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestWriteError_UnknownErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rec, req, fmt.Errorf("redis: connection pool exhausted"), testLogger())

	resp := decodeResponse(t, rec)
	assert.Equal(t, "an internal error occurred", resp.Error.Message)
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx := logger.WithCorrelationID(context.Background(), "corr-123")
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	WriteError(rec, req, apperrors.NotFound("product", "x"), testLogger())

	resp := decodeResponse(t, rec)
	assert.Equal(t, "corr-123", resp.Error.RequestID)
}

func TestWriteError_NoCorrelationID_OmitsRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rec, req, apperrors.ErrNotFound, testLogger())

	var raw map[string]map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	_, has := raw["error"]["request_id"]
	assert.False(t, has)
}

func TestWriteError_NilFallbackUsesDefault(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.NotPanics(t, func() {
		WriteError(rec, req, fmt.Errorf("boom"), nil)
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type cartItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
}

func TestWriteValidationError_FieldErrors(t *testing.T) {
	err := validator.Validate(cartItemInput{})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	WriteValidationError(rec, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "is required", resp.Error.Fields["product_id"])
}

func TestWriteValidationError_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, fmt.Errorf("decode request body: unexpected EOF"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeResponse(t, rec).Error.Code)
}

func TestNewListResponse(t *testing.T) {
	resp := NewListResponse([]string{"a", "b"})
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []string{"a", "b"}, resp.Data)

	empty := NewListResponse[string](nil)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.Total)

	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[],"total":0}`, string(data))
}

func TestParseUUID(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		id, ok := ParseUUID(rec, "cart id", "550E8400-E29B-41D4-A716-446655440000")
		assert.True(t, ok)
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		_, ok := ParseUUID(rec, "cart id", "not-a-uuid")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeResponse(t, rec)
		assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
		assert.Equal(t, "invalid cart id: not-a-uuid", resp.Error.Message)
	})

	t.Run("empty", func(t *testing.T) {
		rec := httptest.NewRecorder()
		_, ok := ParseUUID(rec, "cart id", "")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
