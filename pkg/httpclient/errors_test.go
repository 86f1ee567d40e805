package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/errors"
)

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		code     string
	}{
		{"not found html", http.StatusNotFound, "<html>404</html>", apperrors.ErrNotFound, "NOT_FOUND"},
		{"bad request", http.StatusBadRequest, "", apperrors.ErrInvalidInput, "INVALID_INPUT"},
		{"conflict", http.StatusConflict, "", apperrors.ErrConflict, "CONFLICT"},
		{"rate limited", http.StatusTooManyRequests, "slow down", apperrors.ErrRateLimited, "RATE_LIMITED"},
		{"unavailable", http.StatusServiceUnavailable, "", apperrors.ErrServiceUnavail, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(newResponse(tt.status, tt.body), "catalog-host")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel))

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, appErr.Status)
			assert.Contains(t, appErr.Message, "catalog-host")
		})
	}
}

func TestParseResponseError_StructuredEnvelope(t *testing.T) {
	body := `{"error":{"code":"NOT_FOUND","message":"product with id 9 not found"}}`
	err := ParseResponseError(newResponse(http.StatusNotFound, body), "search")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "search: product with id 9 not found", appErr.Message)
}

func TestParseResponseError_ServerError(t *testing.T) {
	err := ParseResponseError(newResponse(http.StatusInternalServerError, `{"error":{"code":"INTERNAL_ERROR","message":"oops"}}`), "search")
	require.Error(t, err)

	var appErr *apperrors.AppError
	assert.False(t, errors.As(err, &appErr))
	assert.Equal(t, "search server error (500/INTERNAL_ERROR): oops", err.Error())
}

func TestParseResponseError_UnknownClientError(t *testing.T) {
	err := ParseResponseError(newResponse(http.StatusForbidden, "denied"), "s3")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UPSTREAM_ERROR", appErr.Code)
	assert.Equal(t, http.StatusForbidden, appErr.Status)
}

func TestIsSuccess(t *testing.T) {
	assert.True(t, IsSuccess(200))
	assert.True(t, IsSuccess(204))
	assert.False(t, IsSuccess(304))
	assert.False(t, IsSuccess(404))
}
