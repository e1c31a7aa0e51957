package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONError(rec, testLog, http.StatusConflict, "run_in_progress", "A batch run is already in progress")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "run_in_progress", body.Error)
}

func TestWriteJSONSuccess_NoBody(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONSuccess(rec, testLog, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestWriteMappedError(t *testing.T) {
	errExpired := errors.New("expired")
	mappings := []ErrorMapping{
		{Err: errExpired, Status: http.StatusUnauthorized, Code: "token_expired", Message: "Token has expired"},
	}

	t.Run("wrapped error matches", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteMappedError(rec, testLog, fmt.Errorf("auth: %w", errExpired), mappings)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "token_expired", body.Error)
	})

	t.Run("unknown error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteMappedError(rec, testLog, errors.New("db down"), mappings)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "db down")
	})
}
