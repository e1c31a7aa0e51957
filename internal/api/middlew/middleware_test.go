package middlew

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"gw-transaction-batch/internal/custom_err"
	"gw-transaction-batch/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) ValidateToken(tokenString string) (*models.OperatorClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OperatorClaims), args.Error(1)
}

func okHandler(t *testing.T, wantOperator string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantOperator, GetOperator(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		setup      func(m *MockAuth)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Authorization header is required",
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			wantStatus: http.StatusUnauthorized,
			wantBody:   "Invalid authorization header format",
		},
		{
			name:   "expired token",
			header: "Bearer expired",
			setup: func(m *MockAuth) {
				m.On("ValidateToken", "expired").Return(nil, custom_err.ErrTokenExpired)
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "token_expired",
		},
		{
			name:   "invalid token",
			header: "Bearer junk",
			setup: func(m *MockAuth) {
				m.On("ValidateToken", "junk").Return(nil, custom_err.ErrInvalidToken)
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "invalid_token",
		},
		{
			name:   "valid token",
			header: "Bearer good",
			setup: func(m *MockAuth) {
				m.On("ValidateToken", "good").Return(&models.OperatorClaims{
					Role:             "operator",
					RegisteredClaims: jwt.RegisteredClaims{Subject: "ops-user"},
				}, nil)
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(MockAuth)
			if tt.setup != nil {
				tt.setup(auth)
			}

			h := WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))(RequireAuth(auth)(okHandler(t, "ops-user")))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/batch/run", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			auth.AssertExpectations(t)
		})
	}
}

func TestGetLogger_Default(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, slog.Default(), GetLogger(req.Context()))
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := WithLogger(log)(AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("{}"))
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/batch/run", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	out := buf.String()
	assert.Contains(t, out, `"msg":"http request"`)
	assert.Contains(t, out, `"status":202`)
	assert.Contains(t, out, `"path":"/api/v1/batch/run"`)
	assert.Contains(t, out, `"bytes":2`)
}

func TestAccessLog_ServerErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := WithLogger(log)(AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/batch/status", nil))

	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}
