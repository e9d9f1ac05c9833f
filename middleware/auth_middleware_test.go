package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/campaign-hub/identity"
	"github.com/upb/campaign-hub/services/audit"
	"go.uber.org/zap"
)

// MockTokenValidator is a mock implementation of TokenValidator
type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(ctx context.Context, token string) (*identity.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Claims), args.Error(1)
}

func testClaims(sub, email string) *identity.Claims {
	return &identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
		Email:            email,
		Name:             "Test User",
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequireAuth(t *testing.T) {
	logger := zap.NewNop()

	t.Run("valid JWT in Authorization header allows request", func(t *testing.T) {
		mockValidator := new(MockTokenValidator)
		middleware := NewAuthMiddleware(mockValidator, logger)
		mockValidator.On("ValidateToken", mock.Anything, "valid-token").Return(testClaims("auth0|123", "user@example.com"), nil)

		handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := GetIdentityFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, "auth0|123", ident.ExternalID)
			assert.Equal(t, "user@example.com", ident.Email)
			assert.Nil(t, ident.UserID)

			meta := audit.RequestMetaFromContext(r.Context())
			assert.Equal(t, "req-abc", meta.RequestID)
			assert.Equal(t, "test-agent", meta.UserAgent)

			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req = req.WithContext(WithRequestID(req.Context(), "req-abc"))
		req.Header.Set("Authorization", "Bearer valid-token")
		req.Header.Set("User-Agent", "test-agent")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockValidator.AssertExpectations(t)
	})

	t.Run("valid JWT in session cookie allows request", func(t *testing.T) {
		mockValidator := new(MockTokenValidator)
		middleware := NewAuthMiddleware(mockValidator, logger)
		mockValidator.On("ValidateToken", mock.Anything, "session-token").Return(testClaims("auth0|456", "cookie@example.com"), nil)

		handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := GetIdentityFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, "auth0|456", ident.ExternalID)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "session-token"})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token returns 401", func(t *testing.T) {
		mockValidator := new(MockTokenValidator)
		middleware := NewAuthMiddleware(mockValidator, logger)

		called := false
		handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "UNAUTHENTICATED", body["error"])
		assert.Equal(t, "Missing or invalid authorization", body["message"])
		mockValidator.AssertNotCalled(t, "ValidateToken", mock.Anything, mock.Anything)
	})

	t.Run("invalid token returns 401", func(t *testing.T) {
		mockValidator := new(MockTokenValidator)
		middleware := NewAuthMiddleware(mockValidator, logger)
		mockValidator.On("ValidateToken", mock.Anything, "expired").Return(nil, identity.ErrTokenExpired)

		handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer expired")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "UNAUTHENTICATED", body["error"])
		assert.Equal(t, "Invalid or expired token", body["message"])
	})

	t.Run("real validator end to end", func(t *testing.T) {
		v, err := identity.NewValidator(identity.Config{Secret: "s", Issuer: "campaign-hub"})
		require.NoError(t, err)
		token, err := v.Issue("auth0|789", "e2e@example.com", "E2E", time.Minute)
		require.NoError(t, err)

		handler := NewAuthMiddleware(v, logger).RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, _ := GetIdentityFromContext(r.Context())
			assert.Equal(t, "E2E", ident.Name)
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name          string
		authHeader    string
		cookieName    string
		cookieValue   string
		expectedToken string
	}{
		{name: "valid Bearer token in header", authHeader: "Bearer valid-token-123", expectedToken: "valid-token-123"},
		{name: "Bearer with lowercase", authHeader: "bearer valid-token-123", expectedToken: "valid-token-123"},
		{name: "auth_token cookie when no header", cookieName: "auth_token", cookieValue: "cookie-token-value", expectedToken: "cookie-token-value"},
		{name: "session cookie when no header", cookieName: "session", cookieValue: "session-value", expectedToken: "session-value"},
		{name: "header takes precedence over cookie", authHeader: "Bearer header-token", cookieName: "auth_token", cookieValue: "cookie-token", expectedToken: "header-token"},
		{name: "missing both returns empty", expectedToken: ""},
		{name: "no space falls back to cookie", authHeader: "Bearertoken", cookieName: "auth_token", cookieValue: "cookie-token", expectedToken: "cookie-token"},
		{name: "wrong prefix falls back to cookie", authHeader: "Basic token", cookieName: "auth_token", cookieValue: "cookie-token", expectedToken: "cookie-token"},
		{name: "empty Bearer token falls back to cookie", authHeader: "Bearer ", cookieName: "auth_token", cookieValue: "cookie-token", expectedToken: "cookie-token"},
		{name: "unrelated cookie ignored", cookieName: "theme", cookieValue: "dark", expectedToken: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.cookieValue != "" {
				req.AddCookie(&http.Cookie{Name: tt.cookieName, Value: tt.cookieValue})
			}

			assert.Equal(t, tt.expectedToken, extractToken(req))
		})
	}
}
