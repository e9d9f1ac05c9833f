package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/upb/campaign-hub/rbac"
	"github.com/upb/campaign-hub/services/access"
	"github.com/upb/campaign-hub/services/ratelimit"
	"go.uber.org/zap"
)

type MockRateLimitChecker struct {
	mock.Mock
}

func (m *MockRateLimitChecker) CheckLimit(ctx context.Context, scope, subject string) (*ratelimit.RateLimitResult, error) {
	args := m.Called(ctx, scope, subject)
	if r := args.Get(0); r != nil {
		return r.(*ratelimit.RateLimitResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func resolvedRequest() *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/campaigns/1/feedback", nil)
	ident := alice
	ident.UserID = int64Ptr(42)
	ctx := WithResolution(req.Context(), access.Resolution{Identity: ident, Scope: rbac.ScopeCampaign, CampaignID: 1})
	return req.WithContext(ctx)
}

func TestRateLimit_Allowed(t *testing.T) {
	checker := new(MockRateLimitChecker)
	checker.On("CheckLimit", mock.Anything, "feedback", "42").
		Return(&ratelimit.RateLimitResult{Allowed: true, Limit: 30, Remaining: 12}, nil)
	m := NewRateLimitMiddleware(checker, zap.NewNop())

	w := httptest.NewRecorder()
	m.Limit("feedback")(http.HandlerFunc(okHandler)).ServeHTTP(w, resolvedRequest())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "30", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "12", w.Header().Get("X-RateLimit-Remaining"))
	checker.AssertExpectations(t)
}

func TestRateLimit_Exceeded(t *testing.T) {
	checker := new(MockRateLimitChecker)
	checker.On("CheckLimit", mock.Anything, "feedback", "42").
		Return(&ratelimit.RateLimitResult{Allowed: false, Limit: 30, RetryAfter: 1500 * time.Millisecond}, nil)
	m := NewRateLimitMiddleware(checker, zap.NewNop())

	w := httptest.NewRecorder()
	m.Limit("feedback")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(w, resolvedRequest())

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	body := decodeError(t, w)
	assert.Equal(t, "RATE_LIMITED", body["error"])
}

func TestRateLimit_RedisErrorFailsOpen(t *testing.T) {
	checker := new(MockRateLimitChecker)
	checker.On("CheckLimit", mock.Anything, "feedback", "42").Return(nil, errors.New("redis down"))
	m := NewRateLimitMiddleware(checker, zap.NewNop())

	w := httptest.NewRecorder()
	m.Limit("feedback")(http.HandlerFunc(okHandler)).ServeHTTP(w, resolvedRequest())

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_NilCheckerDisabled(t *testing.T) {
	m := NewRateLimitMiddleware(nil, zap.NewNop())

	w := httptest.NewRecorder()
	m.Limit("feedback")(http.HandlerFunc(okHandler)).ServeHTTP(w, resolvedRequest())

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_FallsBackToExternalID(t *testing.T) {
	checker := new(MockRateLimitChecker)
	checker.On("CheckLimit", mock.Anything, "feedback", "auth0|alice").
		Return(&ratelimit.RateLimitResult{Allowed: true, Limit: 30, Remaining: 29}, nil)
	m := NewRateLimitMiddleware(checker, zap.NewNop())

	req := withAlice(httptest.NewRequest(http.MethodPost, "/feedback", nil))
	w := httptest.NewRecorder()
	m.Limit("feedback")(http.HandlerFunc(okHandler)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	checker.AssertExpectations(t)
}
