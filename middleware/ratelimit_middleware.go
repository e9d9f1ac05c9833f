package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/upb/campaign-hub/services/ratelimit"
	"github.com/upb/campaign-hub/utils"
	"go.uber.org/zap"
)

// RateLimitChecker defines the interface for rate limit checking
type RateLimitChecker interface {
	CheckLimit(ctx context.Context, scope, subject string) (*ratelimit.RateLimitResult, error)
}

// RateLimitMiddleware throttles callers per user. It runs after the request
// gate so the internal user id is known.
type RateLimitMiddleware struct {
	checker RateLimitChecker
	logger  *zap.Logger
}

// NewRateLimitMiddleware creates a new RateLimitMiddleware. A nil checker
// disables limiting.
func NewRateLimitMiddleware(checker RateLimitChecker, logger *zap.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		checker: checker,
		logger:  logger,
	}
}

// Limit applies the bucket named scope. If Redis is unavailable the
// request is let through and the failure logged.
func (m *RateLimitMiddleware) Limit(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.checker == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			subject := rateLimitSubject(ctx)
			if subject == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := m.checker.CheckLimit(ctx, scope, subject)
			if err != nil {
				m.logger.Warn("rate limit check failed, allowing request",
					zap.String("request_id", requestID),
					zap.String("scope", scope),
					zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

			if !result.Allowed {
				retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				m.logger.Warn("request blocked by rate limit",
					zap.String("request_id", requestID),
					zap.String("scope", scope),
					zap.String("subject", subject))
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				_ = utils.WriteTooManyRequests(w, "rate limit exceeded", map[string]interface{}{
					"retry_after_seconds": retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitSubject(ctx context.Context) string {
	if userID := UserIDFromContext(ctx); userID != nil {
		return strconv.FormatInt(*userID, 10)
	}
	if ident, ok := GetIdentityFromContext(ctx); ok {
		return ident.ExternalID
	}
	return ""
}
