package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/upb/campaign-hub/rbac"
	"github.com/upb/campaign-hub/services/access"
	"github.com/upb/campaign-hub/telemetry"
	"github.com/upb/campaign-hub/utils"
	"go.uber.org/zap"
)

// CampaignIDParam is the chi path parameter carrying the campaign id.
const CampaignIDParam = "campaignID"

// maxGateBodyBytes caps how much of a JSON body the gate buffers while
// looking for campaign_id.
const maxGateBodyBytes = 1 << 20

// RoleResolver resolves the caller's roles in a scope.
type RoleResolver interface {
	ResolveCampaign(ctx context.Context, ident access.Identity, campaignID int64) (access.Resolution, error)
	ResolveSystem(ctx context.Context, ident access.Identity) (access.Resolution, error)
}

// DenialRecorder receives refused requests for the audit trail.
type DenialRecorder interface {
	LogPermissionDenied(ctx context.Context, userID *int64, campaignID int64, scope, action string) error
}

// RBACMiddleware gates handlers on the permission tables. Role resolution
// and the check always run together, so a handler behind it only executes
// for callers whose roles were read for this request.
type RBACMiddleware struct {
	resolver RoleResolver
	audit    DenialRecorder
	logger   *zap.Logger
}

// NewRBACMiddleware creates a new RBACMiddleware. audit may be nil.
func NewRBACMiddleware(resolver RoleResolver, audit DenialRecorder, logger *zap.Logger) *RBACMiddleware {
	return &RBACMiddleware{
		resolver: resolver,
		audit:    audit,
		logger:   logger,
	}
}

// RequireCampaignPermission admits the request only if the caller holds a
// role in the target campaign that allows action.
func (m *RBACMiddleware) RequireCampaignPermission(action rbac.Action) func(http.Handler) http.Handler {
	mustScope(action, rbac.ScopeCampaign)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := m.resolveCampaign(w, r, action)
			if !ok {
				return
			}
			m.authorize(w, r, next, res, action)
		})
	}
}

// RequireSystemPermission admits the request only if one of the caller's
// system roles allows action.
func (m *RBACMiddleware) RequireSystemPermission(action rbac.Action) func(http.Handler) http.Handler {
	mustScope(action, rbac.ScopeSystem)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := m.resolveSystem(w, r, action)
			if !ok {
				return
			}
			m.authorize(w, r, next, res, action)
		})
	}
}

// ResolveCampaignRoles resolves campaign roles into the context without
// checking any action. Capability endpoints use it.
func (m *RBACMiddleware) ResolveCampaignRoles(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := m.resolveCampaign(w, r, "")
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(withResolved(r.Context(), res)))
	})
}

// ResolveSystemRoles resolves system roles into the context without
// checking any action.
func (m *RBACMiddleware) ResolveSystemRoles(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := m.resolveSystem(w, r, "")
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(withResolved(r.Context(), res)))
	})
}

func (m *RBACMiddleware) resolveCampaign(w http.ResponseWriter, r *http.Request, action rbac.Action) (access.Resolution, bool) {
	ident, ok := m.identity(w, r)
	if !ok {
		return access.Resolution{}, false
	}

	campaignID, err := CampaignIDFromRequest(r)
	if err != nil {
		m.logger.Debug("campaign id missing from request",
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.String("action", string(action)),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "campaign id is required", nil)
		return access.Resolution{}, false
	}

	res, err := m.resolver.ResolveCampaign(r.Context(), ident, campaignID)
	if err != nil {
		res = access.Resolution{Identity: ident, Scope: rbac.ScopeCampaign, CampaignID: campaignID}
	}
	return m.checkResolution(w, r, res, err, action)
}

func (m *RBACMiddleware) resolveSystem(w http.ResponseWriter, r *http.Request, action rbac.Action) (access.Resolution, bool) {
	ident, ok := m.identity(w, r)
	if !ok {
		return access.Resolution{}, false
	}

	res, err := m.resolver.ResolveSystem(r.Context(), ident)
	if err != nil {
		res = access.Resolution{Identity: ident, Scope: rbac.ScopeSystem}
	}
	return m.checkResolution(w, r, res, err, action)
}

func (m *RBACMiddleware) identity(w http.ResponseWriter, r *http.Request) (access.Identity, bool) {
	ident, ok := GetIdentityFromContext(r.Context())
	if !ok {
		m.logger.Error("identity not found in context",
			zap.String("request_id", GetRequestIDFromContext(r.Context())))
		_ = utils.WriteUnauthenticated(w, "Authentication required")
		return access.Identity{}, false
	}
	return ident, true
}

// checkResolution fails closed: a resolver error or an expired request
// context never reaches the checker.
func (m *RBACMiddleware) checkResolution(w http.ResponseWriter, r *http.Request, res access.Resolution, err error, action rbac.Action) (access.Resolution, bool) {
	if err == nil {
		err = r.Context().Err()
	}
	if err != nil {
		m.logger.Error("RESOLUTION_FAILURE",
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.Int64p("user_id", res.Identity.UserID),
			zap.String("external_id", res.Identity.ExternalID),
			zap.String("scope", res.Scope.String()),
			zap.String("action", string(action)),
			zap.Int64("campaign_id", res.CampaignID),
			zap.Error(err))
		telemetry.RBACDecisionsTotal.WithLabelValues(res.Scope.String(), actionLabel(action), telemetry.VerdictError).Inc()
		_ = utils.WriteInternalServerError(w, "An internal error occurred")
		return res, false
	}

	if res.Unresolved {
		telemetry.RBACDecisionsTotal.WithLabelValues(res.Scope.String(), actionLabel(action), telemetry.VerdictUnresolved).Inc()
	}
	return res, true
}

func (m *RBACMiddleware) authorize(w http.ResponseWriter, r *http.Request, next http.Handler, res access.Resolution, action rbac.Action) {
	ctx := r.Context()
	scope := res.Scope.String()

	if !rbac.Allowed(res.Roles, action) {
		m.logger.Warn("FORBIDDEN",
			zap.String("request_id", GetRequestIDFromContext(ctx)),
			zap.Int64p("user_id", res.Identity.UserID),
			zap.String("external_id", res.Identity.ExternalID),
			zap.String("scope", scope),
			zap.String("action", string(action)),
			zap.Int64("campaign_id", res.CampaignID),
			zap.Strings("roles", res.Roles.Names()))
		if !res.Unresolved {
			telemetry.RBACDecisionsTotal.WithLabelValues(scope, string(action), telemetry.VerdictForbidden).Inc()
		}
		if m.audit != nil {
			if err := m.audit.LogPermissionDenied(ctx, res.Identity.UserID, res.CampaignID, scope, string(action)); err != nil {
				m.logger.Warn("failed to queue permission denial", zap.Error(err))
			}
		}
		_ = utils.WriteForbidden(w, "You do not have permission to perform this action")
		return
	}

	telemetry.RBACDecisionsTotal.WithLabelValues(scope, string(action), telemetry.VerdictAllowed).Inc()
	next.ServeHTTP(w, r.WithContext(withResolved(ctx, res)))
}

func withResolved(ctx context.Context, res access.Resolution) context.Context {
	return WithResolution(WithIdentity(ctx, res.Identity), res)
}

func actionLabel(action rbac.Action) string {
	if action == "" {
		return "resolve"
	}
	return string(action)
}

func mustScope(action rbac.Action, scope rbac.Scope) {
	got, ok := rbac.ScopeOf(action)
	if !ok || got != scope {
		panic(fmt.Sprintf("rbac: action %q is not a %s action", action, scope))
	}
}

// CampaignIDFromRequest locates the target campaign: the chi path parameter
// first, then campaign_id in a JSON body, then the campaign_id query
// parameter. A body that is read is restored for the next handler.
func CampaignIDFromRequest(r *http.Request) (int64, error) {
	if raw := chi.URLParam(r, CampaignIDParam); raw != "" {
		return utils.ParseID(raw)
	}

	if id, ok := campaignIDFromBody(r); ok {
		return id, nil
	}

	if raw := r.URL.Query().Get("campaign_id"); raw != "" {
		return utils.ParseID(raw)
	}

	return 0, fmt.Errorf("no campaign id in path, body or query")
}

func campaignIDFromBody(r *http.Request) (int64, bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return 0, false
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !strings.HasSuffix(mediaType, "json") {
		return 0, false
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxGateBodyBytes))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(data), r.Body))
	if err != nil {
		return 0, false
	}

	var payload struct {
		CampaignID json.RawMessage `json:"campaign_id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.CampaignID) == 0 {
		return 0, false
	}

	raw := strings.Trim(string(payload.CampaignID), `"`)
	id, err := utils.ParseID(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}
