package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/campaign-hub/app"
	"github.com/upb/campaign-hub/config"
	"github.com/upb/campaign-hub/handlers"
	"github.com/upb/campaign-hub/identity"
	"github.com/upb/campaign-hub/middleware"
	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/repositories"
	"github.com/upb/campaign-hub/repositories/mocks"
	"github.com/upb/campaign-hub/services/access"
	"github.com/upb/campaign-hub/services/analytics"
	"github.com/upb/campaign-hub/services/asset"
	"github.com/upb/campaign-hub/services/campaign"
	"github.com/upb/campaign-hub/services/content"
	"github.com/upb/campaign-hub/services/feedback"
	"github.com/upb/campaign-hub/services/sentiment"
	"github.com/upb/campaign-hub/storage/local"
	"go.uber.org/zap"
)

type fixture struct {
	handler     http.Handler
	validator   *identity.Validator
	users       *mocks.UserRepository
	memberships *mocks.MembershipRepository
	campaigns   *mocks.CampaignRepository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()

	validator, err := identity.NewValidator(identity.Config{Secret: "routes-test", Issuer: "campaign-hub"})
	require.NoError(t, err)

	store, err := local.New(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		validator:   validator,
		users:       &mocks.UserRepository{},
		memberships: &mocks.MembershipRepository{},
		campaigns:   &mocks.CampaignRepository{},
	}
	contentRepo := &mocks.ContentRepository{}

	campaignSvc := campaign.NewCampaignService(f.campaigns, f.memberships, f.users, &mocks.TransactionManager{}, nil, logger)
	contentSvc := content.NewContentService(contentRepo, nil, logger)
	feedbackSvc := feedback.NewFeedbackService(&mocks.FeedbackRepository{}, contentRepo, sentiment.NewLexiconClassifier(), logger)
	assetSvc := asset.NewAssetService(&mocks.AssetRepository{}, store, nil, time.Minute, logger)
	analyticsSvc := analytics.NewAnalyticsService(&mocks.AnalyticsRepository{}, f.campaigns, nil, logger)

	deps := &app.Dependencies{
		Config: &config.Config{
			Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
			CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		},
		Logger: logger,

		AuthMiddleware:      middleware.NewAuthMiddleware(validator, logger),
		RBACMiddleware:      middleware.NewRBACMiddleware(access.NewResolver(f.users, f.memberships, logger), nil, logger),
		RateLimitMiddleware: middleware.NewRateLimitMiddleware(nil, logger),

		HealthHandler:     handlers.NewHealthHandler(nil, logger),
		MeHandler:         handlers.NewMeHandler(logger),
		CapabilityHandler: handlers.NewCapabilityHandler(logger),
		CampaignHandler:   handlers.NewCampaignHandler(campaignSvc, logger),
		ContentHandler:    handlers.NewContentHandler(contentSvc, logger),
		FeedbackHandler:   handlers.NewFeedbackHandler(feedbackSvc, logger),
		AssetHandler:      handlers.NewAssetHandler(assetSvc, logger),
		AnalyticsHandler:  handlers.NewAnalyticsHandler(analyticsSvc, logger),
		AuditHandler:      handlers.NewAuditHandler(nil, logger),
	}
	f.handler = SetupRoutes(deps)
	return f
}

func (f *fixture) token(t *testing.T, subject string) string {
	t.Helper()
	tok, err := f.validator.Issue(subject, subject+"@example.com", "Test User", time.Hour)
	require.NoError(t, err)
	return tok
}

// provision maps subject to user id 5 holding the given campaign roles in campaign 7.
func (f *fixture) provision(subject string, roles ...string) {
	f.users.On("GetByExternalID", mock.Anything, subject).
		Return(&models.User{ID: 5, ExternalUserID: subject, Email: subject + "@example.com"}, nil)
	f.memberships.On("CampaignRoles", mock.Anything, int64(5), int64(7)).Return(roles, nil)
}

func (f *fixture) do(method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func errorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestRoutes_Health(t *testing.T) {
	f := setup(t)

	rec := f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRoutes_NotFoundAndMethodNotAllowed(t *testing.T) {
	f := setup(t)

	rec := f.do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorKind(t, rec))

	rec = f.do(http.MethodPut, "/healthz", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", errorKind(t, rec))
}

func TestRoutes_RequiresAuthentication(t *testing.T) {
	f := setup(t)

	for _, target := range []string{"/api/v1/me", "/api/v1/campaigns", "/api/v1/campaigns/7/content"} {
		rec := f.do(http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
		assert.Equal(t, "UNAUTHENTICATED", errorKind(t, rec), target)
	}
}

func TestRoutes_CampaignGate(t *testing.T) {
	f := setup(t)
	f.provision("ext-marketer", "marketer")
	f.campaigns.On("GetByID", mock.Anything, int64(7)).
		Return(&models.Campaign{ID: 7, Name: "Spring launch"}, nil)
	tok := f.token(t, "ext-marketer")

	rec := f.do(http.MethodGet, "/api/v1/campaigns/7", tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Spring launch")

	// Deleting a campaign is reserved for campaign admins.
	rec = f.do(http.MethodDelete, "/api/v1/campaigns/7", tok)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorKind(t, rec))
	f.campaigns.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	rec = f.do(http.MethodGet, "/api/v1/campaigns/7/capabilities", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var caps struct {
		Data map[string]bool `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &caps))
	assert.True(t, caps.Data["canApproveContent"])
	assert.False(t, caps.Data["canDeleteCampaign"])
}

func TestRoutes_NonMemberIsForbidden(t *testing.T) {
	f := setup(t)
	f.provision("ext-outsider")
	tok := f.token(t, "ext-outsider")

	rec := f.do(http.MethodGet, "/api/v1/campaigns/7/assets", tok)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoutes_SystemGate(t *testing.T) {
	f := setup(t)
	f.users.On("GetByExternalID", mock.Anything, "ext-member").
		Return(&models.User{ID: 9, ExternalUserID: "ext-member"}, nil)
	f.memberships.On("SystemRoles", mock.Anything, int64(9)).Return([]string{"member"}, nil)
	tok := f.token(t, "ext-member")

	rec := f.do(http.MethodGet, "/api/v1/audit/logs", tok)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/me", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"member"`)
}

func TestRoutes_UnprovisionedIdentity(t *testing.T) {
	f := setup(t)
	f.users.On("GetByExternalID", mock.Anything, "ext-new").Return(nil, repositories.ErrNotFound)
	tok := f.token(t, "ext-new")

	rec := f.do(http.MethodGet, "/api/v1/campaigns", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"data":[]`), rec.Body.String())
}
