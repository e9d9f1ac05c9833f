package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/campaign-hub/app"
	"github.com/upb/campaign-hub/middleware"
	"github.com/upb/campaign-hub/rbac"
	"github.com/upb/campaign-hub/services/content"
	"github.com/upb/campaign-hub/utils"
)

// feedbackRateScope names the Redis bucket for feedback submissions.
const feedbackRateScope = "feedback"

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(deps.Config.Server.RequestTimeout))
	r.Use(middleware.Metrics)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)

	gate := deps.RBACMiddleware
	system := gate.RequireSystemPermission
	campaign := gate.RequireCampaignPermission

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAuth)

		r.With(gate.ResolveSystemRoles).Get("/me", deps.MeHandler.HandleMe)
		r.With(gate.ResolveSystemRoles).Get("/capabilities", deps.CapabilityHandler.HandleSystem)
		r.With(system(rbac.ActionViewSystemAnalytics)).Get("/analytics", deps.AnalyticsHandler.HandleSystem)
		r.With(system(rbac.ActionViewAuditLog)).Get("/audit/logs", deps.AuditHandler.HandleList)

		r.Route("/campaigns", func(r chi.Router) {
			r.With(gate.ResolveSystemRoles).Get("/", deps.CampaignHandler.HandleList)
			r.With(system(rbac.ActionCreateCampaign)).Post("/", deps.CampaignHandler.HandleCreate)

			r.Route("/{"+middleware.CampaignIDParam+"}", func(r chi.Router) {
				r.With(campaign(rbac.ActionViewCampaign)).Get("/", deps.CampaignHandler.HandleGet)
				r.With(campaign(rbac.ActionUpdateCampaign)).Patch("/", deps.CampaignHandler.HandleUpdate)
				r.With(campaign(rbac.ActionDeleteCampaign)).Delete("/", deps.CampaignHandler.HandleDelete)
				r.With(gate.ResolveCampaignRoles).Get("/capabilities", deps.CapabilityHandler.HandleCampaign)
				r.With(campaign(rbac.ActionLinkChannel)).Put("/channel", deps.CampaignHandler.HandleLinkChannel)
				r.With(campaign(rbac.ActionViewAnalytics)).Get("/analytics", deps.AnalyticsHandler.HandleCampaign)

				r.Route("/members", func(r chi.Router) {
					r.With(campaign(rbac.ActionViewCampaign)).Get("/", deps.CampaignHandler.HandleListMembers)
					r.With(campaign(rbac.ActionManageMembers)).Post("/", deps.CampaignHandler.HandleAddMember)
					r.With(campaign(rbac.ActionManageMembers)).Delete("/{userID}/{role}", deps.CampaignHandler.HandleRemoveMember)
				})

				r.Route("/content", func(r chi.Router) {
					h := deps.ContentHandler
					r.With(campaign(rbac.ActionViewCampaign)).Get("/", h.HandleList)
					r.With(campaign(rbac.ActionCreateContent)).Post("/", h.HandleCreate)

					r.Route("/{contentID}", func(r chi.Router) {
						r.With(campaign(rbac.ActionViewCampaign)).Get("/", h.HandleGet)
						r.With(campaign(rbac.ActionEditContent)).Patch("/", h.HandleUpdate)
						r.With(campaign(rbac.ActionDeleteContent)).Delete("/", h.HandleDelete)
						r.With(campaign(rbac.ActionSubmitReview)).Post("/submit", h.HandleTransition(content.TransitionSubmit))
						r.With(campaign(rbac.ActionApproveContent)).Post("/approve", h.HandleTransition(content.TransitionApprove))
						r.With(campaign(rbac.ActionRejectContent)).Post("/reject", h.HandleTransition(content.TransitionReject))
						r.With(campaign(rbac.ActionPublishContent)).Post("/publish", h.HandleTransition(content.TransitionPublish))
						r.With(campaign(rbac.ActionScheduleContent)).Put("/schedule", h.HandleSchedule)
					})
				})

				r.Route("/feedback", func(r chi.Router) {
					h := deps.FeedbackHandler
					r.With(
						campaign(rbac.ActionSubmitFeedback),
						deps.RateLimitMiddleware.Limit(feedbackRateScope),
					).Post("/", h.HandleSubmit)
					r.With(campaign(rbac.ActionManageFeedback)).Get("/", h.HandleList)
					r.With(campaign(rbac.ActionManageFeedback)).Delete("/{feedbackID}", h.HandleDelete)
				})

				r.Route("/assets", func(r chi.Router) {
					h := deps.AssetHandler
					r.With(campaign(rbac.ActionViewCampaign)).Get("/", h.HandleList)
					r.With(campaign(rbac.ActionUploadAsset)).Post("/", h.HandleUpload)
					r.With(campaign(rbac.ActionViewCampaign)).Get("/{assetID}/url", h.HandleURL)
					r.With(campaign(rbac.ActionViewCampaign)).Get("/{assetID}/content", h.HandleContent)
					r.With(campaign(rbac.ActionDeleteAsset)).Delete("/{assetID}", h.HandleDelete)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
