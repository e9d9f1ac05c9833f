package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upb/campaign-hub/middleware"
	"github.com/upb/campaign-hub/rbac"
	"github.com/upb/campaign-hub/utils"
	"go.uber.org/zap"
)

// campaignRef is embedded in request bodies that may name their campaign.
// The gate reads it; handlers always use the path parameter.
type campaignRef struct {
	CampaignID json.RawMessage `json:"campaign_id,omitempty"`
}

// decodeRequest decodes and validates a JSON body, writing a 400 on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}, logger *zap.Logger) bool {
	requestID := middleware.GetRequestIDFromContext(r.Context())
	if err := utils.DecodeJSON(r, v); err != nil {
		logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		msg := "Invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		_ = utils.WriteBadRequest(w, msg, nil)
		return false
	}
	if err := utils.ValidateStruct(v); err != nil {
		logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, logger)
		return false
	}
	return true
}

// pathID reads a numeric path parameter, writing a 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := utils.URLParamID(r, name)
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid "+name, nil)
		return 0, false
	}
	return id, true
}

// campaignID reads the campaign path parameter resolved by the gate.
func campaignID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if res, ok := middleware.GetResolutionFromContext(r.Context()); ok && res.CampaignID > 0 {
		return res.CampaignID, true
	}
	return pathID(w, r, middleware.CampaignIDParam)
}

// callerID returns the internal user id of the caller. The gates only admit
// callers with a users row, so a miss here means the route is not gated.
func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if id := middleware.UserIDFromContext(r.Context()); id != nil {
		return *id, true
	}
	_ = utils.WriteForbidden(w, "")
	return 0, false
}

// callerRoles returns the roles the gate resolved for this request. Without
// a resolution the set is empty.
func callerRoles(r *http.Request) rbac.RoleSet {
	res, _ := middleware.GetResolutionFromContext(r.Context())
	return res.Roles
}

func chiParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
