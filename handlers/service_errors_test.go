package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/campaign-hub/services"
	"github.com/upb/campaign-hub/utils"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
		expectedMsg    string
	}{
		{"not found", services.ErrContentNotFound, http.StatusNotFound, utils.KindNotFound, "content not found"},
		{"validation", services.ErrInvalidInput.WithDetail("title", "required"), http.StatusBadRequest, utils.KindBadRequest, "invalid input"},
		{"unauthenticated", services.ErrInvalidToken, http.StatusUnauthorized, utils.KindUnauthenticated, "invalid authentication token"},
		{"forbidden", services.ErrForbidden, http.StatusForbidden, utils.KindForbidden, "You do not have permission to perform this action"},
		{"duplicate member", services.ErrDuplicateMember, http.StatusConflict, utils.KindConflict, ""},
		{"state transition", services.ErrInvalidStateTransition, http.StatusConflict, utils.KindInvalidStateTransition, ""},
		{"rate limit", services.ErrRateLimitExceeded, http.StatusTooManyRequests, utils.KindRateLimited, "rate limit exceeded"},
		{"too large", services.ErrAssetTooLarge, http.StatusRequestEntityTooLarge, utils.KindPayloadTooLarge, ""},
		{"external", services.ErrYouTubeUnavailable.Wrap(errors.New("quota")), http.StatusBadGateway, utils.KindBadGateway, "youtube api unavailable"},
		{"internal hides cause", services.ErrDatabaseError.Wrap(errors.New("pq: relation missing")), http.StatusInternalServerError, utils.KindInternal, "An internal error occurred"},
		{"resolution failure", services.ErrResolutionFailure, http.StatusInternalServerError, utils.KindInternal, "An internal error occurred"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, utils.KindInternal, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()

			HandleServiceError(w, req, tt.err, zap.NewNop())

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp utils.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.expectedError, resp.Error)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, resp.Message)
			}
			assert.NotContains(t, resp.Message, "pq:")
		})
	}
}

func TestHandleServiceError_Details(t *testing.T) {
	err := services.ErrInvalidStateTransition.
		WithDetail("from", "review").
		WithDetail("to", "approved").
		WithDetail("current", "draft")
	w := httptest.NewRecorder()

	HandleServiceError(w, httptest.NewRequest(http.MethodPost, "/", nil), err, zap.NewNop())

	var resp utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "draft", resp.Details["current"])
	assert.Equal(t, "review", resp.Details["from"])
}

func TestHandleServiceError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	HandleServiceError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil, zap.NewNop())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, w.Body.Len())
}

func TestHandleValidationError(t *testing.T) {
	type payload struct {
		Name string `json:"name" validate:"required"`
	}
	err := utils.ValidateStruct(&payload{})
	w := httptest.NewRecorder()

	HandleValidationError(w, err, zap.NewNop())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "name is required", resp.Details["name"])
}
