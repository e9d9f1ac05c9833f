package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/repositories"
	"github.com/upb/campaign-hub/repositories/mocks"
	"github.com/upb/campaign-hub/services/analytics"
	"go.uber.org/zap"
)

func TestAnalyticsHandler(t *testing.T) {
	analyticsRepo := new(mocks.AnalyticsRepository)
	campaigns := new(mocks.CampaignRepository)
	campaigns.On("GetByID", mock.Anything, int64(7)).Return(&models.Campaign{ID: 7}, nil)
	analyticsRepo.On("CampaignStats", mock.Anything, int64(7)).Return(&repositories.CampaignStats{
		ContentByStatus:     map[string]int{"published": 4},
		FeedbackBySentiment: map[string]int{"negative": 1},
		AssetCount:          2,
	}, nil)
	analyticsRepo.On("SystemStats", mock.Anything).Return(&repositories.SystemStats{Campaigns: 3, Users: 12}, nil)

	handler := NewAnalyticsHandler(analytics.NewAnalyticsService(analyticsRepo, campaigns, nil, zap.NewNop()), zap.NewNop())

	t.Run("campaign", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleCampaign(w, newRequest(http.MethodGet, "/", "", map[string]string{"campaignID": "7"}))

		require.Equal(t, http.StatusOK, w.Code)
		var report map[string]interface{}
		decodeInto(t, w, &report)
		assert.Equal(t, float64(7), report["campaign_id"])
		assert.Equal(t, float64(2), report["asset_count"])
		assert.Nil(t, report["channel"])
		assert.Contains(t, report, "channel")
	})

	t.Run("system", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandleSystem(w, newRequest(http.MethodGet, "/", "", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var stats repositories.SystemStats
		decodeInto(t, w, &stats)
		assert.Equal(t, 12, stats.Users)
	})
}

type stubAuditReader struct {
	filter models.AuditFilter
	err    error
}

func (s *stubAuditReader) List(_ context.Context, filter models.AuditFilter) ([]*models.AuditLog, error) {
	s.filter = filter
	if s.err != nil {
		return nil, s.err
	}
	return []*models.AuditLog{models.NewAuditLog(models.AuditActionPermissionDenied, "permission")}, nil
}

func TestAuditHandler(t *testing.T) {
	t.Run("filters", func(t *testing.T) {
		reader := &stubAuditReader{}
		handler := NewAuditHandler(reader, zap.NewNop())

		w := httptest.NewRecorder()
		handler.HandleList(w, newRequest(http.MethodGet, "/?campaign_id=7&action=permission_denied&limit=5", "", nil))

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, reader.filter.CampaignID)
		assert.Equal(t, int64(7), *reader.filter.CampaignID)
		assert.Equal(t, models.AuditActionPermissionDenied, reader.filter.Action)
		assert.Equal(t, 5, reader.filter.Limit)
	})

	t.Run("bad campaign id", func(t *testing.T) {
		handler := NewAuditHandler(&stubAuditReader{}, zap.NewNop())
		w := httptest.NewRecorder()
		handler.HandleList(w, newRequest(http.MethodGet, "/?campaign_id=x", "", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		handler := NewAuditHandler(&stubAuditReader{err: errors.New("timeout")}, zap.NewNop())
		w := httptest.NewRecorder()
		handler.HandleList(w, newRequest(http.MethodGet, "/", "", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
