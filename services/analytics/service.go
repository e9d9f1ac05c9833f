// Package analytics assembles campaign and system reports.
package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/upb/campaign-hub/integrations/youtube"
	"github.com/upb/campaign-hub/repositories"
	"github.com/upb/campaign-hub/services"
	"go.uber.org/zap"
)

// ChannelStatsFetcher reads live channel counters.
type ChannelStatsFetcher interface {
	ChannelStats(ctx context.Context, channelID string) (*youtube.ChannelStats, error)
}

// CampaignReport is the analytics payload of one campaign.
type CampaignReport struct {
	CampaignID int64 `json:"campaign_id"`
	*repositories.CampaignStats
	Channel     *youtube.ChannelStats `json:"channel"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// AnalyticsService reads aggregates and, when configured, YouTube statistics.
type AnalyticsService struct {
	analytics    repositories.AnalyticsRepository
	campaigns    repositories.CampaignRepository
	channels     ChannelStatsFetcher
	channelLimit time.Duration
	logger       *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService instance. channels may be
// nil, in which case reports carry no channel statistics.
func NewAnalyticsService(analytics repositories.AnalyticsRepository, campaigns repositories.CampaignRepository, channels ChannelStatsFetcher, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		analytics:    analytics,
		campaigns:    campaigns,
		channels:     channels,
		channelLimit: 5 * time.Second,
		logger:       logger,
	}
}

// Campaign builds the report for one campaign.
func (s *AnalyticsService) Campaign(ctx context.Context, campaignID int64) (*CampaignReport, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrCampaignNotFound
		}
		return nil, services.ErrDatabaseError.Wrap(err)
	}

	stats, err := s.analytics.CampaignStats(ctx, campaignID)
	if err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}

	report := &CampaignReport{
		CampaignID:    campaignID,
		CampaignStats: stats,
		GeneratedAt:   time.Now().UTC(),
	}
	if campaign.YouTubeChannelID != nil && *campaign.YouTubeChannelID != "" && s.channels != nil {
		report.Channel = s.channelStats(ctx, campaignID, *campaign.YouTubeChannelID)
	}
	return report, nil
}

// System returns platform-wide totals.
func (s *AnalyticsService) System(ctx context.Context) (*repositories.SystemStats, error) {
	stats, err := s.analytics.SystemStats(ctx)
	if err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return stats, nil
}

// channelStats never fails the report; the channel section degrades to null.
func (s *AnalyticsService) channelStats(ctx context.Context, campaignID int64, channelID string) *youtube.ChannelStats {
	ctx, cancel := context.WithTimeout(ctx, s.channelLimit)
	defer cancel()

	stats, err := s.channels.ChannelStats(ctx, channelID)
	if err != nil {
		s.logger.Warn("youtube channel statistics unavailable",
			zap.Int64("campaign_id", campaignID),
			zap.String("channel_id", channelID),
			zap.Error(services.ErrYouTubeUnavailable.Wrap(err)))
		return nil
	}
	return stats
}
