package postgres

import (
	"context"
	"fmt"

	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/repositories"
	"go.uber.org/zap"
)

// AnalyticsRepository implements the repositories.AnalyticsRepository interface
type AnalyticsRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *DB, logger *zap.Logger) repositories.AnalyticsRepository {
	return &AnalyticsRepository{
		db:     db,
		logger: logger,
	}
}

type labelCount struct {
	Label string `db:"label"`
	Count int    `db:"count"`
}

// CampaignStats aggregates content, feedback, assets and members of one campaign
func (r *AnalyticsRepository) CampaignStats(ctx context.Context, campaignID int64) (*repositories.CampaignStats, error) {
	exec := GetExecutor(ctx, r.db)
	stats := &repositories.CampaignStats{
		ContentByStatus: map[string]int{
			string(models.ContentStatusDraft):     0,
			string(models.ContentStatusReview):    0,
			string(models.ContentStatusApproved):  0,
			string(models.ContentStatusPublished): 0,
		},
		FeedbackBySentiment: map[string]int{
			string(models.SentimentPositive): 0,
			string(models.SentimentNeutral):  0,
			string(models.SentimentNegative): 0,
		},
	}

	var byStatus []labelCount
	if err := exec.SelectContext(ctx, &byStatus,
		`SELECT status AS label, COUNT(*) AS count FROM content_items WHERE campaign_id = $1 GROUP BY status`,
		campaignID); err != nil {
		return nil, fmt.Errorf("failed to count content: %w", err)
	}
	for _, c := range byStatus {
		stats.ContentByStatus[c.Label] = c.Count
	}

	var bySentiment []labelCount
	if err := exec.SelectContext(ctx, &bySentiment,
		`SELECT sentiment AS label, COUNT(*) AS count FROM feedback WHERE campaign_id = $1 GROUP BY sentiment`,
		campaignID); err != nil {
		return nil, fmt.Errorf("failed to count feedback: %w", err)
	}
	for _, c := range bySentiment {
		stats.FeedbackBySentiment[c.Label] = c.Count
	}

	totals := struct {
		AverageSentiment float64 `db:"average_sentiment"`
		AssetCount       int     `db:"asset_count"`
		AssetBytes       int64   `db:"asset_bytes"`
		ScheduledPending int     `db:"scheduled_pending"`
		MemberCount      int     `db:"member_count"`
	}{}
	query := `
		SELECT
			(SELECT COALESCE(AVG(sentiment_score), 0) FROM feedback WHERE campaign_id = $1) AS average_sentiment,
			(SELECT COUNT(*) FROM assets WHERE campaign_id = $1) AS asset_count,
			(SELECT COALESCE(SUM(size_bytes), 0) FROM assets WHERE campaign_id = $1) AS asset_bytes,
			(SELECT COUNT(*) FROM content_items
			  WHERE campaign_id = $1 AND status = 'approved' AND scheduled_at IS NOT NULL) AS scheduled_pending,
			(SELECT COUNT(DISTINCT user_id) FROM campaign_members WHERE campaign_id = $1) AS member_count
	`
	if err := exec.GetContext(ctx, &totals, query, campaignID); err != nil {
		return nil, fmt.Errorf("failed to aggregate campaign: %w", err)
	}

	stats.AverageSentiment = totals.AverageSentiment
	stats.AssetCount = totals.AssetCount
	stats.AssetBytes = totals.AssetBytes
	stats.ScheduledPending = totals.ScheduledPending
	stats.MemberCount = totals.MemberCount
	return stats, nil
}

// SystemStats counts rows across all campaigns
func (r *AnalyticsRepository) SystemStats(ctx context.Context) (*repositories.SystemStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM campaigns) AS campaigns,
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM content_items) AS content,
			(SELECT COUNT(*) FROM content_items WHERE status = 'published') AS published,
			(SELECT COUNT(*) FROM feedback) AS feedback
	`

	stats := &repositories.SystemStats{}
	if err := GetExecutor(ctx, r.db).GetContext(ctx, stats, query); err != nil {
		return nil, fmt.Errorf("failed to aggregate system: %w", err)
	}
	return stats, nil
}
