// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/repositories"
)

// UserRepository mocks repositories.UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	args := m.Called(ctx, externalID)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MembershipRepository mocks repositories.MembershipRepository
type MembershipRepository struct {
	mock.Mock
}

func (m *MembershipRepository) CampaignRoles(ctx context.Context, userID, campaignID int64) ([]string, error) {
	args := m.Called(ctx, userID, campaignID)
	if r := args.Get(0); r != nil {
		return r.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MembershipRepository) SystemRoles(ctx context.Context, userID int64) ([]string, error) {
	args := m.Called(ctx, userID)
	if r := args.Get(0); r != nil {
		return r.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MembershipRepository) AddMember(ctx context.Context, campaignID, userID int64, role string) error {
	return m.Called(ctx, campaignID, userID, role).Error(0)
}

func (m *MembershipRepository) RemoveMember(ctx context.Context, campaignID, userID int64, role string) error {
	return m.Called(ctx, campaignID, userID, role).Error(0)
}

func (m *MembershipRepository) ListMembers(ctx context.Context, campaignID int64) ([]*models.CampaignMember, error) {
	args := m.Called(ctx, campaignID)
	if r := args.Get(0); r != nil {
		return r.([]*models.CampaignMember), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MembershipRepository) RoleHolders(ctx context.Context, campaignID int64, role string) ([]int64, error) {
	args := m.Called(ctx, campaignID, role)
	if ids := args.Get(0); ids != nil {
		return ids.([]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

// CampaignRepository mocks repositories.CampaignRepository
type CampaignRepository struct {
	mock.Mock
}

func (m *CampaignRepository) Create(ctx context.Context, c *models.Campaign) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CampaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Campaign), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CampaignRepository) Update(ctx context.Context, c *models.Campaign) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CampaignRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CampaignRepository) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Campaign, error) {
	args := m.Called(ctx, userID, limit, offset)
	if c := args.Get(0); c != nil {
		return c.([]*models.Campaign), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CampaignRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Campaign, error) {
	args := m.Called(ctx, limit, offset)
	if c := args.Get(0); c != nil {
		return c.([]*models.Campaign), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CampaignRepository) SetYouTubeChannel(ctx context.Context, id int64, channelID *string) error {
	return m.Called(ctx, id, channelID).Error(0)
}

// ContentRepository mocks repositories.ContentRepository
type ContentRepository struct {
	mock.Mock
}

func (m *ContentRepository) Create(ctx context.Context, item *models.ContentItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *ContentRepository) GetByID(ctx context.Context, campaignID, id int64) (*models.ContentItem, error) {
	args := m.Called(ctx, campaignID, id)
	if c := args.Get(0); c != nil {
		return c.(*models.ContentItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContentRepository) List(ctx context.Context, campaignID int64, status *models.ContentStatus, limit, offset int) ([]*models.ContentItem, error) {
	args := m.Called(ctx, campaignID, status, limit, offset)
	if c := args.Get(0); c != nil {
		return c.([]*models.ContentItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContentRepository) Delete(ctx context.Context, campaignID, id int64) error {
	return m.Called(ctx, campaignID, id).Error(0)
}

func (m *ContentRepository) UpdateDraft(ctx context.Context, item *models.ContentItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *ContentRepository) Transition(ctx context.Context, t repositories.StatusTransition) (*models.ContentItem, error) {
	args := m.Called(ctx, t)
	if c := args.Get(0); c != nil {
		return c.(*models.ContentItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContentRepository) Schedule(ctx context.Context, campaignID, id int64, at time.Time) (*models.ContentItem, error) {
	args := m.Called(ctx, campaignID, id, at)
	if c := args.Get(0); c != nil {
		return c.(*models.ContentItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContentRepository) PublishDue(ctx context.Context, now time.Time) ([]models.PublishedItem, error) {
	args := m.Called(ctx, now)
	if p := args.Get(0); p != nil {
		return p.([]models.PublishedItem), args.Error(1)
	}
	return nil, args.Error(1)
}

// FeedbackRepository mocks repositories.FeedbackRepository
type FeedbackRepository struct {
	mock.Mock
}

func (m *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	return m.Called(ctx, fb).Error(0)
}

func (m *FeedbackRepository) List(ctx context.Context, campaignID int64, sentiment *models.Sentiment, limit, offset int) ([]*models.Feedback, error) {
	args := m.Called(ctx, campaignID, sentiment, limit, offset)
	if f := args.Get(0); f != nil {
		return f.([]*models.Feedback), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FeedbackRepository) Delete(ctx context.Context, campaignID, id int64) error {
	return m.Called(ctx, campaignID, id).Error(0)
}

// AssetRepository mocks repositories.AssetRepository
type AssetRepository struct {
	mock.Mock
}

func (m *AssetRepository) Create(ctx context.Context, a *models.Asset) error {
	return m.Called(ctx, a).Error(0)
}

func (m *AssetRepository) GetByID(ctx context.Context, campaignID, id int64) (*models.Asset, error) {
	args := m.Called(ctx, campaignID, id)
	if a := args.Get(0); a != nil {
		return a.(*models.Asset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AssetRepository) List(ctx context.Context, campaignID int64) ([]*models.Asset, error) {
	args := m.Called(ctx, campaignID)
	if a := args.Get(0); a != nil {
		return a.([]*models.Asset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AssetRepository) Delete(ctx context.Context, campaignID, id int64) error {
	return m.Called(ctx, campaignID, id).Error(0)
}

// AuditRepository mocks repositories.AuditRepository and keeps what was inserted.
type AuditRepository struct {
	mock.Mock
	mu       sync.Mutex
	inserted []*models.AuditLog
}

func (m *AuditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	args := m.Called(ctx, log)
	m.inserted = append(m.inserted, log)
	return args.Error(0)
}

func (m *AuditRepository) List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditLog, error) {
	args := m.Called(ctx, filter)
	if l := args.Get(0); l != nil {
		return l.([]*models.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

// Inserted returns a snapshot of the logs passed to Insert.
func (m *AuditRepository) Inserted() []*models.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.AuditLog(nil), m.inserted...)
}

// AnalyticsRepository mocks repositories.AnalyticsRepository
type AnalyticsRepository struct {
	mock.Mock
}

func (m *AnalyticsRepository) CampaignStats(ctx context.Context, campaignID int64) (*repositories.CampaignStats, error) {
	args := m.Called(ctx, campaignID)
	if s := args.Get(0); s != nil {
		return s.(*repositories.CampaignStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AnalyticsRepository) SystemStats(ctx context.Context) (*repositories.SystemStats, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*repositories.SystemStats), args.Error(1)
	}
	return nil, args.Error(1)
}

// TransactionManager runs fn inline with the caller's context.
type TransactionManager struct {
	Calls int
	mu    sync.Mutex
}

func (m *TransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return &transaction{ctx: ctx}, nil
}

func (m *TransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	return fn(ctx, &transaction{ctx: ctx})
}

type transaction struct {
	ctx context.Context
}

func (t *transaction) Commit() error            { return nil }
func (t *transaction) Rollback() error          { return nil }
func (t *transaction) Context() context.Context { return t.ctx }
