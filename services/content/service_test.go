package content

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/repositories"
	"github.com/upb/campaign-hub/repositories/mocks"
	"github.com/upb/campaign-hub/services"
	"go.uber.org/zap"
)

type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) LogContentTransition(ctx context.Context, userID *int64, item *models.ContentItem, from models.ContentStatus) error {
	return m.Called(ctx, userID, item, from).Error(0)
}

func int64Ptr(v int64) *int64 { return &v }

func item(status models.ContentStatus) *models.ContentItem {
	return &models.ContentItem{ID: 10, CampaignID: 1, Title: "Launch post", Status: status, CreatedBy: 2}
}

func TestCreate(t *testing.T) {
	repo := new(mocks.ContentRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(i *models.ContentItem) bool {
		return i.Status == models.ContentStatusDraft && i.Title == "Hello" && i.CreatedBy == 2 && i.CampaignID == 1
	})).Return(nil)
	service := NewContentService(repo, nil, zap.NewNop())

	got, err := service.Create(context.Background(), 1, 2, CreateInput{Title: "  Hello ", Body: "b", Channel: "email"})
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusDraft, got.Status)

	_, err = service.Create(context.Background(), 1, 2, CreateInput{Title: "   "})
	assert.True(t, services.IsValidationError(err))
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestTransitions_HappyPath(t *testing.T) {
	tests := []struct {
		name string
		run  func(*ContentService) (*models.ContentItem, error)
		want repositories.StatusTransition
	}{
		{
			name: "submit",
			run: func(s *ContentService) (*models.ContentItem, error) {
				return s.Submit(context.Background(), int64Ptr(2), 1, 10)
			},
			want: repositories.StatusTransition{CampaignID: 1, ContentID: 10, From: models.ContentStatusDraft, To: models.ContentStatusReview},
		},
		{
			name: "approve stamps approver",
			run: func(s *ContentService) (*models.ContentItem, error) {
				return s.Approve(context.Background(), int64Ptr(3), 1, 10)
			},
			want: repositories.StatusTransition{CampaignID: 1, ContentID: 10, From: models.ContentStatusReview, To: models.ContentStatusApproved, ApprovedBy: int64Ptr(3)},
		},
		{
			name: "reject keeps notes",
			run: func(s *ContentService) (*models.ContentItem, error) {
				notes := " needs a CTA "
				return s.Reject(context.Background(), int64Ptr(3), 1, 10, &notes)
			},
			want: repositories.StatusTransition{CampaignID: 1, ContentID: 10, From: models.ContentStatusReview, To: models.ContentStatusDraft, ReviewNotes: func() *string { s := "needs a CTA"; return &s }()},
		},
		{
			name: "reject drops blank notes",
			run: func(s *ContentService) (*models.ContentItem, error) {
				notes := "  "
				return s.Reject(context.Background(), int64Ptr(3), 1, 10, &notes)
			},
			want: repositories.StatusTransition{CampaignID: 1, ContentID: 10, From: models.ContentStatusReview, To: models.ContentStatusDraft},
		},
		{
			name: "publish",
			run: func(s *ContentService) (*models.ContentItem, error) {
				return s.Publish(context.Background(), int64Ptr(4), 1, 10)
			},
			want: repositories.StatusTransition{CampaignID: 1, ContentID: 10, From: models.ContentStatusApproved, To: models.ContentStatusPublished, Publish: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.ContentRepository)
			recorder := new(MockAuditRecorder)
			updated := item(tt.want.To)
			repo.On("Transition", mock.Anything, tt.want).Return(updated, nil)
			recorder.On("LogContentTransition", mock.Anything, mock.Anything, updated, tt.want.From).Return(nil)

			got, err := tt.run(NewContentService(repo, recorder, zap.NewNop()))
			require.NoError(t, err)
			assert.Equal(t, tt.want.To, got.Status)
			repo.AssertExpectations(t)
			recorder.AssertExpectations(t)
			repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestTransition_WrongState(t *testing.T) {
	repo := new(mocks.ContentRepository)
	repo.On("Transition", mock.Anything, mock.Anything).Return(nil, repositories.ErrConditionFailed)
	repo.On("GetByID", mock.Anything, int64(1), int64(10)).Return(item(models.ContentStatusDraft), nil)
	recorder := new(MockAuditRecorder)
	service := NewContentService(repo, recorder, zap.NewNop())

	_, err := service.Approve(context.Background(), int64Ptr(3), 1, 10)

	require.Error(t, err)
	assert.True(t, services.IsInvalidStateTransitionError(err))
	details := services.GetErrorDetails(err)
	assert.Equal(t, models.ContentStatusReview, details["from"])
	assert.Equal(t, models.ContentStatusApproved, details["to"])
	assert.Equal(t, models.ContentStatusDraft, details["current"])
	recorder.AssertNotCalled(t, "LogContentTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// The shared sentinel is never mutated.
	assert.Empty(t, services.ErrInvalidStateTransition.Details)
}

func TestTransition_Missing(t *testing.T) {
	repo := new(mocks.ContentRepository)
	repo.On("Transition", mock.Anything, mock.Anything).Return(nil, repositories.ErrConditionFailed)
	repo.On("GetByID", mock.Anything, int64(1), int64(10)).Return(nil, repositories.ErrNotFound)
	service := NewContentService(repo, nil, zap.NewNop())

	_, err := service.Submit(context.Background(), int64Ptr(2), 1, 10)

	assert.ErrorIs(t, err, services.ErrContentNotFound)
}

func TestTransition_DatabaseError(t *testing.T) {
	repo := new(mocks.ContentRepository)
	repo.On("Transition", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))
	service := NewContentService(repo, nil, zap.NewNop())

	_, err := service.Publish(context.Background(), int64Ptr(2), 1, 10)

	assert.True(t, services.IsInternalError(err))
}

func TestApply(t *testing.T) {
	repo := new(mocks.ContentRepository)
	repo.On("Transition", mock.Anything, mock.MatchedBy(func(tr repositories.StatusTransition) bool {
		return tr.To == models.ContentStatusReview
	})).Return(item(models.ContentStatusReview), nil)
	service := NewContentService(repo, nil, zap.NewNop())

	got, err := service.Apply(context.Background(), int64Ptr(2), TransitionSubmit, 1, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusReview, got.Status)

	_, err = service.Apply(context.Background(), int64Ptr(2), Transition("archive"), 1, 10, nil)
	assert.True(t, services.IsValidationError(err))
}

// guardedRepo applies transitions under a mutex the way the database applies
// a conditional UPDATE, which is enough to check the service never turns a
// lost race into a second success.
type guardedRepo struct {
	mocks.ContentRepository
	mu     sync.Mutex
	status models.ContentStatus
}

func (r *guardedRepo) Transition(ctx context.Context, t repositories.StatusTransition) (*models.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != t.From {
		return nil, repositories.ErrConditionFailed
	}
	r.status = t.To
	return &models.ContentItem{ID: t.ContentID, CampaignID: t.CampaignID, Status: t.To}, nil
}

func (r *guardedRepo) GetByID(ctx context.Context, campaignID, id int64) (*models.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &models.ContentItem{ID: id, CampaignID: campaignID, Status: r.status}, nil
}

func TestConcurrentApprove_ExactlyOneWins(t *testing.T) {
	repo := &guardedRepo{status: models.ContentStatusReview}
	service := NewContentService(repo, nil, zap.NewNop())

	const attempts = 16
	var wins, conflicts int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(actor int64) {
			defer wg.Done()
			<-start
			_, err := service.Approve(context.Background(), &actor, 1, 10)
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case services.IsInvalidStateTransitionError(err):
				atomic.AddInt32(&conflicts, 1)
			}
		}(int64(i + 1))
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(attempts-1), conflicts)
	assert.Equal(t, models.ContentStatusApproved, repo.status)
}

func TestUpdateDraft(t *testing.T) {
	t.Run("edits a draft", func(t *testing.T) {
		repo := new(mocks.ContentRepository)
		repo.On("GetByID", mock.Anything, int64(1), int64(10)).Return(item(models.ContentStatusDraft), nil)
		repo.On("UpdateDraft", mock.Anything, mock.MatchedBy(func(i *models.ContentItem) bool {
			return i.Title == "New title" && i.Body == "new body"
		})).Return(nil)
		service := NewContentService(repo, nil, zap.NewNop())

		title, body := "New title", "new body"
		got, err := service.UpdateDraft(context.Background(), 1, 10, UpdateInput{Title: &title, Body: &body})
		require.NoError(t, err)
		assert.Equal(t, "New title", got.Title)
	})

	t.Run("refuses non-drafts", func(t *testing.T) {
		repo := new(mocks.ContentRepository)
		repo.On("GetByID", mock.Anything, int64(1), int64(10)).Return(item(models.ContentStatusReview), nil)
		service := NewContentService(repo, nil, zap.NewNop())

		_, err := service.UpdateDraft(context.Background(), 1, 10, UpdateInput{})
		assert.True(t, services.IsConflictError(err))
		repo.AssertNotCalled(t, "UpdateDraft", mock.Anything, mock.Anything)
	})

	t.Run("loses race with submit", func(t *testing.T) {
		repo := new(mocks.ContentRepository)
		repo.On("GetByID", mock.Anything, int64(1), int64(10)).Return(item(models.ContentStatusDraft), nil).Once()
		repo.On("UpdateDraft", mock.Anything, mock.Anything).Return(repositories.ErrConditionFailed)
		repo.On("GetByID", mock.Anything, int64(1), int64(10)).Return(item(models.ContentStatusReview), nil).Once()
		service := NewContentService(repo, nil, zap.NewNop())

		_, err := service.UpdateDraft(context.Background(), 1, 10, UpdateInput{})
		require.Error(t, err)
		assert.True(t, services.IsConflictError(err))
		assert.Equal(t, models.ContentStatusReview, services.GetErrorDetails(err)["current"])
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(mocks.ContentRepository)
		repo.On("GetByID", mock.Anything, int64(1), int64(10)).Return(nil, repositories.ErrNotFound)
		service := NewContentService(repo, nil, zap.NewNop())

		_, err := service.UpdateDraft(context.Background(), 1, 10, UpdateInput{})
		assert.ErrorIs(t, err, services.ErrContentNotFound)
	})
}

func TestSchedule(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("future time on approved item", func(t *testing.T) {
		repo := new(mocks.ContentRepository)
		at := now.Add(time.Hour)
		scheduled := item(models.ContentStatusApproved)
		scheduled.ScheduledAt = &at
		repo.On("Schedule", mock.Anything, int64(1), int64(10), at).Return(scheduled, nil)
		service := NewContentService(repo, nil, zap.NewNop())
		service.now = func() time.Time { return now }

		got, err := service.Schedule(context.Background(), 1, 10, at)
		require.NoError(t, err)
		assert.Equal(t, at, *got.ScheduledAt)
	})

	t.Run("past time rejected", func(t *testing.T) {
		repo := new(mocks.ContentRepository)
		service := NewContentService(repo, nil, zap.NewNop())
		service.now = func() time.Time { return now }

		_, err := service.Schedule(context.Background(), 1, 10, now.Add(-time.Minute))
		assert.ErrorIs(t, err, services.ErrInvalidSchedule)
	})

	t.Run("not approved", func(t *testing.T) {
		repo := new(mocks.ContentRepository)
		repo.On("Schedule", mock.Anything, int64(1), int64(10), mock.Anything).Return(nil, repositories.ErrConditionFailed)
		repo.On("GetByID", mock.Anything, int64(1), int64(10)).Return(item(models.ContentStatusReview), nil)
		service := NewContentService(repo, nil, zap.NewNop())
		service.now = func() time.Time { return now }

		_, err := service.Schedule(context.Background(), 1, 10, now.Add(time.Hour))
		assert.True(t, services.IsInvalidStateTransitionError(err))
		assert.Equal(t, models.ContentStatusApproved, services.GetErrorDetails(err)["required"])
	})
}

func TestPublishDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := new(mocks.ContentRepository)
	due := []models.PublishedItem{{ID: 1, CampaignID: 2}}
	repo.On("PublishDue", mock.Anything, now).Return(due, nil)
	service := NewContentService(repo, nil, zap.NewNop())
	service.now = func() time.Time { return now }

	got, err := service.PublishDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, due, got)
}

func TestListAndDelete(t *testing.T) {
	repo := new(mocks.ContentRepository)
	status := models.ContentStatusReview
	repo.On("List", mock.Anything, int64(1), &status, 50, 0).Return([]*models.ContentItem{item(status)}, nil)
	repo.On("Delete", mock.Anything, int64(1), int64(99)).Return(repositories.ErrNotFound)
	service := NewContentService(repo, nil, zap.NewNop())

	items, err := service.List(context.Background(), 1, &status, 50, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	bogus := models.ContentStatus("archived")
	_, err = service.List(context.Background(), 1, &bogus, 50, 0)
	assert.True(t, services.IsValidationError(err))

	assert.ErrorIs(t, service.Delete(context.Background(), 1, 99), services.ErrContentNotFound)
}
