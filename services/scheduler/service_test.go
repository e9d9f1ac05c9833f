package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/campaign-hub/models"
	"github.com/upb/campaign-hub/telemetry"
	"go.uber.org/zap"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishDue(ctx context.Context) ([]models.PublishedItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PublishedItem), args.Error(1)
}

type MockPublishRecorder struct {
	mock.Mock
}

func (m *MockPublishRecorder) LogScheduledPublish(ctx context.Context, item models.PublishedItem) error {
	return m.Called(ctx, item).Error(0)
}

func TestRunOnce(t *testing.T) {
	publisher := new(MockPublisher)
	recorder := new(MockPublishRecorder)
	due := []models.PublishedItem{{ID: 1, CampaignID: 7}, {ID: 2, CampaignID: 7}}
	publisher.On("PublishDue", mock.Anything).Return(due, nil)
	recorder.On("LogScheduledPublish", mock.Anything, due[0]).Return(nil)
	recorder.On("LogScheduledPublish", mock.Anything, due[1]).Return(errors.New("buffer full"))

	before := testutil.ToFloat64(telemetry.ScheduledPublishesTotal)
	s := NewScheduler(publisher, recorder, "@every 1m", zap.NewNop())

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, before+2, testutil.ToFloat64(telemetry.ScheduledPublishesTotal))
	recorder.AssertExpectations(t)
}

func TestRunOnce_NothingDue(t *testing.T) {
	publisher := new(MockPublisher)
	recorder := new(MockPublishRecorder)
	publisher.On("PublishDue", mock.Anything).Return([]models.PublishedItem{}, nil)

	n, err := NewScheduler(publisher, recorder, "@every 1m", zap.NewNop()).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	recorder.AssertNotCalled(t, "LogScheduledPublish", mock.Anything, mock.Anything)
}

func TestRunOnce_Error(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("PublishDue", mock.Anything).Return(nil, errors.New("db down"))

	_, err := NewScheduler(publisher, nil, "@every 1m", zap.NewNop()).RunOnce(context.Background())
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	var calls int32
	publisher := new(MockPublisher)
	publisher.On("PublishDue", mock.Anything).
		Run(func(mock.Arguments) { atomic.AddInt32(&calls, 1) }).
		Return([]models.PublishedItem{}, nil)
	s := NewScheduler(publisher, nil, "@every 1s", zap.NewNop())

	require.NoError(t, s.Start())
	assert.Error(t, s.Start())

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) > 0
	}, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.NoError(t, s.Stop(ctx))
}

func TestStart_InvalidSpec(t *testing.T) {
	s := NewScheduler(new(MockPublisher), nil, "not a schedule", zap.NewNop())
	assert.Error(t, s.Start())
}
