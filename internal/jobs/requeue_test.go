package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStaleJobRequeuer struct {
	mock.Mock
}

func (m *MockStaleJobRequeuer) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func TestStaleJobProcessor_RequeuesWithConfiguredAge(t *testing.T) {
	ctx := context.Background()
	repo := new(MockStaleJobRequeuer)
	repo.On("RequeueStale", ctx, 10*time.Minute).Return(int64(3), nil)

	processor := NewStaleJobProcessor(repo, 10*time.Minute)

	require.NoError(t, processor.ProcessJobs(ctx))
	repo.AssertExpectations(t)
}

func TestStaleJobProcessor_PropagatesError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockStaleJobRequeuer)
	repo.On("RequeueStale", ctx, time.Minute).Return(int64(0), errors.New("connection refused"))

	processor := NewStaleJobProcessor(repo, time.Minute)

	err := processor.ProcessJobs(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to requeue stale jobs")
}

func TestStaleJobProcessor_RunsOnWorkerLoop(t *testing.T) {
	ctx := context.Background()
	repo := new(MockStaleJobRequeuer)
	repo.On("RequeueStale", ctx, time.Minute).Return(int64(0), nil)

	worker := NewWorker(NewStaleJobProcessor(repo, time.Minute), 10*time.Millisecond)
	go worker.Start(ctx)
	time.Sleep(35 * time.Millisecond)
	worker.Stop()

	calls := len(repo.Calls)
	assert.GreaterOrEqual(t, calls, 2)
}
