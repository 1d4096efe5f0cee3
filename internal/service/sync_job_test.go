package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/promptkeep/promptkeep/internal/logger"
	"github.com/promptkeep/promptkeep/models"
)

// stubSyncService counts FullSync invocations without a real engine.
type stubSyncService struct {
	calls atomic.Int64
	err   error
}

func (s *stubSyncService) FullSync(context.Context) (models.SyncReport, error) {
	s.calls.Add(1)
	return models.SyncReport{}, s.err
}

func (s *stubSyncService) Reset(context.Context) error { return nil }

func TestSyncJob_RunsPeriodically(t *testing.T) {
	stub := &stubSyncService{}
	job := NewSyncJob(stub, logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	defer job.Stop()

	assert.Eventually(t, func() bool {
		return stub.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestSyncJob_StopHaltsTicking(t *testing.T) {
	stub := &stubSyncService{}
	job := NewSyncJob(stub, logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return stub.calls.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	job.Stop()
	after := stub.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, stub.calls.Load())
}

func TestSyncJob_BusyEngineIsNotAnError(t *testing.T) {
	stub := &stubSyncService{err: ErrSyncInProgress}
	job := NewSyncJob(stub, logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	defer job.Stop()

	// The job keeps ticking through busy responses instead of dying.
	assert.Eventually(t, func() bool {
		return stub.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestSyncJob_StopWithoutStart(t *testing.T) {
	job := NewSyncJob(&stubSyncService{}, logger.Nop())
	assert.NotPanics(t, job.Stop)
}

func TestSyncJob_RestartReplacesPreviousRun(t *testing.T) {
	stub := &stubSyncService{}
	job := NewSyncJob(stub, logger.Nop())

	job.Start(context.Background(), time.Hour)
	job.Start(context.Background(), 10*time.Millisecond)
	defer job.Stop()

	assert.Eventually(t, func() bool {
		return stub.calls.Load() >= 1
	}, time.Second, 5*time.Millisecond)
}

func TestSyncJob_ParentContextCancellation(t *testing.T) {
	stub := &stubSyncService{}
	job := NewSyncJob(stub, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	job.Start(ctx, 10*time.Millisecond)
	cancel()

	time.Sleep(30 * time.Millisecond)
	after := stub.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, stub.calls.Load())

	job.Stop()
}
