package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/promptkeep/promptkeep/internal/logger"
)

// SyncJob periodically invokes FullSync in the background. The engine itself
// contains no timer logic; this is the external caller that drives it.
type SyncJob interface {
	// Start launches the background goroutine, syncing every interval
	// (default 5 minutes when interval <= 0). A previously running job is
	// stopped first.
	Start(ctx context.Context, interval time.Duration)

	// Stop cancels the goroutine and blocks until it has exited. Safe to
	// call when not running.
	Stop()
}

type syncJob struct {
	syncService SyncService
	log         *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a job that calls syncService.FullSync on a ticker. Idle
// until Start is called.
func NewSyncJob(syncService SyncService, log *logger.Logger) SyncJob {
	return &syncJob{syncService: syncService, log: log}
}

func (j *syncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				_, err := j.syncService.FullSync(jobCtx)
				switch {
				case err == nil:
				case errors.Is(err, ErrSyncInProgress):
					// A manual sync is running; this tick is redundant.
				default:
					j.log.Warn().Err(err).Msg("periodic sync failed")
				}
			}
		}
	}()
}

func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
