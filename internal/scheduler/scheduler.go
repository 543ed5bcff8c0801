// Package scheduler drives periodic background refreshes for every owner
// with at least one subscription.
package scheduler

import (
	"context"
	"sync"
	"time"

	"lector/backend/internal/logger"
	"lector/backend/internal/repository"
	"lector/backend/internal/service"
)

type Scheduler struct {
	refresh  service.RefreshService
	feeds    repository.FeedRepository
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	cancel   context.CancelFunc // cancels the current refresh pass
	mu       sync.Mutex         // protects cancel
}

func New(refresh service.RefreshService, feeds repository.FeedRepository, interval time.Duration) *Scheduler {
	return &Scheduler{
		refresh:  refresh,
		feeds:    feeds,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("scheduler started", "interval_ms", s.interval.Milliseconds())
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	logger.Info("scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.refreshAll()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refreshAll()
		case <-s.stopCh:
			return
		}
	}
}

// refreshAll runs one refresh pass over every owner. The pass is bounded by
// the interval so a stuck pass cannot pile up behind the next tick.
func (s *Scheduler) refreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
	}()

	owners, err := s.feeds.ListOwners(ctx)
	if err != nil {
		logger.Error("scheduled refresh failed", "error", err)
		return
	}

	for _, owner := range owners {
		if ctx.Err() != nil {
			logger.Warn("scheduled refresh cancelled")
			return
		}

		summary, err := s.refresh.RefreshAll(ctx, owner)
		if err != nil {
			logger.Error("scheduled refresh failed", "owner", owner, "error", err)
			continue
		}
		logger.Info("scheduled refresh completed",
			"owner", owner,
			"feeds_ok", summary.SuccessCount,
			"feeds_failed", summary.ErrorCount,
			"new_items", summary.NewItemCount,
			"items_trimmed", summary.RetentionDeletedCount,
		)
	}
}
