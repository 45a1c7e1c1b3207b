// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweep interval bounds. The sweep only bounds growth of expired rows,
// so the exact cadence is not critical; anything in this range is sane.
const (
	DefaultSweepInterval = 120 * time.Second
	MinSweepInterval     = 60 * time.Second
	MaxSweepInterval     = 300 * time.Second
)

// Sweeper periodically deletes expired sessions from the durable store.
// It is a singleton background task, safe to run alongside ordinary
// session reads and writes, and cancellable at shutdown.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a Sweeper. Intervals outside the sane range are
// clamped rather than rejected.
func NewSweeper(manager *Manager, interval time.Duration) *Sweeper {
	if interval < MinSweepInterval {
		interval = MinSweepInterval
	}
	if interval > MaxSweepInterval {
		interval = MaxSweepInterval
	}
	return &Sweeper{
		manager:  manager,
		interval: interval,
		logger:   slog.Default(),
	}
}

// RunOnce executes a single sweep cycle.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	_, err := s.manager.SweepExpired(ctx)
	return err
}

// Start begins periodic sweeping in a background goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop cancels the sweeper and waits for the goroutine to exit.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run once immediately
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("session sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("session sweep failed", "error", err)
			}
		}
	}
}
