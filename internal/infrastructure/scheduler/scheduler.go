package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/almanac-labs/almanac-api/pkg/logger"
	"go.uber.org/zap"
)

const defaultInterval = time.Hour

// Sweeper evaluates every active challenge and settles the expired ones.
type Sweeper interface {
	SweepExpired(ctx context.Context) (evaluated int, failed int, err error)
}

// Scheduler drives the expiration sweep on a fixed interval. A sweep that is
// still running when the next tick fires is not stacked; the tick is skipped.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *logger.Logger

	inProgress atomic.Bool
	stop       chan struct{}
	done       chan struct{}
}

func NewScheduler(sweeper Sweeper, interval time.Duration, logger *logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one sweep immediately, then ticks until Stop is called.
func (s *Scheduler) Start() {
	s.logger.Info("expiration sweeper started",
		zap.Duration("interval", s.interval))

	s.runSweep()

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runSweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the tick loop and waits for it to exit. A sweep already in
// flight finishes on its own goroutine.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
	s.logger.Info("expiration sweeper stopped")
}

func (s *Scheduler) runSweep() {
	if !s.inProgress.CompareAndSwap(false, true) {
		s.logger.Warn("previous sweep still running, skipping tick")
		return
	}
	defer s.inProgress.Store(false)

	start := time.Now()
	evaluated, failed, err := s.sweeper.SweepExpired(context.Background())
	if err != nil {
		s.logger.Error("expiration sweep failed", zap.Error(err))
		return
	}

	s.logger.Info("expiration sweep finished",
		zap.Int("evaluated", evaluated),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
}
