package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/onlytoseef/earnshadowhub/internal/domain/submission"
	"github.com/onlytoseef/earnshadowhub/pkg/logger"
)

// Sweeper runs the background expiration pass over pending submissions.
// It is the time-driven half of the expiration model; the review queue
// triggers the same sweep on demand before listing.
type Sweeper struct {
	submissions submission.Service
	interval    time.Duration
	logger      *logger.Logger
	stop        chan struct{}
}

func NewSweeper(submissions submission.Service, interval time.Duration, logger *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{
		submissions: submissions,
		interval:    interval,
		logger:      logger,
		stop:        make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	// Run immediately at startup so a restart never leaves stale records
	// waiting a full interval.
	s.runSweep()

	s.logger.Info("Expiration sweeper initialized",
		zap.Duration("interval", s.interval),
	)

	go func() {
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

// Stop halts the background loop. A sweep already in flight completes.
func (s *Sweeper) Stop() {
	close(s.stop)
}

func (s *Sweeper) runSweep() {
	ctx := context.Background()
	startTime := time.Now()

	count, err := s.submissions.ExpireStale(ctx)
	if err != nil {
		s.logger.Error("Expiration sweep failed",
			zap.Error(err),
		)
		return
	}

	if count > 0 {
		s.logger.Info("Expiration sweep completed",
			zap.Int64("expired_count", count),
			zap.Duration("duration", time.Since(startTime)),
		)
	}
}
