// Package worker hosts background loops that run beside the HTTP server.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/versoindustries/verso-backend-sub001/pkg/jobs"
)

type waitlistProcessor interface {
	Process(ctx context.Context, appointmentTypeID string) error
}

type activeTypeLister interface {
	ListActiveIDs(ctx context.Context) ([]string, error)
}

// WaitlistSweeperConfig tunes the sweep cadence and its worker pool.
type WaitlistSweeperConfig struct {
	Interval   time.Duration
	Workers    int
	BufferSize int
}

// WaitlistSweeper periodically expires lapsed waitlist offers and re-offers
// the freed capacity. Each tick fans one job per active appointment type onto
// an in-memory queue so a slow type cannot stall the others.
type WaitlistSweeper struct {
	waitlist waitlistProcessor
	types    activeTypeLister
	interval time.Duration
	queue    *jobs.Queue
	logger   *zap.Logger
	done     chan struct{}
}

// NewWaitlistSweeper instantiates WaitlistSweeper.
func NewWaitlistSweeper(waitlist waitlistProcessor, types activeTypeLister, cfg WaitlistSweeperConfig, logger *zap.Logger) *WaitlistSweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &WaitlistSweeper{
		waitlist: waitlist,
		types:    types,
		interval: cfg.Interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
	s.queue = jobs.NewQueue("waitlist-sweep", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return s
}

// Start launches the sweep loop. Returns immediately; call Stop to shut down.
func (s *WaitlistSweeper) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.loop(ctx)
}

// Stop halts the loop and drains the queue workers.
func (s *WaitlistSweeper) Stop() {
	<-s.done
	s.queue.Stop()
}

func (s *WaitlistSweeper) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *WaitlistSweeper) sweep(ctx context.Context) {
	ids, err := s.types.ListActiveIDs(ctx)
	if err != nil {
		s.logger.Error("waitlist sweep failed to list appointment types", zap.Error(err))
		return
	}
	for _, id := range ids {
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    "waitlist-sweep",
			Payload: id,
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue waitlist sweep",
				zap.String("appointment_type_id", id),
				zap.Error(err))
		}
	}
}

func (s *WaitlistSweeper) handle(ctx context.Context, job jobs.Job) error {
	typeID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected sweep payload %T", job.Payload)
	}
	return s.waitlist.Process(ctx, typeID)
}
