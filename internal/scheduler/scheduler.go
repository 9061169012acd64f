// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/invorahq/invora/internal/clock"
	invoicedomain "github.com/invorahq/invora/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const sweepInterval = time.Hour

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Invoices invoicedomain.Service
}

// Scheduler sweeps sent invoices past their due date to overdue.
type Scheduler struct {
	log      *zap.Logger
	clock    clock.Clock
	invoices invoicedomain.Service

	stop chan struct{}
	done chan struct{}
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:      p.Log.Named("scheduler"),
		clock:    p.Clock,
		invoices: p.Invoices,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.run()
	return nil
}

func (s *Scheduler) Stop(ctx context.Context) error {
	close(s.stop)
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (s *Scheduler) run() {
	defer close(s.done)

	// Sweep once on startup so a restart does not delay overdue marking
	// by a full interval.
	s.sweep()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.invoices.MarkOverdueDue(ctx, s.clock.Now()); err != nil {
		s.log.Error("overdue sweep failed", zap.Error(err))
	}
}

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(registerHooks),
)

func registerHooks(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}
