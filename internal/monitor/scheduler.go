package monitor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// shutdownGrace is how long an in-flight tick may keep running after the
// process was asked to stop.
const shutdownGrace = 30 * time.Second

// State is the scheduler's observable lifecycle phase.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateSleeping
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSleeping:
		return "sleeping"
	case StateStopping:
		return "stopping"
	}
	return "unknown"
}

// Scheduler repeats a tick on a fixed period. Ticks never overlap: the
// sleep starts only after the previous tick returned. Tick errors are
// logged and the loop continues; daemon mode rides out bad ticks.
type Scheduler struct {
	period time.Duration
	grace  time.Duration
	tick   func(context.Context) error
	state  atomic.Int32
	log    *slog.Logger
}

// NewScheduler builds a scheduler around tick.
func NewScheduler(period time.Duration, tick func(context.Context) error) *Scheduler {
	return &Scheduler{
		period: period,
		grace:  shutdownGrace,
		tick:   tick,
		log:    slog.Default(),
	}
}

// State reports the current phase.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Run drives the tick loop until ctx is canceled. Cancellation during the
// sleep takes effect immediately. A tick already in flight runs on a
// detached context that is cut off after the shutdown grace, so one slow
// fetch cannot hold the process hostage.
func (s *Scheduler) Run(ctx context.Context) {
	tickCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := context.AfterFunc(ctx, func() {
		time.AfterFunc(s.grace, cancel)
	})
	defer stop()

	for {
		if ctx.Err() != nil {
			s.state.Store(int32(StateStopping))
			s.log.Info("scheduler stopped")
			return
		}

		s.state.Store(int32(StateRunning))
		if err := s.tick(tickCtx); err != nil {
			s.log.Error("tick failed", "error", err)
		}

		s.state.Store(int32(StateSleeping))
		timer := time.NewTimer(s.period)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.state.Store(int32(StateStopping))
			s.log.Info("scheduler stopped")
			return
		case <-timer.C:
		}
	}
}
