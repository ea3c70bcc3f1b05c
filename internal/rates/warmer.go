package rates

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Warmer periodically pre-fetches latest rates for a fixed set of popular
// base currencies, so the first caller after a cache expiry does not pay the
// upstream round trip. With no bases configured it stays inert.
type Warmer struct {
	service  *Service
	bases    []string
	interval time.Duration
	// -----
	sched gocron.Scheduler
}

func NewWarmer(service *Service, bases []string, interval time.Duration) *Warmer {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Warmer{service: service, bases: bases, interval: interval}
}

func (w *Warmer) Start(ctx context.Context) error {
	if len(w.bases) == 0 {
		return nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	w.sched = scheduler

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		w.warm(jobCtx, execID)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := w.Shutdown(); sdErr != nil {
			logrus.Errorf("Warmer shutdown error: %v", sdErr)
		}
	}()
	return nil
}

func (w *Warmer) warm(ctx context.Context, execID string) {
	for _, base := range w.bases {
		if ctx.Err() != nil {
			return
		}
		// Cache-aside does the work: a warm entry is a no-op, a cold one
		// gets fetched and stored for everybody else.
		if _, err := w.service.GetLatestRates(ctx, base); err != nil {
			logrus.Warnf("Warm-up for base '%s' failed, will retry next run; execID: %s; err: %v", base, execID, err)
		}
	}
	logrus.Debugf("Warm-up pass finished; execID: %s", execID)
}

func (w *Warmer) Shutdown() error {
	if w.sched == nil {
		return nil
	}
	err := w.sched.Shutdown()
	w.sched = nil
	return err
}
