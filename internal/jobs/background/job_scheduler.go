package background

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dinedash/internal/logger"

	"github.com/go-co-op/gocron/v2"
)

// ReceiptConfirmer confirms receipt of orders that were delivered before a
// cutoff and reports how many it moved.
type ReceiptConfirmer interface {
	ConfirmDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// SchedulerConfig controls the periodic jobs.
type SchedulerConfig struct {
	// ConfirmAfter is the delay before a delivered order is confirmed
	// automatically. Zero disables the job.
	ConfirmAfter time.Duration
	Interval     time.Duration
	BatchSize    int
	RunTimeout   time.Duration
}

// JobScheduler manages background jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	confirmer ReceiptConfirmer
	cfg       SchedulerConfig
	log       *logger.Logger
	now       func() time.Time
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a new job scheduler and registers its jobs.
func NewJobScheduler(confirmer ReceiptConfirmer, cfg SchedulerConfig, log *logger.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 100
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = time.Minute
	}

	js := &JobScheduler{
		scheduler: scheduler,
		confirmer: confirmer,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
		jobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.log.Info(context.Background(), "scheduler.start", "starting background job scheduler",
		slog.Int("jobs", len(js.jobs)))
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler.
func (js *JobScheduler) Stop() error {
	js.log.Info(context.Background(), "scheduler.stop", "stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	if js.cfg.ConfirmAfter == 0 {
		js.log.Info(context.Background(), "scheduler.register", "receipt auto-confirmation disabled")
		return nil
	}

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(js.cfg.Interval),
		gocron.NewTask(js.confirmDeliveredOrders),
		gocron.WithName("receipt-auto-confirm"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("create receipt job: %w", err)
	}
	js.mu.Lock()
	js.jobs["receipt-auto-confirm"] = job
	js.mu.Unlock()
	return nil
}

// confirmDeliveredOrders moves orders that have sat in delivered longer than
// ConfirmAfter to received.
func (js *JobScheduler) confirmDeliveredOrders() error {
	ctx, cancel := context.WithTimeout(context.Background(), js.cfg.RunTimeout)
	defer cancel()

	cutoff := js.now().UTC().Add(-js.cfg.ConfirmAfter)
	confirmed, err := js.confirmer.ConfirmDeliveredBefore(ctx, cutoff, js.cfg.BatchSize)
	if err != nil {
		js.log.Error(ctx, "scheduler.receipt", "receipt auto-confirmation failed", err,
			slog.Int("confirmed", confirmed))
		return err
	}
	if confirmed > 0 {
		js.log.Info(ctx, "scheduler.receipt", "confirmed delivered orders",
			slog.Int("confirmed", confirmed), slog.Time("cutoff", cutoff))
	}
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       names,
	}
}
