// Package retention runs the nightly housekeeping job: it compacts reaction
// rows of long-deleted messages, purges closed delivery records and repairs
// drifted message aggregates.
package retention

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	logger_lib "github.com/s21platform/logger-lib"
)

const retryAfterBadTick = 30 * time.Second

type Config struct {
	Cron       string
	DeletedTTL time.Duration
	AuditTTL   time.Duration
}

type Report struct {
	CompactedReactions int64
	PurgedDeliveries   int64
	RepairedMessages   int
}

type Job struct {
	store      Store
	reconciler Reconciler
	logger     logger_lib.LoggerInterface
	cfg        Config
	now        func() time.Time
}

type Option func(*Job)

func WithClock(now func() time.Time) Option {
	return func(j *Job) {
		j.now = now
	}
}

func New(cfg Config, store Store, reconciler Reconciler, logger logger_lib.LoggerInterface, opts ...Option) (*Job, error) {
	if cfg.Cron == "" {
		cfg.Cron = "0 3 * * *"
	}
	if !gronx.IsValid(cfg.Cron) {
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Cron)
	}
	if cfg.DeletedTTL <= 0 {
		cfg.DeletedTTL = 30 * 24 * time.Hour
	}
	if cfg.AuditTTL <= 0 {
		cfg.AuditTTL = 14 * 24 * time.Hour
	}

	j := &Job{
		store:      store,
		reconciler: reconciler,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// RunOnce performs one full pass. Every step runs even if an earlier one
// failed; the joined error reports all failures.
func (j *Job) RunOnce(ctx context.Context) (Report, error) {
	var (
		report Report
		errs   []error
		now    = j.now().UTC()
	)

	n, err := j.store.CompactDeletedReactions(ctx, now.Add(-j.cfg.DeletedTTL))
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to compact reactions: %w", err))
	}
	report.CompactedReactions = n

	n, err = j.store.PurgeDeliveryRecords(ctx, now.Add(-j.cfg.AuditTTL))
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to purge delivery records: %w", err))
	}
	report.PurgedDeliveries = n

	rooms, err := j.store.ListRoomIDs(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to list rooms: %w", err))
	}
	for _, roomID := range rooms {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		repaired, err := j.reconciler.Reconcile(ctx, roomID)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to reconcile room %s: %w", roomID, err))
			continue
		}
		report.RepairedMessages += repaired
	}

	return report, errors.Join(errs...)
}

// Run fires RunOnce on every cron tick until ctx is done. Runs never
// overlap.
func (j *Job) Run(ctx context.Context) {
	for {
		next, err := gronx.NextTickAfter(j.cfg.Cron, j.now().UTC(), false)
		wait := time.Until(next)
		if err != nil {
			j.logger.Error(fmt.Sprintf("failed to compute next retention tick: %v", err))
			wait = retryAfterBadTick
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if err != nil {
			continue
		}

		report, err := j.RunOnce(ctx)
		if err != nil {
			j.logger.Error(fmt.Sprintf("retention run failed: %v", err))
		}
		j.logger.Info(fmt.Sprintf("retention: compacted=%d purged=%d repaired=%d",
			report.CompactedReactions, report.PurgedDeliveries, report.RepairedMessages))
	}
}
