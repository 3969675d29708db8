// Package delivery keeps durable obligations to notify offline recipients and
// works them off with bounded retry.
package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/group-chat-service/internal/model"
)

type Config struct {
	MaxAttempts int
	Backoff     []time.Duration
	BatchSize   int
	ExpireAfter time.Duration
}

type Queue struct {
	store    Store
	presence Presence
	lastSeen LastSeen
	notifier Notifier
	metrics  Metrics
	logger   logger_lib.LoggerInterface
	cfg      Config
	now      func() time.Time
}

type Option func(*Queue)

func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		q.now = now
	}
}

func WithLastSeen(ls LastSeen) Option {
	return func(q *Queue) {
		q.lastSeen = ls
	}
}

func WithMetrics(m Metrics) Option {
	return func(q *Queue) {
		q.metrics = m
	}
}

func New(cfg Config, store Store, presence Presence, notifier Notifier, logger logger_lib.LoggerInterface, opts ...Option) *Queue {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if len(cfg.Backoff) == 0 {
		cfg.Backoff = []time.Duration{time.Minute, 5 * time.Minute, 30 * time.Minute}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.ExpireAfter <= 0 {
		cfg.ExpireAfter = 24 * time.Hour
	}
	q := &Queue{
		store:    store,
		presence: presence,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue records that recipientID missed the referenced event. The first
// attempt is due immediately; the sweep decides whether it is still needed.
func (q *Queue) Enqueue(ctx context.Context, recipientID string, payload model.DeliveryPayload, priority model.Priority) error {
	now := q.now().UTC()
	rec := &model.DeliveryRecord{
		ID:              uuid.New(),
		RecipientID:     recipientID,
		DeliveryPayload: payload,
		Priority:        priority,
		NextAttemptAt:   now,
		Status:          model.DeliveryPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := q.store.CreateDeliveryRecord(ctx, rec); err != nil {
		return fmt.Errorf("failed to create delivery record: %w", err)
	}
	return nil
}

type SweepResult struct {
	Satisfied int
	Expired   int
	Delivered int
	Retried   int
	Abandoned int
}

// Sweep works off due records, highest priority first. Records whose
// recipient reconnected since they were made are closed without a push,
// records for deleted or stale messages expire, and the rest are batched
// into one notification per recipient.
func (q *Queue) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := q.now().UTC()

	due, err := q.store.DueDeliveryRecords(ctx, now, q.cfg.BatchSize)
	if err != nil {
		return res, fmt.Errorf("failed to load due deliveries: %w", err)
	}
	if len(due) == 0 {
		return res, nil
	}

	messageIDs := make([]uuid.UUID, 0, len(due))
	for _, rec := range due {
		messageIDs = append(messageIDs, rec.MessageID)
	}
	messages, err := q.store.GetMessagesByIDs(ctx, messageIDs)
	if err != nil {
		return res, fmt.Errorf("failed to load delivery messages: %w", err)
	}

	var (
		satisfied []uuid.UUID
		expired   []uuid.UUID
		order     []string
		batches   = make(map[string][]model.DeliveryRecord)
	)
	for _, rec := range due {
		msg, ok := messages[rec.MessageID]
		switch {
		case !ok || msg.IsDeleted():
			expired = append(expired, rec.ID)
		case now.Sub(rec.CreatedAt) > q.cfg.ExpireAfter:
			expired = append(expired, rec.ID)
		case q.reconnected(ctx, rec):
			satisfied = append(satisfied, rec.ID)
		default:
			if _, seen := batches[rec.RecipientID]; !seen {
				order = append(order, rec.RecipientID)
			}
			batches[rec.RecipientID] = append(batches[rec.RecipientID], rec)
		}
	}

	if err := q.close(ctx, satisfied, model.DeliveryDelivered, now); err != nil {
		return res, err
	}
	res.Satisfied = len(satisfied)
	if err := q.close(ctx, expired, model.DeliveryExpired, now); err != nil {
		return res, err
	}
	res.Expired = len(expired)

	for _, recipientID := range order {
		recs := batches[recipientID]
		n := notification(recipientID, recs, messages)

		if pushErr := q.notifier.Push(ctx, n); pushErr != nil {
			q.logger.Warn(fmt.Sprintf("failed to notify %s about %d events: %v", recipientID, len(recs), pushErr))
			retried, abandoned := q.retry(ctx, recs, pushErr, now)
			res.Retried += retried
			res.Abandoned += abandoned
			continue
		}

		ids := make([]uuid.UUID, 0, len(recs))
		for _, rec := range recs {
			ids = append(ids, rec.ID)
		}
		if err := q.close(ctx, ids, model.DeliveryDelivered, now); err != nil {
			q.logger.Error(fmt.Sprintf("notified %s but failed to close records: %v", recipientID, err))
			continue
		}
		res.Delivered += len(ids)
	}

	if q.metrics != nil {
		q.metrics.AddDeliveries(model.DeliveryDelivered, res.Delivered+res.Satisfied)
		q.metrics.AddDeliveries(model.DeliveryExpired, res.Expired)
		q.metrics.AddDeliveries(model.DeliveryAbandoned, res.Abandoned)
	}
	return res, nil
}

func (q *Queue) close(ctx context.Context, ids []uuid.UUID, status model.DeliveryStatus, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if err := q.store.MarkDeliveries(ctx, ids, status, at); err != nil {
		return fmt.Errorf("failed to mark %d deliveries %s: %w", len(ids), status, err)
	}
	return nil
}

// retry bumps the attempt count of each record and either reschedules it on
// the backoff schedule or abandons it at the attempt cap.
func (q *Queue) retry(ctx context.Context, recs []model.DeliveryRecord, cause error, now time.Time) (retried, abandoned int) {
	reason := cause.Error()
	for _, rec := range recs {
		attempts := rec.Attempts + 1
		if attempts >= q.cfg.MaxAttempts {
			if err := q.store.AbandonDelivery(ctx, rec.ID, attempts, reason, now); err != nil {
				q.logger.Error(fmt.Sprintf("failed to abandon delivery %s: %v", rec.ID, err))
				continue
			}
			q.logger.Error(fmt.Sprintf("abandoned delivery %s to %s after %d attempts: %s", rec.ID, rec.RecipientID, attempts, reason))
			abandoned++
			continue
		}

		next := now.Add(q.backoff(attempts))
		if err := q.store.RescheduleDelivery(ctx, rec.ID, attempts, next, reason); err != nil {
			q.logger.Error(fmt.Sprintf("failed to reschedule delivery %s: %v", rec.ID, err))
			continue
		}
		retried++
	}
	return retried, abandoned
}

func (q *Queue) backoff(attempts int) time.Duration {
	i := attempts - 1
	if i >= len(q.cfg.Backoff) {
		i = len(q.cfg.Backoff) - 1
	}
	return q.cfg.Backoff[i]
}

func (q *Queue) reconnected(ctx context.Context, rec model.DeliveryRecord) bool {
	if q.presence != nil {
		if q.presence.IsOnline(rec.RecipientID) {
			return true
		}
		if at, ok := q.presence.LastConnectedAt(rec.RecipientID); ok && at.After(rec.CreatedAt) {
			return true
		}
	}
	if q.lastSeen != nil {
		at, ok, err := q.lastSeen.LastSeen(ctx, rec.RecipientID)
		if err != nil {
			q.logger.Warn(fmt.Sprintf("failed to read last seen of %s: %v", rec.RecipientID, err))
			return false
		}
		if ok && at.After(rec.CreatedAt) {
			return true
		}
	}
	return false
}

func notification(recipientID string, recs []model.DeliveryRecord, messages map[uuid.UUID]model.Message) model.Notification {
	n := model.Notification{
		RecipientID: recipientID,
		Priority:    model.PriorityNormal.String(),
		Items:       make([]model.NotificationItem, 0, len(recs)),
	}
	for _, rec := range recs {
		if rec.Priority >= model.PriorityHigh {
			n.Priority = model.PriorityHigh.String()
		}
		msg := messages[rec.MessageID]
		n.Items = append(n.Items, model.NotificationItem{
			RoomID:    rec.RoomID,
			MessageID: rec.MessageID,
			Kind:      rec.EventKind,
			AuthorID:  msg.AuthorID,
			Preview:   msg.Preview(),
			SentAt:    msg.CreatedAt,
		})
	}
	return n
}

// Depth is the number of records still waiting for delivery.
func (q *Queue) Depth(ctx context.Context) (int, error) {
	n, err := q.store.PendingDeliveryCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending deliveries: %w", err)
	}
	if q.metrics != nil {
		q.metrics.SetQueueDepth(n)
	}
	return n, nil
}

// Run sweeps every interval until ctx is done.
func (q *Queue) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := q.Sweep(ctx)
			if err != nil {
				q.logger.Error(fmt.Sprintf("delivery sweep failed: %v", err))
				continue
			}
			if res != (SweepResult{}) {
				q.logger.Info(fmt.Sprintf("delivery sweep: delivered=%d satisfied=%d expired=%d retried=%d abandoned=%d",
					res.Delivered, res.Satisfied, res.Expired, res.Retried, res.Abandoned))
			}
			if _, err := q.Depth(ctx); err != nil {
				q.logger.Warn(err.Error())
			}
		}
	}
}
