package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/roulettedraft/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Store is the slice of the draft repository the relay reads from.
type Store interface {
	FetchUnsentOutbox(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkOutboxSent(ctx context.Context, id uuid.UUID) error
}

// MetricsCollector records relay activity. A *metrics.Metrics satisfies it.
type MetricsCollector interface {
	RecordEventProcessed(eventType string, success bool, duration time.Duration)
	RecordBatchProcessed(count int, duration time.Duration)
	RecordPublishAttempt(eventType string, attempt int, success bool)
}

type noopMetrics struct{}

func (noopMetrics) RecordEventProcessed(string, bool, time.Duration) {}
func (noopMetrics) RecordBatchProcessed(int, time.Duration)          {}
func (noopMetrics) RecordPublishAttempt(string, int, bool)           {}

type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxRetries   int
	RetryDelay   time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		BatchSize:    100,
		MaxRetries:   3,
		RetryDelay:   200 * time.Millisecond,
	}
}

// Relay moves unsent outbox rows to a Publisher and marks them sent. It runs on a poll
// interval and whenever Wake is called.
type Relay struct {
	store     Store
	publisher Publisher
	metrics   MetricsCollector
	clock     clockwork.Clock
	cfg       Config
	wake      chan struct{}
}

func NewRelay(store Store, publisher Publisher, m MetricsCollector, cfg Config) *Relay {
	return NewRelayWithClock(store, publisher, m, cfg, clockwork.NewRealClock())
}

func NewRelayWithClock(store Store, publisher Publisher, m MetricsCollector, cfg Config, clock clockwork.Clock) *Relay {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if m == nil {
		m = noopMetrics{}
	}
	return &Relay{
		store:     store,
		publisher: publisher,
		metrics:   m,
		clock:     clock,
		cfg:       cfg,
		wake:      make(chan struct{}, 1),
	}
}

// Wake schedules a relay pass without waiting for the next poll.
func (r *Relay) Wake() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run drains the outbox until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	log.Info().
		Dur("poll_interval", r.cfg.PollInterval).
		Int("batch_size", r.cfg.BatchSize).
		Msg("outbox relay started")

	ticker := r.clock.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	r.drain(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("outbox relay stopped")
			return nil
		case <-ticker.Chan():
			r.drain(ctx)
		case <-r.wake:
			r.drain(ctx)
		}
	}
}

// drain processes batches back to back while every row of a full batch is published. A batch
// with any failure ends the pass; the failed rows wait for the next poll or wake.
func (r *Relay) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := r.ProcessBatch(ctx)
		if err != nil {
			log.Error().Err(err).Msg("outbox relay pass failed")
			return
		}
		if n < r.cfg.BatchSize {
			return
		}
	}
}

// ProcessBatch publishes one batch of unsent events and returns how many were published and
// marked sent. Events that fail to publish stay unsent for a later pass.
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	start := r.clock.Now()

	unsent, err := r.store.FetchUnsentOutbox(ctx, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	if len(unsent) == 0 {
		return 0, nil
	}

	published := 0
	for _, event := range unsent {
		eventStart := r.clock.Now()
		err := r.publishWithRetry(ctx, event)
		r.metrics.RecordEventProcessed(event.EventType, err == nil, r.clock.Since(eventStart))
		if err != nil {
			log.Error().Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Msg("failed to publish outbox event")
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if err := r.store.MarkOutboxSent(ctx, event.ID); err != nil {
			log.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to mark outbox event as sent")
			continue
		}
		published++
	}

	r.metrics.RecordBatchProcessed(len(unsent), r.clock.Since(start))
	log.Debug().
		Int("fetched", len(unsent)).
		Int("published", published).
		Msg("outbox batch processed")

	return published, nil
}

// publishWithRetry retries with a linearly growing delay.
func (r *Relay) publishWithRetry(ctx context.Context, event models.OutboxEvent) error {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.clock.After(r.cfg.RetryDelay * time.Duration(attempt)):
			}
		}

		err := r.publisher.Publish(ctx, event)
		r.metrics.RecordPublishAttempt(event.EventType, attempt+1, err == nil)
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn().Err(err).
			Str("event_id", event.ID.String()).
			Int("attempt", attempt+1).
			Msg("outbox publish attempt failed")
	}
	return fmt.Errorf("publish failed after %d attempts: %w", r.cfg.MaxRetries+1, lastErr)
}
