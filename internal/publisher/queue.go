package publisher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Sink interface {
	Publish(ctx context.Context, event Event) error
}

type Options struct {
	QueueSize       int
	MaxRetries      uint64
	InitialInterval time.Duration
	// PublishTimeout bounds a single publish attempt.
	PublishTimeout time.Duration
}

// Queue decouples publishing from the move path: Enqueue never blocks and
// a single worker started by Run delivers events with bounded retries.
type Queue struct {
	logger  *slog.Logger
	sink    Sink
	options Options

	events chan Event
}

func NewQueue(logger *slog.Logger, sink Sink, options Options) *Queue {
	if options.QueueSize <= 0 {
		options.QueueSize = 1
	}

	if options.InitialInterval <= 0 {
		options.InitialInterval = 100 * time.Millisecond
	}

	if options.PublishTimeout <= 0 {
		options.PublishTimeout = 2 * time.Second
	}

	return &Queue{
		logger:  logger.With("component", "publisher"),
		sink:    sink,
		options: options,
		events:  make(chan Event, options.QueueSize),
	}
}

// Enqueue hands event to the worker. It reports false when the queue is full and the event was dropped.
func (that *Queue) Enqueue(event Event) bool {
	select {
	case that.events <- event:
		return true
	default:
		that.logger.Warn("publish queue is full, dropping event", "gameID", event.GameID, "seq", event.Seq)
		return false
	}
}

// Run delivers queued events until ctx is canceled.
func (that *Queue) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")
	log.Info("publisher started")

	for {
		select {
		case <-ctx.Done():
			log.Info("publisher stopped", "pending", len(that.events))
			return nil
		case event := <-that.events:
			that.deliver(ctx, event)
		}
	}
}

func (that *Queue) deliver(ctx context.Context, event Event) {
	log := that.logger.With("method", "deliver", "gameID", event.GameID, "seq", event.Seq)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = that.options.InitialInterval
	policy.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++

		publishCtx, cancel := context.WithTimeout(ctx, that.options.PublishTimeout)
		defer cancel()

		return that.sink.Publish(publishCtx, event)
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, that.options.MaxRetries), ctx))
	switch {
	case err == nil:
		log.Debug("event published", "attempts", attempt)
	case errors.Is(err, context.Canceled):
		log.Warn("publisher stopped before event was delivered", "attempts", attempt)
	default:
		log.Warn("dropping event after retries", "attempts", attempt, "error", err)
	}
}

// Enqueuer accepts events for asynchronous delivery.
type Enqueuer interface {
	Enqueue(event Event) bool
}

// Nop discards every event; used when publishing is disabled.
type Nop struct{}

func (Nop) Enqueue(Event) bool {
	return true
}
