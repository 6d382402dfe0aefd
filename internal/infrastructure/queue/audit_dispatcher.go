package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/oxygeni/oxyrecover/internal/api/metrics"
	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// AuditDispatcher is the asynchronous ports.AuditSink. Events are routed to a
// fixed set of workers using consistent hashing on the correlation ID, so the
// entries of one recovery attempt are persisted in the order they happened.
type AuditDispatcher struct {
	workers []chan domain.AuditEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewAuditDispatcher creates an AuditDispatcher with numWorkers sharded
// workers. If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues the event for persistence. It never blocks the caller: when
// a worker channel is full the event is dropped and counted as failed.
func (d *AuditDispatcher) Record(event domain.AuditEvent) {
	idx := d.shardIndex(event.CorrelationID)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		d.log.Warn().
			Str("event", event.Event).
			Str("correlation_id", event.CorrelationID).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a correlation ID deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(correlationID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(correlationID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			entry := &domain.AuditEntry{AuditEvent: event}
			if err := d.repo.Insert(ctx, entry); err != nil {
				metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("event", event.Event).
					Str("correlation_id", event.CorrelationID).
					Int("worker_id", id).
					Msg("audit persistence failed")
				continue
			}
			metrics.AuditEventsTotal.WithLabelValues("persisted").Inc()
		}
	}
}
