package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vidvault/streaming-api/internal/api/metrics"
	"github.com/vidvault/streaming-api/internal/core/domain"
	"github.com/vidvault/streaming-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	defaultBuffer  = 256
)

// AuditDispatcher persists admission events off the request path. Events are
// sharded to a fixed set of workers by fingerprint, so the audit trail of a
// single device stays in decision order.
type AuditDispatcher struct {
	workers []chan domain.AdmissionEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers
// and per-worker buffers of queueSize. Non-positive values fall back to
// defaults.
func NewAuditDispatcher(numWorkers, queueSize int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultBuffer
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.AdmissionEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AdmissionEvent, queueSize)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their channels until
// Stop closes them; ctx bounds the individual writes.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Stop closes the worker channels and blocks until buffered events are
// flushed.
func (d *AuditDispatcher) Stop() {
	for _, ch := range d.workers {
		close(ch)
	}
	d.wg.Wait()
}

// Record enqueues one admission event. When the shard's buffer is full the
// event is dropped rather than stalling the admission check.
func (d *AuditDispatcher) Record(event domain.AdmissionEvent) {
	idx := d.shardIndex(event.Fingerprint)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditFailuresTotal.Inc()
		d.log.Warn().
			Str("user_id", event.UserID).
			Str("outcome", event.Outcome).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// shardIndex maps a fingerprint deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(fingerprint string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fingerprint))
	return int(h.Sum32()) % len(d.workers)
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AdmissionEvent) {
	defer d.wg.Done()
	worker := strconv.Itoa(id)
	for event := range ch {
		metrics.AuditQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
		if err := d.repo.InsertAdmissionEvent(ctx, &event); err != nil {
			metrics.AuditFailuresTotal.Inc()
			d.log.Error().Err(err).
				Str("user_id", event.UserID).
				Str("outcome", event.Outcome).
				Int("worker_id", id).
				Msg("admission event persist failed")
		}
	}
}
