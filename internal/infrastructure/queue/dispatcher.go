package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/api/metrics"
	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes guide events to a fixed set of workers using consistent
// hashing on the guide id, so the revisions of one guide are archived in
// order. Each worker mirrors the guide into the archive and then publishes
// the event.
type Dispatcher struct {
	workers   []chan domain.GuideEvent
	archive   ports.GuideArchive
	publisher ports.EventPublisher
	log       zerolog.Logger
	wg        sync.WaitGroup

	mu     sync.RWMutex
	closed bool
	cancel context.CancelFunc
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. archive may be nil.
func NewDispatcher(numWorkers int, archive ports.GuideArchive, publisher ports.EventPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.GuideEvent, numWorkers),
		archive:   archive,
		publisher: publisher,
		log:       log.With().Str("component", "dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.GuideEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// dropping whatever is still queued. Use Shutdown to drain instead.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown stops accepting events and waits for the workers to process what
// is already queued. If ctx ends first the workers are cancelled and the
// remaining events are dropped.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if d.cancel != nil {
			d.cancel()
		}
		<-done
		return ctx.Err()
	}
}

// Enqueue hands the event to the worker responsible for its guide. When
// that worker's buffer is full, or the dispatcher is shut down, the event is
// dropped and logged.
func (d *Dispatcher) Enqueue(event domain.GuideEvent) {
	idx := d.shardIndex(event.Guide.ID)
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("guide_id", event.Guide.ID).Str("subject", event.Subject).Msg("dispatcher shut down, event dropped")
		return
	}
	select {
	case d.workers[idx] <- event:
		metrics.ArchiveQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().
			Str("guide_id", event.Guide.ID).
			Str("subject", event.Subject).
			Int("worker_id", idx).
			Msg("archive queue full, event dropped")
	}
}

// shardIndex maps a guide id deterministically to a worker index.
func (d *Dispatcher) shardIndex(guideID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(guideID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.GuideEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.ArchiveQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, event)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, event domain.GuideEvent) {
	if d.archive != nil {
		if err := d.archive.Upsert(ctx, &event.Guide, event.Request); err != nil {
			d.log.Error().Err(err).
				Str("guide_id", event.Guide.ID).
				Int("worker_id", id).
				Msg("guide archive failed")
		}
	}
	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, event.Subject, event); err != nil {
			d.log.Error().Err(err).
				Str("guide_id", event.Guide.ID).
				Str("subject", event.Subject).
				Int("worker_id", id).
				Msg("event publish failed")
		}
	}
}
