package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mergington/activities/internal/domain"
	"github.com/mergington/activities/internal/metrics"
	"github.com/mergington/activities/internal/pkg/logger"
)

// DefaultWriteTimeout bounds a single sink write.
const DefaultWriteTimeout = 3 * time.Second

// Sink receives roster events.
type Sink interface {
	Name() string
	Write(ctx context.Context, evt domain.RosterEvent) error
}

// Dispatcher buffers roster events and delivers them to every sink in order.
type Dispatcher struct {
	sinks        []Sink
	queue        chan domain.RosterEvent
	recorder     *metrics.Recorder
	writeTimeout time.Duration

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup

	dropped   atomic.Uint64
	delivered atomic.Uint64
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRecorder counts drops and sink failures on rec.
func WithRecorder(rec *metrics.Recorder) DispatcherOption {
	return func(d *Dispatcher) { d.recorder = rec }
}

// WithWriteTimeout overrides DefaultWriteTimeout.
func WithWriteTimeout(t time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if t > 0 {
			d.writeTimeout = t
		}
	}
}

// NewDispatcher creates a dispatcher with a queue of bufferSize events.
func NewDispatcher(bufferSize int, sinks []Sink, opts ...DispatcherOption) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	d := &Dispatcher{
		sinks:        sinks,
		queue:        make(chan domain.RosterEvent, bufferSize),
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Publish queues evt for delivery. It never blocks: when the queue is full
// or the dispatcher is stopped the event is dropped.
func (d *Dispatcher) Publish(evt domain.RosterEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(evt, "dispatcher stopped")
		return
	}
	select {
	case d.queue <- evt:
	default:
		d.drop(evt, "queue full")
	}
}

// Start launches the delivery goroutine. ctx bounds sink writes; Stop is
// still required to drain and release the goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for evt := range d.queue {
			d.deliver(ctx, evt)
		}
	}()
}

// Stop closes the queue, waits for queued events to be delivered and
// returns. It is safe to call more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

// Dropped returns the number of events discarded so far.
func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }

// Delivered returns the number of events handed to every sink.
func (d *Dispatcher) Delivered() uint64 { return d.delivered.Load() }

func (d *Dispatcher) deliver(ctx context.Context, evt domain.RosterEvent) {
	for _, s := range d.sinks {
		wctx, cancel := context.WithTimeout(ctx, d.writeTimeout)
		err := s.Write(wctx, evt)
		cancel()
		if err != nil {
			logger.Warn("roster event sink write failed",
				"sink", s.Name(),
				"event_id", evt.ID,
				"activity", evt.Activity,
				"error", err,
			)
			if d.recorder != nil {
				d.recorder.SinkFailures.WithLabelValues(s.Name()).Inc()
			}
		}
	}
	d.delivered.Add(1)
}

func (d *Dispatcher) drop(evt domain.RosterEvent, reason string) {
	d.dropped.Add(1)
	if d.recorder != nil {
		d.recorder.EventsDropped.Inc()
	}
	logger.Warn("roster event dropped", "reason", reason, "event_id", evt.ID, "activity", evt.Activity)
}
