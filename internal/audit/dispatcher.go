package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls event buffering.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher decouples auth operations from sink latency: Emit enqueues and
// returns, a single pump goroutine delivers events to the sink in order.
// A disabled config yields a nil Dispatcher; every method is safe on nil.
type Dispatcher struct {
	sink    Sink
	queue   chan Event
	quit    chan struct{}
	pumping sync.WaitGroup
	dropped atomic.Uint64
	stopped atomic.Bool
	once    sync.Once

	// block makes Emit wait for queue space instead of counting a drop.
	block bool
}

func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:  sink,
		queue: make(chan Event, size),
		quit:  make(chan struct{}),
		block: !cfg.DropIfFull,
	}
	d.pumping.Add(1)
	go d.pump()
	return d
}

func (d *Dispatcher) pump() {
	defer d.pumping.Done()
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			d.drain()
			return
		}
	}
}

// drain flushes whatever Emit managed to enqueue before Close.
func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit hands the event to the pump goroutine. With DropIfFull a full queue
// discards the event and counts it; otherwise Emit waits until there is room,
// the context ends, or the dispatcher closes.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.stopped.Load() {
		return
	}

	if !d.block {
		select {
		case d.queue <- event:
		case <-d.quit:
		default:
			d.dropped.Add(1)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// Close stops accepting events, flushes the queue, and waits for the pump to
// exit. Safe to call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.stopped.Store(true)
		close(d.quit)
		d.pumping.Wait()
	})
}

// Dropped reports how many events were discarded on a full queue.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
