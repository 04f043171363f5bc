package engine

import "github.com/torvik/auragraph/alog"

// Dispatcher delivers callbacks enqueued from the render thread (onEnded,
// diagnostic events) on a dedicated goroutine, never inline on the
// render thread and never blocking it: Enqueue is a non-blocking send,
// dropping the callback (with a logged warning) if the queue is full
// rather than stalling the caller mid-quantum.
type Dispatcher struct {
	ch  chan func()
	log alog.Logger
}

// NewDispatcher starts the dispatcher's drain goroutine immediately.
// capacity bounds how many callbacks may be in flight before Enqueue
// starts dropping them.
func NewDispatcher(capacity int, log alog.Logger) *Dispatcher {
	if capacity <= 0 {
		capacity = 256
	}
	d := &Dispatcher{ch: make(chan func(), capacity), log: log}
	go d.run()
	return d
}

// Enqueue implements source.Dispatcher.
func (d *Dispatcher) Enqueue(fn func()) {
	select {
	case d.ch <- fn:
	default:
		d.log.Warn("dispatcher queue full, dropping callback")
	}
}

func (d *Dispatcher) run() {
	for fn := range d.ch {
		fn()
	}
}

// Close stops the drain goroutine once every already-enqueued callback
// has run. Must only be called once, after the render thread can no
// longer call Enqueue.
func (d *Dispatcher) Close() { close(d.ch) }
