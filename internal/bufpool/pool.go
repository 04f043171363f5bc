// Package bufpool caches reusable float32 scratch slices keyed by length,
// grounded on the teacher's own pool package (cache for signal pools
// shared across DSP components). The render lock must never allocate at
// steady state; components that need a transient scratch vector (a gain
// ramp, a mix-down buffer) borrow one here instead of calling make() in
// process().
package bufpool

import "sync"

var pools sync.Map // length (int) -> *sync.Pool

func poolFor(length int) *sync.Pool {
	if p, ok := pools.Load(length); ok {
		return p.(*sync.Pool)
	}
	p := &sync.Pool{
		New: func() interface{} {
			return make([]float32, length)
		},
	}
	actual, _ := pools.LoadOrStore(length, p)
	return actual.(*sync.Pool)
}

// Get returns a []float32 of exactly length, its contents undefined.
func Get(length int) []float32 {
	return poolFor(length).Get().([]float32)[:length]
}

// Put returns buf to the pool for its length. The caller must not use buf
// after calling Put.
func Put(buf []float32) {
	poolFor(len(buf)).Put(buf) //nolint:staticcheck // slice header copy is intentional pool reuse
}
