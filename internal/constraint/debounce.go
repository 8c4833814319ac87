package constraint

import (
	"context"
	"sync"
	"time"
)

// debouncer runs the latest scheduled function after a quiet period. A new
// schedule or stop cancels the pending run, and deliver drops results of
// superseded runs.
type debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

// schedule arranges for fn to run after the delay with a context that is
// cancelled if the run is superseded. fn receives its generation for
// deliver.
func (d *debouncer) schedule(fn func(ctx context.Context, gen uint64)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.stopLocked()

	d.gen++
	gen := d.gen
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() { fn(ctx, gen) })
}

// deliver runs apply only if gen is still the latest run. It holds the
// debouncer lock so no schedule can interleave.
func (d *debouncer) deliver(gen uint64, apply func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || gen != d.gen {
		return
	}
	apply()
}

// invalidate cancels any pending run without scheduling a new one.
func (d *debouncer) invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
}

func (d *debouncer) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.closed = true
}

func (d *debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
