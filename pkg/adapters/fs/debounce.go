package fs

import (
	"sync"
	"time"

	"github.com/aretw0/quire/pkg/core"
)

// debouncer coalesces bursts of events per key. An atomic replace usually
// produces CREATE+RENAME or several WRITEs; only the last one is delivered.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]core.Event
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]core.Event),
	}
}

// add schedules emit for e after the delay, replacing any event still
// pending for the same key.
func (d *debouncer) add(e core.Event, emit func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending[e.Key] = e
	if t, ok := d.timers[e.Key]; ok {
		if t.Stop() {
			// The stopped callback will never run; release its slot.
			d.wg.Done()
		}
	}

	d.wg.Add(1)
	d.timers[e.Key] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		ev, ok := d.pending[e.Key]
		delete(d.pending, e.Key)
		delete(d.timers, e.Key)
		stopped := d.stopped
		d.mu.Unlock()

		if ok && !stopped {
			emit(ev)
		}
	})
}

// stopAndWait drops pending events and waits up to timeout for callbacks
// that already started.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	clear(d.pending)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}
}
