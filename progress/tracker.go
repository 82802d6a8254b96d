// Package progress simulates coarse OCR progress where the engine exposes no
// real callbacks: a periodic counter advances toward but never reaches 100
// until the true response arrives, then snaps to it.
package progress

import (
	"sync"
	"time"
)

// simulatedCap is the highest percentage the ticker may reach on its own.
const simulatedCap = 95

// Tracker reports a percentage in [0,100]. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	percent int
	ticker  *time.Ticker
	done    chan struct{}
	gen     uint64
	running bool
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Start resets the percentage and begins advancing it by step every
// interval, capped below completion. A previous run is stopped first.
func (t *Tracker) Start(interval time.Duration, step int) {
	t.Stop()

	t.mu.Lock()
	t.percent = 0
	t.ticker = time.NewTicker(interval)
	t.done = make(chan struct{})
	t.gen++
	t.running = true
	ticker, done, gen := t.ticker, t.done, t.gen
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				t.advance(step, gen)
			case <-done:
				return
			}
		}
	}()
}

// advance is a no-op once its run has been stopped: a tick dequeued just
// before Stop must not cap the percentage back after Complete snapped it to
// 100, nor bleed into a later run.
func (t *Tracker) advance(step int, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || gen != t.gen {
		return
	}

	t.percent += step
	if t.percent > simulatedCap {
		t.percent = simulatedCap
	}
}

// Complete stops the ticker and snaps the percentage to 100.
func (t *Tracker) Complete() {
	t.Stop()

	t.mu.Lock()
	t.percent = 100
	t.mu.Unlock()
}

// Fail stops the ticker and resets the percentage.
func (t *Tracker) Fail() {
	t.Stop()

	t.mu.Lock()
	t.percent = 0
	t.mu.Unlock()
}

// Stop cancels the ticker without touching the percentage. Idempotent.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = false
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
	if t.done != nil {
		close(t.done)
		t.done = nil
	}
}

// Percent returns the current percentage.
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.percent
}
