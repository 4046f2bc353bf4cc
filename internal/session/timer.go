package session

import (
	"sync"
	"time"
)

// Ticker is the part of *time.Ticker the rest timer needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// RestTimer counts down whole seconds on its own goroutine. Remaining never
// goes below zero; reaching zero clears the timer and calls onDone.
type RestTimer struct {
	mu        sync.Mutex
	remaining int
	active    bool
	cancel    chan struct{}
	done      chan struct{}

	newTicker TickerFactory
	onDone    func()
}

func NewRestTimer(factory TickerFactory, onDone func()) *RestTimer {
	if factory == nil {
		factory = NewRealTicker
	}
	return &RestTimer{newTicker: factory, onDone: onDone}
}

// Start begins a countdown of seconds, replacing any running one.
// A non-positive duration leaves the timer inactive.
func (r *RestTimer) Start(seconds int) {
	r.Stop()
	if seconds <= 0 {
		return
	}

	cancel := make(chan struct{})
	done := make(chan struct{})

	r.mu.Lock()
	r.remaining = seconds
	r.active = true
	r.cancel = cancel
	r.done = done
	ticker := r.newTicker(time.Second)
	r.mu.Unlock()

	go r.run(ticker, cancel, done)
}

// Stop clears the countdown and waits for its goroutine to exit. Safe to call repeatedly.
func (r *RestTimer) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.remaining = 0
	r.active = false
	r.mu.Unlock()

	if cancel != nil {
		close(cancel)
		<-done
	}
}

func (r *RestTimer) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

func (r *RestTimer) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *RestTimer) run(ticker Ticker, cancel, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C():
			r.mu.Lock()
			if r.cancel != cancel {
				// superseded by Stop or a new Start
				r.mu.Unlock()
				return
			}
			finished := false
			if r.remaining <= 1 {
				r.remaining = 0
				r.active = false
				finished = true
			} else {
				r.remaining--
			}
			r.mu.Unlock()

			if finished {
				if r.onDone != nil {
					r.onDone()
				}
				return
			}
		}
	}
}
