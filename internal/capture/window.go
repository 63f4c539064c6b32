package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pfrederiksen/timebox/internal/logger"
)

// DefaultArmTimeout is how long an armed window waits for a batch.
const DefaultArmTimeout = 10 * time.Second

var (
	ErrNotArmed = errors.New("capture: window was never armed")
	ErrExpired  = errors.New("capture: window expired before a batch arrived")
	ErrConsumed = errors.New("capture: batch already taken")
)

// State is the arming window's lifecycle position.
type State int

const (
	Idle State = iota
	Armed
	Consumed
	Expired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Consumed:
		return "consumed"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Window accepts at most one batch per arming. It is safe for concurrent
// use: offers arrive from transport goroutines and the timer fires on its
// own goroutine.
type Window struct {
	timeout time.Duration

	mu    sync.Mutex
	state State
	timer *time.Timer
	slot  chan Batch
}

// NewWindow creates an idle window. A non-positive timeout uses
// DefaultArmTimeout.
func NewWindow(timeout time.Duration) *Window {
	if timeout <= 0 {
		timeout = DefaultArmTimeout
	}
	return &Window{timeout: timeout}
}

// State returns the current state.
func (w *Window) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Arm opens a new window. Arming while already armed abandons the previous
// window, whose waiters see ErrExpired.
func (w *Window) Arm() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	if w.state == Armed {
		close(w.slot)
	}

	slot := make(chan Batch, 1)
	w.slot = slot
	w.state = Armed
	w.timer = time.AfterFunc(w.timeout, func() { w.expire(slot) })

	logger.Debug("capture: window armed", logger.Fields{"timeout": w.timeout.String()})
}

func (w *Window) expire(slot chan Batch) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.slot != slot || w.state != Armed {
		return
	}
	w.state = Expired
	w.timer = nil
	close(slot)

	logger.Info("capture: window expired", logger.Fields{"timeout": w.timeout.String()})
}

// Offer hands b to the window. It returns false, dropping b, unless the
// window is armed.
func (w *Window) Offer(b Batch) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != Armed {
		logger.Debug("capture: batch ignored", logger.Fields{
			"state":  w.state.String(),
			"source": string(b.Source),
		})
		return false
	}

	w.timer.Stop()
	w.timer = nil
	w.state = Consumed
	w.slot <- b
	close(w.slot)
	return true
}

// Await blocks until the current arming yields its batch, expires, or ctx
// is done.
func (w *Window) Await(ctx context.Context) (Batch, error) {
	w.mu.Lock()
	slot := w.slot
	w.mu.Unlock()

	if slot == nil {
		return Batch{}, ErrNotArmed
	}

	select {
	case b, ok := <-slot:
		if ok {
			return b, nil
		}
		if w.State() == Consumed {
			return Batch{}, ErrConsumed
		}
		return Batch{}, ErrExpired
	case <-ctx.Done():
		return Batch{}, ctx.Err()
	}
}
