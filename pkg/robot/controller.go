package robot

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/teslashibe/go-nidhogg/internal/log"
	"github.com/teslashibe/go-nidhogg/pkg/nao"
)

// ErrTooManyErrors is returned by Loop.Run when MaxConsecutiveErrors ticks
// failed in a row.
var ErrTooManyErrors = errors.New("robot: too many consecutive errors")

// Handler turns the latest state into the next control message. Returning
// false skips the send for this tick.
type Handler func(state nao.State) (nao.ControlMessage, bool)

// LoopStats are the loop's diagnostic counters.
type LoopStats struct {
	Ticks   uint64 `json:"ticks"`
	Sent    uint64 `json:"sent"`
	Skipped uint64 `json:"skipped"`
	Errors  uint64 `json:"errors"`
}

// Loop runs read -> handle -> send cycles against a Backend.
//
// With a zero rate the loop runs as fast as ReadState returns, which on the
// real robot is paced by the controller's own frame rate. With a positive
// rate each cycle starts on a ticker.
type Loop struct {
	backend Backend
	handler Handler
	rate    time.Duration

	// MaxConsecutiveErrors stops Run after this many failed ticks in a row.
	// Zero means never.
	MaxConsecutiveErrors int

	stop     chan struct{}
	stopOnce sync.Once

	mu            sync.RWMutex
	stats         LoopStats
	last          nao.State
	consecutive   int
	lastErr       error
	lastErrorTime time.Time
}

// NewLoop creates a loop. Call Run to start it.
func NewLoop(backend Backend, handler Handler, rate time.Duration) *Loop {
	return &Loop{
		backend: backend,
		handler: handler,
		rate:    rate,
		stop:    make(chan struct{}),
	}
}

// Run blocks until Stop is called or MaxConsecutiveErrors is reached.
func (l *Loop) Run() error {
	var tick <-chan time.Time
	if l.rate > 0 {
		ticker := time.NewTicker(l.rate)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if tick != nil {
			select {
			case <-l.stop:
				return nil
			case <-tick:
			}
		} else {
			select {
			case <-l.stop:
				return nil
			default:
			}
		}

		l.Step()

		if l.MaxConsecutiveErrors > 0 {
			l.mu.RLock()
			n, err := l.consecutive, l.lastErr
			l.mu.RUnlock()
			if n >= l.MaxConsecutiveErrors {
				return fmt.Errorf("%w: %d: %w", ErrTooManyErrors, n, err)
			}
		}
	}
}

// Step executes one cycle: read state, run the handler, send if asked to.
func (l *Loop) Step() error {
	if l.backend == nil {
		return nil
	}

	l.mu.Lock()
	l.stats.Ticks++
	ticks := l.stats.Ticks
	l.mu.Unlock()

	state, err := l.backend.ReadState()
	if err != nil {
		l.fail("read state", err)
		return err
	}

	msg, send := nao.ControlMessage{}, false
	if l.handler != nil {
		msg, send = l.handler(state)
	}

	if send {
		if err := l.backend.SendControl(msg); err != nil {
			l.mu.Lock()
			l.last = state
			l.mu.Unlock()
			l.fail("send control", err)
			return err
		}
	}

	l.mu.Lock()
	l.last = state
	l.consecutive = 0
	if send {
		l.stats.Sent++
	} else {
		l.stats.Skipped++
	}
	stats := l.stats
	l.mu.Unlock()

	if ticks%100 == 0 {
		log.Debug("loop heartbeat", "ticks", stats.Ticks, "sent", stats.Sent, "skipped", stats.Skipped, "errors", stats.Errors)
	}
	return nil
}

// fail counts an error and logs it at most once every 5 seconds.
func (l *Loop) fail(op string, err error) {
	l.mu.Lock()
	l.stats.Errors++
	l.consecutive++
	l.lastErr = err
	total := l.stats.Errors
	logIt := l.lastErrorTime.IsZero() || time.Since(l.lastErrorTime) > 5*time.Second
	if logIt {
		l.lastErrorTime = time.Now()
	}
	l.mu.Unlock()

	if logIt {
		log.Warn("loop "+op+" failed", "error", err, "total_errors", total)
	}
}

// Stats returns a snapshot of the counters.
func (l *Loop) Stats() LoopStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}

// LastState returns the most recent state read by the loop.
func (l *Loop) LastState() nao.State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.last
}

// Stop halts the loop. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
