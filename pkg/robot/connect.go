package robot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/teslashibe/go-nidhogg/internal/log"
)

// ConnState is the lifecycle of a backend connection.
type ConnState int32

const (
	Disconnected ConnState = iota
	Connecting
	Connected
	// Failed is terminal for an attempt sequence: every retry was used up.
	Failed
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("ConnState(%d)", int32(s))
	}
}

// ConnectFunc makes one attempt at acquiring a backend and returns at once.
type ConnectFunc[B any] func() (B, error)

// Connection drives a ConnectFunc through the connection state machine:
//
//	Disconnected -> Connecting -> Connected
//	                Connecting -> Connecting (retry)
//	                Connecting -> Failed     (retries exhausted)
type Connection[B any] struct {
	name    string
	connect ConnectFunc[B]

	mu       sync.Mutex
	state    ConnState
	attempts int
}

// NewConnection wraps connect. name is only used in log lines.
func NewConnection[B any](name string, connect ConnectFunc[B]) *Connection[B] {
	return &Connection[B]{name: name, connect: connect}
}

// State returns the current connection state.
func (c *Connection[B]) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempts returns the number of attempts made by the last Connect or
// ConnectWithRetry call.
func (c *Connection[B]) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Reset returns the machine to Disconnected, e.g. after the backend was
// closed or the robot went away.
func (c *Connection[B]) Reset() {
	c.setState(Disconnected)
}

// Connect makes a single attempt.
func (c *Connection[B]) Connect() (B, error) {
	c.begin()
	b, err := c.attempt()
	if err != nil {
		c.setState(Failed)
		return b, err
	}
	c.setState(Connected)
	return b, nil
}

// ConnectWithRetry makes up to retries+1 attempts, sleeping interval between
// them but not after the last one. It returns the first success or the last
// failure. Cancelling ctx aborts the wait; the returned error then joins
// ctx.Err() with the last failure.
//
// The call blocks for up to retries*interval plus the attempts themselves.
func (c *Connection[B]) ConnectWithRetry(ctx context.Context, retries int, interval time.Duration) (B, error) {
	if retries < 0 {
		retries = 0
	}
	total := retries + 1
	c.begin()

	var zero B
	var lastErr error
	for i := 1; i <= total; i++ {
		log.Info(fmt.Sprintf("[%d/%d] connecting", i, total), "backend", c.name)

		b, err := c.attempt()
		if err == nil {
			c.setState(Connected)
			log.Info("connected", "backend", c.name, "attempts", i)
			return b, nil
		}
		lastErr = err

		if i == total {
			break
		}
		log.Debug("connect attempt failed", "backend", c.name, "attempt", i, "error", err)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.setState(Failed)
			return zero, errors.Join(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	c.setState(Failed)
	log.Warn("giving up", "backend", c.name, "attempts", total, "error", lastErr)
	return zero, lastErr
}

func (c *Connection[B]) begin() {
	c.mu.Lock()
	c.state = Connecting
	c.attempts = 0
	c.mu.Unlock()
}

func (c *Connection[B]) attempt() (B, error) {
	c.mu.Lock()
	c.attempts++
	c.mu.Unlock()
	return c.connect()
}

func (c *Connection[B]) setState(s ConnState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// ConnectWithRetry is a one-shot NewConnection(...).ConnectWithRetry.
func ConnectWithRetry[B any](ctx context.Context, connect ConnectFunc[B], retries int, interval time.Duration) (B, error) {
	return NewConnection("", connect).ConnectWithRetry(ctx, retries, interval)
}
