// Package telemetry ships robot state off the robot: to an MQTT broker for
// live consumers and to Redis as a latest-state cache.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-nidhogg/pkg/nao"
)

// ErrNotFound is returned by Cache.Latest when no state is cached for a robot.
var ErrNotFound = errors.New("telemetry: no state cached")

// Snapshot is the payload published for every state.
type Snapshot struct {
	BodyID    string    `json:"body_id"`
	HeadID    string    `json:"head_id"`
	Timestamp time.Time `json:"timestamp"`
	State     nao.State `json:"state"`
}

// NewSnapshot stamps state with the robot identity and the current time.
func NewSnapshot(hw nao.HardwareInfo, state nao.State) Snapshot {
	return Snapshot{
		BodyID:    hw.BodyID,
		HeadID:    hw.HeadID,
		Timestamp: time.Now().UTC(),
		State:     state,
	}
}

// Bytes returns the JSON encoding of the snapshot.
func (s Snapshot) Bytes() ([]byte, error) {
	return json.Marshal(s)
}

// Sink receives snapshots.
type Sink interface {
	Publish(ctx context.Context, snap Snapshot) error
	Close() error
}

type multi []Sink

// Multi fans a snapshot out to every sink. Publish tries all sinks and joins
// their errors.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Publish(ctx context.Context, snap Snapshot) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sampled forwards every n-th snapshot to sink and drops the rest. LoLA
// delivers 83 states per second; brokers and caches rarely need that many.
type Sampled struct {
	sink  Sink
	every uint64
	seen  atomic.Uint64
}

// NewSampled wraps sink. An n below 1 forwards everything.
func NewSampled(sink Sink, n int) *Sampled {
	if n < 1 {
		n = 1
	}
	return &Sampled{sink: sink, every: uint64(n)}
}

func (s *Sampled) Publish(ctx context.Context, snap Snapshot) error {
	if (s.seen.Add(1)-1)%s.every != 0 {
		return nil
	}
	return s.sink.Publish(ctx, snap)
}

func (s *Sampled) Close() error {
	return s.sink.Close()
}
