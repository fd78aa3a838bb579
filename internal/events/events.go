// Package events publishes registry change notifications after commit.
package events

import (
	"context"
	"sync"

	"github.com/roach88/favnum/internal/ir"
)

// Event topic constants
const (
	TopicConfigInitialized = "favnum.config.initialized"
	TopicRecordUpdated     = "favnum.record.updated"
)

// ConfigInitialized is emitted once, when the admin is installed.
type ConfigInitialized struct {
	Address ir.Address  `json:"address"`
	Admin   ir.Identity `json:"admin"`
}

// RecordUpdated is emitted for every committed set or reset.
type RecordUpdated struct {
	Address ir.Address  `json:"address"`
	Owner   ir.Identity `json:"owner"`
	Value   uint64      `json:"value"`
	By      ir.Identity `json:"by"`
	Created bool        `json:"created"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// NoopPublisher is a Publisher that does nothing (used when NATS is not configured).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }

// Published is one event captured by a Recorder.
type Published struct {
	Topic string
	Event any
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Published
	err    error
}

// NewRecorder creates a Recorder. If err is non-nil every Publish records the
// event and then fails with err.
func NewRecorder(err error) *Recorder {
	return &Recorder{err: err}
}

func (r *Recorder) Publish(_ context.Context, topic string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Topic: topic, Event: event})
	return r.err
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}
