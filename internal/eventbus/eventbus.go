// Package eventbus carries pipeline stage-progress events to interested
// listeners (logging, MQTT publishing) without coupling the runner to them.
package eventbus

import (
	"sync"
	"time"
)

// Stage identifies one pipeline stage.
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageProbe    Stage = "probe"
	StageFit      Stage = "fit"
	StageScale    Stage = "scale"
	StageAllocate Stage = "allocate"
	StageTieFlow  Stage = "tieflow"
	StageAssemble Stage = "assemble"
)

// StageEvent marks the completion (or failure) of one pipeline stage.
type StageEvent struct {
	RunID string
	Stage Stage
	Err   error
	Time  time.Time
}

// Bus fans StageEvents out to subscribers. Delivery is non-blocking: a slow
// subscriber drops events rather than stalling the pipeline.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan StageEvent
	closed bool
}

// New creates an empty Bus.
func New() *Bus { return &Bus{} }

// Publish sends the event to all subscribers without blocking.
func (b *Bus) Publish(ev StageEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel.
func (b *Bus) Subscribe() <-chan StageEvent {
	ch := make(chan StageEvent, 16)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan StageEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes all subscriber channels and clears the list.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
