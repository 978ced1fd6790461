// Package feed fans committed journal events out to live subscribers and
// stitches a journal replay onto the live tail.
package feed

import (
	"errors"
	"sync"

	"github.com/Douglas360/smart-contracts/internal/services/registry/domain/event"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 256

// ErrSlowSubscriber ends a subscription whose queue overflowed.
var ErrSlowSubscriber = errors.New("subscriber fell behind the journal")

// ErrHubClosed ends subscriptions when the hub shuts down.
var ErrHubClosed = errors.New("event feed closed")

// Observer receives subscriber lifecycle signals.
type Observer interface {
	SubscriberJoined()
	SubscriberLeft()
	FrameDropped()
}

// Hub broadcasts committed events. Publish never blocks: a subscriber whose
// queue is full is disconnected and must resume from its last seq.
type Hub struct {
	mu       sync.Mutex
	subs     map[*Subscription]struct{}
	observer Observer
	buffer   int
	closed   bool
}

// Option configures a Hub.
type Option func(*Hub)

// WithObserver reports subscriber activity to o.
func WithObserver(o Observer) Option {
	return func(h *Hub) {
		h.observer = o
	}
}

// WithBuffer sets the per-subscriber queue length.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// NewHub builds an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{subs: make(map[*Subscription]struct{}), buffer: DefaultBuffer}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscription is one subscriber's view of the live feed.
type Subscription struct {
	hub    *Hub
	events chan event.Event
	done   chan struct{}
	once   sync.Once
	err    error
}

// Events yields events in commit order.
func (s *Subscription) Events() <-chan event.Event { return s.events }

// Done is closed when the subscription ends.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Err reports why the subscription ended. It is nil after Close.
func (s *Subscription) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Close detaches the subscription from its hub.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.hub.dropLocked(s, nil)
}

// Subscribe attaches a new subscriber.
func (h *Hub) Subscribe() (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}
	sub := &Subscription{
		hub:    h,
		events: make(chan event.Event, h.buffer),
		done:   make(chan struct{}),
	}
	h.subs[sub] = struct{}{}
	if h.observer != nil {
		h.observer.SubscriberJoined()
	}
	return sub, nil
}

// Publish delivers committed events to every subscriber.
func (h *Hub) Publish(events []event.Event) {
	if len(events) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		for i, evt := range events {
			select {
			case sub.events <- evt:
				continue
			default:
			}
			if h.observer != nil {
				for range events[i:] {
					h.observer.FrameDropped()
				}
			}
			h.dropLocked(sub, ErrSlowSubscriber)
			break
		}
	}
}

// Subscribers reports the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for sub := range h.subs {
		h.dropLocked(sub, ErrHubClosed)
	}
}

func (h *Hub) dropLocked(sub *Subscription, reason error) {
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	sub.once.Do(func() {
		sub.err = reason
		close(sub.done)
	})
	if h.observer != nil {
		h.observer.SubscriberLeft()
	}
}
