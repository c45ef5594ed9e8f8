// Package pubsub implements the notification primitive shared by the
// position validator, the address change cache and the speech queue.
// A Subject fans one Notify call out to every registered listener;
// listeners are either a value implementing Observer or a plain function,
// tagged at registration time. A misbehaving listener never blocks the
// others.
package pubsub

import (
	"sync"

	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/logger"
)

// Observer receives notifications through its Update method.
type Observer interface {
	Update(args ...any)
}

// ListenerFunc adapts a plain function into a listener.
type ListenerFunc func(args ...any)

// listener is the internal tagged union: exactly one of obs or fn is set.
type listener struct {
	id  int
	obs Observer
	fn  ListenerFunc
}

// Subscription identifies a function listener so it can be removed later.
// Function values are not comparable, so Unsubscribe can't find them by
// identity the way it finds Observer values.
type Subscription int

// Subject holds the listener list. No other state. Notifications run
// synchronously in the caller's goroutine, one listener at a time;
// registration is guarded so the web shell can subscribe while the
// pipeline is running.
type Subject struct {
	mu        sync.Mutex
	log       *logger.Logger
	listeners []listener
	nextID    int
}

// New creates an empty subject.
func New(log *logger.Logger) *Subject {
	return &Subject{log: log}
}

// Subscribe registers an Observer. A nil observer is reported and
// rejected, not fatal.
func (s *Subject) Subscribe(obs Observer) error {
	if obs == nil {
		s.log.Warn("pubsub: ignoring nil observer")
		return domain.ErrNilObserver
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.listeners = append(s.listeners, listener{id: s.nextID, obs: obs})
	return nil
}

// SubscribeFunc registers a plain function listener and returns a
// Subscription for later removal.
func (s *Subject) SubscribeFunc(fn ListenerFunc) (Subscription, error) {
	if fn == nil {
		s.log.Warn("pubsub: ignoring nil listener func")
		return 0, domain.ErrNilObserver
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.listeners = append(s.listeners, listener{id: s.nextID, fn: fn})
	return Subscription(s.nextID), nil
}

// Unsubscribe removes a previously registered observer. Unknown observers
// are a no-op.
func (s *Subject) Unsubscribe(obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.listeners {
		if l.obs == obs {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Cancel removes a function listener by its subscription. Unknown
// subscriptions are a no-op.
func (s *Subject) Cancel(sub Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.listeners {
		if l.id == int(sub) {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered listeners.
func (s *Subject) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Notify invokes every listener with args, in registration order. A
// panicking listener is recovered and logged so the remaining listeners
// still run.
func (s *Subject) Notify(args ...any) {
	// Copy so a listener that subscribes/unsubscribes during delivery
	// doesn't shift the slice under us.
	s.mu.Lock()
	snapshot := make([]listener, len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.Unlock()

	for _, l := range snapshot {
		s.dispatch(l, args)
	}
}

func (s *Subject) dispatch(l listener, args []any) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("pubsub: listener %d panicked: %v", l.id, r)
		}
	}()
	if l.obs != nil {
		l.obs.Update(args...)
		return
	}
	l.fn(args...)
}
