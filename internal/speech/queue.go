// Package speech turns detected address changes into spoken Portuguese
// announcements. The Queue is the core: a priority-ordered, size-bounded,
// time-bounded collection of pending announcements. The announcer maps
// field changes to lines and priorities; the speaker drains the queue
// through TTS and the audio player.
package speech

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/logger"
	"github.com/andrevmm/ondeestou/internal/pubsub"
)

// Priority orders announcements. Higher speaks first; negatives are legal
// for chatter that should only play on an idle queue.
type Priority int

const (
	PriorityLow    Priority = 0  // logradouro changes, ambient commentary
	PriorityNormal Priority = 5  // bairro changes
	PriorityHigh   Priority = 10 // município changes, arrival announcements
)

// Queue configuration bounds. The constructor rejects values outside
// these; the original fixed values (30s / 100 items) are the defaults.
const (
	DefaultMaxSize = 100
	MinMaxSize     = 1
	MaxMaxSize     = 1024

	DefaultTTL = 30 * time.Second
	MinTTL     = time.Second
	MaxTTL     = 10 * time.Minute
)

// Item is one pending announcement. Immutable once enqueued; it leaves
// the queue by being dequeued or by outliving the TTL.
type Item struct {
	ID         string
	Text       string
	Priority   Priority
	EnqueuedAt time.Time
}

// QueueOption configures the queue.
type QueueOption func(*Queue)

// WithMaxSize sets the size bound.
func WithMaxSize(n int) QueueOption {
	return func(q *Queue) { q.maxSize = n }
}

// WithTTL sets how long an item may wait before it is no longer worth
// speaking.
func WithTTL(d time.Duration) QueueOption {
	return func(q *Queue) { q.ttl = d }
}

// WithQueueClock injects the time source. Tests use this to age items
// deterministically.
func WithQueueClock(now func() time.Time) QueueOption {
	return func(q *Queue) { q.now = now }
}

// Queue holds pending announcements in priority order, FIFO among equal
// priorities. Every access sweeps expired items first so stale
// announcements never accumulate silently.
type Queue struct {
	mu      sync.Mutex
	log     *logger.Logger
	now     func() time.Time
	items   []Item
	maxSize int
	ttl     time.Duration
	subject *pubsub.Subject
}

// NewQueue creates a queue, validating the configured bounds.
func NewQueue(log *logger.Logger, opts ...QueueOption) (*Queue, error) {
	q := &Queue{
		log:     log,
		now:     time.Now,
		maxSize: DefaultMaxSize,
		ttl:     DefaultTTL,
		subject: pubsub.New(log),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.maxSize < MinMaxSize || q.maxSize > MaxMaxSize {
		return nil, fmt.Errorf("%w: max size %d not in [%d, %d]", domain.ErrOutOfRange, q.maxSize, MinMaxSize, MaxMaxSize)
	}
	if q.ttl < MinTTL || q.ttl > MaxTTL {
		return nil, fmt.Errorf("%w: ttl %s not in [%s, %s]", domain.ErrOutOfRange, q.ttl, MinTTL, MaxTTL)
	}
	return q, nil
}

// Subscribe registers an observer fired once per mutating operation with
// the queue itself as argument, so listeners can read size/state without
// polling.
func (q *Queue) Subscribe(obs pubsub.Observer) error {
	return q.subject.Subscribe(obs)
}

// SubscribeFunc registers a function listener for queue mutations.
func (q *Queue) SubscribeFunc(fn pubsub.ListenerFunc) (pubsub.Subscription, error) {
	return q.subject.SubscribeFunc(fn)
}

// Unsubscribe removes a previously registered observer.
func (q *Queue) Unsubscribe(obs pubsub.Observer) {
	q.subject.Unsubscribe(obs)
}

// Enqueue inserts an announcement keeping priority order: the new item
// goes after every existing item of equal or higher priority. Overflow is
// trimmed from the tail, the lowest-priority end.
func (q *Queue) Enqueue(text string, priority Priority) error {
	if text == "" {
		return domain.ErrInvalidText
	}

	q.mu.Lock()
	q.sweepLocked()

	item := Item{
		ID:         uuid.NewString(),
		Text:       text,
		Priority:   priority,
		EnqueuedAt: q.now(),
	}

	idx := len(q.items)
	for i, existing := range q.items {
		if existing.Priority < priority {
			idx = i
			break
		}
	}
	q.items = append(q.items, Item{})
	copy(q.items[idx+1:], q.items[idx:])
	q.items[idx] = item

	for len(q.items) > q.maxSize {
		dropped := q.items[len(q.items)-1]
		q.items = q.items[:len(q.items)-1]
		q.log.Debug("speech: queue full, dropped %q (priority=%d)", dropped.Text, dropped.Priority)
	}
	size := len(q.items)
	q.mu.Unlock()

	q.log.Debug("speech: queued (priority=%d, size=%d): %s", priority, size, text)
	q.subject.Notify(q)
	return nil
}

// Dequeue removes and returns the front item: highest priority, oldest
// among equals. The second return is false when the queue is empty.
func (q *Queue) Dequeue() (Item, bool) {
	q.mu.Lock()
	q.sweepLocked()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return Item{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	q.mu.Unlock()

	q.subject.Notify(q)
	return item, true
}

// CleanExpired drops items older than the TTL and returns how many were
// removed. Called implicitly by every other operation; exposed so a
// periodic sweeper can keep the queue fresh between accesses.
func (q *Queue) CleanExpired() int {
	q.mu.Lock()
	removed := q.sweepLocked()
	q.mu.Unlock()

	if removed > 0 {
		q.subject.Notify(q)
	}
	return removed
}

// IsEmpty reports whether any unexpired item is pending.
func (q *Queue) IsEmpty() bool {
	return q.Size() == 0
}

// Size returns the number of unexpired pending items.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sweepLocked()
	return len(q.items)
}

// Clear drops everything.
func (q *Queue) Clear() {
	q.mu.Lock()
	n := len(q.items)
	q.items = nil
	q.mu.Unlock()

	if n > 0 {
		q.subject.Notify(q)
	}
}

// Pending returns a snapshot of the queued items in dequeue order.
func (q *Queue) Pending() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sweepLocked()
	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out
}

// sweepLocked removes expired items in place. An item expires when its
// age exceeds the TTL; at exactly the TTL it is still speakable. Caller
// holds the lock.
func (q *Queue) sweepLocked() int {
	cutoff := q.now().Add(-q.ttl)
	n := 0
	for _, item := range q.items {
		if !item.EnqueuedAt.Before(cutoff) {
			q.items[n] = item
			n++
		}
	}
	removed := len(q.items) - n
	q.items = q.items[:n]
	if removed > 0 {
		q.log.Debug("speech: expired %d stale announcement(s)", removed)
	}
	return removed
}
