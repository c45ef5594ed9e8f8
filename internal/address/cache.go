// Package address detects human-relevant address changes. The cache holds
// the current and previous standardized address and, per tracked field,
// the signature of the last transition it reported, so the same
// previous→current pair is never announced twice.
package address

import (
	"sync"

	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/logger"
	"github.com/andrevmm/ondeestou/internal/pubsub"
)

// ChangeCache is the address diffing state holder. One instance per
// running application, built by the composition root. SetAddress calls
// must be serialized by the caller; the mutex protects snapshot reads.
type ChangeCache struct {
	mu  sync.Mutex
	log *logger.Logger

	current     domain.Address
	previous    domain.Address
	hasCurrent  bool
	hasPrevious bool

	// Last-notified transition signature per tracked field, formatted
	// "previous→current".
	signatures map[domain.Field]string

	// One notification channel per tracked field.
	subjects map[domain.Field]*pubsub.Subject
}

// NewChangeCache creates an empty cache.
func NewChangeCache(log *logger.Logger) *ChangeCache {
	c := &ChangeCache{
		log:        log,
		signatures: make(map[domain.Field]string),
		subjects:   make(map[domain.Field]*pubsub.Subject),
	}
	for _, f := range domain.TrackedFields {
		c.subjects[f] = pubsub.New(log)
	}
	return c
}

// OnField registers a callback for changes of one tracked field. The
// callback receives the structured change payload. Multiple callbacks per
// field are allowed.
func (c *ChangeCache) OnField(f domain.Field, fn func(domain.FieldChange)) error {
	subject, ok := c.subjects[f]
	if !ok {
		return domain.ErrUnknownField
	}
	if fn == nil {
		return domain.ErrNilObserver
	}
	_, err := subject.SubscribeFunc(func(args ...any) {
		fn(args[0].(domain.FieldChange))
	})
	return err
}

// SubscribeField registers a pubsub observer on one field's channel.
func (c *ChangeCache) SubscribeField(f domain.Field, obs pubsub.Observer) error {
	subject, ok := c.subjects[f]
	if !ok {
		return domain.ErrUnknownField
	}
	return subject.Subscribe(obs)
}

// UnsubscribeField removes an observer from one field's channel.
func (c *ChangeCache) UnsubscribeField(f domain.Field, obs pubsub.Observer) {
	if subject, ok := c.subjects[f]; ok {
		subject.Unsubscribe(obs)
	}
}

// Current returns the most recent address. The second return is false
// before the first SetAddress.
func (c *ChangeCache) Current() (domain.Address, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.hasCurrent
}

// Previous returns the address before the current one.
func (c *ChangeCache) Previous() (domain.Address, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previous, c.hasPrevious
}

// SetAddress is the sole mutator. It evaluates the tracked fields in
// fixed order (logradouro, bairro, município), fires at most one callback
// per distinct transition, then shifts current→previous. Field evaluation
// order is a contract: município carries the highest downstream priority
// and callers rely on the relative firing order.
func (c *ChangeCache) SetAddress(addr domain.Address) {
	type firing struct {
		subject *pubsub.Subject
		change  domain.FieldChange
	}
	var firings []firing

	c.mu.Lock()
	for _, f := range domain.TrackedFields {
		prev := c.current.Get(f)
		next := addr.Get(f)
		if prev == next {
			continue
		}
		sig := signature(prev, next)
		if c.signatures[f] == sig {
			c.log.Debug("address: %s transition %q already reported", f, sig)
			continue
		}
		c.signatures[f] = sig
		firings = append(firings, firing{
			subject: c.subjects[f],
			change:  domain.FieldChange{Field: f, Previous: prev, Current: next},
		})
	}

	// Shift only after every field was evaluated against the old pair.
	c.previous = c.current
	c.hasPrevious = c.hasCurrent
	c.current = addr
	c.hasCurrent = true
	c.mu.Unlock()

	// Notify outside the lock so a callback can read the cache.
	for _, f := range firings {
		c.log.Debug("address: %s changed %q -> %q", f.change.Field, f.change.Previous, f.change.Current)
		f.subject.Notify(f.change)
	}
}

// Clear resets the address pair and all stored signatures. Used for test
// isolation and explicit session resets. Registered callbacks survive.
func (c *ChangeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = domain.Address{}
	c.previous = domain.Address{}
	c.hasCurrent = false
	c.hasPrevious = false
	c.signatures = make(map[domain.Field]string)
	c.log.Debug("address: cache cleared")
}

// signature encodes a transition for duplicate suppression. Empty values
// are legal: leaving a named bairro for unmapped countryside is a real
// transition with its own signature.
func signature(prev, next string) string {
	return prev + "→" + next
}
