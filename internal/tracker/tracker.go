// Package tracker wires the pipeline together: it feeds raw samples to
// the position validator, reacts to accepted fixes by resolving the
// address, pushes the result through the change cache, and keeps the
// speech queue swept. The pipeline pieces stay decoupled; only the
// tracker knows all of them.
package tracker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andrevmm/ondeestou/internal/address"
	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/logger"
	"github.com/andrevmm/ondeestou/internal/position"
	"github.com/andrevmm/ondeestou/internal/speech"
)

// Option configures the tracker.
type Option func(*Tracker)

// WithGeocodeTimeout bounds a single reverse-geocoding call.
func WithGeocodeTimeout(d time.Duration) Option {
	return func(t *Tracker) { t.geocodeTimeout = d }
}

// WithSweepInterval sets the cadence of the queue expiration sweep.
func WithSweepInterval(d time.Duration) Option {
	return func(t *Tracker) { t.sweepInterval = d }
}

// Tracker is the pipeline coordinator. Offer is the single entry point
// for raw samples; a mutex serializes concurrent producers (HTTP
// handlers, bridges) because the core components assume serialized
// callers.
type Tracker struct {
	mu        sync.Mutex
	validator *position.Validator
	geocoder  domain.Geocoder
	cache     *address.ChangeCache
	queue     *speech.Queue
	log       *logger.Logger

	geocodeTimeout time.Duration
	sweepInterval  time.Duration

	resolves sync.WaitGroup

	// Geocodes run concurrently but the cache must see addresses in
	// acceptance order: every accepted fix gets a sequence number and a
	// result older than the last applied one is dropped, so a slow
	// provider call can never roll the address back.
	seq     atomic.Uint64
	applyMu sync.Mutex
	applied uint64
}

// New creates a tracker and subscribes it to the validator's accepted
// position events.
func New(v *position.Validator, g domain.Geocoder, c *address.ChangeCache, q *speech.Queue, log *logger.Logger, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		validator:      v,
		geocoder:       g,
		cache:          c,
		queue:          q,
		log:            log,
		geocodeTimeout: 10 * time.Second,
		sweepInterval:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}

	if _, err := v.SubscribeFunc(t.onPositionEvent); err != nil {
		return nil, err
	}
	return t, nil
}

// Offer pushes one raw sample into the pipeline. Returns whether the
// validator accepted it. Geocoding and announcements happen
// asynchronously after acceptance.
func (t *Tracker) Offer(sample domain.GeoSample) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.validator.Update(sample)
}

// onPositionEvent runs synchronously inside the validator's notify. It
// only schedules the geocoding work: the provider call must not happen
// inside the core's mutation.
func (t *Tracker) onPositionEvent(args ...any) {
	ev, ok := args[0].(domain.PositionEvent)
	if !ok {
		return
	}
	t.resolves.Add(1)
	go t.resolve(ev, t.seq.Add(1))
}

// resolve reverse-geocodes an accepted fix and feeds the address cache,
// which in turn fires whatever field changes the move produced. Results
// arriving after a newer fix was already applied are dropped.
func (t *Tracker) resolve(ev domain.PositionEvent, seq uint64) {
	defer t.resolves.Done()

	ctx, cancel := context.WithTimeout(context.Background(), t.geocodeTimeout)
	defer cancel()

	addr, err := t.geocoder.Reverse(ctx, ev.Current.Latitude, ev.Current.Longitude)
	if err != nil {
		if errors.Is(err, domain.ErrNoAddress) {
			t.log.Debug("tracker: no address for (%.6f, %.6f)", ev.Current.Latitude, ev.Current.Longitude)
		} else {
			t.log.Error("tracker: reverse geocode failed: %v", err)
		}
		return
	}

	t.applyMu.Lock()
	defer t.applyMu.Unlock()
	if seq <= t.applied {
		t.log.Debug("tracker: dropping stale geocode result for fix %d (already at %d)", seq, t.applied)
		return
	}
	t.applied = seq
	t.cache.SetAddress(addr)
}

// WaitResolves blocks until every scheduled geocode has finished.
// Exposed for tests and orderly shutdown.
func (t *Tracker) WaitResolves() {
	t.resolves.Wait()
}

// Run keeps the speech queue swept until ctx is cancelled. The queue
// already sweeps on access; this covers stretches where nothing touches
// it. Blocks; intended to be called as a goroutine.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.sweepInterval)
	defer ticker.Stop()

	t.log.Info("tracker started (sweep=%s)", t.sweepInterval)

	for {
		select {
		case <-ctx.Done():
			t.log.Info("tracker stopped")
			return
		case <-ticker.C:
			if n := t.queue.CleanExpired(); n > 0 {
				t.log.Debug("tracker: swept %d expired announcement(s)", n)
			}
		}
	}
}
