// Package position holds the validator that decides which raw geolocation
// samples are worth acting on. Most samples from a live GPS stream are
// noise; the validator keeps the last accepted fix and only publishes a
// change when a sample passes the accuracy, distance and time rules.
package position

import (
	"fmt"
	"sync"
	"time"

	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/logger"
	"github.com/andrevmm/ondeestou/internal/pubsub"
)

// Defaults for the filtering rules. Both are exposed as options so the
// composition root can feed configured values.
const (
	// DefaultMinDistance is the minimum movement in meters for a sample
	// to count as a real position change. Suppresses GPS jitter.
	DefaultMinDistance = 20.0
	// DefaultImmediateWindow separates regular watch updates from
	// user-triggered refreshes: samples arriving sooner than this after
	// the previous accepted fix are tagged immediate.
	DefaultImmediateWindow = 50 * time.Second
)

// Option configures the validator.
type Option func(*Validator)

// WithMinDistance sets the jitter-suppression distance in meters.
func WithMinDistance(meters float64) Option {
	return func(v *Validator) {
		v.minDistance = meters
	}
}

// WithImmediateWindow sets the regular/immediate classification window.
func WithImmediateWindow(d time.Duration) Option {
	return func(v *Validator) {
		v.immediateWindow = d
	}
}

// WithStrictAccuracy makes the validator reject medium, bad and very-bad
// samples outright. Meant for constrained (mobile) deployments where a
// coarse fix would produce wrong announcements.
func WithStrictAccuracy(strict bool) Option {
	return func(v *Validator) {
		v.strict = strict
	}
}

// WithClock injects the time source. Tests use this for determinism.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// Validator filters raw samples and holds the current accepted position.
// One instance per running application, built by the composition root.
// Update calls must be serialized by the caller; the internal mutex only
// protects snapshot reads against a concurrent update.
type Validator struct {
	mu      sync.Mutex
	log     *logger.Logger
	subject *pubsub.Subject
	now     func() time.Time

	minDistance     float64
	immediateWindow time.Duration
	strict          bool

	state    domain.Position
	hasState bool
}

// New creates a validator with no held position.
func New(log *logger.Logger, opts ...Option) *Validator {
	v := &Validator{
		log:             log,
		subject:         pubsub.New(log),
		now:             time.Now,
		minDistance:     DefaultMinDistance,
		immediateWindow: DefaultImmediateWindow,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Subscribe registers an observer for accepted position events. The
// notification payload is a single domain.PositionEvent.
func (v *Validator) Subscribe(obs pubsub.Observer) error {
	return v.subject.Subscribe(obs)
}

// SubscribeFunc registers a function listener for accepted position events.
func (v *Validator) SubscribeFunc(fn pubsub.ListenerFunc) (pubsub.Subscription, error) {
	return v.subject.SubscribeFunc(fn)
}

// Unsubscribe removes a previously registered observer.
func (v *Validator) Unsubscribe(obs pubsub.Observer) {
	v.subject.Unsubscribe(obs)
}

// Current returns a snapshot of the held position. The second return is
// false before the first accepted sample.
func (v *Validator) Current() (domain.Position, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state, v.hasState
}

// Update runs the validation rules against a raw sample. It returns true
// when the sample was accepted and the held state replaced. Malformed
// samples return an error wrapping domain.ErrInvalidSample; samples
// filtered by policy return (false, nil) and are only debug-logged,
// because dropping most of the stream is the expected behavior.
func (v *Validator) Update(sample domain.GeoSample) (bool, error) {
	if err := checkShape(sample); err != nil {
		return false, err
	}

	ts := sample.Timestamp
	if ts.IsZero() {
		ts = v.now()
	}
	quality := domain.ClassifyAccuracy(sample.Accuracy)

	// Rule 1: accuracy quality.
	if v.strict && quality >= domain.QualityMedium {
		v.log.Debug("position: rejected sample, accuracy %.0fm (%s) below strict profile", sample.Accuracy, quality)
		return false, nil
	}

	v.mu.Lock()
	prev := v.state
	hadState := v.hasState
	v.mu.Unlock()

	// Rule 2: distance threshold. Vacuous for the very first sample.
	if hadState {
		dist := haversine(prev.Latitude, prev.Longitude, sample.Latitude, sample.Longitude)
		if dist < v.minDistance {
			v.log.Debug("position: rejected sample, moved %.1fm (< %.1fm)", dist, v.minDistance)
			return false, nil
		}
	}

	// Rule 3: time window. Classifies the update, never rejects.
	kind := domain.UpdateRegular
	if hadState && ts.Sub(prev.Timestamp) < v.immediateWindow {
		kind = domain.UpdateImmediate
	}

	next := domain.Position{
		Latitude:   sample.Latitude,
		Longitude:  sample.Longitude,
		Accuracy:   sample.Accuracy,
		Quality:    quality,
		Timestamp:  ts,
		PreviousAt: prev.Timestamp,
	}

	v.mu.Lock()
	v.state = next
	v.hasState = true
	v.mu.Unlock()

	v.log.Debug("position: accepted (%.6f, %.6f) accuracy=%.0fm quality=%s kind=%s",
		next.Latitude, next.Longitude, next.Accuracy, quality, kind)

	v.subject.Notify(domain.PositionEvent{
		Previous: prev,
		Current:  next,
		Kind:     kind,
		First:    !hadState,
	})
	return true, nil
}

// checkShape validates the sample fields that make it usable at all.
func checkShape(s domain.GeoSample) error {
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("%w: latitude %.6f out of range", domain.ErrInvalidSample, s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("%w: longitude %.6f out of range", domain.ErrInvalidSample, s.Longitude)
	}
	if s.Accuracy <= 0 {
		return fmt.Errorf("%w: accuracy must be positive, got %.2f", domain.ErrInvalidSample, s.Accuracy)
	}
	return nil
}
