package geocode

import (
	"context"
	"sync"

	"github.com/uber/h3-go/v4"

	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/logger"
)

// DefaultResolution is the H3 cell resolution used for caching. At
// resolution 10 a cell spans roughly 70 m edge to edge, comfortably under
// the granularity at which addresses change.
const DefaultResolution = 10

// Compile-time interface check.
var _ domain.Geocoder = (*CachedGeocoder)(nil)

// CachedGeocoder wraps another geocoder with an H3 cell cache: fixes
// landing in an already-resolved cell reuse the stored address instead of
// hitting the provider again. The walking pace this service targets makes
// repeat cells the common case.
type CachedGeocoder struct {
	inner      domain.Geocoder
	log        *logger.Logger
	resolution int

	mu    sync.Mutex
	cells map[h3.Cell]domain.Address
}

// CacheOption configures the cached geocoder.
type CacheOption func(*CachedGeocoder)

// WithResolution sets the H3 resolution (finer = smaller cells).
func WithResolution(res int) CacheOption {
	return func(c *CachedGeocoder) { c.resolution = res }
}

// NewCachedGeocoder wraps inner with a cell cache.
func NewCachedGeocoder(inner domain.Geocoder, log *logger.Logger, opts ...CacheOption) *CachedGeocoder {
	c := &CachedGeocoder{
		inner:      inner,
		log:        log,
		resolution: DefaultResolution,
		cells:      make(map[h3.Cell]domain.Address),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reverse resolves through the cache, falling back to the wrapped
// geocoder on a miss. Provider failures are not cached.
func (c *CachedGeocoder) Reverse(ctx context.Context, lat, lon float64) (domain.Address, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lon), c.resolution)
	if err != nil {
		// Degenerate coordinates; skip the cache rather than fail.
		c.log.Warn("geocode: h3 cell for (%.6f, %.6f): %v", lat, lon, err)
		return c.inner.Reverse(ctx, lat, lon)
	}

	c.mu.Lock()
	addr, hit := c.cells[cell]
	c.mu.Unlock()
	if hit {
		c.log.Debug("geocode: cell cache hit for %s", cell)
		return addr, nil
	}

	addr, err = c.inner.Reverse(ctx, lat, lon)
	if err != nil {
		return domain.Address{}, err
	}

	c.mu.Lock()
	c.cells[cell] = addr
	c.mu.Unlock()
	return addr, nil
}

// Len returns the number of cached cells.
func (c *CachedGeocoder) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cells)
}

// Clear empties the cache.
func (c *CachedGeocoder) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cells = make(map[h3.Cell]domain.Address)
}
