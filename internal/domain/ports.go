package domain

import "context"

// Geocoder resolves coordinates into a standardized address.
// Implementations can be HTTP-backed (Nominatim), cached, or fixed for
// tests. Returns ErrNoAddress when the provider has nothing for the point.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (Address, error)
}

// Synthesizer converts announcement text into playable audio. The no-op
// text fallback is used when TTS credentials are absent.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
