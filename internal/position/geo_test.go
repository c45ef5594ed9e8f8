package position

import (
	"math"
	"testing"
)

func TestHaversineKnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64 // meters
		tolerance              float64
	}{
		{"same point", -18.4696091, -43.4953982, -18.4696091, -43.4953982, 0, 0.001},
		{"one block in são paulo", -23.5505, -46.6333, -23.5506, -46.6335, 23, 3},
		{"rio to são paulo", -22.9068, -43.1729, -23.5505, -46.6333, 357000, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Fatalf("haversine = %.2fm, want %.2fm (±%.2f)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestHaversineIsSymmetric(t *testing.T) {
	d1 := haversine(-18.4696, -43.4954, -18.4710, -43.4970)
	d2 := haversine(-18.4710, -43.4970, -18.4696, -43.4954)
	if math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", d1, d2)
	}
}
