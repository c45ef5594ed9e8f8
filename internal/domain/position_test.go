package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPositionJSONRoundTrip(t *testing.T) {
	in := Position{
		Latitude:  -18.4696091,
		Longitude: -43.4953982,
		Accuracy:  10,
		Quality:   QualityExcellent,
		Timestamp: time.Unix(1000, 0).UTC(),
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out Position
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Quality != QualityExcellent {
		t.Fatalf("quality = %s, want excellent", out.Quality)
	}
	if out.Latitude != in.Latitude || !out.Timestamp.Equal(in.Timestamp) {
		t.Fatalf("round trip mangled position: %+v", out)
	}
}

func TestAccuracyQualityUnmarshalRejectsUnknown(t *testing.T) {
	var q AccuracyQuality
	if err := q.UnmarshalText([]byte("pristine")); err == nil {
		t.Fatal("expected an error for an unknown tag")
	}
}
