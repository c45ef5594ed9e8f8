package domain

import (
	"fmt"
	"time"
)

// GeoSample is a single raw fix as delivered by a geolocation source.
// It is transient: the validator inspects it and either promotes it into
// the held Position or drops it. Optional sensor fields use pointers so
// "not reported" is distinguishable from zero.
type GeoSample struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"` // meters, radius of 95% confidence
	Altitude  *float64  `json:"altitude,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// Position is the last accepted fix plus its derived quality tag.
// PreviousAt is the timestamp of the fix accepted before this one,
// used by the time-window classification.
type Position struct {
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	Accuracy   float64         `json:"accuracy"`
	Quality    AccuracyQuality `json:"quality"`
	Timestamp  time.Time       `json:"timestamp"`
	PreviousAt time.Time       `json:"previous_at,omitzero"`
}

// AccuracyQuality is a discretized reading of an accuracy-in-meters value.
type AccuracyQuality int

const (
	QualityExcellent AccuracyQuality = iota
	QualityGood
	QualityMedium
	QualityBad
	QualityVeryBad
)

// Accuracy breakpoints in meters. A fix with accuracy at or below a
// breakpoint gets that tag; above the last one it is very bad.
const (
	AccuracyExcellentMax = 10.0
	AccuracyGoodMax      = 25.0
	AccuracyMediumMax    = 50.0
	AccuracyBadMax       = 100.0
)

// ClassifyAccuracy maps an accuracy-in-meters value to its quality tag.
// Pure function: the held Position's Quality is always ClassifyAccuracy
// of its Accuracy.
func ClassifyAccuracy(meters float64) AccuracyQuality {
	switch {
	case meters <= AccuracyExcellentMax:
		return QualityExcellent
	case meters <= AccuracyGoodMax:
		return QualityGood
	case meters <= AccuracyMediumMax:
		return QualityMedium
	case meters <= AccuracyBadMax:
		return QualityBad
	default:
		return QualityVeryBad
	}
}

func (q AccuracyQuality) String() string {
	switch q {
	case QualityExcellent:
		return "excellent"
	case QualityGood:
		return "good"
	case QualityMedium:
		return "medium"
	case QualityBad:
		return "bad"
	case QualityVeryBad:
		return "very-bad"
	default:
		return "unknown"
	}
}

// MarshalText makes the tag render as its name in JSON payloads.
func (q AccuracyQuality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText parses a tag name back into its value, so Position
// payloads round-trip through JSON.
func (q *AccuracyQuality) UnmarshalText(text []byte) error {
	switch string(text) {
	case "excellent":
		*q = QualityExcellent
	case "good":
		*q = QualityGood
	case "medium":
		*q = QualityMedium
	case "bad":
		*q = QualityBad
	case "very-bad":
		*q = QualityVeryBad
	default:
		return fmt.Errorf("unknown accuracy quality %q", text)
	}
	return nil
}
