package domain

// UpdateKind tags how an accepted position update arrived relative to the
// regular watch cadence. Samples landing well inside the expected interval
// are treated as user-triggered refreshes.
type UpdateKind string

const (
	UpdateRegular   UpdateKind = "regular"
	UpdateImmediate UpdateKind = "immediate"
)

// PositionEvent is the payload published when the validator accepts a
// sample. Previous is the zero Position for the very first acceptance.
type PositionEvent struct {
	Previous Position   `json:"previous"`
	Current  Position   `json:"current"`
	Kind     UpdateKind `json:"kind"`
	First    bool       `json:"first"`
}
