package selection

import "time"

// Slots for the two route endpoints a user picks on a track.
const (
	SlotStart = "start"
	SlotEnd   = "end"
)

// Selection pins one picked point: its index into the track's point
// sequence plus the snapped coordinate.
type Selection struct {
	TrackID    string    `json:"track_id"`
	Slot       string    `json:"slot"`
	PointIndex int       `json:"point_index"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	UpdatedAt  time.Time `json:"updated_at"`
}
