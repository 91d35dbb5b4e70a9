package track

import "time"

// Track is an uploaded GPX trace plus the statistics computed at upload
// time. Tracks are immutable after creation; statistics never drift from
// the stored points.
type Track struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	PointCount     int       `json:"point_count"`
	DistanceM      float64   `json:"distance_m"`
	ElevationGainM float64   `json:"elevation_gain_m"`
	ElevationLossM float64   `json:"elevation_loss_m"`
	MinElevationM  *float64  `json:"min_elevation_m,omitempty"`
	MaxElevationM  *float64  `json:"max_elevation_m,omitempty"`
	DurationMs     *int64    `json:"duration_ms,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
