package trace

import (
	"time"

	"backend-traceview/internal/shared/geo"
)

// Point is one sample along a recorded track. ElevationM and Time are nil
// when the source file did not record them; nil is not the same as zero.
type Point struct {
	Lat        float64    `json:"lat"`
	Lng        float64    `json:"lng"`
	ElevationM *float64   `json:"elevation_m,omitempty"`
	Time       *time.Time `json:"time,omitempty"`
}

// Statistics aggregates a track in a single pass. Values are derived from
// the point sequence alone, so recomputing from the same track always yields
// identical results.
type Statistics struct {
	TotalDistanceM float64  `json:"total_distance_m"`
	ElevationGainM float64  `json:"elevation_gain_m"`
	ElevationLossM float64  `json:"elevation_loss_m"`
	MinElevationM  *float64 `json:"min_elevation_m,omitempty"`
	MaxElevationM  *float64 `json:"max_elevation_m,omitempty"`
	DurationMs     *int64   `json:"duration_ms,omitempty"`
	PointCount     int      `json:"point_count"`
}

// Compute walks the points in input order and sums per-segment deltas.
// It reports false for tracks with fewer than two points, since every metric
// is built from consecutive pairs. Elevation gain/loss only counts pairs
// where both points carry an elevation; min/max covers every point that
// does. The duration spans the first-seen to last-seen timestamped point in
// sequence order, not chronological order. Compute does not validate
// coordinates; callers drop non-finite values at parse time.
func Compute(points []Point) (Statistics, bool) {
	if len(points) < 2 {
		return Statistics{}, false
	}

	stats := Statistics{PointCount: len(points)}
	var startTime, endTime *time.Time

	for i := range points {
		p := points[i]

		if p.ElevationM != nil {
			if stats.MinElevationM == nil || *p.ElevationM < *stats.MinElevationM {
				e := *p.ElevationM
				stats.MinElevationM = &e
			}
			if stats.MaxElevationM == nil || *p.ElevationM > *stats.MaxElevationM {
				e := *p.ElevationM
				stats.MaxElevationM = &e
			}
		}
		if p.Time != nil {
			if startTime == nil {
				startTime = p.Time
			} else {
				endTime = p.Time
			}
		}
		if i == 0 {
			continue
		}

		prev := points[i-1]
		stats.TotalDistanceM += geo.HaversineM(prev.Lat, prev.Lng, p.Lat, p.Lng)

		if prev.ElevationM != nil && p.ElevationM != nil {
			delta := *p.ElevationM - *prev.ElevationM
			if delta > 0 {
				stats.ElevationGainM += delta
			} else {
				stats.ElevationLossM += -delta
			}
		}
	}

	if startTime != nil && endTime != nil {
		ms := endTime.Sub(*startTime).Milliseconds()
		stats.DurationMs = &ms
	}
	return stats, true
}
