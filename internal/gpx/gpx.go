package gpx

import (
	"errors"
	"math"

	"backend-traceview/internal/trace"

	gpxgo "github.com/tkrajina/gpxgo/gpx"
)

// ErrNoPoints reports a well-formed GPX document without a single usable
// track point.
var ErrNoPoints = errors.New("gpx file contains no track points")

// Parse reads GPX bytes and flattens all tracks and segments into one point
// sequence in file order. Points with non-finite coordinates are dropped
// here so the statistics pass never sees NaN. Elevation and timestamps are
// carried over only when the file records them.
func Parse(data []byte) (string, []trace.Point, error) {
	doc, err := gpxgo.ParseBytes(data)
	if err != nil {
		return "", nil, err
	}

	var points []trace.Point
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				if !finite(p.Latitude) || !finite(p.Longitude) {
					continue
				}
				point := trace.Point{Lat: p.Latitude, Lng: p.Longitude}
				if p.Elevation.NotNull() {
					e := p.Elevation.Value()
					point.ElevationM = &e
				}
				if !p.Timestamp.IsZero() {
					ts := p.Timestamp
					point.Time = &ts
				}
				points = append(points, point)
			}
		}
	}
	if len(points) == 0 {
		return "", nil, ErrNoPoints
	}

	name := doc.Name
	if name == "" && len(doc.Tracks) > 0 {
		name = doc.Tracks[0].Name
	}
	return name, points, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
