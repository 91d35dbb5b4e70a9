package selection

import (
	"context"
	"errors"

	"backend-traceview/internal/db"
	"backend-traceview/internal/trace"
)

var (
	ErrInvalidSlot     = errors.New("slot must be start or end")
	ErrIndexOutOfRange = errors.New("point_index outside track")
	ErrIncomplete      = errors.New("track needs both start and end selections")
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Set upserts one endpoint pick, snapping the coordinate to the stored
// track point at the given index.
func (s *Service) Set(ctx context.Context, trackID, slot string, pointIndex int) (Selection, error) {
	if slot != SlotStart && slot != SlotEnd {
		return Selection{}, ErrInvalidSlot
	}

	sel := Selection{TrackID: trackID, Slot: slot, PointIndex: pointIndex}
	err := s.db.QueryRow(ctx, `
		SELECT ST_Y(location::geometry), ST_X(location::geometry)
		FROM track_points WHERE track_id=$1 AND seq=$2
	`, trackID, pointIndex).Scan(&sel.Lat, &sel.Lng)
	if err != nil {
		return Selection{}, ErrIndexOutOfRange
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO track_selections (track_id, slot, point_index, location)
		VALUES ($1,$2,$3, ST_SetSRID(ST_MakePoint($4,$5), 4326)::geography)
		ON CONFLICT (track_id, slot) DO UPDATE
		SET point_index=EXCLUDED.point_index, location=EXCLUDED.location, updated_at=now()
		RETURNING updated_at
	`, sel.TrackID, sel.Slot, sel.PointIndex, sel.Lng, sel.Lat)
	if err := row.Scan(&sel.UpdatedAt); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

// List returns the stored selections for a track, absent slots omitted.
func (s *Service) List(ctx context.Context, trackID string) ([]Selection, error) {
	rows, err := s.db.Query(ctx, `
		SELECT track_id, slot, point_index, ST_Y(location::geometry), ST_X(location::geometry), updated_at
		FROM track_selections WHERE track_id=$1
		ORDER BY slot
	`, trackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var selections []Selection
	for rows.Next() {
		var sel Selection
		if err := rows.Scan(&sel.TrackID, &sel.Slot, &sel.PointIndex, &sel.Lat, &sel.Lng, &sel.UpdatedAt); err != nil {
			return nil, err
		}
		selections = append(selections, sel)
	}
	return selections, nil
}

// Endpoints returns the picked start and end as route endpoints. It is the
// routing proxy's way of resolving "?track=<id>" requests.
func (s *Service) Endpoints(ctx context.Context, trackID string) (trace.Point, trace.Point, error) {
	selections, err := s.List(ctx, trackID)
	if err != nil {
		return trace.Point{}, trace.Point{}, err
	}

	var from, to *Selection
	for i := range selections {
		switch selections[i].Slot {
		case SlotStart:
			from = &selections[i]
		case SlotEnd:
			to = &selections[i]
		}
	}
	if from == nil || to == nil {
		return trace.Point{}, trace.Point{}, ErrIncomplete
	}
	return trace.Point{Lat: from.Lat, Lng: from.Lng}, trace.Point{Lat: to.Lat, Lng: to.Lng}, nil
}
