package track

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backend-traceview/internal/db"
	"backend-traceview/internal/stream"
	"backend-traceview/internal/trace"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/redis/go-redis/v9"
)

var (
	ErrTooFewPoints = errors.New("track needs at least two points")
	ErrNotFound     = errors.New("track not found")
)

const statsCacheTTL = time.Hour

type Service struct {
	db    db.Querier
	cache *redis.Client
	hub   *stream.Hub
}

func NewService(db db.Querier, cache *redis.Client, hub *stream.Hub) *Service {
	return &Service{db: db, cache: cache, hub: hub}
}

// Create stores an uploaded track with its statistics and announces it to
// connected map clients.
func (s *Service) Create(ctx context.Context, userID, name string, points []trace.Point) (Track, error) {
	stats, ok := trace.Compute(points)
	if !ok {
		return Track{}, ErrTooFewPoints
	}

	trk := Track{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           name,
		PointCount:     stats.PointCount,
		DistanceM:      stats.TotalDistanceM,
		ElevationGainM: stats.ElevationGainM,
		ElevationLossM: stats.ElevationLossM,
		MinElevationM:  stats.MinElevationM,
		MaxElevationM:  stats.MaxElevationM,
		DurationMs:     stats.DurationMs,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO tracks (id, user_id, name, point_count, distance_m, elevation_gain_m, elevation_loss_m, min_elevation_m, max_elevation_m, duration_ms)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at
	`, trk.ID, trk.UserID, trk.Name, trk.PointCount, trk.DistanceM, trk.ElevationGainM, trk.ElevationLossM, trk.MinElevationM, trk.MaxElevationM, trk.DurationMs)
	if err := row.Scan(&trk.CreatedAt); err != nil {
		return Track{}, err
	}

	for i, p := range points {
		_, err := s.db.Exec(ctx, `
			INSERT INTO track_points (track_id, seq, location, elevation_m, recorded_at)
			VALUES ($1,$2, ST_SetSRID(ST_MakePoint($3,$4), 4326)::geography, $5, $6)
		`, trk.ID, i, p.Lng, p.Lat, p.ElevationM, p.Time)
		if err != nil {
			return Track{}, err
		}
	}

	if s.hub != nil {
		s.hub.PublishTrack(stream.TrackEvent{
			TrackID:    trk.ID,
			Name:       trk.Name,
			UserID:     trk.UserID,
			DistanceM:  trk.DistanceM,
			PointCount: trk.PointCount,
		})
	}
	return trk, nil
}

func (s *Service) Get(ctx context.Context, id string) (Track, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, point_count, distance_m, elevation_gain_m, elevation_loss_m, min_elevation_m, max_elevation_m, duration_ms, created_at
		FROM tracks WHERE id=$1
	`, id)
	var trk Track
	if err := row.Scan(&trk.ID, &trk.UserID, &trk.Name, &trk.PointCount, &trk.DistanceM, &trk.ElevationGainM, &trk.ElevationLossM, &trk.MinElevationM, &trk.MaxElevationM, &trk.DurationMs, &trk.CreatedAt); err != nil {
		return Track{}, err
	}
	return trk, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Track, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, point_count, distance_m, elevation_gain_m, elevation_loss_m, min_elevation_m, max_elevation_m, duration_ms, created_at
		FROM tracks WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var trk Track
		if err := rows.Scan(&trk.ID, &trk.UserID, &trk.Name, &trk.PointCount, &trk.DistanceM, &trk.ElevationGainM, &trk.ElevationLossM, &trk.MinElevationM, &trk.MaxElevationM, &trk.DurationMs, &trk.CreatedAt); err != nil {
			return nil, err
		}
		tracks = append(tracks, trk)
	}
	return tracks, nil
}

// Points returns the stored point sequence in upload order.
func (s *Service) Points(ctx context.Context, id string) ([]trace.Point, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ST_Y(location::geometry), ST_X(location::geometry), elevation_m, recorded_at
		FROM track_points WHERE track_id=$1
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []trace.Point
	for rows.Next() {
		var p trace.Point
		if err := rows.Scan(&p.Lat, &p.Lng, &p.ElevationM, &p.Time); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tracks WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, statsCacheKey(id)).Err()
	}
	return nil
}

// Stats recomputes statistics from the stored points, caching the result.
// Tracks are immutable, so a cached value can only ever equal a fresh
// recomputation.
func (s *Service) Stats(ctx context.Context, id string) (trace.Statistics, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, statsCacheKey(id)).Bytes(); err == nil {
			var stats trace.Statistics
			if err := json.Unmarshal(cached, &stats); err == nil {
				return stats, nil
			}
		}
	}

	points, err := s.Points(ctx, id)
	if err != nil {
		return trace.Statistics{}, err
	}
	stats, ok := trace.Compute(points)
	if !ok {
		return trace.Statistics{}, ErrTooFewPoints
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			_ = s.cache.Set(ctx, statsCacheKey(id), payload, statsCacheTTL).Err()
		}
	}
	return stats, nil
}

// GeoJSON renders the track as a LineString feature for the map layer.
func (s *Service) GeoJSON(ctx context.Context, id string) (*geojson.Feature, error) {
	trk, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	points, err := s.Points(ctx, id)
	if err != nil {
		return nil, err
	}

	line := make(orb.LineString, 0, len(points))
	for _, p := range points {
		line = append(line, orb.Point{p.Lng, p.Lat})
	}

	feature := geojson.NewFeature(line)
	feature.ID = trk.ID
	feature.Properties["name"] = trk.Name
	feature.Properties["distance_m"] = trk.DistanceM
	feature.Properties["point_count"] = trk.PointCount
	return feature, nil
}

func statsCacheKey(id string) string {
	return "track:stats:" + id
}
