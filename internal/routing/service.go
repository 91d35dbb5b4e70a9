package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend-traceview/internal/trace"

	"github.com/paulmach/orb/geojson"
	"github.com/redis/go-redis/v9"
)

var ErrUnknownProvider = errors.New("unknown routing provider")

const routeCacheTTL = time.Hour

// Route is what the browser gets back: summary numbers plus a GeoJSON
// geometry it can drop straight onto the map.
type Route struct {
	Provider   string            `json:"provider"`
	DistanceM  float64           `json:"distance_m"`
	DurationMs int64             `json:"duration_ms"`
	Geometry   *geojson.Geometry `json:"geometry"`
}

// Provider fetches an interpolated route between two points from an
// external directions API.
type Provider interface {
	Name() string
	FetchRoute(ctx context.Context, from, to trace.Point) (Route, error)
}

// EndpointSource resolves a track id to its saved start/end picks.
type EndpointSource interface {
	Endpoints(ctx context.Context, trackID string) (trace.Point, trace.Point, error)
}

type Service struct {
	providers map[string]Provider
	cache     *redis.Client
}

func NewService(cache *redis.Client, providers ...Provider) *Service {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Service{providers: byName, cache: cache}
}

func (s *Service) Route(ctx context.Context, provider string, from, to trace.Point) (Route, error) {
	p, ok := s.providers[provider]
	if !ok {
		return Route{}, ErrUnknownProvider
	}

	key := cacheKey(provider, from, to)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var route Route
			if err := json.Unmarshal(cached, &route); err == nil {
				return route, nil
			}
		}
	}

	route, err := p.FetchRoute(ctx, from, to)
	if err != nil {
		return Route{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(route); err == nil {
			_ = s.cache.Set(ctx, key, payload, routeCacheTTL).Err()
		}
	}
	return route, nil
}

// 5 decimal places is roughly a meter, enough to coalesce repeated
// requests for the same pair of picked points.
func cacheKey(provider string, from, to trace.Point) string {
	return fmt.Sprintf("route:%s:%.5f,%.5f:%.5f,%.5f", provider, from.Lat, from.Lng, to.Lat, to.Lng)
}
