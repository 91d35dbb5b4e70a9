package routing

import (
	"context"
	"errors"
	"testing"

	"backend-traceview/internal/trace"

	"github.com/alicebob/miniredis/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/redis/go-redis/v9"
)

type fakeProvider struct {
	name  string
	calls int
	err   error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) FetchRoute(_ context.Context, from, to trace.Point) (Route, error) {
	f.calls++
	if f.err != nil {
		return Route{}, f.err
	}
	return Route{
		Provider:   f.name,
		DistanceM:  1000,
		DurationMs: 60000,
		Geometry:   geojson.NewGeometry(orb.LineString{{from.Lng, from.Lat}, {to.Lng, to.Lat}}),
	}, nil
}

func TestServiceUnknownProvider(t *testing.T) {
	svc := NewService(nil, &fakeProvider{name: "graphhopper"})
	_, err := svc.Route(context.Background(), "nope", from, to)
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestServiceRoute(t *testing.T) {
	provider := &fakeProvider{name: "graphhopper"}
	svc := NewService(nil, provider)

	route, err := svc.Route(context.Background(), "graphhopper", from, to)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if route.DistanceM != 1000 || route.Geometry == nil {
		t.Fatalf("unexpected route: %+v", route)
	}
}

func TestServiceRouteCached(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	provider := &fakeProvider{name: "graphhopper"}
	svc := NewService(cache, provider)

	first, err := svc.Route(context.Background(), "graphhopper", from, to)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	second, err := svc.Route(context.Background(), "graphhopper", from, to)
	if err != nil {
		t.Fatalf("cached route: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", provider.calls)
	}
	if first.DistanceM != second.DistanceM || second.Geometry == nil {
		t.Fatalf("cached route diverges: %+v vs %+v", first, second)
	}

	// a different endpoint pair misses the cache
	other := trace.Point{Lat: 47.0, Lng: 8.0}
	if _, err := svc.Route(context.Background(), "graphhopper", from, other); err != nil {
		t.Fatalf("route: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected cache miss for new pair, got %d calls", provider.calls)
	}
}

func TestServiceProviderErrorNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	provider := &fakeProvider{name: "graphhopper", err: &ProviderError{Status: 502, Message: "down"}}
	svc := NewService(cache, provider)

	if _, err := svc.Route(context.Background(), "graphhopper", from, to); err == nil {
		t.Fatalf("expected error")
	}
	if mr.Exists(cacheKey("graphhopper", from, to)) {
		t.Fatalf("failed route must not be cached")
	}
}
