package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"backend-traceview/internal/trace"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GraphHopper proxies the GraphHopper Directions API. The API key is
// injected here, server-side, and never reaches the browser.
type GraphHopper struct {
	base    string
	key     string
	profile string
	client  *Client
}

func NewGraphHopper(base, key string, client *Client) *GraphHopper {
	return &GraphHopper{base: base, key: key, profile: "foot", client: client}
}

func (g *GraphHopper) Name() string { return "graphhopper" }

func (g *GraphHopper) FetchRoute(ctx context.Context, from, to trace.Point) (Route, error) {
	u, err := url.Parse(g.base + "/route")
	if err != nil {
		return Route{}, err
	}
	q := u.Query()
	q.Add("point", fmt.Sprintf("%f,%f", from.Lat, from.Lng))
	q.Add("point", fmt.Sprintf("%f,%f", to.Lat, to.Lng))
	q.Set("profile", g.profile)
	q.Set("points_encoded", "false")
	q.Set("key", g.key)
	u.RawQuery = q.Encode()

	resp, err := g.client.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	})
	if err != nil {
		return Route{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Message string `json:"message"`
		Paths   []struct {
			Distance float64 `json:"distance"`
			Time     int64   `json:"time"`
			Points   struct {
				Coordinates [][]float64 `json:"coordinates"`
			} `json:"points"`
		} `json:"paths"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Route{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Route{}, &ProviderError{Status: resp.StatusCode, Message: payload.Message}
	}
	if len(payload.Paths) == 0 {
		return Route{}, &ProviderError{Status: resp.StatusCode, Message: "no route found"}
	}

	path := payload.Paths[0]
	line := make(orb.LineString, 0, len(path.Points.Coordinates))
	for _, c := range path.Points.Coordinates {
		if len(c) < 2 {
			continue
		}
		line = append(line, orb.Point{c[0], c[1]})
	}

	return Route{
		Provider:   g.Name(),
		DistanceM:  path.Distance,
		DurationMs: path.Time,
		Geometry:   geojson.NewGeometry(line),
	}, nil
}
