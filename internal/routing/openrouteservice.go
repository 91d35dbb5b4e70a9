package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"backend-traceview/internal/trace"

	"github.com/paulmach/orb/geojson"
)

// OpenRouteService proxies the openrouteservice directions API. Like
// GraphHopper, the key is attached server-side, as an Authorization header.
type OpenRouteService struct {
	base    string
	key     string
	profile string
	client  *Client
}

func NewOpenRouteService(base, key string, client *Client) *OpenRouteService {
	return &OpenRouteService{base: base, key: key, profile: "foot-hiking", client: client}
}

func (o *OpenRouteService) Name() string { return "openrouteservice" }

func (o *OpenRouteService) FetchRoute(ctx context.Context, from, to trace.Point) (Route, error) {
	body, err := json.Marshal(map[string]any{
		"coordinates": [][]float64{{from.Lng, from.Lat}, {to.Lng, to.Lat}},
	})
	if err != nil {
		return Route{}, err
	}

	endpoint := o.base + "/v2/directions/" + o.profile + "/geojson"
	resp, err := o.client.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", o.key)
		return req, nil
	})
	if err != nil {
		return Route{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Route{}, err
	}
	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(raw, &failure)
		return Route{}, &ProviderError{Status: resp.StatusCode, Message: failure.Error.Message}
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return Route{}, err
	}
	if len(fc.Features) == 0 {
		return Route{}, &ProviderError{Status: resp.StatusCode, Message: "no route found"}
	}

	feature := fc.Features[0]
	route := Route{
		Provider: o.Name(),
		Geometry: geojson.NewGeometry(feature.Geometry),
	}
	if summary, ok := feature.Properties["summary"].(map[string]any); ok {
		if d, ok := summary["distance"].(float64); ok {
			route.DistanceM = d
		}
		if d, ok := summary["duration"].(float64); ok {
			route.DurationMs = int64(d * 1000)
		}
	}
	return route, nil
}
