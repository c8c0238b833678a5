package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// StaticProvider always reports the same position (GEO_LATITUDE / GEO_LONGITUDE)
type StaticProvider struct {
	Position Position
}

func (s StaticProvider) CurrentPosition(ctx context.Context, _ Options) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	return s.Position, nil
}

// HTTPProvider resolves the position from an IP geolocation service returning JSON such as
//
//	{"latitude": 14.69, "longitude": -17.44, "accuracy": 5000}
//
// The short lat/lon field names are also accepted. Results are never cached.
type HTTPProvider struct {
	URL    string
	Client *http.Client
}

func NewHTTPProvider(url string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{URL: url, Client: client}
}

func (h *HTTPProvider) CurrentPosition(ctx context.Context, _ Options) (Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return Position{}, fmt.Errorf("creating geolocation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := h.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Position{}, ctx.Err()
		}
		return Position{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return Position{}, fmt.Errorf("%w: geolocation service returned %d", ErrPermissionDenied, res.StatusCode)
	case res.StatusCode != http.StatusOK:
		return Position{}, fmt.Errorf("%w: geolocation service returned %d", ErrPositionUnavailable, res.StatusCode)
	}

	var body struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Lat       *float64 `json:"lat"`
		Lon       *float64 `json:"lon"`
		Accuracy  float64  `json:"accuracy"`
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<16)).Decode(&body); err != nil {
		return Position{}, fmt.Errorf("%w: decoding response: %v", ErrPositionUnavailable, err)
	}

	lat, lon := body.Latitude, body.Longitude
	if lat == nil || lon == nil {
		lat, lon = body.Lat, body.Lon
	}
	if lat == nil || lon == nil {
		return Position{}, fmt.Errorf("%w: response has no coordinates", ErrPositionUnavailable)
	}

	return Position{Latitude: *lat, Longitude: *lon, Accuracy: body.Accuracy}, nil
}
