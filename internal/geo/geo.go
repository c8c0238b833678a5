// Package geo resolves the user's position and computes distances between coordinates.
//
// The position is supplied by a Provider: a fixed position from configuration or an IP geolocation service.
package geo

import (
	"context"
	"errors"
	"math"
	"time"
)

// PositionTimeout bounds GetUserPosition
const PositionTimeout = 10 * time.Second

// Messages returned to the user
const (
	MsgPermissionDenied = "Permission de géolocalisation refusée"
	MsgUnavailable      = "Position indisponible"
	MsgTimeout          = "Délai de géolocalisation dépassé"
	MsgUnsupported      = "La géolocalisation n'est pas supportée"
	MsgGeneric          = "Erreur de géolocalisation"
)

var (
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
)

// Position is a WGS84 coordinate. Accuracy is the radius of uncertainty in metres, 0 when unknown.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// Options are passed to the provider on every lookup
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaximumAge is the age of a cached position the caller accepts; 0 requires a fresh lookup
	MaximumAge time.Duration
}

// Provider looks up the current position
type Provider interface {
	CurrentPosition(ctx context.Context, opts Options) (Position, error)
}

// ErrorCode classifies geolocation failures
type ErrorCode int

const (
	CodeUnknown ErrorCode = iota
	CodePermissionDenied
	CodePositionUnavailable
	CodeTimeout
	CodeUnsupported
)

// Error is returned by GetUserPosition. Error() is the message shown to the user.
type Error struct {
	Code ErrorCode
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case CodePermissionDenied:
		return MsgPermissionDenied
	case CodePositionUnavailable:
		return MsgUnavailable
	case CodeTimeout:
		return MsgTimeout
	case CodeUnsupported:
		return MsgUnsupported
	default:
		return MsgGeneric
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// GetUserPosition asks the provider for a fresh, high accuracy position and gives up after PositionTimeout.
func GetUserPosition(ctx context.Context, p Provider) (Position, error) {
	if p == nil {
		return Position{}, &Error{Code: CodeUnsupported}
	}

	opts := Options{
		HighAccuracy: true,
		Timeout:      PositionTimeout,
		MaximumAge:   0,
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	type result struct {
		pos Position
		err error
	}
	done := make(chan result, 1)

	// providers are not trusted to honour the context deadline
	go func() {
		pos, err := p.CurrentPosition(ctx, opts)
		done <- result{pos: pos, err: err}
	}()

	select {
	case <-ctx.Done():
		return Position{}, classify(ctx.Err())
	case r := <-done:
		if r.err != nil {
			return Position{}, classify(r.err)
		}
		return r.pos, nil
	}
}

func classify(err error) *Error {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return &Error{Code: CodePermissionDenied, Err: err}
	case errors.Is(err, ErrPositionUnavailable):
		return &Error{Code: CodePositionUnavailable, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Code: CodeTimeout, Err: err}
	default:
		return &Error{Code: CodeUnknown, Err: err}
	}
}

const earthRadiusKm = 6371

// CalculateDistance returns the great circle distance in km between two coordinates (haversine),
// rounded to one decimal.
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return math.Round(earthRadiusKm*c*10) / 10
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
