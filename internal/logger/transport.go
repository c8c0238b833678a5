package logger

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the id generated for each outgoing API request
const RequestIDHeader = "X-Request-ID"

type contextKey struct {
	name string
}

var requestIDKey = contextKey{"request_id"}

// ContextWithRequestID makes the supplied id the X-Request-ID of requests sent with ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextRequestID returns the request id stored with ContextWithRequestID
func ContextRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// Transport is an http.RoundTripper that tags every request with a request id and
// logs its completion. Failed round trips are logged at warn level, responses by status.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// NewTransport wraps base (http.DefaultTransport when nil)
func NewTransport(base http.RoundTripper, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{Base: base, Logger: logger}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID, ok := ContextRequestID(req.Context())
	if !ok {
		requestID = uuid.NewString()
	}

	// RoundTrip must not modify the caller's request
	req = req.Clone(req.Context())
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	res, err := t.Base.RoundTrip(req)
	duration := time.Since(start)

	logAttrs := []slog.Attr{
		slog.String("type", "api"),
		slog.String("request_id", requestID),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	}

	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
		t.Logger.LogAttrs(req.Context(), slog.LevelWarn, "request failed", logAttrs...)
		return nil, err
	}

	logAttrs = append(logAttrs,
		slog.Int("status", res.StatusCode),
		slog.Duration("duration", duration),
	)

	switch {
	case res.StatusCode >= 500:
		t.Logger.LogAttrs(req.Context(), slog.LevelError, "request completed", logAttrs...)
	case res.StatusCode >= 400:
		t.Logger.LogAttrs(req.Context(), slog.LevelWarn, "request completed", logAttrs...)
	default:
		t.Logger.LogAttrs(req.Context(), slog.LevelDebug, "request completed", logAttrs...)
	}

	return res, nil
}
