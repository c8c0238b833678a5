// Package clienttest provides a fake marketplace API for testing code built on the client package.
//
//	srv := clienttest.NewServer(t)
//	srv.JSON(http.MethodPost, "/concessions/{id}/valider/", http.StatusOK, `{"statut": "VALIDE"}`)
//	c := client.New(srv.URL)
//
// Every request is recorded and can be inspected with Requests and LastRequest.
// Routes that were not registered answer 404 {"detail": "Pas trouvé."}.
package clienttest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/autoloc-sn/autoloc/internal/auth"
	"github.com/go-chi/chi/v5"
)

// MaxRequestBody bounds the request bodies the fake API accepts
const MaxRequestBody = 10 << 20

// Request is a recorded request
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Server is an httptest.Server routing with chi
type Server struct {
	*httptest.Server
	Router chi.Router

	mu       sync.Mutex
	requests []Request
}

// NewServer starts a fake API, closed when the test ends
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{}
	router := chi.NewRouter()
	router.Use(s.record)
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, `{"detail": "Pas trouvé."}`)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusMethodNotAllowed, `{"detail": "Méthode non autorisée."}`)
	})

	s.Router = router
	s.Server = httptest.NewServer(router)
	t.Cleanup(s.Close)
	return s
}

// JSON registers a route answering a fixed status and JSON body
func (s *Server) JSON(method, pattern string, status int, body string) {
	s.Router.MethodFunc(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Binary registers a route answering a fixed binary payload
func (s *Server) Binary(method, pattern, contentType string, content []byte) {
	s.Router.MethodFunc(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	})
}

// Handle registers a custom handler
func (s *Server) Handle(method, pattern string, h http.HandlerFunc) {
	s.Router.MethodFunc(method, pattern, h)
}

// Authenticated registers a JSON route that requires a current bearer access token
func (s *Server) Authenticated(method, pattern string, status int, body string) {
	s.Router.With(auth.RequireAccessToken).MethodFunc(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Requests returns the recorded requests in arrival order
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request, the zero Request if none arrived
func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBody))
		if err != nil {
			WriteJSON(w, http.StatusRequestEntityTooLarge, `{"detail": "Requête trop volumineuse."}`)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// WriteJSON writes a raw JSON body with the given status
func WriteJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
