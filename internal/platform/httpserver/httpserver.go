package httpserver

import (
	"net/http"
	"time"
)

// Defaults. WriteTimeout stays above the router's per-request timeout so the
// timeout response can still be written.
const (
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 35 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
)

type Option func(*http.Server)

func WithWriteTimeout(d time.Duration) Option {
	return func(s *http.Server) {
		if d > 0 {
			s.WriteTimeout = d
		}
	}
}

func WithIdleTimeout(d time.Duration) Option {
	return func(s *http.Server) {
		if d > 0 {
			s.IdleTimeout = d
		}
	}
}

// New builds the API server.
func New(addr string, handler http.Handler, opts ...Option) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}
