// Package http assembles the routers of the scbuild services behind a
// single listener.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"
)

// Server serves the receiver and dispatch routers mounted on it.
type Server struct {
	l hclog.Logger
	r chi.Router
	n *http.Server
}

// New initializes the server with its default routers.
func New(l hclog.Logger) (*Server, error) {
	s := Server{
		l: l.Named("http"),
		r: chi.NewRouter(),
	}
	s.n = &http.Server{
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  s.l.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}),
		NoColor: true,
	}))
	s.r.Use(middleware.Recoverer)
	s.r.Use(middleware.Heartbeat("/healthz"))

	s.r.Get("/", s.rootIndex)

	return &s, nil
}

// Serve listens on bind until the listener fails or Shutdown is
// called, in which case it returns nil.
func (s *Server) Serve(bind string) error {
	s.l.Info("HTTP is starting", "bind", bind)
	s.n.Addr = bind
	if err := s.n.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight
// requests, such as package uploads, until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.l.Info("HTTP is stopping")
	return s.n.Shutdown(ctx)
}

// Handler returns the routing tree, for serving it some other way.
func (s *Server) Handler() http.Handler {
	return s.r
}

// Mount attaches a set of routes to the subpath specified by the path
// argument.
func (s *Server) Mount(path string, router chi.Router) {
	s.r.Mount(path, router)
}

func (s *Server) rootIndex(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "scbuild is running, check other handlers for more information")
}
