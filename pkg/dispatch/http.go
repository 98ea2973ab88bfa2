package dispatch

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"
)

// Service exposes a provider over HTTP.
type Service struct {
	l hclog.Logger
	p Provider
}

// NewService wraps p.
func NewService(l hclog.Logger, p Provider) *Service {
	return &Service{
		l: l.Named("dispatch"),
		p: p,
	}
}

// HTTPEntry provides the mountpoint for this service into the shared
// webserver routing tree.
func (s *Service) HTTPEntry() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.httpList)
	r.Post("/", s.httpDispatch)
	return r
}

func (s *Service) httpList(w http.ResponseWriter, r *http.Request) {
	builds, err := s.p.List()
	if err != nil {
		s.l.Warn("Unable to list builds", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if builds == nil {
		builds = []Request{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(builds); err != nil {
		s.l.Warn("Error encoding builds", "error", err)
	}
}

func (s *Service) httpDispatch(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := s.p.Dispatch(req)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusAccepted)
	case errors.As(err, &ErrBusy{}):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		s.l.Warn("Dispatch failed", "contract", req.Contract, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}
