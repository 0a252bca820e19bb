// Package api exposes the admin HTTP interface: browsing stored records,
// batch mutations, and triggering ad-hoc runs.
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/metrics"
	"github.com/mediaharvest/mediaharvest/internal/store"
)

// StoreOpener resolves the store for one site. The server caches opened
// stores for its lifetime.
type StoreOpener func(site string) (*store.Store, error)

// Server wires HTTP handlers to the per-site stores and the run manager.
type Server struct {
	router chi.Router
	runs   *RunManager
	log    *zap.Logger

	openStore StoreOpener
	mu        sync.Mutex
	stores    map[string]*store.Store
}

// NewServer constructs a Server with middleware and routes.
func NewServer(openStore StoreOpener, runs *RunManager, log *zap.Logger) *Server {
	s := &Server{
		runs:      runs,
		log:       log,
		openStore: openStore,
		stores:    map[string]*store.Store{},
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoverMiddleware(log))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/sites/{site}", func(r chi.Router) {
			r.Get("/records", s.listRecords)
			r.Get("/tags", s.listTags)
			r.Post("/records/status", s.batchStatus)
			r.Post("/records/delete", s.batchDelete)
		})
		r.Route("/runs", func(r chi.Router) {
			r.Post("/", s.triggerRun)
			r.Get("/{run_id}", s.getRun)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases every store the server opened.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for site, st := range s.stores {
		if err := st.Close(); err != nil {
			s.log.Warn("Closing site store failed", zap.String("site", site), zap.Error(err))
		}
	}
	s.stores = map[string]*store.Store{}
}

func (s *Server) siteStore(site string) (*store.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stores[site]; ok {
		return st, nil
	}
	st, err := s.openStore(site)
	if err != nil {
		return nil, err
	}
	s.stores[site] = st
	return st, nil
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
