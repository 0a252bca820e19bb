package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/pipeline"
)

// RunFunc executes one run for a site. The serve command binds this to a
// fully wired pipeline runner.
type RunFunc func(ctx context.Context, site string, mode pipeline.Mode, params pipeline.Params) (pipeline.Summary, error)

// RunState is the tracked lifecycle of one triggered run.
type RunState struct {
	ID         string            `json:"id"`
	Site       string            `json:"site"`
	Mode       pipeline.Mode     `json:"mode"`
	Status     string            `json:"status"` // queued, running, completed, error
	Error      string            `json:"error,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	Summary    *pipeline.Summary `json:"summary,omitempty"`
}

// RunManager executes runs in the background, serializing runs per site.
// One site's store has a single writer at a time; different sites run
// concurrently.
type RunManager struct {
	run RunFunc
	log *zap.Logger

	mu        sync.Mutex
	siteLocks map[string]*sync.Mutex
	states    map[string]*RunState
}

// NewRunManager builds a RunManager around a run function.
func NewRunManager(run RunFunc, log *zap.Logger) *RunManager {
	return &RunManager{
		run:       run,
		log:       log,
		siteLocks: map[string]*sync.Mutex{},
		states:    map[string]*RunState{},
	}
}

// Trigger starts a run in the background and returns its tracking ID.
func (m *RunManager) Trigger(site string, mode pipeline.Mode, params pipeline.Params) string {
	id := uuid.NewString()
	state := &RunState{
		ID:        id,
		Site:      site,
		Mode:      mode,
		Status:    "queued",
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	m.states[id] = state
	lock, ok := m.siteLocks[site]
	if !ok {
		lock = &sync.Mutex{}
		m.siteLocks[site] = lock
	}
	m.mu.Unlock()

	go m.execute(state, lock, params)
	return id
}

func (m *RunManager) execute(state *RunState, lock *sync.Mutex, params pipeline.Params) {
	lock.Lock()
	defer lock.Unlock()

	m.setStatus(state.ID, func(s *RunState) { s.Status = "running" })
	summary, err := m.run(context.Background(), state.Site, state.Mode, params)

	now := time.Now()
	m.setStatus(state.ID, func(s *RunState) {
		s.FinishedAt = &now
		s.Summary = &summary
		if err != nil {
			s.Status = "error"
			s.Error = err.Error()
		} else {
			s.Status = "completed"
		}
	})
	if err != nil {
		m.log.Error("Triggered run failed",
			zap.String("run", state.ID), zap.String("site", state.Site), zap.Error(err))
	}
}

func (m *RunManager) setStatus(id string, mutate func(*RunState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[id]; ok {
		mutate(s)
	}
}

// Get returns a copy of the run state.
func (m *RunManager) Get(id string) (RunState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[id]
	if !ok {
		return RunState{}, false
	}
	return *s, true
}

type triggerRunRequest struct {
	Site      string `json:"site"`
	Mode      string `json:"mode"`
	Pages     string `json:"pages,omitempty"`
	Date      string `json:"date,omitempty"`
	Tag       string `json:"tag,omitempty"`
	Search    string `json:"search,omitempty"`
	StartPage int    `json:"start_page,omitempty"`
	EndPage   string `json:"end_page,omitempty"`
}

func (s *Server) triggerRun(w http.ResponseWriter, r *http.Request) {
	var req triggerRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Site == "" {
		writeError(w, http.StatusBadRequest, "site is required")
		return
	}
	mode, err := pipeline.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := s.runs.Trigger(req.Site, mode, pipeline.Params{
		Pages:     req.Pages,
		Date:      req.Date,
		Tag:       req.Tag,
		Search:    req.Search,
		StartPage: req.StartPage,
		EndPage:   req.EndPage,
	})
	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": id})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	state, ok := s.runs.Get(chi.URLParam(r, "run_id"))
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, state)
}
