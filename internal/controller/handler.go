package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mathiascn/obs-controller/internal/platform/metrics"
)

// Handler exposes the replay lifecycle over HTTP. Session-mutating
// operations are serialized with a mutex, which discharges the external
// serialization the controller types require from their caller.
type Handler struct {
	mu      sync.Mutex
	replay  *ReplayController
	session *Session
	index   *DirectoryIndex
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler over the given controller components.
// Metrics may be nil to disable metric recording (e.g. in tests).
func NewHandler(replay *ReplayController, session *Session, index *DirectoryIndex, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		replay:  replay,
		session: session,
		index:   index,
		log:     log,
		metrics: m,
	}
}

// statusResponse is the JSON payload for GET /status.
type statusResponse struct {
	ProcessRunning bool       `json:"process_running"`
	Connected      bool       `json:"connected"`
	TotalBytes     int64      `json:"total_bytes"`
	LatestPath     string     `json:"latest_path,omitempty"`
	LatestModTime  *time.Time `json:"latest_modified_at,omitempty"`
}

// saveResponse is the JSON payload for a confirmed POST /replay/save.
type saveResponse struct {
	Path string `json:"path"`
}

// StartReplay handles POST /replay/start.
func (h *Handler) StartReplay(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.replay.StartBuffer(); err != nil {
		h.writeError(w, "start replay buffer failed", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// StopReplay handles POST /replay/stop.
func (h *Handler) StopReplay(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.replay.StopBuffer(); err != nil {
		h.writeError(w, "stop replay buffer failed", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SaveReplay handles POST /replay/save. The request blocks until the saved
// file is observed on disk or the save deadline elapses.
func (h *Handler) SaveReplay(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.replay.SaveBuffer(r.Context()); err != nil {
		if h.metrics != nil {
			h.metrics.IncSaveFailures()
		}
		h.writeError(w, "save replay failed", err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncSaves()
	}

	resp := saveResponse{}
	if latest, ok := h.index.Latest(); ok {
		resp.Path = latest.Path
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Status handles GET /status with a snapshot of process, session, and
// directory state. The directory queries are read-only and safe to run
// concurrently with session operations, so no lock is taken.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		ProcessRunning: h.session.ProcessRunning(),
		Connected:      h.session.IsConnected(),
		TotalBytes:     h.index.TotalSize(),
	}
	if latest, ok := h.index.Latest(); ok {
		resp.LatestPath = latest.Path
		mod := latest.ModTime
		resp.LatestModTime = &mod
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Version handles GET /version, probing OBS over a throwaway session.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"obs_version": h.session.Version()})
}

// Healthz handles GET /healthz with a non-mutating websocket liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if !h.session.HealthCheck() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// writeError maps controller errors to HTTP status codes: precondition
// violations are 409, a save timeout is 504, everything else is 500.
func (h *Handler) writeError(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, slog.String("error", err.Error()))

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrProcessNotRunning), errors.Is(err, ErrNotConnected):
		status = http.StatusConflict
	case errors.Is(err, ErrSaveTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Debug("write response failed", slog.String("error", err.Error()))
	}
}
