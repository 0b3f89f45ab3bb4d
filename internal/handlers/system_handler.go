package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/PiusTetteh/301-GroupProject/internal/service"
	"github.com/PiusTetteh/301-GroupProject/internal/state"
)

// SystemHandler exposes the kernel lifecycle and the parsed system state.
type SystemHandler struct {
	supervisor *service.Supervisor
	store      *state.Store
}

func NewSystemHandler(supervisor *service.Supervisor, store *state.Store) *SystemHandler {
	return &SystemHandler{supervisor: supervisor, store: store}
}

// StatusResponse is the body of the lifecycle endpoints. Precondition
// outcomes (already_running, not_running) use it with a 200; real faults
// carry a message and a 500.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (h *SystemHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func (h *SystemHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Status())
}

func (h *SystemHandler) StartSystem(w http.ResponseWriter, r *http.Request) {
	if err := h.supervisor.Start(); err != nil {
		if errors.Is(err, service.ErrAlreadyRunning) {
			h.writeJSON(w, http.StatusOK, StatusResponse{Status: "already_running"})
			return
		}
		h.writeJSON(w, http.StatusInternalServerError, StatusResponse{Status: "error", Message: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, StatusResponse{Status: "started"})
}

func (h *SystemHandler) StopSystem(w http.ResponseWriter, r *http.Request) {
	if err := h.supervisor.Stop(); err != nil {
		if errors.Is(err, service.ErrNotRunning) {
			h.writeJSON(w, http.StatusOK, StatusResponse{Status: "not_running"})
			return
		}
		h.writeJSON(w, http.StatusInternalServerError, StatusResponse{Status: "error", Message: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, StatusResponse{Status: "stopped"})
}

func (h *SystemHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Stats())
}

func (h *SystemHandler) GetCores(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Cores())
}

func (h *SystemHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	if level := r.URL.Query().Get("level"); level != "" {
		h.writeJSON(w, http.StatusOK, h.supervisor.LogsByLevel(level, limit))
		return
	}

	h.writeJSON(w, http.StatusOK, h.supervisor.Logs(limit))
}
