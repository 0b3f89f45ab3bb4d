package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, "healthy")
}

func ReadyCheck(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, "ready")
}

func writeHealth(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{
		Status:    status,
		Service:   "multikernel-monitor",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
