package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// jsonEnvelope is the uniform shape of every JSON response.
type jsonEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, env jsonEnvelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("encode JSON response", "error", err)
	}
}

func respondData(w http.ResponseWriter, data any) {
	respondJSON(w, http.StatusOK, jsonEnvelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, jsonEnvelope{Success: false, Error: msg})
}
