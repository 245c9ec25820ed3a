package handlers

import (
	"encoding/json"
	"net/http"

	"email-insight/backend/internal/analysis"
	"email-insight/backend/internal/auth"
	"email-insight/backend/internal/llm"
	"email-insight/backend/internal/queue"
	"email-insight/backend/internal/realtime"
)

const Version = "1.0.0"

type API struct {
	Pipeline *analysis.Pipeline
	Auth     *auth.Service
	Usage    *llm.UsageStore
	Queue    *queue.Queue
	Hub      *realtime.Hub
	Provider llm.Provider
}

func NewAPI(pipeline *analysis.Pipeline, authService *auth.Service, usage *llm.UsageStore, q *queue.Queue, hub *realtime.Hub, provider llm.Provider) *API {
	return &API{
		Pipeline: pipeline,
		Auth:     authService,
		Usage:    usage,
		Queue:    q,
		Hub:      hub,
		Provider: provider,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
