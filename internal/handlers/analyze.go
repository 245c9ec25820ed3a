package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"email-insight/backend/internal/analysis"
	"email-insight/backend/internal/realtime"
)

const maxBatchSize = 100

func (a *API) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Email Analysis API is running. Send POST requests to /generate_reply",
	})
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Unix(),
		"version":   Version,
	})
}

// GenerateReply is the synchronous analysis endpoint. Validation failures
// are 400s naming the field; model unavailability is never a failure; any
// other fault is a generic 500 with detail kept to the log.
func (a *API) GenerateReply(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	result, err := a.Pipeline.Analyze(r.Context(), &req)
	if err != nil {
		var vErr *analysis.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		log.Printf("analysis failed for sender %s: %v", req.Sender, err)
		writeError(w, http.StatusInternalServerError, "error processing the request")
		return
	}

	log.Printf("email analyzed in %s: intent=%s urgency=%s", time.Since(start).Round(time.Millisecond), result.Intent, result.Urgency)
	writeJSON(w, http.StatusOK, result)
}

type batchRequest struct {
	Emails []analysis.Request `json:"emails"`
}

type batchResponse struct {
	JobIDs []string `json:"job_ids"`
}

// BatchAnalyze enqueues emails for asynchronous analysis; results stream to
// websocket subscribers. Requests are validated before they are accepted.
func (a *API) BatchAnalyze(w http.ResponseWriter, r *http.Request) {
	if a.Queue == nil {
		writeError(w, http.StatusServiceUnavailable, "batch analysis not configured")
		return
	}
	var req batchRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Emails) == 0 || len(req.Emails) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "emails must contain between 1 and 100 items")
		return
	}
	for i := range req.Emails {
		if err := req.Emails[i].Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	jobIDs := make([]string, 0, len(req.Emails))
	for i := range req.Emails {
		id, err := a.Queue.Enqueue(ctx, req.Emails[i])
		if err != nil {
			log.Printf("batch enqueue failed: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to enqueue batch")
			return
		}
		jobIDs = append(jobIDs, id)
	}
	writeJSON(w, http.StatusAccepted, batchResponse{JobIDs: jobIDs})
}

func (a *API) GetUsage(w http.ResponseWriter, r *http.Request) {
	if a.Usage == nil {
		writeError(w, http.StatusServiceUnavailable, "usage accounting not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := a.Usage.GetStats(ctx)
	if err != nil {
		log.Printf("usage stats query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load usage stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) ModelHealth(w http.ResponseWriter, r *http.Request) {
	if a.Provider == nil {
		writeError(w, http.StatusServiceUnavailable, "model provider not configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := a.Provider.HealthCheck(ctx)
	if err != nil && result == nil {
		writeError(w, http.StatusBadGateway, "model health check failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type tokenRequest struct {
	Client     string `json:"client"`
	Credential string `json:"credential"`
}

// IssueToken exchanges the shared service credential for a bearer token.
func (a *API) IssueToken(w http.ResponseWriter, r *http.Request) {
	if a.Auth == nil {
		writeError(w, http.StatusServiceUnavailable, "authentication not configured")
		return
	}
	var req tokenRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Client == "" || req.Credential == "" {
		writeError(w, http.StatusBadRequest, "client and credential are required")
		return
	}
	if err := a.Auth.VerifyCredential(req.Credential); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credential")
		return
	}
	token, err := a.Auth.GenerateToken(req.Client)
	if err != nil {
		log.Printf("token generation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (a *API) StreamAnalyses(w http.ResponseWriter, r *http.Request) {
	if a.Hub == nil {
		writeError(w, http.StatusServiceUnavailable, "streaming not configured")
		return
	}
	realtime.ServeWS(w, r, a.Hub)
}
