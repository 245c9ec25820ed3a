package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"email-insight/backend/internal/analysis"
	"email-insight/backend/internal/auth"
)

type staticModel struct {
	text string
	err  error
}

func (s staticModel) Complete(ctx context.Context, prompt string) (string, error) {
	return s.text, s.err
}

func newTestAPI(model analysis.Completer) *API {
	return NewAPI(analysis.NewPipeline(model), nil, nil, nil, nil, nil)
}

func TestGenerateReply(t *testing.T) {
	api := newTestAPI(staticModel{err: errors.New("offline")})
	body := `{"email_subject":"Cannot Access Email - Urgent","email_body":"I cannot access my email since this morning. My ID is EMP9987.","sender":"priya.kapoor@company.com"}`

	w := httptest.NewRecorder()
	api.GenerateReply(w, httptest.NewRequest(http.MethodPost, "/generate_reply", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result analysis.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Urgency != "High" || result.Intent != "Incident" {
		t.Fatalf("unexpected classification: %+v", result)
	}
	if result.Entities["user_id"] != "EMP9987" {
		t.Fatalf("expected user_id entity, got %v", result.Entities)
	}
	if result.GeneratedReply == "" {
		t.Fatal("expected a reply even with the model offline")
	}
}

func TestGenerateReplyValidation(t *testing.T) {
	api := newTestAPI(staticModel{})

	w := httptest.NewRecorder()
	api.GenerateReply(w, httptest.NewRequest(http.MethodPost, "/generate_reply", strings.NewReader(`{"email_subject":"","email_body":"b","sender":"a@b.com"}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(payload["error"], "email_subject") {
		t.Fatalf("error should name the field: %q", payload["error"])
	}
}

func TestGenerateReplyRejectsUnknownFields(t *testing.T) {
	api := newTestAPI(staticModel{})
	w := httptest.NewRecorder()
	api.GenerateReply(w, httptest.NewRequest(http.MethodPost, "/generate_reply", strings.NewReader(`{"subject":"wrong field name"}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(staticModel{})
	w := httptest.NewRecorder()
	api.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["status"] != "healthy" || payload["version"] != Version {
		t.Fatalf("unexpected health payload: %v", payload)
	}
}

func TestBatchAnalyzeUnconfigured(t *testing.T) {
	api := newTestAPI(staticModel{})
	w := httptest.NewRecorder()
	api.BatchAnalyze(w, httptest.NewRequest(http.MethodPost, "/api/v1/analyze/batch", strings.NewReader(`{"emails":[]}`)))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a queue, got %d", w.Code)
	}
}

func TestGetUsageUnconfigured(t *testing.T) {
	api := newTestAPI(staticModel{})
	w := httptest.NewRecorder()
	api.GetUsage(w, httptest.NewRequest(http.MethodGet, "/api/v1/usage", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a store, got %d", w.Code)
	}
}

func TestIssueToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	svc, err := auth.NewService("test-secret", string(hash), time.Hour)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	api := NewAPI(analysis.NewPipeline(staticModel{}), svc, nil, nil, nil, nil)

	w := httptest.NewRecorder()
	api.IssueToken(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(`{"client":"batch-importer","credential":"s3cret"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	principal, err := svc.ParseToken(payload["token"])
	if err != nil || principal.Client != "batch-importer" {
		t.Fatalf("issued token does not verify: %v %v", principal, err)
	}

	w = httptest.NewRecorder()
	api.IssueToken(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(`{"client":"x","credential":"wrong"}`)))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credential, got %d", w.Code)
	}
}
