package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPipelineHeuristicsOnlyOnModelFailure(t *testing.T) {
	pipeline := NewPipeline(stubCompleter{err: errors.New("both models failed")})
	req := &Request{
		Subject: "Cannot Access Email - Urgent",
		Body:    "I cannot access my email since this morning. My ID is EMP9987.",
		Sender:  "priya.kapoor@company.com",
	}

	got, err := pipeline.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("model failure must not fail the request: %v", err)
	}
	if got.Urgency != "High" || got.Intent != "Incident" {
		t.Fatalf("expected heuristic classification, got %+v", got)
	}
	if got.Entities["user_id"] != "EMP9987" {
		t.Fatalf("expected entities in degraded result, got %v", got.Entities)
	}
	if got.Summary == "" || got.GeneratedReply == "" {
		t.Fatalf("degraded result must still carry summary and reply: %+v", got)
	}
	if got.Keywords == nil {
		t.Fatal("keywords must never be nil")
	}
}

func TestPipelineUsesModelOutput(t *testing.T) {
	pipeline := NewPipeline(stubCompleter{
		text: "INTENT: Question\nSENTIMENT: Neutral\nURGENCY: Low\nSUMMARY: Asks where to find the expense form.\nREPLY: The form is on the finance portal.",
	})
	req := &Request{
		Subject: "Expense form?",
		Body:    "Where can I find the expense form for contractor travel?",
		Sender:  "b@example.com",
	}

	got, err := pipeline.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Intent != "Question" || got.Urgency != "Low" {
		t.Fatalf("expected model classification, got %+v", got)
	}
	if !strings.Contains(got.GeneratedReply, "finance portal") {
		t.Fatalf("expected model reply, got %q", got.GeneratedReply)
	}
}

func TestPipelineRejectsInvalidRequests(t *testing.T) {
	pipeline := NewPipeline(stubCompleter{})
	cases := []struct {
		name  string
		req   *Request
		field string
	}{
		{"empty subject", &Request{Body: "b", Sender: "a@b.com"}, "email_subject"},
		{"empty body", &Request{Subject: "s", Sender: "a@b.com"}, "email_body"},
		{"empty sender", &Request{Subject: "s", Body: "b"}, "sender"},
		{"oversize body", &Request{Subject: "s", Body: strings.Repeat("x", 10001), Sender: "a@b.com"}, "email_body"},
		{"bad override", &Request{Subject: "s", Body: "b", Sender: "a@b.com", UrgencyOverride: "urgent"}, "urgency_override"},
	}
	for _, tc := range cases {
		_, err := pipeline.Analyze(context.Background(), tc.req)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if verr.Field != tc.field {
			t.Fatalf("%s: expected field %s, got %s", tc.name, tc.field, verr.Field)
		}
	}
}

func TestPipelineUrgencyOverride(t *testing.T) {
	pipeline := NewPipeline(stubCompleter{err: errors.New("unavailable")})
	req := &Request{
		Subject:         "Server down, everything broken",
		Body:            "Production is down and customers cannot log in.",
		Sender:          "ops@example.com",
		UrgencyOverride: "Low",
	}
	got, err := pipeline.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Urgency != "Low" {
		t.Fatalf("caller override should win, got %s", got.Urgency)
	}
}
