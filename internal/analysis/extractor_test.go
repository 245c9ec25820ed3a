package analysis

import (
	"reflect"
	"testing"
)

func TestExtractEntitiesScenario(t *testing.T) {
	req := &Request{
		Subject: "Cannot Access Email - Urgent",
		Body:    "I cannot access my email since this morning. My ID is EMP9987.",
		Sender:  "priya.kapoor@company.com",
	}
	entities := ExtractEntities(req)

	if entities["user_id"] != "EMP9987" {
		t.Fatalf("expected user_id EMP9987, got %q", entities["user_id"])
	}
	if entities["sender_email"] != "priya.kapoor@company.com" {
		t.Fatalf("expected sender echo, got %q", entities["sender_email"])
	}
	if _, ok := entities["recipient_email"]; ok {
		t.Fatalf("expected no recipient_email when recipient omitted")
	}
}

func TestExtractEntitiesErrorCode(t *testing.T) {
	req := &Request{
		Subject: "Login failure",
		Body:    "Error code: ERR_5009",
		Sender:  "user@example.com",
	}
	entities := ExtractEntities(req)
	if entities["error_code"] != "ERR_5009" {
		t.Fatalf("expected ERR_5009, got %q", entities["error_code"])
	}
}

func TestExtractEntitiesIdempotent(t *testing.T) {
	req := &Request{
		Subject: "Incident INC12345: printer offline",
		Body:    "The printer at 192.168.4.20 is offline. Department is Engineering. Reach me at 555-123-4567.",
		Sender:  "ops@example.com",
	}
	first := ExtractEntities(req)
	second := ExtractEntities(req)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("extraction not idempotent:\n%v\n%v", first, second)
	}
	if first["incident_number"] != "INC12345" {
		t.Fatalf("expected incident from subject, got %q", first["incident_number"])
	}
	if first["ip_address"] != "192.168.4.20" {
		t.Fatalf("expected ip, got %q", first["ip_address"])
	}
}

func TestSubjectScannedBeforeBody(t *testing.T) {
	req := &Request{
		Subject: "Ticket INC111",
		Body:    "Related ticket INC222 mentioned for context.",
		Sender:  "user@example.com",
	}
	entities := ExtractEntities(req)
	if entities["incident_number"] != "INC111" {
		t.Fatalf("expected subject match to win, got %q", entities["incident_number"])
	}
}

func TestAdditionalDetailsWinOnCollision(t *testing.T) {
	req := &Request{
		Subject: "Budget report question",
		Body:    "Our department is Finance and we need the Q3 numbers.",
		Sender:  "user@example.com",
		AdditionalDetails: map[string]any{
			"department": "IT",
			"cost_code":  4410,
			"tags":       []any{"billing", "reports"},
			"blank":      "   ",
		},
	}
	entities := ExtractEntities(req)
	if entities["department"] != "IT" {
		t.Fatalf("expected caller detail to win, got %q", entities["department"])
	}
	if entities["cost_code"] != "4410" {
		t.Fatalf("expected scalar detail stringified, got %q", entities["cost_code"])
	}
	if entities["tags"] != `["billing","reports"]` {
		t.Fatalf("expected structured detail encoded, got %q", entities["tags"])
	}
	if _, ok := entities["blank"]; ok {
		t.Fatalf("expected blank detail to be dropped")
	}
}

func TestRecipientEchoedWhenPresent(t *testing.T) {
	req := &Request{
		Subject:   "FYI",
		Body:      "Just keeping you informed about the rollout.",
		Sender:    "a@example.com",
		Recipient: "helpdesk@example.com",
	}
	entities := ExtractEntities(req)
	if entities["recipient_email"] != "helpdesk@example.com" {
		t.Fatalf("expected recipient echo, got %q", entities["recipient_email"])
	}
}
