package analysis

import (
	"strings"
	"testing"
)

func TestMergeModelFieldsWin(t *testing.T) {
	req := &Request{Subject: "s", Body: "b", Sender: "a@b.com"}
	heur := HeuristicAnalysis{Urgency: UrgencyLow, Intent: IntentRequest, Sentiment: SentimentNeutral, Keywords: []string{"vpn"}}
	model := &ModelAnalysis{Intent: IntentIncident, Sentiment: SentimentNegative, Urgency: UrgencyHigh, Summary: "VPN outage reported.", Reply: "We are on it."}

	got := mergeResults(req, map[string]string{}, heur, model)
	if got.Intent != "Incident" || got.Sentiment != "Negative" || got.Urgency != "High" {
		t.Fatalf("model fields should win: %+v", got)
	}
	if got.Summary != "VPN outage reported." || got.GeneratedReply != "We are on it." {
		t.Fatalf("model text should pass through: %+v", got)
	}
	if len(got.Keywords) != 1 || got.Keywords[0] != "vpn" {
		t.Fatalf("keywords are always heuristic: %v", got.Keywords)
	}
}

func TestMergeOverrideBeatsModel(t *testing.T) {
	req := &Request{Subject: "s", Body: "b", Sender: "a@b.com", UrgencyOverride: "low"}
	model := &ModelAnalysis{Urgency: UrgencyHigh}

	got := mergeResults(req, map[string]string{}, HeuristicAnalysis{Urgency: UrgencyMedium}, model)
	if got.Urgency != "Low" {
		t.Fatalf("caller override should win, got %s", got.Urgency)
	}
}

func TestMergeHeuristicsOnlyFallbacks(t *testing.T) {
	req := &Request{
		Subject: "Printer",
		Body:    "The third floor printer stopped working this morning. Everyone is blocked.",
		Sender:  "a@b.com",
	}
	heur := HeuristicAnalysis{Urgency: UrgencyHigh, Intent: IntentIncident, Sentiment: SentimentNeutral}
	entities := map[string]string{"incident_number": "INC42"}

	got := mergeResults(req, entities, heur, nil)
	if got.Summary != "The third floor printer stopped working this morning." {
		t.Fatalf("expected first-sentence summary, got %q", got.Summary)
	}
	if got.GeneratedReply != "We have logged your incident and will follow up regarding INC42." {
		t.Fatalf("unexpected template reply: %q", got.GeneratedReply)
	}
	if got.Keywords == nil {
		t.Fatal("keywords must never be nil")
	}
}

func TestMergeUnknownIntentBecomesInformation(t *testing.T) {
	req := &Request{Subject: "s", Body: "b", Sender: "a@b.com"}
	got := mergeResults(req, map[string]string{}, HeuristicAnalysis{Urgency: UrgencyMedium, Intent: IntentUnknown}, nil)
	if got.Intent != "Information" {
		t.Fatalf("expected unknown to map to Information, got %s", got.Intent)
	}
	if got.GeneratedReply != "We have logged your information and will follow up shortly." {
		t.Fatalf("unexpected reply: %q", got.GeneratedReply)
	}
}

func TestMergeSummaryClamp(t *testing.T) {
	req := &Request{Subject: "s", Body: strings.Repeat("word ", 60), Sender: "a@b.com"}
	got := mergeResults(req, map[string]string{}, HeuristicAnalysis{Urgency: UrgencyMedium}, nil)
	if n := len(strings.Fields(got.Summary)); n > maxSummaryWords {
		t.Fatalf("summary has %d words, limit %d", n, maxSummaryWords)
	}
}
