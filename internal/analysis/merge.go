package analysis

import (
	"fmt"
	"strings"
)

const maxSummaryWords = 25

// identifierKinds is the preference order for the entity cited in a
// templated reply.
var identifierKinds = []string{
	"incident_number", "request_number", "change_request",
	"problem_number", "task_number", "user_id", "error_code",
}

// mergeResults reconciles heuristic and model-derived fields into the final
// analysis. Per-field precedence: an explicit urgency override from the
// caller always wins; model intent/sentiment/urgency override heuristics
// when present; keywords are always heuristic; summary and reply fall back
// to deterministic text when the model produced none.
func mergeResults(req *Request, entities map[string]string, heur HeuristicAnalysis, model *ModelAnalysis) *Result {
	urgency := heur.Urgency
	intent := heur.Intent
	sentiment := heur.Sentiment
	summary := ""
	reply := ""

	if model != nil {
		if model.Urgency != "" {
			urgency = model.Urgency
		}
		if model.Intent != "" && model.Intent != IntentUnknown {
			intent = model.Intent
		}
		if model.Sentiment != "" {
			sentiment = model.Sentiment
		}
		summary = model.Summary
		reply = model.Reply
	}

	if override, ok := ParseUrgency(req.UrgencyOverride); ok {
		urgency = override
	}
	if intent == IntentUnknown || intent == "" {
		intent = IntentInformation
	}
	if summary == "" {
		summary = fallbackSummary(req.Body)
	}
	if reply == "" {
		reply = templateReply(intent, entities)
	}

	keywords := heur.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	return &Result{
		Intent:         string(intent),
		Sentiment:      string(sentiment),
		Urgency:        string(urgency),
		Keywords:       keywords,
		Summary:        truncateWords(summary, maxSummaryWords),
		Entities:       entities,
		GeneratedReply: reply,
	}
}

// fallbackSummary is the first sentence of the body, clamped to the summary
// word limit.
func fallbackSummary(body string) string {
	text := strings.Join(strings.Fields(body), " ")
	for _, terminator := range []string{". ", "! ", "? "} {
		if idx := strings.Index(text, terminator); idx >= 0 {
			text = text[:idx+1]
			break
		}
	}
	return truncateWords(text, maxSummaryWords)
}

func templateReply(intent Intent, entities map[string]string) string {
	subject := strings.ToLower(string(intent))
	for _, kind := range identifierKinds {
		if value, ok := entities[kind]; ok {
			return fmt.Sprintf("We have logged your %s and will follow up regarding %s.", subject, value)
		}
	}
	return fmt.Sprintf("We have logged your %s and will follow up shortly.", subject)
}

func truncateWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return strings.TrimSpace(text)
	}
	return strings.Join(words[:limit], " ")
}
