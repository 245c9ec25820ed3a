package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// Completer is the single contract the pipeline needs from the model layer:
// prompt in, free-form text out, error when every attempt failed.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Analyzer wraps the model call and the tolerant parsing of its reply.
type Analyzer struct {
	client Completer
}

func NewAnalyzer(client Completer) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze returns nil when the model is unavailable; the pipeline then
// proceeds on heuristics alone. Model failure is never a request failure.
func (a *Analyzer) Analyze(ctx context.Context, req *Request, heur HeuristicAnalysis) *ModelAnalysis {
	if a == nil || a.client == nil {
		return nil
	}
	text, err := a.client.Complete(ctx, buildPrompt(req, heur))
	if err != nil {
		log.Printf("model analysis unavailable, continuing with heuristics: %v", err)
		return nil
	}
	return parseModelOutput(text, heur)
}

func buildPrompt(req *Request, heur HeuristicAnalysis) string {
	var b strings.Builder
	b.WriteString("Analyze this support email and respond with exactly five labeled lines:\n")
	b.WriteString("INTENT: one of Incident, Request, Question, Information, Change, Problem\n")
	b.WriteString("SENTIMENT: one of Positive, Neutral, Negative\n")
	b.WriteString("URGENCY: one of High, Medium, Low\n")
	b.WriteString("SUMMARY: a summary of the email in at most 25 words\n")
	b.WriteString("REPLY: a short professional reply to the sender\n\n")
	fmt.Fprintf(&b, "Subject: %s\n", req.Subject)
	fmt.Fprintf(&b, "From: %s\n", req.Sender)
	b.WriteString("Body:\n")
	b.WriteString(req.Body)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Keyword pre-analysis hints: intent=%s, sentiment=%s, urgency=%s\n",
		heur.Intent, heur.Sentiment, heur.Urgency)
	b.WriteString("Only state what the email explicitly says. Do not invent details.")
	return b.String()
}

// parseModelOutput recovers the analysis fields from free-form model text.
// Recovery order: labeled lines as requested in the prompt, then an embedded
// JSON object, then field-by-field fallback to the heuristic values for
// anything missing or outside the closed enums.
func parseModelOutput(text string, heur HeuristicAnalysis) *ModelAnalysis {
	text = stripCodeFence(text)
	fields := parseLabeledLines(text)
	if len(fields) == 0 {
		fields = parseJSONObject(text)
	}

	result := &ModelAnalysis{
		Intent:    heur.Intent,
		Sentiment: heur.Sentiment,
		Urgency:   heur.Urgency,
	}
	if intent, ok := ParseIntent(fields["intent"]); ok {
		result.Intent = intent
	}
	if sentiment, ok := ParseSentiment(fields["sentiment"]); ok {
		result.Sentiment = sentiment
	}
	if urgency, ok := ParseUrgency(fields["urgency"]); ok {
		result.Urgency = urgency
	}
	result.Summary = truncateWords(strings.TrimSpace(fields["summary"]), maxSummaryWords)
	result.Reply = strings.TrimSpace(fields["reply"])
	return result
}

var lineLabels = []string{"intent", "sentiment", "urgency", "summary", "reply"}

// parseLabeledLines scans for the LABEL: value layout. The reply label may
// span multiple lines, so its value accumulates everything up to the next
// label or the end of the text.
func parseLabeledLines(text string) map[string]string {
	fields := map[string]string{}
	current := ""
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		matched := false
		for _, label := range lineLabels {
			prefix := label + ":"
			if len(trimmed) >= len(prefix) && strings.EqualFold(trimmed[:len(prefix)], prefix) {
				fields[label] = strings.TrimSpace(trimmed[len(prefix):])
				current = label
				matched = true
				break
			}
		}
		if !matched && current == "reply" && trimmed != "" {
			fields["reply"] = strings.TrimSpace(fields["reply"] + "\n" + trimmed)
		}
	}
	return fields
}

func parseJSONObject(text string) map[string]string {
	var payload struct {
		Intent         string `json:"intent"`
		Sentiment      string `json:"sentiment"`
		Urgency        string `json:"urgency"`
		Summary        string `json:"summary"`
		Reply          string `json:"reply"`
		GeneratedReply string `json:"generated_reply"`
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), &payload); err != nil {
		return nil
	}
	reply := payload.GeneratedReply
	if reply == "" {
		reply = payload.Reply
	}
	return map[string]string{
		"intent":    payload.Intent,
		"sentiment": payload.Sentiment,
		"urgency":   payload.Urgency,
		"summary":   payload.Summary,
		"reply":     reply,
	}
}

// stripCodeFence removes a surrounding markdown code block, with or without
// a language tag.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// extractJSON returns the outermost braced object in text, or the text
// unchanged when none is found.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return text
	}
	return text[start : end+1]
}
