package analysis

import (
	"fmt"
	"strings"
)

type Intent string

const (
	IntentIncident    Intent = "Incident"
	IntentRequest     Intent = "Request"
	IntentQuestion    Intent = "Question"
	IntentInformation Intent = "Information"
	IntentChange      Intent = "Change"
	IntentProblem     Intent = "Problem"
	IntentUnknown     Intent = "Unknown"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// ParseIntent accepts any casing of a closed-set intent word.
// IntentUnknown is a heuristic placeholder and never parses.
func ParseIntent(value string) (Intent, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "incident":
		return IntentIncident, true
	case "request":
		return IntentRequest, true
	case "question":
		return IntentQuestion, true
	case "information":
		return IntentInformation, true
	case "change":
		return IntentChange, true
	case "problem":
		return IntentProblem, true
	}
	return "", false
}

func ParseSentiment(value string) (Sentiment, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "positive":
		return SentimentPositive, true
	case "neutral":
		return SentimentNeutral, true
	case "negative":
		return SentimentNegative, true
	}
	return "", false
}

func ParseUrgency(value string) (Urgency, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "high":
		return UrgencyHigh, true
	case "medium":
		return UrgencyMedium, true
	case "low":
		return UrgencyLow, true
	}
	return "", false
}

const (
	maxSubjectLength = 500
	maxBodyLength    = 10000
)

type Request struct {
	Subject           string         `json:"email_subject"`
	Body              string         `json:"email_body"`
	Sender            string         `json:"sender"`
	Recipient         string         `json:"recipient,omitempty"`
	UrgencyOverride   string         `json:"urgency_override,omitempty"`
	AdditionalDetails map[string]any `json:"additional_details,omitempty"`
}

// Validate rejects a request before it reaches the pipeline.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Subject) == "" {
		return &ValidationError{Field: "email_subject", Message: "must not be empty"}
	}
	if len(r.Subject) > maxSubjectLength {
		return &ValidationError{Field: "email_subject", Message: fmt.Sprintf("must be at most %d characters", maxSubjectLength)}
	}
	if strings.TrimSpace(r.Body) == "" {
		return &ValidationError{Field: "email_body", Message: "must not be empty"}
	}
	if len(r.Body) > maxBodyLength {
		return &ValidationError{Field: "email_body", Message: fmt.Sprintf("must be at most %d characters", maxBodyLength)}
	}
	if strings.TrimSpace(r.Sender) == "" {
		return &ValidationError{Field: "sender", Message: "must not be empty"}
	}
	if r.UrgencyOverride != "" {
		if _, ok := ParseUrgency(r.UrgencyOverride); !ok {
			return &ValidationError{Field: "urgency_override", Message: "must be one of High, Medium, Low"}
		}
	}
	return nil
}

// HeuristicAnalysis is the deterministic pre-analysis computed without the model.
type HeuristicAnalysis struct {
	Urgency   Urgency
	Intent    Intent
	Sentiment Sentiment
	Keywords  []string
}

// ModelAnalysis holds the fields recovered from the model response. A nil
// *ModelAnalysis means both model attempts failed and the pipeline proceeds
// on heuristics alone.
type ModelAnalysis struct {
	Intent    Intent
	Sentiment Sentiment
	Urgency   Urgency
	Summary   string
	Reply     string
}

type Result struct {
	Intent         string            `json:"intent"`
	Sentiment      string            `json:"sentiment"`
	Urgency        string            `json:"urgency"`
	Keywords       []string          `json:"keywords"`
	Summary        string            `json:"summary"`
	Entities       map[string]string `json:"entities"`
	GeneratedReply string            `json:"generated_reply"`
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}
