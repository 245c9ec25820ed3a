package analysis

import (
	"regexp"
	"sort"
	"strings"
)

// Rule is one named extraction pattern. The first capture group (or the whole
// match when the pattern has no groups) is the candidate value; Validate may
// normalize it or reject the candidate, in which case later matches of the
// same rule are tried.
type Rule struct {
	Kind        string
	re          *regexp.Regexp
	MultiValued bool
	Validate    func(string) (string, bool)
}

var recordToken = regexp.MustCompile(`^[A-Z0-9]+$`)

func validateRecordToken(value string) (string, bool) {
	upper := strings.ToUpper(value)
	if !recordToken.MatchString(upper) {
		return "", false
	}
	return upper, true
}

var capitalizedName = regexp.MustCompile(`^[A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*$`)

func validateCapitalized(value string) (string, bool) {
	if !capitalizedName.MatchString(value) {
		return "", false
	}
	return value, true
}

func requireDigit(value string) (string, bool) {
	if !strings.ContainsAny(value, "0123456789") {
		return "", false
	}
	return value, true
}

func validateIPv4(value string) (string, bool) {
	parts := strings.Split(value, ".")
	if len(parts) != 4 {
		return "", false
	}
	for _, part := range parts {
		if len(part) == 3 && part > "255" {
			return "", false
		}
	}
	return value, true
}

// entityRules is the closed, ordered set of extraction patterns. Most rules
// are anchored to a contextual keyword so arbitrary alphanumeric tokens in a
// body do not match; inherently shaped kinds (email, URL, IP, MAC, phone)
// match unconditionally.
var entityRules = []Rule{
	// ServiceNow record identifiers
	{Kind: "incident_number", re: regexp.MustCompile(`(?i)\b(?:incident|ticket|case)\s+(?:number|no|id|#)?\s*(?:is|:)?\s*#?\s*([A-Za-z0-9]+)`), Validate: validateRecordToken},
	{Kind: "change_request", re: regexp.MustCompile(`(?i)\b(?:change|CR)\s+(?:number|no|id|#)?\s*(?:is|:)?\s*#?\s*([A-Za-z0-9]+)`), Validate: validateRecordToken},
	{Kind: "problem_number", re: regexp.MustCompile(`(?i)\b(?:problem|PR)\s+(?:number|no|id|#)?\s*(?:is|:)?\s*#?\s*([A-Za-z0-9]+)`), Validate: validateRecordToken},
	{Kind: "task_number", re: regexp.MustCompile(`(?i)\btask\s+(?:number|no|id|#)?\s*(?:is|:)?\s*#?\s*([A-Za-z0-9]+)`), Validate: validateRecordToken},
	{Kind: "request_number", re: regexp.MustCompile(`(?i)\b(?:request|REQ)\s+(?:number|no|id|#)?\s*(?:is|:)?\s*#?\s*([A-Za-z0-9]+)`), Validate: validateRecordToken},

	// User and contact information
	{Kind: "user_id", re: regexp.MustCompile(`(?i)\b(?:user|employee|my)\s+id\s*(?:number|#)?\s*(?:is|:)?\s*#?([A-Za-z0-9]+)`), Validate: validateRecordToken},
	{Kind: "username", re: regexp.MustCompile(`(?i)\b(?:username|login|account)\s*(?:is|:)\s*([A-Za-z0-9._-]+)`)},
	{Kind: "phone_number", re: regexp.MustCompile(`(?:\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)},
	{Kind: "email_address", re: regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},

	// Technical identifiers
	{Kind: "url", re: regexp.MustCompile(`https?://\S+`), MultiValued: true, Validate: trimURL},
	{Kind: "error_code", re: regexp.MustCompile(`(?i)\b(?:error\s+code|error|code)\s*(?:is|:)?\s*#?\s*([A-Za-z0-9][A-Za-z0-9_-]+)`), Validate: requireDigit},
	{Kind: "ip_address", re: regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), Validate: validateIPv4},
	{Kind: "mac_address", re: regexp.MustCompile(`\b(?:[0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}\b`)},

	// Temporal information
	{Kind: "date", re: regexp.MustCompile(`(?i)\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\s+\d{1,2}(?:st|nd|rd|th)?\s*,?\s*\d{4}\b|\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b|\b(?:tomorrow|next week|next month|today|yesterday)\b`)},
	{Kind: "time", re: regexp.MustCompile(`(?i)\b(?:at|around|by)?\s*(\d{1,2}:\d{2}(?::\d{2})?\s*(?:AM|PM)?)\b`)},

	// Location and organizational information
	{Kind: "location", re: regexp.MustCompile(`\b(?:[Ii]n|[Ff]rom|[Aa]t)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:Street|Avenue|Boulevard|Road|Lane|Drive|Building|Office|Floor|Room|Suite|Campus|Site|Headquarters|Branch|Store|Warehouse|Lab|Laboratory))`)},
	{Kind: "department", re: regexp.MustCompile(`(?i:department|dept|team)\s*(?i:is|:)?\s*([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)`), Validate: validateCapitalized},

	// ServiceNow metadata
	{Kind: "priority", re: regexp.MustCompile(`(?i)\b(?:priority|impact)\s*(?:level)?\s*(?:is|:)?\s*(critical|high|medium|low)\b`), Validate: lowercaseValue},
	{Kind: "category", re: regexp.MustCompile(`(?i:category)\s*(?i:is|:)?\s*([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)`), Validate: validateCapitalized},
	{Kind: "subcategory", re: regexp.MustCompile(`(?i:subcategory|sub-category)\s*(?i:is|:)?\s*([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)`), Validate: validateCapitalized},
	{Kind: "assignment_group", re: regexp.MustCompile(`(?i:assignment group|assigned to|assignment)\s*(?i:is|:)?\s*([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)`), Validate: validateCapitalized},
	{Kind: "affected_ci", re: regexp.MustCompile(`(?i:(?:affected|impacted|configuration)\s+(?:item|ci))\s*(?i:is|:)?\s*([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)`), Validate: validateCapitalized},
	{Kind: "business_service", re: businessServiceRegexp(), Validate: normalizeBusinessService},
	{Kind: "state", re: regexp.MustCompile(`(?i)\b(?:state|status)\s*(?:is|:)?\s*(new|in progress|pending|resolved|closed|cancelled)\b`), Validate: lowercaseValue},
	{Kind: "short_description", re: regexp.MustCompile(`(?i)\b(?:description|issue|problem)\s*(?::|\bis\b)\s*([^\r\n]+)`)},
}

func lowercaseValue(value string) (string, bool) {
	return strings.ToLower(value), true
}

func trimURL(value string) (string, bool) {
	trimmed := strings.TrimRight(value, ".,;:)]}>\"'")
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// businessServiceCatalog maps each standard ServiceNow business service to
// the aliases it is known by in email text.
var businessServiceCatalog = map[string][]string{
	"IT Service Management": {
		"ITSM", "IT Service Management", "Service Desk", "Help Desk",
		"Incident Management", "Problem Management", "Change Management",
		"Service Catalog", "Service Request", "Knowledge Management",
	},
	"IT Operations Management": {
		"ITOM", "IT Operations", "Infrastructure Management",
		"Event Management", "Discovery", "Service Mapping", "Cloud Management",
	},
	"Customer Service Management": {
		"CSM", "Customer Service", "Customer Support", "Case Management",
		"Field Service", "Customer Portal",
	},
	"Human Resources Service Delivery": {
		"HRSD", "HR Service Delivery", "Employee Service Center",
		"HR Case Management", "Employee Portal",
	},
	"Security Operations": {
		"SecOps", "Security Operations", "Security Incident Response",
		"Vulnerability Response", "Threat Intelligence", "SOC",
	},
	"Governance, Risk, and Compliance": {
		"GRC", "Governance", "Risk Management", "Compliance",
		"Policy Management", "Audit Management",
	},
}

func businessServiceRegexp() *regexp.Regexp {
	var aliases []string
	for _, names := range businessServiceCatalog {
		for _, name := range names {
			aliases = append(aliases, regexp.QuoteMeta(name))
		}
	}
	// Longest alias first so overlapping aliases match deterministically.
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})
	return regexp.MustCompile(`(?i)\b(?:business service|service|using|via|through)\s*(?:is|:)?\s*(` + strings.Join(aliases, "|") + `)\b`)
}

func normalizeBusinessService(value string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(value))
	for category, names := range businessServiceCatalog {
		for _, name := range names {
			if lower == strings.ToLower(name) {
				return category, true
			}
		}
	}
	return strings.TrimSpace(value), value != ""
}

// Urgency trigger words. Scores are weighted per band: subject hits count
// double, body hits count once, highest band wins, ties escalate upward.
var highUrgencyKeywords = []string{
	"urgent", "asap", "immediately", "emergency", "critical",
	"deadline", "today", "outage", "down", "broken", "failed",
	"cannot", "unable", "stopped", "crashed", "not working",
	"system down", "system failure", "escalate", "blocking",
	"immediate assistance", "significant impact",
}

var mediumUrgencyKeywords = []string{
	"next week", "soon", "timely", "this week", "important",
	"attention", "priority", "issue", "problem", "concern",
	"needed", "required", "should",
}

var lowUrgencyKeywords = []string{
	"whenever", "no rush", "no hurry", "low priority",
	"at your convenience", "eventually", "fyi", "for your information",
}

// Intent trigger words per category. Ties break by the fixed order in
// intentTieOrder.
var intentKeywords = map[Intent][]string{
	IntentIncident: {
		"error", "issue", "broken", "not working", "failed", "crash",
		"down", "outage", "cannot", "unable", "complaint", "incident",
		"system failure", "technical issue",
	},
	IntentProblem: {
		"root cause", "investigate", "analyze", "troubleshoot",
		"diagnose", "recurring", "workaround", "keeps happening",
	},
	IntentChange: {
		"change", "modify", "update", "alter", "switch",
		"upgrade", "downgrade", "replace", "migrate",
	},
	IntentRequest: {
		"need", "want", "request", "would like", "please",
		"could you", "can you", "install", "setup", "configure",
		"access", "permission", "approval",
	},
	IntentQuestion: {
		"?", "how", "what", "when", "where", "why", "who", "which",
		"can you tell me", "do you know", "could you explain",
	},
	IntentInformation: {
		"inform", "notify", "status", "progress", "report",
		"let you know", "advise", "alert", "announce", "heads up",
	},
}

var intentTieOrder = []Intent{
	IntentIncident, IntentProblem, IntentChange,
	IntentRequest, IntentQuestion, IntentInformation,
}

var positiveSentimentKeywords = []string{
	"thanks", "thank you", "appreciate", "great", "happy",
	"excellent", "pleased", "wonderful", "resolved", "perfect",
}

var negativeSentimentKeywords = []string{
	"angry", "upset", "frustrated", "frustrating", "disappointed",
	"unacceptable", "terrible", "awful", "annoyed", "complaint",
	"worst", "fed up",
}

// stopWords are excluded from keyword ranking.
var stopWords = map[string]struct{}{}

func init() {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "been", "but", "by",
		"can", "could", "did", "do", "does", "for", "from", "had", "has",
		"have", "he", "her", "here", "him", "his", "how", "i", "if", "in",
		"is", "it", "its", "just", "me", "my", "no", "not", "of", "on",
		"or", "our", "out", "please", "she", "should", "so", "than",
		"that", "the", "their", "them", "then", "there", "these", "they",
		"this", "to", "was", "we", "were", "what", "when", "where",
		"which", "who", "why", "will", "with", "would", "you", "your",
		"am", "pm", "hi", "hello", "dear", "regards", "thanks", "thank",
	}
	for _, word := range words {
		stopWords[word] = struct{}{}
	}
}
