package analysis

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// ExtractEntities applies every rule in the pattern library to the request
// text, scanning the subject before the body so record types stated in the
// subject line win. The sender and recipient are echoed from the request
// rather than pattern-derived, and additional_details are merged last:
// caller-supplied structured data overrides anything a pattern found for the
// same key.
func ExtractEntities(req *Request) map[string]string {
	entities := make(map[string]string, len(entityRules))
	for _, rule := range entityRules {
		value, ok := applyRule(rule, req.Subject)
		if !ok {
			value, ok = applyRule(rule, req.Body)
		}
		if ok {
			entities[rule.Kind] = value
		}
	}

	if sender := strings.TrimSpace(req.Sender); sender != "" {
		entities["sender_email"] = sender
	}
	if recipient := strings.TrimSpace(req.Recipient); recipient != "" {
		entities["recipient_email"] = recipient
	}

	for key, raw := range req.AdditionalDetails {
		if value := detailString(raw); value != "" {
			entities[key] = value
		}
	}
	return entities
}

// applyRule returns the first valid match of a rule in text, or every valid
// distinct match joined by ", " for multi-valued rules. A rule that panics on
// its input is skipped, never fatal.
func applyRule(rule Rule, text string) (value string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("entity pattern %s failed: %v", rule.Kind, r)
			value, ok = "", false
		}
	}()

	matches := rule.re.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return "", false
	}

	var collected []string
	seen := map[string]struct{}{}
	for _, match := range matches {
		candidate := captureValue(match)
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if rule.Validate != nil {
			normalized, valid := rule.Validate(candidate)
			if !valid {
				continue
			}
			candidate = strings.TrimSpace(normalized)
			if candidate == "" {
				continue
			}
		}
		if !rule.MultiValued {
			return candidate, true
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		collected = append(collected, candidate)
	}
	if len(collected) == 0 {
		return "", false
	}
	return strings.Join(collected, ", "), true
}

// captureValue prefers the first non-empty capture group and falls back to
// the whole match for group-less patterns.
func captureValue(match []string) string {
	for _, group := range match[1:] {
		if group != "" {
			return group
		}
	}
	return match[0]
}

func detailString(raw any) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	case float64, int, int64, bool:
		return fmt.Sprintf("%v", v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return strings.TrimSpace(fmt.Sprintf("%v", v))
		}
		return string(encoded)
	}
}
