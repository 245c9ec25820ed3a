package analysis

import "testing"

func findRule(t *testing.T, kind string) Rule {
	t.Helper()
	for _, rule := range entityRules {
		if rule.Kind == kind {
			return rule
		}
	}
	t.Fatalf("rule %s not found", kind)
	return Rule{}
}

func TestIncidentNumberRule(t *testing.T) {
	rule := findRule(t, "incident_number")
	value, ok := applyRule(rule, "Ticket Number: INC908721 is still open")
	if !ok || value != "INC908721" {
		t.Fatalf("unexpected match: %q %v", value, ok)
	}

	value, ok = applyRule(rule, "my incident id inc5521")
	if !ok || value != "INC5521" {
		t.Fatalf("expected uppercased token, got %q %v", value, ok)
	}
}

func TestErrorCodeRuleRequiresDigit(t *testing.T) {
	rule := findRule(t, "error_code")
	value, ok := applyRule(rule, "Error code: ERR_5009")
	if !ok || value != "ERR_5009" {
		t.Fatalf("unexpected match: %q %v", value, ok)
	}

	if value, ok := applyRule(rule, "an error occurred again"); ok {
		t.Fatalf("expected no match for digit-less code, got %q", value)
	}
}

func TestPriorityAndStateVocabulary(t *testing.T) {
	priority := findRule(t, "priority")
	value, ok := applyRule(priority, "Priority is CRITICAL for this one")
	if !ok || value != "critical" {
		t.Fatalf("unexpected priority: %q %v", value, ok)
	}

	state := findRule(t, "state")
	value, ok = applyRule(state, "current status: In Progress")
	if !ok || value != "in progress" {
		t.Fatalf("unexpected state: %q %v", value, ok)
	}
	if value, ok := applyRule(state, "status: archived"); ok {
		t.Fatalf("expected closed vocabulary to reject, got %q", value)
	}
}

func TestBusinessServiceNormalization(t *testing.T) {
	rule := findRule(t, "business_service")
	value, ok := applyRule(rule, "we reported it via ITSM yesterday")
	if !ok || value != "IT Service Management" {
		t.Fatalf("unexpected service: %q %v", value, ok)
	}

	value, ok = applyRule(rule, "raised through Vulnerability Response")
	if !ok || value != "Security Operations" {
		t.Fatalf("unexpected service: %q %v", value, ok)
	}
}

func TestShortDescriptionRule(t *testing.T) {
	rule := findRule(t, "short_description")
	value, ok := applyRule(rule, "Issue: VPN drops every hour\nmore text")
	if !ok || value != "VPN drops every hour" {
		t.Fatalf("unexpected description: %q %v", value, ok)
	}
}

func TestIPAddressValidation(t *testing.T) {
	rule := findRule(t, "ip_address")
	value, ok := applyRule(rule, "server at 10.0.12.7 unreachable")
	if !ok || value != "10.0.12.7" {
		t.Fatalf("unexpected ip: %q %v", value, ok)
	}
	if value, ok := applyRule(rule, "version 999.999.999.999 string"); ok {
		t.Fatalf("expected invalid octets to be rejected, got %q", value)
	}
}

func TestURLRuleIsMultiValued(t *testing.T) {
	rule := findRule(t, "url")
	value, ok := applyRule(rule, "see https://portal.example.com/login, then https://docs.example.com. Also https://portal.example.com/login again")
	if !ok {
		t.Fatalf("expected url matches")
	}
	if value != "https://portal.example.com/login, https://docs.example.com" {
		t.Fatalf("unexpected urls: %q", value)
	}
}

func TestDateRuleForms(t *testing.T) {
	rule := findRule(t, "date")
	for _, text := range []string{
		"scheduled for January 5th, 2026 in the morning",
		"due 12/31/2025 end of day",
		"will retry tomorrow if needed",
	} {
		if _, ok := applyRule(rule, text); !ok {
			t.Fatalf("expected date match in %q", text)
		}
	}
}
