package analysis

import "strings"

// ClassifyHeuristics derives urgency, an intent guess, and a sentiment guess
// from keyword scoring alone. The keyword list is filled in by the pipeline
// from the keyword ranker.
func ClassifyHeuristics(subject, body string) HeuristicAnalysis {
	subjectLower := strings.ToLower(subject)
	bodyLower := strings.ToLower(body)
	combined := subjectLower + " " + bodyLower

	return HeuristicAnalysis{
		Urgency:   scoreUrgency(subjectLower, bodyLower),
		Intent:    guessIntent(combined),
		Sentiment: guessSentiment(combined),
	}
}

// scoreUrgency weights subject hits double. Ties break toward the higher
// band: when the signal is ambiguous, escalate.
func scoreUrgency(subjectLower, bodyLower string) Urgency {
	bands := []struct {
		urgency  Urgency
		keywords []string
	}{
		{UrgencyHigh, highUrgencyKeywords},
		{UrgencyMedium, mediumUrgencyKeywords},
		{UrgencyLow, lowUrgencyKeywords},
	}

	best := UrgencyMedium
	bestScore := 0
	for _, band := range bands {
		score := 2*countHits(subjectLower, band.keywords) + countHits(bodyLower, band.keywords)
		if score > bestScore {
			best = band.urgency
			bestScore = score
		}
	}
	return best
}

func guessIntent(textLower string) Intent {
	best := IntentUnknown
	bestScore := 0
	for _, intent := range intentTieOrder {
		score := countHits(textLower, intentKeywords[intent])
		if score > bestScore {
			best = intent
			bestScore = score
		}
	}
	return best
}

func guessSentiment(textLower string) Sentiment {
	positive := countHits(textLower, positiveSentimentKeywords)
	negative := countHits(textLower, negativeSentimentKeywords)
	switch {
	case positive > negative:
		return SentimentPositive
	case negative > positive:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func countHits(textLower string, keywords []string) int {
	total := 0
	for _, keyword := range keywords {
		total += strings.Count(textLower, keyword)
	}
	return total
}
