package analysis

import (
	"regexp"
	"sort"
	"strings"
)

const maxKeywords = 5

var wordToken = regexp.MustCompile(`[a-z0-9][a-z0-9']*`)

// RankKeywords picks up to five representative topic words from the body:
// lower-cased, stop-words and short tokens dropped, ranked by frequency with
// ties broken by first occurrence. Deterministic for identical input.
func RankKeywords(body string) []string {
	tokens := wordToken.FindAllString(strings.ToLower(body), -1)

	type candidate struct {
		word  string
		count int
		first int
	}
	counts := map[string]*candidate{}
	var order []*candidate
	for i, token := range tokens {
		if len(token) < 3 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if existing, ok := counts[token]; ok {
			existing.count++
			continue
		}
		c := &candidate{word: token, count: 1, first: i}
		counts[token] = c
		order = append(order, c)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})

	keywords := make([]string, 0, maxKeywords)
	for _, c := range order {
		if len(keywords) == maxKeywords {
			break
		}
		keywords = append(keywords, c.word)
	}
	return keywords
}
