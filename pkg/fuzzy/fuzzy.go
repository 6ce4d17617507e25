// Package fuzzy resolves backend-emitted free-text names to known entity
// names by edit-distance similarity.
package fuzzy

import (
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Match is a scored candidate. Score is a 0-100 similarity ratio.
type Match struct {
	Name  string
	Score int
}

// Ratio computes a symmetric, case-insensitive similarity between two
// strings as 100 * (maxLen - levenshtein) / maxLen, where maxLen counts
// runes to match the rune-based edit distance. Two empty strings are a
// perfect match.
func Ratio(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 100
	}
	dist := matchr.Levenshtein(a, b)
	if dist > longest {
		dist = longest
	}
	return 100 * (longest - dist) / longest
}

// BestMatch returns the highest-scoring candidate for query. Ties keep the
// first candidate in input order. An empty candidate set reports ok=false.
// No minimum score is enforced; callers decide whether to reject weak
// matches.
func BestMatch(query string, candidates []string) (Match, bool) {
	best := Match{Score: -1}
	for _, c := range candidates {
		if score := Ratio(query, c); score > best.Score {
			best = Match{Name: c, Score: score}
		}
	}
	if best.Score < 0 {
		return Match{}, false
	}
	return best, true
}
