// Package fuzzy ranks free-text route fields against a search query with
// typo tolerance.
package fuzzy

import (
	"strings"
)

// Distance is the Levenshtein edit distance between a and b after
// normalization.
func Distance(a, b string) int {
	r1 := []rune(normalize(a))
	r2 := []rune(normalize(b))
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

// threshold is the number of typos tolerated for a query of this length.
func threshold(query string) int {
	n := len([]rune(query))
	switch {
	case n <= 3:
		return 0
	case n < 8:
		return 1
	default:
		return 2
	}
}

// FieldScore scores one field. Zero means no match.
func FieldScore(query, field string) float64 {
	q := normalize(query)
	f := normalize(field)
	if q == "" || f == "" {
		return 0
	}

	if f == q {
		return 100
	}
	if strings.HasPrefix(f, q) {
		return 80
	}
	if strings.Contains(f, q) {
		return 60
	}

	best := 0.0
	limit := threshold(q)
	for _, word := range strings.Fields(f) {
		if strings.HasPrefix(word, q) {
			best = max(best, 50)
			continue
		}
		if d := Distance(q, word); d <= limit {
			best = max(best, 40-float64(d)*10)
		}
	}
	// multi-word queries like "san jos" against "San Jose, CA"
	if best == 0 && strings.Contains(q, " ") {
		if d := Distance(q, f); d <= limit+len(q)/5 {
			best = 30 - float64(d)*5
		}
	}
	return best
}

// RouteScore scores a ride's route. Origin matches weigh slightly more than
// destination matches.
func RouteScore(query, from, to string) float64 {
	fromScore := FieldScore(query, from)
	toScore := FieldScore(query, to)
	if fromScore == 0 && toScore == 0 {
		return 0
	}
	return fromScore*1.1 + toScore
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
