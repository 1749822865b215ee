package tree

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxTypoDistance is the largest edit distance accepted for a label word.
const maxTypoDistance = 2

// Match is a search hit. Lower Score ranks higher.
type Match struct {
	Entry
	Score int
}

// Search finds options whose id, label or description match query.
// Exact and prefix hits rank first, then substring hits, then label words
// within a small edit distance of the query (typo tolerance).
func (c *Category) Search(query string) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []Match
	for _, e := range c.Options() {
		if score, ok := scoreOption(e.Option, q); ok {
			out = append(out, Match{Entry: e, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score < out[j].Score
	})
	return out
}

func scoreOption(opt Option, q string) (int, bool) {
	id := strings.ToLower(opt.ID())
	label := strings.ToLower(opt.Label())

	switch {
	case label == q || id == q:
		return 0, true
	case strings.HasPrefix(label, q) || strings.HasPrefix(id, q):
		return 1, true
	case strings.Contains(label, q) || strings.Contains(id, q):
		return 2, true
	case strings.Contains(strings.ToLower(opt.Description()), q):
		return 3, true
	}

	// Very short queries match too much by distance alone.
	if len([]rune(q)) < 3 {
		return 0, false
	}
	best := -1
	for _, word := range strings.Fields(label) {
		d := levenshtein.ComputeDistance(word, q)
		if d <= maxTypoDistance && (best < 0 || d < best) {
			best = d
		}
	}
	if best < 0 {
		return 0, false
	}
	return 4 + best, true
}
