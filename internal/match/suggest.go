package match

import (
	"strings"
)

// MinSimilarity is the score below which no suggestion is made.
const MinSimilarity = 0.6

// Closest returns the candidate most similar to name after case folding.
// Ties keep the earlier candidate. It reports false when no candidate reaches MinSimilarity.
func Closest(name string, candidates []string) (string, bool) {
	var (
		best      string
		bestScore float64
	)

	folded := strings.ToLower(name)

	for _, c := range candidates {
		score := Similarity(folded, strings.ToLower(c))
		if score > bestScore {
			best, bestScore = c, score
		}
	}

	if bestScore < MinSimilarity {
		return "", false
	}

	return best, true
}
