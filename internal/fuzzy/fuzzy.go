// Package fuzzy scores how closely two words match so misheard tokens can be
// mapped back onto known vocabulary.
package fuzzy

import (
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// DefaultThreshold is the minimum similarity accepted by Match when the
// locale pack does not override it.
const DefaultThreshold = 0.7

// Similarity returns (maxLen - editDistance) / maxLen over runes, in [0,1].
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1
	}

	dist := levenshtein.Distance(a, b, nil)
	return float64(maxLen-dist) / float64(maxLen)
}

// Match returns the first target whose similarity to candidate is at least threshold.
func Match(candidate string, targets []string, threshold float64) (string, bool) {
	for _, target := range targets {
		if Similarity(candidate, target) >= threshold {
			return target, true
		}
	}
	return "", false
}

// Best returns the most similar target at or above threshold. Ties keep target order.
func Best(candidate string, targets []string, threshold float64) (string, float64, bool) {
	var (
		best  string
		score float64
		found bool
	)
	for _, target := range targets {
		s := Similarity(candidate, target)
		if s >= threshold && s > score {
			best, score, found = target, s, true
		}
	}
	return best, score, found
}
