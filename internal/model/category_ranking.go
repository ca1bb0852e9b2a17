package model

import (
	"fmt"
	"sort"
)

// CategoryScore is the accumulated heuristic score of one category for a piece of text.
type CategoryScore struct {
	Category Category
	Score    float64
}

// CategoryScores holds per-category scores in locale pack order.
type CategoryScores []CategoryScore

// Best returns the first category in pack order with the maximum score.
// ok is false when the slice is empty.
func (s CategoryScores) Best() (CategoryScore, bool) {
	if len(s) == 0 {
		return CategoryScore{}, false
	}

	best := s[0]
	for _, cs := range s[1:] {
		if cs.Score > best.Score {
			best = cs
		}
	}
	return best, true
}

// Get returns the score recorded for c, or 0.
func (s CategoryScores) Get(c Category) float64 {
	for _, cs := range s {
		if cs.Category == c {
			return cs.Score
		}
	}
	return 0
}

// Ranked returns a copy sorted by score descending. Equal scores keep pack order.
func (s CategoryScores) Ranked() CategoryScores {
	ranked := make(CategoryScores, len(s))
	copy(ranked, s)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// TopN returns the N highest-scoring categories.
func (s CategoryScores) TopN(n int) CategoryScores {
	if n <= 0 {
		return CategoryScores{}
	}

	ranked := s.Ranked()
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// Validate ensures no category appears twice and no score is negative.
func (s CategoryScores) Validate() error {
	seen := make(map[Category]bool)

	for i, cs := range s {
		if cs.Category == "" {
			return fmt.Errorf("category name is required at index %d", i)
		}
		if cs.Score < 0 {
			return fmt.Errorf("score must not be negative, got %.2f for %q", cs.Score, cs.Category)
		}
		if seen[cs.Category] {
			return fmt.Errorf("duplicate category %q in scores", cs.Category)
		}
		seen[cs.Category] = true
	}

	return nil
}
