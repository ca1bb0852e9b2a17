// Package scoring ranks expense categories for a transcript from keyword,
// verb and bigram cues.
package scoring

import (
	"strings"
	"time"

	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/Veraticus/kharcha/internal/model"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// Scorer scores categories using one locale pack snapshot.
type Scorer struct {
	pack  *locale.Pack
	clock Clock
}

// NewScorer creates a scorer. A nil clock uses time.Now.
func NewScorer(pack *locale.Pack, clock Clock) *Scorer {
	if clock == nil {
		clock = time.Now
	}
	return &Scorer{pack: pack, clock: clock}
}

// Score returns every pack category's score in pack order.
func (s *Scorer) Score(text string) model.CategoryScores {
	words := locale.Words(text)
	joined := strings.Join(words, " ")
	hour := s.clock().Hour()
	w := s.pack.Weights

	scores := make(model.CategoryScores, 0, len(s.pack.Categories))
	for _, def := range s.pack.Categories {
		var score float64

		score += w.Keyword * float64(countContained(joined, def.Keywords))
		score += w.Verb * float64(countContained(joined, def.Verbs))

		for i := 0; i+1 < len(words); i++ {
			bigram := words[i] + " " + words[i+1]
			if countContained(bigram, def.Keywords) > 0 && countContained(bigram, def.Verbs) > 0 {
				score += w.Bigram
			}
		}

		if def.Name == model.CategoryFood && s.inMealWindow(hour) {
			score += w.TimeNudge
		}

		scores = append(scores, model.CategoryScore{Category: def.Name, Score: score})
	}

	return scores
}

// Best returns the top category, or other when the top score is below the floor.
func (s *Scorer) Best(text string) (model.Category, float64) {
	best, ok := s.Score(text).Best()
	if !ok || best.Score < s.pack.Thresholds.CategoryFloor {
		return model.CategoryOther, best.Score
	}
	return best.Category, best.Score
}

func (s *Scorer) inMealWindow(hour int) bool {
	for _, w := range s.pack.MealWindows {
		if w.Contains(hour) {
			return true
		}
	}
	return false
}

// countContained counts the cues that occur in text. A cue seen twice counts once.
func countContained(text string, cues []string) int {
	n := 0
	for _, cue := range cues {
		if cue != "" && strings.Contains(text, cue) {
			n++
		}
	}
	return n
}
