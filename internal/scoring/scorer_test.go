package scoring

import (
	"testing"
	"time"

	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/Veraticus/kharcha/internal/model"
	"github.com/stretchr/testify/assert"
)

func clockAt(hour int) Clock {
	return func() time.Time {
		return time.Date(2025, 3, 14, hour, 30, 0, 0, time.UTC)
	}
}

// 17:30 is outside every default meal window.
var offHours = clockAt(17)

func TestScorer_Best(t *testing.T) {
	s := NewScorer(locale.MustDefault(), offHours)

	tests := []struct {
		name string
		text string
		want model.Category
	}{
		{name: "hinglish food with verb", text: "200 ka dosa khaya", want: model.CategoryFood},
		{name: "english shopping", text: "bought new shoes for 500 rupees", want: model.CategoryShopping},
		{name: "devanagari food", text: "२०० रुपये की चाय पिया", want: model.CategoryFood},
		{name: "transport", text: "uber cab ke 300 diye", want: model.CategoryTransport},
		{name: "entertainment", text: "watched a movie for 400", want: model.CategoryEntertainment},
		{name: "healthcare", text: "dawai ke liye 150 diye chemist ko", want: model.CategoryHealthcare},
		{name: "utilities", text: "bijli ka bill bhara 1200", want: model.CategoryUtilities},
		{name: "bare number", text: "45", want: model.CategoryOther},
		{name: "no cues", text: "gave 300 to ramesh", want: model.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := s.Best(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScorer_Weights(t *testing.T) {
	s := NewScorer(locale.MustDefault(), offHours)

	scores := s.Score("200 ka dosa khaya")
	// keyword 1.0 + verb 1.5 + bigram "dosa khaya" 2.0
	assert.InDelta(t, 4.5, scores.Get(model.CategoryFood), 1e-9)

	scores = s.Score("bought new shoes for 500 rupees")
	// keyword "shoes" 1.0 + verb "bought" 1.5, not adjacent
	assert.InDelta(t, 2.5, scores.Get(model.CategoryShopping), 1e-9)
}

func TestScorer_BigramOutscoresBareKeyword(t *testing.T) {
	s := NewScorer(locale.MustDefault(), offHours)

	withVerb := s.Score("dosa khaya").Get(model.CategoryFood)
	withoutVerb := s.Score("dosa").Get(model.CategoryFood)
	assert.Greater(t, withVerb, withoutVerb)

	apart := s.Score("khaya garam dosa").Get(model.CategoryFood)
	adjacent := s.Score("garam dosa khaya").Get(model.CategoryFood)
	assert.Greater(t, adjacent, apart)
}

func TestScorer_TimeNudge(t *testing.T) {
	pack := locale.MustDefault()

	tests := []struct {
		name  string
		hour  int
		nudge bool
	}{
		{name: "breakfast", hour: 8, nudge: true},
		{name: "lunch", hour: 13, nudge: true},
		{name: "dinner", hour: 20, nudge: true},
		{name: "afternoon", hour: 16, nudge: false},
		{name: "window end is exclusive", hour: 22, nudge: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScorer(pack, clockAt(tt.hour))
			food := s.Score("samosa").Get(model.CategoryFood)
			if tt.nudge {
				assert.InDelta(t, 1.3, food, 1e-9)
			} else {
				assert.InDelta(t, 1.0, food, 1e-9)
			}
		})
	}
}

func TestScorer_NudgeAloneStaysBelowFloor(t *testing.T) {
	s := NewScorer(locale.MustDefault(), clockAt(13))
	got, score := s.Best("45")
	assert.Equal(t, model.CategoryOther, got)
	assert.InDelta(t, 0.3, score, 1e-9)
}

func TestScorer_Deterministic(t *testing.T) {
	s := NewScorer(locale.MustDefault(), nil)
	text := "swiggy se biryani khaya 350"

	first, firstScore := s.Best(text)
	for range 20 {
		got, score := s.Best(text)
		assert.Equal(t, first, got)
		assert.InDelta(t, firstScore, score, 0.3+1e-9)
	}
}

func TestScorer_TieKeepsPackOrder(t *testing.T) {
	// "bill" votes utilities and "restaurant" votes food, one keyword each.
	s := NewScorer(locale.MustDefault(), offHours)
	got, score := s.Best("restaurant bill 900")
	assert.Equal(t, model.CategoryFood, got)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestScorer_CategoryFloorIsInclusive(t *testing.T) {
	pack := locale.MustDefault()
	pack.Thresholds.CategoryFloor = 1.0
	s := NewScorer(pack, offHours)

	got, _ := s.Best("samosa")
	assert.Equal(t, model.CategoryFood, got)
}
