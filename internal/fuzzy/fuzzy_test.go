package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		name string
		want float64
	}{
		{name: "identical", a: "rupees", b: "rupees", want: 1},
		{name: "both empty", a: "", b: "", want: 1},
		{name: "one empty", a: "", b: "abc", want: 0},
		{name: "one deletion", a: "rupes", b: "rupees", want: 5.0 / 6.0},
		{name: "one substitution", a: "rupaye", b: "rupaya", want: 5.0 / 6.0},
		{name: "completely different", a: "abc", b: "xyz", want: 0},
		{name: "devanagari counted by rune", a: "रुपये", b: "रुपए", want: 3.0 / 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, Similarity(tt.b, tt.a), 1e-9, "similarity must be symmetric")
		})
	}
}

func TestMatch(t *testing.T) {
	units := []string{"rupees", "rupee", "rupaye"}

	got, ok := Match("rupes", units, DefaultThreshold)
	assert.True(t, ok)
	assert.Equal(t, "rupees", got, "first target at or above threshold wins")

	_, ok = Match("dosa", units, DefaultThreshold)
	assert.False(t, ok)

	_, ok = Match("anything", nil, DefaultThreshold)
	assert.False(t, ok)
}

func TestBest(t *testing.T) {
	got, score, ok := Best("rupaiye", []string{"rupees", "rupaye", "rupaiye"}, 0.5)
	assert.True(t, ok)
	assert.Equal(t, "rupaiye", got)
	assert.InDelta(t, 1.0, score, 1e-9)

	_, _, ok = Best("xyz", []string{"rupees"}, 0.7)
	assert.False(t, ok)
}
