package locale

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/Veraticus/kharcha/internal/common"
	"github.com/Veraticus/kharcha/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	names := make([]model.Category, 0, len(p.Categories))
	for _, def := range p.Categories {
		names = append(names, def.Name)
	}
	assert.Equal(t, []model.Category{
		model.CategoryFood,
		model.CategoryTransport,
		model.CategoryEntertainment,
		model.CategoryShopping,
		model.CategoryHealthcare,
		model.CategoryUtilities,
	}, names)

	assert.Equal(t, int64(100000), p.MaxAmount)
	assert.InDelta(t, 0.8, p.Thresholds.Accept, 1e-9)
	assert.InDelta(t, 0.6, p.Thresholds.Retry, 1e-9)
	assert.InDelta(t, 0.5, p.Thresholds.CategoryFloor, 1e-9)
	assert.Equal(t, 2, p.Thresholds.MaxRetries)
	assert.InDelta(t, 1.0, p.Weights.Keyword, 1e-9)
	assert.InDelta(t, 1.5, p.Weights.Verb, 1e-9)
	assert.InDelta(t, 2.0, p.Weights.Bigram, 1e-9)
	assert.InDelta(t, 0.3, p.Weights.TimeNudge, 1e-9)
	assert.InDelta(t, 0.9, p.Confidence.Rule, 1e-9)
	assert.InDelta(t, 0.7, p.Confidence.AIDefault, 1e-9)
	assert.InDelta(t, 0.6, p.Confidence.Fallback, 1e-9)
	assert.Len(t, p.MealWindows, 3)
	assert.NotEmpty(t, p.Patterns)
	assert.Contains(t, p.CurrencySymbols, "₹")
}

func TestDefault_TablesAreFolded(t *testing.T) {
	p := MustDefault()
	for _, m := range p.Merchants {
		assert.Equal(t, Fold(m), m)
	}
	for _, n := range append(append([]NumeralWord{}, p.Numerals...), p.Magnitudes...) {
		assert.Equal(t, Fold(n.Word), n.Word)
	}
}

func TestFold_NuktaForms(t *testing.T) {
	precomposed := "\u095B"
	decomposed := "\u091C\u093C"
	assert.Equal(t, Fold(decomposed), Fold(precomposed))
	assert.Equal(t, "rupees", Fold("RuPeEs"))
}

func TestMealWindow_Contains(t *testing.T) {
	w := MealWindow{Name: "lunch", Start: 12, End: 15}
	assert.False(t, w.Contains(11))
	assert.True(t, w.Contains(12))
	assert.True(t, w.Contains(14))
	assert.False(t, w.Contains(15))
}

func TestPack_InBounds(t *testing.T) {
	p := MustDefault()
	assert.True(t, p.InBounds(decimal.NewFromInt(1)))
	assert.True(t, p.InBounds(decimal.NewFromInt(100000)))
	assert.False(t, p.InBounds(decimal.NewFromInt(150000)))
	assert.False(t, p.InBounds(decimal.Zero))
	assert.False(t, p.InBounds(decimal.NewFromInt(-5)))
}

func TestPack_ExpandPattern(t *testing.T) {
	p := MustDefault()

	for _, pat := range p.Patterns {
		t.Run(pat.Name, func(t *testing.T) {
			re, err := regexp.Compile(p.ExpandPattern(pat.Regex))
			require.NoError(t, err)
			assert.Equal(t, 1, re.NumSubexp())
		})
	}

	re := regexp.MustCompile(p.ExpandPattern(`{amount}\s*(?:{unit})`))
	m := re.FindStringSubmatch("1,00,000 rupees")
	require.Len(t, m, 2)
	assert.Equal(t, "1,00,000", m[1])
}

func TestPack_Validate(t *testing.T) {
	tests := []struct {
		mutate func(*Pack)
		name   string
	}{
		{name: "no categories", mutate: func(p *Pack) { p.Categories = nil }},
		{name: "unknown category", mutate: func(p *Pack) { p.Categories[0].Name = "travel" }},
		{name: "other is implicit", mutate: func(p *Pack) { p.Categories[0].Name = model.CategoryOther }},
		{name: "duplicate category", mutate: func(p *Pack) { p.Categories[1].Name = p.Categories[0].Name }},
		{name: "zero max amount", mutate: func(p *Pack) { p.MaxAmount = 0 }},
		{name: "numeral without value", mutate: func(p *Pack) { p.Numerals[0].Value = 0 }},
		{name: "retry above accept", mutate: func(p *Pack) { p.Thresholds.Retry = 0.95 }},
		{name: "accept above one", mutate: func(p *Pack) { p.Thresholds.Accept = 1.5 }},
		{name: "negative weight", mutate: func(p *Pack) { p.Weights.Bigram = -1 }},
		{name: "bad meal window", mutate: func(p *Pack) { p.MealWindows[0].End = p.MealWindows[0].Start }},
		{name: "bad regex", mutate: func(p *Pack) { p.Patterns[0].Regex = `({amount}` }},
		{name: "two groups", mutate: func(p *Pack) { p.Patterns[0].Regex = `(rs)\s*{amount}` }},
		{name: "no units", mutate: func(p *Pack) { p.CurrencyUnits = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Default()
			require.NoError(t, err)
			tt.mutate(p)
			assert.ErrorIs(t, p.Validate(), common.ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.yaml")
	require.NoError(t, os.WriteFile(path, DefaultYAML(), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hi-en-default", p.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoad_InvalidPack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: empty\nmax_amount: 10\n"), 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestStore_SwapNotifies(t *testing.T) {
	first := MustDefault()
	store := NewStore(first, nil)
	assert.Same(t, first, store.Pack())

	var seen *Pack
	store.OnSwap(func(p *Pack) { seen = p })

	second := MustDefault()
	second.Name = "second"
	store.Swap(second)

	assert.Same(t, second, store.Pack())
	assert.Same(t, second, seen)
}

func TestStore_ReloadKeepsPackOnError(t *testing.T) {
	store := NewStore(MustDefault(), nil)
	before := store.Pack()

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: broken\n"), 0o600))

	assert.Error(t, store.Reload(path))
	assert.Same(t, before, store.Pack())
}

func TestStore_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.yaml")
	require.NoError(t, os.WriteFile(path, DefaultYAML(), 0o600))

	store := NewStore(MustDefault(), nil)
	require.NoError(t, store.Watch(path))

	edited := []byte(replaceName(string(DefaultYAML()), "edited"))
	require.NoError(t, os.WriteFile(path, edited, 0o600))

	require.Eventually(t, func() bool {
		return store.Pack().Name == "edited"
	}, 5*time.Second, 20*time.Millisecond)
}

func replaceName(src, name string) string {
	re := regexp.MustCompile(`(?m)^name: .*$`)
	return re.ReplaceAllString(src, "name: "+name)
}
