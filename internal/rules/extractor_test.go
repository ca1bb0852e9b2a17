package rules

import (
	"testing"
	"time"

	"github.com/Veraticus/kharcha/internal/common"
	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/Veraticus/kharcha/internal/merchant"
	"github.com/Veraticus/kharcha/internal/model"
	"github.com/Veraticus/kharcha/internal/scoring"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	pack := locale.MustDefault()
	clock := func() time.Time { return time.Date(2025, 3, 14, 17, 0, 0, 0, time.UTC) }
	e, err := NewExtractor(pack, scoring.NewScorer(pack, clock), merchant.NewDetector(pack))
	require.NoError(t, err)
	return e
}

func TestExtractor_Extract(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name        string
		text        string
		wantAmount  string
		wantPattern string
		wantCat     model.Category
		wantDesc    string
	}{
		{
			name:        "hinglish postposition",
			text:        "200 ka dosa khaya",
			wantAmount:  "200",
			wantPattern: "postposition",
			wantCat:     model.CategoryFood,
			wantDesc:    "dosa khaya",
		},
		{
			name:        "english with unit",
			text:        "bought new shoes for 500 rupees",
			wantAmount:  "500",
			wantPattern: "amount_unit",
			wantCat:     model.CategoryShopping,
			wantDesc:    "bought new shoes for",
		},
		{
			name:        "rupee sign",
			text:        "₹500",
			wantAmount:  "500",
			wantPattern: "currency_prefix",
			wantCat:     model.CategoryOther,
			wantDesc:    "₹500",
		},
		{
			name:        "western grouping",
			text:        "Rs. 1,500 ka petrol dalwaya",
			wantAmount:  "1500",
			wantPattern: "currency_prefix",
			wantCat:     model.CategoryTransport,
			wantDesc:    "ka petrol dalwaya",
		},
		{
			name:        "indian grouping",
			text:        "1,00,000 rupees house rent",
			wantAmount:  "100000",
			wantPattern: "amount_unit",
			wantCat:     model.CategoryUtilities,
			wantDesc:    "house rent",
		},
		{
			name:        "spend verb after",
			text:        "auto ke liye 80 diye",
			wantAmount:  "80",
			wantPattern: "spend_verb_after",
			wantCat:     model.CategoryTransport,
			wantDesc:    "auto ke liye",
		},
		{
			name:        "spend verb before",
			text:        "paid around 450 for lunch",
			wantAmount:  "450",
			wantPattern: "spend_verb_before",
			wantCat:     model.CategoryFood,
			wantDesc:    "for lunch",
		},
		{
			name:        "devanagari digits and unit",
			text:        "५०० रुपये का खाना",
			wantAmount:  "500",
			wantPattern: "amount_unit",
			wantCat:     model.CategoryFood,
			wantDesc:    "का खाना",
		},
		{
			name:        "numeral words",
			text:        "पचास रुपये की चाय",
			wantAmount:  "50",
			wantPattern: NumeralPatternName,
			wantCat:     model.CategoryFood,
			wantDesc:    "पचास रुपये की चाय",
		},
		{
			name:        "one thousand idiom",
			text:        "हज़ार रुपये का जूते",
			wantAmount:  "1000",
			wantPattern: NumeralPatternName,
			wantCat:     model.CategoryShopping,
			wantDesc:    "हज़ार रुपये का जूते",
		},
		{
			name:        "misspelled unit",
			text:        "300 rupes ki dawai",
			wantAmount:  "300",
			wantPattern: "amount_unit",
			wantCat:     model.CategoryHealthcare,
			wantDesc:    "ki dawai",
		},
		{
			name:        "decimal amount",
			text:        "₹ 99.50 coffee",
			wantAmount:  "99.5",
			wantPattern: "currency_prefix",
			wantCat:     model.CategoryFood,
			wantDesc:    "coffee",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.Extract(tt.text)
			require.NoError(t, out.Err)
			require.NotNil(t, out.Candidate)

			c := out.Candidate
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(c.Amount), "amount %s", c.Amount)
			assert.Equal(t, tt.wantPattern, out.PatternName)
			assert.Equal(t, tt.wantCat, c.Category)
			assert.Equal(t, tt.wantDesc, c.Description)
			assert.Equal(t, tt.text, c.OriginalText)
			assert.InDelta(t, 0.9, c.Confidence, 1e-9)
			assert.InDelta(t, 0.9, out.Confidence, 1e-9)
			assert.Equal(t, model.MethodRuleBased, c.ExtractionMethod)
		})
	}
}

func TestExtractor_CurrencyMarkedAmounts(t *testing.T) {
	e := newTestExtractor(t)

	for _, text := range []string{"₹500", "500 rupees", "rs 500", "INR 500", "500 rupaye", "500 रुपये", "500rs"} {
		t.Run(text, func(t *testing.T) {
			out := e.Extract(text)
			require.NoError(t, out.Err)
			assert.True(t, decimal.NewFromInt(500).Equal(out.Candidate.Amount))
			assert.InDelta(t, 0.9, out.Confidence, 1e-9)
		})
	}
}

func TestExtractor_Failures(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		wantErr error
		name    string
		text    string
	}{
		{name: "no numeral", text: "had a great meal today", wantErr: common.ErrNoAmountFound},
		{name: "bare number has no binding", text: "45", wantErr: common.ErrNoAmountFound},
		{name: "over bound", text: "150000 rupees ka laptop", wantErr: common.ErrAmountOutOfBounds},
		{name: "numeral over bound", text: "2 lakh ka phone", wantErr: common.ErrAmountOutOfBounds},
		{name: "zero", text: "₹0", wantErr: common.ErrAmountOutOfBounds},
		{name: "rs inside a word", text: "hours 200 baad", wantErr: common.ErrNoAmountFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.Extract(tt.text)
			assert.ErrorIs(t, out.Err, tt.wantErr)
			assert.Nil(t, out.Candidate)
			assert.Zero(t, out.Confidence)
		})
	}
}

func TestExtractor_Merchant(t *testing.T) {
	e := newTestExtractor(t)

	out := e.Extract("swiggy se 250 ki biryani")
	require.NoError(t, out.Err)
	require.NotNil(t, out.Candidate.Merchant)
	assert.Equal(t, "Swiggy", *out.Candidate.Merchant)
	assert.Equal(t, model.CategoryFood, out.Candidate.Category)

	out = e.Extract("200 ka dosa khaya")
	require.NoError(t, out.Err)
	assert.Nil(t, out.Candidate.Merchant)
}

func TestExtractor_Canonicalize(t *testing.T) {
	e := newTestExtractor(t)

	assert.Equal(t, "300 rupees ki dawai", e.Canonicalize("300 Rupes ki dawai"))
	assert.Equal(t, "200 ka dosa khaya", e.Canonicalize("200  ka dosa khaya"))
	assert.Equal(t, "500 ka", e.Canonicalize("५०० ka"))
}

func TestCompilePatterns_PriorityOrder(t *testing.T) {
	pack := locale.MustDefault()
	pack.Patterns = []locale.Pattern{
		{Name: "low", Regex: `{amount}`, Priority: 1},
		{Name: "high", Regex: `(?:{symbol})\s*{amount}`, Priority: 10},
		{Name: "mid", Regex: `{amount}\s*(?:{unit})`, Priority: 5},
	}

	compiled, err := CompilePatterns(pack)
	require.NoError(t, err)
	require.Len(t, compiled, 3)
	assert.Equal(t, "high", compiled[0].Name)
	assert.Equal(t, "mid", compiled[1].Name)
	assert.Equal(t, "low", compiled[2].Name)

	m, ok := FindAmount(compiled, "rs 20 and 30 rupees")
	require.True(t, ok)
	assert.Equal(t, "high", m.PatternName)
	assert.Equal(t, "20", m.Amount)
}

func TestCompilePatterns_Errors(t *testing.T) {
	pack := locale.MustDefault()

	pack.Patterns = []locale.Pattern{{Name: "broken", Regex: `({amount}`}}
	_, err := CompilePatterns(pack)
	assert.Error(t, err)

	pack.Patterns = []locale.Pattern{{Name: "two", Regex: `(a)|{amount}`}}
	_, err = CompilePatterns(pack)
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "500", want: "500"},
		{raw: "1,500", want: "1500"},
		{raw: "1,00,000", want: "100000"},
		{raw: "12.75", want: "12.75"},
		{raw: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrNoAmountFound)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got))
		})
	}
}
