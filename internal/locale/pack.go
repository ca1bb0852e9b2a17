// Package locale holds the locale pack: the category, merchant, numeral and
// pattern tables plus the tunable thresholds that drive extraction.
package locale

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/Veraticus/kharcha/internal/common"
	"github.com/Veraticus/kharcha/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// AmountGroup is the capture group substituted for {amount} in pattern regexes.
// It accepts Indian (1,00,000) and Western (1,500) digit grouping with an optional fraction.
const AmountGroup = `(\d{1,3}(?:,\d{2,3})+(?:\.\d+)?|\d+(?:\.\d+)?)`

// CategoryDefinition lists the cues that vote for one category.
type CategoryDefinition struct {
	Name     model.Category `mapstructure:"name"`
	Keywords []string       `mapstructure:"keywords"`
	Verbs    []string       `mapstructure:"verbs"`
}

// NumeralWord maps a spoken number word to its value. Fractional words
// ("dedh" is 1.5) carry a fractional value.
type NumeralWord struct {
	Word  string  `mapstructure:"word"`
	Value float64 `mapstructure:"value"`
}

// Pattern is a deterministic amount pattern. Higher priority patterns are tried first.
type Pattern struct {
	Name     string `mapstructure:"name"`
	Regex    string `mapstructure:"regex"`
	Priority int    `mapstructure:"priority"`
}

// MealWindow is an hour range [Start, End) in which food gets a small nudge.
type MealWindow struct {
	Name  string `mapstructure:"name"`
	Start int    `mapstructure:"start"`
	End   int    `mapstructure:"end"`
}

// Contains reports whether hour falls inside the window.
func (w MealWindow) Contains(hour int) bool {
	return hour >= w.Start && hour < w.End
}

// Weights are the category scoring weights.
type Weights struct {
	Keyword   float64 `mapstructure:"keyword"`
	Verb      float64 `mapstructure:"verb"`
	Bigram    float64 `mapstructure:"bigram"`
	TimeNudge float64 `mapstructure:"time_nudge"`
}

// Thresholds gate the pipeline transitions.
type Thresholds struct {
	Accept        float64 `mapstructure:"accept"`
	Retry         float64 `mapstructure:"retry"`
	CategoryFloor float64 `mapstructure:"category_floor"`
	Fuzzy         float64 `mapstructure:"fuzzy"`
	MaxRetries    int     `mapstructure:"max_retries"`
}

// Confidence holds the fixed confidences each stage reports.
type Confidence struct {
	Rule      float64 `mapstructure:"rule"`
	AIDefault float64 `mapstructure:"ai_default"`
	Fallback  float64 `mapstructure:"fallback"`
}

// Pack is an immutable snapshot of locale data. Do not modify a Pack after it
// has been handed to a Store.
type Pack struct {
	Name            string               `mapstructure:"name"`
	Categories      []CategoryDefinition `mapstructure:"categories"`
	Merchants       []string             `mapstructure:"merchants"`
	Numerals        []NumeralWord        `mapstructure:"numerals"`
	Magnitudes      []NumeralWord        `mapstructure:"magnitudes"`
	EnglishNumbers  []string             `mapstructure:"english_numbers"`
	CurrencyUnits   []string             `mapstructure:"currency_units"`
	CurrencySymbols []string             `mapstructure:"currency_symbols"`
	SpendVerbs      []string             `mapstructure:"spend_verbs"`
	Patterns        []Pattern            `mapstructure:"patterns"`
	MealWindows     []MealWindow         `mapstructure:"meal_windows"`
	Weights         Weights              `mapstructure:"weights"`
	Thresholds      Thresholds           `mapstructure:"thresholds"`
	Confidence      Confidence           `mapstructure:"confidence"`
	MaxAmount       int64                `mapstructure:"max_amount"`
}

// Fold lowercases and NFC-normalises s so table lookups compare like with like.
func Fold(s string) string {
	return norm.NFC.String(strings.ToLower(s))
}

// MaxAmountDecimal returns the amount upper bound.
func (p *Pack) MaxAmountDecimal() decimal.Decimal {
	return decimal.NewFromInt(p.MaxAmount)
}

// InBounds reports whether amount is a plausible single expense.
func (p *Pack) InBounds(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.LessThanOrEqual(p.MaxAmountDecimal())
}

// ExpandPattern substitutes the {amount}, {unit}, {symbol} and {spend}
// placeholders in raw with the pack's tables.
func (p *Pack) ExpandPattern(raw string) string {
	return strings.NewReplacer(
		"{amount}", AmountGroup,
		"{unit}", alternation(p.CurrencyUnits),
		"{symbol}", alternation(p.CurrencySymbols),
		"{spend}", alternation(p.SpendVerbs),
	).Replace(raw)
}

// alternation quotes words and joins them longest first.
func alternation(words []string) string {
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len([]rune(sorted[i])) > len([]rune(sorted[j]))
	})

	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

// normalize folds every table entry in place.
func (p *Pack) normalize() {
	foldAll := func(words []string) {
		for i, w := range words {
			words[i] = Fold(strings.TrimSpace(w))
		}
	}

	for i := range p.Categories {
		p.Categories[i].Name = model.Category(Fold(string(p.Categories[i].Name)))
		foldAll(p.Categories[i].Keywords)
		foldAll(p.Categories[i].Verbs)
	}
	for i := range p.Numerals {
		p.Numerals[i].Word = Fold(p.Numerals[i].Word)
	}
	for i := range p.Magnitudes {
		p.Magnitudes[i].Word = Fold(p.Magnitudes[i].Word)
	}
	foldAll(p.Merchants)
	foldAll(p.EnglishNumbers)
	foldAll(p.CurrencyUnits)
	foldAll(p.CurrencySymbols)
	foldAll(p.SpendVerbs)
}

// Validate checks the pack for internal consistency.
func (p *Pack) Validate() error {
	if len(p.Categories) == 0 {
		return fmt.Errorf("%w: locale pack has no categories", common.ErrInvalidConfig)
	}

	seen := make(map[model.Category]bool)
	for i, def := range p.Categories {
		if !def.Name.IsValid() || def.Name == model.CategoryOther {
			return fmt.Errorf("%w: category %d has unsupported name %q", common.ErrInvalidConfig, i, def.Name)
		}
		if seen[def.Name] {
			return fmt.Errorf("%w: duplicate category %q", common.ErrInvalidConfig, def.Name)
		}
		seen[def.Name] = true
		if len(def.Keywords) == 0 && len(def.Verbs) == 0 {
			return fmt.Errorf("%w: category %q has no keywords or verbs", common.ErrInvalidConfig, def.Name)
		}
	}

	if p.MaxAmount <= 0 {
		return fmt.Errorf("%w: max_amount must be positive, got %d", common.ErrInvalidConfig, p.MaxAmount)
	}

	for _, table := range [][]NumeralWord{p.Numerals, p.Magnitudes} {
		for _, n := range table {
			if n.Word == "" || n.Value <= 0 {
				return fmt.Errorf("%w: numeral %q has value %g", common.ErrInvalidConfig, n.Word, n.Value)
			}
		}
	}

	if len(p.CurrencyUnits) == 0 {
		return fmt.Errorf("%w: locale pack has no currency units", common.ErrInvalidConfig)
	}

	if err := p.validateThresholds(); err != nil {
		return err
	}

	for _, w := range p.MealWindows {
		if w.Start < 0 || w.End > 24 || w.Start >= w.End {
			return fmt.Errorf("%w: meal window %q has invalid hours %d-%d", common.ErrInvalidConfig, w.Name, w.Start, w.End)
		}
	}

	for _, pat := range p.Patterns {
		re, err := regexp.Compile(p.ExpandPattern(pat.Regex))
		if err != nil {
			return fmt.Errorf("%w: pattern %s: %w", common.ErrInvalidConfig, pat.Name, err)
		}
		if re.NumSubexp() != 1 {
			return fmt.Errorf("%w: pattern %s must have exactly one capture group, has %d",
				common.ErrInvalidConfig, pat.Name, re.NumSubexp())
		}
	}

	return nil
}

func (p *Pack) validateThresholds() error {
	unit := map[string]float64{
		"thresholds.accept":     p.Thresholds.Accept,
		"thresholds.retry":      p.Thresholds.Retry,
		"thresholds.fuzzy":      p.Thresholds.Fuzzy,
		"confidence.rule":       p.Confidence.Rule,
		"confidence.ai_default": p.Confidence.AIDefault,
		"confidence.fallback":   p.Confidence.Fallback,
	}
	for name, v := range unit {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be between 0 and 1, got %.2f", common.ErrInvalidConfig, name, v)
		}
	}

	if p.Thresholds.Retry > p.Thresholds.Accept {
		return fmt.Errorf("%w: retry threshold %.2f is above accept threshold %.2f",
			common.ErrInvalidConfig, p.Thresholds.Retry, p.Thresholds.Accept)
	}
	if p.Thresholds.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", common.ErrInvalidConfig)
	}

	w := p.Weights
	if w.Keyword < 0 || w.Verb < 0 || w.Bigram < 0 || w.TimeNudge < 0 || p.Thresholds.CategoryFloor < 0 {
		return fmt.Errorf("%w: weights must not be negative", common.ErrInvalidConfig)
	}

	return nil
}

// Words folds s and splits it on whitespace and punctuation.
func Words(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}
