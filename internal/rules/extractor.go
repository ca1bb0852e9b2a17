package rules

import (
	"fmt"
	"strings"

	"github.com/Veraticus/kharcha/internal/common"
	"github.com/Veraticus/kharcha/internal/fuzzy"
	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/Veraticus/kharcha/internal/merchant"
	"github.com/Veraticus/kharcha/internal/model"
	"github.com/Veraticus/kharcha/internal/numeral"
	"github.com/Veraticus/kharcha/internal/scoring"
	"github.com/shopspring/decimal"
)

// NumeralPatternName labels outcomes resolved by the numeral word parser.
const NumeralPatternName = "numeral_words"

// minFuzzyLen keeps short tokens like "ka" from being pulled onto "rs".
const minFuzzyLen = 4

// Outcome is the result of one rule-based attempt. Candidate is nil on failure.
type Outcome struct {
	Candidate   *model.ExpenseCandidate
	Err         error
	PatternName string
	Confidence  float64
}

// Extractor runs the numeral parser and the pack's amount patterns.
type Extractor struct {
	pack      *locale.Pack
	numerals  *numeral.Parser
	scorer    *scoring.Scorer
	merchants *merchant.Detector
	patterns  []CompiledPattern
	units     []string
}

// NewExtractor builds an extractor for one pack snapshot.
func NewExtractor(pack *locale.Pack, scorer *scoring.Scorer, merchants *merchant.Detector) (*Extractor, error) {
	patterns, err := CompilePatterns(pack)
	if err != nil {
		return nil, err
	}

	units := make([]string, 0, len(pack.CurrencyUnits))
	for _, u := range pack.CurrencyUnits {
		if len([]rune(u)) >= minFuzzyLen {
			units = append(units, u)
		}
	}

	return &Extractor{
		pack:      pack,
		numerals:  numeral.NewParser(pack),
		scorer:    scorer,
		merchants: merchants,
		patterns:  patterns,
		units:     units,
	}, nil
}

// Extract resolves the amount in text and assembles a rule-based candidate.
func (e *Extractor) Extract(text string) Outcome {
	canonical := e.Canonicalize(text)

	amount, patternName, description, err := e.resolveAmount(canonical)
	if err != nil {
		return Outcome{Err: err, PatternName: patternName}
	}

	if description == "" {
		description = text
	}

	category, _ := e.scorer.Best(text)

	return Outcome{
		Candidate: &model.ExpenseCandidate{
			Amount:           amount,
			Category:         category,
			Merchant:         e.merchants.Detect(text),
			Description:      description,
			OriginalText:     text,
			Confidence:       e.pack.Confidence.Rule,
			ExtractionMethod: model.MethodRuleBased,
		},
		Confidence:  e.pack.Confidence.Rule,
		PatternName: patternName,
	}
}

func (e *Extractor) resolveAmount(canonical string) (decimal.Decimal, string, string, error) {
	if amount, ok := e.numerals.Parse(canonical); ok {
		if !e.pack.InBounds(amount) {
			return decimal.Zero, NumeralPatternName, "", fmt.Errorf("numeral %s: %w", amount, common.ErrAmountOutOfBounds)
		}
		return amount, NumeralPatternName, "", nil
	}

	m, ok := FindAmount(e.patterns, canonical)
	if !ok {
		return decimal.Zero, "", "", common.ErrNoAmountFound
	}

	amount, err := ParseAmount(m.Amount)
	if err != nil {
		return decimal.Zero, m.PatternName, "", fmt.Errorf("pattern %s: %w", m.PatternName, err)
	}
	if !e.pack.InBounds(amount) {
		return decimal.Zero, m.PatternName, "", fmt.Errorf("pattern %s matched %s: %w",
			m.PatternName, amount, common.ErrAmountOutOfBounds)
	}

	rest := canonical[:m.Start] + " " + canonical[m.End:]
	return amount, m.PatternName, strings.Join(strings.Fields(rest), " "), nil
}

// Canonicalize folds text, converts digits to ASCII, and snaps near-miss
// currency unit words ("rupes") onto the pack's spelling.
func (e *Extractor) Canonicalize(text string) string {
	fields := strings.Fields(locale.Fold(numeral.ASCIIDigits(text)))

	for i, f := range fields {
		if len([]rune(f)) < minFuzzyLen || e.isUnit(f) {
			continue
		}
		if unit, _, ok := fuzzy.Best(f, e.units, e.pack.Thresholds.Fuzzy); ok {
			fields[i] = unit
		}
	}

	return strings.Join(fields, " ")
}

func (e *Extractor) isUnit(word string) bool {
	for _, u := range e.pack.CurrencyUnits {
		if word == u {
			return true
		}
	}
	return false
}

// ParseAmount parses a captured amount, dropping Indian or Western digit grouping.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", common.ErrNoAmountFound, raw)
	}
	return amount, nil
}
