// Package fallback is the last-resort extractor: it takes the first number
// anywhere in the text when nothing better matched.
package fallback

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/kharcha/internal/common"
	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/Veraticus/kharcha/internal/merchant"
	"github.com/Veraticus/kharcha/internal/model"
	"github.com/Veraticus/kharcha/internal/numeral"
	"github.com/Veraticus/kharcha/internal/scoring"
	"github.com/shopspring/decimal"
)

// numberToken takes Indian (1,50,000) or Western (1,500,000) grouping, whose
// last group is always three digits, before a plain number. A plain number
// may end in a decimal comma only when one or two digits follow it.
var (
	numberToken  = regexp.MustCompile(`\d{1,3}(?:,\d{2,3})*,\d{3}(?:\.\d+)?|\d+(?:,\d{1,2}\b|\.\d+)?`)
	decimalComma = regexp.MustCompile(`^\d+,\d{1,2}$`)
)

// Extractor accepts the first plausible number token.
type Extractor struct {
	pack      *locale.Pack
	scorer    *scoring.Scorer
	merchants *merchant.Detector
}

// NewExtractor creates a fallback extractor for one pack snapshot.
func NewExtractor(pack *locale.Pack, scorer *scoring.Scorer, merchants *merchant.Detector) *Extractor {
	return &Extractor{pack: pack, scorer: scorer, merchants: merchants}
}

// Extract returns a low-confidence candidate built around the first number in text.
func (e *Extractor) Extract(text string) (*model.ExpenseCandidate, error) {
	token := numberToken.FindString(numeral.ASCIIDigits(text))
	if token == "" {
		return nil, common.ErrNoAmountFound
	}

	amount, err := parseToken(token)
	if err != nil {
		return nil, err
	}
	if !e.pack.InBounds(amount) {
		return nil, fmt.Errorf("fallback token %s: %w", token, common.ErrAmountOutOfBounds)
	}

	category, _ := e.scorer.Best(text)

	return &model.ExpenseCandidate{
		Amount:           amount,
		Category:         category,
		Merchant:         e.merchants.Detect(text),
		Description:      text,
		OriginalText:     text,
		Confidence:       e.pack.Confidence.Fallback,
		ExtractionMethod: model.MethodFallback,
	}, nil
}

// parseToken reads "12,50" as a decimal comma and any other comma as digit grouping.
func parseToken(token string) (decimal.Decimal, error) {
	if decimalComma.MatchString(token) {
		token = strings.Replace(token, ",", ".", 1)
	} else {
		token = strings.ReplaceAll(token, ",", "")
	}

	amount, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", common.ErrNoAmountFound, token)
	}
	return amount, nil
}
