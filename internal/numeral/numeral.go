// Package numeral resolves spoken Hindi and Hinglish number words to integers.
package numeral

import (
	"strings"
	"unicode"

	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/shopspring/decimal"
)

// Parser resolves numeral words using one locale pack snapshot.
type Parser struct {
	numerals   map[string]decimal.Decimal
	magnitudes map[string]decimal.Decimal
	units      map[string]bool
	symbols    map[string]bool
	spendVerbs map[string]bool
	english    map[string]bool
}

// NewParser builds a parser from pack.
func NewParser(pack *locale.Pack) *Parser {
	p := &Parser{
		numerals:   make(map[string]decimal.Decimal, len(pack.Numerals)),
		magnitudes: make(map[string]decimal.Decimal, len(pack.Magnitudes)),
		units:      toSet(pack.CurrencyUnits),
		symbols:    toSet(pack.CurrencySymbols),
		spendVerbs: toSet(pack.SpendVerbs),
		english:    toSet(pack.EnglishNumbers),
	}
	for _, n := range pack.Numerals {
		p.numerals[n.Word] = decimal.NewFromFloat(n.Value)
	}
	for _, m := range pack.Magnitudes {
		p.magnitudes[m.Word] = decimal.NewFromFloat(m.Value)
	}
	return p
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Parse returns the amount spoken in text, trying in order a compound
// multiplier-magnitude phrase, a bare magnitude ("हज़ार" alone is a thousand),
// and a single numeral word bound to a currency unit or symbol.
//
// A magnitude that follows a word the pack does not know is left unresolved:
// the word may be a multiplier missing from the tables, and guessing would
// report the wrong amount.
func (p *Parser) Parse(text string) (decimal.Decimal, bool) {
	tokens := Tokenize(text, p.symbols)

	if v, ok, decided := p.compound(tokens); decided {
		return v, ok
	}
	if v, ok, decided := p.bareMagnitude(tokens); decided {
		return v, ok
	}
	return p.boundSingle(tokens)
}

// compound finds the first multiplier-magnitude pair and extends it with any
// following pairs of strictly smaller magnitude, plus a trailing unit numeral:
// "एक हज़ार पांच सौ" is 1500 and "ek sau pachas" is 150. decided is true once
// a pair is found; ok is false when the pair is itself preceded by a numeral
// ("sawa do sau"), which the tables cannot combine.
func (p *Parser) compound(tokens []string) (total decimal.Decimal, ok, decided bool) {
	for i := 0; i+1 < len(tokens); i++ {
		mult, ok := p.multiplier(tokens[i])
		if !ok {
			continue
		}
		mag, ok := p.magnitudes[tokens[i+1]]
		if !ok {
			continue
		}
		if i > 0 {
			if _, ok := p.numerals[tokens[i-1]]; ok {
				return decimal.Zero, false, true
			}
		}

		total = mult.Mul(mag)
		last := mag
		j := i + 2
		for j < len(tokens) {
			m, ok := p.multiplier(tokens[j])
			if !ok {
				break
			}
			if j+1 < len(tokens) {
				if next, ok := p.magnitudes[tokens[j+1]]; ok && next.LessThan(last) {
					total = total.Add(m.Mul(next))
					last = next
					j += 2
					continue
				}
			}
			if m.LessThan(last) {
				total = total.Add(m)
			}
			break
		}
		return total, true, true
	}
	return decimal.Zero, false, false
}

// bareMagnitude resolves the first magnitude word on its own. It only
// counts when it opens the text or follows a currency symbol or spend verb.
func (p *Parser) bareMagnitude(tokens []string) (v decimal.Decimal, ok, decided bool) {
	for i, tok := range tokens {
		mag, found := p.magnitudes[tok]
		if !found {
			continue
		}
		if i == 0 || p.symbols[tokens[i-1]] || p.spendVerbs[tokens[i-1]] {
			return mag, true, true
		}
		return decimal.Zero, false, true
	}
	return decimal.Zero, false, false
}

// multiplier accepts a numeral word or a digit run, which may carry a
// decimal point ("1.5 hazaar").
func (p *Parser) multiplier(tok string) (decimal.Decimal, bool) {
	if v, ok := p.numerals[tok]; ok {
		return v, true
	}
	return digitsValue(tok)
}

func (p *Parser) boundSingle(tokens []string) (decimal.Decimal, bool) {
	for i, tok := range tokens {
		v, ok := p.numerals[tok]
		if !ok {
			continue
		}
		if i+1 < len(tokens) && p.units[tokens[i+1]] {
			return v, true
		}
		if i > 0 && p.symbols[tokens[i-1]] {
			return v, true
		}
	}
	return decimal.Zero, false
}

// HasNumeralCue reports whether text holds any numeral token at all: a digit
// in any script, a Hindi numeral or magnitude word, or an English number word.
func (p *Parser) HasNumeralCue(text string) bool {
	for _, r := range text {
		if unicode.IsDigit(r) {
			return true
		}
	}

	for _, tok := range Tokenize(text, p.symbols) {
		if _, ok := p.numerals[tok]; ok {
			return true
		}
		if _, ok := p.magnitudes[tok]; ok {
			return true
		}
		if p.english[tok] {
			return true
		}
	}
	return false
}

func digitsValue(tok string) (decimal.Decimal, bool) {
	if tok == "" || len(tok) > 15 {
		return decimal.Zero, false
	}
	for _, r := range tok {
		if !isASCIIDigit(r) && r != '.' && r != ',' {
			return decimal.Zero, false
		}
	}
	if strings.Count(tok, ".") > 1 {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(tok, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

// Tokenize folds text and splits it on spaces and punctuation. Currency
// symbols glued to a word ("₹पचास") become their own token. A "." or ","
// between two digits stays inside the token, so "1.5" and "1,500" survive.
func Tokenize(text string, symbols map[string]bool) []string {
	folded := locale.Fold(ASCIIDigits(text))

	for sym := range symbols {
		if sym != "" && !isWord(sym) {
			folded = strings.ReplaceAll(folded, sym, " "+sym+" ")
		}
	}

	runes := []rune(folded)
	var (
		tokens []string
		start  = -1
	)
	for i, r := range runes {
		sep := unicode.IsSpace(r) || unicode.IsPunct(r)
		if (r == '.' || r == ',') && i > 0 && i+1 < len(runes) && isASCIIDigit(runes[i-1]) && isASCIIDigit(runes[i+1]) {
			sep = false
		}
		switch {
		case sep && start >= 0:
			tokens = append(tokens, string(runes[start:i]))
			start = -1
		case !sep && start < 0:
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, string(runes[start:]))
	}
	return tokens
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// ASCIIDigits rewrites decimal digits from any script (०-९ and others) as ASCII.
func ASCIIDigits(text string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII && unicode.IsDigit(r) {
			if d := digitValue(r); d >= 0 {
				return '0' + rune(d)
			}
		}
		return r
	}, text)
}

// digitValue finds r's position within its Unicode decimal digit block.
// Every Nd block is a contiguous run of ten code points starting at zero.
func digitValue(r rune) int {
	for d := 0; d <= 9; d++ {
		zero := r - rune(d)
		if unicode.IsDigit(zero) && !unicode.IsDigit(zero-1) {
			return d
		}
	}
	return -1
}
