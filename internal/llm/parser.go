package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Veraticus/kharcha/internal/common"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"
)

// Response is the provider's reading of an utterance after validation.
// Category is left raw; coercion into the closed set happens later.
type Response struct {
	Merchant    *string
	Confidence  *float64
	Category    string
	Description string
	Amount      decimal.Decimal
}

const responseSchema = `{
  "type": "object",
  "properties": {
    "amount": {"type": ["number", "string", "null"]},
    "category": {"type": ["string", "null"]},
    "merchant": {"type": ["string", "null"]},
    "description": {"type": ["string", "null"]},
    "confidence": {"type": ["number", "string", "null"], "minimum": 0, "maximum": 1}
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("response.json", strings.NewReader(responseSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("response.json")
})

// FindJSONObject returns the first balanced {...} object in raw. Braces inside
// JSON strings are ignored, so fenced code blocks and chatty prefixes are fine.
func FindJSONObject(raw string) (string, bool) {
	for start := strings.IndexByte(raw, '{'); start >= 0; {
		if end, ok := matchBrace(raw, start); ok {
			return raw[start : end+1], true
		}

		next := strings.IndexByte(raw[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace finds the brace closing the one at start.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// ParseResponse extracts, validates and decodes the provider's JSON reply.
// A missing or zero amount is ErrNoAmountFound; anything unreadable is
// ErrMalformedProviderResponse.
func ParseResponse(raw string) (Response, error) {
	obj, ok := FindJSONObject(raw)
	if !ok {
		return Response{}, fmt.Errorf("%w: no JSON object in %q", common.ErrMalformedProviderResponse, truncate(raw, 80))
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(obj)))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Response{}, fmt.Errorf("%w: %w", common.ErrMalformedProviderResponse, err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return Response{}, fmt.Errorf("compile response schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Response{}, fmt.Errorf("%w: json does not match schema: %w", common.ErrMalformedProviderResponse, err)
	}

	fields, _ := doc.(map[string]any)

	amount, err := parseAmount(fields["amount"])
	if err != nil {
		return Response{}, err
	}

	resp := Response{
		Amount:      amount,
		Category:    stringField(fields, "category"),
		Description: strings.TrimSpace(stringField(fields, "description")),
	}

	if m := strings.TrimSpace(stringField(fields, "merchant")); m != "" && !strings.EqualFold(m, "null") {
		resp.Merchant = &m
	}

	if c, ok := parseConfidence(fields["confidence"]); ok {
		resp.Confidence = &c
	}

	return resp, nil
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// parseAmount accepts a JSON number or a string such as "₹1,500".
func parseAmount(v any) (decimal.Decimal, error) {
	var raw string
	switch a := v.(type) {
	case json.Number:
		raw = a.String()
	case string:
		raw = keepNumeric(a)
	case nil:
		return decimal.Zero, fmt.Errorf("provider returned no amount: %w", common.ErrNoAmountFound)
	}

	if raw == "" {
		return decimal.Zero, fmt.Errorf("provider returned no amount: %w", common.ErrNoAmountFound)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q: %w", common.ErrMalformedProviderResponse, raw, err)
	}
	if amount.IsZero() {
		return decimal.Zero, fmt.Errorf("provider returned zero amount: %w", common.ErrNoAmountFound)
	}
	return amount, nil
}

// parseConfidence reads a number, a numeric string, or a percentage like
// "85%". Values outside [0,1] are rejected.
func parseConfidence(v any) (float64, bool) {
	var c float64
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		c = f
	case string:
		s := strings.TrimSpace(t)
		percent := strings.HasSuffix(s, "%")
		f, err := strconv.ParseFloat(keepNumeric(s), 64)
		if err != nil {
			return 0, false
		}
		if percent {
			f /= 100
		}
		c = f
	default:
		return 0, false
	}

	if c < 0 || c > 1 {
		return 0, false
	}
	return c, true
}

// keepNumeric drops everything except digits and the decimal point.
func keepNumeric(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
}
