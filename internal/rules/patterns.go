// Package rules extracts amounts with deterministic numeral and regex rules.
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/kharcha/internal/locale"
)

// CompiledPattern holds a compiled regex pattern with metadata.
type CompiledPattern struct {
	compiledRegex *regexp.Regexp
	locale.Pattern
}

// Match is the amount a pattern captured and the span of the whole match.
type Match struct {
	PatternName string
	Amount      string
	Start, End  int
}

// CompilePatterns expands and compiles the pack's patterns, highest priority first.
// Equal priorities keep pack order.
func CompilePatterns(pack *locale.Pack) ([]CompiledPattern, error) {
	compiled := make([]CompiledPattern, 0, len(pack.Patterns))

	for _, p := range pack.Patterns {
		regexStr := pack.ExpandPattern(p.Regex)
		if !strings.HasPrefix(regexStr, "(?i)") {
			regexStr = "(?i)" + regexStr
		}

		regex, err := regexp.Compile(regexStr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}
		if regex.NumSubexp() != 1 {
			return nil, fmt.Errorf("pattern %s must capture exactly one amount group", p.Name)
		}

		compiled = append(compiled, CompiledPattern{
			Pattern:       p,
			compiledRegex: regex,
		})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return compiled, nil
}

// FindAmount returns the first pattern match in priority order.
func FindAmount(patterns []CompiledPattern, text string) (Match, bool) {
	for _, p := range patterns {
		loc := p.compiledRegex.FindStringSubmatchIndex(text)
		if loc == nil || loc[2] < 0 {
			continue
		}
		return Match{
			PatternName: p.Name,
			Amount:      text[loc[2]:loc[3]],
			Start:       loc[0],
			End:         loc[1],
		}, true
	}
	return Match{}, false
}
