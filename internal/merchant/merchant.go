// Package merchant spots well-known merchant names in a transcript.
package merchant

import (
	"strings"

	"github.com/Veraticus/kharcha/internal/locale"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Detector matches against the pack's merchant list in pack order.
type Detector struct {
	merchants []string
}

// NewDetector builds a detector from pack.
func NewDetector(pack *locale.Pack) *Detector {
	return &Detector{merchants: pack.Merchants}
}

// Detect returns the first merchant contained in text, title-cased, or nil.
func (d *Detector) Detect(text string) *string {
	folded := locale.Fold(text)
	for _, m := range d.merchants {
		if m != "" && strings.Contains(folded, m) {
			name := DisplayName(m)
			return &name
		}
	}
	return nil
}

// DisplayName title-cases each word of a merchant name.
func DisplayName(raw string) string {
	caser := cases.Title(language.English)
	words := strings.Fields(strings.TrimSpace(raw))
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
