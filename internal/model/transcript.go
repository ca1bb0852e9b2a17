package model

import "strings"

// AudioQuality is the optional hint supplied by the speech-to-text step.
type AudioQuality string

// Audio quality hints.
const (
	AudioQualityGood     AudioQuality = "good"
	AudioQualityModerate AudioQuality = "moderate"
	AudioQualityPoor     AudioQuality = "poor"
)

// Transcript is the input to the extraction pipeline.
type Transcript struct {
	Text             string       `json:"text"`
	AudioQualityHint AudioQuality `json:"audioQualityHint,omitempty"`
	Alternatives     []string     `json:"alternatives,omitempty"`
	RetryCount       int          `json:"retryCount,omitempty"`
}

// Texts returns the primary text followed by the non-empty alternatives in rank order.
func (t Transcript) Texts() []string {
	texts := make([]string, 0, 1+len(t.Alternatives))
	texts = append(texts, t.Text)
	for _, alt := range t.Alternatives {
		if alt != "" {
			texts = append(texts, alt)
		}
	}
	return texts
}

// Primary returns the text to lead with and the alternatives behind it. A blank
// Text gives way to the first non-empty alternative.
func (t Transcript) Primary() (string, []string) {
	if strings.TrimSpace(t.Text) != "" {
		return t.Text, t.Alternatives
	}
	for i, alt := range t.Alternatives {
		if strings.TrimSpace(alt) != "" {
			return alt, t.Alternatives[i+1:]
		}
	}
	return t.Text, nil
}
