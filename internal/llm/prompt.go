package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/Veraticus/kharcha/internal/model"
)

// maxCuesPerCategory keeps the prompt short; the first cues in the pack are the strongest.
const maxCuesPerCategory = 8

// SystemPrompt is sent with every extraction request.
const SystemPrompt = "You extract expenses from short spoken notes by Indian users in Hindi, English or Hinglish. " +
	"You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, " +
	"or commentary before or after the JSON. Start your response directly with { and end with }."

// Request is the utterance handed to the AI stage.
type Request struct {
	Text         string
	AudioQuality model.AudioQuality
	Alternatives []string
}

// BuildPrompt renders the user prompt for req using the pack's categories and cues.
func BuildPrompt(pack *locale.Pack, req Request) string {
	var categoryList strings.Builder
	for _, def := range pack.Categories {
		cues := append(head(def.Keywords, maxCuesPerCategory), head(def.Verbs, maxCuesPerCategory/2)...)
		fmt.Fprintf(&categoryList, "- %s (cues: %s)\n", def.Name, strings.Join(cues, ", "))
	}
	fmt.Fprintf(&categoryList, "- %s (anything else)\n", model.CategoryOther)

	details := fmt.Sprintf("Transcript: %q", req.Text)
	if len(req.Alternatives) > 0 {
		alts := make([]string, 0, len(req.Alternatives))
		for _, a := range req.Alternatives {
			alts = append(alts, fmt.Sprintf("%q", a))
		}
		details += fmt.Sprintf("\nAlternative transcriptions (less likely): %s", strings.Join(alts, ", "))
	}
	if req.AudioQuality != "" {
		details += fmt.Sprintf("\nAudio quality: %s", req.AudioQuality)
	}

	return fmt.Sprintf(`Extract the expense from this voice note.

Categories (use exactly one of these names):
%s
%s

Rules:
- amount is the rupee amount as a number. Convert spoken numbers: "पचास" is 50, "ek hazaar" is 1000, "dedh sau" is 150.
- Amounts must be between 1 and %d. If there is no amount, use null.
- merchant is the shop, app or brand if one is named, otherwise null.
- description is a short English summary of what was bought.
- confidence is your certainty between 0.0 and 1.0. Use a lower value when the audio quality is poor or the transcript is garbled.

Examples:
"सौ रुपये का पेट्रोल डलवाया" -> {"amount": 100, "category": "transport", "merchant": null, "description": "petrol", "confidence": 0.9}
"zomato se pachees sau ka khana mangaya" -> {"amount": 2500, "category": "food", "merchant": "Zomato", "description": "food delivery", "confidence": 0.85}
"paid the doctor three hundred" -> {"amount": 300, "category": "healthcare", "merchant": null, "description": "doctor visit", "confidence": 0.8}

Respond with JSON only: {"amount": <number|null>, "category": "<category>", "merchant": <string|null>, "description": "<text>", "confidence": <0.0-1.0>}`,
		categoryList.String(),
		details,
		pack.MaxAmount)
}

func head(words []string, n int) []string {
	if len(words) <= n {
		return append([]string{}, words...)
	}
	return append([]string{}, words[:n]...)
}
