// File: internal/services/chat/postprocess.go
package chat

import "strings"

// StandardDisclaimer is appended to replies that carry no disclaimer of
// their own. It contains a marker phrase, so processing is idempotent.
const StandardDisclaimer = "Please note: I'm not a medical professional. " +
	"This is general wellness information, not medical advice. For health " +
	"concerns, please consult a healthcare provider."

// disclaimerMarkers are substrings whose presence means the reply already
// carries disclaimer-equivalent language.
var disclaimerMarkers = []string{
	"not a medical professional",
	"not medical advice",
	"consult a doctor",
	"consult your doctor",
	"consult a healthcare provider",
	"consult your healthcare provider",
	"see a healthcare professional",
}

// ResponsePostProcessor normalizes LLM output and guarantees a health
// disclaimer is present. Pure transform, no side effects.
type ResponsePostProcessor struct {
	disclaimer string
}

func NewResponsePostProcessor() *ResponsePostProcessor {
	return &ResponsePostProcessor{disclaimer: StandardDisclaimer}
}

// Process trims the raw text and appends the standard disclaimer unless the
// text already contains disclaimer-equivalent language. Applying Process
// twice yields identical output.
func (p *ResponsePostProcessor) Process(rawText string) string {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return p.disclaimer
	}

	lower := strings.ToLower(text)
	for _, marker := range disclaimerMarkers {
		if strings.Contains(lower, marker) {
			return text
		}
	}
	return text + "\n\n" + p.disclaimer
}
