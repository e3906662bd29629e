package answer

import (
	"strings"
)

// maxSuggestions caps the follow-up footer length
const maxSuggestions = 2

// appendSuggestions adds a short follow-up footer keyed off the query's
// wording, so answers invite the obvious next question.
func appendSuggestions(text, query string) string {
	lower := strings.ToLower(query)

	var suggestions []string
	switch {
	case strings.Contains(lower, "bag limit") || strings.Contains(lower, "how many"):
		suggestions = []string{
			"Want to know size limits too?",
			"Need good locations for this species?",
		}
	case strings.Contains(lower, "where") || strings.Contains(lower, "location"):
		suggestions = []string{
			"Would you like the weather forecast for this location?",
			"Want to know what species are there?",
		}
	case strings.Contains(lower, "license") || strings.Contains(lower, "licence") || strings.Contains(lower, "permit"):
		suggestions = []string{
			"Need to know bag limits for your license type?",
			"Want to know where to get your license?",
		}
	case strings.Contains(lower, "caught") || strings.Contains(lower, "legal") || strings.Contains(lower, "keep"):
		suggestions = []string{
			"Want to check another fish size?",
			"Need to know the bag limit?",
		}
	}

	if len(suggestions) == 0 {
		return text
	}
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	var sb strings.Builder
	sb.WriteString(text)
	sb.WriteString("\n\n**What else can I help with?**\n")
	for _, s := range suggestions {
		sb.WriteString("• ")
		sb.WriteString(s)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Quick pattern replies for trivially short general chat, avoiding an oracle
// round trip.
func quickReply(query string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(query))

	switch {
	case containsAny(lower, "hello", "hi", "hey") && len(lower) < 20:
		return "Hi! I can help with Tasmania fishing regulations, species, locations, licenses and weather. What would you like to know?", true
	case containsAny(lower, "thanks", "thank") && len(lower) < 30:
		return "You're welcome! Tight lines out there.", true
	case containsAny(lower, "bye", "goodbye") && len(lower) < 20:
		return "Goodbye, and good luck fishing!", true
	case strings.Contains(lower, "help") && len(lower) < 30:
		return "I can answer questions about fishing regulations, species, bag and size limits, licenses, fishing spots and weather conditions in Tasmania.", true
	}

	return "", false
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
