package analysis

import (
	"regexp"

	"github.com/dpetrov/folio/internal/models"
)

var (
	positiveRe = regexp.MustCompile(`(?i)\bpositive\b`)
	negativeRe = regexp.MustCompile(`(?i)\bnegative\b`)
	neutralRe  = regexp.MustCompile(`(?i)\bneutral\b`)
	buyRe      = regexp.MustCompile(`(?i)\b(buy|bullish)\b`)
	sellRe     = regexp.MustCompile(`(?i)\b(sell|bearish)\b`)
)

// extractSentiment derives a coarse sentiment label from free-form
// commentary. An explicit "neutral" or a contradictory positive+negative
// read both resolve to neutral. Buy/sell language is the fallback when no
// explicit label appears.
func extractSentiment(text string) string {
	hasPositive := positiveRe.MatchString(text)
	hasNegative := negativeRe.MatchString(text)

	switch {
	case neutralRe.MatchString(text):
		return models.SentimentNeutral
	case hasPositive && hasNegative:
		return models.SentimentNeutral
	case hasPositive:
		return models.SentimentPositive
	case hasNegative:
		return models.SentimentNegative
	case buyRe.MatchString(text):
		return models.SentimentPositive
	case sellRe.MatchString(text):
		return models.SentimentNegative
	}
	return models.SentimentNeutral
}
