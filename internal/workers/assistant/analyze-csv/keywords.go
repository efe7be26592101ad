// internal/workers/assistant/analyze-csv/keywords.go
package analyzecsv

import "assistant-workers/internal/models"

// KeywordTable holds the per-platform evidence lists. Like the pattern
// library in detect-action it is constructed explicitly and injected, so
// tests can swap tables freely.
type KeywordTable struct {
	// filenameTokens short-circuit classification: operator-supplied
	// filenames are treated as more reliable than header evidence.
	filenameTokens map[models.PlatformType][]string

	// metricKeywords are matched case-insensitively as substrings of the
	// header tokens.
	metricKeywords map[models.PlatformType][]string

	// dateHeaders flag a date-like column.
	dateHeaders []string
}

// DefaultKeywords builds the production keyword tables.
func DefaultKeywords() *KeywordTable {
	return &KeywordTable{
		filenameTokens: map[models.PlatformType][]string{
			models.PlatformInstagram:  {"instagram"},
			models.PlatformYouTube:    {"youtube"},
			models.PlatformNewsletter: {"beehiiv", "mailchimp", "substack", "newsletter"},
			models.PlatformTwitter:    {"twitter", "x_"},
			models.PlatformLinkedIn:   {"linkedin"},
		},
		metricKeywords: map[models.PlatformType][]string{
			models.PlatformInstagram: {
				"reach", "alcance", "likes", "curtidas", "saves",
				"salvamentos", "profile_visits", "follows", "compartilhamentos",
			},
			models.PlatformYouTube: {
				"watch_time", "subscribers", "ctr", "views",
				"average_view_duration", "inscritos",
			},
			models.PlatformNewsletter: {
				"open_rate", "click_rate", "unsubscribes", "recipients",
				"taxa_de_abertura", "descadastros",
			},
			models.PlatformTwitter: {
				"retweets", "replies", "tweet", "engagements", "quote",
			},
			models.PlatformLinkedIn: {
				"reactions", "connections", "unique_visitors", "followers_gained",
			},
		},
		dateHeaders: []string{"date", "data", "day", "dia"},
	}
}
