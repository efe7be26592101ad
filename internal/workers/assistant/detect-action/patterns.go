// internal/workers/assistant/detect-action/patterns.go
package detectaction

import (
	"regexp"
	"strings"

	"assistant-workers/internal/models"
)

// PatternLibrary holds every compiled table the pattern stage uses. It is
// built once and injected into the handler so tests can substitute smaller
// tables without touching package state.
type PatternLibrary struct {
	// actionPatterns is consulted in models.AllActionTypes order
	// (general_chat excluded); the first matching set wins.
	actionPatterns map[models.ActionType][]*regexp.Regexp

	// URL destination phrasing. A URL plus one of these is an explicit
	// save request; a bare URL is only worth inspecting.
	referenceURLPatterns []*regexp.Regexp
	libraryURLPatterns   []*regexp.Regexp

	urlPattern      *regexp.Regexp
	clientPattern   *regexp.Regexp
	datePattern     *regexp.Regexp
	relativeDays    []string
	assigneePattern *regexp.Regexp
	handlePattern   *regexp.Regexp

	// formatKeywords maps a surface keyword to its canonical content
	// format; the longest matching keyword wins.
	formatKeywords map[string]string

	tabularExtensions []string
}

// DefaultPatterns builds the production pattern tables. The corpus is
// Portuguese-first with English synonyms.
func DefaultPatterns() *PatternLibrary {
	return &PatternLibrary{
		actionPatterns: map[models.ActionType][]*regexp.Regexp{
			models.ActionUploadMetrics: {
				regexp.MustCompile(`(?i)\b(?:importa?r?|sub[ae]|upload)\b.*\bm[ée]tricas?\b`),
				regexp.MustCompile(`(?i)\bplanilha de m[ée]tricas\b`),
				regexp.MustCompile(`(?i)\bupload metrics\b`),
			},
			models.ActionCreatePlanningCard: {
				regexp.MustCompile(`(?i)\b(?:cri[ae]r?|nova|adiciona?r?)\b.*\bpauta\b`),
				regexp.MustCompile(`(?i)\badiciona?r? ao planejamento\b`),
				regexp.MustCompile(`(?i)\bplanning card\b`),
				regexp.MustCompile(`(?i)\bagendar? (?:um[a]? )?(?:post|publica[çc][ãa]o)\b`),
			},
			models.ActionUploadToLibrary: {
				regexp.MustCompile(`(?i)\b(?:salv[ae]r?|guard[ae]|adiciona?r?|add|save)\b.*\b(?:biblioteca|library)\b`),
			},
			models.ActionUploadToReferences: {
				regexp.MustCompile(`(?i)\b(?:salv[ae]r?|guard[ae]|adiciona?r?|add|save)\b.*\brefer[êe]ncias?\b`),
				regexp.MustCompile(`(?i)\b(?:add|save)\b.*\breferences?\b`),
			},
			models.ActionAnalyzeURL: {
				regexp.MustCompile(`(?i)\banalis[ae]r?\b.*\b(?:link|url|site)\b`),
				regexp.MustCompile(`(?i)\banalyze\b.*\b(?:link|url)\b`),
			},
			models.ActionCreateContent: {
				regexp.MustCompile(`(?i)\b(?:cri[ae]r?|escrev[ae]r?|ger[ae]r?|faz|fa[çc]a|write|create|generate)\b.*\b(?:post|carross?el|carousel|v[íi]deo|video|reels?|story|stories|thread|conte[úu]do|content|legenda|caption|roteiro|script)\b`),
			},
		},
		referenceURLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:salv[ae]r?|guard[ae]|adiciona?r?|coloc[ae]|add|save)\b.*\brefer[êe]ncias?\b`),
			regexp.MustCompile(`(?i)\b(?:add|save)\b.*\breferences?\b`),
		},
		libraryURLPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:salv[ae]r?|guard[ae]|adiciona?r?|coloc[ae]|add|save)\b.*\b(?:biblioteca|library)\b`),
		},
		urlPattern: regexp.MustCompile(`https?://[^\s]+`),
		clientPattern: regexp.MustCompile(
			`(?i)\b(?:para a empresa|para o cliente|do cliente|da empresa|para [ao]|para|cliente|client|for)\s+` +
				`([\p{L}0-9][\p{L}0-9&._-]*(?:\s+[\p{L}0-9&._-]+)*?)` +
				`(?:\s+(?:em|no|na|dia|at[ée]|sobre|on|by)\b.*)?$`),
		datePattern:     regexp.MustCompile(`\b(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\b`),
		relativeDays:    []string{"hoje", "amanhã", "amanha", "segunda", "terça", "terca", "quarta", "quinta", "sexta", "sábado", "sabado", "domingo", "today", "tomorrow", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"},
		assigneePattern: regexp.MustCompile(`(?i)\brespons[áa]vel(?:\s+por)?\s*:?\s+([\p{L}][\p{L}0-9._-]*)`),
		handlePattern:   regexp.MustCompile(`@([\p{L}0-9._-]+)`),
		formatKeywords: map[string]string{
			"post":         "post",
			"carrossel":    "carousel",
			"carousel":     "carousel",
			"vídeo curto":  "short_video",
			"video curto":  "short_video",
			"short video":  "short_video",
			"reels":        "short_video",
			"reel":         "short_video",
			"story":        "story",
			"stories":      "story",
			"thread":       "thread",
		},
		tabularExtensions: []string{".csv", ".tsv"},
	}
}

// MatchAction walks the per-action pattern sets in enumeration order and
// returns the first matching type.
func (p *PatternLibrary) MatchAction(message string) (models.ActionType, bool) {
	for _, t := range models.AllActionTypes {
		if t == models.ActionGeneralChat {
			continue
		}
		for _, re := range p.actionPatterns[t] {
			if re.MatchString(message) {
				return t, true
			}
		}
	}
	return models.ActionGeneralChat, false
}

// FindURL returns the first absolute URL in the message, trimmed of
// trailing punctuation.
func (p *PatternLibrary) FindURL(message string) (string, bool) {
	url := p.urlPattern.FindString(message)
	if url == "" {
		return "", false
	}
	return strings.TrimRight(url, ".,;:!?)"), true
}

// MatchesReferenceUpload reports whether the message explicitly asks to
// save a URL to the reference library.
func (p *PatternLibrary) MatchesReferenceUpload(message string) bool {
	return matchesAny(p.referenceURLPatterns, message)
}

// MatchesLibraryUpload reports whether the message explicitly asks to save
// a URL to the content library.
func (p *PatternLibrary) MatchesLibraryUpload(message string) bool {
	return matchesAny(p.libraryURLPatterns, message)
}

// HasTabularAttachment reports whether any attachment looks like a
// delimited-table file, by extension or mime type.
func (p *PatternLibrary) HasTabularAttachment(files []models.FileMetadata) (models.FileMetadata, bool) {
	for _, f := range files {
		name := strings.ToLower(f.Name)
		for _, ext := range p.tabularExtensions {
			if strings.HasSuffix(name, ext) {
				return f, true
			}
		}
		if f.Type == "text/csv" || f.Type == "application/vnd.ms-excel" {
			return f, true
		}
	}
	return models.FileMetadata{}, false
}

// ExtractParams applies every field-specific extraction independently;
// absent fields are simply omitted.
func (p *PatternLibrary) ExtractParams(message string) map[string]string {
	params := map[string]string{}

	if url, ok := p.FindURL(message); ok {
		params["url"] = url
	}

	// Extraction happens on the message without its URL so trailing link
	// text never pollutes the client or date captures.
	text := strings.TrimSpace(p.urlPattern.ReplaceAllString(message, ""))

	if m := p.clientPattern.FindStringSubmatch(text); len(m) > 1 {
		params["client"] = strings.TrimSpace(m[1])
	}

	if format, ok := p.matchFormat(text); ok {
		params["format"] = format
	}

	if m := p.datePattern.FindStringSubmatch(text); len(m) > 1 {
		params["date"] = m[1]
	} else if day, ok := p.matchRelativeDay(text); ok {
		params["date"] = day
	}

	if m := p.handlePattern.FindStringSubmatch(text); len(m) > 1 {
		params["assignee"] = m[1]
	} else if m := p.assigneePattern.FindStringSubmatch(text); len(m) > 1 {
		params["assignee"] = m[1]
	}

	return params
}

// matchFormat picks the longest format keyword found in the message.
func (p *PatternLibrary) matchFormat(message string) (string, bool) {
	lower := strings.ToLower(message)
	best := ""
	format := ""
	for keyword, canonical := range p.formatKeywords {
		if strings.Contains(lower, keyword) && len(keyword) > len(best) {
			best = keyword
			format = canonical
		}
	}
	return format, best != ""
}

func (p *PatternLibrary) matchRelativeDay(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, day := range p.relativeDays {
		if containsWord(lower, day) {
			return day, true
		}
	}
	return "", false
}

func containsWord(text, word string) bool {
	idx := strings.Index(text, word)
	if idx < 0 {
		return false
	}
	before := idx == 0 || !isWordChar(text[idx-1])
	afterIdx := idx + len(word)
	after := afterIdx >= len(text) || !isWordChar(text[afterIdx])
	return before && after
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func matchesAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
