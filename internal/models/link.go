// internal/models/link.go
package models

// LinkCategory classifies a URL by its hosting platform.
type LinkCategory string

const (
	LinkYouTube    LinkCategory = "youtube"
	LinkSocial     LinkCategory = "social"
	LinkNewsletter LinkCategory = "newsletter"
	LinkArticle    LinkCategory = "article"
)

// LinkAnalysisResult is the extracted (or degraded) view of a URL. Optional
// fields stay empty when the extractor did not report them; callers must not
// assume anything beyond Type and Title.
type LinkAnalysisResult struct {
	Type         LinkCategory      `json:"type"`
	URL          string            `json:"url"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	Content      string            `json:"content,omitempty"`
	ThumbnailURL string            `json:"thumbnailUrl,omitempty"`
	Author       string            `json:"author,omitempty"`
	PublishedAt  string            `json:"publishedAt,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}
