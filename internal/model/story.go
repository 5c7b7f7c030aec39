package model

import (
	"strings"
	"time"
)

// SearchResult is a single normalized web-search hit. Results are transient:
// they feed the pipeline and are never persisted as-is.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// SourceType classifies a story's source by its URL host.
type SourceType string

const (
	SourceVideo    SourceType = "video"
	SourceArticle  SourceType = "article"
	SourceLinkedIn SourceType = "linkedin"
	SourceOther    SourceType = "other"
)

// videoHosts are URL substrings that mark a source as video content.
var videoHosts = []string{"youtube.com", "youtu.be", "vimeo.com"}

// InferSourceType derives the source type purely from the URL. Both the
// AI-assisted path and the deterministic fallback classify through this one
// function so the same URL always maps to the same type.
func InferSourceType(sourceURL string) SourceType {
	lower := strings.ToLower(sourceURL)
	for _, host := range videoHosts {
		if strings.Contains(lower, host) {
			return SourceVideo
		}
	}
	if strings.Contains(lower, "linkedin.com") {
		return SourceLinkedIn
	}
	return SourceArticle
}

// Story is a single external source packaged with a summary and a
// personalized relevance explanation. Stories are regenerated on every
// request; they are not stable entities.
type Story struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	SourceURL    string     `json:"source_url"`
	SourceType   SourceType `json:"source_type"`
	Summary      string     `json:"summary"`
	WhyItMatches string     `json:"why_it_matches"`
}

// CaseStudy is the best-effort historical log record mirrored from a
// returned Story. URL is unique; duplicate writes are swallowed.
type CaseStudy struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	SourceType SourceType `json:"source_type"`
	Title      string     `json:"title"`
	Summary    string     `json:"summary"`
	Tags       []string   `json:"tags,omitempty"`
	Stage      Stage      `json:"stage"`
	FetchedAt  time.Time  `json:"fetched_at"`
}

// OverviewSource tags which tier produced an overview.
type OverviewSource string

const (
	OverviewAI       OverviewSource = "ai"
	OverviewFallback OverviewSource = "fallback"
	OverviewStatic   OverviewSource = "static"
)

// Overview is a short narrative describing what a path generally looks like
// plus next actions.
type Overview struct {
	Text   string         `json:"overview"`
	Source OverviewSource `json:"source"`
}

// Outcome is the machine-readable reason attached to a story-generation
// response. The pipeline returns an empty story list plus an outcome rather
// than synthesizing placeholder stories; user-facing copy belongs to the
// presentation layer.
type Outcome string

const (
	OutcomeOK                Outcome = "ok"
	OutcomeNoKeys            Outcome = "no_keys"
	OutcomeNoSearchResults   Outcome = "no_search_results"
	OutcomeNoRelevantResults Outcome = "no_relevant_results"
)
