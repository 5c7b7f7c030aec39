package pipeline

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/trajectory-labs/pathways-cli/internal/model"
)

var titleCaser = cases.Title(language.English)

// BuildStories turns selected search results directly into stories without
// any AI involvement. It is a pure function: same input, byte-identical
// output, exactly one story per result.
func BuildStories(results []model.SearchResult, p model.Profile, rank model.PathRank, label string) []model.Story {
	if label == "" {
		label = rank.DefaultLabel()
	}

	stories := make([]model.Story, 0, len(results))
	for i, r := range results {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = "Career story"
		}

		summary := strings.TrimSpace(r.Snippet)
		if summary == "" {
			summary = "A first-hand account of how someone built a career in this direction."
		}

		stories = append(stories, model.Story{
			ID:           fmt.Sprintf("search-%d-%d", rank, i),
			Title:        title,
			SourceURL:    r.URL,
			SourceType:   model.InferSourceType(r.URL),
			Summary:      summary,
			WhyItMatches: whyItMatches(p, label),
		})
	}
	return stories
}

// whyItMatches templates the personalized relevance line from profile fields
// and the path label.
func whyItMatches(p model.Profile, label string) string {
	interests := strings.TrimSpace(p.Interests)
	if interests == "" {
		interests = "your interests"
	}
	return fmt.Sprintf("Relevant to %s on the %s: someone in a situation like yours (%s) took this route.",
		interests, titleCaser.String(label), strings.TrimSpace(p.CurrentStatus))
}
