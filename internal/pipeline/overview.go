package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/trajectory-labs/pathways-cli/internal/model"
	"github.com/trajectory-labs/pathways-cli/pkg/anthropic"
)

// OverviewGenerator produces the per-path narrative via the generative-text
// provider. Like the summarizer it is fallible; a failed or empty generation
// returns "" and the caller drops to the deterministic fallback.
type OverviewGenerator struct {
	ai        anthropic.Client
	model     string
	maxTokens int64
}

// NewOverviewGenerator creates an OverviewGenerator bound to a generative client.
func NewOverviewGenerator(ai anthropic.Client, modelName string, maxTokens int64) *OverviewGenerator {
	return &OverviewGenerator{ai: ai, model: modelName, maxTokens: maxTokens}
}

const overviewSystemPrompt = `You write short career-path overviews. Produce exactly two plain-text paragraphs, no markdown. The first paragraph must begin with "Summary:" and the second with "Next moves:". Stay under 170 words total. You may reference at most one source title, quoted exactly as given.`

// Generate asks the model for the two-paragraph overview. The gathered
// results give the model concrete material; at most one title may be echoed
// back. The returned text is the joined content blocks as-is: a response
// missing the literal "Summary:" prefix is still usable and is rendered as
// an unlabeled paragraph by the caller.
func (g *OverviewGenerator) Generate(ctx context.Context, p model.Profile, rank model.PathRank, label string, results []model.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Path: %s\n", label)
	fmt.Fprintf(&b, "Person: %s. Interests: %s. Timeline: %s. Stage: %s.\n", p.CurrentStatus, p.Interests, p.Timeline, p.Stage)
	if len(results) > 0 {
		b.WriteString("Source titles:\n")
		for _, r := range results {
			fmt.Fprintf(&b, "- %s\n", r.Title)
		}
	}

	resp, err := g.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    overviewSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: b.String()},
		},
	})
	if err != nil {
		zap.L().Warn("overview: model call failed", zap.Error(err), zap.Int("rank", int(rank)))
		return ""
	}
	return strings.TrimSpace(resp.Text())
}

// FallbackOverview builds the two-paragraph overview from fixed templates
// per path rank, weaving in up to two result titles when available. It is a
// pure function and always returns non-empty text.
func FallbackOverview(p model.Profile, rank model.PathRank, label string, results []model.SearchResult) string {
	interests := strings.TrimSpace(p.Interests)
	if interests == "" {
		interests = "your field"
	}
	if label == "" {
		label = rank.DefaultLabel()
	}

	sources := ""
	switch titles := resultTitles(results, 2); len(titles) {
	case 1:
		sources = fmt.Sprintf(" Stories like \"%s\" show what this looks like in practice.", titles[0])
	case 2:
		sources = fmt.Sprintf(" Stories like \"%s\" and \"%s\" show what this looks like in practice.", titles[0], titles[1])
	}

	var summary, moves string
	switch rank {
	case model.RankProject:
		summary = fmt.Sprintf("Summary: The %s centers on building visible work in %s before anyone hires you for it. People on this route treat small self-directed projects as their credential, letting finished work argue for them.%s",
			titleCaser.String(label), interests, sources)
		moves = fmt.Sprintf("Next moves: Pick one small project in %s you can finish within %s, publish it somewhere public, and write a short note on what you built and why. Repeat until you have three pieces you are proud to show.",
			interests, timelineOr(p, "a few weeks"))
	case model.RankUnconventional:
		summary = fmt.Sprintf("Summary: The %s combines %s with skills from an adjacent field, landing in roles that rarely have a standard job title. People on this route trade a well-marked ladder for less competition and more room to define the work.%s",
			titleCaser.String(label), interests, sources)
		moves = fmt.Sprintf("Next moves: List two fields adjacent to %s and find one person working at each intersection. Ask them how they describe their role and what they would learn first. Given your %s timeline, start the first of those skills now.",
			interests, timelineOr(p, "current"))
	default:
		summary = fmt.Sprintf("Summary: The %s follows the established entry routes into %s: recognized credentials, structured applications, and junior roles with a known progression. It is the most legible path to employers and the easiest to plan around.%s",
			titleCaser.String(label), interests, sources)
		moves = fmt.Sprintf("Next moves: Identify the standard entry-level title in %s, tailor your materials to it, and apply to a steady weekly batch of openings. Within %s, add one recognized credential or certification that postings in the field keep asking for.",
			interests, timelineOr(p, "your timeline"))
	}

	return summary + "\n\n" + moves
}

// StaticOverview is the floor: returned when no provider credential exists
// at all, so not even a search informs the fallback.
func StaticOverview(rank model.PathRank, label string) string {
	if label == "" {
		label = rank.DefaultLabel()
	}
	return fmt.Sprintf("Summary: The %s is one of three broad directions your profile suggests. Each direction draws on the same interests but differs in how you enter and how quickly the work becomes visible.\n\nNext moves: Add a search provider key to see real stories from people on this path, or explore the other two directions to compare how they fit your situation.",
		titleCaser.String(label))
}

func resultTitles(results []model.SearchResult, max int) []string {
	var titles []string
	for _, r := range results {
		t := strings.TrimSpace(r.Title)
		if t == "" {
			continue
		}
		titles = append(titles, t)
		if len(titles) == max {
			break
		}
	}
	return titles
}

func timelineOr(p model.Profile, fallback string) string {
	if t := strings.TrimSpace(p.Timeline); t != "" {
		return t
	}
	return fallback
}
