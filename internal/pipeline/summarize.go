package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/trajectory-labs/pathways-cli/internal/model"
	"github.com/trajectory-labs/pathways-cli/pkg/anthropic"
)

// summaryResponse is the strict JSON contract the model is asked to emit.
type summaryResponse struct {
	Stories []summaryItem `json:"stories"`
}

type summaryItem struct {
	Index        int    `json:"index"`
	ShortSummary string `json:"shortSummary"`
	WhyItMatches string `json:"whyItMatches"`
}

// Summarizer rewrites selected search results into personalized stories via
// the generative-text provider. It is the only pipeline component that talks
// to the model for stories, and it is fallible: every failure mode yields an
// empty slice so callers fall through to the search-only builder.
type Summarizer struct {
	ai        anthropic.Client
	model     string
	maxTokens int64
}

// NewSummarizer creates a Summarizer bound to a generative client.
func NewSummarizer(ai anthropic.Client, modelName string, maxTokens int64) *Summarizer {
	return &Summarizer{ai: ai, model: modelName, maxTokens: maxTokens}
}

const summarizeSystemPrompt = `You turn web search results into short career stories for a person exploring career paths. Respond with strict JSON only, no prose, no markdown fences: {"stories":[{"index":<number>,"shortSummary":"...","whyItMatches":"..."}]}. Include one entry per result that is genuinely relevant; skip results that are not. index refers to the result's position in the provided list, starting at 0. shortSummary is two sentences about the story itself. whyItMatches is one sentence connecting it to this specific person.`

// Summarize sends the selected results and profile to the model and parses
// the strict-JSON response. Partial responses are accepted: the model may
// skip results, and individually malformed entries are dropped without
// discarding the batch. Any transport, parse, or contract failure returns an
// empty slice and is logged, never propagated.
func (s *Summarizer) Summarize(ctx context.Context, results []model.SearchResult, p model.Profile, rank model.PathRank, label string) []model.Story {
	log := zap.L().With(zap.Int("rank", int(rank)), zap.Int("results", len(results)))

	resp, err := s.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    summarizeSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: s.buildPrompt(results, p, label)},
		},
	})
	if err != nil {
		log.Warn("summarize: model call failed", zap.Error(err))
		return nil
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		log.Warn("summarize: empty model response")
		return nil
	}

	var parsed summaryResponse
	if err := json.Unmarshal([]byte(cleanJSON(text)), &parsed); err != nil {
		log.Warn("summarize: unparseable model response", zap.Error(err))
		return nil
	}
	if parsed.Stories == nil {
		log.Warn("summarize: response missing stories array")
		return nil
	}

	stories := make([]model.Story, 0, len(parsed.Stories))
	for _, item := range parsed.Stories {
		if item.Index < 0 || item.Index >= len(results) {
			log.Warn("summarize: story index out of range", zap.Int("index", item.Index))
			continue
		}
		src := results[item.Index]
		if src.URL == "" || src.Title == "" {
			continue
		}
		if strings.TrimSpace(item.ShortSummary) == "" || strings.TrimSpace(item.WhyItMatches) == "" {
			continue
		}
		stories = append(stories, model.Story{
			ID:           fmt.Sprintf("ai-%d-%d", rank, item.Index),
			Title:        src.Title,
			SourceURL:    src.URL,
			SourceType:   model.InferSourceType(src.URL),
			Summary:      strings.TrimSpace(item.ShortSummary),
			WhyItMatches: strings.TrimSpace(item.WhyItMatches),
		})
	}
	return stories
}

func (s *Summarizer) buildPrompt(results []model.SearchResult, p model.Profile, label string) string {
	var b strings.Builder

	b.WriteString("Person:\n")
	fmt.Fprintf(&b, "- Current status: %s\n", p.CurrentStatus)
	fmt.Fprintf(&b, "- Interests: %s\n", p.Interests)
	fmt.Fprintf(&b, "- Timeline: %s\n", p.Timeline)
	fmt.Fprintf(&b, "- Stage: %s\n", p.Stage)
	if p.ExtraInfo != "" {
		fmt.Fprintf(&b, "- Extra context: %s\n", p.ExtraInfo)
	}
	fmt.Fprintf(&b, "\nChosen path: %s\n\nSearch results:\n", label)

	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i, r.Title, r.URL, r.Snippet)
	}
	return b.String()
}
