// Package pipeline implements story and overview generation: profile →
// search → relevance filter → path-aware selection → AI summarization with
// deterministic fallback → best-effort persistence.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trajectory-labs/pathways-cli/internal/model"
	"github.com/trajectory-labs/pathways-cli/internal/resilience"
	"github.com/trajectory-labs/pathways-cli/internal/store"
	"github.com/trajectory-labs/pathways-cli/pkg/anthropic"
	"github.com/trajectory-labs/pathways-cli/pkg/websearch"
)

// Options tunes the pipeline.
type Options struct {
	// StoryLimit is the number of results each path surfaces.
	StoryLimit int
	// SummarizeInputLimit caps how many results feed a model prompt.
	SummarizeInputLimit int
	// OutboundTimeout bounds each outbound provider call.
	OutboundTimeout time.Duration
	// Model and MaxTokens configure generative calls.
	Model     string
	MaxTokens int64
}

func (o Options) withDefaults() Options {
	if o.StoryLimit <= 0 {
		o.StoryLimit = defaultStoryLimit
	}
	if o.SummarizeInputLimit <= 0 {
		o.SummarizeInputLimit = 6
	}
	if o.OutboundTimeout <= 0 {
		o.OutboundTimeout = 10 * time.Second
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 2048
	}
	return o
}

// StoryOptions selects which path a request targets. Zero values mean
// "default path": rank inferred from the label when one is given, otherwise
// rank 1.
type StoryOptions struct {
	PathRank  model.PathRank
	PathLabel string
}

// StoriesResult is the story-generation response: the stories plus a
// machine-readable outcome. The list is empty (never nil for callers that
// serialize it) when the pipeline could not produce stories; the outcome
// says why, and user-facing copy belongs to the presentation layer.
type StoriesResult struct {
	Stories []model.Story `json:"stories"`
	Outcome model.Outcome `json:"outcome"`
}

// Service orchestrates the generation pipeline. A nil search or ai client
// means that provider's credential is absent, which is an expected
// configuration state rather than an error.
type Service struct {
	store    store.Store
	search   websearch.Client
	summ     *Summarizer
	overview *OverviewGenerator
	rules    []RelevanceRule
	opts     Options
}

// New creates a pipeline Service. Pass nil for search or ai when the
// corresponding credential is not configured.
func New(st store.Store, search websearch.Client, ai anthropic.Client, opts Options) *Service {
	opts = opts.withDefaults()
	s := &Service{
		store:  st,
		search: search,
		rules:  DefaultRules(),
		opts:   opts,
	}
	if ai != nil {
		s.summ = NewSummarizer(ai, opts.Model, opts.MaxTokens)
		s.overview = NewOverviewGenerator(ai, opts.Model, opts.MaxTokens)
	}
	return s
}

// WithRules replaces the default relevance rule set.
func (s *Service) WithRules(rules []RelevanceRule) *Service {
	s.rules = rules
	return s
}

// storyStrategy is one tier of the story-generation chain. A nil or empty
// return means the tier could not produce stories and the next one runs.
type storyStrategy struct {
	name    string
	attempt func(ctx context.Context, selected []model.SearchResult, p model.Profile, rank model.PathRank, label string) []model.Story
}

func (s *Service) storyStrategies() []storyStrategy {
	return []storyStrategy{
		{
			name: "ai-summarizer",
			attempt: func(ctx context.Context, selected []model.SearchResult, p model.Profile, rank model.PathRank, label string) []model.Story {
				if s.summ == nil {
					return nil
				}
				in := selected
				if len(in) > s.opts.SummarizeInputLimit {
					in = in[:s.opts.SummarizeInputLimit]
				}
				cctx, cancel := context.WithTimeout(ctx, s.opts.OutboundTimeout)
				defer cancel()
				return s.summ.Summarize(cctx, in, p, rank, label)
			},
		},
		{
			name: "search-only",
			attempt: func(_ context.Context, selected []model.SearchResult, p model.Profile, rank model.PathRank, label string) []model.Story {
				return BuildStories(selected, p, rank, label)
			},
		},
	}
}

// GenerateStories runs the full story pipeline for a profile. The only
// error it returns is NotFound for an unknown profile; every environmental
// failure degrades to an empty list with an explanatory outcome.
func (s *Service) GenerateStories(ctx context.Context, profileID string, opts StoryOptions) (*StoriesResult, error) {
	profile, err := s.loadProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	rank, label := s.resolvePath(ctx, profile.ID, opts)
	log := zap.L().With(zap.String("profile_id", profile.ID), zap.Int("rank", int(rank)))

	if s.search == nil {
		log.Warn("stories: no search credential configured")
		return &StoriesResult{Stories: []model.Story{}, Outcome: model.OutcomeNoKeys}, nil
	}

	results := s.runSearch(ctx, *profile, rank, log)
	if len(results) == 0 {
		return &StoriesResult{Stories: []model.Story{}, Outcome: model.OutcomeNoSearchResults}, nil
	}

	filtered := FilterResults(results, *profile, s.rules)
	if len(filtered) == 0 {
		log.Info("stories: no results survived relevance filtering", zap.Int("searched", len(results)))
		return &StoriesResult{Stories: []model.Story{}, Outcome: model.OutcomeNoRelevantResults}, nil
	}

	selected := SelectForPath(filtered, s.opts.StoryLimit, rank)

	var stories []model.Story
	for _, strat := range s.storyStrategies() {
		if stories = strat.attempt(ctx, selected, *profile, rank, label); len(stories) > 0 {
			log.Info("stories: tier produced stories", zap.String("tier", strat.name), zap.Int("count", len(stories)))
			break
		}
	}
	if len(stories) == 0 {
		return &StoriesResult{Stories: []model.Story{}, Outcome: model.OutcomeNoSearchResults}, nil
	}

	s.persistStories(ctx, stories, *profile)

	return &StoriesResult{Stories: stories, Outcome: model.OutcomeOK}, nil
}

// GenerateOverview produces the per-path narrative. It always returns
// non-empty text for a known profile: ai when the model delivers, fallback
// when it does not, static when no search credential exists at all.
func (s *Service) GenerateOverview(ctx context.Context, profileID string, opts StoryOptions) (*model.Overview, error) {
	profile, err := s.loadProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	rank, label := s.resolvePath(ctx, profile.ID, opts)
	log := zap.L().With(zap.String("profile_id", profile.ID), zap.Int("rank", int(rank)))

	if s.search == nil {
		log.Warn("overview: no search credential configured")
		return &model.Overview{Text: StaticOverview(rank, label), Source: model.OverviewStatic}, nil
	}

	results := s.runSearch(ctx, *profile, rank, log)
	filtered := FilterResults(results, *profile, s.rules)
	if len(filtered) > s.opts.SummarizeInputLimit {
		filtered = filtered[:s.opts.SummarizeInputLimit]
	}

	if s.overview != nil {
		cctx, cancel := context.WithTimeout(ctx, s.opts.OutboundTimeout)
		text := s.overview.Generate(cctx, *profile, rank, label, filtered)
		cancel()
		if text != "" {
			return &model.Overview{Text: text, Source: model.OverviewAI}, nil
		}
	}

	return &model.Overview{Text: FallbackOverview(*profile, rank, label, filtered), Source: model.OverviewFallback}, nil
}

// RegeneratePaths rebuilds the profile's three path selections wholesale.
func (s *Service) RegeneratePaths(ctx context.Context, profileID string) ([]model.PathSelection, error) {
	profile, err := s.loadProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return s.store.ReplacePathSelections(ctx, profileID, BuildDefaultPaths(*profile))
}

func (s *Service) loadProfile(ctx context.Context, profileID string) (*model.Profile, error) {
	profile, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, resilience.NewNotFound("profile", profileID)
	}
	return profile, nil
}

// resolvePath determines the effective rank and label for a request. A bare
// label infers its rank; a bare rank picks up the stored selection's label
// when one exists, else the archetype default.
func (s *Service) resolvePath(ctx context.Context, profileID string, opts StoryOptions) (model.PathRank, string) {
	rank := opts.PathRank
	label := opts.PathLabel
	if !model.ValidRank(rank) {
		if label != "" {
			rank = model.RankFromLabel(label)
		} else {
			rank = model.RankConventional
		}
	}
	if label == "" {
		if paths, err := s.store.ListPathSelections(ctx, profileID); err == nil {
			for _, ps := range paths {
				if ps.Rank == rank {
					label = ps.Label
					break
				}
			}
		}
		if label == "" {
			label = rank.DefaultLabel()
		}
	}
	return rank, label
}

// runSearch performs the bounded search call and normalizes the response.
// Transport and payload failures degrade to an empty list; only the log
// distinguishes them.
func (s *Service) runSearch(ctx context.Context, p model.Profile, rank model.PathRank, log *zap.Logger) []model.SearchResult {
	query := BuildSearchQuery(p, rank)

	cctx, cancel := context.WithTimeout(ctx, s.opts.OutboundTimeout)
	defer cancel()

	resp, err := s.search.Search(cctx, query)
	if err != nil {
		log.Warn("search failed",
			zap.Error(err),
			zap.Bool("transient", resilience.IsTransient(err)),
			zap.String("query", query))
		return nil
	}

	results := make([]model.SearchResult, 0, len(resp.Web.Results))
	for _, r := range resp.Web.Results {
		results = append(results, model.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		})
	}
	return results
}

// persistStories mirrors the returned stories into the case-study log. The
// writes fan out concurrently and every failure is swallowed after logging:
// persistence never alters the response already computed.
func (s *Service) persistStories(ctx context.Context, stories []model.Story, p model.Profile) {
	g, gctx := errgroup.WithContext(ctx)
	for _, st := range stories {
		g.Go(func() error {
			err := s.store.CreateCaseStudy(gctx, model.CaseStudy{
				URL:        st.SourceURL,
				SourceType: st.SourceType,
				Title:      st.Title,
				Summary:    st.Summary,
				Tags:       caseTags(p),
				Stage:      p.Stage,
			})
			switch {
			case errors.Is(err, store.ErrDuplicate):
				zap.L().Debug("persist: case study already logged", zap.String("url", st.SourceURL))
			case err != nil:
				zap.L().Warn("persist: case study write failed", zap.Error(err), zap.String("url", st.SourceURL))
			}
			return nil
		})
	}
	_ = g.Wait()
}

// caseTags derives up to three log tags from the interests field.
func caseTags(p model.Profile) []string {
	var tags []string
	for _, part := range strings.Split(p.Interests, ",") {
		if t := strings.ToLower(strings.TrimSpace(part)); t != "" {
			tags = append(tags, t)
		}
		if len(tags) == 3 {
			break
		}
	}
	return tags
}
