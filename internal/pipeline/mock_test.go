package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/trajectory-labs/pathways-cli/internal/model"
	"github.com/trajectory-labs/pathways-cli/internal/store"
	"github.com/trajectory-labs/pathways-cli/pkg/anthropic"
	"github.com/trajectory-labs/pathways-cli/pkg/websearch"
)

// fakeSearch returns canned results or a canned error.
type fakeSearch struct {
	results []websearch.Result
	err     error
	queries []string
}

func (f *fakeSearch) Search(_ context.Context, query string) (*websearch.SearchResponse, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return &websearch.SearchResponse{Web: websearch.WebResults{Results: f.results}}, nil
}

// fakeAI returns a canned text body or a canned error.
type fakeAI struct {
	text  string
	err   error
	calls int
}

func (f *fakeAI) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.text}},
	}, nil
}

// memStore is an in-memory store.Store for orchestrator tests.
type memStore struct {
	mu          sync.Mutex
	profiles    map[string]model.Profile
	paths       map[string][]model.PathSelection
	caseStudies map[string]model.CaseStudy
	writeErr    error
}

func newMemStore() *memStore {
	return &memStore{
		profiles:    make(map[string]model.Profile),
		paths:       make(map[string][]model.PathSelection),
		caseStudies: make(map[string]model.CaseStudy),
	}
}

func (m *memStore) CreateProfile(_ context.Context, p model.Profile) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = fmt.Sprintf("profile-%d", len(m.profiles)+1)
	m.profiles[p.ID] = p
	return &p, nil
}

func (m *memStore) GetProfile(_ context.Context, id string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) ReplacePathSelections(_ context.Context, profileID string, paths []model.PathSelection) ([]model.PathSelection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.PathSelection, 0, len(paths))
	for i, ps := range paths {
		ps.ID = fmt.Sprintf("path-%d", i+1)
		ps.ProfileID = profileID
		out = append(out, ps)
	}
	m.paths[profileID] = out
	return out, nil
}

func (m *memStore) ListPathSelections(_ context.Context, profileID string) ([]model.PathSelection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paths[profileID], nil
}

func (m *memStore) CreateCaseStudy(_ context.Context, cs model.CaseStudy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	if _, ok := m.caseStudies[cs.URL]; ok {
		return store.ErrDuplicate
	}
	m.caseStudies[cs.URL] = cs
	return nil
}

func (m *memStore) ListCaseStudies(_ context.Context, limit int) ([]model.CaseStudy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CaseStudy
	for _, cs := range m.caseStudies {
		out = append(out, cs)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) Migrate(context.Context) error { return nil }
func (m *memStore) Close() error                  { return nil }

// addProfile seeds a profile and returns its id.
func (m *memStore) addProfile(p model.Profile) string {
	created, _ := m.CreateProfile(context.Background(), p)
	return created.ID
}

func testProfile() model.Profile {
	return model.Profile{
		CurrentStatus: "final year marketing student",
		Interests:     "sales, customer success",
		Timeline:      "6 months",
		Stage:         model.StageStudent,
	}
}

// nResults builds n distinct career-relevant search results.
func nResults(n int) []model.SearchResult {
	out := make([]model.SearchResult, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.SearchResult{
			Title:   fmt.Sprintf("How I got my first sales job %d", i),
			URL:     fmt.Sprintf("https://example.com/story-%d", i),
			Snippet: "A story about breaking into sales.",
		})
	}
	return out
}
