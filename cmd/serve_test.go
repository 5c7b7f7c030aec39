package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajectory-labs/pathways-cli/internal/model"
	"github.com/trajectory-labs/pathways-cli/internal/pipeline"
	"github.com/trajectory-labs/pathways-cli/internal/store"
	"github.com/trajectory-labs/pathways-cli/pkg/websearch"
)

// fakeStore is an in-memory store.Store for handler tests.
type fakeStore struct {
	mu          sync.Mutex
	profiles    map[string]model.Profile
	paths       map[string][]model.PathSelection
	caseStudies map[string]model.CaseStudy
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:    make(map[string]model.Profile),
		paths:       make(map[string][]model.PathSelection),
		caseStudies: make(map[string]model.CaseStudy),
	}
}

func (f *fakeStore) CreateProfile(_ context.Context, p model.Profile) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = fmt.Sprintf("profile-%d", len(f.profiles)+1)
	f.profiles[p.ID] = p
	return &p, nil
}

func (f *fakeStore) GetProfile(_ context.Context, id string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeStore) ReplacePathSelections(_ context.Context, profileID string, paths []model.PathSelection) ([]model.PathSelection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.PathSelection, 0, len(paths))
	for i, ps := range paths {
		ps.ID = fmt.Sprintf("path-%d", i+1)
		ps.ProfileID = profileID
		out = append(out, ps)
	}
	f.paths[profileID] = out
	return out, nil
}

func (f *fakeStore) ListPathSelections(_ context.Context, profileID string) ([]model.PathSelection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paths[profileID], nil
}

func (f *fakeStore) CreateCaseStudy(_ context.Context, cs model.CaseStudy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.caseStudies[cs.URL]; ok {
		return store.ErrDuplicate
	}
	f.caseStudies[cs.URL] = cs
	return nil
}

func (f *fakeStore) ListCaseStudies(_ context.Context, limit int) ([]model.CaseStudy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.CaseStudy
	for _, cs := range f.caseStudies {
		out = append(out, cs)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Close() error                  { return nil }

// staticSearch returns the same results for every query.
type staticSearch struct {
	results []websearch.Result
}

func (s *staticSearch) Search(context.Context, string) (*websearch.SearchResponse, error) {
	return &websearch.SearchResponse{Web: websearch.WebResults{Results: s.results}}, nil
}

func newTestServer(t *testing.T, search websearch.Client) (*httptest.Server, *fakeStore) {
	t.Helper()
	st := newFakeStore()
	svc := pipeline.New(st, search, nil, pipeline.Options{})
	srv := httptest.NewServer(newRouter(st, svc))
	t.Cleanup(srv.Close)
	return srv, st
}

func seedProfile(t *testing.T, st *fakeStore) string {
	t.Helper()
	p, err := st.CreateProfile(context.Background(), model.Profile{
		CurrentStatus: "junior accountant",
		Interests:     "sales, fintech",
		Timeline:      "1 year",
		Stage:         model.StageSwitching,
	})
	require.NoError(t, err)
	return p.ID
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestServeHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestServeCreateAndGetProfile(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/profiles", map[string]string{
		"current_status": "final year student",
		"interests":      "ux design",
		"timeline":       "6 months",
		"stage":          "student",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created model.Profile
	decodeBody(t, resp, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, model.StageStudent, created.Stage)

	getResp, err := http.Get(srv.URL + "/api/profiles/" + created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, getResp.StatusCode)

	var got model.Profile
	decodeBody(t, getResp, &got)
	assert.Equal(t, created.ID, got.ID)
}

func TestServeCreateProfileValidation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/profiles", map[string]string{"interests": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/profiles", map[string]string{
		"current_status": "s", "interests": "x", "stage": "retired",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestServeGetProfileNotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/profiles/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestServeStoriesUnknownProfile(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/api/profiles/nope/stories", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestServeStoriesNoKeys(t *testing.T) {
	srv, st := newTestServer(t, nil)
	id := seedProfile(t, st)

	resp := postJSON(t, srv.URL+"/api/profiles/"+id+"/stories", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res pipeline.StoriesResult
	decodeBody(t, resp, &res)
	assert.Equal(t, model.OutcomeNoKeys, res.Outcome)
	assert.NotNil(t, res.Stories)
	assert.Empty(t, res.Stories)
}

func TestServeStoriesOK(t *testing.T) {
	search := &staticSearch{results: []websearch.Result{
		{Title: "How I got my first fintech job", URL: "https://example.com/1", Description: "a career story"},
		{Title: "Sales interview prep", URL: "https://example.com/2", Description: "entry level advice"},
	}}
	srv, st := newTestServer(t, search)
	id := seedProfile(t, st)

	resp := postJSON(t, srv.URL+"/api/profiles/"+id+"/stories", map[string]any{"path_rank": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res pipeline.StoriesResult
	decodeBody(t, resp, &res)
	assert.Equal(t, model.OutcomeOK, res.Outcome)
	assert.Len(t, res.Stories, 2)

	// Returned stories were mirrored into the case-study log.
	logResp, err := http.Get(srv.URL + "/api/case-studies")
	require.NoError(t, err)
	var logBody struct {
		CaseStudies []model.CaseStudy `json:"case_studies"`
	}
	decodeBody(t, logResp, &logBody)
	assert.Len(t, logBody.CaseStudies, 2)
}

func TestServeOverviewStatic(t *testing.T) {
	srv, st := newTestServer(t, nil)
	id := seedProfile(t, st)

	resp := postJSON(t, srv.URL+"/api/profiles/"+id+"/overview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ov model.Overview
	decodeBody(t, resp, &ov)
	assert.Equal(t, model.OverviewStatic, ov.Source)
	assert.NotEmpty(t, ov.Text)
}

func TestServeRegenerateAndListPaths(t *testing.T) {
	srv, st := newTestServer(t, nil)
	id := seedProfile(t, st)

	resp := postJSON(t, srv.URL+"/api/profiles/"+id+"/paths:regenerate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var regen struct {
		Paths []model.PathSelection `json:"paths"`
	}
	decodeBody(t, resp, &regen)
	require.Len(t, regen.Paths, 3)

	listResp, err := http.Get(srv.URL + "/api/profiles/" + id + "/paths")
	require.NoError(t, err)
	var listed struct {
		Paths []model.PathSelection `json:"paths"`
	}
	decodeBody(t, listResp, &listed)
	assert.Len(t, listed.Paths, 3)
}

func TestServeListPathsEmpty(t *testing.T) {
	srv, st := newTestServer(t, nil)
	id := seedProfile(t, st)

	resp, err := http.Get(srv.URL + "/api/profiles/" + id + "/paths")
	require.NoError(t, err)
	var listed struct {
		Paths []model.PathSelection `json:"paths"`
	}
	decodeBody(t, resp, &listed)
	assert.NotNil(t, listed.Paths)
	assert.Empty(t, listed.Paths)
}
