package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trajectory-labs/pathways-cli/internal/model"
	"github.com/trajectory-labs/pathways-cli/internal/pipeline"
	"github.com/trajectory-labs/pathways-cli/internal/resilience"
	"github.com/trajectory-labs/pathways-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initService(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.Store, env.Service),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// apiServer carries the handler dependencies.
type apiServer struct {
	store store.Store
	svc   *pipeline.Service
}

// newRouter builds the chi router. Split out from the command so handler
// tests can drive it directly with fakes.
func newRouter(st store.Store, svc *pipeline.Service) http.Handler {
	s := &apiServer{store: st, svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/profiles", s.handleCreateProfile)
		r.Get("/profiles/{id}", s.handleGetProfile)
		r.Get("/profiles/{id}/paths", s.handleListPaths)
		r.Post("/profiles/{id}/paths:regenerate", s.handleRegeneratePaths)
		r.Post("/profiles/{id}/stories", s.handleStories)
		r.Post("/profiles/{id}/overview", s.handleOverview)
		r.Get("/case-studies", s.handleListCaseStudies)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writePipelineError maps pipeline errors to HTTP: not-found is the only
// caller-visible domain error, everything else is internal.
func writePipelineError(w http.ResponseWriter, err error) {
	if resilience.IsNotFound(err) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	zap.L().Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createProfileRequest struct {
	CurrentStatus string `json:"current_status"`
	Interests     string `json:"interests"`
	Timeline      string `json:"timeline"`
	Stage         string `json:"stage"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	ExtraInfo     string `json:"extra_info"`
}

func (s *apiServer) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentStatus == "" || req.Interests == "" {
		writeError(w, http.StatusBadRequest, "current_status and interests are required")
		return
	}
	stage := model.Stage(req.Stage)
	if req.Stage == "" {
		stage = model.StageExploring
	}
	if !model.ValidStage(stage) {
		writeError(w, http.StatusBadRequest, "unknown stage")
		return
	}

	created, err := s.store.CreateProfile(r.Context(), model.Profile{
		CurrentStatus: req.CurrentStatus,
		Interests:     req.Interests,
		Timeline:      req.Timeline,
		Stage:         stage,
		Name:          req.Name,
		Location:      req.Location,
		ExtraInfo:     req.ExtraInfo,
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *apiServer) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.store.GetProfile(r.Context(), id)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "profile not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *apiServer) handleListPaths(w http.ResponseWriter, r *http.Request) {
	paths, err := s.store.ListPathSelections(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writePipelineError(w, err)
		return
	}
	if paths == nil {
		paths = []model.PathSelection{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"paths": paths})
}

func (s *apiServer) handleRegeneratePaths(w http.ResponseWriter, r *http.Request) {
	paths, err := s.svc.RegeneratePaths(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"paths": paths})
}

type pathRequest struct {
	PathRank  int    `json:"path_rank"`
	PathLabel string `json:"path_label"`
}

func decodePathRequest(r *http.Request) pipeline.StoryOptions {
	var req pathRequest
	// An empty or malformed body means the default path.
	_ = json.NewDecoder(r.Body).Decode(&req)
	return pipeline.StoryOptions{
		PathRank:  model.PathRank(req.PathRank),
		PathLabel: req.PathLabel,
	}
}

func (s *apiServer) handleStories(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.GenerateStories(r.Context(), chi.URLParam(r, "id"), decodePathRequest(r))
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *apiServer) handleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.svc.GenerateOverview(r.Context(), chi.URLParam(r, "id"), decodePathRequest(r))
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (s *apiServer) handleListCaseStudies(w http.ResponseWriter, r *http.Request) {
	studies, err := s.store.ListCaseStudies(r.Context(), 100)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	if studies == nil {
		studies = []model.CaseStudy{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"case_studies": studies})
}
