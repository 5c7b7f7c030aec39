package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajectory-labs/pathways-cli/internal/model"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresCreateProfile(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO profiles`).
		WithArgs(pgxmock.AnyArg(), "final year biology student", "genomics", "6 months", "student", "", "", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := s.CreateProfile(context.Background(), model.Profile{
		CurrentStatus: "final year biology student",
		Interests:     "genomics",
		Timeline:      "6 months",
		Stage:         model.StageStudent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetProfileUnknown(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE id`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "current_status", "interests", "timeline", "stage", "name", "location", "extra_info", "created_at",
		}))

	got, err := s.GetProfile(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetProfile(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE id`).
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "current_status", "interests", "timeline", "stage", "name", "location", "extra_info", "created_at",
		}).AddRow("p1", "junior accountant", "fintech", "1 year", "switching", "", "", "", now))

	got, err := s.GetProfile(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.StageSwitching, got.Stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReplacePathSelections(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM path_selections WHERE profile_id`).
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`INSERT INTO path_selections`).
		WithArgs(pgxmock.AnyArg(), "p1", 1, "Conventional path", "", "", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO path_selections`).
		WithArgs(pgxmock.AnyArg(), "p1", 3, "Unconventional cross-discipline path", "", "", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	out, err := s.ReplacePathSelections(context.Background(), "p1", []model.PathSelection{
		{Rank: model.RankConventional, Label: "Conventional path"},
		{Rank: model.RankUnconventional, Label: "Unconventional cross-discipline path"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "p1", out[0].ProfileID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListPathSelections(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM path_selections WHERE profile_id`).
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "profile_id", "rank", "label", "explanation", "target_role", "target_industry", "created_at",
		}).
			AddRow("s1", "p1", 1, "Conventional path", "", "", "", now).
			AddRow("s2", "p1", 2, "Project-driven path", "", "", "", now))

	paths, err := s.ListPathSelections(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, model.RankConventional, paths[0].Rank)
	assert.Equal(t, model.RankProject, paths[1].Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateCaseStudyDuplicate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO case_studies`).
		WithArgs(pgxmock.AnyArg(), "https://youtube.com/watch?v=abc", "video", "From lab to code", "", "[]", "switching", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := s.CreateCaseStudy(context.Background(), model.CaseStudy{
		URL:        "https://youtube.com/watch?v=abc",
		SourceType: model.SourceVideo,
		Title:      "From lab to code",
		Stage:      model.StageSwitching,
	})
	require.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListCaseStudies(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM case_studies ORDER BY fetched_at`).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "url", "source_type", "title", "summary", "tags", "stage", "fetched_at",
		}).AddRow("c1", "https://a.example/1", "article", "story", "", []byte(`["fintech"]`), "switching", now))

	studies, err := s.ListCaseStudies(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, studies, 1)
	assert.Equal(t, []string{"fintech"}, studies[0].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}
