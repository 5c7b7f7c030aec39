package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/trajectory-labs/pathways-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses, satisfied by pgxmock
// for unit testing.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	id             TEXT PRIMARY KEY,
	current_status TEXT NOT NULL,
	interests      TEXT NOT NULL,
	timeline       TEXT NOT NULL,
	stage          TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	location       TEXT NOT NULL DEFAULT '',
	extra_info     TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS path_selections (
	id              TEXT PRIMARY KEY,
	profile_id      TEXT NOT NULL REFERENCES profiles(id),
	rank            INTEGER NOT NULL,
	label           TEXT NOT NULL,
	explanation     TEXT NOT NULL DEFAULT '',
	target_role     TEXT NOT NULL DEFAULT '',
	target_industry TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS case_studies (
	id          TEXT PRIMARY KEY,
	url         TEXT NOT NULL UNIQUE,
	source_type TEXT NOT NULL,
	title       TEXT NOT NULL,
	summary     TEXT NOT NULL DEFAULT '',
	tags        JSONB NOT NULL DEFAULT '[]',
	stage       TEXT NOT NULL DEFAULT '',
	fetched_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_path_selections_profile ON path_selections(profile_id, rank);
CREATE INDEX IF NOT EXISTS idx_case_studies_stage ON case_studies(stage);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateProfile(ctx context.Context, p model.Profile) (*model.Profile, error) {
	p.ID = uuid.New().String()
	p.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (id, current_status, interests, timeline, stage, name, location, extra_info, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.CurrentStatus, p.Interests, p.Timeline, string(p.Stage), p.Name, p.Location, p.ExtraInfo, p.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert profile")
	}
	return &p, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, current_status, interests, timeline, stage, name, location, extra_info, created_at
		 FROM profiles WHERE id = $1`,
		id,
	)

	var p model.Profile
	err := row.Scan(&p.ID, &p.CurrentStatus, &p.Interests, &p.Timeline, &p.Stage, &p.Name, &p.Location, &p.ExtraInfo, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get profile")
	}
	return &p, nil
}

func (s *PostgresStore) ReplacePathSelections(ctx context.Context, profileID string, paths []model.PathSelection) ([]model.PathSelection, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM path_selections WHERE profile_id = $1`, profileID); err != nil {
		return nil, eris.Wrap(err, "postgres: delete path selections")
	}

	now := time.Now().UTC()
	out := make([]model.PathSelection, 0, len(paths))
	for _, ps := range paths {
		ps.ID = uuid.New().String()
		ps.ProfileID = profileID
		ps.CreatedAt = now
		_, err := tx.Exec(ctx,
			`INSERT INTO path_selections (id, profile_id, rank, label, explanation, target_role, target_industry, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			ps.ID, ps.ProfileID, int(ps.Rank), ps.Label, ps.Explanation, ps.TargetRole, ps.TargetIndustry, ps.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: insert path selection")
		}
		out = append(out, ps)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit path selections")
	}
	return out, nil
}

func (s *PostgresStore) ListPathSelections(ctx context.Context, profileID string) ([]model.PathSelection, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, profile_id, rank, label, explanation, target_role, target_industry, created_at
		 FROM path_selections WHERE profile_id = $1 ORDER BY rank ASC`,
		profileID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list path selections")
	}
	defer rows.Close()

	var paths []model.PathSelection
	for rows.Next() {
		var ps model.PathSelection
		var rank int
		if err := rows.Scan(&ps.ID, &ps.ProfileID, &rank, &ps.Label, &ps.Explanation, &ps.TargetRole, &ps.TargetIndustry, &ps.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan path selection")
		}
		ps.Rank = model.PathRank(rank)
		paths = append(paths, ps)
	}
	return paths, eris.Wrap(rows.Err(), "postgres: list path selections iterate")
}

func (s *PostgresStore) CreateCaseStudy(ctx context.Context, cs model.CaseStudy) error {
	if cs.ID == "" {
		cs.ID = uuid.New().String()
	}
	if cs.FetchedAt.IsZero() {
		cs.FetchedAt = time.Now().UTC()
	}

	tagsJSON, err := json.Marshal(cs.Tags)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal tags")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO case_studies (id, url, source_type, title, summary, tags, stage, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		cs.ID, cs.URL, string(cs.SourceType), cs.Title, cs.Summary, string(tagsJSON), string(cs.Stage), cs.FetchedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return eris.Wrap(err, "postgres: insert case study")
	}
	return nil
}

func (s *PostgresStore) ListCaseStudies(ctx context.Context, limit int) ([]model.CaseStudy, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, url, source_type, title, summary, tags, stage, fetched_at
		 FROM case_studies ORDER BY fetched_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list case studies")
	}
	defer rows.Close()

	var studies []model.CaseStudy
	for rows.Next() {
		var cs model.CaseStudy
		var tagsJSON []byte
		if err := rows.Scan(&cs.ID, &cs.URL, &cs.SourceType, &cs.Title, &cs.Summary, &tagsJSON, &cs.Stage, &cs.FetchedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan case study")
		}
		if err := json.Unmarshal(tagsJSON, &cs.Tags); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal tags")
		}
		studies = append(studies, cs)
	}
	return studies, eris.Wrap(rows.Err(), "postgres: list case studies iterate")
}
