package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/trajectory-labs/pathways-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	id             TEXT PRIMARY KEY,
	current_status TEXT NOT NULL,
	interests      TEXT NOT NULL,
	timeline       TEXT NOT NULL,
	stage          TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	location       TEXT NOT NULL DEFAULT '',
	extra_info     TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS path_selections (
	id              TEXT PRIMARY KEY,
	profile_id      TEXT NOT NULL REFERENCES profiles(id),
	rank            INTEGER NOT NULL,
	label           TEXT NOT NULL,
	explanation     TEXT NOT NULL DEFAULT '',
	target_role     TEXT NOT NULL DEFAULT '',
	target_industry TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS case_studies (
	id          TEXT PRIMARY KEY,
	url         TEXT NOT NULL UNIQUE,
	source_type TEXT NOT NULL,
	title       TEXT NOT NULL,
	summary     TEXT NOT NULL DEFAULT '',
	tags        TEXT NOT NULL DEFAULT '[]',
	stage       TEXT NOT NULL DEFAULT '',
	fetched_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_path_selections_profile ON path_selections(profile_id, rank);
CREATE INDEX IF NOT EXISTS idx_case_studies_stage ON case_studies(stage);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateProfile(ctx context.Context, p model.Profile) (*model.Profile, error) {
	p.ID = uuid.New().String()
	p.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, current_status, interests, timeline, stage, name, location, extra_info, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CurrentStatus, p.Interests, p.Timeline, string(p.Stage), p.Name, p.Location, p.ExtraInfo, p.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert profile")
	}
	return &p, nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, current_status, interests, timeline, stage, name, location, extra_info, created_at
		 FROM profiles WHERE id = ?`,
		id,
	)

	var p model.Profile
	err := row.Scan(&p.ID, &p.CurrentStatus, &p.Interests, &p.Timeline, &p.Stage, &p.Name, &p.Location, &p.ExtraInfo, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get profile")
	}
	return &p, nil
}

func (s *SQLiteStore) ReplacePathSelections(ctx context.Context, profileID string, paths []model.PathSelection) ([]model.PathSelection, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM path_selections WHERE profile_id = ?`, profileID); err != nil {
		return nil, eris.Wrap(err, "sqlite: delete path selections")
	}

	now := time.Now().UTC()
	out := make([]model.PathSelection, 0, len(paths))
	for _, ps := range paths {
		ps.ID = uuid.New().String()
		ps.ProfileID = profileID
		ps.CreatedAt = now
		_, err := tx.ExecContext(ctx,
			`INSERT INTO path_selections (id, profile_id, rank, label, explanation, target_role, target_industry, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ps.ID, ps.ProfileID, int(ps.Rank), ps.Label, ps.Explanation, ps.TargetRole, ps.TargetIndustry, ps.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: insert path selection")
		}
		out = append(out, ps)
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit path selections")
	}
	return out, nil
}

func (s *SQLiteStore) ListPathSelections(ctx context.Context, profileID string) ([]model.PathSelection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profile_id, rank, label, explanation, target_role, target_industry, created_at
		 FROM path_selections WHERE profile_id = ? ORDER BY rank ASC`,
		profileID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list path selections")
	}
	defer rows.Close()

	var paths []model.PathSelection
	for rows.Next() {
		var ps model.PathSelection
		var rank int
		if err := rows.Scan(&ps.ID, &ps.ProfileID, &rank, &ps.Label, &ps.Explanation, &ps.TargetRole, &ps.TargetIndustry, &ps.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan path selection")
		}
		ps.Rank = model.PathRank(rank)
		paths = append(paths, ps)
	}
	return paths, eris.Wrap(rows.Err(), "sqlite: list path selections iterate")
}

func (s *SQLiteStore) CreateCaseStudy(ctx context.Context, cs model.CaseStudy) error {
	if cs.ID == "" {
		cs.ID = uuid.New().String()
	}
	if cs.FetchedAt.IsZero() {
		cs.FetchedAt = time.Now().UTC()
	}

	tagsJSON, err := json.Marshal(cs.Tags)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal tags")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO case_studies (id, url, source_type, title, summary, tags, stage, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cs.ID, cs.URL, string(cs.SourceType), cs.Title, cs.Summary, string(tagsJSON), string(cs.Stage), cs.FetchedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return ErrDuplicate
		}
		return eris.Wrap(err, "sqlite: insert case study")
	}
	return nil
}

func (s *SQLiteStore) ListCaseStudies(ctx context.Context, limit int) ([]model.CaseStudy, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, source_type, title, summary, tags, stage, fetched_at
		 FROM case_studies ORDER BY fetched_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list case studies")
	}
	defer rows.Close()

	var studies []model.CaseStudy
	for rows.Next() {
		var cs model.CaseStudy
		var tagsJSON string
		if err := rows.Scan(&cs.ID, &cs.URL, &cs.SourceType, &cs.Title, &cs.Summary, &tagsJSON, &cs.Stage, &cs.FetchedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan case study")
		}
		if err := json.Unmarshal([]byte(tagsJSON), &cs.Tags); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal tags")
		}
		studies = append(studies, cs)
	}
	return studies, eris.Wrap(rows.Err(), "sqlite: list case studies iterate")
}
