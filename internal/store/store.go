package store

import (
	"context"
	"errors"

	"github.com/trajectory-labs/pathways-cli/internal/model"
)

// ErrDuplicate is returned by CreateCaseStudy when a case study with the
// same URL already exists. Callers treat it as a non-event.
var ErrDuplicate = errors.New("store: duplicate")

// Store defines persistence for profiles, path selections, and the
// case-study log.
type Store interface {
	// Profiles. GetProfile returns (nil, nil) when the id is unknown; the
	// pipeline decides whether that is an error.
	CreateProfile(ctx context.Context, p model.Profile) (*model.Profile, error)
	GetProfile(ctx context.Context, id string) (*model.Profile, error)

	// Path selections are replaced wholesale: delete all rows for the
	// profile, then insert the new set, in one transaction where the
	// backend supports it.
	ReplacePathSelections(ctx context.Context, profileID string, paths []model.PathSelection) ([]model.PathSelection, error)
	ListPathSelections(ctx context.Context, profileID string) ([]model.PathSelection, error)

	// Case-study log. CreateCaseStudy returns ErrDuplicate on a URL
	// conflict.
	CreateCaseStudy(ctx context.Context, cs model.CaseStudy) error
	ListCaseStudies(ctx context.Context, limit int) ([]model.CaseStudy, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
