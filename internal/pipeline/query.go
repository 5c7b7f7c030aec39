package pipeline

import (
	"strings"

	"github.com/trajectory-labs/pathways-cli/internal/model"
)

// BuildSearchQuery composes the single web-search query for a profile and
// path. One query serves all three paths; the selector carves out different
// slices afterwards, so the query stays broad and the rank only nudges the
// phrasing.
func BuildSearchQuery(p model.Profile, rank model.PathRank) string {
	parts := []string{"career story"}

	if interests := strings.TrimSpace(p.Interests); interests != "" {
		parts = append(parts, interests)
	}
	if status := strings.TrimSpace(p.CurrentStatus); status != "" {
		parts = append(parts, status)
	}

	switch p.Stage {
	case model.StageStudent:
		parts = append(parts, "first job after graduation")
	case model.StageSwitching:
		parts = append(parts, "career change")
	case model.StageEarlyCareer:
		parts = append(parts, "early career growth")
	default:
		parts = append(parts, "how to get started")
	}

	switch rank {
	case model.RankProject:
		parts = append(parts, "portfolio project")
	case model.RankUnconventional:
		parts = append(parts, "unconventional path")
	}

	return strings.Join(parts, " ")
}
