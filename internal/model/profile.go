package model

import (
	"strings"
	"time"
)

// Stage represents where the user is in their career journey.
type Stage string

const (
	StageExploring   Stage = "exploring"
	StageStudent     Stage = "student"
	StageEarlyCareer Stage = "early_career"
	StageSwitching   Stage = "switching"
)

// ValidStage reports whether s is one of the known stages.
func ValidStage(s Stage) bool {
	switch s {
	case StageExploring, StageStudent, StageEarlyCareer, StageSwitching:
		return true
	default:
		return false
	}
}

// Profile is the user's self-reported career situation. It is created once
// from form input and never mutated afterwards.
type Profile struct {
	ID            string    `json:"id"`
	CurrentStatus string    `json:"current_status"`
	Interests     string    `json:"interests"`
	Timeline      string    `json:"timeline"`
	Stage         Stage     `json:"stage"`
	Name          string    `json:"name,omitempty"`
	Location      string    `json:"location,omitempty"`
	ExtraInfo     string    `json:"extra_info,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// OwnText returns the profile's free-text fields joined and lowercased, for
// keyword matching against search results.
func (p Profile) OwnText() string {
	return strings.ToLower(strings.Join([]string{
		p.CurrentStatus, p.Interests, p.Timeline, p.ExtraInfo,
	}, " "))
}

// PathRank identifies one of the three career-direction archetypes.
type PathRank int

const (
	RankConventional   PathRank = 1
	RankProject        PathRank = 2
	RankUnconventional PathRank = 3
)

// ValidRank reports whether r is within the 1..3 range.
func ValidRank(r PathRank) bool {
	return r >= RankConventional && r <= RankUnconventional
}

// RankFromLabel infers a path rank from a free-text label. Unrecognized
// labels fall back to rank 1, matching the default when no rank is given.
func RankFromLabel(label string) PathRank {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "unconventional"), strings.Contains(lower, "cross"):
		return RankUnconventional
	case strings.Contains(lower, "project"), strings.Contains(lower, "portfolio"):
		return RankProject
	default:
		return RankConventional
	}
}

// DefaultLabel returns the archetype label for a rank, used when the caller
// supplies a rank without a stored path selection.
func (r PathRank) DefaultLabel() string {
	switch r {
	case RankProject:
		return "Project-driven path"
	case RankUnconventional:
		return "Unconventional cross-discipline path"
	default:
		return "Conventional path"
	}
}

// PathSelection is a ranked career-direction suggestion belonging to exactly
// one profile. Selections are regenerated wholesale: recomputing paths for a
// profile deletes all existing rows and recreates them, never patching in
// place.
type PathSelection struct {
	ID             string    `json:"id"`
	ProfileID      string    `json:"profile_id"`
	Rank           PathRank  `json:"rank"`
	Label          string    `json:"label"`
	Explanation    string    `json:"explanation"`
	TargetRole     string    `json:"target_role,omitempty"`
	TargetIndustry string    `json:"target_industry,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
