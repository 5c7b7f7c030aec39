package pipeline

import (
	"fmt"
	"strings"

	"github.com/trajectory-labs/pathways-cli/internal/model"
)

// BuildDefaultPaths derives the three ranked path selections for a profile
// from fixed archetype templates. Path regeneration is wholesale: the store
// deletes every existing selection and recreates these.
func BuildDefaultPaths(p model.Profile) []model.PathSelection {
	interests := strings.TrimSpace(p.Interests)
	if interests == "" {
		interests = "your stated interests"
	}

	return []model.PathSelection{
		{
			Rank:  model.RankConventional,
			Label: model.RankConventional.DefaultLabel(),
			Explanation: fmt.Sprintf(
				"The established route into %s: recognized credentials, structured applications, and junior roles with a known progression.", interests),
		},
		{
			Rank:  model.RankProject,
			Label: model.RankProject.DefaultLabel(),
			Explanation: fmt.Sprintf(
				"Build visible self-directed work in %s and let finished projects act as your credential instead of waiting for a formal entry point.", interests),
		},
		{
			Rank:  model.RankUnconventional,
			Label: model.RankUnconventional.DefaultLabel(),
			Explanation: fmt.Sprintf(
				"Combine %s with an adjacent field and aim for hybrid roles that rarely carry a standard job title.", interests),
		},
	}
}
