package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trajectory-labs/pathways-cli/internal/model"
	"github.com/trajectory-labs/pathways-cli/internal/pipeline"
)

var (
	storiesRank  int
	storiesLabel string
)

var storiesCmd = &cobra.Command{
	Use:   "stories <profile-id>",
	Short: "Generate career stories for a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Service.GenerateStories(cmd.Context(), args[0], pipeline.StoryOptions{
			PathRank:  model.PathRank(storiesRank),
			PathLabel: storiesLabel,
		})
		if err != nil {
			return err
		}

		zap.L().Info("stories generated",
			zap.String("outcome", string(res.Outcome)),
			zap.Int("count", len(res.Stories)))
		return printJSON(res)
	},
}

func init() {
	storiesCmd.Flags().IntVar(&storiesRank, "rank", 0, "path rank 1-3 (default: stored or 1)")
	storiesCmd.Flags().StringVar(&storiesLabel, "label", "", "path label (rank inferred when set)")
	rootCmd.AddCommand(storiesCmd)
}
