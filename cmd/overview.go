package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trajectory-labs/pathways-cli/internal/model"
	"github.com/trajectory-labs/pathways-cli/internal/pipeline"
)

var (
	overviewRank  int
	overviewLabel string
)

var overviewCmd = &cobra.Command{
	Use:   "overview <profile-id>",
	Short: "Generate a path overview for a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		ov, err := env.Service.GenerateOverview(cmd.Context(), args[0], pipeline.StoryOptions{
			PathRank:  model.PathRank(overviewRank),
			PathLabel: overviewLabel,
		})
		if err != nil {
			return err
		}

		zap.L().Info("overview generated", zap.String("source", string(ov.Source)))
		return printJSON(ov)
	},
}

func init() {
	overviewCmd.Flags().IntVar(&overviewRank, "rank", 0, "path rank 1-3 (default: stored or 1)")
	overviewCmd.Flags().StringVar(&overviewLabel, "label", "", "path label (rank inferred when set)")
	rootCmd.AddCommand(overviewCmd)
}
