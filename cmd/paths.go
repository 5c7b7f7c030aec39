package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Manage a profile's path selections",
}

var pathsListCmd = &cobra.Command{
	Use:   "list <profile-id>",
	Short: "List path selections ordered by rank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		paths, err := env.Store.ListPathSelections(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(paths)
	},
}

var pathsRegenerateCmd = &cobra.Command{
	Use:   "regenerate <profile-id>",
	Short: "Delete and recreate the profile's three path selections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		paths, err := env.Service.RegeneratePaths(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		zap.L().Info("paths regenerated", zap.String("profile_id", args[0]), zap.Int("count", len(paths)))
		return printJSON(paths)
	},
}

func init() {
	pathsCmd.AddCommand(pathsListCmd)
	pathsCmd.AddCommand(pathsRegenerateCmd)
	rootCmd.AddCommand(pathsCmd)
}
