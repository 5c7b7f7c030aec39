package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trajectory-labs/pathways-cli/internal/model"
)

var profileFlags struct {
	currentStatus string
	interests     string
	timeline      string
	stage         string
	name          string
	location      string
	extraInfo     string
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage career profiles",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a profile from the given fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		stage := model.Stage(profileFlags.stage)
		if !model.ValidStage(stage) {
			return eris.Errorf("unknown stage: %s", profileFlags.stage)
		}

		env, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		created, err := env.Store.CreateProfile(cmd.Context(), model.Profile{
			CurrentStatus: profileFlags.currentStatus,
			Interests:     profileFlags.interests,
			Timeline:      profileFlags.timeline,
			Stage:         stage,
			Name:          profileFlags.name,
			Location:      profileFlags.location,
			ExtraInfo:     profileFlags.extraInfo,
		})
		if err != nil {
			return err
		}

		zap.L().Info("profile created", zap.String("id", created.ID))
		return printJSON(created)
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <profile-id>",
	Short: "Show a stored profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		p, err := env.Store.GetProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if p == nil {
			return eris.Errorf("profile not found: %s", args[0])
		}
		return printJSON(p)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	profileCreateCmd.Flags().StringVar(&profileFlags.currentStatus, "status", "", "current status (required)")
	profileCreateCmd.Flags().StringVar(&profileFlags.interests, "interests", "", "comma-separated interests (required)")
	profileCreateCmd.Flags().StringVar(&profileFlags.timeline, "timeline", "", "target timeline")
	profileCreateCmd.Flags().StringVar(&profileFlags.stage, "stage", "exploring", "career stage: exploring|student|early_career|switching")
	profileCreateCmd.Flags().StringVar(&profileFlags.name, "name", "", "name")
	profileCreateCmd.Flags().StringVar(&profileFlags.location, "location", "", "location")
	profileCreateCmd.Flags().StringVar(&profileFlags.extraInfo, "extra", "", "extra free-text context")
	_ = profileCreateCmd.MarkFlagRequired("status")
	_ = profileCreateCmd.MarkFlagRequired("interests")

	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}
