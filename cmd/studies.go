package main

import (
	"github.com/spf13/cobra"
)

var studiesLimit int

var studiesCmd = &cobra.Command{
	Use:   "studies",
	Short: "List logged case studies",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		studies, err := env.Store.ListCaseStudies(cmd.Context(), studiesLimit)
		if err != nil {
			return err
		}
		return printJSON(studies)
	},
}

func init() {
	studiesCmd.Flags().IntVar(&studiesLimit, "limit", 20, "maximum rows to list")
	rootCmd.AddCommand(studiesCmd)
}
