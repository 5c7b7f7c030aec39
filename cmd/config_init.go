package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var configOut string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and scaffold configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to a YAML file",
	Long:  "Writes the merged configuration (defaults, config file, environment) to a YAML file as a starting point for editing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configOut); err == nil {
			return eris.Errorf("%s already exists, refusing to overwrite", configOut)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return eris.Wrap(err, "marshal config")
		}
		if err := os.WriteFile(configOut, data, 0o644); err != nil {
			return eris.Wrap(err, "write config file")
		}

		zap.L().Info("config written", zap.String("path", configOut))
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configOut, "out", "config.yaml", "output path")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
