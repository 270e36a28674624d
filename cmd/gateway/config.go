package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"npcgate/gateway/pkg/cli"
	"npcgate/gateway/pkg/config"
)

const redacted = "[REDACTED]"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Load the configuration the same way "gateway run" does (file, then
environment), validate it, and print the result as YAML with secrets masked.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.WrapConfigError("failed to load config", err)
	}

	masked := *cfg
	if masked.Security.APIKey != "" {
		masked.Security.APIKey = redacted
	}
	if masked.Security.HMAC.Secret != "" {
		masked.Security.HMAC.Secret = redacted
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(&masked); err != nil {
		return cli.NewCommandError("config", err)
	}
	return enc.Close()
}
