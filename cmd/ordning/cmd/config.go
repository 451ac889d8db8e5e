package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KUKARAF/ordning/internal/config"
)

// configCmd groups configuration inspection and bootstrap commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and bootstrap the configuration",
	Long: `Inspect the effective configuration and generate a starter file.

Examples:
  ordning config init
  ordning config init --output /etc/ordning/ordning.yaml
  ordning config show
  ordning config paths`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = "ordning.yaml"
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force {
			if _, err := os.Stat(output); err == nil {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", output)
			}
		}

		if err := config.GenerateDefaultConfigFile(output); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote default configuration to %s\n", output)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		GetConfig() // make sure the loader has run

		settings := configLoader.GetViper().AllSettings()
		out, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List configuration search paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		GetConfig()

		out := cmd.OutOrStdout()
		if used := configLoader.GetConfigFileUsed(); used != "" {
			fmt.Fprintf(out, "using: %s\n", used)
		} else {
			fmt.Fprintln(out, "using: built-in defaults (no config file found)")
		}

		fmt.Fprintln(out, "search paths:")
		for _, p := range config.GetConfigSearchPaths() {
			fmt.Fprintf(out, "  %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configPathsCmd)

	configInitCmd.Flags().StringP("output", "o", "", "output path (default ordning.yaml)")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
}
