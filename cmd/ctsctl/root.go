package main

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/LuaAI777/cts-project/internal/model"
)

// Set by the release build.
var version = "dev"

// newRootCmd builds the command tree. Each invocation gets its own viper
// instance so flags, CTS_* env vars and defaults never leak between runs.
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CTS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("no-color", false)

	root := &cobra.Command{
		Use:           "ctsctl",
		Short:         "Validate, diff and dry-run content trust configs.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if v.GetBool("no-color") {
				color.NoColor = true
			}
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	root.PersistentFlags().Bool("no-color", false, "disable colored output")
	_ = v.BindPFlag("no-color", root.PersistentFlags().Lookup("no-color"))

	root.AddCommand(
		newValidateCmd(),
		newScoreCmd(v),
		newDiffCmd(),
		newDefaultsCmd(),
	)
	return root
}

// loadConfig reads a YAML or JSON config file and validates it fully.
// An empty path yields the built-in defaults.
func loadConfig(path string) (*model.Config, error) {
	if path == "" {
		return model.DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return model.ParseConfig(data)
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}
