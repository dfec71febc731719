package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/LuaAI777/cts-project/internal/model"
	"github.com/LuaAI777/cts-project/internal/service"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
)

func newScoreCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a signal file against a config without a server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			signalPath := v.GetString("signal")
			if signalPath == "" {
				return errors.New("--signal is required")
			}
			output := v.GetString("output")
			if output != outputTable && output != outputYAML {
				return fmt.Errorf("unsupported output %q: must be table or yaml", output)
			}

			cfg, err := loadConfig(v.GetString("config"))
			if err != nil {
				return err
			}
			var sig model.VideoSignal
			if err := readYAML(signalPath, &sig); err != nil {
				return fmt.Errorf("decode %s: %w", signalPath, err)
			}

			res, err := service.ScoreSignal(&sig, cfg, service.ContentGate{
				Floor:      v.GetFloat64("gate-floor"),
				Multiplier: v.GetFloat64("gate-multiplier"),
			})
			if err != nil {
				return err
			}

			if output == outputYAML {
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(res)
			}
			return printScore(cmd.OutOrStdout(), res)
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "config file (YAML or JSON); defaults to the built-in config")
	flags.String("signal", "", "signal file (YAML or JSON)")
	flags.String("output", outputTable, "output format: table or yaml")
	flags.Float64("gate-floor", 30, "content total below which the gate applies")
	flags.Float64("gate-multiplier", 0.8, "multiplier applied to gated scores")
	for _, name := range []string{"config", "signal", "output", "gate-floor", "gate-multiplier"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}
