package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/LuaAI777/cts-project/internal/model"
	"github.com/LuaAI777/cts-project/pkg/hash"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Report every invariant violation in a config file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg model.Config
			if err := readYAML(args[0], &cfg); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			problems := cfg.Problems()
			if len(problems) == 0 {
				digest, err := hash.Digest(&cfg)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %s (digest %s)\n", color.GreenString("valid:"), args[0], digest[:12])
				return nil
			}

			rows := make([][]string, 0, len(problems))
			for i, p := range problems {
				rows = append(rows, []string{strconv.Itoa(i + 1), p})
			}
			if err := renderTable(out, []string{"#", "Problem"}, rows); err != nil {
				return err
			}
			return fmt.Errorf("%s: %d problem(s) found", args[0], len(problems))
		},
	}
}
