package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LuaAI777/cts-project/internal/model"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Show how NEW differs from OLD.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := loadConfig(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			after, err := loadConfig(args[1])
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}

			changes := model.DiffConfigs(before, after)
			if len(changes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no differences")
				return nil
			}

			rows := make([][]string, 0, len(changes))
			for _, c := range changes {
				field, change, _ := strings.Cut(c, ": ")
				rows = append(rows, []string{field, change})
			}
			return renderTable(cmd.OutOrStdout(), []string{"Field", "Change"}, rows)
		},
	}
}
