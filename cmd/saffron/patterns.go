package main

import (
	"fmt"

	"github.com/Veraticus/saffron/internal/cli"
	"github.com/spf13/cobra"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect learned patterns",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List learned patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, cleanup, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Fprint(cmd.OutOrStdout(), cli.RenderPatterns(eng.Patterns()))
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Forget a learned pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cleanup, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := eng.DeletePattern(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted pattern "+args[0]))
			return nil
		},
	}

	cmd.AddCommand(list, del)
	return cmd
}
