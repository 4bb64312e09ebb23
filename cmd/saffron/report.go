package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/saffron/internal/cli"
	"github.com/spf13/cobra"
)

func correctionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "corrections",
		Short: "Show recent corrections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, cleanup, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			corrections := eng.Corrections()
			if limit > 0 && len(corrections) > limit {
				corrections = corrections[len(corrections)-limit:]
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderCorrections(corrections))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most this many (0 for all)")
	return cmd
}

func metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show prediction accuracy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, cleanup, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderMetrics(eng.Metrics()))
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget everything learned and restore the default rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !force {
				ok, err := confirm(ctx, cmd, "Delete all rules, patterns, corrections and metrics? [y/N]")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("Reset canceled"))
					return nil
				}
			}

			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := eng.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess("Reset to defaults"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation")
	return cmd
}

func confirm(ctx context.Context, cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), cli.FormatPrompt(prompt))
	answer, err := cli.NewLineReader(cmd.InOrStdin()).ReadLine(ctx)
	if err != nil {
		if errors.Is(err, cli.ErrInputCancelled) || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
