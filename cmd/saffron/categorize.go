package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/saffron/internal/cli"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/Veraticus/saffron/internal/ofx"
	"github.com/spf13/cobra"
)

func categorizeCmd() *cobra.Command {
	var (
		obsFlags observationFlags
		ofxPath  string
		explain  bool
	)

	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Suggest a category for a transaction or an OFX statement",
		Long: `Categorize one transaction described by flags, or every transaction in an
OFX/QFX statement with --ofx.

Rule usage counters are saved after the run.`,
		Example: `  saffron categorize --merchant "Trader Joe's" --amount 84.27
  saffron categorize --ofx ~/Downloads/checking.qfx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if ofxPath == "" {
				obs, err := obsFlags.observation(time.Now())
				if err != nil {
					return err
				}
				fmt.Fprint(out, cli.RenderPrediction(obs, eng.Categorize(obs)))
				if explain {
					fmt.Fprintln(out)
					fmt.Fprint(out, cli.RenderSignals(eng.Explain(obs)))
				}
				return eng.Save(ctx)
			}

			f, err := os.Open(ofxPath) //nolint:gosec // path comes from the operator
			if err != nil {
				return fmt.Errorf("failed to open statement: %w", err)
			}
			defer func() { _ = f.Close() }()

			observations, err := ofx.NewParser().Parse(ctx, f)
			if err != nil {
				return err
			}

			interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
			runCtx, stop := interrupts.HandleInterrupts(ctx, "Categorization", "Rule usage so far will be saved")
			defer stop()

			bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(observations), "Categorizing transactions...")
			results := make([]model.CategoryPrediction, 0, len(observations))
			for _, obs := range observations {
				if runCtx.Err() != nil {
					break
				}
				results = append(results, eng.Categorize(obs))
				cli.Advance(bar)
			}
			if !interrupts.WasInterrupted() {
				cli.Finish(bar)
			}

			for i, pred := range results {
				fmt.Fprint(out, cli.RenderPrediction(observations[i], pred))
				if explain {
					fmt.Fprint(out, cli.RenderSignals(eng.Explain(observations[i])))
				}
			}

			return eng.Save(ctx)
		},
	}

	obsFlags.register(cmd)
	cmd.Flags().StringVar(&ofxPath, "ofx", "", "OFX/QFX statement to categorize")
	cmd.Flags().BoolVar(&explain, "explain", false, "also list every individual signal")
	return cmd
}
