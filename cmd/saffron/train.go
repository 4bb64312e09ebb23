package main

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/Veraticus/saffron/internal/cli"
	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/history"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/spf13/cobra"
)

func trainCmd() *cobra.Command {
	var (
		csvPath string
		comma   string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Learn patterns from categorized history",
		Long: `Learn merchant, keyword, amount and composite patterns from a CSV file of
already-categorized transactions.

The file needs a header row with date, amount and category columns plus a
merchant or description column. Rows that cannot be parsed are skipped.`,
		Example: `  saffron train --csv history.csv
  saffron train --csv history.tsv --comma "\t"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var opts []history.Option
			if comma != "" {
				r := delimiter(comma)
				if utf8.RuneCountInString(r) != 1 {
					return common.NewUserError("--comma must be a single character", common.ErrInvalidInput)
				}
				c, _ := utf8.DecodeRuneInString(r)
				opts = append(opts, history.WithComma(c))
			}

			result, err := history.NewReader(opts...).ReadFile(csvPath)
			if err != nil {
				return err
			}
			if len(result.Samples) == 0 {
				return common.NewUserError(fmt.Sprintf("No usable rows in %s", csvPath), common.ErrInvalidInput)
			}

			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			bar := cli.NewProgressBar(cmd.ErrOrStderr(), -1, "Training on history...")
			summary, err := eng.LearnFromHistory(ctx, result.Samples)
			cli.Finish(bar)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Learned %d patterns from %d transactions",
				summary.Patterns, summary.Samples)))
			if result.Skipped > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Skipped %d unreadable rows", result.Skipped)))
			}

			kinds := make([]model.PatternKind, 0, len(summary.ByKind))
			for kind := range summary.ByKind {
				kinds = append(kinds, kind)
			}
			sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
			for _, kind := range kinds {
				fmt.Fprintf(out, "  %-12s %d\n", kind, summary.ByKind[kind])
			}
			if summary.ModelTrained {
				fmt.Fprintln(out, cli.FormatInfo("Description model trained"))
			}
			fmt.Fprintln(out, cli.FormatInfo("Model version "+eng.Metrics().ModelVersion))
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file of categorized transactions")
	cmd.Flags().StringVar(&comma, "comma", "", `field delimiter (default ","; "\t" for tabs)`)
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

func delimiter(s string) string {
	if s == `\t` {
		return "\t"
	}
	return s
}
