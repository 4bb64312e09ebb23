package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/saffron/internal/cli"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/spf13/cobra"
)

func correctCmd() *cobra.Command {
	var (
		obsFlags observationFlags
		category string
		reason   string
	)

	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Tell saffron the right category for a transaction",
		Long: `Categorize the transaction, then record the category it actually belongs to.
Without --category the suggestion is shown and the category is asked for
interactively. Confirming the suggestion counts as a correct prediction.`,
		Example: `  saffron correct --merchant "Foo Mart" --amount 42 --category Groceries
  saffron correct --merchant "Foo Mart" --amount 42`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			obs, err := obsFlags.observation(time.Now())
			if err != nil {
				return err
			}

			eng, cleanup, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			original := eng.Categorize(obs)

			var corrected model.Category
			if category != "" {
				if corrected, err = parseCategoryFlag(category); err != nil {
					return err
				}
			} else {
				prompter := cli.NewPrompter(cmd.InOrStdin(), out)
				if corrected, err = prompter.ChooseCategory(ctx, obs, original); err != nil {
					return err
				}
			}

			c, err := eng.LearnFromCorrection(ctx, obs, original, corrected, reason)
			if err != nil {
				return err
			}

			if c.WasCorrect() {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Confirmed %s as %s", merchantOf(obs), corrected)))
			} else {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Learned %s as %s (was %s)",
					merchantOf(obs), corrected, c.OriginalCategory)))
			}
			return nil
		},
	}

	obsFlags.register(cmd)
	cmd.Flags().StringVarP(&category, "category", "c", "", "correct category")
	cmd.Flags().StringVar(&reason, "reason", "", "why the suggestion was wrong")
	return cmd
}

// merchantOf names the observation by merchant, falling back to the description.
func merchantOf(obs model.Observation) string {
	if obs.Merchant != "" {
		return obs.Merchant
	}
	return obs.Description
}
