package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/saffron/internal/cli"
	"github.com/Veraticus/saffron/internal/rule"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization rules",
	}
	cmd.AddCommand(rulesListCmd(), rulesAddCmd(), rulesDeleteCmd(), rulesImportCmd(), rulesTestCmd())
	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, cleanup, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Fprint(cmd.OutOrStdout(), cli.RenderRules(eng.Rules()))
			return nil
		},
	}
}

func rulesAddCmd() *cobra.Command {
	var (
		def        rule.Definition
		minAmount  float64
		maxAmount  float64
		confidence float64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a rule",
		Example: `  saffron rules add --name "Coffee" --field merchant --operator contains --value starbucks --category Food
  saffron rules add --name "Rent" --field amount --operator range --min 1800 --max 2200 --category Housing`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("min") {
				def.Min = &minAmount
			}
			if cmd.Flags().Changed("max") {
				def.Max = &maxAmount
			}
			if cmd.Flags().Changed("confidence") {
				def.Confidence = &confidence
			}

			r, err := def.ToRule()
			if err != nil {
				return err
			}

			eng, cleanup, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			added, err := eng.AddRule(cmd.Context(), r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added rule %q (%s)", added.Name, added.ID)))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&def.Name, "name", "", "rule name")
	f.StringVar(&def.Kind, "kind", "", "rule kind (inferred from --field when empty)")
	f.StringVar(&def.Field, "field", "merchant", "field to test: merchant, description, amount or date")
	f.StringVar(&def.Operator, "operator", "contains", "contains, equals, starts_with, ends_with, regex or range")
	f.StringVar(&def.Value, "value", "", "value to compare against")
	f.Float64Var(&minAmount, "min", 0, "range lower bound")
	f.Float64Var(&maxAmount, "max", 0, "range upper bound")
	f.StringVarP(&def.Category, "category", "c", "", "category to assign")
	f.Float64Var(&confidence, "confidence", rule.DefaultConfidence, "confidence of the assignment")
	f.IntVar(&def.Priority, "priority", 0, "higher priorities are evaluated first")
	f.StringSliceVar(&def.Tags, "tags", nil, "tags to suggest")
	f.BoolVar(&def.Disabled, "disabled", false, "add the rule inactive")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func rulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cleanup, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := eng.DeleteRule(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted rule "+args[0]))
			return nil
		},
	}
}

func rulesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import rules from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := rule.LoadFile(args[0])
			if err != nil {
				return err
			}

			eng, cleanup, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			added, err := eng.ImportRules(cmd.Context(), rules)
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d of %d rules", len(added), len(rules))))
			return err
		},
	}
}

func rulesTestCmd() *cobra.Command {
	var obsFlags observationFlags

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Show which rules match a transaction",
		Long:  "Show which rules match a transaction without counting it as a use.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			obs, err := obsFlags.observation(time.Now())
			if err != nil {
				return err
			}

			eng, cleanup, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			matching := eng.MatchingRules(obs)
			if len(matching) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No rules match "+cli.DescribeObservation(obs)))
				return nil
			}
			fmt.Fprint(out, cli.RenderRules(matching))
			return nil
		},
	}
	obsFlags.register(cmd)
	return cmd
}
