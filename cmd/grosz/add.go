package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"grosz/internal/cli"
	"grosz/internal/engine"
)

func addCmd() *cobra.Command {
	var (
		vendor   string
		category string
		lang     string
		amount   float64
		dateStr  string
	)

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Record a new expense",
		Long: `Record a new expense from its transcribed description. Without
--category the classifier predicts one; low-confidence predictions are
flagged for review.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, store, _, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			date := time.Now()
			if dateStr != "" {
				date, err = time.Parse("2006-01-02", dateStr)
				if err != nil {
					return fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", dateStr, err)
				}
			}

			expense, err := eng.AddExpense(ctx, engine.AddExpenseRequest{
				Date:        date,
				Description: args[0],
				Vendor:      vendor,
				Category:    category,
				Language:    lang,
				Amount:      amount,
			})
			if err != nil {
				return err
			}

			line := fmt.Sprintf("expense #%d recorded as %s", expense.ID, expense.Category)
			if expense.Confidence != nil {
				line += fmt.Sprintf(" (%s)", cli.FormatConfidence(*expense.Confidence))
			}
			fmt.Println(cli.FormatSuccess(line))

			if expense.NeedsReview {
				fmt.Println(cli.WarningStyle.Render("low confidence: run 'grosz review' to confirm the category"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&vendor, "vendor", "", "vendor or shop name")
	cmd.Flags().StringVar(&category, "category", "", "category (skips prediction)")
	cmd.Flags().StringVar(&lang, "lang", "", "language hint (en, pl)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount spent")
	cmd.Flags().StringVar(&dateStr, "date", "", "expense date (YYYY-MM-DD, default today)")

	return cmd
}
