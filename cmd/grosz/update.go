package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"grosz/internal/cli"
	"grosz/internal/engine"
)

func updateCmd() *cobra.Command {
	var (
		description string
		vendor      string
		category    string
		dateStr     string
		amount      float64
	)

	cmd := &cobra.Command{
		Use:   "update <expense-id>",
		Short: "Edit an expense record",
		Long: `Edit any field of an expense. Changing the category counts as a
correction: confidence resets to 1.0 and the corrected pair joins the
training corpus.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid expense id %q: %w", args[0], err)
			}

			eng, store, _, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var req engine.UpdateExpenseRequest
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("vendor") {
				req.Vendor = &vendor
			}
			if cmd.Flags().Changed("category") {
				req.Category = &category
			}
			if cmd.Flags().Changed("amount") {
				req.Amount = &amount
			}
			if cmd.Flags().Changed("date") {
				date, err := time.Parse("2006-01-02", dateStr)
				if err != nil {
					return fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", dateStr, err)
				}
				req.Date = &date
			}

			expense, err := eng.Update(ctx, id, req)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(
				fmt.Sprintf("expense #%d updated (category: %s)", expense.ID, expense.Category)))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&vendor, "vendor", "", "new vendor")
	cmd.Flags().StringVar(&category, "category", "", "new category (treated as a correction)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "new amount")
	cmd.Flags().StringVar(&dateStr, "date", "", "new date (YYYY-MM-DD)")

	return cmd
}
