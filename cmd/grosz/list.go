package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"grosz/internal/cli"
	"grosz/internal/service"
)

func listCmd() *cobra.Command {
	var (
		category    string
		needsReview bool
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, store, _, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			expenses, err := eng.Expenses(ctx, service.ExpenseFilter{
				Category:    category,
				NeedsReview: needsReview,
				Limit:       limit,
			})
			if err != nil {
				return err
			}
			if len(expenses) == 0 {
				fmt.Println(cli.SubtleStyle.Render("no expenses found"))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintln(w, "ID\tDate\tDescription\tVendor\tAmount\tCategory\tConfidence")
			fmt.Fprintf(w, "%s\n", strings.Repeat("-\t", 6)+"-")
			for _, e := range expenses {
				confidence := "-"
				if e.Confidence != nil {
					confidence = cli.FormatConfidence(*e.Confidence)
					if e.NeedsReview {
						confidence += " " + cli.WarningStyle.Render("(review)")
					}
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
					e.ID, e.Date.Format("2006-01-02"), e.Description,
					e.Vendor, e.Amount, e.Category, confidence)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().BoolVar(&needsReview, "review", false, "only expenses flagged for review")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows (0 = all)")

	return cmd
}
