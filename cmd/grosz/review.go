package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"grosz/internal/cli"
)

func reviewCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review low-confidence predictions interactively",
		Long: `Walk through expenses whose predicted category fell below the review
threshold. Each accepted or corrected category becomes training signal
for the next 'grosz train'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, store, _, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			queue, err := eng.ReviewQueue(ctx, limit)
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				fmt.Println(cli.FormatSuccess("nothing to review"))
				return nil
			}

			fmt.Printf("%d expense(s) waiting for review\n\n", len(queue))

			prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			reviewed := 0
			for _, expense := range queue {
				categories, err := eng.Categories(ctx)
				if err != nil {
					return err
				}

				decision, err := prompter.ReviewExpense(ctx, expense, categories)
				if errors.Is(err, io.EOF) || errors.Is(err, cli.ErrInputCancelled) {
					break
				}
				if err != nil {
					return err
				}
				if decision.Skipped {
					continue
				}

				if _, err := eng.Confirm(ctx, expense.ID, decision.Category); err != nil {
					return err
				}
				reviewed++
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%d expense(s) confirmed", reviewed)))
			if reviewed > 0 {
				fmt.Println(cli.SubtleStyle.Render("run 'grosz train' to fold the feedback into the model"))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "review at most N expenses (0 = all)")

	return cmd
}
