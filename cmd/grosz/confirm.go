package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"grosz/internal/cli"
	"grosz/internal/common"
)

func confirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <expense-id> <category>",
		Short: "Confirm or correct an expense's category",
		Long: `Confirm an expense's predicted category or correct it to another one.
Either way the expense is pinned at full confidence and the pair is
added to the training corpus.`,
		Args: cobra.ExactArgs(2),
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

			expense, err := eng.Confirm(ctx, id, args[1])
			if errors.Is(err, common.ErrExpenseNotFound) {
				return common.NewUserError(
					fmt.Sprintf("no expense with id %d; run 'grosz list' to find one", id), err)
			}
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(
				fmt.Sprintf("expense #%d confirmed as %s", expense.ID, expense.Category)))
			return nil
		},
	}
}
