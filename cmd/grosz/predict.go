package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"grosz/internal/cli"
	"grosz/internal/common"
	"grosz/internal/model"
)

func predictCmd() *cobra.Command {
	var (
		vendor string
		lang   string
	)

	cmd := &cobra.Command{
		Use:   "predict <description>",
		Short: "Predict a category without recording anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, store, _, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			prediction, err := eng.Predict(ctx, args[0], vendor, lang)
			if errors.Is(err, common.ErrModelUnavailable) {
				fmt.Printf("no trained model yet; falling back to %q with no confidence\n", model.DefaultCategory)
				fmt.Println(cli.SubtleStyle.Render("confirm some expenses and run 'grosz train' first"))
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("category:    %s\n", cli.PromptStyle.Render(prediction.Category))
			fmt.Printf("confidence:  %s (%s band)\n", cli.FormatConfidence(prediction.Confidence), prediction.Band)
			if prediction.NeedsReview {
				fmt.Println(cli.WarningStyle.Render("below review threshold: would be flagged for review"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&vendor, "vendor", "", "vendor or shop name")
	cmd.Flags().StringVar(&lang, "lang", "", "language hint (en, pl)")

	return cmd
}
