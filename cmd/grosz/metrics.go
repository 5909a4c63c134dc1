package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"grosz/internal/cli"
)

func metricsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show the model's training history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			holder, err := initModels(ctx, store)
			if err != nil {
				return err
			}

			tr := initTrainer(store, holder)
			report, err := tr.Metrics(ctx)
			if err != nil {
				return err
			}

			if len(report.History) == 0 {
				fmt.Println(cli.SubtleStyle.Render("no training runs recorded yet"))
				return nil
			}

			if report.HasTrainedModel {
				fmt.Printf("current model accuracy: %s\n\n", cli.FormatConfidence(report.LatestAccuracy))
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintln(w, "When\tType\tResult\tAccuracy\tSamples\tCategories\tNotes")
			shown := 0
			for _, m := range report.History {
				if limit > 0 && shown >= limit {
					break
				}
				result := cli.SuccessStyle.Render("ok")
				if !m.Succeeded {
					result = cli.ErrorStyle.Render("failed")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%.1f%%\t%d\t%d\t%s\n",
					m.CreatedAt.Format("2006-01-02 15:04"),
					m.TrainingType, result, m.Accuracy*100,
					m.SampleCount, m.CategoryCount, m.Notes)
				shown++
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "show at most N rows (0 = all)")

	return cmd
}
