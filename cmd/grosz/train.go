package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"grosz/internal/cli"
	"grosz/internal/common"
	"grosz/internal/model"
)

func trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Retrain the classifier on the confirmed corpus",
		Long: `Start a full retraining run over every confirmed expense and wait for
it to finish. Predictions keep serving from the previous model until
the new one swaps in.`,
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

			if err := tr.Start(ctx); err != nil {
				if errors.Is(err, common.ErrTrainingInProgress) {
					return fmt.Errorf("a training run is already in progress, try again later")
				}
				return err
			}

			bar := progressbar.NewOptions(-1,
				progressbar.OptionSetDescription("training"),
				progressbar.OptionSpinnerType(14),
				progressbar.OptionClearOnFinish(),
			)

			var job model.TrainingJob
			for {
				job = tr.Poll()
				if job.Status.Terminal() {
					break
				}
				_ = bar.Add(1)
				time.Sleep(200 * time.Millisecond)
			}
			_ = bar.Finish()

			if job.Status == model.TrainingFailed {
				fmt.Println(cli.FormatError("training failed: " + job.Error))
				fmt.Println(cli.SubtleStyle.Render("the previous model, if any, is still serving"))
				return nil
			}

			report, err := tr.Metrics(ctx)
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"training completed in %s (accuracy %.1f%%)",
				time.Since(job.StartedAt).Round(time.Millisecond),
				report.LatestAccuracy*100)))
			return nil
		},
	}
}
