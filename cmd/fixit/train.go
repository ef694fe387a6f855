package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/fixit/internal/cli"
	"github.com/Veraticus/fixit/internal/training"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func trainCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the complaint classifier from a labelled CSV",
		Long: `Train the text classifier used as the second classification tier.

The input CSV needs 'description' and 'complaint_type' columns, as written by
'fixit reduce'. Categories with too few examples are dropped, the rest are
split 80/20 per category, and the model is evaluated on the held-out part
before being saved to the model path.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg := training.DefaultConfig(appConfig.Train.Input, appConfig.ModelPath)
			cfg.MinSupport = appConfig.Train.MinSupport
			cfg.TestFraction = appConfig.Train.TestFraction
			cfg.Model.MaxFeatures = appConfig.Train.MaxFeatures
			cfg.Model.Epochs = appConfig.Train.Epochs
			cfg.Model.Seed = appConfig.Train.Seed

			if !quiet {
				bar := cli.NewProgressBar(os.Stderr, cfg.Model.Epochs, "Training")
				cfg.Model.OnEpoch = cli.EpochProgress(bar)
			}

			fmt.Println(cli.FormatInfo("Training from " + cfg.InputPath))

			result, err := training.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("training failed: %w", err)
			}

			printDropped(result.Dropped)
			printEvaluation(result)
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Model saved to %s (%s)",
				result.ModelPath, result.Duration.Round(time.Millisecond))))
			return nil
		},
	}

	cmd.Flags().String("input", "", "labelled CSV (default: <data-dir>/dataset_small.csv)")
	cmd.Flags().Int("min-support", 0, "drop categories with fewer examples (default 20)")
	cmd.Flags().Int("epochs", 0, "training epochs (default 20)")
	cmd.Flags().Int("max-features", 0, "vocabulary size (default 20000)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")

	_ = viper.BindPFlag("train.input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("train.min_support", cmd.Flags().Lookup("min-support"))
	_ = viper.BindPFlag("train.epochs", cmd.Flags().Lookup("epochs"))
	_ = viper.BindPFlag("train.max_features", cmd.Flags().Lookup("max-features"))

	return cmd
}

func printDropped(dropped map[string]int) {
	if len(dropped) == 0 {
		return
	}
	names := make([]string, 0, len(dropped))
	for name := range dropped {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println(cli.FormatWarning(fmt.Sprintf("Dropped %d rare categories: %s",
		len(names), strings.Join(names, ", "))))
}

func printEvaluation(result *training.Result) {
	report := result.Report

	fmt.Println()
	fmt.Println(cli.FormatTitle(fmt.Sprintf("%s Evaluation on %d held-out rows (%d used for training)",
		cli.ChartIcon, result.TestRows, result.TrainRows)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
		cli.TableHeaderStyle.Render("class"),
		cli.TableHeaderStyle.Render("precision"),
		cli.TableHeaderStyle.Render("recall"),
		cli.TableHeaderStyle.Render("f1"),
		cli.TableHeaderStyle.Render("support"))

	row := func(m training.ClassMetrics) {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%d\t\n", m.Class, m.Precision, m.Recall, m.F1, m.Support)
	}
	for _, m := range report.Classes {
		row(m)
	}
	fmt.Fprintln(w, "\t\t\t\t\t")
	row(report.MacroAvg)
	row(report.WeightedAvg)
	_ = w.Flush()

	fmt.Printf("\n%s %.2f%%\n\n", cli.BoldStyle.Render("Accuracy:"), report.Accuracy*100)
}
