package main

import (
	"fmt"

	"github.com/Veraticus/fixit/internal/cli"
	"github.com/Veraticus/fixit/internal/dataset"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reduceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Reduce a raw 311 export to a training-sized CSV",
		Long: `Find the description, complaint type and agency columns of a raw 311
export, drop incomplete rows, and keep a fixed-seed random sample.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := appConfig.Reduce

			in, err := dataset.ReadFile(cfg.Input)
			if err != nil {
				return err
			}

			out, stats, err := dataset.Reduce(in, dataset.ReduceOptions{
				SampleSize: cfg.SampleSize,
				Seed:       cfg.Seed,
			})
			if err != nil {
				return err
			}

			if err := dataset.WriteFile(cfg.Output, out); err != nil {
				return err
			}

			fmt.Println(cli.FormatInfo(fmt.Sprintf("Columns: description=%q category=%q agency=%q",
				stats.DescriptionColumn, stats.CategoryColumn, stats.AgencyColumn)))
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Wrote %d of %d rows (%d complete) to %s",
				stats.OutputRows, stats.InputRows, stats.CleanRows, cfg.Output)))
			return nil
		},
	}

	cmd.Flags().String("input", "", "raw export CSV (default: <data-dir>/dataset.csv)")
	cmd.Flags().String("output", "", "reduced CSV (default: <data-dir>/dataset_small.csv)")
	cmd.Flags().Int("sample-size", 0, "rows to keep (default 20000)")

	_ = viper.BindPFlag("reduce.input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("reduce.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("reduce.sample_size", cmd.Flags().Lookup("sample-size"))

	return cmd
}
