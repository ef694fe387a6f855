package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/fixit/internal/cli"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	var noModel bool

	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Classify a complaint description without storing it",
		Long: `Run a description through the classification cascade and show the
category, department and summary a report would receive.`,
		Example: `  fixit classify "There's a huge pothole on Main Street"
  fixit classify --no-model "loud music next door"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			engine, err := initEngine(!noModel)
			if err != nil {
				return err
			}

			result := engine.Classify(strings.Join(args, " "))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\n", cli.BoldStyle.Render("Category:"), result.Category)
			fmt.Fprintf(w, "%s\t%s\n", cli.BoldStyle.Render("Department:"), result.Department)
			fmt.Fprintf(w, "%s\t%s\n", cli.BoldStyle.Render("Summary:"), result.Summary)
			fmt.Fprintf(w, "%s\t%s\n", cli.BoldStyle.Render("Tier:"), cli.FormatTier(result.Tier))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noModel, "no-model", false, "skip the trained model tier")

	return cmd
}
