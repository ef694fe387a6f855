package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/fixit/internal/cli"
	"github.com/spf13/cobra"
)

func departmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "departments",
		Short: "Inspect the department routing table",
	}

	cmd.AddCommand(listDepartmentsCmd())
	cmd.AddCommand(resolveDepartmentCmd())

	return cmd
}

func listDepartmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories and the department each routes to",
		RunE: func(_ *cobra.Command, _ []string) error {
			lookup, err := initLookup()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\n",
				cli.TableHeaderStyle.Render("Category"),
				cli.TableHeaderStyle.Render("Department"))
			fmt.Fprintf(w, "%s\t%s\n",
				strings.Repeat("-", 24),
				strings.Repeat("-", 24))

			for _, category := range lookup.Categories() {
				fmt.Fprintf(w, "%s\t%s\n", category, lookup.Resolve(category))
			}
			fmt.Fprintf(w, "%s\t%s\n",
				cli.SubtleStyle.Render("(anything else)"),
				lookup.DefaultDepartment())

			return nil
		},
	}
}

func resolveDepartmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <category>",
		Short: "Show which department a category routes to",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			lookup, err := initLookup()
			if err != nil {
				return err
			}
			fmt.Println(lookup.Resolve(args[0]))
			return nil
		},
	}
}
