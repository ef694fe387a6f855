package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/fixit/internal/cli"
	"github.com/Veraticus/fixit/internal/common"
	"github.com/Veraticus/fixit/internal/intake"
	"github.com/Veraticus/fixit/internal/model"
	"github.com/Veraticus/fixit/internal/service"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Submit and triage citizen reports",
		Long:  `Submit new reports, list and inspect them, and move them through the triage workflow.`,
	}

	cmd.AddCommand(submitReportCmd())
	cmd.AddCommand(listReportsCmd())
	cmd.AddCommand(showReportCmd())
	cmd.AddCommand(statusReportCmd())
	cmd.AddCommand(historyReportCmd())
	cmd.AddCommand(statsReportCmd())

	return cmd
}

func submitReportCmd() *cobra.Command {
	var sub intake.Submission

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new report",
		Long:  `Create a report. It is classified and routed to a department immediately.`,
		Example: `  fixit report submit --by alice@example.com --title "Leak" \
    --description "Water leaking from the hydrant on 5th"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			svc, store, err := initIntake(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := svc.CreateReport(ctx, sub)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Report %s submitted", report.ID)))
			fmt.Printf("Routed to %s (%s)\n",
				cli.BoldStyle.Render(report.Department), report.Category)
			return nil
		},
	}

	cmd.Flags().StringVar(&sub.Title, "title", "", "short title of the problem")
	cmd.Flags().StringVar(&sub.Description, "description", "", "what is wrong and where")
	cmd.Flags().StringVar(&sub.PhotoURL, "photo", "", "path or URL of a photo")
	cmd.Flags().StringVar(&sub.SubmittedBy, "by", "", "submitter identifier")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("by")

	return cmd
}

func listReportsCmd() *cobra.Command {
	var (
		filter service.ReportFilter
		status string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if status != "" {
				parsed, err := model.ParseReportStatus(status)
				if err != nil {
					return common.NewUserError(err.Error(), common.ErrInvalidConfig)
				}
				filter.Status = parsed
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			reports, err := store.ListReports(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list reports: %w", err)
			}

			if len(reports) == 0 {
				fmt.Println(cli.InfoStyle.Render("No reports found. Use 'fixit report submit' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Created"),
				cli.TableHeaderStyle.Render("Status"),
				cli.TableHeaderStyle.Render("Department"),
				cli.TableHeaderStyle.Render("Title"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 36),
				strings.Repeat("-", 16),
				strings.Repeat("-", 11),
				strings.Repeat("-", 24),
				strings.Repeat("-", 30))

			for _, r := range reports {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					r.ID,
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					cli.FormatStatus(r.Status),
					r.Department,
					r.Title)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&filter.SubmittedBy, "by", "", "only reports from this submitter")
	cmd.Flags().StringVar(&status, "status", "", "only reports in this status")
	cmd.Flags().StringVar(&filter.Department, "department", "", "only reports routed to this department")
	cmd.Flags().IntVar(&filter.Limit, "limit", 50, "maximum number of reports (0 for all)")

	return cmd
}

func showReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			r, err := store.GetReport(ctx, args[0])
			if err != nil {
				return err
			}

			var b strings.Builder
			line := func(label, value string) {
				fmt.Fprintf(&b, "%s %s\n", cli.BoldStyle.Render(label), value)
			}
			line("ID:", r.ID)
			line("Status:", cli.FormatStatus(r.Status))
			line("Category:", r.Category)
			line("Department:", r.Department)
			line("Summary:", r.AISummary)
			line("Classified by:", cli.FormatTier(r.ClassifiedBy))
			line("Priority:", r.Priority)
			line("Submitted by:", r.SubmittedBy)
			line("Created:", r.CreatedAt.Local().Format(time.RFC1123))
			if r.PhotoURL != "" {
				line("Photo:", r.PhotoURL)
			}
			b.WriteString("\n" + r.Description)

			fmt.Println(cli.RenderBox(cli.ReportIcon+" "+r.Title, b.String()))
			return nil
		},
	}
}

func statusReportCmd() *cobra.Command {
	var changedBy string

	cmd := &cobra.Command{
		Use:   "status <id> <pending|in_progress|resolved|rejected>",
		Short: "Move a report to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, store, err := initIntake(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			r, err := svc.UpdateStatus(ctx, args[0], model.ReportStatus(args[1]), changedBy)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Report %s is now %s", r.ID, r.Status)))
			return nil
		},
	}

	cmd.Flags().StringVar(&changedBy, "by", "admin", "who is making the change")

	return cmd
}

func historyReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show the status history of a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, store, err := initIntake(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			history, err := svc.History(ctx, args[0])
			if err != nil {
				return err
			}

			if len(history) == 0 {
				fmt.Println(cli.InfoStyle.Render("No status changes recorded."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("When"),
				cli.TableHeaderStyle.Render("From"),
				cli.TableHeaderStyle.Render("To"),
				cli.TableHeaderStyle.Render("By"))
			for _, c := range history {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					c.ChangedAt.Local().Format("2006-01-02 15:04"),
					c.From, cli.FormatStatus(c.To), c.ChangedBy)
			}
			return nil
		},
	}
}

func statsReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count reports per department",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			svc, store, err := initIntake(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := svc.Stats(ctx)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatTitle(fmt.Sprintf("%s %d reports", cli.ChartIcon, stats.Total)))

			departments := make([]string, 0, len(stats.ByDepartment))
			for d := range stats.ByDepartment {
				departments = append(departments, d)
			}
			sort.Slice(departments, func(i, j int) bool {
				ci, cj := stats.ByDepartment[departments[i]], stats.ByDepartment[departments[j]]
				if ci != cj {
					return ci > cj
				}
				return departments[i] < departments[j]
			})

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()
			for _, d := range departments {
				fmt.Fprintf(w, "%s\t%d\n", d, stats.ByDepartment[d])
			}
			return nil
		},
	}
}
