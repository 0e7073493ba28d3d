package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/models"
	"github.com/akyairhashvil/problemtracker/internal/staleness"
	"github.com/akyairhashvil/problemtracker/internal/transfer"
)

func (c *cli) listCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the register",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			p, err := a.DB.ListPage(cmd.Context(), page, a.Config.PageSize)
			if err != nil {
				return err
			}
			stats, err := a.Summary(cmd.Context())
			if err != nil {
				return err
			}
			writePage(cmd.OutOrStdout(), p, stats)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func writePage(w io.Writer, p models.Page, stats models.Stats) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Number", "Entity", "Problem", "Added", "Completed", "Days", "Reporter", "Phone", "Status")
	for _, pr := range p.Items {
		days := "-"
		if n, ok := pr.DaysToResolve(); ok {
			days = strconv.Itoa(n)
		}
		t.Row(
			strconv.FormatInt(pr.ID, 10),
			pr.ProblemNumber,
			pr.Entity,
			pr.Description,
			pr.AddedDate.Format(config.LocaleDateLayout, "-"),
			pr.CompletedDate.Format(config.LocaleDateLayout, "-"),
			days,
			pr.Reporter,
			pr.Phone,
			pr.Status.Code(),
		)
	}
	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "page %d of %d | total %d | new %d | in progress %d | completed %d\n",
		p.Page, p.TotalPages, stats.Total, stats.New, stats.InProgress, stats.Completed)
}

func (c *cli) addCmd() *cobra.Command {
	var in models.ProblemInput
	var status string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := models.ParseStatus(status)
			if err != nil {
				return err
			}
			in.Status = s
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			id, err := a.DB.InsertProblem(cmd.Context(), in)
			if err != nil {
				return err
			}
			p, err := a.DB.GetProblem(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (id %d)\n", p.ProblemNumber, id)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.ProblemNumber, "number", "", "problem number (generated when empty)")
	f.StringVar(&in.Entity, "entity", "", "reporting entity")
	f.StringVar(&in.Description, "description", "", "problem description")
	f.StringVar(&in.Reporter, "reporter", "", "reporter name")
	f.StringVar(&in.Phone, "phone", "", "reporter phone")
	f.StringVar(&status, "status", "NEW", "NEW, IN_PROGRESS or COMPLETED")
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func (c *cli) advanceCmd() *cobra.Command {
	var notify bool
	cmd := &cobra.Command{
		Use:   "advance ID",
		Short: "Move a problem to its next status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			res, err := a.Engine.Advance(cmd.Context(), id, notify)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d: %s -> %s\n", res.ID, res.From.Code(), res.To.Code())
			if res.Link != "" {
				fmt.Fprintln(out, res.Link)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&notify, "notify", false, "compose the reporter message when work starts")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.DB.DeleteProblem(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the register",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "csv",
		Short: "Write the CSV report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			path, err := a.ExportCSV(cmd.Context())
			if errors.Is(err, transfer.ErrNothingToExport) {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to export")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	var encrypt bool
	backup := &cobra.Command{
		Use:   "backup",
		Short: "Write a database backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var pass string
			if encrypt {
				key, err := c.backupKey("Backup passphrase: ")
				if err != nil {
					return err
				}
				pass = key
			}
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			path, err := a.ExportBackup(cmd.Context(), pass)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	backup.Flags().BoolVar(&encrypt, "encrypt", false, "seal the backup with a passphrase")
	cmd.AddCommand(backup)
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a .csv, .xlsx or .xls file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			res, err := a.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d (inserted %d, updated %d)\n", res.Total(), res.Inserted, res.Updated)
			return nil
		},
	}
}

func (c *cli) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore FILE",
		Short: "Replace the register with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pass string
			if strings.HasSuffix(args[0], config.EncryptedBackupExt) {
				key, err := c.backupKey("Backup passphrase: ")
				if err != nil {
					return err
				}
				pass = key
			}
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.RestoreFile(cmd.Context(), args[0], pass); err != nil {
				return err
			}
			stats, err := a.Summary(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %d problems\n", stats.Total)
			return nil
		},
	}
}

func (c *cli) staleCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "stale",
		Short: "List open problems older than a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()
			if !watch {
				report, err := a.StaleReport(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, report.String())
				return nil
			}
			err = a.Checker.Run(cmd.Context(), a.Config.Staleness.Interval, func(r staleness.Report) {
				fmt.Fprintf(out, "[%s]\n%s\n", r.CheckedAt.Format("15:04:05"), r.String())
			})
			if errors.Is(err, cmd.Context().Err()) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep checking on the configured interval")
	return cmd
}

func (c *cli) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Write the PDF report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			path, err := a.WriteReport(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
