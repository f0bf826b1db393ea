package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/timesheet/internal/service"
)

var (
	reportDBPath string
	reportFrom   string
	reportTo     string
)

// reportCmd represents the report command group
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reporting commands",
	Long: `Commands for printing aggregate reports from the database.

Examples:
  # Hours per project, all time
  timesheetctl report hours-by-project

  # Hours per user for a date range
  timesheetctl report hours-by-user --from 2026-01-01 --to 2026-01-31`,
}

var reportHoursByProjectCmd = &cobra.Command{
	Use:   "hours-by-project",
	Short: "Total logged hours per project",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDatabase(reportDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		from, to, err := parseReportRange()
		if err != nil {
			return err
		}

		rows, err := service.New(store).HoursByProject(context.Background(), from, to)
		if err != nil {
			return fmt.Errorf("hours by project: %w", err)
		}

		if GetOutput() == "json" {
			data, _ := json.MarshalIndent(rows, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		if len(rows) == 0 {
			fmt.Println("No time entries found.")
			return nil
		}

		fmt.Printf("\n%-30s  %-30s  %s\n", "CLIENT", "PROJECT", "HOURS")
		fmt.Println(strings.Repeat("-", 72))
		for _, row := range rows {
			fmt.Printf("%-30s  %-30s  %s\n", row.ClientName, row.ProjectName, row.TotalHours)
		}
		return nil
	},
}

var reportHoursByUserCmd = &cobra.Command{
	Use:   "hours-by-user",
	Short: "Total logged hours per user",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDatabase(reportDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		from, to, err := parseReportRange()
		if err != nil {
			return err
		}

		rows, err := service.New(store).HoursByUser(context.Background(), from, to)
		if err != nil {
			return fmt.Errorf("hours by user: %w", err)
		}

		if GetOutput() == "json" {
			data, _ := json.MarshalIndent(rows, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		if len(rows) == 0 {
			fmt.Println("No time entries found.")
			return nil
		}

		fmt.Printf("\n%-30s  %s\n", "USER", "HOURS")
		fmt.Println(strings.Repeat("-", 40))
		for _, row := range rows {
			fmt.Printf("%-30s  %s\n", row.Username, row.TotalHours)
		}
		return nil
	},
}

// parseReportRange parses the optional --from/--to flags.
func parseReportRange() (from, to *time.Time, err error) {
	if reportFrom != "" {
		d, err := time.Parse("2006-01-02", reportFrom)
		if err != nil {
			return nil, nil, fmt.Errorf("--from must be a YYYY-MM-DD date")
		}
		from = &d
	}
	if reportTo != "" {
		d, err := time.Parse("2006-01-02", reportTo)
		if err != nil {
			return nil, nil, fmt.Errorf("--to must be a YYYY-MM-DD date")
		}
		to = &d
	}
	return from, to, nil
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportHoursByProjectCmd)
	reportCmd.AddCommand(reportHoursByUserCmd)

	for _, cmd := range []*cobra.Command{reportHoursByProjectCmd, reportHoursByUserCmd} {
		cmd.Flags().StringVar(&reportDBPath, "db", defaultDBPath, "path to SQLite database file")
		cmd.Flags().StringVar(&reportFrom, "from", "", "start date (YYYY-MM-DD, inclusive)")
		cmd.Flags().StringVar(&reportTo, "to", "", "end date (YYYY-MM-DD, inclusive)")
	}
}
