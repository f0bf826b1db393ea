// Package cmd contains the CLI commands for timesheetctl.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Used for flags
	verbose bool
	output  string
)

// defaultDBPath is the default database path, can be overridden via
// TIMESHEET_DB_PATH env var.
var defaultDBPath = "data/timesheet.db"

func init() {
	if envPath := os.Getenv("TIMESHEET_DB_PATH"); envPath != "" {
		defaultDBPath = envPath
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "timesheetctl",
	Short: "Timesheet - administrative CLI",
	Long: `timesheetctl manages a timesheet server installation.

The commands operate directly on the SQLite database file and are
intended for system administrators working outside of the REST API.

Examples:
  # List all users
  timesheetctl user list

  # Create an admin user
  timesheetctl user create --username admin --email admin@example.com --role admin

  # Seed a demo client, project, and task
  timesheetctl seed`,
	Run: func(cmd *cobra.Command, args []string) {
		// Show help by default
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json, plain)")
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// GetOutput returns the output format.
func GetOutput() string {
	return output
}

// PrintError prints an error message and exits if fatal is true.
func PrintError(msg string, fatal bool) {
	fmt.Fprintln(os.Stderr, "Error:", msg)
	if fatal {
		os.Exit(1)
	}
}

// PrintVerbose prints a message only if verbose mode is enabled.
func PrintVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}
