// Package main is the entry point for the timesheetctl CLI tool.
package main

import (
	"os"

	"github.com/good-yellow-bee/timesheet/cmd/timesheetctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
