package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/timesheet/internal/service"
)

var seedDBPath string

// seedCmd creates a demo client, project, and task for a fresh install.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo data",
	Long: `Create a demo client, project, and task in an empty database.

The first user in the database is added as a project member and set as
the task assignee, so time can be logged immediately.

Example:
  timesheetctl seed --db data/timesheet.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDatabase(seedDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		svc := service.New(store)

		userList, err := store.Users().List(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		if len(userList) == 0 {
			return fmt.Errorf("no users in database; create one with 'timesheetctl user create' first")
		}
		owner := userList[0]

		client, err := svc.CreateClient(ctx, service.CreateClientInput{
			Name:         "ACME Corp",
			ContactEmail: "contact@acme.example",
			Note:         "Demo client created by timesheetctl seed",
		})
		if err != nil {
			return fmt.Errorf("create client: %w", err)
		}

		project, err := svc.CreateProject(ctx, service.CreateProjectInput{
			ClientID:    client.ID,
			Name:        "Website",
			Description: "Demo project",
			MemberIDs:   []string{owner.ID},
		})
		if err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		task, err := svc.CreateTask(ctx, service.CreateTaskInput{
			ProjectID:   project.ID,
			Title:       "Initial setup",
			Description: "Demo task",
			AssigneeID:  owner.ID,
		})
		if err != nil {
			return fmt.Errorf("create task: %w", err)
		}

		fmt.Printf("\nDemo data created:\n")
		fmt.Printf("  Client:  %s (%s)\n", client.Name, client.ID)
		fmt.Printf("  Project: %s (%s)\n", project.Name, project.ID)
		fmt.Printf("  Task:    %s (%s)\n", task.Title, task.ID)
		fmt.Printf("  Member:  %s\n", owner.Username)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&seedDBPath, "db", defaultDBPath, "path to SQLite database file")
}
