package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/ahd-playgrounds/google-task-cli/internal/tasks"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show your task lists and their tasks",
	Long: `Show every Google Tasks list and its tasks.

The tasks of all lists are fetched in parallel and printed grouped per list.

Example:
  google-task-cli tasks`,
	RunE: runTasks,
}

func runTasks(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	authManager, err := newAuthManager(ctx)
	if err != nil {
		return err
	}
	if !authManager.HasValidToken() {
		return fmt.Errorf("authentication required. Run 'google-task-cli auth' first")
	}

	httpClient, err := authManager.Client(ctx)
	if err != nil {
		return fmt.Errorf("failed to get authenticated client: %w", err)
	}

	service, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return err
	}

	results, err := service.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch tasks: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No task lists found.")
		return nil
	}

	total := 0
	for _, result := range results {
		fmt.Printf("=== %s ===\n", result.List.Title)
		if len(result.Tasks) == 0 {
			fmt.Println("  (no tasks)")
		}
		for _, task := range result.Tasks {
			marker := "[ ]"
			if task.Status == "completed" {
				marker = "[x]"
			}
			fmt.Printf("  %s %s\n", marker, task.Title)
			if task.Due != "" {
				fmt.Printf("      due: %s\n", task.Due)
			}
			if task.Notes != "" {
				fmt.Printf("      %s\n", task.Notes)
			}
		}
		fmt.Println()
		total += len(result.Tasks)
	}
	fmt.Printf("Total: %d task(s) across %d list(s)\n", total, len(results))

	return nil
}
