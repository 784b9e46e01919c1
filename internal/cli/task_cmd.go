package cli

import (
	"context"
	"fmt"

	"github.com/micromata/projectforge-sub017/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Import and inspect the task hierarchy",
	}

	cmd.AddCommand(
		newTaskImportCmd(app),
		newTaskListCmd(app),
		newTaskTreeCmd(app),
	)

	return cmd
}

func newTaskImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import tasks and holidays from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Tasks.Import(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks and %d holidays\n", result.TaskCount, result.HolidayCount)
			for _, id := range result.RootIDs {
				fmt.Fprintf(cmd.OutOrStdout(), "  root task %s\n", formatter.Bold(fmt.Sprintf("#%d", id)))
			}
			return nil
		},
	}
}

func newTaskListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List imported tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app.Tasks.List(context.Background())
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskList(tasks))
			return nil
		},
	}
}

func newTaskTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree ROOT",
		Short: "Show a task subtree with calculated dates and no chart overrides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rootID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			chart, err := app.Tasks.Tree(context.Background(), rootID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatChartTree(chart.Root.Title, chart))
			return nil
		},
	}
}
