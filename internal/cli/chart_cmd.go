package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/micromata/projectforge-sub017/internal/cli/formatter"
	"github.com/micromata/projectforge-sub017/internal/service"
	"github.com/spf13/cobra"
)

func newChartCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Create, inspect and edit Gantt charts",
	}

	cmd.AddCommand(
		newChartCreateCmd(app),
		newChartListCmd(app),
		newChartShowCmd(app),
		newChartSetCmd(app),
		newChartAddNodeCmd(app),
		newChartRemoveNodeCmd(app),
		newChartXMLCmd(app),
		newChartDeleteCmd(app),
	)

	return cmd
}

// printChart writes the resolved tree to out and any XML warnings to errOut.
func printChart(out, errOut io.Writer, open *service.OpenChart) {
	fmt.Fprint(errOut, formatter.FormatWarnings(open.Warnings))
	title := fmt.Sprintf("%s (%s)", open.Entity.Title, open.Entity.DisplayID())
	fmt.Fprint(out, formatter.FormatChartTree(title, open.Chart))
}

func newChartCreateCmd(app *App) *cobra.Command {
	var title string
	var rootID int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a chart over a task subtree",
		RunE: func(cmd *cobra.Command, args []string) error {
			chart, err := app.Charts.Create(context.Background(), title, rootID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created chart %s [%s]\n", chart.Title, chart.ShortID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&rootID, "root", 0, "Root task ID")
	cmd.Flags().StringVar(&title, "title", "", "Chart title (defaults to the root task title)")
	_ = cmd.MarkFlagRequired("root")

	return cmd
}

func newChartListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			charts, err := app.Charts.List(context.Background())
			if err != nil {
				return err
			}
			if len(charts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No charts found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatChartList(charts))
			return nil
		},
	}
}

func newChartShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show CHART",
		Short: "Show a chart with calculated dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			open, err := app.Charts.Open(context.Background(), args[0])
			if err != nil {
				return err
			}
			printChart(cmd.OutOrStdout(), cmd.ErrOrStderr(), open)
			return nil
		},
	}
}

func newChartSetCmd(app *App) *cobra.Command {
	var (
		nodeID                              int64
		title                               string
		duration                            float64
		start, end                          dateFlag
		predecessor                         int64
		offset                              int
		relation                            relationFlag
		clearDuration, clearStart, clearEnd bool
		clearPredecessor                    bool
	)

	cmd := &cobra.Command{
		Use:   "set CHART",
		Short: "Override scheduling fields of one chart node",
		Long: `Override scheduling fields of one chart node. Overrides are stored in the
chart only; the task hierarchy is never changed. Ad-hoc nodes have negative
ids, e.g. --node -1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			req := service.EditRequest{
				ClearDuration:    clearDuration,
				ClearStartDate:   clearStart,
				ClearEndDate:     clearEnd,
				ClearPredecessor: clearPredecessor,
				StartDate:        start.value,
				EndDate:          end.value,
				RelationType:     relation.value,
			}
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("duration") {
				req.Duration = &duration
			}
			if flags.Changed("predecessor") {
				req.PredecessorID = &predecessor
			}
			if flags.Changed("offset") {
				req.Offset = &offset
			}

			open, err := app.Charts.Edit(context.Background(), args[0], nodeID, req)
			if err != nil {
				return err
			}
			printChart(cmd.OutOrStdout(), cmd.ErrOrStderr(), open)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Int64Var(&nodeID, "node", 0, "Node ID to edit")
	flags.StringVar(&title, "title", "", "Title shown in this chart")
	flags.Float64Var(&duration, "duration", 0, "Duration in working days")
	flags.Var(&start, "start", "Fixed start date (YYYY-MM-DD)")
	flags.Var(&end, "end", "Fixed end date (YYYY-MM-DD)")
	flags.Int64Var(&predecessor, "predecessor", 0, "Predecessor task or node ID")
	flags.IntVar(&offset, "offset", 0, "Predecessor offset in working days")
	flags.Var(&relation, "relation", "Relation type (finish-start|start-start|finish-finish|start-finish)")
	flags.BoolVar(&clearDuration, "clear-duration", false, "Clear the duration")
	flags.BoolVar(&clearStart, "clear-start", false, "Clear the fixed start date")
	flags.BoolVar(&clearEnd, "clear-end", false, "Clear the fixed end date")
	flags.BoolVar(&clearPredecessor, "clear-predecessor", false, "Remove the predecessor link")
	_ = cmd.MarkFlagRequired("node")
	cmd.MarkFlagsMutuallyExclusive("duration", "clear-duration")
	cmd.MarkFlagsMutuallyExclusive("start", "clear-start")
	cmd.MarkFlagsMutuallyExclusive("end", "clear-end")
	cmd.MarkFlagsMutuallyExclusive("predecessor", "clear-predecessor")

	return cmd
}

func newChartAddNodeCmd(app *App) *cobra.Command {
	var parentID int64
	var title string
	var duration float64

	cmd := &cobra.Command{
		Use:   "add-node CHART",
		Short: "Add an ad-hoc node that exists only in this chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var d *float64
			if cmd.Flags().Changed("duration") {
				d = &duration
			}
			_, node, err := app.Charts.AddNode(context.Background(), args[0], parentID, title, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added node %s (#%d)\n", node.Title, node.ID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&parentID, "parent", 0, "Parent node ID")
	cmd.Flags().StringVar(&title, "title", "", "Node title")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Duration in working days")
	_ = cmd.MarkFlagRequired("parent")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newChartRemoveNodeCmd(app *App) *cobra.Command {
	var nodeID int64

	cmd := &cobra.Command{
		Use:   "remove-node CHART",
		Short: "Remove an ad-hoc node and its children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.Charts.RemoveNode(context.Background(), args[0], nodeID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed node #%d\n", nodeID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&nodeID, "node", 0, "Ad-hoc node ID (negative)")
	_ = cmd.MarkFlagRequired("node")

	return cmd
}

func newChartXMLCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "xml CHART",
		Short: "Print the stored override XML of a chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := app.Charts.XML(context.Background(), args[0])
			if err != nil {
				return err
			}
			if blob == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.Dim("No overrides stored."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), blob)
			return nil
		},
	}
}

func newChartDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete CHART",
		Short: "Delete a chart and its overrides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !app.interactive() {
					return fmt.Errorf("refusing to delete chart %s without --yes", args[0])
				}
				ok, err := app.confirm(fmt.Sprintf("Delete chart %s?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}
			if err := app.Charts.Delete(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted chart %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
