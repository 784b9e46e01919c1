package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/micromata/projectforge-sub017/internal/cli/formatter"
	"github.com/micromata/projectforge-sub017/internal/domain"
	"github.com/spf13/cobra"
)

func newHolidayCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holiday",
		Short: "Manage the holidays of the working-day calendar",
	}

	cmd.AddCommand(
		newHolidayAddCmd(app),
		newHolidayListCmd(app),
		newHolidayRemoveCmd(app),
	)

	return cmd
}

func newHolidayAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add DATE [NAME...]",
		Short: "Mark a date as a non-working day",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := domain.ParseDate(args[0])
			if err != nil {
				return err
			}
			name := strings.Join(args[1:], " ")
			ctx := context.Background()
			cal, err := app.Holidays.Calendar(ctx)
			if err != nil {
				return err
			}
			previous, replaced := cal.HolidayName(date)
			if err := app.Holidays.Add(ctx, date, name); err != nil {
				return err
			}
			if replaced {
				fmt.Fprintf(cmd.OutOrStdout(), "Replaced holiday %s %s (was %q)\n", args[0], name, previous)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added holiday %s %s\n", args[0], name)
			return nil
		},
	}
}

func newHolidayListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored and configured holidays",
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := app.Holidays.Calendar(context.Background())
			if err != nil {
				return err
			}
			holidays := cal.Holidays()
			if len(holidays) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No holidays configured.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHolidayList(holidays))
			return nil
		},
	}
}

func newHolidayRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove DATE",
		Short: "Remove a stored holiday",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := domain.ParseDate(args[0])
			if err != nil {
				return err
			}
			if err := app.Holidays.Remove(context.Background(), date); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed holiday %s\n", args[0])
			return nil
		},
	}
}
