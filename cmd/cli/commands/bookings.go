package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// BookCmd creates the book command
func BookCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "book <member> <date>",
		Short: "Book a weekend day (YYYY-MM-DD) for a team member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Scheduler.RequestBooking(app.Ctx, args[0], args[1])
			if err != nil {
				return err
			}

			printBookingResult(app.Out, result)
			return nil
		},
	}
}

// CancelCmd creates the cancel command
func CancelCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <member> <date>",
		Short: "Cancel a member's booking and re-resolve the month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Scheduler.CancelBooking(app.Ctx, args[0], args[1]); err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "\n✓ Booking for %s on %s cancelled\n\n", args[0], args[1])
			return nil
		},
	}
}

// MembersCmd creates the members command
func MembersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "members",
		Short: "List the team in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printMembers(app.Out, app.Scheduler.Directory().ListMembers())
		},
	}
}
