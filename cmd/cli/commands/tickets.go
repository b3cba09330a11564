package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/weekend-duty/pkg/core/services"
)

// TicketsCmd creates the tickets command and its log subcommand
func TicketsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets <date>",
		Short: "List the tickets logged against a duty day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tickets, err := app.Scheduler.ListTickets(app.Ctx, args[0])
			if err != nil {
				return err
			}
			return printTickets(app.Out, args[0], tickets)
		},
	}

	cmd.AddCommand(logTicketCmd(app))

	return cmd
}

func logTicketCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <member> <date> <ticket_id>...",
		Short: "Log tickets handled on an assigned duty day",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, _ := cmd.Flags().GetString("priority")
			status, _ := cmd.Flags().GetString("status")
			notes, _ := cmd.Flags().GetString("notes")

			ticket, err := app.Scheduler.CreateTicket(app.Ctx, args[0], services.TicketInput{
				Date:      args[1],
				TicketIDs: args[2:],
				Priority:  priority,
				Status:    status,
				Notes:     notes,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "\n✓ Logged %d ticket(s) on %s (id %s)\n\n", len(ticket.TicketIDs), ticket.Date, ticket.ID)
			return nil
		},
	}

	cmd.Flags().String("priority", "P3", "Priority: P1, P2, P3 or P4")
	cmd.Flags().String("status", "", "Status: open, in_progress, resolved or escalated (default open)")
	cmd.Flags().String("notes", "", "Free text notes")

	return cmd
}
