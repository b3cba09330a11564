package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jakechorley/weekend-duty/pkg/core/calendar"
	"github.com/jakechorley/weekend-duty/pkg/core/model"
	"github.com/jakechorley/weekend-duty/pkg/core/services"
)

// printBookingResult prints the outcome of a booking request
func printBookingResult(w io.Writer, result *services.BookingResult) {
	b := result.Booking
	switch {
	case b.IsConfirmed:
		fmt.Fprintf(w, "\n✓ %s is on duty on %s\n", b.UserID, b.Date)
	case b.IsConflicted:
		fmt.Fprintf(w, "\n⚠️  Booking saved for %s on %s, but the day is taken by a higher priority member\n", b.UserID, b.Date)
	}

	if len(result.Conflicts) > 0 {
		fmt.Fprintf(w, "\nConflicts this month:\n")
		printConflicts(w, result.Conflicts)
	}
	fmt.Fprintln(w)
}

func printConflicts(w io.Writer, conflicts []model.ConflictResolution) {
	for _, c := range conflicts {
		fmt.Fprintf(w, "  %s  %s wins over %s\n", c.Date, c.Winner, strings.Join(c.Losers, ", "))
	}
}

// printSchedule prints every weekend day of the month with its assignee,
// followed by conflicts and per-member status
func printSchedule(w io.Writer, schedule *model.MonthlySchedule) error {
	dates, err := calendar.WeekendDates(schedule.Month)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nWeekend duty for %s\n\n", schedule.Month)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDAY\tASSIGNED TO")
	for _, date := range dates {
		day, err := calendar.ParseDate(date)
		if err != nil {
			return err
		}
		assignee := schedule.Assignments[date]
		if assignee == "" {
			assignee = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", date, day.Weekday(), assignee)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(schedule.Conflicts) > 0 {
		fmt.Fprintf(w, "\nConflicts:\n")
		printConflicts(w, schedule.Conflicts)
	}

	fmt.Fprintf(w, "\n")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MEMBER\tCONFIRMED\tCONFLICTED\tREMAINING")
	for _, s := range schedule.UserStatuses {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", s.UserID, s.ConfirmedDays, s.ConflictedDays, s.RemainingDays)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

func printMembers(w io.Writer, members []model.TeamMember) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRIORITY\tNAME\tCOLOR\tACTIVE")
	for _, m := range members {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\n", m.Priority, m.Name, m.Color, m.IsActive)
	}
	return tw.Flush()
}

func printTickets(w io.Writer, date string, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		fmt.Fprintf(w, "No tickets logged for %s\n", date)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTICKETS\tPRIORITY\tSTATUS\tBY\tNOTES")
	for _, t := range tickets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, strings.Join(t.TicketIDs, ","), t.Priority, t.Status, t.CreatedBy, t.Notes)
	}
	return tw.Flush()
}
