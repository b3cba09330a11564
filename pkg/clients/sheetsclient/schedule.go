package sheetsclient

import (
	"fmt"
	"strings"
)

// PublishedScheduleRow is one weekend day of the published month
type PublishedScheduleRow struct {
	Date       string   // Format: "Sat Jun 07 2025"
	Day        string   // Saturday or Sunday
	AssignedTo string   // Empty when nobody is on duty
	Tickets    []string // Ticket IDs logged against the day
}

// PublishedSummaryRow is one member's line in the summary block
type PublishedSummaryRow struct {
	Member         string
	ConfirmedDays  int
	ConflictedDays int
}

// PublishedSchedule represents the complete published month
type PublishedSchedule struct {
	Month   string // Format: "2006-01"
	Rows    []PublishedScheduleRow
	Summary []PublishedSummaryRow
}

// TabTitle returns the title of the tab a month is published to
func TabTitle(month string) string {
	return "Weekend Duty " + month
}

// PublishSchedule writes a month to its own tab, creating the tab on first
// publish and replacing its contents on later ones
func (c *Client) PublishSchedule(spreadsheetID string, schedule *PublishedSchedule) error {
	title := TabTitle(schedule.Month)

	existing, err := c.findSheet(spreadsheetID, title)
	if err != nil {
		return err
	}

	if existing == nil {
		if _, err := c.CreateSheet(spreadsheetID, title); err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
	} else if err := c.ClearSheet(spreadsheetID, title); err != nil {
		return err
	}

	if err := c.WriteValues(spreadsheetID, fmt.Sprintf("'%s'!A1", title), ScheduleValues(schedule)); err != nil {
		return fmt.Errorf("failed to write schedule to tab: %w", err)
	}
	return nil
}

// ScheduleValues lays a month out as sheet rows: a title row, a gap, the
// day table and then the summary block
func ScheduleValues(schedule *PublishedSchedule) [][]interface{} {
	values := [][]interface{}{
		{TabTitle(schedule.Month)},
		{},
		{"Date", "Day", "Assigned To", "Tickets"},
	}

	for _, row := range schedule.Rows {
		values = append(values, []interface{}{
			row.Date,
			row.Day,
			row.AssignedTo,
			strings.Join(row.Tickets, ", "),
		})
	}

	values = append(values,
		[]interface{}{},
		[]interface{}{"Member", "Confirmed", "Conflicted"},
	)
	for _, s := range schedule.Summary {
		values = append(values, []interface{}{s.Member, s.ConfirmedDays, s.ConflictedDays})
	}

	return values
}
