package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/weekend-duty/pkg/clients/sheetsclient"
	"github.com/jakechorley/weekend-duty/pkg/core/calendar"
)

// SchedulePublisher writes a published month somewhere people can read it
type SchedulePublisher interface {
	PublishSchedule(spreadsheetID string, schedule *sheetsclient.PublishedSchedule) error
}

// BuildPublishedSchedule lays out every weekend day of the month with its
// assignee and logged tickets, followed by a per-member summary
func (s *Scheduler) BuildPublishedSchedule(ctx context.Context, month string) (*sheetsclient.PublishedSchedule, error) {
	schedule, err := s.GetMonthlySchedule(ctx, month)
	if err != nil {
		return nil, err
	}

	dates, err := calendar.WeekendDates(month)
	if err != nil {
		return nil, err
	}

	rows := make([]sheetsclient.PublishedScheduleRow, 0, len(dates))
	for _, date := range dates {
		day, err := calendar.ParseDate(date)
		if err != nil {
			return nil, err
		}

		tickets, err := s.ListTickets(ctx, date)
		if err != nil {
			return nil, err
		}
		ticketIDs := make([]string, 0)
		for _, t := range tickets {
			ticketIDs = append(ticketIDs, t.TicketIDs...)
		}

		rows = append(rows, sheetsclient.PublishedScheduleRow{
			Date:       day.Format("Mon Jan 02 2006"),
			Day:        day.Weekday().String(),
			AssignedTo: schedule.Assignments[date],
			Tickets:    ticketIDs,
		})
	}

	summary := make([]sheetsclient.PublishedSummaryRow, 0, len(schedule.UserStatuses))
	for _, status := range schedule.UserStatuses {
		summary = append(summary, sheetsclient.PublishedSummaryRow{
			Member:         status.UserID,
			ConfirmedDays:  status.ConfirmedDays,
			ConflictedDays: status.ConflictedDays,
		})
	}

	return &sheetsclient.PublishedSchedule{
		Month:   month,
		Rows:    rows,
		Summary: summary,
	}, nil
}

// PublishSchedule builds the month and hands it to the publisher
func (s *Scheduler) PublishSchedule(ctx context.Context, publisher SchedulePublisher, spreadsheetID, month string) (*sheetsclient.PublishedSchedule, error) {
	published, err := s.BuildPublishedSchedule(ctx, month)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Publishing schedule",
		zap.String("month", month),
		zap.String("spreadsheet_id", spreadsheetID),
		zap.Int("days", len(published.Rows)))

	if err := publisher.PublishSchedule(spreadsheetID, published); err != nil {
		return nil, fmt.Errorf("failed to publish schedule: %w", err)
	}

	return published, nil
}
