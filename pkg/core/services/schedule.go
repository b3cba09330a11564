package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/weekend-duty/pkg/core/calendar"
	"github.com/jakechorley/weekend-duty/pkg/core/model"
	"github.com/jakechorley/weekend-duty/pkg/core/resolver"
)

// GetMonthlySchedule returns the assignments, conflicts and per-member
// status of a month. All three come from one resolver pass over the
// current bookings, so they always agree with each other. It never writes
// to the store; a stored projection that has drifted from that pass (for
// example after priorities change in config) is logged and is corrected
// by the next mutation or by ResolveMonth.
func (s *Scheduler) GetMonthlySchedule(ctx context.Context, month string) (*model.MonthlySchedule, error) {
	if _, err := calendar.ParseMonth(month); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(month)
	defer unlock()

	bookings, err := s.database.GetBookings(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	entries, err := s.database.GetFinalSchedule(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch final schedule: %w", err)
	}

	resolution := resolver.Resolve(month, bookings, s.directory.Priorities())
	assignments := resolution.Assignments()

	if stale := len(resolution.ChangedBookings(bookings)); stale > 0 || !sameAssignments(assignments, entries) {
		s.logger.Warn("Stored schedule is out of date with the team priorities",
			zap.String("month", month),
			zap.Int("stale_bookings", stale))
	}

	return &model.MonthlySchedule{
		Month:        month,
		Assignments:  assignments,
		Conflicts:    resolution.Conflicts,
		UserStatuses: s.userStatuses(resolution.Bookings),
	}, nil
}

func sameAssignments(assignments map[string]string, entries []model.FinalScheduleEntry) bool {
	if len(assignments) != len(entries) {
		return false
	}
	for _, e := range entries {
		if assignments[e.Date] != e.AssignedTo {
			return false
		}
	}
	return true
}

// ExportSchedule returns a snapshot of the month together with the team
func (s *Scheduler) ExportSchedule(ctx context.Context, month string) (*model.ScheduleExport, error) {
	schedule, err := s.GetMonthlySchedule(ctx, month)
	if err != nil {
		return nil, err
	}

	return &model.ScheduleExport{
		Month:        schedule.Month,
		TeamMembers:  s.directory.ListMembers(),
		Schedule:     schedule.Assignments,
		Conflicts:    schedule.Conflicts,
		UserStatuses: schedule.UserStatuses,
		ExportedAt:   s.now().UTC().Format(time.RFC3339),
	}, nil
}

// userStatuses builds one status per team member, in priority order
func (s *Scheduler) userStatuses(bookings []model.Booking) []model.UserBookingStatus {
	members := s.directory.ListMembers()
	statuses := make([]model.UserBookingStatus, 0, len(members))

	for _, member := range members {
		status := model.UserBookingStatus{
			UserID:   member.Name,
			Bookings: make([]model.Booking, 0),
		}
		for _, b := range bookings {
			if b.UserID != member.Name {
				continue
			}
			status.Bookings = append(status.Bookings, b)
			if b.IsConfirmed {
				status.ConfirmedDays++
			}
			if b.IsConflicted {
				status.ConflictedDays++
			}
		}
		status.RemainingDays = max(0, model.MaxBookingsPerMonth-status.ConfirmedDays)
		statuses = append(statuses, status)
	}

	return statuses
}
