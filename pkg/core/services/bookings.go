package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/weekend-duty/pkg/core/calendar"
	"github.com/jakechorley/weekend-duty/pkg/core/model"
	"github.com/jakechorley/weekend-duty/pkg/core/resolver"
	"github.com/jakechorley/weekend-duty/pkg/db"
)

// BookingResult represents the outcome of an accepted booking request
type BookingResult struct {
	Success   bool                       `json:"success"`
	Booking   *model.Booking             `json:"booking,omitempty"`
	Conflicts []model.ConflictResolution `json:"conflicts"`
}

// RequestBooking books a weekend day for a member and re-resolves the month.
// The request is rejected, leaving the ledger untouched, when the date is not
// a bookable weekend day, lies in the past, the member already holds the
// monthly maximum or already holds that date.
func (s *Scheduler) RequestBooking(ctx context.Context, userID, date string) (*BookingResult, error) {
	if _, ok := s.directory.FindByName(userID); !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownMember, userID)
	}

	day, err := calendar.ParseDate(date)
	if err != nil {
		return nil, err
	}
	if !calendar.IsWeekend(day) {
		return nil, fmt.Errorf("%w: %s is a %s", model.ErrInvalidDateKind, date, day.Weekday())
	}
	if s.calendar.IsBlackedOut(day) {
		return nil, fmt.Errorf("%w: %s is blacked out", model.ErrInvalidDateKind, date)
	}
	if today := s.calendar.Today(s.now()); date < today {
		return nil, fmt.Errorf("%w: %s is before %s", model.ErrPastDateBooking, date, today)
	}

	month := calendar.MonthOf(date)
	s.logger.Info("Processing booking request",
		zap.String("user", userID),
		zap.String("date", date),
		zap.String("month", month))

	booking, resolution, err := s.insertAndResolve(ctx, userID, date, month)
	if err != nil {
		s.logger.Info("Booking request rejected",
			zap.String("user", userID),
			zap.String("date", date),
			zap.Error(err))
		return nil, err
	}

	for _, b := range resolution.Bookings {
		if b.ID == booking.ID {
			booking = b
			break
		}
	}

	s.logger.Info("Booking accepted",
		zap.String("booking_id", booking.ID),
		zap.String("user", userID),
		zap.String("date", date),
		zap.Bool("confirmed", booking.IsConfirmed),
		zap.Int("conflicts", len(resolution.Conflicts)))

	s.notifyLosers(ctx, userID, date, resolution.Conflicts)

	return &BookingResult{
		Success:   true,
		Booking:   &booking,
		Conflicts: resolution.Conflicts,
	}, nil
}

// insertAndResolve runs the limit and duplicate checks, the insert and the
// month's re-resolution under the month lock
func (s *Scheduler) insertAndResolve(ctx context.Context, userID, date, month string) (model.Booking, resolver.Resolution, error) {
	unlock := s.locks.lock(month)
	defer unlock()

	var booking model.Booking
	var resolution resolver.Resolution
	err := s.database.WithinMonth(ctx, month, func(tx db.LedgerWriter) error {
		existing, err := tx.GetUserBookings(ctx, userID, month)
		if err != nil {
			return fmt.Errorf("failed to fetch user bookings: %w", err)
		}
		if len(existing) >= model.MaxBookingsPerMonth {
			return fmt.Errorf("%w (%s)", model.ErrBookingLimitExceeded, month)
		}
		for _, b := range existing {
			if b.Date == date {
				return fmt.Errorf("%w: %s", model.ErrDuplicateBooking, date)
			}
		}

		booking = model.Booking{
			UserID: userID,
			Date:   date,
			Month:  month,
		}
		if err := tx.InsertBooking(ctx, &booking); err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}

		resolution, err = s.applyResolution(ctx, tx, month)
		return err
	})
	return booking, resolution, err
}

// CancelBooking removes a member's booking for a date and re-resolves the month
func (s *Scheduler) CancelBooking(ctx context.Context, userID, date string) error {
	if _, err := calendar.ParseDate(date); err != nil {
		return err
	}
	month := calendar.MonthOf(date)

	unlock := s.locks.lock(month)
	defer unlock()

	err := s.database.WithinMonth(ctx, month, func(tx db.LedgerWriter) error {
		existing, err := tx.GetUserBookings(ctx, userID, month)
		if err != nil {
			return fmt.Errorf("failed to fetch user bookings: %w", err)
		}

		var target *model.Booking
		for i := range existing {
			if existing[i].Date == date {
				target = &existing[i]
				break
			}
		}
		if target == nil {
			return fmt.Errorf("%w: %s on %s", model.ErrBookingNotFound, userID, date)
		}

		if err := tx.DeleteBooking(ctx, target.ID); err != nil {
			return err
		}
		if target.IsConfirmed {
			if err := tx.DeleteFinalScheduleEntry(ctx, date); err != nil {
				return err
			}
		}

		_, err = s.applyResolution(ctx, tx, month)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("Booking cancelled",
		zap.String("user", userID),
		zap.String("date", date))
	return nil
}

// ListBookings returns every booking of the month
func (s *Scheduler) ListBookings(ctx context.Context, month string) ([]model.Booking, error) {
	if _, err := calendar.ParseMonth(month); err != nil {
		return nil, err
	}
	bookings, err := s.database.GetBookings(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	return bookings, nil
}

// ListUserBookings returns one member's bookings for the month
func (s *Scheduler) ListUserBookings(ctx context.Context, userID, month string) ([]model.Booking, error) {
	if _, err := calendar.ParseMonth(month); err != nil {
		return nil, err
	}
	bookings, err := s.database.GetUserBookings(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user bookings: %w", err)
	}
	return bookings, nil
}

// ResolveMonth re-runs conflict resolution for a month and rewrites its final schedule
func (s *Scheduler) ResolveMonth(ctx context.Context, month string) ([]model.ConflictResolution, error) {
	if _, err := calendar.ParseMonth(month); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(month)
	defer unlock()

	var resolution resolver.Resolution
	err := s.database.WithinMonth(ctx, month, func(tx db.LedgerWriter) error {
		var err error
		resolution, err = s.applyResolution(ctx, tx, month)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resolution.Conflicts, nil
}

// applyResolution resolves the whole month from the current ledger, writes
// back every changed booking flag and replaces the month's final schedule
func (s *Scheduler) applyResolution(ctx context.Context, tx db.LedgerWriter, month string) (resolver.Resolution, error) {
	bookings, err := tx.GetBookings(ctx, month)
	if err != nil {
		return resolver.Resolution{}, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	resolution := resolver.Resolve(month, bookings, s.directory.Priorities())

	changed := resolution.ChangedBookings(bookings)
	for _, b := range changed {
		if err := tx.UpdateBookingStatus(ctx, b.ID, b.IsConfirmed, b.IsConflicted); err != nil {
			return resolver.Resolution{}, err
		}
	}

	if err := tx.ReplaceFinalSchedule(ctx, month, resolution.Entries); err != nil {
		return resolver.Resolution{}, err
	}

	s.logger.Debug("Month resolved",
		zap.String("month", month),
		zap.Int("bookings", len(bookings)),
		zap.Int("changed", len(changed)),
		zap.Int("assigned_dates", len(resolution.Entries)),
		zap.Int("conflicts", len(resolution.Conflicts)))

	return resolution, nil
}
