package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
	"github.com/jakechorley/weekend-duty/pkg/db"
)

const (
	selectBookingsQuery = `
		SELECT id, seq, user_id, date, month, is_confirmed, is_conflicted, created_at
		FROM bookings
		WHERE month = $1
		ORDER BY seq`
	selectUserBookingsQuery = `
		SELECT id, seq, user_id, date, month, is_confirmed, is_conflicted, created_at
		FROM bookings
		WHERE user_id = $1 AND month = $2
		ORDER BY seq`
	insertBookingQuery = `
		INSERT INTO bookings (id, user_id, date, month, is_confirmed, is_conflicted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq`
	updateBookingStatusQuery = `UPDATE bookings SET is_confirmed = $2, is_conflicted = $3 WHERE id = $1`
	deleteBookingQuery       = `DELETE FROM bookings WHERE id = $1`
)

// ledgerTx implements db.LedgerWriter on top of an open transaction
type ledgerTx struct {
	q querier
}

var _ db.LedgerWriter = (*ledgerTx)(nil)

// GetBookings retrieves all bookings for the month in insertion order
func (d *DB) GetBookings(ctx context.Context, month string) ([]model.Booking, error) {
	return queryBookings(ctx, d.pool, selectBookingsQuery, month)
}

// GetUserBookings retrieves one member's bookings for the month
func (d *DB) GetUserBookings(ctx context.Context, userID, month string) ([]model.Booking, error) {
	return queryBookings(ctx, d.pool, selectUserBookingsQuery, userID, month)
}

func (tx *ledgerTx) GetBookings(ctx context.Context, month string) ([]model.Booking, error) {
	return queryBookings(ctx, tx.q, selectBookingsQuery, month)
}

func (tx *ledgerTx) GetUserBookings(ctx context.Context, userID, month string) ([]model.Booking, error) {
	return queryBookings(ctx, tx.q, selectUserBookingsQuery, userID, month)
}

func queryBookings(ctx context.Context, q querier, sql string, args ...any) ([]model.Booking, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		var date time.Time
		if err := rows.Scan(&b.ID, &b.Seq, &b.UserID, &date, &b.Month, &b.IsConfirmed, &b.IsConflicted, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		b.Date = date.Format("2006-01-02")
		b.CreatedAt = b.CreatedAt.UTC()
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}

// InsertBooking inserts a booking and reads back its sequence number
func (tx *ledgerTx) InsertBooking(ctx context.Context, booking *model.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}

	err := tx.q.QueryRow(ctx, insertBookingQuery,
		booking.ID, booking.UserID, booking.Date, booking.Month,
		booking.IsConfirmed, booking.IsConflicted, booking.CreatedAt,
	).Scan(&booking.Seq)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// UpdateBookingStatus sets the resolved flags of a booking
func (tx *ledgerTx) UpdateBookingStatus(ctx context.Context, id string, confirmed, conflicted bool) error {
	tag, err := tx.q.Exec(ctx, updateBookingStatusQuery, id, confirmed, conflicted)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update booking %s: %w", id, model.ErrBookingNotFound)
	}
	return nil
}

// DeleteBooking removes a booking
func (tx *ledgerTx) DeleteBooking(ctx context.Context, id string) error {
	tag, err := tx.q.Exec(ctx, deleteBookingQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete booking %s: %w", id, model.ErrBookingNotFound)
	}
	return nil
}
