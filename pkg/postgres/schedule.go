package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

// GetFinalSchedule retrieves the final schedule for the month, ordered by date
func (d *DB) GetFinalSchedule(ctx context.Context, month string) ([]model.FinalScheduleEntry, error) {
	return queryFinalSchedule(ctx, d.pool, month)
}

func (tx *ledgerTx) GetFinalSchedule(ctx context.Context, month string) ([]model.FinalScheduleEntry, error) {
	return queryFinalSchedule(ctx, tx.q, month)
}

func queryFinalSchedule(ctx context.Context, q querier, month string) ([]model.FinalScheduleEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT id, date, assigned_to, month
		FROM final_schedule
		WHERE month = $1
		ORDER BY date
	`, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query final schedule: %w", err)
	}
	defer rows.Close()

	entries := make([]model.FinalScheduleEntry, 0)
	for rows.Next() {
		var e model.FinalScheduleEntry
		var date time.Time
		if err := rows.Scan(&e.ID, &date, &e.AssignedTo, &e.Month); err != nil {
			return nil, fmt.Errorf("failed to scan final schedule entry: %w", err)
		}
		e.Date = date.Format("2006-01-02")
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating final schedule: %w", err)
	}

	return entries, nil
}

// DeleteFinalScheduleEntry removes the entry for a date, if any
func (tx *ledgerTx) DeleteFinalScheduleEntry(ctx context.Context, date string) error {
	if _, err := tx.q.Exec(ctx, `DELETE FROM final_schedule WHERE date = $1`, date); err != nil {
		return fmt.Errorf("failed to delete final schedule entry for %s: %w", date, err)
	}
	return nil
}

// ReplaceFinalSchedule deletes the month's entries and inserts the given ones
func (tx *ledgerTx) ReplaceFinalSchedule(ctx context.Context, month string, entries []model.FinalScheduleEntry) error {
	if _, err := tx.q.Exec(ctx, `DELETE FROM final_schedule WHERE month = $1`, month); err != nil {
		return fmt.Errorf("failed to clear final schedule for %s: %w", month, err)
	}

	for _, e := range entries {
		id := e.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := tx.q.Exec(ctx, `
			INSERT INTO final_schedule (id, date, assigned_to, month)
			VALUES ($1, $2, $3, $4)
		`, id, e.Date, e.AssignedTo, month)
		if err != nil {
			return fmt.Errorf("failed to insert final schedule entry for %s: %w", e.Date, err)
		}
	}

	return nil
}
