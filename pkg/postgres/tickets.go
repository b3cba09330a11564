package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

const ticketColumns = `id, date, ticket_ids, priority, status, notes, created_by, created_at, updated_at`

// GetTickets retrieves the tickets logged against a date, oldest first
func (d *DB) GetTickets(ctx context.Context, date string) ([]model.Ticket, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE date = $1
		ORDER BY created_at, id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// GetTicket retrieves a single ticket
func (d *DB) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)
	t, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var t model.Ticket
	var date time.Time
	var priority, status string
	if err := row.Scan(&t.ID, &date, &t.TicketIDs, &priority, &status, &t.Notes, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan ticket: %w", err)
	}
	t.Date = date.Format("2006-01-02")
	t.Priority = model.TicketPriority(priority)
	t.Status = model.TicketStatus(status)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

// InsertTicket inserts a ticket, assigning its ID if empty
func (d *DB) InsertTicket(ctx context.Context, ticket *model.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.New().String()
	}
	_, err := d.pool.Exec(ctx, `
		INSERT INTO tickets (`+ticketColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, ticket.ID, ticket.Date, ticket.TicketIDs, string(ticket.Priority), string(ticket.Status),
		ticket.Notes, ticket.CreatedBy, ticket.CreatedAt, ticket.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	return nil
}

// UpdateTicket overwrites the mutable fields of a ticket
func (d *DB) UpdateTicket(ctx context.Context, ticket *model.Ticket) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE tickets
		SET ticket_ids = $2, priority = $3, status = $4, notes = $5, updated_at = $6
		WHERE id = $1
	`, ticket.ID, ticket.TicketIDs, string(ticket.Priority), string(ticket.Status), ticket.Notes, ticket.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTicketNotFound
	}
	return nil
}

// DeleteTicket removes a ticket
func (d *DB) DeleteTicket(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTicketNotFound
	}
	return nil
}
