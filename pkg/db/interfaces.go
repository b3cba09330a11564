package db

import (
	"context"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

// LedgerReader defines read access to bookings and the final schedule
type LedgerReader interface {
	// GetBookings returns every booking of the month in insertion order
	GetBookings(ctx context.Context, month string) ([]model.Booking, error)
	GetUserBookings(ctx context.Context, userID, month string) ([]model.Booking, error)
	GetFinalSchedule(ctx context.Context, month string) ([]model.FinalScheduleEntry, error)
}

// LedgerWriter is the view of the ledger available inside a month unit of work
type LedgerWriter interface {
	LedgerReader
	// InsertBooking stores a new booking, assigning its ID (if empty), Seq and CreatedAt
	InsertBooking(ctx context.Context, booking *model.Booking) error
	UpdateBookingStatus(ctx context.Context, id string, confirmed, conflicted bool) error
	DeleteBooking(ctx context.Context, id string) error
	DeleteFinalScheduleEntry(ctx context.Context, date string) error
	// ReplaceFinalSchedule deletes every entry of the month and inserts the given ones
	ReplaceFinalSchedule(ctx context.Context, month string, entries []model.FinalScheduleEntry) error
}

// Ledger defines the interface for booking and schedule operations.
// All writes happen inside WithinMonth, which runs fn as one atomic unit
// that is serialised against every other unit for the same month.
type Ledger interface {
	LedgerReader
	WithinMonth(ctx context.Context, month string, fn func(tx LedgerWriter) error) error
}

// TeamStore defines the interface for persisting team members
type TeamStore interface {
	SyncTeamMembers(ctx context.Context, members []model.TeamMember) error
	GetTeamMembers(ctx context.Context) ([]model.TeamMember, error)
}

// TicketStore defines the interface for the ticket log
type TicketStore interface {
	GetTickets(ctx context.Context, date string) ([]model.Ticket, error)
	// GetTicket returns model.ErrTicketNotFound when no ticket has the ID
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	InsertTicket(ctx context.Context, ticket *model.Ticket) error
	UpdateTicket(ctx context.Context, ticket *model.Ticket) error
	DeleteTicket(ctx context.Context, id string) error
}

// Database defines the interface for all database operations.
// Both the in-memory MemoryDB and postgres.DB implement this interface.
type Database interface {
	Ledger
	TeamStore
	TicketStore
}
