package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

// MemoryDB is an in-process Database. It backs tests and deployments that
// run without a databaseURL; nothing survives a restart.
type MemoryDB struct {
	mu    sync.RWMutex
	state *memState
	now   func() time.Time

	// Members and tickets are not part of a month unit of work
	refMu   sync.RWMutex
	members []model.TeamMember
	tickets map[string]model.Ticket
}

type memState struct {
	bookings map[string]model.Booking
	schedule map[string]model.FinalScheduleEntry // Keyed by date
	seq      int64
}

var (
	_ Database     = (*MemoryDB)(nil)
	_ LedgerWriter = (*memTx)(nil)
)

// NewMemoryDB creates an empty in-memory database
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		state: &memState{
			bookings: make(map[string]model.Booking),
			schedule: make(map[string]model.FinalScheduleEntry),
		},
		now:     time.Now,
		tickets: make(map[string]model.Ticket),
	}
}

func (s *memState) clone() *memState {
	c := &memState{
		bookings: make(map[string]model.Booking, len(s.bookings)),
		schedule: make(map[string]model.FinalScheduleEntry, len(s.schedule)),
		seq:      s.seq,
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.schedule {
		c.schedule[k] = v
	}
	return c
}

func (s *memState) getBookings(month string) []model.Booking {
	out := make([]model.Booking, 0)
	for _, b := range s.bookings {
		if b.Month == month {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (s *memState) getUserBookings(userID, month string) []model.Booking {
	out := make([]model.Booking, 0)
	for _, b := range s.getBookings(month) {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}

func (s *memState) getFinalSchedule(month string) []model.FinalScheduleEntry {
	out := make([]model.FinalScheduleEntry, 0)
	for _, e := range s.schedule {
		if e.Month == month {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// GetBookings retrieves all bookings for the month in insertion order
func (m *MemoryDB) GetBookings(ctx context.Context, month string) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.getBookings(month), nil
}

// GetUserBookings retrieves one member's bookings for the month
func (m *MemoryDB) GetUserBookings(ctx context.Context, userID, month string) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.getUserBookings(userID, month), nil
}

// GetFinalSchedule retrieves the final schedule entries for the month, ordered by date
func (m *MemoryDB) GetFinalSchedule(ctx context.Context, month string) ([]model.FinalScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.getFinalSchedule(month), nil
}

// WithinMonth runs fn against a staged copy of the ledger while holding the
// write lock. The copy replaces the live state only if fn succeeds.
func (m *MemoryDB) WithinMonth(ctx context.Context, month string, fn func(tx LedgerWriter) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	staged := m.state.clone()
	if err := fn(&memTx{state: staged, now: m.now}); err != nil {
		return err
	}
	m.state = staged
	return nil
}

// memTx is the LedgerWriter handed to WithinMonth callbacks
type memTx struct {
	state *memState
	now   func() time.Time
}

func (tx *memTx) GetBookings(ctx context.Context, month string) ([]model.Booking, error) {
	return tx.state.getBookings(month), nil
}

func (tx *memTx) GetUserBookings(ctx context.Context, userID, month string) ([]model.Booking, error) {
	return tx.state.getUserBookings(userID, month), nil
}

func (tx *memTx) GetFinalSchedule(ctx context.Context, month string) ([]model.FinalScheduleEntry, error) {
	return tx.state.getFinalSchedule(month), nil
}

func (tx *memTx) InsertBooking(ctx context.Context, booking *model.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if _, exists := tx.state.bookings[booking.ID]; exists {
		return fmt.Errorf("failed to insert booking: id %s already exists", booking.ID)
	}
	tx.state.seq++
	booking.Seq = tx.state.seq
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = tx.now().UTC()
	}
	tx.state.bookings[booking.ID] = *booking
	return nil
}

func (tx *memTx) UpdateBookingStatus(ctx context.Context, id string, confirmed, conflicted bool) error {
	b, ok := tx.state.bookings[id]
	if !ok {
		return fmt.Errorf("failed to update booking %s: %w", id, model.ErrBookingNotFound)
	}
	b.IsConfirmed = confirmed
	b.IsConflicted = conflicted
	tx.state.bookings[id] = b
	return nil
}

func (tx *memTx) DeleteBooking(ctx context.Context, id string) error {
	if _, ok := tx.state.bookings[id]; !ok {
		return fmt.Errorf("failed to delete booking %s: %w", id, model.ErrBookingNotFound)
	}
	delete(tx.state.bookings, id)
	return nil
}

func (tx *memTx) DeleteFinalScheduleEntry(ctx context.Context, date string) error {
	delete(tx.state.schedule, date)
	return nil
}

func (tx *memTx) ReplaceFinalSchedule(ctx context.Context, month string, entries []model.FinalScheduleEntry) error {
	for date, e := range tx.state.schedule {
		if e.Month == month {
			delete(tx.state.schedule, date)
		}
	}
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		e.Month = month
		tx.state.schedule[e.Date] = e
	}
	return nil
}

// SyncTeamMembers replaces the stored team with the given members
func (m *MemoryDB) SyncTeamMembers(ctx context.Context, members []model.TeamMember) error {
	m.refMu.Lock()
	defer m.refMu.Unlock()
	m.members = make([]model.TeamMember, len(members))
	copy(m.members, members)
	return nil
}

// GetTeamMembers retrieves the stored team ordered by priority
func (m *MemoryDB) GetTeamMembers(ctx context.Context) ([]model.TeamMember, error) {
	m.refMu.RLock()
	defer m.refMu.RUnlock()
	out := make([]model.TeamMember, len(m.members))
	copy(out, m.members)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

// GetTickets retrieves the tickets logged against a date, oldest first
func (m *MemoryDB) GetTickets(ctx context.Context, date string) ([]model.Ticket, error) {
	m.refMu.RLock()
	defer m.refMu.RUnlock()
	out := make([]model.Ticket, 0)
	for _, t := range m.tickets {
		if t.Date == date {
			out = append(out, cloneTicket(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// GetTicket retrieves a single ticket
func (m *MemoryDB) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	m.refMu.RLock()
	defer m.refMu.RUnlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, model.ErrTicketNotFound
	}
	c := cloneTicket(t)
	return &c, nil
}

// InsertTicket stores a new ticket, assigning its ID if empty
func (m *MemoryDB) InsertTicket(ctx context.Context, ticket *model.Ticket) error {
	m.refMu.Lock()
	defer m.refMu.Unlock()
	if ticket.ID == "" {
		ticket.ID = uuid.New().String()
	}
	if _, exists := m.tickets[ticket.ID]; exists {
		return fmt.Errorf("failed to insert ticket: id %s already exists", ticket.ID)
	}
	m.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

// UpdateTicket overwrites an existing ticket
func (m *MemoryDB) UpdateTicket(ctx context.Context, ticket *model.Ticket) error {
	m.refMu.Lock()
	defer m.refMu.Unlock()
	if _, ok := m.tickets[ticket.ID]; !ok {
		return model.ErrTicketNotFound
	}
	m.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

// DeleteTicket removes a ticket
func (m *MemoryDB) DeleteTicket(ctx context.Context, id string) error {
	m.refMu.Lock()
	defer m.refMu.Unlock()
	if _, ok := m.tickets[id]; !ok {
		return model.ErrTicketNotFound
	}
	delete(m.tickets, id)
	return nil
}

func cloneTicket(t model.Ticket) model.Ticket {
	t.TicketIDs = append([]string(nil), t.TicketIDs...)
	return t
}
