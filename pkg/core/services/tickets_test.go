package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

func strPtr(s string) *string { return &s }

func newTicketScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, _ := newTestScheduler(t)
	_, err := s.RequestBooking(context.Background(), "Aakash", "2025-06-07")
	require.NoError(t, err)
	return s
}

func TestCreateTicket(t *testing.T) {
	s := newTicketScheduler(t)
	ctx := context.Background()

	ticket, err := s.CreateTicket(ctx, "Aakash", TicketInput{
		Date:      "2025-06-07",
		TicketIDs: []string{" INC-101 ", "", "INC-102"},
		Priority:  "P2",
		Notes:     "  Disk alerts on db-02  ",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, []string{"INC-101", "INC-102"}, ticket.TicketIDs)
	assert.Equal(t, model.TicketPriorityP2, ticket.Priority)
	assert.Equal(t, model.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "Disk alerts on db-02", ticket.Notes)
	assert.Equal(t, "Aakash", ticket.CreatedBy)
	assert.Equal(t, fixedClock(), ticket.CreatedAt)

	tickets, err := s.ListTickets(ctx, "2025-06-07")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, ticket.ID, tickets[0].ID)
}

func TestCreateTicket_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   TicketInput
		wantErr error
	}{
		{
			name:    "unassigned date",
			input:   TicketInput{Date: "2025-06-08", TicketIDs: []string{"INC-1"}, Priority: "P1"},
			wantErr: model.ErrDateNotAssigned,
		},
		{
			name:    "blank ticket ids",
			input:   TicketInput{Date: "2025-06-07", TicketIDs: []string{" ", ""}, Priority: "P1"},
			wantErr: model.ErrInvalidTicket,
		},
		{
			name:    "no ticket ids",
			input:   TicketInput{Date: "2025-06-07", Priority: "P1"},
			wantErr: model.ErrInvalidTicket,
		},
		{
			name:    "unknown priority",
			input:   TicketInput{Date: "2025-06-07", TicketIDs: []string{"INC-1"}, Priority: "P5"},
			wantErr: model.ErrInvalidTicket,
		},
		{
			name:    "unknown status",
			input:   TicketInput{Date: "2025-06-07", TicketIDs: []string{"INC-1"}, Priority: "P1", Status: "closed"},
			wantErr: model.ErrInvalidTicket,
		},
		{
			name:    "malformed date",
			input:   TicketInput{Date: "07/06/2025", TicketIDs: []string{"INC-1"}, Priority: "P1"},
			wantErr: model.ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTicketScheduler(t)

			ticket, err := s.CreateTicket(context.Background(), "Aakash", tt.input)

			assert.Nil(t, ticket)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateTicket_PartialUpdate(t *testing.T) {
	s := newTicketScheduler(t)
	ctx := context.Background()

	created, err := s.CreateTicket(ctx, "Aakash", TicketInput{
		Date:      "2025-06-07",
		TicketIDs: []string{"INC-7"},
		Priority:  "P3",
		Notes:     "initial",
	})
	require.NoError(t, err)

	later := fixedClock().Add(2 * time.Hour)
	s.now = func() time.Time { return later }

	updated, err := s.UpdateTicket(ctx, created.ID, TicketPatch{Status: strPtr("escalated")})
	require.NoError(t, err)

	assert.Equal(t, model.TicketStatusEscalated, updated.Status)
	assert.Equal(t, model.TicketPriorityP3, updated.Priority)
	assert.Equal(t, "initial", updated.Notes)
	assert.Equal(t, []string{"INC-7"}, updated.TicketIDs)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)

	tickets, err := s.ListTickets(ctx, "2025-06-07")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, model.TicketStatusEscalated, tickets[0].Status)
}

func TestUpdateTicket_Errors(t *testing.T) {
	s := newTicketScheduler(t)
	ctx := context.Background()

	_, err := s.UpdateTicket(ctx, "missing", TicketPatch{Notes: strPtr("x")})
	assert.ErrorIs(t, err, model.ErrTicketNotFound)

	_, err = s.UpdateTicket(ctx, "5f1d7c2a-9b3e-4e7a-8c61-2d4b9a0e7f13", TicketPatch{Notes: strPtr("x")})
	assert.ErrorIs(t, err, model.ErrTicketNotFound)

	created, err := s.CreateTicket(ctx, "Aakash", TicketInput{Date: "2025-06-07", TicketIDs: []string{"INC-1"}, Priority: "P1"})
	require.NoError(t, err)

	_, err = s.UpdateTicket(ctx, created.ID, TicketPatch{Priority: strPtr("urgent")})
	assert.ErrorIs(t, err, model.ErrInvalidTicket)

	_, err = s.UpdateTicket(ctx, created.ID, TicketPatch{TicketIDs: []string{"  "}})
	assert.ErrorIs(t, err, model.ErrInvalidTicket)
}

func TestDeleteTicket(t *testing.T) {
	s := newTicketScheduler(t)
	ctx := context.Background()

	created, err := s.CreateTicket(ctx, "Aakash", TicketInput{Date: "2025-06-07", TicketIDs: []string{"INC-1"}, Priority: "P4"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTicket(ctx, created.ID))
	assert.ErrorIs(t, s.DeleteTicket(ctx, created.ID), model.ErrTicketNotFound)
	assert.ErrorIs(t, s.DeleteTicket(ctx, "abc"), model.ErrTicketNotFound)

	tickets, err := s.ListTickets(ctx, "2025-06-07")
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestTicketsSurviveCancellation(t *testing.T) {
	s := newTicketScheduler(t)
	ctx := context.Background()

	_, err := s.CreateTicket(ctx, "Aakash", TicketInput{Date: "2025-06-07", TicketIDs: []string{"INC-1"}, Priority: "P2"})
	require.NoError(t, err)

	require.NoError(t, s.CancelBooking(ctx, "Aakash", "2025-06-07"))

	tickets, err := s.ListTickets(ctx, "2025-06-07")
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}
