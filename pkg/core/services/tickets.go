package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/weekend-duty/pkg/core/calendar"
	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

var validate = validator.New()

// TicketInput is the payload for logging tickets against a duty day
type TicketInput struct {
	Date      string   `json:"date" validate:"required"`
	TicketIDs []string `json:"ticketIds" validate:"required,min=1"`
	Priority  string   `json:"priority" validate:"required,oneof=P1 P2 P3 P4"`
	Status    string   `json:"status" validate:"omitempty,oneof=open in_progress resolved escalated"`
	Notes     string   `json:"notes" validate:"max=2000"`
}

// TicketPatch is a partial update; nil fields are left unchanged
type TicketPatch struct {
	TicketIDs []string `json:"ticketIds,omitempty" validate:"omitempty,min=1"`
	Priority  *string  `json:"priority,omitempty" validate:"omitempty,oneof=P1 P2 P3 P4"`
	Status    *string  `json:"status,omitempty" validate:"omitempty,oneof=open in_progress resolved escalated"`
	Notes     *string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ListTickets returns the tickets logged against a date
func (s *Scheduler) ListTickets(ctx context.Context, date string) ([]model.Ticket, error) {
	if _, err := calendar.ParseDate(date); err != nil {
		return nil, err
	}
	tickets, err := s.database.GetTickets(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets: %w", err)
	}
	return tickets, nil
}

// CreateTicket logs tickets against a date that has an assignee in the final schedule
func (s *Scheduler) CreateTicket(ctx context.Context, createdBy string, input TicketInput) (*model.Ticket, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidTicket, err)
	}
	if _, err := calendar.ParseDate(input.Date); err != nil {
		return nil, err
	}

	ticketIDs := cleanTicketIDs(input.TicketIDs)
	if len(ticketIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one ticket ID is required", model.ErrInvalidTicket)
	}

	assigned, err := s.isAssigned(ctx, input.Date)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, fmt.Errorf("%w: %s", model.ErrDateNotAssigned, input.Date)
	}

	status := model.TicketStatusOpen
	if input.Status != "" {
		status = model.TicketStatus(input.Status)
	}

	now := s.now().UTC()
	ticket := model.Ticket{
		ID:        uuid.New().String(),
		Date:      input.Date,
		TicketIDs: ticketIDs,
		Priority:  model.TicketPriority(input.Priority),
		Status:    status,
		Notes:     strings.TrimSpace(input.Notes),
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.database.InsertTicket(ctx, &ticket); err != nil {
		return nil, fmt.Errorf("failed to insert ticket: %w", err)
	}

	s.logger.Info("Ticket logged",
		zap.String("ticket_id", ticket.ID),
		zap.String("date", ticket.Date),
		zap.Strings("tickets", ticket.TicketIDs),
		zap.String("created_by", createdBy))

	return &ticket, nil
}

// UpdateTicket applies a partial update to an existing ticket
func (s *Scheduler) UpdateTicket(ctx context.Context, id string, patch TicketPatch) (*model.Ticket, error) {
	if err := validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidTicket, err)
	}
	if err := checkTicketID(id); err != nil {
		return nil, err
	}

	ticket, err := s.database.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.TicketIDs != nil {
		ticketIDs := cleanTicketIDs(patch.TicketIDs)
		if len(ticketIDs) == 0 {
			return nil, fmt.Errorf("%w: at least one ticket ID is required", model.ErrInvalidTicket)
		}
		ticket.TicketIDs = ticketIDs
	}
	if patch.Priority != nil {
		ticket.Priority = model.TicketPriority(*patch.Priority)
	}
	if patch.Status != nil {
		ticket.Status = model.TicketStatus(*patch.Status)
	}
	if patch.Notes != nil {
		ticket.Notes = strings.TrimSpace(*patch.Notes)
	}
	ticket.UpdatedAt = s.now().UTC()

	if err := s.database.UpdateTicket(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Info("Ticket updated",
		zap.String("ticket_id", ticket.ID),
		zap.String("status", string(ticket.Status)))

	return ticket, nil
}

// DeleteTicket removes a ticket from the log
func (s *Scheduler) DeleteTicket(ctx context.Context, id string) error {
	if err := checkTicketID(id); err != nil {
		return err
	}
	if err := s.database.DeleteTicket(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Ticket deleted", zap.String("ticket_id", id))
	return nil
}

// checkTicketID reports ErrTicketNotFound for ids that are not UUIDs
func checkTicketID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", model.ErrTicketNotFound, id)
	}
	return nil
}

func (s *Scheduler) isAssigned(ctx context.Context, date string) (bool, error) {
	entries, err := s.database.GetFinalSchedule(ctx, calendar.MonthOf(date))
	if err != nil {
		return false, fmt.Errorf("failed to fetch final schedule: %w", err)
	}
	for _, e := range entries {
		if e.Date == date {
			return true, nil
		}
	}
	return false, nil
}

// cleanTicketIDs trims every ID and drops the blank ones
func cleanTicketIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
