package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakechorley/weekend-duty/pkg/core/calendar"
	"github.com/jakechorley/weekend-duty/pkg/core/model"
	"github.com/jakechorley/weekend-duty/pkg/core/services"
)

var validate = validator.New()

type handler struct {
	scheduler *services.Scheduler
	logger    *zap.Logger
}

type validateKeyRequest struct {
	AccessKey string `json:"accessKey"`
}

type validatedUser struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type validateKeyResponse struct {
	Valid bool           `json:"valid"`
	User  *validatedUser `json:"user,omitempty"`
}

type bookingRequest struct {
	UserID string `json:"userId" validate:"required"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// validateAccessKey reports whether a key belongs to a team member
func (h *handler) validateAccessKey(w http.ResponseWriter, r *http.Request) {
	var req validateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := h.scheduler.Directory().ValidateAccessKey(req.AccessKey)
	if err != nil {
		respondJSON(w, http.StatusOK, validateKeyResponse{Valid: false})
		return
	}

	respondJSON(w, http.StatusOK, validateKeyResponse{
		Valid: true,
		User:  &validatedUser{Name: member.Name, Color: member.Color},
	})
}

func (h *handler) listTeamMembers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.scheduler.Directory().ListMembers())
}

func (h *handler) getSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.scheduler.GetMonthlySchedule(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		h.respondError(w, r, err, "failed to get schedule")
		return
	}
	respondJSON(w, http.StatusOK, schedule)
}

func (h *handler) exportSchedule(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")

	export, err := h.scheduler.ExportSchedule(r.Context(), month)
	if err != nil {
		h.respondError(w, r, err, "failed to export schedule")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"weekend-duty-%s.json\"", month))
	respondJSON(w, http.StatusOK, export)
}

func (h *handler) createBooking(w http.ResponseWriter, r *http.Request) {
	caller, _ := memberFrom(r.Context())

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request data: "+err.Error())
		return
	}

	if req.UserID != caller.Name {
		h.respondError(w, r, fmt.Errorf("%w: you can only book for yourself", model.ErrForbidden), "")
		return
	}

	result, err := h.scheduler.RequestBooking(r.Context(), req.UserID, req.Date)
	if err != nil {
		h.respondError(w, r, err, "failed to process booking")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *handler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	caller, _ := memberFrom(r.Context())
	userID := chi.URLParam(r, "userId")
	date := chi.URLParam(r, "date")

	if userID != caller.Name {
		h.respondError(w, r, fmt.Errorf("%w: you can only cancel your own bookings", model.ErrForbidden), "")
		return
	}

	if err := h.scheduler.CancelBooking(r.Context(), userID, date); err != nil {
		h.respondError(w, r, err, "failed to cancel booking")
		return
	}
	respondJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *handler) listTickets(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := calendar.ParseDate(date); err != nil {
		h.respondError(w, r, err, "")
		return
	}

	tickets, err := h.scheduler.ListTickets(r.Context(), date)
	if err != nil {
		h.respondError(w, r, err, "failed to get tickets")
		return
	}
	respondJSON(w, http.StatusOK, tickets)
}

func (h *handler) createTicket(w http.ResponseWriter, r *http.Request) {
	caller, _ := memberFrom(r.Context())

	var input services.TicketInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticket, err := h.scheduler.CreateTicket(r.Context(), caller.Name, input)
	if err != nil {
		h.respondError(w, r, err, "failed to create ticket")
		return
	}
	respondJSON(w, http.StatusCreated, ticket)
}

func (h *handler) updateTicket(w http.ResponseWriter, r *http.Request) {
	var patch services.TicketPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticket, err := h.scheduler.UpdateTicket(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.respondError(w, r, err, "failed to update ticket")
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

func (h *handler) deleteTicket(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduler.DeleteTicket(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err, "failed to delete ticket")
		return
	}
	respondJSON(w, http.StatusOK, successResponse{Success: true})
}
