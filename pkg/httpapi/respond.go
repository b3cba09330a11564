package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

type messageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, messageResponse{Message: message})
}

// statusFor maps a domain error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidAccessKey):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrBookingNotFound),
		errors.Is(err, model.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidDate),
		errors.Is(err, model.ErrInvalidMonth),
		errors.Is(err, model.ErrInvalidDateKind),
		errors.Is(err, model.ErrPastDateBooking),
		errors.Is(err, model.ErrBookingLimitExceeded),
		errors.Is(err, model.ErrDuplicateBooking),
		errors.Is(err, model.ErrUnknownMember),
		errors.Is(err, model.ErrDateNotAssigned),
		errors.Is(err, model.ErrInvalidTicket):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a domain error. Storage and other unexpected errors
// are logged and replaced with the fallback message.
func (h *handler) respondError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(fallback,
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondMessage(w, status, fallback)
		return
	}
	respondMessage(w, status, err.Error())
}
