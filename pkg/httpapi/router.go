package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jakechorley/weekend-duty/pkg/core/services"
)

// RequestTimeout bounds every API request
const RequestTimeout = 15 * time.Second

// NewRouter wires the booking API onto a chi router
func NewRouter(scheduler *services.Scheduler, logger *zap.Logger) http.Handler {
	h := &handler{scheduler: scheduler, logger: logger}

	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(RequestTimeout))

	// Public endpoints
	r.Get("/healthz", h.health)
	r.Post("/api/auth/validate", h.validateAccessKey)

	// Endpoints that require an X-Access-Key header
	r.Group(func(r chi.Router) {
		r.Use(accessKeyAuth(scheduler.Directory()))

		r.Get("/api/team-members", h.listTeamMembers)
		r.Get("/api/schedule/{month}", h.getSchedule)
		r.Get("/api/export/{month}", h.exportSchedule)

		r.Post("/api/bookings", h.createBooking)
		r.Delete("/api/bookings/{userId}/{date}", h.cancelBooking)

		r.Get("/api/tickets/{date}", h.listTickets)
		r.Post("/api/tickets", h.createTicket)
		r.Put("/api/tickets/{id}", h.updateTicket)
		r.Delete("/api/tickets/{id}", h.deleteTicket)
	})

	return r
}

// NewServer creates an HTTP server for the router with conservative timeouts
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       RequestTimeout,
		WriteTimeout:      RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
