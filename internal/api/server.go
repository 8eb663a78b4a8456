// Package api exposes the scheduling service over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Vmp3/Inkspiration-sub001/internal/postal"
	"github.com/Vmp3/Inkspiration-sub001/internal/reports"
	"github.com/Vmp3/Inkspiration-sub001/internal/service"
)

// Server handles the booking platform's HTTP API.
type Server struct {
	scheduling *service.Scheduling
	reporter   *reports.ExcelReporter
	postal     *postal.Client
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewServer wires the API server. Reporter and postal client may be nil
// when those features are disabled.
func NewServer(
	scheduling *service.Scheduling,
	reporter *reports.ExcelReporter,
	postalClient *postal.Client,
	logger zerolog.Logger,
) *Server {
	return &Server{
		scheduling: scheduling,
		reporter:   reporter,
		postal:     postalClient,
		validate:   validator.New(),
		logger:     logger.With().Str("component", "api").Logger(),
	}
}

// Router builds the chi router with middleware and routes.
func (s *Server) Router(rateLimitPerMinute int) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if rateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(rateLimitPerMinute, time.Minute))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/professionals/{professionalID}", func(r chi.Router) {
			r.Put("/schedule", s.handleSubmitSchedule)
			r.Get("/availability", s.handleAvailability)
			r.Get("/interval-check", s.handleIntervalCheck)
			r.Get("/appointments/report", s.handleAppointmentsReport)
		})
		r.Post("/appointments", s.handleBookAppointment)
		r.Delete("/appointments/{appointmentID}", s.handleCancelAppointment)
		r.Get("/service-types", s.handleServiceTypes)
		r.Get("/postal/{code}", s.handlePostalLookup)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
