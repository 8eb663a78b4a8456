package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/Vmp3/Inkspiration-sub001/internal/availability"
	"github.com/Vmp3/Inkspiration-sub001/internal/schedule"
	"github.com/Vmp3/Inkspiration-sub001/internal/service"
)

const dateLayout = "2006-01-02"

// callerID reads the authenticated user id set by the edge proxy.
func callerID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// handleSubmitSchedule stores a professional's weekly schedule.
// PUT /api/v1/professionals/{professionalID}/schedule
func (s *Server) handleSubmitSchedule(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := pathID(r, "professionalID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid professional id")
		return
	}
	caller, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid X-User-ID header")
		return
	}

	var input schedule.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.scheduling.SubmitScheduleWithAuthorization(r.Context(), caller, professionalID, input); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

// handleAvailability lists bookable start times for a date.
// GET /api/v1/professionals/{professionalID}/availability?date=YYYY-MM-DD&service_type=small
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := pathID(r, "professionalID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid professional id")
		return
	}

	date, err := time.Parse(dateLayout, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}

	var times []string
	if serviceType := r.URL.Query().Get("service_type"); serviceType != "" {
		times, err = s.scheduling.GetAvailabilityForService(r.Context(), professionalID, date, serviceType)
	} else if hoursParam := r.URL.Query().Get("duration_hours"); hoursParam != "" {
		hours, convErr := strconv.Atoi(hoursParam)
		if convErr != nil || hours <= 0 {
			writeError(w, http.StatusBadRequest, "invalid duration_hours")
			return
		}
		times, err = s.scheduling.GetAvailability(r.Context(), professionalID, date, time.Duration(hours)*time.Hour)
	} else {
		writeError(w, http.StatusBadRequest, "service_type or duration_hours is required")
		return
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":        date.Format(dateLayout),
		"start_times": times,
	})
}

// handleIntervalCheck reports whether an interval fits working hours.
// GET /api/v1/professionals/{professionalID}/interval-check?start=RFC3339&end=RFC3339
func (s *Server) handleIntervalCheck(w http.ResponseWriter, r *http.Request) {
	professionalID, ok := pathID(r, "professionalID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid professional id")
		return
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start; expected RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end; expected RFC3339")
		return
	}

	within, err := s.scheduling.CheckInterval(r.Context(), professionalID, start, end)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"within_working_hours": within})
}

type bookAppointmentRequest struct {
	ProfessionalID int64  `json:"professional_id" validate:"required,gt=0"`
	ClientID       int64  `json:"client_id" validate:"required,gt=0"`
	ServiceType    string `json:"service_type" validate:"required"`
	StartTime      string `json:"start_time" validate:"required"`
	Comment        string `json:"comment" validate:"max=500"`
}

// handleBookAppointment books an appointment.
// POST /api/v1/appointments
func (s *Server) handleBookAppointment(w http.ResponseWriter, r *http.Request) {
	var req bookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_time; expected RFC3339")
		return
	}

	appt, err := s.scheduling.BookAppointment(r.Context(), service.BookingRequest{
		ProfessionalID: req.ProfessionalID,
		ClientID:       req.ClientID,
		ServiceType:    req.ServiceType,
		StartTime:      start,
		Comment:        req.Comment,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

// handleCancelAppointment cancels an appointment.
// DELETE /api/v1/appointments/{appointmentID}
func (s *Server) handleCancelAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathID(r, "appointmentID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	if err := s.scheduling.CancelAppointment(r.Context(), appointmentID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
}

// handleServiceTypes lists the bookable service types with durations.
// GET /api/v1/service-types
func (s *Server) handleServiceTypes(w http.ResponseWriter, _ *http.Request) {
	type serviceTypeInfo struct {
		Token         string `json:"token"`
		DurationHours int    `json:"duration_hours"`
	}
	tokens := availability.ServiceTypes()
	out := make([]serviceTypeInfo, 0, len(tokens))
	for _, token := range tokens {
		hours, err := availability.DurationHours(token)
		if err != nil {
			continue
		}
		out = append(out, serviceTypeInfo{Token: token, DurationHours: hours})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"service_types": out})
}

// handleAppointmentsReport streams an xlsx report of appointments.
// GET /api/v1/professionals/{professionalID}/appointments/report?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *Server) handleAppointmentsReport(w http.ResponseWriter, r *http.Request) {
	if s.reporter == nil {
		writeError(w, http.StatusNotFound, "reports are disabled")
		return
	}
	professionalID, ok := pathID(r, "professionalID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid professional id")
		return
	}

	from, err := time.Parse(dateLayout, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from; expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse(dateLayout, r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to; expected YYYY-MM-DD")
		return
	}
	if !to.After(from) {
		writeError(w, http.StatusBadRequest, "to must be after from")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="appointments.xlsx"`)
	if err := s.reporter.WriteAppointments(r.Context(), w, professionalID, from, to); err != nil {
		s.logger.Error().Err(err).Msg("report generation failed")
	}
}

// handlePostalLookup resolves a postal code to an address.
// GET /api/v1/postal/{code}
func (s *Server) handlePostalLookup(w http.ResponseWriter, r *http.Request) {
	if s.postal == nil {
		writeError(w, http.StatusNotFound, "postal lookup is disabled")
		return
	}

	addr, err := s.postal.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}
