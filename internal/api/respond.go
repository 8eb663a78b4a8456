package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Vmp3/Inkspiration-sub001/internal/access"
	"github.com/Vmp3/Inkspiration-sub001/internal/availability"
	"github.com/Vmp3/Inkspiration-sub001/internal/db"
	"github.com/Vmp3/Inkspiration-sub001/internal/postal"
	"github.com/Vmp3/Inkspiration-sub001/internal/schedule"
	"github.com/Vmp3/Inkspiration-sub001/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps domain errors onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var invalidService *availability.InvalidServiceTypeError

	switch {
	case errors.Is(err, availability.ErrProfessionalNotFound),
		errors.Is(err, availability.ErrScheduleNotRegistered),
		errors.Is(err, postal.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, access.ErrAccessDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, db.ErrSlotTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, schedule.ErrPeriodMissingField),
		errors.Is(err, schedule.ErrInvalidTimeFormat),
		errors.Is(err, schedule.ErrEndBeforeStart),
		errors.Is(err, schedule.ErrCrossesNoon),
		errors.Is(err, service.ErrOutsideWorkingHours):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &invalidService), errors.Is(err, postal.ErrInvalidCode):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
