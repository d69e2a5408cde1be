package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"bookdesk/internal/metrics"
	"bookdesk/internal/models"
	"bookdesk/internal/service"
)

// handleSettings returns the cached schedule configuration.
// GET /api/settings
func (s *HTTPServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("settings")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, s.schedule.Current())
}

// handleBookedSlots returns the occupied slots for a date.
// GET /api/booked-slots?date=YYYY-MM-DD
func (s *HTTPServer) handleBookedSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("booked_slots")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	booked, err := s.slots.BookedForDate(r.Context(), date)
	if err != nil {
		if ve, ok := service.IsValidationError(err); ok {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		s.logger.Error().Err(err).Str("date", date).Msg("booked slots lookup failed")
		writeError(w, http.StatusInternalServerError, "failed to fetch booked slots")
		return
	}

	writeJSON(w, http.StatusOK, booked)
}

// handleBookAppointment runs the booking flow.
// POST /api/book-appointment
func (s *HTTPServer) handleBookAppointment(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("book_appointment")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req models.BookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := s.bookings.Book(r.Context(), req)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, ve.Error())
		case errors.Is(err, service.ErrSlotTaken):
			writeError(w, http.StatusConflict, "slot no longer available")
		default:
			// Upstream detail stays in the server log.
			s.logger.Error().Err(err).Msg("booking failed")
			writeError(w, http.StatusInternalServerError, "failed to book appointment")
		}
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// handleExport streams a monthly xlsx report to the admin.
// GET /api/export?month=YYYY-MM
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.reports == nil || s.apiKey == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Header.Get("X-API-Key") != s.apiKey {
		writeError(w, http.StatusUnauthorized, "invalid API key")
		return
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		writeError(w, http.StatusBadRequest, "month query parameter is required")
		return
	}

	var buf bytes.Buffer
	if err := s.reports.WriteMonth(r.Context(), month, &buf); err != nil {
		s.logger.Error().Err(err).Str("month", month).Msg("report generation failed")
		writeError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bookings-%s.xlsx", month))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
