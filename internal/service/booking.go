// Package service implements the booking orchestration and slot reporting on
// top of the external calendar.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"bookdesk/internal/events"
	"bookdesk/internal/metrics"
	"bookdesk/internal/models"
)

// Calendar is the slice of the external calendar the booking flow needs.
type Calendar interface {
	HasOverlap(ctx context.Context, start, end time.Time) (bool, error)
	InsertEvent(ctx context.Context, ev models.Event) (models.Event, error)
}

// Notifier dispatches the confirmation emails for a created booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, booking models.BookingRequest, event models.Event) error
}

// ScheduleProvider hands out the current schedule configuration.
type ScheduleProvider interface {
	Current() models.ScheduleConfig
}

// EventPublisher publishes booking lifecycle events.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingService validates requests and runs the check-then-insert booking
// flow. The availability check and the insert are not atomic: two concurrent
// requests for the same slot can both pass the check and both insert. The
// external calendar offers no conditional insert, so the race is accepted and
// surfaced here rather than hidden.
type BookingService struct {
	calendar Calendar
	notifier Notifier
	schedule ScheduleProvider
	bus      EventPublisher
	location *time.Location
	logger   zerolog.Logger
}

// NewBookingService wires the orchestrator.
func NewBookingService(
	calendar Calendar,
	notifier Notifier,
	schedule ScheduleProvider,
	bus EventPublisher,
	loc *time.Location,
	logger *zerolog.Logger,
) *BookingService {
	return &BookingService{
		calendar: calendar,
		notifier: notifier,
		schedule: schedule,
		bus:      bus,
		location: loc,
		logger:   logger.With().Str("component", "booking_service").Logger(),
	}
}

// bookingEvent is the payload published on the event bus.
type bookingEvent struct {
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Start   time.Time `json:"start"`
	EventID string    `json:"event_id,omitempty"`
}

// Book validates the request, re-checks availability, inserts the event and
// dispatches notifications. Errors map onto the API taxonomy:
// *ValidationError, ErrSlotTaken, *NotificationError, or a wrapped upstream
// failure.
func (s *BookingService) Book(ctx context.Context, req models.BookingRequest) (models.Event, error) {
	start, err := s.validate(req)
	if err != nil {
		metrics.IncBooking("validation_failed")
		return models.Event{}, err
	}

	end := start.Add(s.schedule.Current().Duration())

	taken, err := s.calendar.HasOverlap(ctx, start, end)
	if err != nil {
		metrics.IncBooking("failed")
		return models.Event{}, fmt.Errorf("availability check: %w", err)
	}
	if taken {
		metrics.IncBooking("conflict")
		_ = s.bus.PublishJSON(events.TypeBookingConflict, bookingEvent{
			Name: req.Name, Email: req.Email, Start: start,
		})
		s.logger.Info().Time("start", start).Msg("booking rejected, slot taken")
		return models.Event{}, ErrSlotTaken
	}

	created, err := s.calendar.InsertEvent(ctx, models.Event{
		Summary:     fmt.Sprintf("Appointment: %s", req.Name),
		Description: fmt.Sprintf("Appointment booked by %s (%s).", req.Name, req.Email),
		Start:       start.In(s.location),
		End:         end.In(s.location),
	})
	if err != nil {
		metrics.IncBooking("failed")
		return models.Event{}, fmt.Errorf("insert event: %w", err)
	}

	if err := s.notifier.BookingConfirmed(ctx, req, created); err != nil {
		metrics.IncBooking("notification_failed")
		metrics.IncEmail("failed")
		// The event already exists in the calendar at this point. The caller
		// still sees a failure; creation is not rolled back.
		return models.Event{}, &NotificationError{EventID: created.ID, Err: err}
	}
	metrics.IncEmail("sent")

	metrics.IncBooking("created")
	_ = s.bus.PublishJSON(events.TypeBookingCreated, bookingEvent{
		Name: req.Name, Email: req.Email, Start: start, EventID: created.ID,
	})

	s.logger.Info().
		Str("event_id", created.ID).
		Time("start", start).
		Bool("has_meeting_link", created.MeetingLink != "").
		Msg("booking created")

	return created, nil
}

func (s *BookingService) validate(req models.BookingRequest) (time.Time, error) {
	if req.Name == "" {
		return time.Time{}, &ValidationError{Field: "name"}
	}
	if req.Email == "" {
		return time.Time{}, &ValidationError{Field: "email"}
	}
	if req.DateTime == "" {
		return time.Time{}, &ValidationError{Field: "dateTime"}
	}

	start, err := time.Parse(time.RFC3339, req.DateTime)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "dateTime", Reason: "must be an ISO-8601 instant"}
	}
	return start, nil
}
