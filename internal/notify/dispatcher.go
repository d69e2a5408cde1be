// Package notify formats and dispatches booking confirmation emails.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"bookdesk/internal/mailer"
	"bookdesk/internal/models"
)

// Mailer sends a single email.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Dispatcher sends the client confirmation and the admin alert for a booking.
// Duplicate calls produce duplicate emails; there is no idempotency key.
type Dispatcher struct {
	mailer     Mailer
	adminEmail string
	location   *time.Location
	logger     zerolog.Logger
}

// NewDispatcher creates a dispatcher. Dates and times in the messages are
// rendered in loc.
func NewDispatcher(m Mailer, adminEmail string, loc *time.Location, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		mailer:     m,
		adminEmail: adminEmail,
		location:   loc,
		logger:     logger.With().Str("component", "notify").Logger(),
	}
}

// BookingConfirmed sends both emails concurrently and waits for both. The
// first failure fails the pair; the other send is not cancelled.
func (d *Dispatcher) BookingConfirmed(ctx context.Context, booking models.BookingRequest, event models.Event) error {
	data := buildTemplateData(booking, event, d.location)

	clientBody, err := renderTemplate(clientTemplate, data)
	if err != nil {
		return err
	}
	adminBody, err := renderTemplate(adminTemplate, data)
	if err != nil {
		return err
	}

	messages := []mailer.Message{
		{
			To:       booking.Email,
			Subject:  "Appointment confirmed - " + data.Date,
			HTMLBody: clientBody,
		},
		{
			To:       d.adminEmail,
			Subject:  fmt.Sprintf("New booking: %s on %s", booking.Name, data.Date),
			HTMLBody: adminBody,
		},
	}

	errCh := make(chan error, len(messages))
	for _, msg := range messages {
		go func(m mailer.Message) {
			errCh <- d.mailer.Send(ctx, m)
		}(msg)
	}

	var firstErr error
	for range messages {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		d.logger.Error().Err(firstErr).Str("event_id", event.ID).Msg("notification dispatch failed")
		return firstErr
	}
	return nil
}
