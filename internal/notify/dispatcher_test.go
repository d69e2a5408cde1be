package notify

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookdesk/internal/mailer"
	"bookdesk/internal/models"
)

// recordingMailer captures every sent message; failFor keys recipients whose
// sends should error.
type recordingMailer struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor map[string]error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	if err, ok := m.failFor[msg.To]; ok {
		return err
	}
	return nil
}

func (m *recordingMailer) sentTo(addr string) *mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sent {
		if m.sent[i].To == addr {
			return &m.sent[i]
		}
	}
	return nil
}

func newTestDispatcher(t *testing.T, m Mailer) *Dispatcher {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Karachi")
	require.NoError(t, err)
	return NewDispatcher(m, "admin@example.com", loc, zerolog.New(io.Discard))
}

func testBooking() (models.BookingRequest, models.Event) {
	start := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	booking := models.BookingRequest{
		Name:     "Sana Khan",
		Email:    "sana@example.com",
		DateTime: "2025-03-10T14:00:00Z",
	}
	event := models.Event{
		ID:          "evt-1",
		Summary:     "Appointment: Sana Khan",
		Start:       start,
		End:         start.Add(time.Hour),
		MeetingLink: "https://meet.example.com/xyz",
	}
	return booking, event
}

func TestBookingConfirmedSendsBothEmails(t *testing.T) {
	m := &recordingMailer{}
	d := newTestDispatcher(t, m)
	booking, event := testBooking()

	err := d.BookingConfirmed(context.Background(), booking, event)

	require.NoError(t, err)
	require.Len(t, m.sent, 2)

	client := m.sentTo("sana@example.com")
	require.NotNil(t, client, "client email missing")
	assert.Contains(t, client.HTMLBody, "Sana Khan")
	assert.Contains(t, client.HTMLBody, "https://meet.example.com/xyz")
	// 14:00 UTC is 19:00 in Asia/Karachi.
	assert.Contains(t, client.HTMLBody, "7:00 PM")

	admin := m.sentTo("admin@example.com")
	require.NotNil(t, admin, "admin email missing")
	assert.Contains(t, admin.Subject, "Sana Khan")
	assert.Contains(t, admin.HTMLBody, "sana@example.com")
}

func TestBookingConfirmedWithoutMeetingLink(t *testing.T) {
	m := &recordingMailer{}
	d := newTestDispatcher(t, m)
	booking, event := testBooking()
	event.MeetingLink = ""

	err := d.BookingConfirmed(context.Background(), booking, event)

	require.NoError(t, err)
	client := m.sentTo("sana@example.com")
	require.NotNil(t, client)
	assert.NotContains(t, client.HTMLBody, "meet.example.com")
	assert.True(t, strings.Contains(client.HTMLBody, "will be shared with you shortly"),
		"expected placeholder text when the meeting link is absent")
}

func TestBookingConfirmedClientFailureFailsPair(t *testing.T) {
	sendErr := errors.New("mailbox full")
	m := &recordingMailer{failFor: map[string]error{"sana@example.com": sendErr}}
	d := newTestDispatcher(t, m)
	booking, event := testBooking()

	err := d.BookingConfirmed(context.Background(), booking, event)

	assert.ErrorIs(t, err, sendErr)
	// The admin send still went out; failure of one does not cancel the other.
	assert.Len(t, m.sent, 2)
}

func TestBookingConfirmedAdminFailureFailsPair(t *testing.T) {
	sendErr := errors.New("relay refused")
	m := &recordingMailer{failFor: map[string]error{"admin@example.com": sendErr}}
	d := newTestDispatcher(t, m)
	booking, event := testBooking()

	err := d.BookingConfirmed(context.Background(), booking, event)

	assert.ErrorIs(t, err, sendErr)
	assert.Len(t, m.sent, 2)
}

func TestBookingConfirmedDuplicateCallsDuplicateEmails(t *testing.T) {
	m := &recordingMailer{}
	d := newTestDispatcher(t, m)
	booking, event := testBooking()

	require.NoError(t, d.BookingConfirmed(context.Background(), booking, event))
	require.NoError(t, d.BookingConfirmed(context.Background(), booking, event))

	assert.Len(t, m.sent, 4)
}
