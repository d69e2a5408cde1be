package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bookdesk/internal/models"
)

type fakeSource struct {
	events []models.Event
	err    error
	from   time.Time
	to     time.Time
}

func (f *fakeSource) EventsBetween(_ context.Context, from, to time.Time) ([]models.Event, error) {
	f.from, f.to = from, to
	return f.events, f.err
}

func newTestService(t *testing.T, src EventSource) *Service {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Karachi")
	require.NoError(t, err)
	return NewService(src, loc, zerolog.New(io.Discard))
}

func TestWriteMonthInvalidMonth(t *testing.T) {
	svc := newTestService(t, &fakeSource{})

	for _, bad := range []string{"", "2025", "03-2025", "2025-13"} {
		err := svc.WriteMonth(context.Background(), bad, io.Discard)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestWriteMonthCoversWholeMonth(t *testing.T) {
	src := &fakeSource{}
	svc := newTestService(t, src)

	require.NoError(t, svc.WriteMonth(context.Background(), "2025-03", io.Discard))

	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, svc.location), src.from)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, svc.location), src.to)
}

func TestWriteMonthUpstreamFailure(t *testing.T) {
	svc := newTestService(t, &fakeSource{err: errors.New("calendar 503")})

	err := svc.WriteMonth(context.Background(), "2025-03", io.Discard)
	assert.Error(t, err)
}

func TestWriteMonthWorkbookContents(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Karachi")
	require.NoError(t, err)

	src := &fakeSource{events: []models.Event{
		{
			Summary:     "Appointment: Sana Khan",
			Start:       time.Date(2025, 3, 10, 9, 0, 0, 0, loc),
			End:         time.Date(2025, 3, 10, 10, 0, 0, 0, loc),
			MeetingLink: "https://meet.example.com/xyz",
		},
		{
			Summary: "Appointment: Ali Raza",
			Start:   time.Date(2025, 3, 12, 14, 30, 0, 0, loc),
			End:     time.Date(2025, 3, 12, 15, 30, 0, 0, loc),
		},
	}}
	svc := newTestService(t, src)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteMonth(context.Background(), "2025-03", &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings 2025-03")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Date", "Start", "End", "Summary", "Meeting Link"}, rows[0])
	assert.Equal(t, []string{"2025-03-10", "09:00", "10:00", "Appointment: Sana Khan", "https://meet.example.com/xyz"}, rows[1])
	// Trailing empty cells may be trimmed by GetRows.
	assert.Equal(t, []string{"2025-03-12", "14:30", "15:30", "Appointment: Ali Raza"}, rows[2][:4])
}

func TestWriteMonthEmptyMonth(t *testing.T) {
	svc := newTestService(t, &fakeSource{})

	var buf bytes.Buffer
	require.NoError(t, svc.WriteMonth(context.Background(), "2025-06", &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings 2025-06")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
