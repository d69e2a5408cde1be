package models

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a schedule day key. Alongside the seven weekdays the schedule
// text may carry a DEFAULT block that consumers can fall back to. A day that
// is missing from a ScheduleConfig week map was simply not mentioned in the
// source text, which is distinct from a day mapped to an empty block list
// (explicitly closed).
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
	Default   Weekday = "DEFAULT"
)

// Weekdays lists every recognized day key in scan order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday, Default}

// ParseWeekday maps a string onto a recognized day key.
func ParseWeekday(s string) (Weekday, error) {
	key := Weekday(strings.ToUpper(strings.TrimSpace(s)))
	for _, d := range Weekdays {
		if d == key {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day key: %q", s)
}

// TimeBlock is an availability window within a day, whole hours only.
type TimeBlock struct {
	StartHour int `json:"start"`
	EndHour   int `json:"end"`
}

// ScheduleConfig is the derived weekly availability plus appointment duration.
type ScheduleConfig struct {
	DurationMinutes int                     `json:"duration"`
	Week            map[Weekday][]TimeBlock `json:"schedule"`
}

// DefaultDurationMinutes is used when the schedule text has no DURATION line.
const DefaultDurationMinutes = 60

// DefaultScheduleConfig is served until the first successful calendar fetch.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		DurationMinutes: DefaultDurationMinutes,
		Week: map[Weekday][]TimeBlock{
			Default: {{StartHour: 9, EndHour: 17}},
		},
	}
}

// Clone returns a deep copy so cached configs can be handed out safely.
func (c ScheduleConfig) Clone() ScheduleConfig {
	out := ScheduleConfig{DurationMinutes: c.DurationMinutes}
	if c.Week != nil {
		out.Week = make(map[Weekday][]TimeBlock, len(c.Week))
		for day, blocks := range c.Week {
			out.Week[day] = append([]TimeBlock(nil), blocks...)
		}
	}
	return out
}

// Duration returns the appointment length as a time.Duration.
func (c ScheduleConfig) Duration() time.Duration {
	minutes := c.DurationMinutes
	if minutes <= 0 {
		minutes = DefaultDurationMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// BookingRequest is the body of POST /api/book-appointment. DateTime stays a
// string until validation so that malformed input surfaces as a 400 rather
// than a decode error.
type BookingRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	DateTime string `json:"dateTime"` // ISO-8601 instant
}

// Slot identifies one booking-sized window by its wall-clock start in the
// service timezone.
type Slot struct {
	Hour   int
	Minute int
}

// MarshalJSON renders a slot as a [hour, minute] pair.
func (s Slot) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%d,%d]", s.Hour, s.Minute)), nil
}

// Before orders slots by hour then minute.
func (s Slot) Before(other Slot) bool {
	if s.Hour != other.Hour {
		return s.Hour < other.Hour
	}
	return s.Minute < other.Minute
}

// Event is the slice of a calendar event this service cares about. It is
// read from and written to the external calendar, never stored locally.
type Event struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	MeetingLink string    `json:"meetingLink,omitempty"` // may be absent; conference creation can be async
	HTMLLink    string    `json:"htmlLink,omitempty"`
}
