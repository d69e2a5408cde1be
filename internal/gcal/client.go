// Package gcal wraps the Google Calendar API for the booking calendar.
package gcal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"bookdesk/internal/models"
)

// Client talks to a single Google calendar identified by calendarID.
type Client struct {
	svc        *calendar.Service
	calendarID string
	location   *time.Location
	logger     zerolog.Logger
}

// NewClient builds a calendar client from service-account credentials JSON.
func NewClient(ctx context.Context, credentialsJSON []byte, calendarID string, loc *time.Location, logger zerolog.Logger) (*Client, error) {
	svc, err := calendar.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &Client{
		svc:        svc,
		calendarID: calendarID,
		location:   loc,
		logger:     logger.With().Str("component", "gcal").Logger(),
	}, nil
}

// CalendarDescription returns the calendar's free-text description, which
// carries the weekly schedule definition.
func (c *Client) CalendarDescription(ctx context.Context) (string, error) {
	cal, err := c.svc.Calendars.Get(c.calendarID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get calendar %s: %w", c.calendarID, err)
	}
	return cal.Description, nil
}

// EventsBetween lists the timed events intersecting [from, to). All-day
// events carry no time component and are skipped.
func (c *Client) EventsBetween(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	call := c.svc.Events.List(c.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	var events []models.Event
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			ev, ok := c.convertEvent(item)
			if !ok {
				continue
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// HasOverlap reports whether any event intersects [start, end). The query is
// capped at one result; the answer is all the booking flow needs.
func (c *Client) HasOverlap(ctx context.Context, start, end time.Time) (bool, error) {
	page, err := c.svc.Events.List(c.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("check overlap: %w", err)
	}
	return len(page.Items) > 0, nil
}

// InsertEvent creates the event with an auto-generated video conference. The
// returned meeting link may be empty when the provider creates the conference
// asynchronously; callers must treat it as optional.
func (c *Client) InsertEvent(ctx context.Context, ev models.Event) (models.Event, error) {
	event := &calendar.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start: &calendar.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: c.location.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: c.location.String(),
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	if err != nil {
		return models.Event{}, fmt.Errorf("insert event: %w", err)
	}

	out, _ := c.convertEvent(created)
	if out.MeetingLink == "" {
		c.logger.Debug().Str("event_id", out.ID).Msg("meeting link not present on insert response")
	}
	return out, nil
}

func (c *Client) convertEvent(item *calendar.Event) (models.Event, bool) {
	if item.Start == nil || item.End == nil || item.Start.DateTime == "" || item.End.DateTime == "" {
		return models.Event{}, false
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		c.logger.Warn().Str("event_id", item.Id).Err(err).Msg("unparseable event start")
		return models.Event{}, false
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		c.logger.Warn().Str("event_id", item.Id).Err(err).Msg("unparseable event end")
		return models.Event{}, false
	}

	return models.Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Start:       start,
		End:         end,
		MeetingLink: meetingLink(item),
		HTMLLink:    item.HtmlLink,
	}, true
}

// meetingLink prefers the legacy hangout link and falls back to the first
// video entry point of the conference data.
func meetingLink(item *calendar.Event) string {
	if item.HangoutLink != "" {
		return item.HangoutLink
	}
	if item.ConferenceData == nil {
		return ""
	}
	for _, ep := range item.ConferenceData.EntryPoints {
		if ep.EntryPointType == "video" && ep.Uri != "" {
			return ep.Uri
		}
	}
	return ""
}
