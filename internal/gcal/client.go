// Package gcal fetches and normalizes Google Calendar events for a billing
// period. All configured calendars are read; events carry their calendar of
// origin so classification rules can key on the (calendar, title) pair.
package gcal

import (
	"context"
	"fmt"
	"math"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"invrec/internal/model"
)

// Client wraps the Calendar API for period fetches.
type Client struct {
	service *calendar.Service
}

// NewClient builds an authenticated client from the stored token.
func NewClient(ctx context.Context) (*Client, error) {
	ts, err := TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	service, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	return &Client{service: service}, nil
}

// ListCalendars returns the IDs of all calendars on the account.
func (c *Client) ListCalendars() ([]string, error) {
	list, err := c.service.CalendarList.List().Do()
	if err != nil {
		return nil, fmt.Errorf("listing calendars: %w", err)
	}
	var ids []string
	for _, item := range list.Items {
		ids = append(ids, item.Id)
	}
	return ids, nil
}

// FetchEvents retrieves all events in [from, to] from the given calendars,
// expanded to single instances.
func (c *Client) FetchEvents(calendarIDs []string, from, to time.Time) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent
	for _, id := range calendarIDs {
		list, err := c.service.Events.List(id).
			ShowDeleted(false).
			SingleEvents(true).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			OrderBy("startTime").
			Do()
		if err != nil {
			return nil, fmt.Errorf("retrieving events from %s: %w", id, err)
		}
		for _, item := range list.Items {
			ev, err := normalize(item, id)
			if err != nil {
				fmt.Printf("Skipping event in %s: %v\n", id, err)
				continue
			}
			events = append(events, ev)
		}
	}
	return events, nil
}

// normalize converts an API event to the internal form. Events with a Date
// instead of a DateTime are all-day; their end date is exclusive per the
// calendar API.
func normalize(item *calendar.Event, calendarID string) (model.CalendarEvent, error) {
	title := item.Summary
	if title == "" {
		title = "(No title)"
	}

	if item.Start == nil || item.End == nil {
		return model.CalendarEvent{}, fmt.Errorf("event %q has no start or end", title)
	}

	if item.Start.Date != "" {
		start, err := time.Parse("2006-01-02", item.Start.Date)
		if err != nil {
			return model.CalendarEvent{}, fmt.Errorf("bad all-day start in %q: %w", title, err)
		}
		end, err := time.Parse("2006-01-02", item.End.Date)
		if err != nil {
			return model.CalendarEvent{}, fmt.Errorf("bad all-day end in %q: %w", title, err)
		}
		return model.CalendarEvent{
			CalendarID: calendarID,
			Title:      title,
			Start:      start,
			End:        end,
			AllDay:     true,
		}, nil
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return model.CalendarEvent{}, fmt.Errorf("bad start time in %q: %w", title, err)
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return model.CalendarEvent{}, fmt.Errorf("bad end time in %q: %w", title, err)
	}
	return model.CalendarEvent{
		CalendarID:      calendarID,
		Title:           title,
		Start:           start,
		End:             end,
		DurationMinutes: int64(math.Round(end.Sub(start).Minutes())),
	}, nil
}
