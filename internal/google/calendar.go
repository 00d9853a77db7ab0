package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// EventDateTime is Google Calendar's start/end representation. All-day events
// carry only Date; timed events carry DateTime.
type EventDateTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type EventAttendee struct {
	Email          string `json:"email,omitempty"`
	DisplayName    string `json:"displayName,omitempty"`
	Organizer      bool   `json:"organizer,omitempty"`
	Resource       bool   `json:"resource,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"`
}

type CalendarEvent struct {
	ID          string          `json:"id"`
	Status      string          `json:"status,omitempty"`
	Summary     string          `json:"summary,omitempty"`
	Description string          `json:"description,omitempty"`
	Start       *EventDateTime  `json:"start,omitempty"`
	End         *EventDateTime  `json:"end,omitempty"`
	Attendees   []EventAttendee `json:"attendees,omitempty"`
}

// Timed reports whether the event has concrete start and end date-times.
// All-day events (date only) are excluded from sync.
func (e *CalendarEvent) Timed() bool {
	return e.Start != nil && e.Start.DateTime != "" && e.End != nil && e.End.DateTime != ""
}

type eventsResponse struct {
	Items []CalendarEvent `json:"items"`
}

// ListEvents fetches the user's primary-calendar events in [timeMin, timeMax),
// expanded to single instances. Only the first page is fetched.
func (c *Client) ListEvents(ctx context.Context, accessToken string, timeMin, timeMax time.Time, maxResults int) ([]CalendarEvent, error) {
	params := url.Values{
		"timeMin":      {timeMin.Format(time.RFC3339)},
		"timeMax":      {timeMax.Format(time.RFC3339)},
		"singleEvents": {"true"},
		"maxResults":   {strconv.Itoa(maxResults)},
		"orderBy":      {"startTime"},
	}

	body, err := c.getJSON(ctx, c.endpoints.CalendarEvents+"?"+params.Encode(), accessToken)
	if err != nil {
		return nil, err
	}

	var resp eventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode calendar events response: %w", err)
	}
	return resp.Items, nil
}
