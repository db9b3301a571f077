package googleapi

import (
	"context"
	"encoding/json"
)

// Event is one calendar event to create or patch. Times are ISO 8601; the
// service applies its own timezone and reminder defaults.
type Event struct {
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Recurrence  []string `json:"recurrence,omitempty"`
}

// CreatedEvent is one entry of a batch-create response. Matching a created
// event back to its source is by summary; duplicate summaries are possible
// and callers must tolerate the first match winning.
type CreatedEvent struct {
	EventID string `json:"eventId"`
	Summary string `json:"summary"`
}

// CreateEvent creates one event and returns its id.
func (c *Client) CreateEvent(ctx context.Context, event Event) (string, error) {
	payload := map[string]interface{}{
		"summary":     event.Summary,
		"description": event.Description,
		"start_time":  event.StartTime,
		"end_time":    event.EndTime,
	}
	if len(event.Recurrence) > 0 {
		payload["recurrence"] = event.Recurrence
	}

	var result struct {
		EventID string `json:"eventId"`
	}
	if err := c.post(ctx, "/calendar/create_event", payload, &result); err != nil {
		return "", err
	}
	return result.EventID, nil
}

// DeleteEvent removes one event. Deleting an already-gone event is not an
// error on the service side.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	return c.post(ctx, "/calendar/delete_event", map[string]interface{}{"eventId": eventID}, nil)
}

// UpdateEvent patches one event with the non-empty fields of event.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, event Event) error {
	payload := map[string]interface{}{"eventId": eventID}
	if event.Summary != "" {
		payload["summary"] = event.Summary
	}
	if event.Description != "" {
		payload["description"] = event.Description
	}
	if event.StartTime != "" {
		payload["start_time"] = event.StartTime
	}
	if event.EndTime != "" {
		payload["end_time"] = event.EndTime
	}
	if event.Recurrence != nil {
		payload["recurrence"] = event.Recurrence
	}
	return c.post(ctx, "/calendar/update_event", payload, nil)
}

// ListEvents returns the raw event objects between timeMin and timeMax.
func (c *Client) ListEvents(ctx context.Context, timeMin, timeMax string) ([]json.RawMessage, error) {
	payload := map[string]interface{}{}
	if timeMin != "" {
		payload["timeMin"] = timeMin
	}
	if timeMax != "" {
		payload["timeMax"] = timeMax
	}

	var result struct {
		Events []json.RawMessage `json:"events"`
	}
	if err := c.post(ctx, "/calendar/list_events", payload, &result); err != nil {
		return nil, err
	}
	return result.Events, nil
}

// CreateEventsBatch creates many events in one request. The service reports
// per-event failures in a separate list, so a partial success still returns
// the created entries.
func (c *Client) CreateEventsBatch(ctx context.Context, events []Event) ([]CreatedEvent, error) {
	if len(events) == 0 {
		return nil, nil
	}
	tok := c.token()
	if tok == "" {
		return nil, ErrNoAccessToken
	}

	type batchEvent struct {
		Event
		AccessToken string `json:"access_token"`
	}
	batch := make([]batchEvent, 0, len(events))
	for _, event := range events {
		batch = append(batch, batchEvent{Event: event, AccessToken: tok})
	}

	var result struct {
		Created []CreatedEvent `json:"created"`
		Errors  []struct {
			ID    string `json:"id"`
			Error string `json:"error"`
		} `json:"errors"`
	}
	err := c.postRaw(ctx, "/calendar/create_events_batch", map[string]interface{}{"events": batch}, &result)
	if err != nil {
		return nil, err
	}
	return result.Created, nil
}
