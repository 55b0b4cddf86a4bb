// Package caldav implements the calendar provider contract against a CalDAV
// server, and publishes scheduled meetings back to it.
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"github.com/aakashak2000/amd-ai-scheduler/internal/ics"
	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
)

// customTransport handles adding Basic Auth and custom headers to requests.
type customTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "amd-ai-scheduler/1.0")
	return t.Transport.RoundTrip(req)
}

// Client talks to one CalDAV calendar, both to read a participant's busy
// blocks and to write the scheduled meeting back.
type Client struct {
	caldavClient *caldav.Client
	webdavClient *webdav.Client
	logger       *slog.Logger
	endpoint     string
	calendarURL  string
}

// NewClient creates a CalDAV client and locates the named calendar under the
// authenticated user's calendar home.
func NewClient(logger *slog.Logger, endpoint, username, password, calendarName string) (*Client, error) {
	transport := &customTransport{
		Username:  username,
		Password:  password,
		Transport: http.DefaultTransport,
	}
	httpClient := &http.Client{Transport: transport}

	caldavClient, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	webdavClient, err := webdav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create webdav client: %w", err)
	}

	c := &Client{
		caldavClient: caldavClient,
		webdavClient: webdavClient,
		logger:       logger,
		endpoint:     endpoint,
	}

	logger.Info("Finding CalDAV calendar", "calendarName", calendarName)
	calendarURL, err := c.findCalendar(context.Background(), calendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", calendarName, err)
	}
	c.calendarURL = calendarURL
	logger.Info("Successfully found CalDAV calendar", "url", calendarURL)

	return c, nil
}

// GetEvents queries the calendar for events inside [start, end) and converts
// them to the internal model. The participant ID is informational only; a
// CalDAV client is already scoped to one person's calendar.
func (c *Client) GetEvents(ctx context.Context, participantID string, start, end time.Time) ([]models.CalendarEvent, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: ical.CompCalendar,
			Comps: []caldav.CalendarCompRequest{{
				Name:     ical.CompEvent,
				AllProps: true,
			}},
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: start,
				End:   end,
			}},
		},
	}

	objects, err := c.caldavClient.QueryCalendar(ctx, c.calendarPath(), query)
	if err != nil {
		return nil, fmt.Errorf("calendar query failed for %s: %w", participantID, err)
	}

	var events []models.CalendarEvent
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, comp := range obj.Data.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			event, err := toInternalEvent(comp)
			if err != nil {
				c.logger.Warn("Skipping unparseable event", "path", obj.Path, "error", err)
				continue
			}
			events = append(events, event)
		}
	}

	c.logger.Info("Fetched events from CalDAV", "participant", participantID, "count", len(events))
	return events, nil
}

// PublishEvent writes the scheduled meeting to the calendar as a new ICS
// resource.
func (c *Client) PublishEvent(ctx context.Context, event models.CalendarEvent, organizer string, attendees []string) error {
	c.logger.Debug("Publishing scheduled event", "summary", event.Summary, "uid", event.UID)

	data, err := ics.Encode(event, organizer, attendees)
	if err != nil {
		return err
	}

	// The event path must be relative to the endpoint for the webdav client.
	eventPath := path.Join(c.calendarPath(), fmt.Sprintf("%s.ics", event.UID))
	writer, err := c.webdavClient.Create(ctx, eventPath)
	if err != nil {
		return fmt.Errorf("failed to create event on CalDAV server: %w", err)
	}
	defer writer.Close()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write event to CalDAV server: %w", err)
	}

	c.logger.Info("Published scheduled event to CalDAV", "summary", event.Summary)
	return nil
}

func (c *Client) calendarPath() string {
	return strings.TrimPrefix(c.calendarURL, c.endpoint)
}

func toInternalEvent(comp *ical.Component) (models.CalendarEvent, error) {
	event := ical.Event{Component: comp}

	start, err := event.DateTimeStart(time.UTC)
	if err != nil {
		return models.CalendarEvent{}, fmt.Errorf("bad DTSTART: %w", err)
	}
	end, err := event.DateTimeEnd(time.UTC)
	if err != nil {
		return models.CalendarEvent{}, fmt.Errorf("bad DTEND: %w", err)
	}

	out := models.CalendarEvent{StartTime: start, EndTime: end}
	if p := comp.Props.Get(ical.PropUID); p != nil {
		out.UID = p.Value
	}
	if p := comp.Props.Get(ical.PropSummary); p != nil {
		out.Summary = p.Value
	}
	out.AttendeeCount = len(comp.Props.Values(ical.PropAttendee))
	if err := out.Validate(); err != nil {
		return models.CalendarEvent{}, err
	}
	return out, nil
}

// findCalendar discovers the user's calendars and returns the URL for the one with the matching name.
func (c *Client) findCalendar(ctx context.Context, name string) (string, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if cal.Name == name {
			return fmt.Sprintf("%s%s", strings.TrimSuffix(c.endpoint, "/"), cal.Path), nil
		}
	}

	return "", fmt.Errorf("no calendar found with name '%s'", name)
}
