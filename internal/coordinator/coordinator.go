// Package coordinator drives the end-to-end scheduling flow: transform the
// inbound request, build participant profiles from the calendar and
// preference collaborators, run the negotiation, and assemble the final
// outcome including the write-back of the scheduled event.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aakashak2000/amd-ai-scheduler/internal/config"
	"github.com/aakashak2000/amd-ai-scheduler/internal/ics"
	"github.com/aakashak2000/amd-ai-scheduler/internal/mailparse"
	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
	"github.com/aakashak2000/amd-ai-scheduler/internal/oracle"
	"github.com/aakashak2000/amd-ai-scheduler/internal/provider"
	"github.com/aakashak2000/amd-ai-scheduler/internal/schedule"
)

// Attendee is one meeting participant as named by the inbound request.
// Events and preferences are optional; missing data is resolved through the
// calendar provider and preference store.
type Attendee struct {
	Email       string                 `json:"email"`
	Timezone    string                 `json:"timezone,omitempty"`
	Events      []models.CalendarEvent `json:"events,omitempty"`
	Preferences *models.PreferenceSet  `json:"preferences,omitempty"`
}

// Request is the inbound scheduling call. Target date, requested time, and
// duration may be stated explicitly or left for extraction from the email
// content.
type Request struct {
	RequestID       string     `json:"request_id"`
	From            string     `json:"from"`
	Subject         string     `json:"subject"`
	Location        string     `json:"location,omitempty"`
	EmailContent    string     `json:"email_content,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	TargetDate      string     `json:"target_date,omitempty"`     // 2006-01-02
	RequestedTime   string     `json:"requested_time,omitempty"`  // 15:04, in the default timezone
	Attendees       []Attendee `json:"attendees"`
}

// AuditEntry is one step of the request-scoped negotiation trail. Entries are
// ordered and deterministic; there is no global accumulator.
type AuditEntry struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Outcome is the assembled result of one scheduling call. Calendars holds
// every participant's calendar with the scheduled event appended on success,
// or the original events unchanged on failure.
type Outcome struct {
	RequestID      string                            `json:"request_id"`
	Subject        string                            `json:"subject"`
	Result         models.NegotiationResult          `json:"result"`
	ScheduledEvent *models.CalendarEvent             `json:"scheduled_event,omitempty"`
	Calendars      map[string][]models.CalendarEvent `json:"calendars"`
	Audit          []AuditEntry                      `json:"audit"`
}

// Coordinator owns no algorithmic logic; it sequences the collaborators and
// the negotiator and assembles the result.
type Coordinator struct {
	cfg        config.Config
	logger     *slog.Logger
	calendars  provider.CalendarProvider
	prefs      provider.PreferenceStore
	negotiator *schedule.Negotiator

	// Now anchors relative date extraction; overridable in tests.
	Now func() time.Time
}

// New wires a coordinator with its collaborators. A nil oracle selects the
// deterministic fallback.
func New(cfg config.Config, logger *slog.Logger, calendars provider.CalendarProvider, prefs provider.PreferenceStore, orc oracle.Oracle) *Coordinator {
	return &Coordinator{
		cfg:        cfg,
		logger:     logger,
		calendars:  calendars,
		prefs:      prefs,
		negotiator: schedule.NewNegotiator(cfg, logger, orc),
		Now:        time.Now,
	}
}

// Schedule runs one scheduling call end to end. Collaborator unavailability
// and invalid input return errors; every negotiation outcome, including
// failure to find a slot, is data in the Outcome.
func (c *Coordinator) Schedule(ctx context.Context, req Request) (*Outcome, error) {
	if len(req.Attendees) == 0 {
		return nil, fmt.Errorf("request %s: no attendees", req.RequestID)
	}

	audit := []AuditEntry{}

	meetingReq, err := c.transformRequest(req)
	if err != nil {
		return nil, err
	}
	audit = append(audit, AuditEntry{
		Stage: "transform",
		Message: fmt.Sprintf("target date %s, duration %d mins, explicit time: %v",
			meetingReq.TargetDate.Format("2006-01-02"), meetingReq.DurationMinutes, meetingReq.RequestedSlot != nil),
	})

	if err := c.buildProfiles(ctx, req, meetingReq); err != nil {
		return nil, err
	}
	audit = append(audit, AuditEntry{
		Stage:   "profiles",
		Message: fmt.Sprintf("built %d participant profiles", len(meetingReq.Participants)),
	})

	result, err := c.negotiator.Negotiate(ctx, *meetingReq)
	if err != nil {
		return nil, fmt.Errorf("request %s: negotiation failed: %w", req.RequestID, err)
	}
	audit = append(audit, AuditEntry{
		Stage:   "negotiate",
		Message: negotiationSummary(result),
	})

	outcome := &Outcome{
		RequestID: req.RequestID,
		Subject:   req.Subject,
		Result:    result,
		Calendars: make(map[string][]models.CalendarEvent, len(meetingReq.Participants)),
	}

	for _, p := range meetingReq.Participants {
		outcome.Calendars[p.Email] = append([]models.CalendarEvent(nil), p.Calendar...)
	}

	if result.Success {
		event := models.CalendarEvent{
			UID:           ics.NewUID(),
			Summary:       meetingReq.Subject,
			StartTime:     result.ScheduledSlot.StartTime,
			EndTime:       result.ScheduledSlot.EndTime,
			AttendeeCount: len(meetingReq.Participants),
		}
		for email := range outcome.Calendars {
			outcome.Calendars[email] = append(outcome.Calendars[email], event)
		}
		outcome.ScheduledEvent = &event
		audit = append(audit, AuditEntry{
			Stage:   "assemble",
			Message: fmt.Sprintf("scheduled event written to %d calendars", len(outcome.Calendars)),
		})
	} else {
		audit = append(audit, AuditEntry{
			Stage:   "assemble",
			Message: "calendars passed through unchanged",
		})
	}

	outcome.Audit = audit
	return outcome, nil
}

// transformRequest resolves target date, duration, and the optional explicit
// requested time, falling back to email-content extraction for anything the
// request leaves unstated.
func (c *Coordinator) transformRequest(req Request) (*models.MeetingRequest, error) {
	loc, err := time.LoadLocation(c.cfg.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid default timezone %q: %w", c.cfg.DefaultTimezone, err)
	}

	var parsed *mailparse.Parsed
	parse := func() *mailparse.Parsed {
		if parsed == nil {
			p := mailparse.Parse(req.EmailContent, c.Now().In(loc))
			parsed = &p
		}
		return parsed
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = parse().DurationMinutes
	}

	var targetDate time.Time
	if req.TargetDate != "" {
		targetDate, err = time.ParseInLocation("2006-01-02", req.TargetDate, loc)
		if err != nil {
			return nil, fmt.Errorf("request %s: invalid target date %q: %w", req.RequestID, req.TargetDate, err)
		}
	} else {
		targetDate = parse().TargetDate
	}

	subject := req.Subject
	if subject == "" {
		subject = "Meeting"
	}

	meetingReq := &models.MeetingRequest{
		RequestID:       req.RequestID,
		Subject:         subject,
		Organizer:       req.From,
		Location:        req.Location,
		DurationMinutes: duration,
		TargetDate:      targetDate,
	}

	switch {
	case req.RequestedTime != "":
		t, err := time.Parse("15:04", req.RequestedTime)
		if err != nil {
			return nil, fmt.Errorf("request %s: invalid requested time %q: %w", req.RequestID, req.RequestedTime, err)
		}
		start := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		slot := models.NewTimeSlot(start, duration)
		meetingReq.RequestedSlot = &slot
	case req.EmailContent != "" && parse().HasTime:
		p := parse()
		start := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), p.RequestedHour, p.RequestedMinute, 0, 0, loc)
		slot := models.NewTimeSlot(start, duration)
		meetingReq.RequestedSlot = &slot
	}

	return meetingReq, nil
}

// buildProfiles fetches every attendee's events and preferences in parallel.
// A provider failure for any participant aborts the negotiation naming them:
// a participant is never silently dropped or treated as unconstrained.
func (c *Coordinator) buildProfiles(ctx context.Context, req Request, meetingReq *models.MeetingRequest) error {
	profiles := make([]*models.ParticipantProfile, len(req.Attendees))
	seen := make(map[string]bool, len(req.Attendees))

	g, gctx := errgroup.WithContext(ctx)
	for i, att := range req.Attendees {
		if att.Email == "" {
			return fmt.Errorf("request %s: attendee %d has no email", req.RequestID, i)
		}
		if seen[att.Email] {
			continue
		}
		seen[att.Email] = true

		g.Go(func() error {
			tz := att.Timezone
			if tz == "" {
				tz = c.cfg.DefaultTimezone
			}
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("participant %s: invalid timezone %q: %w", att.Email, tz, err)
			}

			prefs := c.prefs.GetPreferences(att.Email)
			if att.Preferences != nil {
				prefs = *att.Preferences
			}

			year, month, day := meetingReq.TargetDate.Date()
			dayStart := time.Date(year, month, day, 0, 0, 0, 0, loc)
			dayEnd := dayStart.AddDate(0, 0, 1)

			fetchCtx, cancel := context.WithTimeout(gctx, c.cfg.ProviderTimeout.Std())
			defer cancel()
			events, err := c.calendars.GetEvents(fetchCtx, att.Email, dayStart, dayEnd)
			if err != nil {
				return fmt.Errorf("participant %s: calendar unavailable: %w", att.Email, err)
			}

			profiles[i] = &models.ParticipantProfile{
				Email:       att.Email,
				Timezone:    tz,
				Calendar:    events,
				Preferences: prefs,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, p := range profiles {
		if p != nil {
			meetingReq.Participants = append(meetingReq.Participants, p)
		}
	}
	return nil
}

func negotiationSummary(result models.NegotiationResult) string {
	if result.Success {
		return fmt.Sprintf("scheduled at %s with %d alternatives considered",
			result.ScheduledSlot.StartTime.Format("2006-01-02 15:04 MST"), len(result.Alternatives))
	}
	return fmt.Sprintf("failed: %s", result.FailureReason)
}
