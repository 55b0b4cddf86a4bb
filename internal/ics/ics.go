// Package ics renders a scheduled meeting as an iCalendar document, the
// write-back artifact handed to downstream calendar systems.
package ics

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
)

// Encode renders the scheduled event as an ICS document with the given
// organizer and attendees.
func Encode(event models.CalendarEvent, organizer string, attendees []string) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//amd-ai-scheduler//EN")
	cal.Children = append(cal.Children, toComponent(event, organizer, attendees))

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode event to iCal format: %w", err)
	}
	return buf.Bytes(), nil
}

func toComponent(event models.CalendarEvent, organizer string, attendees []string) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, event.UID)
	ve.Props.SetText(ical.PropSummary, event.Summary)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, event.StartTime)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, event.EndTime)

	if organizer != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.SetText(fmt.Sprintf("mailto:%s", organizer))
		ve.Props.Add(p)
	}
	for _, attendee := range attendees {
		p := ical.NewProp(ical.PropAttendee)
		p.SetText(fmt.Sprintf("mailto:%s", attendee))
		ve.Props.Add(p)
	}
	return ve
}

// NewUID creates a unique identifier for a scheduled event.
func NewUID() string {
	return uuid.New().String()
}
