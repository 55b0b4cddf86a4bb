package provider

import (
	"context"
	"testing"
	"time"

	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
)

func TestStaticCalendarGetEvents(t *testing.T) {
	day := func(hour int) time.Time {
		return time.Date(2025, time.July, 17, hour, 0, 0, 0, time.UTC)
	}
	cal := NewStaticCalendar(map[string][]models.CalendarEvent{
		"alice@example.com": {
			{Summary: "early", StartTime: day(7), EndTime: day(8)},
			{Summary: "standup", StartTime: day(9), EndTime: day(10)},
			{Summary: "late", StartTime: day(20), EndTime: day(21)},
		},
	})

	events, err := cal.GetEvents(context.Background(), "alice@example.com", day(9), day(18))
	if err != nil {
		t.Fatalf("GetEvents() error: %v", err)
	}
	if len(events) != 1 || events[0].Summary != "standup" {
		t.Errorf("GetEvents() = %+v, want just the standup", events)
	}

	// Boundary-touching events are outside the half-open window.
	events, err = cal.GetEvents(context.Background(), "alice@example.com", day(8), day(9))
	if err != nil {
		t.Fatalf("GetEvents() error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events in an empty window", len(events))
	}

	// Unknown participants have empty calendars.
	events, err = cal.GetEvents(context.Background(), "nobody@example.com", day(0), day(24))
	if err != nil {
		t.Fatalf("GetEvents() error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("unknown participant returned %d events", len(events))
	}
}

func TestMemoryPreferences(t *testing.T) {
	store := NewMemoryPreferences(DefaultPreferences(15))

	got := store.GetPreferences("unknown@example.com")
	if !got.AvoidLunch || got.BufferMinutes != 15 || got.SeniorityWeight != 0.5 {
		t.Errorf("defaults = %+v", got)
	}
	if !got.Prefers(models.PeriodMorning) || !got.Prefers(models.PeriodAfternoon) {
		t.Error("defaults should prefer morning and afternoon")
	}
	if got.Prefers(models.PeriodEvening) {
		t.Error("defaults should not prefer evening")
	}

	custom := models.PreferenceSet{
		PreferredPeriods: []models.Period{models.PeriodEvening},
		BufferMinutes:    30,
		SeniorityWeight:  0.9,
	}
	store.Set("carol@example.com", custom)

	if got := store.GetPreferences("carol@example.com"); got.BufferMinutes != 30 || !got.Prefers(models.PeriodEvening) {
		t.Errorf("stored preferences not returned: %+v", got)
	}
	if got := store.GetPreferences("someone-else@example.com"); got.BufferMinutes != 15 {
		t.Errorf("defaults leaked an override: %+v", got)
	}
}
