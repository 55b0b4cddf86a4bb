package provider

import (
	"context"
	"time"

	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
)

// StaticCalendar serves events that arrived with the scheduling request
// itself, the common case when the upstream caller already holds everyone's
// calendar data.
type StaticCalendar struct {
	events map[string][]models.CalendarEvent
}

// NewStaticCalendar builds a provider over the supplied per-participant
// event lists. The map is not copied; callers must not mutate it afterwards.
func NewStaticCalendar(events map[string][]models.CalendarEvent) *StaticCalendar {
	if events == nil {
		events = map[string][]models.CalendarEvent{}
	}
	return &StaticCalendar{events: events}
}

// GetEvents returns the participant's events overlapping [start, end). An
// unknown participant has an empty calendar.
func (s *StaticCalendar) GetEvents(ctx context.Context, participantID string, start, end time.Time) ([]models.CalendarEvent, error) {
	var out []models.CalendarEvent
	for _, ev := range s.events[participantID] {
		if ev.StartTime.Before(end) && ev.EndTime.After(start) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// MemoryPreferences is an in-memory preference store with a default set for
// unknown participants.
type MemoryPreferences struct {
	prefs    map[string]models.PreferenceSet
	defaults models.PreferenceSet
}

// NewMemoryPreferences creates a store that answers defaults for every
// participant until overridden with Set.
func NewMemoryPreferences(defaults models.PreferenceSet) *MemoryPreferences {
	return &MemoryPreferences{
		prefs:    map[string]models.PreferenceSet{},
		defaults: defaults,
	}
}

// Set stores a participant's preference profile.
func (m *MemoryPreferences) Set(participantID string, prefs models.PreferenceSet) {
	m.prefs[participantID] = prefs
}

// GetPreferences returns the stored profile, or the defaults for unknown
// participants.
func (m *MemoryPreferences) GetPreferences(participantID string) models.PreferenceSet {
	if p, ok := m.prefs[participantID]; ok {
		return p
	}
	return m.defaults
}

// DefaultPreferences is the documented fallback profile: morning and
// afternoon preferred, lunch avoided, mid seniority.
func DefaultPreferences(bufferMinutes int) models.PreferenceSet {
	return models.PreferenceSet{
		PreferredPeriods: []models.Period{models.PeriodMorning, models.PeriodAfternoon},
		BufferMinutes:    bufferMinutes,
		AvoidLunch:       true,
		SeniorityWeight:  0.5,
	}
}
