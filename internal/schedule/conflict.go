package schedule

import (
	"time"

	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
)

// HasConflict reports whether the candidate slot, expanded by bufferMinutes on
// both ends, overlaps any of the participant's events. Intervals are half-open:
// a slot that ends exactly when an event starts does not conflict.
//
// Comparison happens on normalized UTC instants, so the candidate and the
// events may carry different UTC offsets.
func HasConflict(candidate models.TimeSlot, events []models.CalendarEvent, bufferMinutes int) bool {
	buffer := time.Duration(bufferMinutes) * time.Minute
	start := candidate.StartTime.UTC().Add(-buffer)
	end := candidate.EndTime.UTC().Add(buffer)

	for _, event := range events {
		eventStart := event.StartTime.UTC()
		eventEnd := event.EndTime.UTC()
		if end.After(eventStart) && start.Before(eventEnd) {
			return true
		}
	}
	return false
}
