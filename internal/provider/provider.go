// Package provider declares the external collaborator contracts the
// negotiation core consumes: calendar event sources and preference storage.
// The core never implements these; it is handed an implementation at startup.
package provider

import (
	"context"
	"time"

	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
)

// CalendarProvider supplies a participant's busy blocks for a date range.
// Returned events must carry explicit UTC-offset timestamps.
type CalendarProvider interface {
	GetEvents(ctx context.Context, participantID string, start, end time.Time) ([]models.CalendarEvent, error)
}

// PreferenceStore supplies a participant's preference profile, falling back
// to a documented default set for unknown participants.
type PreferenceStore interface {
	GetPreferences(participantID string) models.PreferenceSet
}
