package schedule

import (
	"testing"
	"time"

	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
)

func slotAt(t *testing.T, start string, durationMinutes int) models.TimeSlot {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, start)
	if err != nil {
		t.Fatalf("bad test time %q: %v", start, err)
	}
	return models.NewTimeSlot(ts, durationMinutes)
}

func eventAt(t *testing.T, start, end string) models.CalendarEvent {
	t.Helper()
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		t.Fatalf("bad test time %q: %v", start, err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		t.Fatalf("bad test time %q: %v", end, err)
	}
	return models.CalendarEvent{Summary: "busy", StartTime: s, EndTime: e}
}

func TestHasConflict(t *testing.T) {
	tests := []struct {
		name    string
		slot    models.TimeSlot
		events  []models.CalendarEvent
		buffer  int
		want    bool
	}{
		{
			name:   "no events",
			slot:   slotAt(t, "2025-07-17T10:00:00+05:30", 30),
			events: nil,
			want:   false,
		},
		{
			name: "direct overlap",
			slot: slotAt(t, "2025-07-17T10:00:00+05:30", 30),
			events: []models.CalendarEvent{
				eventAt(t, "2025-07-17T10:15:00+05:30", "2025-07-17T11:00:00+05:30"),
			},
			want: true,
		},
		{
			name: "event fully covers slot",
			slot: slotAt(t, "2025-07-17T10:00:00+05:30", 30),
			events: []models.CalendarEvent{
				eventAt(t, "2025-07-17T09:00:00+05:30", "2025-07-17T12:00:00+05:30"),
			},
			want: true,
		},
		{
			name: "touching boundaries do not conflict",
			slot: slotAt(t, "2025-07-17T10:00:00+05:30", 30),
			events: []models.CalendarEvent{
				eventAt(t, "2025-07-17T09:00:00+05:30", "2025-07-17T10:00:00+05:30"),
				eventAt(t, "2025-07-17T10:30:00+05:30", "2025-07-17T11:00:00+05:30"),
			},
			want: false,
		},
		{
			name: "buffer turns adjacency into conflict",
			slot: slotAt(t, "2025-07-17T10:00:00+05:30", 30),
			events: []models.CalendarEvent{
				eventAt(t, "2025-07-17T09:00:00+05:30", "2025-07-17T10:00:00+05:30"),
			},
			buffer: 15,
			want:   true,
		},
		{
			name: "buffer respected on trailing side",
			slot: slotAt(t, "2025-07-17T10:00:00+05:30", 30),
			events: []models.CalendarEvent{
				eventAt(t, "2025-07-17T10:40:00+05:30", "2025-07-17T11:00:00+05:30"),
			},
			buffer: 15,
			want:   true,
		},
		{
			name: "mixed offsets compare on instants",
			// 10:00 IST is 04:30 UTC; this event overlaps it.
			slot: slotAt(t, "2025-07-17T10:00:00+05:30", 30),
			events: []models.CalendarEvent{
				eventAt(t, "2025-07-17T04:45:00Z", "2025-07-17T05:30:00Z"),
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasConflict(tt.slot, tt.events, tt.buffer); got != tt.want {
				t.Errorf("HasConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasConflictOrderInvariant(t *testing.T) {
	slot := slotAt(t, "2025-07-17T10:00:00+05:30", 30)
	events := []models.CalendarEvent{
		eventAt(t, "2025-07-17T09:00:00+05:30", "2025-07-17T09:30:00+05:30"),
		eventAt(t, "2025-07-17T10:15:00+05:30", "2025-07-17T10:45:00+05:30"),
		eventAt(t, "2025-07-17T16:00:00+05:30", "2025-07-17T17:00:00+05:30"),
	}
	reversed := []models.CalendarEvent{events[2], events[1], events[0]}

	if HasConflict(slot, events, 0) != HasConflict(slot, reversed, 0) {
		t.Error("HasConflict changed under event reordering")
	}
}
