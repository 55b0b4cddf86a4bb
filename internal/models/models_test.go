package models

import (
	"testing"
	"time"
)

func TestParticipantProfileLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		want     string
	}{
		{"valid zone", "America/New_York", "America/New_York"},
		{"empty falls back to UTC", "", "UTC"},
		{"unknown falls back to UTC", "Not/AZone", "UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ParticipantProfile{Timezone: tt.timezone}
			if got := p.Location().String(); got != tt.want {
				t.Errorf("Location() = %q, want %q", got, tt.want)
			}
			// Cached on second call.
			if p.Location() != p.Location() {
				t.Error("Location() not cached")
			}
		})
	}
}

func TestTimeSlotSame(t *testing.T) {
	utc := time.Date(2025, time.July, 17, 10, 0, 0, 0, time.UTC)
	ist := utc.In(time.FixedZone("IST", 5*3600+1800))

	a := NewTimeSlot(utc, 30)
	b := NewTimeSlot(ist, 30)
	if !a.Same(b) {
		t.Error("equal instants in different zones are not Same")
	}
	if a.Same(NewTimeSlot(utc, 45)) {
		t.Error("slots of different lengths are Same")
	}
	if a.Same(NewTimeSlot(utc.Add(time.Minute), 30)) {
		t.Error("slots with different starts are Same")
	}
}

func TestCalendarEventValidate(t *testing.T) {
	start := time.Date(2025, time.July, 17, 10, 0, 0, 0, time.UTC)

	if err := (CalendarEvent{Summary: "ok", StartTime: start, EndTime: start.Add(time.Hour)}).Validate(); err != nil {
		t.Errorf("valid event rejected: %v", err)
	}
	if err := (CalendarEvent{Summary: "empty", StartTime: start, EndTime: start}).Validate(); err == nil {
		t.Error("empty interval accepted")
	}
	if err := (CalendarEvent{Summary: "inverted", StartTime: start, EndTime: start.Add(-time.Hour)}).Validate(); err == nil {
		t.Error("inverted interval accepted")
	}
}

func TestMeetingRequestValidate(t *testing.T) {
	date := time.Date(2025, time.July, 17, 0, 0, 0, 0, time.UTC)
	valid := MeetingRequest{
		RequestID:       "r",
		Participants:    []*ParticipantProfile{{Email: "a@example.com"}},
		DurationMinutes: 30,
		TargetDate:      date,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*MeetingRequest)
	}{
		{"no participants", func(r *MeetingRequest) { r.Participants = nil }},
		{"zero duration", func(r *MeetingRequest) { r.DurationMinutes = 0 }},
		{"zero date", func(r *MeetingRequest) { r.TargetDate = time.Time{} }},
		{"empty email", func(r *MeetingRequest) { r.Participants = []*ParticipantProfile{{}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			if err := req.Validate(); err == nil {
				t.Error("Validate() accepted an invalid request")
			}
		})
	}
}
