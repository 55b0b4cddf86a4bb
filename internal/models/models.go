package models

import (
	"fmt"
	"time"
)

// Period names a part of the working day a participant prefers for meetings.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
)

// Decision is a participant's verdict on a proposed time slot.
type Decision string

const (
	DecisionAccept      Decision = "ACCEPT"
	DecisionConditional Decision = "CONDITIONAL_ACCEPT"
	DecisionReject      Decision = "REJECT"
)

// CalendarEvent is one busy block on a participant's calendar.
// Events are immutable once loaded; timestamps always carry an explicit
// UTC offset.
type CalendarEvent struct {
	UID           string    `json:"uid,omitempty"`
	Summary       string    `json:"summary"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	AttendeeCount int       `json:"attendee_count,omitempty"`
}

// Validate rejects events whose interval is empty or inverted.
func (e CalendarEvent) Validate() error {
	if !e.EndTime.After(e.StartTime) {
		return fmt.Errorf("event %q: end time %s is not after start time %s",
			e.Summary, e.EndTime.Format(time.RFC3339), e.StartTime.Format(time.RFC3339))
	}
	return nil
}

// PreferenceSet holds a participant's soft scheduling preferences.
// It is read-only input; defaults are applied by the preference store when a
// participant has no stored profile.
type PreferenceSet struct {
	PreferredPeriods []Period `json:"preferred_periods"`
	BufferMinutes    int      `json:"buffer_minutes"`
	AvoidLunch       bool     `json:"avoid_lunch"`
	SeniorityWeight  float64  `json:"seniority_weight"`
}

// Prefers reports whether the given period is in the preferred set.
func (p PreferenceSet) Prefers(period Period) bool {
	for _, pp := range p.PreferredPeriods {
		if pp == period {
			return true
		}
	}
	return false
}

// ParticipantProfile is everything the negotiation needs to know about one
// attendee. A profile is owned by a single negotiation run and never shared
// across participants.
type ParticipantProfile struct {
	Email       string          `json:"email"`
	Timezone    string          `json:"timezone"`
	Calendar    []CalendarEvent `json:"calendar"`
	Preferences PreferenceSet   `json:"preferences"`

	location *time.Location
}

// Location resolves the profile's timezone, caching the result. An empty or
// unknown zone resolves to UTC.
func (p *ParticipantProfile) Location() *time.Location {
	if p.location != nil {
		return p.location
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil || p.Timezone == "" {
		loc = time.UTC
	}
	p.location = loc
	return loc
}

// TimeSlot is a candidate meeting interval. Two slots with identical start
// and end instants are the same candidate.
type TimeSlot struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

// NewTimeSlot builds a slot of the given duration starting at start.
func NewTimeSlot(start time.Time, durationMinutes int) TimeSlot {
	return TimeSlot{
		StartTime:       start,
		EndTime:         start.Add(time.Duration(durationMinutes) * time.Minute),
		DurationMinutes: durationMinutes,
	}
}

// Same reports value equality on the slot interval.
func (s TimeSlot) Same(other TimeSlot) bool {
	return s.StartTime.Equal(other.StartTime) && s.EndTime.Equal(other.EndTime)
}

// ScoredSlot is a consensus-feasible slot annotated by the scoring engine.
type ScoredSlot struct {
	TimeSlot
	ConsensusScore   float64 `json:"consensus_score"`
	TimezoneFairness float64 `json:"timezone_fairness"`
	OverallScore     float64 `json:"overall_score"`
}

// CandidateSlot is one participant's available slot with their personal
// preference score attached.
type CandidateSlot struct {
	TimeSlot
	PreferenceScore float64 `json:"preference_score"`
}

// Evaluation records one participant's reaction to a proposed slot.
type Evaluation struct {
	Participant     string   `json:"participant"`
	Decision        Decision `json:"decision"`
	Reason          string   `json:"reason"`
	PreferenceScore float64  `json:"preference_score"`
	Timezone        string   `json:"timezone"`
}

// Conflict names a participant whose calendar blocks a proposed slot.
type Conflict struct {
	Participant string `json:"participant"`
	Reason      string `json:"reason"`
	Summary     string `json:"summary,omitempty"`
}

// MeetingRequest is the immutable input to one negotiation run.
type MeetingRequest struct {
	RequestID       string                `json:"request_id"`
	Subject         string                `json:"subject"`
	Organizer       string                `json:"organizer"`
	Location        string                `json:"location,omitempty"`
	Participants    []*ParticipantProfile `json:"participants"`
	DurationMinutes int                   `json:"duration_minutes"`
	TargetDate      time.Time             `json:"target_date"`
	RequestedSlot   *TimeSlot             `json:"requested_slot,omitempty"`
}

// Validate rejects malformed requests before any slot generation begins.
func (r MeetingRequest) Validate() error {
	if len(r.Participants) == 0 {
		return fmt.Errorf("meeting request %s: no participants", r.RequestID)
	}
	if r.DurationMinutes <= 0 {
		return fmt.Errorf("meeting request %s: invalid duration %d minutes", r.RequestID, r.DurationMinutes)
	}
	if r.TargetDate.IsZero() {
		return fmt.Errorf("meeting request %s: no target date", r.RequestID)
	}
	for _, p := range r.Participants {
		if p.Email == "" {
			return fmt.Errorf("meeting request %s: participant with empty email", r.RequestID)
		}
		for _, ev := range p.Calendar {
			if err := ev.Validate(); err != nil {
				return fmt.Errorf("meeting request %s: participant %s: %w", r.RequestID, p.Email, err)
			}
		}
	}
	return nil
}

// NegotiationResult is the terminal output of one negotiation. A failed
// negotiation carries a reason and no scheduled slot; conflicts and
// no-availability outcomes are represented here as data, never as errors.
type NegotiationResult struct {
	Success       bool         `json:"success"`
	ScheduledSlot *ScoredSlot  `json:"scheduled_slot,omitempty"`
	Alternatives  []ScoredSlot `json:"alternatives"`
	Evaluations   []Evaluation `json:"evaluations,omitempty"`
	Conflicts     []Conflict   `json:"conflicts,omitempty"`
	FailureReason string       `json:"failure_reason,omitempty"`
}
