package schedule

import (
	"log/slog"
	"sort"
	"time"

	"github.com/aakashak2000/amd-ai-scheduler/internal/config"
	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
)

// Evaluation decision thresholds on the personal preference score.
const (
	acceptThreshold      = 0.6
	conditionalThreshold = 0.3
)

// Generator enumerates a single participant's candidate meeting slots on a
// target date. It is deterministic: identical inputs always produce the same
// ordered output.
type Generator struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewGenerator creates a slot generator with the given scheduling parameters.
func NewGenerator(cfg config.Config, logger *slog.Logger) *Generator {
	return &Generator{cfg: cfg, logger: logger}
}

// GenerateSlots enumerates start times at the configured step across business
// hours in the participant's local zone on targetDate, skips slots that
// conflict with the participant's calendar, and attaches a personal
// preference score to each remaining slot. The result is sorted by
// preference score descending, ties broken by earlier start.
func (g *Generator) GenerateSlots(profile *models.ParticipantProfile, targetDate time.Time, durationMinutes int) []models.CandidateSlot {
	loc := profile.Location()
	year, month, day := targetDate.Date()
	dayStart := time.Date(year, month, day, g.cfg.BusinessStartHour, 0, 0, 0, loc)
	dayEnd := time.Date(year, month, day, g.cfg.BusinessEndHour, 0, 0, 0, loc)

	duration := time.Duration(durationMinutes) * time.Minute
	step := time.Duration(g.cfg.SlotStepMinutes) * time.Minute

	slots := []models.CandidateSlot{}
	for current := dayStart; !current.Add(duration).After(dayEnd); current = current.Add(step) {
		slot := models.NewTimeSlot(current, durationMinutes)
		if HasConflict(slot, profile.Calendar, profile.Preferences.BufferMinutes) {
			continue
		}
		slots = append(slots, models.CandidateSlot{
			TimeSlot:        slot,
			PreferenceScore: PreferenceScore(profile.Preferences, current),
		})
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].PreferenceScore != slots[j].PreferenceScore {
			return slots[i].PreferenceScore > slots[j].PreferenceScore
		}
		return slots[i].StartTime.Before(slots[j].StartTime)
	})

	g.logger.Debug("Generated candidate slots",
		"participant", profile.Email,
		"date", targetDate.Format("2006-01-02"),
		"count", len(slots))
	return slots
}

// PreferenceScore rates a slot start for one participant's preferences in
// [0, 1]. The start time must already be in the participant's local zone.
//
// Base 0.5, plus a single period bonus (+0.3 morning 09-12, +0.3 afternoon
// 13-17, +0.2 evening 17-20, first match wins), minus 0.4 for lunch starts
// (12-14) when the participant avoids lunch, then scaled by seniority.
func PreferenceScore(prefs models.PreferenceSet, start time.Time) float64 {
	score := 0.5
	hour := start.Hour()

	switch {
	case prefs.Prefers(models.PeriodMorning) && hour >= 9 && hour < 12:
		score += 0.3
	case prefs.Prefers(models.PeriodAfternoon) && hour >= 13 && hour < 17:
		score += 0.3
	case prefs.Prefers(models.PeriodEvening) && hour >= 17 && hour < 20:
		score += 0.2
	}

	if prefs.AvoidLunch && hour >= 12 && hour < 14 {
		score -= 0.4
	}

	score *= 0.7 + 0.6*prefs.SeniorityWeight

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// EvaluateProposal records one participant's reaction to a proposed slot. A
// hard calendar conflict is always a rejection; otherwise the decision follows
// the preference score thresholds.
func EvaluateProposal(profile *models.ParticipantProfile, slot models.TimeSlot) models.Evaluation {
	eval := models.Evaluation{
		Participant: profile.Email,
		Timezone:    profile.Timezone,
	}

	if HasConflict(slot, profile.Calendar, profile.Preferences.BufferMinutes) {
		eval.Decision = models.DecisionReject
		eval.Reason = "schedule_conflict"
		eval.PreferenceScore = 0
		return eval
	}

	score := PreferenceScore(profile.Preferences, slot.StartTime.In(profile.Location()))
	eval.PreferenceScore = score
	switch {
	case score >= acceptThreshold:
		eval.Decision = models.DecisionAccept
		eval.Reason = "good_time_match"
	case score >= conditionalThreshold:
		eval.Decision = models.DecisionConditional
		eval.Reason = "acceptable_but_not_ideal"
	default:
		eval.Decision = models.DecisionReject
		eval.Reason = "poor_time_preference"
	}
	return eval
}
