// Package mailparse extracts scheduling details from free-form meeting
// request text: a target date, an optional explicit time, and a duration.
// It sits upstream of the negotiation core and feeds MeetingRequest
// construction; the core itself never sees raw text.
package mailparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Parsed is the structured output of one parse. TargetDate is always set
// (defaulting to tomorrow); RequestedTime is zero-valued when the text names
// no explicit time.
type Parsed struct {
	TargetDate      time.Time
	RequestedHour   int
	RequestedMinute int
	HasTime         bool
	DurationMinutes int
	Urgency         string
}

const defaultDurationMinutes = 30

var (
	clockTime   = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	hourTime    = regexp.MustCompile(`\b(?:at\s+)?(\d{1,2})\s*(am|pm)\b`)
	minutesSpec = regexp.MustCompile(`\b(\d+)\s*(?:minutes?|mins?)\b`)
	hoursSpec   = regexp.MustCompile(`\b(\d+)\s*hours?\b`)

	weekdays = map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
)

// Parse scans the text and returns the scheduling details it names. now
// anchors relative dates like "next thursday" or the tomorrow default.
func Parse(text string, now time.Time) Parsed {
	content := strings.ToLower(text)

	p := Parsed{
		TargetDate:      targetDate(content, now),
		DurationMinutes: duration(content),
		Urgency:         urgency(content),
	}
	p.RequestedHour, p.RequestedMinute, p.HasTime = requestedTime(content)
	return p
}

func requestedTime(content string) (hour, minute int, ok bool) {
	if m := clockTime.FindStringSubmatch(content); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		if m[3] == "pm" && hour < 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
		if hour < 24 && minute < 60 {
			return hour, minute, true
		}
		return 0, 0, false
	}
	if m := hourTime.FindStringSubmatch(content); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] == "pm" && hour < 12 {
			hour += 12
		}
		if m[2] == "am" && hour == 12 {
			hour = 0
		}
		if hour < 24 {
			return hour, 0, true
		}
	}
	return 0, 0, false
}

func duration(content string) int {
	if strings.Contains(content, "half hour") || strings.Contains(content, "half an hour") {
		return 30
	}
	if strings.Contains(content, "quarter hour") {
		return 15
	}
	if m := minutesSpec.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	if m := hoursSpec.FindStringSubmatch(content); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n * 60
		}
	}
	return defaultDurationMinutes
}

// targetDate finds the first weekday name in the text and resolves it to its
// next occurrence after now. Without a weekday the meeting defaults to
// tomorrow.
func targetDate(content string, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	best := time.Time{}
	bestPos := len(content)
	for name, wd := range weekdays {
		pos := strings.Index(content, name)
		if pos == -1 || pos >= bestPos {
			continue
		}
		daysAhead := (int(wd) - int(now.Weekday()) + 7) % 7
		if daysAhead == 0 {
			daysAhead = 7
		}
		best = today.AddDate(0, 0, daysAhead)
		bestPos = pos
	}
	if !best.IsZero() {
		return best
	}
	return today.AddDate(0, 0, 1)
}

func urgency(content string) string {
	for _, word := range []string{"urgent", "asap", "immediately"} {
		if strings.Contains(content, word) {
			return "high"
		}
	}
	return "normal"
}
