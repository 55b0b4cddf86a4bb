// Package oracle defines the optional external reasoning collaborator the
// negotiator consults to break ties among top-ranked candidate slots. The
// implementation is chosen once at startup and injected; the negotiation never
// depends on the oracle being available.
package oracle

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Oracle selects among ranked candidate summaries. Implementations return the
// chosen index into summaries, or an error when no selection could be made.
type Oracle interface {
	SelectAmongCandidates(ctx context.Context, summaries []string, negotiationContext string) (int, error)
}

// Noop is the deterministic fallback oracle: it always selects the first
// (highest-ranked) candidate.
type Noop struct{}

// SelectAmongCandidates returns 0, the top-ranked candidate.
func (Noop) SelectAmongCandidates(ctx context.Context, summaries []string, negotiationContext string) (int, error) {
	if len(summaries) == 0 {
		return 0, fmt.Errorf("no candidates to select among")
	}
	return 0, nil
}

var selectionNumber = regexp.MustCompile(`\b(\d+)\b`)

// ParseSelection extracts a selection index from raw model output. Markdown
// code fences are stripped first, then the first integer in the text is taken
// and clamped to [0, max). Output with no integer is an error.
func ParseSelection(raw string, max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("no candidates to select among")
	}

	cleaned := stripFences(raw)
	match := selectionNumber.FindString(cleaned)
	if match == "" {
		return 0, fmt.Errorf("no selection index in oracle output %q", raw)
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, fmt.Errorf("bad selection index %q: %w", match, err)
	}
	if n < 0 {
		return 0, nil
	}
	if n >= max {
		return max - 1, nil
	}
	return n, nil
}

// stripFences removes markdown code fences that models wrap answers in.
func stripFences(raw string) string {
	if start := strings.Index(raw, "```"); start != -1 {
		raw = raw[start+3:]
		// Drop a language tag like "json" or "text" on the fence line.
		if nl := strings.Index(raw, "\n"); nl != -1 && nl < 12 {
			raw = raw[nl+1:]
		}
		if end := strings.Index(raw, "```"); end != -1 {
			raw = raw[:end]
		}
	}
	return strings.TrimSpace(raw)
}
