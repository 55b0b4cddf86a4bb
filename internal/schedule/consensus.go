package schedule

import (
	"sort"

	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
)

// Intersect returns the slots present, by exact start/end equality, in every
// participant's candidate list. A participant whose list is empty or missing
// excludes every slot: an unreachable participant is never treated as
// unconstrained.
//
// The result is never nil and is sorted by start time ascending so callers see
// a deterministic order regardless of map iteration.
func Intersect(perParticipant map[string][]models.CandidateSlot) []models.TimeSlot {
	common := []models.TimeSlot{}
	if len(perParticipant) == 0 {
		return common
	}

	ids := make([]string, 0, len(perParticipant))
	for id := range perParticipant {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	base := perParticipant[ids[0]]
	for _, candidate := range base {
		inAll := true
		for _, id := range ids[1:] {
			if !containsSlot(perParticipant[id], candidate.TimeSlot) {
				inAll = false
				break
			}
		}
		if inAll {
			common = append(common, candidate.TimeSlot)
		}
	}

	sort.Slice(common, func(i, j int) bool {
		return common[i].StartTime.Before(common[j].StartTime)
	})
	return common
}

func containsSlot(slots []models.CandidateSlot, want models.TimeSlot) bool {
	for _, s := range slots {
		if s.Same(want) {
			return true
		}
	}
	return false
}
