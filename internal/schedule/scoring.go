package schedule

import (
	"sort"

	"github.com/aakashak2000/amd-ai-scheduler/internal/config"
	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
)

// conditionalWeight discounts a CONDITIONAL_ACCEPT's contribution to the
// consensus score, penalizing marginal acceptances without discarding them.
const conditionalWeight = 0.7

// Scorer rates consensus-feasible slots. The consensus/fairness weighting is
// configurable; there is no derivation behind the defaults beyond what the
// config documents.
type Scorer struct {
	cfg config.Config
}

// NewScorer creates a scorer with the given weights.
func NewScorer(cfg config.Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score combines the per-participant evaluations of a slot into a consensus
// score, measures timezone fairness across the participants, and folds both
// into one overall value.
func (s *Scorer) Score(slot models.TimeSlot, evals []models.Evaluation, participants []*models.ParticipantProfile) models.ScoredSlot {
	scored := models.ScoredSlot{TimeSlot: slot}
	scored.ConsensusScore = consensusScore(evals)
	scored.TimezoneFairness = timezoneFairness(slot, participants)
	scored.OverallScore = s.cfg.ConsensusWeight*scored.ConsensusScore + s.cfg.FairnessWeight*scored.TimezoneFairness
	return scored
}

// Rank sorts scored slots by overall score descending, ties broken by earlier
// start time. Sorting is in place and deterministic.
func (s *Scorer) Rank(slots []models.ScoredSlot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].OverallScore != slots[j].OverallScore {
			return slots[i].OverallScore > slots[j].OverallScore
		}
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
}

// consensusScore is the arithmetic mean of per-participant contributions: a
// rejection contributes zero, a conditional accept contributes its score
// discounted, an accept contributes its full score.
func consensusScore(evals []models.Evaluation) float64 {
	if len(evals) == 0 {
		return 0
	}
	total := 0.0
	for _, e := range evals {
		switch e.Decision {
		case models.DecisionAccept:
			total += e.PreferenceScore
		case models.DecisionConditional:
			total += e.PreferenceScore * conditionalWeight
		}
	}
	return total / float64(len(evals))
}

// timezoneFairness averages, over participants, how close the slot start sits
// to conventional business hours in each participant's local zone.
func timezoneFairness(slot models.TimeSlot, participants []*models.ParticipantProfile) float64 {
	if len(participants) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range participants {
		hour := slot.StartTime.In(p.Location()).Hour()
		total += businessHoursAlignment(hour)
	}
	return total / float64(len(participants))
}

func businessHoursAlignment(hour int) float64 {
	switch {
	case hour >= 9 && hour <= 17:
		return 1.0
	case hour >= 8 && hour < 18:
		return 0.8
	case hour >= 7 && hour < 19:
		return 0.6
	default:
		return 0.2
	}
}
