package schedule

import (
	"testing"
	"time"

	"github.com/aakashak2000/amd-ai-scheduler/internal/config"
	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
)

func TestConsensusScore(t *testing.T) {
	tests := []struct {
		name  string
		evals []models.Evaluation
		want  float64
	}{
		{
			name:  "no evaluations",
			evals: nil,
			want:  0,
		},
		{
			name: "all accept",
			evals: []models.Evaluation{
				{Decision: models.DecisionAccept, PreferenceScore: 0.8},
				{Decision: models.DecisionAccept, PreferenceScore: 0.6},
			},
			want: 0.7,
		},
		{
			name: "rejection contributes zero",
			evals: []models.Evaluation{
				{Decision: models.DecisionAccept, PreferenceScore: 0.8},
				{Decision: models.DecisionReject, PreferenceScore: 0.8},
			},
			want: 0.4,
		},
		{
			name: "conditional accept is discounted",
			evals: []models.Evaluation{
				{Decision: models.DecisionConditional, PreferenceScore: 0.5},
			},
			want: 0.35,
		},
		{
			name: "mixed decisions",
			evals: []models.Evaluation{
				{Decision: models.DecisionAccept, PreferenceScore: 0.9},
				{Decision: models.DecisionConditional, PreferenceScore: 0.4},
				{Decision: models.DecisionReject, PreferenceScore: 0.7},
			},
			want: (0.9 + 0.4*0.7 + 0) / 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := consensusScore(tt.evals); !almostEqual(got, tt.want) {
				t.Errorf("consensusScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBusinessHoursAlignment(t *testing.T) {
	tests := []struct {
		hour int
		want float64
	}{
		{9, 1.0},
		{13, 1.0},
		{17, 1.0},
		{8, 0.8},
		{7, 0.6},
		{18, 0.6},
		{19, 0.2},
		{6, 0.2},
		{0, 0.2},
		{23, 0.2},
	}
	for _, tt := range tests {
		if got := businessHoursAlignment(tt.hour); !almostEqual(got, tt.want) {
			t.Errorf("businessHoursAlignment(%d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestTimezoneFairness(t *testing.T) {
	// 14:00 UTC is mid-afternoon in London, morning in New York, late
	// evening in Kolkata.
	slot := models.NewTimeSlot(time.Date(2025, time.July, 17, 14, 0, 0, 0, time.UTC), 30)
	participants := []*models.ParticipantProfile{
		{Email: "a@example.com", Timezone: "UTC"},
		{Email: "b@example.com", Timezone: "America/New_York"},
		{Email: "c@example.com", Timezone: "Asia/Kolkata"},
	}

	got := timezoneFairness(slot, participants)
	// UTC 14:00 -> 1.0, New York 10:00 -> 1.0, Kolkata 19:30 -> 0.2.
	want := (1.0 + 1.0 + 0.2) / 3
	if !almostEqual(got, want) {
		t.Errorf("timezoneFairness() = %v, want %v", got, want)
	}
}

func TestScorerScore(t *testing.T) {
	cfg := config.Default()
	scorer := NewScorer(cfg)
	slot := models.NewTimeSlot(time.Date(2025, time.July, 17, 10, 0, 0, 0, time.UTC), 30)
	participants := []*models.ParticipantProfile{
		{Email: "a@example.com", Timezone: "UTC"},
		{Email: "b@example.com", Timezone: "UTC"},
	}
	evals := []models.Evaluation{
		{Decision: models.DecisionAccept, PreferenceScore: 0.8},
		{Decision: models.DecisionConditional, PreferenceScore: 0.5},
	}

	scored := scorer.Score(slot, evals, participants)

	wantConsensus := (0.8 + 0.5*0.7) / 2
	if !almostEqual(scored.ConsensusScore, wantConsensus) {
		t.Errorf("ConsensusScore = %v, want %v", scored.ConsensusScore, wantConsensus)
	}
	if !almostEqual(scored.TimezoneFairness, 1.0) {
		t.Errorf("TimezoneFairness = %v, want 1.0", scored.TimezoneFairness)
	}
	wantOverall := cfg.ConsensusWeight*wantConsensus + cfg.FairnessWeight*1.0
	if !almostEqual(scored.OverallScore, wantOverall) {
		t.Errorf("OverallScore = %v, want %v", scored.OverallScore, wantOverall)
	}
	if scored.OverallScore < 0 || scored.OverallScore > 1 {
		t.Errorf("OverallScore = %v out of [0, 1]", scored.OverallScore)
	}
}

func TestScorerRank(t *testing.T) {
	at := func(hour int) models.TimeSlot {
		return models.NewTimeSlot(time.Date(2025, time.July, 17, hour, 0, 0, 0, time.UTC), 30)
	}
	slots := []models.ScoredSlot{
		{TimeSlot: at(15), OverallScore: 0.5},
		{TimeSlot: at(9), OverallScore: 0.9},
		{TimeSlot: at(14), OverallScore: 0.5},
		{TimeSlot: at(11), OverallScore: 0.7},
	}

	NewScorer(config.Default()).Rank(slots)

	wantHours := []int{9, 11, 14, 15}
	for i, h := range wantHours {
		if got := slots[i].StartTime.Hour(); got != h {
			t.Errorf("rank %d starts at hour %d, want %d", i, got, h)
		}
	}
}
