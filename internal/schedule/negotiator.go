package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aakashak2000/amd-ai-scheduler/internal/config"
	"github.com/aakashak2000/amd-ai-scheduler/internal/models"
	"github.com/aakashak2000/amd-ai-scheduler/internal/oracle"
)

// FailureNoCommonAvailability is the structured reason reported when the
// consensus set is empty.
const FailureNoCommonAvailability = "no common availability"

// Negotiator drives the two-phase selection protocol: evaluate the explicitly
// requested time against every participant's hard constraints, then fall back
// to ranked alternatives, optionally refined by the reasoning oracle.
//
// All negotiation outcomes short of collaborator unavailability are data in
// the NegotiationResult; a conflict or an empty consensus set is not an error.
type Negotiator struct {
	cfg       config.Config
	logger    *slog.Logger
	generator *Generator
	scorer    *Scorer
	oracle    oracle.Oracle
}

// NewNegotiator wires the slot generator, the scoring engine, and the
// injected reasoning oracle together.
func NewNegotiator(cfg config.Config, logger *slog.Logger, orc oracle.Oracle) *Negotiator {
	if orc == nil {
		orc = oracle.Noop{}
	}
	return &Negotiator{
		cfg:       cfg,
		logger:    logger,
		generator: NewGenerator(cfg, logger),
		scorer:    NewScorer(cfg),
		oracle:    orc,
	}
}

// Generator exposes the negotiator's slot generator for debugging tools.
func (n *Negotiator) Generator() *Generator {
	return n.generator
}

// Negotiate runs one negotiation to a terminal result. It returns an error
// only for invalid input or context cancellation; every scheduling outcome,
// including failure to find a slot, is expressed in the result.
func (n *Negotiator) Negotiate(ctx context.Context, req models.MeetingRequest) (models.NegotiationResult, error) {
	if err := req.Validate(); err != nil {
		return models.NegotiationResult{}, err
	}

	n.logger.Info("Starting negotiation",
		"request", req.RequestID,
		"participants", len(req.Participants),
		"date", req.TargetDate.Format("2006-01-02"),
		"duration_mins", req.DurationMinutes)

	var conflicts []models.Conflict
	if req.RequestedSlot != nil {
		result, ok, err := n.evaluateRequested(ctx, req)
		if err != nil {
			return models.NegotiationResult{}, err
		}
		if ok {
			n.logger.Info("Requested time accepted by all participants", "request", req.RequestID)
			return result, nil
		}
		conflicts = result.Conflicts
		n.logger.Info("Requested time has conflicts, searching alternatives",
			"request", req.RequestID, "conflicts", len(conflicts))
	}

	ranked, err := n.searchAlternatives(ctx, req)
	if err != nil {
		return models.NegotiationResult{}, err
	}
	if len(ranked) == 0 {
		n.logger.Info("No common availability", "request", req.RequestID)
		return models.NegotiationResult{
			Success:       false,
			Alternatives:  []models.ScoredSlot{},
			Conflicts:     conflicts,
			FailureReason: FailureNoCommonAvailability,
		}, nil
	}

	top := ranked
	if len(top) > n.cfg.TopAlternatives {
		top = top[:n.cfg.TopAlternatives]
	}

	chosen := top[n.selectBest(ctx, req, top)]
	evals := n.evaluateAll(ctx, req.Participants, chosen.TimeSlot)

	n.logger.Info("Negotiation succeeded",
		"request", req.RequestID,
		"slot", chosen.StartTime.Format("2006-01-02 15:04 MST"),
		"overall_score", chosen.OverallScore)

	return models.NegotiationResult{
		Success:       true,
		ScheduledSlot: &chosen,
		Alternatives:  top,
		Evaluations:   evals,
		Conflicts:     conflicts,
	}, nil
}

// evaluateRequested checks the explicitly requested slot against every
// participant's hard constraints. Acceptance requires zero calendar
// conflicts; preference scores become data on the result but do not gate it.
func (n *Negotiator) evaluateRequested(ctx context.Context, req models.MeetingRequest) (models.NegotiationResult, bool, error) {
	slot := *req.RequestedSlot
	evals := n.evaluateAll(ctx, req.Participants, slot)
	if err := ctx.Err(); err != nil {
		return models.NegotiationResult{}, false, err
	}

	var conflicts []models.Conflict
	for _, e := range evals {
		if e.Reason == "schedule_conflict" {
			conflicts = append(conflicts, models.Conflict{
				Participant: e.Participant,
				Reason:      e.Reason,
			})
		}
	}
	if len(conflicts) > 0 {
		return models.NegotiationResult{Conflicts: conflicts}, false, nil
	}

	scored := n.scorer.Score(slot, evals, req.Participants)
	return models.NegotiationResult{
		Success:       true,
		ScheduledSlot: &scored,
		Alternatives:  []models.ScoredSlot{},
		Evaluations:   evals,
	}, true, nil
}

// searchAlternatives generates candidate slots per participant in parallel,
// intersects them into the consensus set, and scores each feasible slot. The
// returned list is ranked by overall score descending.
func (n *Negotiator) searchAlternatives(ctx context.Context, req models.MeetingRequest) ([]models.ScoredSlot, error) {
	perParticipant := make(map[string][]models.CandidateSlot, len(req.Participants))
	results := make([][]models.CandidateSlot, len(req.Participants))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range req.Participants {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = n.generator.GenerateSlots(p, req.TargetDate, req.DurationMinutes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, p := range req.Participants {
		perParticipant[p.Email] = results[i]
		n.logger.Debug("Participant availability", "participant", p.Email, "slots", len(results[i]))
	}

	common := Intersect(perParticipant)
	n.logger.Info("Consensus slots computed", "request", req.RequestID, "count", len(common))
	if len(common) == 0 {
		return nil, nil
	}

	scored := make([]models.ScoredSlot, 0, len(common))
	for _, slot := range common {
		evals := n.evaluateAll(ctx, req.Participants, slot)
		scored = append(scored, n.scorer.Score(slot, evals, req.Participants))
	}
	n.scorer.Rank(scored)
	return scored, nil
}

// selectBest consults the reasoning oracle to pick among the top candidates,
// falling back deterministically to the highest-ranked slot when the oracle
// is unavailable, times out, or returns an unusable answer.
func (n *Negotiator) selectBest(ctx context.Context, req models.MeetingRequest, top []models.ScoredSlot) int {
	if len(top) == 1 {
		return 0
	}

	summaries := make([]string, len(top))
	for i, s := range top {
		summaries[i] = fmt.Sprintf("%d: %s (score: %.2f)", i,
			s.StartTime.Format("Mon Jan 2 15:04 MST"), s.OverallScore)
	}

	oracleCtx, cancel := context.WithTimeout(ctx, n.cfg.OracleTimeout.Std())
	defer cancel()

	index, err := n.oracle.SelectAmongCandidates(oracleCtx, summaries, participantContext(req.Participants))
	if err != nil {
		// Recovered locally; oracle availability never decides the outcome.
		n.logger.Warn("Oracle unavailable, selecting top-ranked slot",
			"request", req.RequestID, "error", err)
		return 0
	}
	if index < 0 || index >= len(top) {
		n.logger.Warn("Oracle returned out-of-range index, selecting top-ranked slot",
			"request", req.RequestID, "index", index)
		return 0
	}
	return index
}

// evaluateAll collects every participant's evaluation of a slot in parallel.
// The returned order matches the participant order, independent of task
// completion order.
func (n *Negotiator) evaluateAll(ctx context.Context, participants []*models.ParticipantProfile, slot models.TimeSlot) []models.Evaluation {
	evals := make([]models.Evaluation, len(participants))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range participants {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			evals[i] = EvaluateProposal(p, slot)
			return nil
		})
	}
	// Evaluation is pure; the only possible error is cancellation, in which
	// case unfinished entries stay zero-valued and the caller sees ctx.Err.
	_ = g.Wait()
	return evals
}

func participantContext(participants []*models.ParticipantProfile) string {
	var b strings.Builder
	for _, p := range participants {
		periods := make([]string, 0, len(p.Preferences.PreferredPeriods))
		for _, period := range p.Preferences.PreferredPeriods {
			periods = append(periods, string(period))
		}
		fmt.Fprintf(&b, "- %s: timezone %s, prefers %s\n", p.Email, p.Timezone, strings.Join(periods, "/"))
	}
	return b.String()
}
