package engine

import (
	"trade-journal/internal/model"
)

// Scorer converts rule outcomes into a 0-100 quality score by deducting a
// fixed penalty per failed rule from a base score.
type Scorer struct {
	base      float64
	penalties map[model.RuleID]float64
}

// NewScorer creates a scorer. The penalty map is copied.
func NewScorer(base float64, penalties map[model.RuleID]float64) Scorer {
	p := make(map[model.RuleID]float64, len(penalties))
	for id, v := range penalties {
		p[id] = v
	}
	return Scorer{base: base, penalties: p}
}

// Penalty returns the deduction for a failed rule. Unknown rules cost nothing.
func (s Scorer) Penalty(id model.RuleID) float64 {
	return s.penalties[id]
}

// Score computes the clamped score. No results means nothing failed.
func (s Scorer) Score(results []model.RuleResult) float64 {
	score := s.base
	for _, r := range results {
		if !r.Passed {
			score -= s.Penalty(r.RuleID)
		}
	}
	return clamp(score, 0, 100)
}

// PenaltyReasons lists the failed rules in their original order.
func (s Scorer) PenaltyReasons(results []model.RuleResult) []model.Penalty {
	reasons := make([]model.Penalty, 0, len(results))
	for _, r := range results {
		if r.Passed {
			continue
		}
		reasons = append(reasons, model.Penalty{
			RuleID:  r.RuleID,
			Penalty: s.Penalty(r.RuleID),
			Message: r.Message,
		})
	}
	return reasons
}
