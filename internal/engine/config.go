package engine

import (
	"fmt"

	"trade-journal/internal/model"
)

// Thresholds are the lower score bounds of the GOOD and AVERAGE verdicts.
type Thresholds struct {
	Good    float64 `json:"good"`
	Average float64 `json:"average"`
}

// Config is the immutable rule, scoring and verdict configuration.
// Evaluators copy it on construction; mutating a Config afterwards has no effect.
type Config struct {
	MaxRiskPercent float64                   `json:"maxRiskPercent"`
	MinRRRatio     float64                   `json:"minRrRatio"`
	BaseScore      float64                   `json:"baseScore"`
	Penalties      map[model.RuleID]float64  `json:"penalties"`
	Trade          Thresholds                `json:"trade"`
	Session        Thresholds                `json:"session"`
	VerdictScores  map[model.Verdict]float64 `json:"verdictScores"`
}

// DefaultConfig returns the standard thresholds and penalty map.
func DefaultConfig() Config {
	return Config{
		MaxRiskPercent: 1.0,
		MinRRRatio:     1.5,
		BaseScore:      100,
		Penalties: map[model.RuleID]float64{
			model.RuleStopLoss:       25,
			model.RuleRiskLimit:      20,
			model.RuleRiskReward:     15,
			model.RuleRuleDiscipline: 30,
		},
		Trade:   Thresholds{Good: 80, Average: 60},
		Session: Thresholds{Good: 80, Average: 60},
		VerdictScores: map[model.Verdict]float64{
			model.VerdictGood:    100,
			model.VerdictAverage: 60,
			model.VerdictBad:     20,
		},
	}
}

// Validate checks that the configuration keeps scores within [0,100]
// and penalties non-negative.
func (c Config) Validate() error {
	if c.MaxRiskPercent < 0 || c.MaxRiskPercent > 100 {
		return fmt.Errorf("maxRiskPercent must be between 0-100, got %.2f", c.MaxRiskPercent)
	}
	if c.MinRRRatio < 0 {
		return fmt.Errorf("minRrRatio must be >= 0, got %.2f", c.MinRRRatio)
	}
	if c.BaseScore < 0 || c.BaseScore > 100 {
		return fmt.Errorf("baseScore must be between 0-100, got %.2f", c.BaseScore)
	}
	for id, p := range c.Penalties {
		if p < 0 {
			return fmt.Errorf("penalty for %s must be >= 0, got %.2f", id, p)
		}
	}
	for name, t := range map[string]Thresholds{"trade": c.Trade, "session": c.Session} {
		if t.Average > t.Good {
			return fmt.Errorf("%s thresholds: average %.2f above good %.2f", name, t.Average, t.Good)
		}
	}
	for _, v := range []model.Verdict{model.VerdictGood, model.VerdictAverage, model.VerdictBad} {
		if _, ok := c.VerdictScores[v]; !ok {
			return fmt.Errorf("verdictScores missing %s", v)
		}
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	out.Penalties = make(map[model.RuleID]float64, len(c.Penalties))
	for k, v := range c.Penalties {
		out.Penalties[k] = v
	}
	out.VerdictScores = make(map[model.Verdict]float64, len(c.VerdictScores))
	for k, v := range c.VerdictScores {
		out.VerdictScores[k] = v
	}
	return out
}
