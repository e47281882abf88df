package engine

import (
	"sort"

	"trade-journal/internal/model"
)

// verdictLevel is a verdict and the minimum score that earns it.
type verdictLevel struct {
	Verdict model.Verdict
	Min     float64
}

// Classifier maps a score to a verdict. It keeps no state between calls.
type Classifier struct {
	levels []verdictLevel // ascending by Min
}

// NewClassifier creates a classifier from GOOD and AVERAGE lower bounds.
// Scores below the AVERAGE bound are BAD.
func NewClassifier(t Thresholds) Classifier {
	levels := []verdictLevel{
		{Verdict: model.VerdictAverage, Min: t.Average},
		{Verdict: model.VerdictGood, Min: t.Good},
	}
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].Min < levels[j].Min })
	return Classifier{levels: levels}
}

// Classify walks the levels from the highest threshold down and returns
// the first one the score reaches.
func (c Classifier) Classify(score float64) model.Verdict {
	for i := len(c.levels) - 1; i >= 0; i-- {
		if score >= c.levels[i].Min {
			return c.levels[i].Verdict
		}
	}
	return model.VerdictBad
}
