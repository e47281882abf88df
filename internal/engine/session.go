package engine

import (
	"encoding/json"
	"sort"

	"go.uber.org/zap"

	"trade-journal/internal/instrument"
	"trade-journal/internal/model"
)

// EvaluateSession evaluates trades in order and aggregates the results.
// Nil entries are skipped; trades that fail evaluation are logged and
// excluded so one malformed trade never blocks the rest.
func (e *Evaluator) EvaluateSession(trades []*model.RawTrade) model.SessionEvaluation {
	evals := make([]model.TradeEvaluation, 0, len(trades))
	for i, raw := range trades {
		if raw == nil {
			continue
		}
		ev, err := e.EvaluateTrade(raw)
		if err != nil {
			e.logger.Warn("session_trade_skipped",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		evals = append(evals, ev)
	}
	return e.aggregate(evals)
}

// EvaluateSessionJSON decodes a JSON array of trades and evaluates it.
// A payload that is not an array fails with an InvalidInputError; null
// elements are skipped and elements that are not objects are logged and skipped.
func (e *Evaluator) EvaluateSessionJSON(data json.RawMessage) (model.SessionEvaluation, error) {
	var items []json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &items) != nil || items == nil {
		return model.SessionEvaluation{}, &InvalidInputError{Field: "trades", Reason: "must be an array"}
	}

	trades := make([]*model.RawTrade, 0, len(items))
	for i, item := range items {
		if isNull(item) {
			continue
		}
		raw, ok := decodeTrade(item)
		if !ok {
			e.logger.Warn("session_trade_skipped",
				zap.Int("index", i),
				zap.String("reason", "not an object"),
			)
			continue
		}
		trades = append(trades, raw)
	}
	return e.EvaluateSession(trades), nil
}

// aggregate builds the session verdict from successful evaluations.
func (e *Evaluator) aggregate(evals []model.TradeEvaluation) model.SessionEvaluation {
	out := model.SessionEvaluation{
		SessionVerdict:         model.VerdictBad,
		DominantFailureReasons: []model.FailureReason{},
		TradeEvaluations:       evals,
	}
	total := len(evals)
	if total == 0 {
		return out
	}
	out.TotalTrades = total

	var scoreSum float64
	for _, ev := range evals {
		switch ev.Verdict {
		case model.VerdictGood:
			out.VerdictCounts.Good++
		case model.VerdictAverage:
			out.VerdictCounts.Average++
		default:
			out.VerdictCounts.Bad++
		}
		scoreSum += e.cfg.VerdictScores[ev.Verdict]
	}

	pct := func(n int) float64 {
		return instrument.Round(float64(n)/float64(total)*100, 0)
	}
	out.VerdictPercentages = model.VerdictPercentages{
		Good:    pct(out.VerdictCounts.Good),
		Average: pct(out.VerdictCounts.Average),
		Bad:     pct(out.VerdictCounts.Bad),
	}
	out.ConsistencyScore = clamp(instrument.Round(scoreSum/float64(total), 0), 0, 100)
	out.SessionVerdict = e.session.Classify(out.ConsistencyScore)
	out.DominantFailureReasons = dominantFailures(evals, 3)
	return out
}

// dominantFailures counts penalty reasons by rule and returns the top n,
// most frequent first. Ties keep the order in which rules first failed.
func dominantFailures(evals []model.TradeEvaluation, n int) []model.FailureReason {
	counts := make(map[model.RuleID]int)
	order := make([]model.RuleID, 0, 4)
	for _, ev := range evals {
		for _, r := range ev.Reasons {
			if _, seen := counts[r.RuleID]; !seen {
				order = append(order, r.RuleID)
			}
			counts[r.RuleID]++
		}
	}

	out := make([]model.FailureReason, 0, len(order))
	for _, id := range order {
		out = append(out, model.FailureReason{RuleID: id, Count: counts[id]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
