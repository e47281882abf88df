package engine

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"trade-journal/internal/model"
)

// Evaluator runs the metrics → rules → score → verdict pipeline for single
// trades and aggregates batches into session verdicts.
type Evaluator struct {
	cfg     Config
	rules   RuleSet
	scorer  Scorer
	trade   Classifier
	session Classifier
	logger  *zap.Logger
}

// NewEvaluator creates an evaluator from a copy of cfg.
func NewEvaluator(cfg Config) *Evaluator {
	cfg = cfg.clone()
	return &Evaluator{
		cfg:     cfg,
		rules:   NewRuleSet(cfg.MaxRiskPercent, cfg.MinRRRatio),
		scorer:  NewScorer(cfg.BaseScore, cfg.Penalties),
		trade:   NewClassifier(cfg.Trade),
		session: NewClassifier(cfg.Session),
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the structured logger used for skipped session trades.
func (e *Evaluator) SetLogger(logger *zap.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Config returns a copy of the active configuration.
func (e *Evaluator) Config() Config {
	return e.cfg.clone()
}

// EvaluateTrade scores a single trade. It fails only when the trade is nil
// or has no tradeId; every other field degrades to a default.
func (e *Evaluator) EvaluateTrade(raw *model.RawTrade) (model.TradeEvaluation, error) {
	if raw == nil {
		return model.TradeEvaluation{}, &InvalidTradeError{Field: "trade", Reason: "must be an object"}
	}
	id := raw.TradeID.String()
	if id == "" {
		return model.TradeEvaluation{}, &InvalidTradeError{Field: "tradeId", Reason: "is required"}
	}

	metrics := ComputeMetrics(*raw)
	results := e.rules.Evaluate(metrics)
	score := e.scorer.Score(results)

	return model.TradeEvaluation{
		TradeID:     id,
		Metrics:     metrics,
		RuleResults: results,
		Score:       score,
		Verdict:     e.trade.Classify(score),
		Reasons:     e.scorer.PenaltyReasons(results),
	}, nil
}

// EvaluateTradeJSON decodes a trade object and evaluates it. Anything that
// is not a JSON object fails with an InvalidTradeError.
func (e *Evaluator) EvaluateTradeJSON(data json.RawMessage) (model.TradeEvaluation, error) {
	raw, ok := decodeTrade(data)
	if !ok {
		return model.TradeEvaluation{}, &InvalidTradeError{Field: "trade", Reason: "must be an object"}
	}
	return e.EvaluateTrade(raw)
}

func decodeTrade(data json.RawMessage) (*model.RawTrade, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil || probe == nil {
		return nil, false
	}
	var raw model.RawTrade
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	return &raw, true
}

func isNull(data json.RawMessage) bool {
	s := strings.TrimSpace(string(data))
	return s == "" || s == "null"
}
