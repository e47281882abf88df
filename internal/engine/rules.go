package engine

import (
	"fmt"

	"trade-journal/internal/model"
)

// RuleSet applies the fixed list of trade rules.
type RuleSet struct {
	maxRiskPercent float64
	minRRRatio     float64
}

// NewRuleSet creates a rule set from the risk and R:R thresholds.
func NewRuleSet(maxRiskPercent, minRRRatio float64) RuleSet {
	return RuleSet{maxRiskPercent: maxRiskPercent, minRRRatio: minRRRatio}
}

// Evaluate returns exactly one result per rule, in the order
// STOP_LOSS, RISK_LIMIT, RISK_REWARD, RULE_DISCIPLINE.
func (r RuleSet) Evaluate(m model.TradeMetrics) []model.RuleResult {
	return []model.RuleResult{
		r.stopLoss(m),
		r.riskLimit(m),
		r.riskReward(m),
		r.discipline(m),
	}
}

func (r RuleSet) stopLoss(m model.TradeMetrics) model.RuleResult {
	res := model.RuleResult{RuleID: model.RuleStopLoss, Passed: m.HasStopLoss}
	if m.HasStopLoss {
		res.Message = "Stop loss placed on the protective side of entry"
	} else {
		res.Message = fmt.Sprintf("No valid stop loss for entry %.5g", m.EntryPrice)
	}
	return res
}

func (r RuleSet) riskLimit(m model.TradeMetrics) model.RuleResult {
	passed := m.RiskPercent <= r.maxRiskPercent
	res := model.RuleResult{RuleID: model.RuleRiskLimit, Passed: passed}
	if passed {
		res.Message = fmt.Sprintf("Risk %.2f%% within limit of %.2f%%", m.RiskPercent, r.maxRiskPercent)
	} else {
		res.Message = fmt.Sprintf("Risk %.2f%% exceeds limit of %.2f%%", m.RiskPercent, r.maxRiskPercent)
	}
	return res
}

func (r RuleSet) riskReward(m model.TradeMetrics) model.RuleResult {
	passed := m.RRRatio >= r.minRRRatio
	res := model.RuleResult{RuleID: model.RuleRiskReward, Passed: passed}
	if passed {
		res.Message = fmt.Sprintf("R:R %.2f meets minimum of %.2f", m.RRRatio, r.minRRRatio)
	} else {
		res.Message = fmt.Sprintf("R:R %.2f below minimum of %.2f", m.RRRatio, r.minRRRatio)
	}
	return res
}

func (r RuleSet) discipline(m model.TradeMetrics) model.RuleResult {
	res := model.RuleResult{RuleID: model.RuleRuleDiscipline, Passed: m.RuleFollowed}
	if m.RuleFollowed {
		res.Message = "Trading plan followed"
	} else {
		res.Message = "Trading plan not followed"
	}
	return res
}
