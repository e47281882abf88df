// Package model defines shared data types used across the journal modules.
package model

import (
	"strings"
	"time"
)

// Market identifies one of the supported trading venues.
type Market string

const (
	MarketForex     Market = "FOREX"
	MarketCommodity Market = "COMMODITY"
	MarketCrypto    Market = "CRYPTO"
	MarketIndian    Market = "INDIAN" // NSE/BSE derivatives and cash equity
)

// ParseMarket normalizes a market name to its canonical upper-case form.
// Unknown names are returned upper-cased so they still reach the universal default.
func ParseMarket(s string) Market {
	return Market(strings.ToUpper(strings.TrimSpace(s)))
}

// Subtype further classifies instruments on the Indian market.
type Subtype string

const (
	SubtypeNone       Subtype = ""
	SubtypeEquity     Subtype = "equity"
	SubtypeIndex      Subtype = "index"
	SubtypeDerivative Subtype = "derivative"
)

// ParseSubtype normalizes an instrument subtype to lower case.
func ParseSubtype(s string) Subtype {
	return Subtype(strings.ToLower(strings.TrimSpace(s)))
}

// LotKind describes how position size is expressed for an instrument.
type LotKind string

const (
	LotFixed    LotKind = "FIXED"    // standard lots of contractSize units
	LotFlexible LotKind = "FLEXIBLE" // fractional lots allowed
	LotNone     LotKind = "NONE"     // quantity-based, no lot multiplier
)

// Direction represents a trading direction.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// ParseDirection accepts buy/sell/long/short in any case.
func ParseDirection(s string) Direction {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "LONG", "B":
		return DirectionBuy
	case "SELL", "SHORT", "S":
		return DirectionSell
	}
	return DirectionNone
}

// Verdict is the categorical quality label for a trade or session.
type Verdict string

const (
	VerdictGood    Verdict = "GOOD"
	VerdictAverage Verdict = "AVERAGE"
	VerdictBad     Verdict = "BAD"
)

// RuleID names one of the fixed evaluation rules.
type RuleID string

const (
	RuleStopLoss       RuleID = "STOP_LOSS"
	RuleRiskLimit      RuleID = "RISK_LIMIT"
	RuleRiskReward     RuleID = "RISK_REWARD"
	RuleRuleDiscipline RuleID = "RULE_DISCIPLINE"
)

// InstrumentSpec holds the contract economics of a single instrument.
type InstrumentSpec struct {
	Symbol            string  `json:"symbol" yaml:"symbol"`
	Market            Market  `json:"market" yaml:"market"`
	LotKind           LotKind `json:"lotKind" yaml:"lotKind"`
	ContractSize      float64 `json:"contractSize" yaml:"contractSize"`
	MinLotSize        float64 `json:"minLotSize,omitempty" yaml:"minLotSize"`
	LotIncrement      float64 `json:"lotIncrement,omitempty" yaml:"lotIncrement"`
	InstrumentSubtype Subtype `json:"instrumentSubtype,omitempty" yaml:"instrumentSubtype"`
}

// RawTrade is a user-entered trade record. Every field is optional and untrusted.
type RawTrade struct {
	TradeID           ID     `json:"tradeId"`
	Market            string `json:"market,omitempty"`
	Symbol            string `json:"symbol,omitempty"`
	InstrumentSubtype string `json:"instrumentSubtype,omitempty"`
	Direction         string `json:"direction,omitempty"`

	EntryPrice Number `json:"entryPrice,omitzero"`
	ExitPrice  Number `json:"exitPrice,omitzero"`
	Entry      Number `json:"entry,omitzero"`
	Exit       Number `json:"exit,omitzero"`
	StopLoss   Number `json:"stopLoss,omitzero"`
	TakeProfit Number `json:"takeProfit,omitzero"`
	LotSize    Number `json:"lotSize,omitzero"`
	Lots       Number `json:"lots,omitzero"`
	Quantity   Number `json:"quantity,omitzero"`

	PnL          Number `json:"pnl,omitzero"`
	RiskPercent  Number `json:"riskPercent,omitzero"`
	RRRatio      Number `json:"rrRatio,omitzero"`
	RuleFollowed Flag   `json:"ruleFollowed"`

	AccountBalance Number `json:"accountBalance,omitzero"`
	ConversionRate Number `json:"conversionRate,omitzero"`
	Notes          string `json:"notes,omitempty"`
}

// EntryValue returns entryPrice, falling back to the entry alias.
func (t RawTrade) EntryValue() Number {
	return FirstSet(t.EntryPrice, t.Entry)
}

// ExitValue returns exitPrice, falling back to the exit alias.
func (t RawTrade) ExitValue() Number {
	return FirstSet(t.ExitPrice, t.Exit)
}

// SizeValue returns the first set of lotSize, lots and quantity.
func (t RawTrade) SizeValue() Number {
	return FirstSet(t.LotSize, t.Lots, t.Quantity)
}

// TradeMetrics is the normalized, fully numeric view of a RawTrade.
type TradeMetrics struct {
	HasStopLoss  bool     `json:"hasStopLoss"`
	RiskPercent  float64  `json:"riskPercent"`
	RRRatio      float64  `json:"rrRatio"`
	PnL          float64  `json:"pnl"`
	IsProfitable bool     `json:"isProfitable"`
	RuleFollowed bool     `json:"ruleFollowed"`
	EntryPrice   float64  `json:"entryPrice"`
	ExitPrice    float64  `json:"exitPrice"`
	Quantity     float64  `json:"quantity"`
	Defaulted    []string `json:"defaulted,omitempty"`
}

// RuleResult is the outcome of a single rule.
type RuleResult struct {
	RuleID  RuleID `json:"ruleId"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// Penalty is a failed rule with the deduction it caused.
type Penalty struct {
	RuleID  RuleID  `json:"ruleId"`
	Penalty float64 `json:"penalty"`
	Message string  `json:"message"`
}

// TradeEvaluation is the full verdict for one trade.
type TradeEvaluation struct {
	TradeID     string       `json:"tradeId"`
	Metrics     TradeMetrics `json:"metrics"`
	RuleResults []RuleResult `json:"ruleResults"`
	Score       float64      `json:"score"`
	Verdict     Verdict      `json:"verdict"`
	Reasons     []Penalty    `json:"reasons"`
}

// VerdictCounts tallies verdicts across a session.
type VerdictCounts struct {
	Good    int `json:"GOOD"`
	Average int `json:"AVERAGE"`
	Bad     int `json:"BAD"`
}

// VerdictPercentages holds each verdict's share of a session, 0-100.
type VerdictPercentages struct {
	Good    float64 `json:"GOOD"`
	Average float64 `json:"AVERAGE"`
	Bad     float64 `json:"BAD"`
}

// FailureReason is a rule violation with its frequency across a session.
type FailureReason struct {
	RuleID RuleID `json:"ruleId"`
	Count  int    `json:"count"`
}

// SessionEvaluation aggregates trade evaluations into session-level metrics.
type SessionEvaluation struct {
	TotalTrades            int                `json:"totalTrades"`
	VerdictCounts          VerdictCounts      `json:"verdictCounts"`
	VerdictPercentages     VerdictPercentages `json:"verdictPercentages"`
	ConsistencyScore       float64            `json:"consistencyScore"`
	SessionVerdict         Verdict            `json:"sessionVerdict"`
	DominantFailureReasons []FailureReason    `json:"dominantFailureReasons"`
	TradeEvaluations       []TradeEvaluation  `json:"tradeEvaluations"`
}

// JournalEntry is a stored trade together with its latest evaluation.
type JournalEntry struct {
	EntryID    string          `json:"entryId"`
	SessionID  string          `json:"sessionId"`
	Trade      RawTrade        `json:"trade"`
	Evaluation TradeEvaluation `json:"evaluation"`
	LoggedAt   time.Time       `json:"loggedAt"`
}

// WSMessage represents a WebSocket message sent to dashboard clients.
type WSMessage struct {
	Type      string    `json:"type"` // evaluation, session, heartbeat
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// APIResponse is the standard REST API response envelope.
type APIResponse struct {
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Field     string    `json:"field,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
