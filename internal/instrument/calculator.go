package instrument

import (
	"math"

	"github.com/shopspring/decimal"

	"trade-journal/internal/model"
)

// Instrument identifies what is being traded.
type Instrument struct {
	Market  string `json:"market"`
	Symbol  string `json:"symbol"`
	Subtype string `json:"instrumentSubtype"`
}

// PositionRequest asks for the number of underlying units in a position.
type PositionRequest struct {
	Instrument
	LotSize model.Number `json:"lotSize"`
}

// PnLRequest asks for the realized profit or loss of a closed position.
// ConversionRate, when set and positive, converts the quote-currency result
// into the account currency. It is supplied already resolved by the caller.
type PnLRequest struct {
	Instrument
	Direction      model.Direction `json:"direction"`
	Entry          model.Number    `json:"entry"`
	Exit           model.Number    `json:"exit"`
	LotSize        model.Number    `json:"lotSize"`
	ConversionRate model.Number    `json:"conversionRate"`
}

// RiskRewardRequest asks for the reward-to-risk ratio of a planned trade.
type RiskRewardRequest struct {
	Direction  model.Direction `json:"direction"`
	Entry      model.Number    `json:"entry"`
	StopLoss   model.Number    `json:"stopLoss"`
	TakeProfit model.Number    `json:"takeProfit"`
}

// LevelRequest asks for the money at stake between entry and a stop or target.
type LevelRequest struct {
	Instrument
	Direction      model.Direction `json:"direction"`
	Entry          model.Number    `json:"entry"`
	Level          model.Number    `json:"level"`
	LotSize        model.Number    `json:"lotSize"`
	ConversionRate model.Number    `json:"conversionRate"`
}

// Calculator converts price moves into money using a Registry.
type Calculator struct {
	registry *Registry
}

// NewCalculator creates a calculator backed by registry. A nil registry uses the built-in tables.
func NewCalculator(registry *Registry) *Calculator {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Calculator{registry: registry}
}

// Registry returns the underlying spec registry.
func (c *Calculator) Registry() *Registry {
	return c.registry
}

func (c *Calculator) spec(in Instrument) model.InstrumentSpec {
	return c.registry.ResolveSpec(in.Market, in.Symbol, in.Subtype)
}

// PositionSize returns contractSize × lotSize, or 0 for a missing or non-positive lot size.
func (c *Calculator) PositionSize(req PositionRequest) float64 {
	if !req.LotSize.Set || req.LotSize.Value <= 0 {
		return 0
	}
	return c.spec(req.Instrument).ContractSize * req.LotSize.Value
}

// ComputePnL returns the profit or loss of a position rounded to 2 decimals.
// It returns 0 when the market or either price is missing, or the lot size is not positive.
func (c *Calculator) ComputePnL(req PnLRequest) float64 {
	if req.Instrument.Market == "" || !req.Entry.Set || !req.Exit.Set {
		return 0
	}
	if !req.LotSize.Set || req.LotSize.Value <= 0 {
		return 0
	}

	multiplier := -1.0
	if req.Direction == model.DirectionBuy {
		multiplier = 1
	}
	priceDiff := (req.Exit.Value - req.Entry.Value) * multiplier

	spec := c.spec(req.Instrument)
	var pnl float64
	if spec.LotKind == model.LotNone {
		pnl = priceDiff * req.LotSize.Value
	} else {
		pnl = priceDiff * spec.ContractSize * req.LotSize.Value
	}
	if req.ConversionRate.Set && req.ConversionRate.Value > 0 {
		pnl *= req.ConversionRate.Value
	}
	return Round(pnl, 2)
}

// ComputeRiskReward returns reward distance over risk distance rounded to 2 decimals.
// A non-positive risk distance yields 0. Without a direction, a target at or
// above entry is read as a long trade.
func (c *Calculator) ComputeRiskReward(req RiskRewardRequest) float64 {
	return RiskReward(req)
}

// RiskReward is ComputeRiskReward without a Calculator; it needs no instrument spec.
func RiskReward(req RiskRewardRequest) float64 {
	if !req.Entry.Set || !req.StopLoss.Set || !req.TakeProfit.Set {
		return 0
	}
	entry, stop, target := req.Entry.Value, req.StopLoss.Value, req.TakeProfit.Value

	dir := req.Direction
	if dir == model.DirectionNone {
		dir = model.DirectionSell
		if target >= entry {
			dir = model.DirectionBuy
		}
	}

	var risk, reward float64
	if dir == model.DirectionBuy {
		risk = entry - stop
		reward = target - entry
	} else {
		risk = stop - entry
		reward = entry - target
	}
	if risk <= 0 {
		return 0
	}
	return Round(reward/risk, 2)
}

// RiskAmount is the absolute money lost if price reaches the stop level.
func (c *Calculator) RiskAmount(req LevelRequest) float64 {
	return c.levelAmount(req)
}

// RewardAmount is the absolute money gained if price reaches the target level.
func (c *Calculator) RewardAmount(req LevelRequest) float64 {
	return c.levelAmount(req)
}

func (c *Calculator) levelAmount(req LevelRequest) float64 {
	return math.Abs(c.ComputePnL(PnLRequest{
		Instrument:     req.Instrument,
		Direction:      req.Direction,
		Entry:          req.Entry,
		Exit:           req.Level,
		LotSize:        req.LotSize,
		ConversionRate: req.ConversionRate,
	}))
}

// PositionValue returns entry × position size.
func (c *Calculator) PositionValue(in Instrument, entry, lotSize model.Number) float64 {
	if !entry.Set {
		return 0
	}
	size := c.PositionSize(PositionRequest{Instrument: in, LotSize: lotSize})
	return Round(entry.Value*size, 2)
}

// RiskPercent expresses a risk amount as a percentage of the account balance.
func RiskPercent(riskAmount, accountBalance float64) float64 {
	if accountBalance <= 0 || riskAmount < 0 {
		return 0
	}
	return Round(riskAmount/accountBalance*100, 2)
}

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
