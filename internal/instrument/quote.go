package instrument

import "trade-journal/internal/model"

// QuoteRequest describes a planned or closed position.
type QuoteRequest struct {
	Instrument
	Direction      string       `json:"direction"`
	Entry          model.Number `json:"entry"`
	Exit           model.Number `json:"exit"`
	StopLoss       model.Number `json:"stopLoss"`
	TakeProfit     model.Number `json:"takeProfit"`
	LotSize        model.Number `json:"lotSize"`
	ConversionRate model.Number `json:"conversionRate"`
	AccountBalance model.Number `json:"accountBalance"`
}

// Quote is every money figure the calculator can derive for a position.
type Quote struct {
	Resolution    Resolution `json:"resolution"`
	PositionSize  float64    `json:"positionSize"`
	PositionValue float64    `json:"positionValue"`
	PnL           float64    `json:"pnl"`
	RRRatio       float64    `json:"rrRatio"`
	RiskAmount    float64    `json:"riskAmount"`
	RewardAmount  float64    `json:"rewardAmount"`
	RiskPercent   float64    `json:"riskPercent"`
}

// Quote computes position size and value, P&L, reward-to-risk, the money at
// stake at the stop and target, and risk as a share of the account balance.
// Figures whose inputs are missing are 0.
func (c *Calculator) Quote(req QuoteRequest) Quote {
	dir := model.ParseDirection(req.Direction)
	level := func(l model.Number) LevelRequest {
		return LevelRequest{
			Instrument:     req.Instrument,
			Direction:      dir,
			Entry:          req.Entry,
			Level:          l,
			LotSize:        req.LotSize,
			ConversionRate: req.ConversionRate,
		}
	}

	q := Quote{
		Resolution:    c.registry.Resolve(req.Market, req.Symbol, req.Subtype),
		PositionSize:  c.PositionSize(PositionRequest{Instrument: req.Instrument, LotSize: req.LotSize}),
		PositionValue: c.PositionValue(req.Instrument, req.Entry, req.LotSize),
		PnL: c.ComputePnL(PnLRequest{
			Instrument:     req.Instrument,
			Direction:      dir,
			Entry:          req.Entry,
			Exit:           req.Exit,
			LotSize:        req.LotSize,
			ConversionRate: req.ConversionRate,
		}),
		RRRatio: RiskReward(RiskRewardRequest{
			Direction:  dir,
			Entry:      req.Entry,
			StopLoss:   req.StopLoss,
			TakeProfit: req.TakeProfit,
		}),
	}
	if req.StopLoss.Set {
		q.RiskAmount = c.RiskAmount(level(req.StopLoss))
	}
	if req.TakeProfit.Set {
		q.RewardAmount = c.RewardAmount(level(req.TakeProfit))
	}
	if req.AccountBalance.Set {
		q.RiskPercent = RiskPercent(q.RiskAmount, req.AccountBalance.Value)
	}
	return q
}
