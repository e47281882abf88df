package engine

import (
	"math"

	"trade-journal/internal/model"
)

// ComputeMetrics normalizes a raw trade into numeric measurements.
// It never fails: missing or malformed fields take a zero default and are
// listed in TradeMetrics.Defaulted.
func ComputeMetrics(raw model.RawTrade) model.TradeMetrics {
	var defaulted []string
	value := func(name string, n model.Number) float64 {
		if !n.Set {
			defaulted = append(defaulted, name)
		}
		return n.Or(0)
	}

	entry := value("entryPrice", raw.EntryValue())
	exit := value("exitPrice", raw.ExitValue())
	qty := value("quantity", raw.SizeValue())
	pnl := value("pnl", raw.PnL)
	risk := value("riskPercent", raw.RiskPercent)
	rr := value("rrRatio", raw.RRRatio)

	return model.TradeMetrics{
		HasStopLoss:  hasValidStop(raw, entry, exit),
		RiskPercent:  clamp(risk, 0, 100),
		RRRatio:      math.Max(rr, 0),
		PnL:          pnl,
		IsProfitable: pnl > 0,
		RuleFollowed: bool(raw.RuleFollowed),
		EntryPrice:   entry,
		ExitPrice:    exit,
		Quantity:     qty,
		Defaulted:    defaulted,
	}
}

// hasValidStop reports whether the stop sits on the losing side of entry.
// Without an explicit direction, exit >= entry is read as a long trade.
func hasValidStop(raw model.RawTrade, entry, exit float64) bool {
	if !raw.StopLoss.Set || raw.StopLoss.Value <= 0 {
		return false
	}
	stop := raw.StopLoss.Value

	dir := model.ParseDirection(raw.Direction)
	if dir == model.DirectionNone {
		dir = model.DirectionSell
		if exit >= entry {
			dir = model.DirectionBuy
		}
	}
	if dir == model.DirectionBuy {
		return stop < entry
	}
	return stop > entry
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
