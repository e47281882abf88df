package engine

import (
	"trade-journal/internal/instrument"
	"trade-journal/internal/model"
)

// Enrich fills pnl, rrRatio and riskPercent on a copy of raw when they are
// unset and the trade carries enough to derive them. Values supplied by the
// caller are never overwritten. It returns the names of the fields it filled.
func Enrich(calc *instrument.Calculator, raw model.RawTrade) (model.RawTrade, []string) {
	if calc == nil {
		return raw, nil
	}

	in := instrument.Instrument{Market: raw.Market, Symbol: raw.Symbol, Subtype: raw.InstrumentSubtype}
	dir := model.ParseDirection(raw.Direction)
	entry, exit, size := raw.EntryValue(), raw.ExitValue(), raw.SizeValue()
	var filled []string

	if !raw.PnL.Set && raw.Market != "" && entry.Set && exit.Set && size.Set && size.Value > 0 {
		raw.PnL = model.Num(calc.ComputePnL(instrument.PnLRequest{
			Instrument:     in,
			Direction:      dir,
			Entry:          entry,
			Exit:           exit,
			LotSize:        size,
			ConversionRate: raw.ConversionRate,
		}))
		filled = append(filled, "pnl")
	}

	if !raw.RRRatio.Set && entry.Set && raw.StopLoss.Set && raw.TakeProfit.Set {
		raw.RRRatio = model.Num(instrument.RiskReward(instrument.RiskRewardRequest{
			Direction:  dir,
			Entry:      entry,
			StopLoss:   raw.StopLoss,
			TakeProfit: raw.TakeProfit,
		}))
		filled = append(filled, "rrRatio")
	}

	if !raw.RiskPercent.Set && raw.Market != "" && entry.Set && raw.StopLoss.Set && raw.StopLoss.Value > 0 &&
		size.Set && size.Value > 0 && raw.AccountBalance.Set && raw.AccountBalance.Value > 0 {
		risk := calc.RiskAmount(instrument.LevelRequest{
			Instrument:     in,
			Direction:      dir,
			Entry:          entry,
			Level:          raw.StopLoss,
			LotSize:        size,
			ConversionRate: raw.ConversionRate,
		})
		raw.RiskPercent = model.Num(instrument.RiskPercent(risk, raw.AccountBalance.Value))
		filled = append(filled, "riskPercent")
	}

	return raw, filled
}
