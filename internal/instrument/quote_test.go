package instrument

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trade-journal/internal/model"
)

func TestQuote(t *testing.T) {
	calc := NewCalculator(nil)

	q := calc.Quote(QuoteRequest{
		Instrument:     Instrument{Market: "FOREX", Symbol: "EURUSD"},
		Direction:      "long",
		Entry:          model.Num(1.1000),
		Exit:           model.Num(1.1050),
		StopLoss:       model.Num(1.0950),
		TakeProfit:     model.Num(1.1100),
		LotSize:        model.Num(0.1),
		AccountBalance: model.Num(10_000),
	})

	assert.Equal(t, SourceSymbol, q.Resolution.Source)
	assert.Equal(t, 10_000.0, q.PositionSize)
	assert.Equal(t, 11_000.0, q.PositionValue)
	assert.Equal(t, 50.0, q.PnL)
	assert.Equal(t, 2.0, q.RRRatio)
	assert.Equal(t, 50.0, q.RiskAmount)
	assert.Equal(t, 100.0, q.RewardAmount)
	assert.Equal(t, 0.5, q.RiskPercent)
}

func TestQuote_MissingInputs(t *testing.T) {
	calc := NewCalculator(nil)

	q := calc.Quote(QuoteRequest{Instrument: Instrument{Market: "MARS", Symbol: "ROCK"}})
	assert.Equal(t, SourceUniversalDefault, q.Resolution.Source)
	assert.Equal(t, Quote{Resolution: q.Resolution}, q)
}
