package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal/internal/model"
)

func goodTrade() *model.RawTrade {
	return &model.RawTrade{
		TradeID:      "T001",
		EntryPrice:   model.Num(100),
		ExitPrice:    model.Num(105),
		StopLoss:     model.Num(98),
		RiskPercent:  model.Num(0.8),
		RRRatio:      model.Num(2.5),
		PnL:          model.Num(50),
		RuleFollowed: true,
	}
}

func badTrade() *model.RawTrade {
	return &model.RawTrade{
		TradeID:      "T002",
		EntryPrice:   model.Num(100),
		ExitPrice:    model.Num(95),
		RiskPercent:  model.Num(2.5),
		RRRatio:      model.Num(0.8),
		PnL:          model.Num(-50),
		RuleFollowed: false,
	}
}

func TestEvaluateTrade_Good(t *testing.T) {
	ev, err := NewEvaluator(DefaultConfig()).EvaluateTrade(goodTrade())
	require.NoError(t, err)

	assert.Equal(t, "T001", ev.TradeID)
	assert.Equal(t, 100.0, ev.Score)
	assert.Equal(t, model.VerdictGood, ev.Verdict)
	assert.Empty(t, ev.Reasons)
	require.Len(t, ev.RuleResults, 4)
	for _, r := range ev.RuleResults {
		assert.True(t, r.Passed, r.RuleID)
	}
}

func TestEvaluateTrade_Bad(t *testing.T) {
	ev, err := NewEvaluator(DefaultConfig()).EvaluateTrade(badTrade())
	require.NoError(t, err)

	assert.Less(t, ev.Score, 60.0)
	assert.Equal(t, 10.0, ev.Score)
	assert.Equal(t, model.VerdictBad, ev.Verdict)
	require.Len(t, ev.Reasons, 4)

	wantOrder := []model.RuleID{model.RuleStopLoss, model.RuleRiskLimit, model.RuleRiskReward, model.RuleRuleDiscipline}
	wantPenalty := []float64{25, 20, 15, 30}
	for i, r := range ev.Reasons {
		assert.Equal(t, wantOrder[i], r.RuleID)
		assert.Equal(t, wantPenalty[i], r.Penalty)
		assert.NotEmpty(t, r.Message)
	}
	assert.Contains(t, ev.Reasons[1].Message, "2.50%")
	assert.Contains(t, ev.Reasons[2].Message, "0.80")
}

func TestEvaluateTrade_Average(t *testing.T) {
	tr := goodTrade()
	tr.RRRatio = model.Num(1.0)     // -15
	tr.RiskPercent = model.Num(1.2) // -20

	ev, err := NewEvaluator(DefaultConfig()).EvaluateTrade(tr)
	require.NoError(t, err)
	assert.Equal(t, 65.0, ev.Score)
	assert.Equal(t, model.VerdictAverage, ev.Verdict)
}

func TestEvaluateTrade_Preconditions(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	_, err := e.EvaluateTrade(nil)
	var invalid *InvalidTradeError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "trade", invalid.Field)
	assert.True(t, errors.Is(err, ErrInvalidTrade))

	for _, id := range []model.ID{"", "   ", "\t"} {
		tr := goodTrade()
		tr.TradeID = id
		_, err := e.EvaluateTrade(tr)
		require.True(t, errors.As(err, &invalid), "id=%q", id)
		assert.Equal(t, "tradeId", invalid.Field)
	}

	tr := goodTrade()
	tr.TradeID = "  T009 "
	ev, err := e.EvaluateTrade(tr)
	require.NoError(t, err)
	assert.Equal(t, "T009", ev.TradeID)
}

func TestEvaluateTrade_Deterministic(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	for _, tr := range []*model.RawTrade{goodTrade(), badTrade(), {TradeID: "X"}} {
		first, err := e.EvaluateTrade(tr)
		require.NoError(t, err)
		second, err := e.EvaluateTrade(tr)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		a, _ := json.Marshal(first)
		b, _ := json.Marshal(second)
		assert.Equal(t, string(a), string(b))
	}
}

func TestEvaluateTrade_ScoreBoundsAndMonotonic(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	// every combination of the four rule outcomes
	for mask := 0; mask < 16; mask++ {
		tr := &model.RawTrade{TradeID: "M", EntryPrice: model.Num(100), ExitPrice: model.Num(110)}
		if mask&1 != 0 {
			tr.StopLoss = model.Num(95)
		}
		if mask&2 != 0 {
			tr.RiskPercent = model.Num(0.5)
		} else {
			tr.RiskPercent = model.Num(5)
		}
		if mask&4 != 0 {
			tr.RRRatio = model.Num(3)
		}
		if mask&8 != 0 {
			tr.RuleFollowed = true
		}

		ev, err := e.EvaluateTrade(tr)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ev.Score, 0.0)
		assert.LessOrEqual(t, ev.Score, 100.0)
		assert.Contains(t, []model.Verdict{model.VerdictGood, model.VerdictAverage, model.VerdictBad}, ev.Verdict)

		// failing one more rule never raises the score
		for bit := 0; bit < 4; bit++ {
			if mask&(1<<bit) == 0 {
				continue
			}
			worse := *tr
			switch bit {
			case 0:
				worse.StopLoss = model.Number{}
			case 1:
				worse.RiskPercent = model.Num(5)
			case 2:
				worse.RRRatio = model.Number{}
			case 3:
				worse.RuleFollowed = false
			}
			wev, err := e.EvaluateTrade(&worse)
			require.NoError(t, err)
			assert.LessOrEqual(t, wev.Score, ev.Score)
		}
	}
}

func TestEvaluateTrade_ConfigIsCopied(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEvaluator(cfg)
	cfg.Penalties[model.RuleStopLoss] = 100

	tr := goodTrade()
	tr.StopLoss = model.Number{}
	ev, err := e.EvaluateTrade(tr)
	require.NoError(t, err)
	assert.Equal(t, 75.0, ev.Score)
	assert.Equal(t, 25.0, e.Config().Penalties[model.RuleStopLoss])
}

func TestEvaluateTradeJSON(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	ev, err := e.EvaluateTradeJSON(json.RawMessage(`{
		"tradeId": "T001", "entryPrice": 100, "exitPrice": 105, "stopLoss": 98,
		"riskPercent": 0.8, "rrRatio": 2.5, "pnl": 50, "ruleFollowed": true
	}`))
	require.NoError(t, err)
	assert.Equal(t, model.VerdictGood, ev.Verdict)

	for _, payload := range []string{`[]`, `"T001"`, `42`, `null`, ``} {
		_, err := e.EvaluateTradeJSON(json.RawMessage(payload))
		assert.True(t, errors.Is(err, ErrInvalidTrade), "payload %q", payload)
	}

	_, err = e.EvaluateTradeJSON(json.RawMessage(`{"entryPrice": 1}`))
	var invalid *InvalidTradeError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "tradeId", invalid.Field)
}
