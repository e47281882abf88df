package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"trade-journal/internal/model"
)

func TestEvaluateSession_Empty(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	for name, trades := range map[string][]*model.RawTrade{
		"nil":      nil,
		"empty":    {},
		"all nil":  {nil, nil},
		"all fail": {{TradeID: ""}, {TradeID: "  "}},
	} {
		t.Run(name, func(t *testing.T) {
			s := e.EvaluateSession(trades)
			assert.Equal(t, 0, s.TotalTrades)
			assert.Equal(t, model.VerdictCounts{}, s.VerdictCounts)
			assert.Equal(t, 0.0, s.ConsistencyScore)
			assert.Equal(t, model.VerdictBad, s.SessionVerdict)
			assert.NotNil(t, s.DominantFailureReasons)
			assert.Empty(t, s.DominantFailureReasons)
			assert.Empty(t, s.TradeEvaluations)
		})
	}
}

func TestEvaluateSession_Mixed(t *testing.T) {
	s := NewEvaluator(DefaultConfig()).EvaluateSession([]*model.RawTrade{goodTrade(), badTrade()})

	assert.Equal(t, 2, s.TotalTrades)
	assert.Equal(t, model.VerdictCounts{Good: 1, Average: 0, Bad: 1}, s.VerdictCounts)
	assert.Equal(t, model.VerdictPercentages{Good: 50, Average: 0, Bad: 50}, s.VerdictPercentages)
	assert.GreaterOrEqual(t, s.ConsistencyScore, 60.0)
	assert.Less(t, s.ConsistencyScore, 80.0)
	assert.Equal(t, model.VerdictAverage, s.SessionVerdict)
	require.Len(t, s.TradeEvaluations, 2)
	assert.Equal(t, "T001", s.TradeEvaluations[0].TradeID)
	assert.Equal(t, "T002", s.TradeEvaluations[1].TradeID)
}

func TestEvaluateSession_SkipsFailuresAndKeepsOrder(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := NewEvaluator(DefaultConfig())
	e.SetLogger(zap.New(core))

	s := e.EvaluateSession([]*model.RawTrade{
		nil,
		badTrade(),
		{TradeID: ""},
		goodTrade(),
		nil,
	})

	require.Len(t, s.TradeEvaluations, 2)
	assert.Equal(t, "T002", s.TradeEvaluations[0].TradeID)
	assert.Equal(t, "T001", s.TradeEvaluations[1].TradeID)
	assert.Equal(t, 2, s.TotalTrades)

	skipped := logs.FilterMessage("session_trade_skipped").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, int64(2), skipped[0].ContextMap()["index"])
}

func TestEvaluateSession_DominantFailureReasons(t *testing.T) {
	noDiscipline := func(id model.ID) *model.RawTrade {
		tr := goodTrade()
		tr.TradeID = id
		tr.RuleFollowed = false
		return tr
	}
	lowRR := func(id model.ID) *model.RawTrade {
		tr := goodTrade()
		tr.TradeID = id
		tr.RRRatio = model.Num(1)
		return tr
	}

	s := NewEvaluator(DefaultConfig()).EvaluateSession([]*model.RawTrade{
		lowRR("a"),
		noDiscipline("b"),
		noDiscipline("c"),
		badTrade(),
	})

	require.Len(t, s.DominantFailureReasons, 3)
	assert.Equal(t, model.FailureReason{RuleID: model.RuleRuleDiscipline, Count: 3}, s.DominantFailureReasons[0])
	assert.Equal(t, model.FailureReason{RuleID: model.RuleRiskReward, Count: 2}, s.DominantFailureReasons[1])
	// STOP_LOSS and RISK_LIMIT tie at 1; STOP_LOSS failed first
	assert.Equal(t, model.FailureReason{RuleID: model.RuleStopLoss, Count: 1}, s.DominantFailureReasons[2])
}

func TestEvaluateSession_FewerThanThreeReasons(t *testing.T) {
	tr := goodTrade()
	tr.RuleFollowed = false

	s := NewEvaluator(DefaultConfig()).EvaluateSession([]*model.RawTrade{tr, goodTrade()})
	assert.Equal(t, []model.FailureReason{{RuleID: model.RuleRuleDiscipline, Count: 1}}, s.DominantFailureReasons)
	// GOOD (100) + AVERAGE (60) -> 80
	assert.Equal(t, 80.0, s.ConsistencyScore)
	assert.Equal(t, model.VerdictGood, s.SessionVerdict)
}

func TestEvaluateSession_Rounding(t *testing.T) {
	s := NewEvaluator(DefaultConfig()).EvaluateSession([]*model.RawTrade{goodTrade(), goodTrade(), badTrade()})

	assert.Equal(t, model.VerdictPercentages{Good: 67, Average: 0, Bad: 33}, s.VerdictPercentages)
	// (100 + 100 + 20) / 3 = 73.33
	assert.Equal(t, 73.0, s.ConsistencyScore)
	assert.Equal(t, model.VerdictAverage, s.SessionVerdict)
}

func TestEvaluateSessionJSON(t *testing.T) {
	e := NewEvaluator(DefaultConfig())

	s, err := e.EvaluateSessionJSON(json.RawMessage(`[
		{"tradeId":"T001","entryPrice":100,"exitPrice":105,"stopLoss":98,"riskPercent":0.8,"rrRatio":2.5,"pnl":50,"ruleFollowed":true},
		null,
		"garbage",
		{"entryPrice":1},
		{"tradeId":"T002","entryPrice":100,"exitPrice":95,"stopLoss":null,"riskPercent":2.5,"rrRatio":0.8,"pnl":-50,"ruleFollowed":false}
	]`))
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalTrades)
	assert.Equal(t, model.VerdictAverage, s.SessionVerdict)

	empty, err := e.EvaluateSessionJSON(json.RawMessage(`[]`))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalTrades)
	assert.Equal(t, model.VerdictBad, empty.SessionVerdict)

	for _, payload := range []string{`{}`, `"x"`, `12`, `null`, ``} {
		_, err := e.EvaluateSessionJSON(json.RawMessage(payload))
		var invalid *InvalidInputError
		require.True(t, errors.As(err, &invalid), "payload %q", payload)
		assert.Equal(t, "trades", invalid.Field)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	}
}
