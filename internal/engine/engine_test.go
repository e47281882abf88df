package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"trade-journal/internal/model"
)

func TestEngine_LogTrade(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := New(DefaultConfig(), nil, nil)
	e.SetLogger(zap.New(core))

	var got []model.JournalEntry
	e.Subscribe(func(msgType string, data any) {
		if msgType == MessageEvaluation {
			got = append(got, data.(model.JournalEntry))
		}
	})

	raw := forexTrade()
	entry, err := e.LogTrade(" monday ", &raw)
	require.NoError(t, err)

	assert.Equal(t, "monday", entry.SessionID)
	_, err = uuid.Parse(entry.EntryID)
	assert.NoError(t, err)
	assert.Equal(t, model.VerdictGood, entry.Evaluation.Verdict)
	assert.True(t, entry.Trade.PnL.Set, "pnl enriched")
	assert.False(t, raw.PnL.Set, "caller's trade untouched")

	require.Len(t, got, 1)
	assert.Equal(t, entry.EntryID, got[0].EntryID)

	logged := logs.FilterMessage("trade_logged").All()
	require.Len(t, logged, 1)
	assert.Equal(t, "FX1", logged[0].ContextMap()["trade_id"])

	status := e.Status()
	assert.Equal(t, int64(1), status.Metrics.TradesLogged)
	assert.Equal(t, int64(1), status.Metrics.Enriched)
	assert.Equal(t, 1, status.SessionCount)
}

func TestEngine_LogTradeRejects(t *testing.T) {
	e := New(DefaultConfig(), nil, nil)
	notified := 0
	e.Subscribe(func(string, any) { notified++ })

	_, err := e.LogTrade("", goodTrade())
	var input *InvalidInputError
	require.True(t, errors.As(err, &input))
	assert.Equal(t, "session", input.Field)

	_, err = e.LogTrade("s", nil)
	assert.True(t, errors.Is(err, ErrInvalidTrade))

	_, err = e.LogTrade("s", &model.RawTrade{})
	var invalid *InvalidTradeError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "tradeId", invalid.Field)

	_, err = e.LogTradeJSON("s", json.RawMessage(`[1,2]`))
	assert.True(t, errors.Is(err, ErrInvalidTrade))

	assert.Zero(t, notified)
	assert.Empty(t, e.Sessions())
	assert.Equal(t, int64(4), e.Status().Metrics.Rejected)
}

func TestEngine_Session(t *testing.T) {
	e := New(DefaultConfig(), nil, nil)

	_, err := e.LogTrade("day", goodTrade())
	require.NoError(t, err)
	_, err = e.LogTradeJSON("day", json.RawMessage(`{"tradeId":"T002","entryPrice":100,"exitPrice":95,"riskPercent":2.5,"rrRatio":0.8,"pnl":-50}`))
	require.NoError(t, err)

	s, err := e.Session("day")
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalTrades)
	assert.Equal(t, model.VerdictCounts{Good: 1, Bad: 1}, s.VerdictCounts)
	assert.Equal(t, model.VerdictAverage, s.SessionVerdict)

	entries, err := e.Entries("day")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "T001", entries[0].Evaluation.TradeID)

	_, err = e.Session("missing")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	_, err = e.Entries("missing")
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	sessions := e.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "day", sessions[0].SessionID)
	assert.Equal(t, 2, sessions[0].TradeCount)
}

func TestEngine_StatelessEvaluation(t *testing.T) {
	e := New(DefaultConfig(), nil, nil)

	ev, err := e.EvaluateTradeJSON(json.RawMessage(`{"tradeId":"X","pnl":10}`))
	require.NoError(t, err)
	assert.Equal(t, "X", ev.TradeID)

	s, err := e.EvaluateSessionJSON(json.RawMessage(`[{"tradeId":"A"},{"tradeId":"B"}]`))
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalTrades)

	_, err = e.EvaluateSessionJSON(json.RawMessage(`{"trades":[]}`))
	assert.True(t, errors.Is(err, ErrInvalidInput))

	assert.Empty(t, e.Sessions(), "stateless evaluation stores nothing")
	m := e.Status().Metrics
	assert.Equal(t, int64(3), m.TradesEvaluated)
	assert.Equal(t, int64(1), m.SessionsEvaluated)
	assert.Equal(t, int64(1), m.Rejected)
}

func TestEngine_PurgeAndRun(t *testing.T) {
	e := New(DefaultConfig(), nil, nil)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return clock }

	_, err := e.LogTrade("old", goodTrade())
	require.NoError(t, err)

	purged := make(chan any, 1)
	e.Subscribe(func(msgType string, data any) {
		if msgType == MessagePurge {
			purged <- data
		}
	})

	clock = clock.Add(48 * time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, 5*time.Millisecond, 24*time.Hour) }()

	select {
	case <-purged:
	case <-time.After(2 * time.Second):
		t.Fatal("session was not purged")
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Empty(t, e.Sessions())
}

func TestEngine_RunWithoutRetention(t *testing.T) {
	e := New(DefaultConfig(), nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, e.Run(ctx, time.Millisecond, 0), context.DeadlineExceeded)
}
