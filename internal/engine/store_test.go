package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal/internal/model"
)

func entryAt(session, id string, at time.Time, verdict model.Verdict, pnl float64) model.JournalEntry {
	return model.JournalEntry{
		EntryID:   session + "-" + id,
		SessionID: session,
		Trade:     model.RawTrade{TradeID: model.ID(id)},
		Evaluation: model.TradeEvaluation{
			TradeID: id,
			Verdict: verdict,
			Metrics: model.TradeMetrics{PnL: pnl},
		},
		LoggedAt: at,
	}
}

func TestStore_AppendAndEntries(t *testing.T) {
	s := NewStore(0)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	s.Append(entryAt("mon", "T1", base, model.VerdictGood, 50))
	s.Append(entryAt("mon", "T2", base.Add(time.Minute), model.VerdictBad, -20))
	s.Append(entryAt("tue", "T3", base.Add(time.Hour), model.VerdictAverage, 5))

	entries, ok := s.Entries("mon")
	require.True(t, ok)
	require.Len(t, entries, 2)
	assert.Equal(t, "T1", entries[0].Evaluation.TradeID)
	assert.Equal(t, "T2", entries[1].Evaluation.TradeID)

	// returned slices are copies
	entries[0].SessionID = "changed"
	again, _ := s.Entries("mon")
	assert.Equal(t, "mon", again[0].SessionID)

	trades, ok := s.Trades("mon")
	require.True(t, ok)
	assert.Equal(t, model.ID("T2"), trades[1].TradeID)

	_, ok = s.Entries("wed")
	assert.False(t, ok)
}

func TestStore_MaxEntries(t *testing.T) {
	s := NewStore(2)
	base := time.Now()
	for i := 0; i < 4; i++ {
		s.Append(entryAt("s", fmt.Sprintf("T%d", i), base, model.VerdictGood, 0))
	}
	entries, _ := s.Entries("s")
	require.Len(t, entries, 2)
	assert.Equal(t, "T2", entries[0].Evaluation.TradeID)
	assert.Equal(t, "T3", entries[1].Evaluation.TradeID)
}

func TestStore_Snapshot(t *testing.T) {
	s := NewStore(0)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.Append(entryAt("b", "T1", base, model.VerdictGood, 50))
	s.Append(entryAt("b", "T2", base.Add(time.Minute), model.VerdictBad, -20))
	s.Append(entryAt("a", "T3", base, model.VerdictAverage, 5))

	snap := s.Snapshot()
	assert.Equal(t, 3, snap.EntryCount)
	require.Len(t, snap.Sessions, 2)
	assert.Equal(t, "a", snap.Sessions[0].SessionID)

	b := snap.Sessions[1]
	assert.Equal(t, 2, b.TradeCount)
	assert.Equal(t, 30.0, b.NetPnL)
	assert.Equal(t, 1, b.GoodTrades)
	assert.Equal(t, 1, b.BadTrades)
	assert.Equal(t, base, b.FirstLogged)
	assert.Equal(t, base.Add(time.Minute), b.LastLogged)
}

func TestStore_PurgeSessions(t *testing.T) {
	s := NewStore(0)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.Append(entryAt("old", "T1", base, model.VerdictGood, 0))
	s.Append(entryAt("new", "T2", base.Add(48*time.Hour), model.VerdictGood, 0))

	assert.Equal(t, 1, s.PurgeSessions(base.Add(24*time.Hour)))
	_, ok := s.Entries("old")
	assert.False(t, ok)
	_, ok = s.Entries("new")
	assert.True(t, ok)
}

func TestStore_ConcurrentAppend(t *testing.T) {
	s := NewStore(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Append(entryAt("s", fmt.Sprintf("%d-%d", i, j), time.Now(), model.VerdictGood, 1))
				_ = s.Snapshot()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 400, s.Snapshot().EntryCount)
}
