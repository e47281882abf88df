package engine

import (
	"sort"
	"sync"
	"time"

	"trade-journal/internal/model"
)

// Store is a thread-safe in-memory journal of logged trades grouped by session.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string][]model.JournalEntry // sessionID -> entries in logging order
	maxEntries int
}

// SessionSummary holds the headline figures of one journal session.
type SessionSummary struct {
	SessionID   string    `json:"sessionId"`
	TradeCount  int       `json:"tradeCount"`
	FirstLogged time.Time `json:"firstLogged"`
	LastLogged  time.Time `json:"lastLogged"`
	NetPnL      float64   `json:"netPnl"`
	GoodTrades  int       `json:"goodTrades"`
	BadTrades   int       `json:"badTrades"`
}

// StoreSnapshot is a point-in-time summary of all store data.
type StoreSnapshot struct {
	Sessions   []SessionSummary `json:"sessions"`
	EntryCount int              `json:"entryCount"`
}

// NewStore creates an empty journal store. Each session keeps at most
// maxEntries trades, oldest dropped first; maxEntries <= 0 means unbounded.
func NewStore(maxEntries int) *Store {
	return &Store{
		sessions:   make(map[string][]model.JournalEntry),
		maxEntries: maxEntries,
	}
}

// Append adds an entry to its session.
func (s *Store) Append(entry model.JournalEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := append(s.sessions[entry.SessionID], entry)
	if s.maxEntries > 0 && len(buf) > s.maxEntries {
		buf = buf[len(buf)-s.maxEntries:]
	}
	s.sessions[entry.SessionID] = buf
}

// Entries returns a copy of a session's entries in logging order.
func (s *Store) Entries(sessionID string) ([]model.JournalEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	out := make([]model.JournalEntry, len(list))
	copy(out, list)
	return out, true
}

// Trades returns the raw trades of a session in logging order.
func (s *Store) Trades(sessionID string) ([]*model.RawTrade, bool) {
	entries, ok := s.Entries(sessionID)
	if !ok {
		return nil, false
	}
	out := make([]*model.RawTrade, len(entries))
	for i := range entries {
		out[i] = &entries[i].Trade
	}
	return out, true
}

// PurgeSessions removes sessions whose last entry was logged before olderThan.
func (s *Store) PurgeSessions(olderThan time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, list := range s.sessions {
		if len(list) == 0 || list[len(list)-1].LoggedAt.Before(olderThan) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Snapshot returns per-session summaries sorted by session id.
func (s *Store) Snapshot() StoreSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StoreSnapshot{Sessions: make([]SessionSummary, 0, len(s.sessions))}
	for id, list := range s.sessions {
		sum := SessionSummary{SessionID: id, TradeCount: len(list)}
		for i, e := range list {
			if i == 0 {
				sum.FirstLogged = e.LoggedAt
			}
			sum.LastLogged = e.LoggedAt
			sum.NetPnL += e.Evaluation.Metrics.PnL
			switch e.Evaluation.Verdict {
			case model.VerdictGood:
				sum.GoodTrades++
			case model.VerdictBad:
				sum.BadTrades++
			}
		}
		snap.EntryCount += len(list)
		snap.Sessions = append(snap.Sessions, sum)
	}
	sort.Slice(snap.Sessions, func(i, j int) bool {
		return snap.Sessions[i].SessionID < snap.Sessions[j].SessionID
	})
	return snap
}
