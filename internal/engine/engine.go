package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trade-journal/internal/instrument"
	"trade-journal/internal/model"
)

// Message types delivered to listeners.
const (
	MessageEvaluation = "evaluation"
	MessagePurge      = "purge"
)

// Listener receives journal events. It is called synchronously from the
// goroutine that logged the trade and must not block.
type Listener func(msgType string, data any)

// Engine is the trade journal orchestrator.
// It enriches and evaluates logged trades, keeps them in the journal store,
// and notifies listeners of each new evaluation.
type Engine struct {
	store     *Store
	calc      *instrument.Calculator
	evaluator *Evaluator
	mu        sync.Mutex
	listeners []Listener
	started   time.Time
	metrics   Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// Status represents the current engine state for API consumers.
type Status struct {
	Time         time.Time      `json:"time"`
	StartedAt    time.Time      `json:"startedAt"`
	Snapshot     StoreSnapshot  `json:"snapshot"`
	SessionCount int            `json:"sessionCount"`
	Markets      []model.Market `json:"markets"`
	Metrics      Metrics        `json:"metrics"`
	Config       Config         `json:"config"`
}

// Metrics tracks engine processing counters.
type Metrics struct {
	TradesLogged      int64     `json:"tradesLogged"`
	TradesEvaluated   int64     `json:"tradesEvaluated"`
	SessionsEvaluated int64     `json:"sessionsEvaluated"`
	Rejected          int64     `json:"rejected"`
	Enriched          int64     `json:"enriched"`
	LastLoggedAt      time.Time `json:"lastLoggedAt"`
	LastEvaluatedAt   time.Time `json:"lastEvaluatedAt"`
}

// New creates an Engine. A nil calculator uses the built-in instrument
// tables; a nil store keeps an unbounded journal.
func New(cfg Config, calc *instrument.Calculator, store *Store) *Engine {
	if calc == nil {
		calc = instrument.NewCalculator(nil)
	}
	if store == nil {
		store = NewStore(0)
	}
	return &Engine{
		store:     store,
		calc:      calc,
		evaluator: NewEvaluator(cfg),
		started:   time.Now(),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
}

// SetLogger sets the structured logger for the engine and its evaluator.
func (e *Engine) SetLogger(logger *zap.Logger) {
	if logger != nil {
		e.logger = logger
		e.evaluator.SetLogger(logger)
	}
}

// Store returns the underlying journal store (for seeding demo data).
func (e *Engine) Store() *Store {
	return e.store
}

// Calculator returns the position and P&L calculator.
func (e *Engine) Calculator() *instrument.Calculator {
	return e.calc
}

// Subscribe registers a listener for new journal events.
func (e *Engine) Subscribe(fn Listener) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

func (e *Engine) notify(msgType string, data any) {
	e.mu.Lock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()
	for _, fn := range listeners {
		fn(msgType, data)
	}
}

// EvaluateTrade evaluates a trade without storing it.
func (e *Engine) EvaluateTrade(raw *model.RawTrade) (model.TradeEvaluation, error) {
	ev, err := e.evaluator.EvaluateTrade(raw)
	e.count(err, 1)
	return ev, err
}

// EvaluateTradeJSON decodes and evaluates a trade without storing it.
func (e *Engine) EvaluateTradeJSON(data json.RawMessage) (model.TradeEvaluation, error) {
	ev, err := e.evaluator.EvaluateTradeJSON(data)
	e.count(err, 1)
	return ev, err
}

// EvaluateSessionJSON decodes and evaluates a batch of trades without storing them.
func (e *Engine) EvaluateSessionJSON(data json.RawMessage) (model.SessionEvaluation, error) {
	s, err := e.evaluator.EvaluateSessionJSON(data)
	if err != nil {
		e.count(err, 0)
		return s, err
	}
	e.countSession(s)
	return s, nil
}

// LogTrade enriches, evaluates and stores a trade under sessionID.
func (e *Engine) LogTrade(sessionID string, raw *model.RawTrade) (model.JournalEntry, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		e.count(ErrInvalidInput, 0)
		return model.JournalEntry{}, &InvalidInputError{Field: "session", Reason: "is required"}
	}
	if raw == nil {
		e.count(ErrInvalidTrade, 0)
		return model.JournalEntry{}, &InvalidTradeError{Field: "trade", Reason: "must be an object"}
	}

	trade, filled := Enrich(e.calc, *raw)
	ev, err := e.evaluator.EvaluateTrade(&trade)
	e.count(err, 1)
	if err != nil {
		e.logger.Warn("trade_rejected", zap.String("session", sessionID), zap.Error(err))
		return model.JournalEntry{}, err
	}

	entry := model.JournalEntry{
		EntryID:    uuid.NewString(),
		SessionID:  sessionID,
		Trade:      trade,
		Evaluation: ev,
		LoggedAt:   e.now().UTC(),
	}
	e.store.Append(entry)

	e.mu.Lock()
	e.metrics.TradesLogged++
	e.metrics.LastLoggedAt = entry.LoggedAt
	if len(filled) > 0 {
		e.metrics.Enriched++
	}
	e.mu.Unlock()

	e.logger.Info("trade_logged",
		zap.String("session", sessionID),
		zap.String("trade_id", ev.TradeID),
		zap.String("entry_id", entry.EntryID),
		zap.Float64("score", ev.Score),
		zap.String("verdict", string(ev.Verdict)),
		zap.Strings("enriched", filled),
	)
	e.notify(MessageEvaluation, entry)
	return entry, nil
}

// LogTradeJSON decodes a trade object and logs it under sessionID.
func (e *Engine) LogTradeJSON(sessionID string, data json.RawMessage) (model.JournalEntry, error) {
	raw, ok := decodeTrade(data)
	if !ok {
		e.count(ErrInvalidTrade, 0)
		return model.JournalEntry{}, &InvalidTradeError{Field: "trade", Reason: "must be an object"}
	}
	return e.LogTrade(sessionID, raw)
}

// Entries returns the stored entries of a session in logging order.
func (e *Engine) Entries(sessionID string) ([]model.JournalEntry, error) {
	entries, ok := e.store.Entries(strings.TrimSpace(sessionID))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return entries, nil
}

// Session re-evaluates every stored trade of a session with the current
// configuration and aggregates the result.
func (e *Engine) Session(sessionID string) (model.SessionEvaluation, error) {
	trades, ok := e.store.Trades(strings.TrimSpace(sessionID))
	if !ok {
		return model.SessionEvaluation{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s := e.evaluator.EvaluateSession(trades)
	e.countSession(s)
	return s, nil
}

// Sessions lists summaries of every journal session.
func (e *Engine) Sessions() []SessionSummary {
	return e.store.Snapshot().Sessions
}

// Purge drops sessions with no trade logged since olderThan.
func (e *Engine) Purge(olderThan time.Time) int {
	n := e.store.PurgeSessions(olderThan)
	if n > 0 {
		e.logger.Info("journal_purged", zap.Int("sessions", n), zap.Time("older_than", olderThan))
		e.notify(MessagePurge, map[string]any{"sessions": n, "olderThan": olderThan})
	}
	return n
}

// Status returns the current engine status.
func (e *Engine) Status() Status {
	snapshot := e.store.Snapshot()

	e.mu.Lock()
	metrics := e.metrics
	e.mu.Unlock()

	return Status{
		Time:         e.now(),
		StartedAt:    e.started,
		Snapshot:     snapshot,
		SessionCount: len(snapshot.Sessions),
		Markets:      e.calc.Registry().Markets(),
		Metrics:      metrics,
		Config:       e.evaluator.Config(),
	}
}

// Run purges idle sessions every interval until ctx is cancelled.
// A non-positive retention disables purging; Run then only waits for ctx.
func (e *Engine) Run(ctx context.Context, interval, retention time.Duration) error {
	e.logger.Info("engine_started",
		zap.Duration("purge_interval", interval),
		zap.Duration("retention", retention),
	)
	if retention <= 0 || interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Purge(e.now().Add(-retention))
		}
	}
}

func (e *Engine) count(err error, evaluated int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.metrics.Rejected++
		return
	}
	e.metrics.TradesEvaluated += evaluated
	e.metrics.LastEvaluatedAt = e.now()
}

func (e *Engine) countSession(s model.SessionEvaluation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.SessionsEvaluated++
	e.metrics.TradesEvaluated += int64(s.TotalTrades)
	e.metrics.LastEvaluatedAt = e.now()
}
