package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"trade-journal/internal/engine"
	"trade-journal/internal/instrument"
	"trade-journal/internal/model"
)

const maxBodyBytes = 1 << 20

// Journal is the engine surface the API serves.
type Journal interface {
	EvaluateTradeJSON(data json.RawMessage) (model.TradeEvaluation, error)
	EvaluateSessionJSON(data json.RawMessage) (model.SessionEvaluation, error)
	LogTradeJSON(sessionID string, data json.RawMessage) (model.JournalEntry, error)
	Session(sessionID string) (model.SessionEvaluation, error)
	Entries(sessionID string) ([]model.JournalEntry, error)
	Sessions() []engine.SessionSummary
	Status() engine.Status
	Calculator() *instrument.Calculator
	Subscribe(fn engine.Listener)
}

// Server is the REST API + WebSocket server.
type Server struct {
	journal Journal
	hub     *Hub
	logger  *zap.Logger
	mux     *http.ServeMux
	srv     *http.Server
	address string
	origin  string
}

// NewServer creates an API server and subscribes its WebSocket hub to journal events.
// allowedOrigin is echoed in CORS headers and checked on WebSocket upgrades; "*" allows any.
func NewServer(address, allowedOrigin string, journal Journal, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	s := &Server{
		journal: journal,
		hub:     NewHub(allowedOrigin, logger),
		logger:  logger,
		mux:     http.NewServeMux(),
		address: address,
		origin:  allowedOrigin,
	}
	journal.Subscribe(s.hub.Broadcast)
	s.registerRoutes()
	return s
}

// Hub returns the WebSocket hub for broadcasting.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed handler wrapped in CORS middleware.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.origin, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/evaluate/trade", s.handleEvaluateTrade)
	s.mux.HandleFunc("POST /api/evaluate/session", s.handleEvaluateSession)
	s.mux.HandleFunc("POST /api/instruments/resolve", s.handleResolve)
	s.mux.HandleFunc("GET /api/instruments", s.handleInstruments)
	s.mux.HandleFunc("POST /api/pnl", s.handlePnL)
	s.mux.HandleFunc("POST /api/journal/{session}/trades", s.handleLogTrade)
	s.mux.HandleFunc("GET /api/journal/{session}/trades", s.handleEntries)
	s.mux.HandleFunc("GET /api/journal/{session}", s.handleSession)
	s.mux.HandleFunc("GET /api/journal", s.handleSessions)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Run starts the HTTP server and the WebSocket hub.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	s.srv = &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api_server_started", zap.String("address", s.address))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ok(w, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.journal.Status()
	ok(w, struct {
		engine.Status
		WSClients int `json:"wsClients"`
	}{status, s.hub.ClientCount()})
}

func (s *Server) handleEvaluateTrade(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.fail(w, err)
		return
	}
	ev, err := s.journal.EvaluateTradeJSON(unwrap(body, "trade"))
	if err != nil {
		s.fail(w, err)
		return
	}
	ok(w, ev)
}

func (s *Server) handleEvaluateSession(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.fail(w, err)
		return
	}
	ev, err := s.journal.EvaluateSessionJSON(unwrap(body, "trades"))
	if err != nil {
		s.fail(w, err)
		return
	}
	ok(w, ev)
}

func (s *Server) handleLogTrade(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.fail(w, err)
		return
	}
	entry, err := s.journal.LogTradeJSON(r.PathValue("session"), unwrap(body, "trade"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.APIResponse{Data: entry, Timestamp: time.Now()})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ev, err := s.journal.Session(r.PathValue("session"))
	if err != nil {
		s.fail(w, err)
		return
	}
	ok(w, ev)
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.journal.Entries(r.PathValue("session"))
	if err != nil {
		s.fail(w, err)
		return
	}
	ok(w, entries)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	ok(w, s.journal.Sessions())
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var in instrument.Instrument
	if err := decodeBody(w, r, &in); err != nil {
		s.fail(w, err)
		return
	}
	ok(w, s.journal.Calculator().Registry().Resolve(in.Market, in.Symbol, in.Subtype))
}

func (s *Server) handleInstruments(w http.ResponseWriter, r *http.Request) {
	registry := s.journal.Calculator().Registry()
	if market := r.URL.Query().Get("market"); market != "" {
		ok(w, map[string]any{
			"market":  model.ParseMarket(market),
			"symbols": registry.Symbols(market),
		})
		return
	}
	all := make(map[model.Market][]string)
	for _, m := range registry.Markets() {
		all[m] = registry.Symbols(string(m))
	}
	ok(w, all)
}

func (s *Server) handlePnL(w http.ResponseWriter, r *http.Request) {
	var req instrument.QuoteRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, err)
		return
	}
	ok(w, s.journal.Calculator().Quote(req))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.HandleUpgrade(w, r)
}

// fail maps engine errors to HTTP status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	resp := model.APIResponse{Error: err.Error(), Timestamp: time.Now()}

	var tradeErr *engine.InvalidTradeError
	var inputErr *engine.InvalidInputError
	var maxErr *http.MaxBytesError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &tradeErr):
		status, resp.Field = http.StatusBadRequest, tradeErr.Field
	case errors.As(err, &inputErr):
		status, resp.Field = http.StatusBadRequest, inputErr.Field
	case errors.As(err, &maxErr):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadJSON):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrSessionNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("api_request_failed", zap.Error(err))
	}
	writeJSON(w, status, resp)
}

var errBadJSON = errors.New("invalid JSON")

func readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return nil
}

// unwrap returns body[key] when body is an object carrying key, else body itself.
func unwrap(body json.RawMessage, key string) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if !strings.HasPrefix(string(trimmed), "{") {
		return body
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return body
	}
	if inner, found := envelope[key]; found {
		return inner
	}
	return body
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, model.APIResponse{Data: data, Timestamp: time.Now()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func corsMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
