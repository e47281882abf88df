// Package instrument resolves per-instrument contract economics and converts
// prices and position sizes into money amounts.
package instrument

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"trade-journal/internal/model"
)

// ErrUnknownInstrument is returned by ResolveStrict when only a fallback spec matched.
var ErrUnknownInstrument = errors.New("unknown instrument")

// Source records which step of the lookup chain produced a spec.
type Source string

const (
	SourceSymbol           Source = "symbol"            // exact symbol entry
	SourceSubtype          Source = "subtype"           // subtype has a single spec (Indian equity)
	SourceSubtypeDefault   Source = "subtype-default"   // unknown symbol within an Indian subtype
	SourceMarketDefault    Source = "market-default"    // market DEFAULT entry
	SourceUniversalDefault Source = "universal-default" // unknown market
)

// Resolution is a resolved spec together with how it was found.
type Resolution struct {
	Spec   model.InstrumentSpec `json:"spec"`
	Source Source               `json:"source"`
}

// Fallback reports whether the spec came from a default rather than a direct match.
func (r Resolution) Fallback() bool {
	return r.Source != SourceSymbol && r.Source != SourceSubtype
}

type query struct {
	market  model.Market
	symbol  string
	subtype model.Subtype
}

// resolver is one step of the lookup chain. ok=false passes to the next step.
type resolver func(q query) (Resolution, bool)

// Registry is an immutable lookup of instrument specs.
type Registry struct {
	markets  map[model.Market]table
	subtypes map[model.Subtype]table
	chain    []resolver
}

// NewRegistry builds a registry from the built-in tables plus any extra specs.
// Extra specs override built-in entries with the same market and symbol.
func NewRegistry(extra ...model.InstrumentSpec) *Registry {
	r := &Registry{
		markets:  cloneTables(marketTables),
		subtypes: cloneTables(subtypeTables),
	}
	for _, s := range extra {
		r.add(s)
	}
	r.chain = []resolver{
		r.resolveIndianEquity,
		r.resolveIndianSubtype,
		r.resolveIndianUntyped,
		r.resolveMarketSymbol,
		r.resolveMarketDefault,
		resolveUniversal,
	}
	return r
}

func (r *Registry) add(s model.InstrumentSpec) {
	s.Market = model.ParseMarket(string(s.Market))
	s.Symbol = normalizeSymbol(s.Symbol)
	s.InstrumentSubtype = model.ParseSubtype(string(s.InstrumentSubtype))
	if s.Symbol == "" || s.ContractSize <= 0 {
		return
	}
	if s.LotKind == "" {
		s.LotKind = model.LotFixed
	}

	if s.Market == model.MarketIndian {
		if t, ok := r.subtypes[s.InstrumentSubtype]; ok {
			t[s.Symbol] = s
			return
		}
	}
	t, ok := r.markets[s.Market]
	if !ok {
		t = make(table)
		r.markets[s.Market] = t
	}
	t[s.Symbol] = s
}

// Resolve returns the spec for an instrument. It never fails: unknown symbols
// fall back to the market DEFAULT, unknown markets to the universal default.
func (r *Registry) Resolve(market, symbol, subtype string) Resolution {
	q := query{
		market:  model.ParseMarket(market),
		symbol:  normalizeSymbol(symbol),
		subtype: model.ParseSubtype(subtype),
	}
	for _, step := range r.chain {
		if res, ok := step(q); ok {
			return res
		}
	}
	// unreachable: resolveUniversal always matches
	return Resolution{Spec: universalDefault, Source: SourceUniversalDefault}
}

// ResolveSpec is Resolve without the provenance.
func (r *Registry) ResolveSpec(market, symbol, subtype string) model.InstrumentSpec {
	return r.Resolve(market, symbol, subtype).Spec
}

// ResolveStrict fails with ErrUnknownInstrument when only a fallback matched.
func (r *Registry) ResolveStrict(market, symbol, subtype string) (model.InstrumentSpec, error) {
	res := r.Resolve(market, symbol, subtype)
	if res.Fallback() {
		return res.Spec, fmt.Errorf("%w: market=%q symbol=%q subtype=%q resolved via %s",
			ErrUnknownInstrument, market, symbol, subtype, res.Source)
	}
	return res.Spec, nil
}

// Symbols lists the known symbols of a market in sorted order, DEFAULT excluded.
// For the Indian market the index and derivative tables are included.
func (r *Registry) Symbols(market string) []string {
	m := model.ParseMarket(market)
	seen := make(map[string]struct{})
	for sym := range r.markets[m] {
		seen[sym] = struct{}{}
	}
	if m == model.MarketIndian {
		for _, st := range indianLookupOrder {
			for sym := range r.subtypes[st] {
				seen[sym] = struct{}{}
			}
		}
	}
	delete(seen, defaultSymbol)

	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Markets lists the markets with a symbol table.
func (r *Registry) Markets() []model.Market {
	out := make([]model.Market, 0, len(r.markets))
	for m := range r.markets {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) resolveIndianEquity(q query) (Resolution, bool) {
	if q.market != model.MarketIndian || q.subtype != model.SubtypeEquity {
		return Resolution{}, false
	}
	return Resolution{Spec: indianEquityDefault, Source: SourceSubtype}, true
}

func (r *Registry) resolveIndianSubtype(q query) (Resolution, bool) {
	if q.market != model.MarketIndian {
		return Resolution{}, false
	}
	t, ok := r.subtypes[q.subtype]
	if !ok {
		return Resolution{}, false
	}
	if s, ok := t[q.symbol]; ok {
		return Resolution{Spec: s, Source: SourceSymbol}, true
	}
	s := indianEquityDefault
	s.InstrumentSubtype = q.subtype
	return Resolution{Spec: s, Source: SourceSubtypeDefault}, true
}

func (r *Registry) resolveIndianUntyped(q query) (Resolution, bool) {
	if q.market != model.MarketIndian {
		return Resolution{}, false
	}
	for _, st := range indianLookupOrder {
		if s, ok := r.subtypes[st][q.symbol]; ok {
			return Resolution{Spec: s, Source: SourceSymbol}, true
		}
	}
	return Resolution{}, false
}

func (r *Registry) resolveMarketSymbol(q query) (Resolution, bool) {
	if q.symbol == "" || q.symbol == defaultSymbol {
		return Resolution{}, false
	}
	s, ok := r.markets[q.market][q.symbol]
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Spec: s, Source: SourceSymbol}, true
}

func (r *Registry) resolveMarketDefault(q query) (Resolution, bool) {
	s, ok := r.markets[q.market][defaultSymbol]
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Spec: s, Source: SourceMarketDefault}, true
}

func resolveUniversal(query) (Resolution, bool) {
	return Resolution{Spec: universalDefault, Source: SourceUniversalDefault}, true
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func cloneTables[K comparable](src map[K]table) map[K]table {
	out := make(map[K]table, len(src))
	for k, t := range src {
		c := make(table, len(t))
		for sym, s := range t {
			c[sym] = s
		}
		out[k] = c
	}
	return out
}
