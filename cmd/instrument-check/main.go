// instrument-check is a diagnostic tool that resolves instrument specs and
// prints the money figures the calculator derives for a sample position.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"trade-journal/internal/config"
	"trade-journal/internal/instrument"
	"trade-journal/internal/model"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("instrument-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "optional config file with extra instrument specs")
	market := fs.String("market", "", "market to resolve (FOREX, COMMODITY, CRYPTO, INDIAN)")
	symbol := fs.String("symbol", "", "symbol to resolve")
	subtype := fs.String("subtype", "", "Indian instrument subtype (equity, index, derivative)")
	list := fs.Bool("list", false, "list known symbols of -market, or of every market")
	strict := fs.Bool("strict", false, "exit non-zero when only a default spec matched")
	direction := fs.String("direction", "BUY", "position direction")
	entry := fs.Float64("entry", 0, "entry price")
	exit := fs.Float64("exit", 0, "exit price")
	stop := fs.Float64("stop", 0, "stop-loss price")
	target := fs.Float64("target", 0, "take-profit price")
	lots := fs.Float64("lots", 1, "lot size or quantity")
	balance := fs.Float64("balance", 0, "account balance for risk percent")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var extra []model.InstrumentSpec
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "[instrument-check] %v\n", err)
			return 1
		}
		extra = cfg.Instruments
	}
	registry := instrument.NewRegistry(extra...)

	if *list {
		markets := registry.Markets()
		if *market != "" {
			markets = []model.Market{model.ParseMarket(*market)}
		}
		for _, m := range markets {
			fmt.Fprintf(stdout, "%-10s %s\n", m, strings.Join(registry.Symbols(string(m)), " "))
		}
		return 0
	}

	if *market == "" && *symbol == "" {
		fmt.Fprintln(stderr, "[instrument-check] -market/-symbol or -list required")
		fs.Usage()
		return 2
	}

	res := registry.Resolve(*market, *symbol, *subtype)
	fmt.Fprintf(stdout, "SPEC   %s %s  lotKind=%s contract=%g minLot=%g step=%g subtype=%q  via=%s\n",
		res.Spec.Market, res.Spec.Symbol, res.Spec.LotKind, res.Spec.ContractSize,
		res.Spec.MinLotSize, res.Spec.LotIncrement, res.Spec.InstrumentSubtype, res.Source)
	if *strict && res.Fallback() {
		fmt.Fprintf(stderr, "[instrument-check] %s %s: no exact spec, resolved via %s\n", *market, *symbol, res.Source)
		return 1
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	num := func(name string, v float64) model.Number {
		if !set[name] {
			return model.Number{}
		}
		return model.Num(v)
	}

	calc := instrument.NewCalculator(registry)
	q := calc.Quote(instrument.QuoteRequest{
		Instrument:     instrument.Instrument{Market: *market, Symbol: *symbol, Subtype: *subtype},
		Direction:      *direction,
		Entry:          num("entry", *entry),
		Exit:           num("exit", *exit),
		StopLoss:       num("stop", *stop),
		TakeProfit:     num("target", *target),
		LotSize:        model.Num(*lots),
		AccountBalance: num("balance", *balance),
	})
	fmt.Fprintf(stdout, "SIZE   units=%.4f value=%.2f\n", q.PositionSize, q.PositionValue)
	fmt.Fprintf(stdout, "PNL    %.2f\n", q.PnL)
	fmt.Fprintf(stdout, "RISK   amount=%.2f reward=%.2f rr=%.2f risk%%=%.2f\n",
		q.RiskAmount, q.RewardAmount, q.RRRatio, q.RiskPercent)
	return 0
}
