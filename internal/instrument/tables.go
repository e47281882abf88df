package instrument

import "trade-journal/internal/model"

// defaultSymbol keys the per-market fallback spec in each table.
const defaultSymbol = "DEFAULT"

// universalDefault is used when neither the symbol nor the market is known.
var universalDefault = model.InstrumentSpec{
	Symbol:       defaultSymbol,
	LotKind:      model.LotFixed,
	ContractSize: 1,
}

// indianEquityDefault is the cash-segment spec: quantity based, no lot multiplier.
var indianEquityDefault = model.InstrumentSpec{
	Symbol:            defaultSymbol,
	Market:            model.MarketIndian,
	LotKind:           model.LotNone,
	ContractSize:      1,
	MinLotSize:        1,
	LotIncrement:      1,
	InstrumentSubtype: model.SubtypeEquity,
}

func fx(symbol string) model.InstrumentSpec {
	return model.InstrumentSpec{
		Symbol:       symbol,
		Market:       model.MarketForex,
		LotKind:      model.LotFixed,
		ContractSize: 100_000,
		MinLotSize:   0.01,
		LotIncrement: 0.01,
	}
}

func commodity(symbol string, contract float64) model.InstrumentSpec {
	return model.InstrumentSpec{
		Symbol:       symbol,
		Market:       model.MarketCommodity,
		LotKind:      model.LotFixed,
		ContractSize: contract,
		MinLotSize:   0.01,
		LotIncrement: 0.01,
	}
}

func crypto(symbol string, minLot float64) model.InstrumentSpec {
	return model.InstrumentSpec{
		Symbol:       symbol,
		Market:       model.MarketCrypto,
		LotKind:      model.LotFlexible,
		ContractSize: 1,
		MinLotSize:   minLot,
		LotIncrement: minLot,
	}
}

func nse(symbol string, subtype model.Subtype, lot float64) model.InstrumentSpec {
	return model.InstrumentSpec{
		Symbol:            symbol,
		Market:            model.MarketIndian,
		LotKind:           model.LotFixed,
		ContractSize:      lot,
		MinLotSize:        1,
		LotIncrement:      1,
		InstrumentSubtype: subtype,
	}
}

type table map[string]model.InstrumentSpec

func newTable(specs ...model.InstrumentSpec) table {
	t := make(table, len(specs))
	for _, s := range specs {
		t[s.Symbol] = s
	}
	return t
}

// marketTables holds the per-market symbol tables, each with a DEFAULT entry.
var marketTables = map[model.Market]table{
	model.MarketForex: newTable(
		fx(defaultSymbol),
		fx("EURUSD"), fx("GBPUSD"), fx("USDJPY"), fx("USDCHF"),
		fx("AUDUSD"), fx("USDCAD"), fx("NZDUSD"), fx("EURGBP"),
		fx("EURJPY"), fx("GBPJPY"), fx("AUDJPY"), fx("EURCHF"),
	),
	model.MarketCommodity: newTable(
		commodity(defaultSymbol, 100),
		commodity("XAUUSD", 100),
		commodity("XAGUSD", 5_000),
		commodity("USOIL", 1_000),
		commodity("UKOIL", 1_000),
		commodity("NATGAS", 10_000),
		commodity("COPPER", 25_000),
	),
	model.MarketCrypto: newTable(
		crypto(defaultSymbol, 0.01),
		crypto("BTCUSD", 0.0001),
		crypto("ETHUSD", 0.001),
		crypto("SOLUSD", 0.01),
		crypto("XRPUSD", 1),
		crypto("BNBUSD", 0.01),
		crypto("DOGEUSD", 1),
	),
	model.MarketIndian: newTable(indianEquityDefault),
}

// subtypeTables holds the Indian index and stock-derivative lot sizes.
var subtypeTables = map[model.Subtype]table{
	model.SubtypeIndex: newTable(
		nse("NIFTY", model.SubtypeIndex, 50),
		nse("BANKNIFTY", model.SubtypeIndex, 15),
		nse("FINNIFTY", model.SubtypeIndex, 40),
		nse("MIDCPNIFTY", model.SubtypeIndex, 75),
		nse("SENSEX", model.SubtypeIndex, 10),
		nse("BANKEX", model.SubtypeIndex, 15),
	),
	model.SubtypeDerivative: newTable(
		nse("RELIANCE", model.SubtypeDerivative, 250),
		nse("TCS", model.SubtypeDerivative, 175),
		nse("INFY", model.SubtypeDerivative, 400),
		nse("HDFCBANK", model.SubtypeDerivative, 550),
		nse("ICICIBANK", model.SubtypeDerivative, 700),
		nse("SBIN", model.SubtypeDerivative, 750),
		nse("TATAMOTORS", model.SubtypeDerivative, 550),
	),
}

// indianLookupOrder is searched when an INDIAN trade carries no usable subtype.
var indianLookupOrder = []model.Subtype{model.SubtypeIndex, model.SubtypeDerivative}
