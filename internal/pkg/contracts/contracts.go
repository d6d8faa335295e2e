package contracts

import (
	"errors"
	"math"
	"sort"
	"strings"
)

// Categories of the supported futures contracts.
const (
	CategoryEquityIndex = "equity_index"
	CategoryEnergy      = "energy"
	CategoryMetals      = "metals"
	CategoryCurrency    = "currency"
	CategoryAgriculture = "agriculture"
	CategoryRates       = "rates"
)

// Spec describes one futures contract. The table is static and compiled in;
// monetary values are USD.
type Spec struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Margin     float64 `json:"margin"`
	TickValue  float64 `json:"tick_value"`
	TickSize   float64 `json:"tick_size"`
	Multiplier float64 `json:"multiplier"`
}

var specs = map[string]Spec{
	"ES":  {Symbol: "ES", Name: "E-mini S&P 500", Category: CategoryEquityIndex, Margin: 13200, TickValue: 12.50, TickSize: 0.25, Multiplier: 50},
	"MES": {Symbol: "MES", Name: "Micro E-mini S&P 500", Category: CategoryEquityIndex, Margin: 1320, TickValue: 1.25, TickSize: 0.25, Multiplier: 5},
	"NQ":  {Symbol: "NQ", Name: "E-mini Nasdaq-100", Category: CategoryEquityIndex, Margin: 17600, TickValue: 5.00, TickSize: 0.25, Multiplier: 20},
	"MNQ": {Symbol: "MNQ", Name: "Micro E-mini Nasdaq-100", Category: CategoryEquityIndex, Margin: 1760, TickValue: 0.50, TickSize: 0.25, Multiplier: 2},
	"YM":  {Symbol: "YM", Name: "E-mini Dow", Category: CategoryEquityIndex, Margin: 9900, TickValue: 5.00, TickSize: 1.00, Multiplier: 5},
	"MYM": {Symbol: "MYM", Name: "Micro E-mini Dow", Category: CategoryEquityIndex, Margin: 990, TickValue: 0.50, TickSize: 1.00, Multiplier: 0.5},
	"RTY": {Symbol: "RTY", Name: "E-mini Russell 2000", Category: CategoryEquityIndex, Margin: 7600, TickValue: 5.00, TickSize: 0.10, Multiplier: 50},
	"CL":  {Symbol: "CL", Name: "Crude Oil", Category: CategoryEnergy, Margin: 6100, TickValue: 10.00, TickSize: 0.01, Multiplier: 1000},
	"MCL": {Symbol: "MCL", Name: "Micro Crude Oil", Category: CategoryEnergy, Margin: 610, TickValue: 1.00, TickSize: 0.01, Multiplier: 100},
	"NG":  {Symbol: "NG", Name: "Natural Gas", Category: CategoryEnergy, Margin: 2500, TickValue: 10.00, TickSize: 0.001, Multiplier: 10000},
	"GC":  {Symbol: "GC", Name: "Gold", Category: CategoryMetals, Margin: 11500, TickValue: 10.00, TickSize: 0.10, Multiplier: 100},
	"MGC": {Symbol: "MGC", Name: "Micro Gold", Category: CategoryMetals, Margin: 1150, TickValue: 1.00, TickSize: 0.10, Multiplier: 10},
	"SI":  {Symbol: "SI", Name: "Silver", Category: CategoryMetals, Margin: 13750, TickValue: 25.00, TickSize: 0.005, Multiplier: 5000},
	"HG":  {Symbol: "HG", Name: "Copper", Category: CategoryMetals, Margin: 8250, TickValue: 12.50, TickSize: 0.0005, Multiplier: 25000},
	"6E":  {Symbol: "6E", Name: "Euro FX", Category: CategoryCurrency, Margin: 2800, TickValue: 6.25, TickSize: 0.00005, Multiplier: 125000},
	"6B":  {Symbol: "6B", Name: "British Pound", Category: CategoryCurrency, Margin: 2200, TickValue: 6.25, TickSize: 0.0001, Multiplier: 62500},
	"ZC":  {Symbol: "ZC", Name: "Corn", Category: CategoryAgriculture, Margin: 2100, TickValue: 12.50, TickSize: 0.25, Multiplier: 50},
	"ZW":  {Symbol: "ZW", Name: "Wheat", Category: CategoryAgriculture, Margin: 2400, TickValue: 12.50, TickSize: 0.25, Multiplier: 50},
	"ZN":  {Symbol: "ZN", Name: "10-Year T-Note", Category: CategoryRates, Margin: 2200, TickValue: 15.625, TickSize: 0.015625, Multiplier: 1000},
	"ZB":  {Symbol: "ZB", Name: "30-Year T-Bond", Category: CategoryRates, Margin: 4500, TickValue: 31.25, TickSize: 0.03125, Multiplier: 1000},
}

// ErrUnknownSymbol is returned for symbols outside the static table.
var ErrUnknownSymbol = errors.New("unknown contract symbol")

// Get looks up one contract spec, case-insensitive.
func Get(symbol string) (Spec, error) {
	spec, ok := specs[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return Spec{}, ErrUnknownSymbol
	}
	return spec, nil
}

// All returns the full table sorted by symbol.
func All() []Spec {
	out := make([]Spec, 0, len(specs))
	for _, spec := range specs {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// ByCategory returns the contracts in one category sorted by symbol.
func ByCategory(category string) []Spec {
	var out []Spec
	for _, spec := range specs {
		if spec.Category == strings.ToLower(strings.TrimSpace(category)) {
			out = append(out, spec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// PositionSizeInput is one position-sizing request.
type PositionSizeInput struct {
	Symbol      string  `json:"symbol" validate:"required"`
	AccountSize float64 `json:"account_size" validate:"required,gt=0"`
	RiskPercent float64 `json:"risk_percent" validate:"required,gt=0,lte=100"`
	EntryPrice  float64 `json:"entry" validate:"required,gt=0"`
	StopPrice   float64 `json:"stop" validate:"required,gt=0"`
}

// PositionSizeResult is the sizing recommendation for one trade setup.
type PositionSizeResult struct {
	Symbol         string  `json:"symbol"`
	Contracts      int     `json:"contracts"`
	RiskAmount     float64 `json:"risk_amount"`
	RiskPerContr   float64 `json:"risk_per_contract"`
	TicksAtRisk    float64 `json:"ticks_at_risk"`
	MarginRequired float64 `json:"margin_required"`
	MarginOK       bool    `json:"margin_ok"`
}

// PositionSize computes how many contracts fit the account's risk budget:
// risk budget = account_size * risk_percent / 100, risk per contract =
// ticks between entry and stop * tick value. Contracts are floored, never
// rounded up, and the margin check compares total initial margin against
// the account size.
func PositionSize(in PositionSizeInput) (PositionSizeResult, error) {
	spec, err := Get(in.Symbol)
	if err != nil {
		return PositionSizeResult{}, err
	}
	if in.AccountSize <= 0 {
		return PositionSizeResult{}, errors.New("account size must be positive")
	}
	if in.RiskPercent <= 0 || in.RiskPercent > 100 {
		return PositionSizeResult{}, errors.New("risk percent must be in (0, 100]")
	}
	if in.EntryPrice <= 0 || in.StopPrice <= 0 {
		return PositionSizeResult{}, errors.New("entry and stop prices must be positive")
	}
	if in.EntryPrice == in.StopPrice {
		return PositionSizeResult{}, errors.New("entry and stop prices must differ")
	}

	ticksAtRisk := math.Abs(in.EntryPrice-in.StopPrice) / spec.TickSize
	riskPerContract := ticksAtRisk * spec.TickValue
	riskAmount := in.AccountSize * in.RiskPercent / 100

	contracts := int(math.Floor(riskAmount / riskPerContract))
	if contracts < 0 {
		contracts = 0
	}

	marginRequired := float64(contracts) * spec.Margin
	return PositionSizeResult{
		Symbol:         spec.Symbol,
		Contracts:      contracts,
		RiskAmount:     riskAmount,
		RiskPerContr:   riskPerContract,
		TicksAtRisk:    ticksAtRisk,
		MarginRequired: marginRequired,
		MarginOK:       marginRequired <= in.AccountSize,
	}, nil
}
