package contracts

import (
	"errors"
	"math"
	"testing"
)

func TestGet(t *testing.T) {
	spec, err := Get("es")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Symbol != "ES" || spec.TickSize != 0.25 || spec.TickValue != 12.50 {
		t.Fatalf("unexpected spec: %+v", spec)
	}

	if _, err := Get("BTC"); !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestAllSorted(t *testing.T) {
	all := All()
	if len(all) < 10 {
		t.Fatalf("expected full contract table, got %d entries", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Symbol >= all[i].Symbol {
			t.Fatalf("table not sorted at %d: %q >= %q", i, all[i-1].Symbol, all[i].Symbol)
		}
	}
}

func TestByCategory(t *testing.T) {
	metals := ByCategory("metals")
	if len(metals) == 0 {
		t.Fatalf("expected metals contracts")
	}
	for _, spec := range metals {
		if spec.Category != CategoryMetals {
			t.Fatalf("unexpected category for %s: %s", spec.Symbol, spec.Category)
		}
	}
	if got := ByCategory("crypto"); len(got) != 0 {
		t.Fatalf("expected empty result for unknown category, got %d", len(got))
	}
}

func TestPositionSize(t *testing.T) {
	// ES, 10 point stop = 40 ticks * $12.50 = $500 risk per contract.
	// 1% of $100k = $1000 budget -> 2 contracts.
	result, err := PositionSize(PositionSizeInput{
		Symbol:      "ES",
		AccountSize: 100000,
		RiskPercent: 1,
		EntryPrice:  5000,
		StopPrice:   4990,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Contracts != 2 {
		t.Fatalf("expected 2 contracts, got %d", result.Contracts)
	}
	if result.TicksAtRisk != 40 {
		t.Fatalf("expected 40 ticks at risk, got %v", result.TicksAtRisk)
	}
	if result.RiskPerContr != 500 {
		t.Fatalf("expected $500 risk per contract, got %v", result.RiskPerContr)
	}
	if math.Abs(result.RiskAmount-1000) > 1e-9 {
		t.Fatalf("expected $1000 risk budget, got %v", result.RiskAmount)
	}
	if result.MarginRequired != 26400 || !result.MarginOK {
		t.Fatalf("unexpected margin: required=%v ok=%v", result.MarginRequired, result.MarginOK)
	}
}

func TestPositionSize_FloorsContracts(t *testing.T) {
	// $900 budget / $500 per contract -> 1 contract, never rounded up.
	result, err := PositionSize(PositionSizeInput{
		Symbol:      "ES",
		AccountSize: 90000,
		RiskPercent: 1,
		EntryPrice:  5000,
		StopPrice:   4990,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Contracts != 1 {
		t.Fatalf("expected 1 contract, got %d", result.Contracts)
	}
}

func TestPositionSize_ZeroContractsWhenStopTooWide(t *testing.T) {
	result, err := PositionSize(PositionSizeInput{
		Symbol:      "ES",
		AccountSize: 5000,
		RiskPercent: 1,
		EntryPrice:  5000,
		StopPrice:   4950,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Contracts != 0 {
		t.Fatalf("expected 0 contracts for oversized stop, got %d", result.Contracts)
	}
	if !result.MarginOK {
		t.Fatalf("expected zero-contract margin to pass")
	}
}

func TestPositionSize_Validation(t *testing.T) {
	base := PositionSizeInput{Symbol: "ES", AccountSize: 100000, RiskPercent: 1, EntryPrice: 5000, StopPrice: 4990}

	tests := []struct {
		name   string
		mutate func(*PositionSizeInput)
	}{
		{name: "unknown symbol", mutate: func(in *PositionSizeInput) { in.Symbol = "XX" }},
		{name: "zero account", mutate: func(in *PositionSizeInput) { in.AccountSize = 0 }},
		{name: "zero risk", mutate: func(in *PositionSizeInput) { in.RiskPercent = 0 }},
		{name: "risk above 100", mutate: func(in *PositionSizeInput) { in.RiskPercent = 101 }},
		{name: "zero entry", mutate: func(in *PositionSizeInput) { in.EntryPrice = 0 }},
		{name: "stop equals entry", mutate: func(in *PositionSizeInput) { in.StopPrice = in.EntryPrice }},
	}

	for _, tt := range tests {
		in := base
		tt.mutate(&in)
		if _, err := PositionSize(in); err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
	}
}
