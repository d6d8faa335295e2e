package analytics

import "testing"

func TestGrowthPercent(t *testing.T) {
	tests := []struct {
		previous float64
		current  float64
		want     float64
	}{
		{previous: 0, current: 10, want: 100},
		{previous: 0, current: 0, want: 0},
		{previous: 10, current: 15, want: 50},
		{previous: 10, current: 5, want: -50},
		{previous: 10, current: 10, want: 0},
		{previous: 3, current: 4, want: 33.33},
	}

	for _, tt := range tests {
		if got := GrowthPercent(tt.previous, tt.current); got != tt.want {
			t.Fatalf("GrowthPercent(%v, %v) = %v, want %v", tt.previous, tt.current, got, tt.want)
		}
	}
}

func TestConversionRate(t *testing.T) {
	if got := ConversionRate(25, 100); got != 25 {
		t.Fatalf("ConversionRate(25, 100) = %v, want 25", got)
	}
	if got := ConversionRate(1, 3); got != 33.33 {
		t.Fatalf("ConversionRate(1, 3) = %v, want 33.33", got)
	}
	if got := ConversionRate(5, 0); got != 0 {
		t.Fatalf("ConversionRate(5, 0) = %v, want 0", got)
	}
}

func TestFallbackMRR(t *testing.T) {
	if got := FallbackMRR(10, 29.99); got != 299.90 {
		t.Fatalf("FallbackMRR(10, 29.99) = %v, want 299.90", got)
	}
	if got := FallbackMRR(0, 29.99); got != 0 {
		t.Fatalf("FallbackMRR(0, 29.99) = %v, want 0", got)
	}
	if got := FallbackMRR(3, 0); got != 0 {
		t.Fatalf("FallbackMRR(3, 0) = %v, want 0", got)
	}
}
