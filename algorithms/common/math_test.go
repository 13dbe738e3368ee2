package common

import (
	"math"
	"testing"
)

func TestPopulationMeanStdDev(t *testing.T) {
	mean, std := PopulationMeanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 {
		t.Errorf("expected mean 5, got %v", mean)
	}
	if math.Abs(std-2) > 1e-12 {
		t.Errorf("expected population std 2, got %v", std)
	}

	mean, std = PopulationMeanStdDev(nil)
	if mean != 0 || std != 0 {
		t.Errorf("expected zeros for empty input, got %v, %v", mean, std)
	}
}

func TestNearestIndex(t *testing.T) {
	sorted := []float64{0, 1, 2, 3, 4}
	tests := []struct {
		x    float64
		want int
	}{
		{-5, 0},
		{0.2, 0},
		{0.5, 0}, // tie resolves low
		{0.6, 1},
		{2.9, 3},
		{100, 4},
	}
	for _, tt := range tests {
		if got := NearestIndex(sorted, tt.x); got != tt.want {
			t.Errorf("NearestIndex(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}
	if got := NearestIndex(nil, 1); got != -1 {
		t.Errorf("expected -1 for empty slice, got %d", got)
	}
}

func TestAllFinite(t *testing.T) {
	if !AllFinite([]float64{1, -2, 0}) {
		t.Error("expected finite")
	}
	if AllFinite([]float64{1, math.Inf(1)}) || AllFinite([]float64{math.NaN()}) {
		t.Error("expected non-finite detection")
	}
}

func TestMax(t *testing.T) {
	if got := Max([]float64{1, 7, 3}); got != 7 {
		t.Errorf("expected 7, got %v", got)
	}
	if got := Max(nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %v", got)
	}
}
