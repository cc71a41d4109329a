package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
		{name: "playback rate ceiling", value: 100, min: 0, max: 64, expected: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.value, tt.min, tt.max); got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		value  float64
		places int
		want   float64
	}{
		{value: 12.3456, places: 2, want: 12.35},
		{value: 0.004, places: 2, want: 0},
		{value: 27.25, places: 1, want: 27.3},
		{value: 5, places: 0, want: 5},
		{value: 0.375 * 21.13, places: 2, want: 7.92},
	}

	for _, tt := range tests {
		if got := Round(tt.value, tt.places); math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("Round(%v, %d) = %v, want %v", tt.value, tt.places, got, tt.want)
		}
	}
}

func TestIsFinite(t *testing.T) {
	for _, v := range []float64{0, 1, -1e300} {
		if !IsFinite(v) {
			t.Fatalf("IsFinite(%v) = false", v)
		}
	}

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if IsFinite(v) {
			t.Fatalf("IsFinite(%v) = true", v)
		}
	}
}

func TestDecibels(t *testing.T) {
	for _, db := range []float64{-60, -24, -6, 0, 6} {
		if got := LinearToDB(DBToLinear(db)); math.Abs(got-db) > 1e-9 {
			t.Fatalf("LinearToDB(DBToLinear(%v)) = %v", db, got)
		}
	}

	if got := DBToLinear(-6.0206); math.Abs(got-0.5) > 1e-4 {
		t.Fatalf("DBToLinear(-6.02) = %v, want 0.5", got)
	}

	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("LinearToDB(0) should be -Inf")
	}

	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("LinearToDB(-1) should be NaN")
	}
}
