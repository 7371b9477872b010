package utils

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "round to 2 decimals",
			input: "123.456789",
			want:  "123.46",
		},
		{
			name:  "already 2 decimals",
			input: "123.45",
			want:  "123.45",
		},
		{
			name:  "integer",
			input: "123",
			want:  "123",
		},
		{
			name:  "half away from zero",
			input: "-0.125",
			want:  "-0.13",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Round2(decimal.RequireFromString(tt.input))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Round2() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	got := Percent(decimal.NewFromFloat(3.5))
	if !got.Equal(decimal.RequireFromString("0.035")) {
		t.Errorf("Percent(3.5) = %v, want 0.035", got)
	}
}

func TestCompound(t *testing.T) {
	tests := []struct {
		name    string
		rate    string
		periods int
		want    string
	}{
		{"zero periods", "0.05", 0, "1"},
		{"one period", "0.05", 1, "1.05"},
		{"two periods", "0.1", 2, "1.21"},
		{"negative rate", "-0.5", 2, "0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compound(decimal.RequireFromString(tt.rate), tt.periods)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Compound(%s, %d) = %v, want %v", tt.rate, tt.periods, got, tt.want)
			}
		})
	}
}

func TestNonNegative(t *testing.T) {
	if got := NonNegative(decimal.NewFromInt(-5)); !got.IsZero() {
		t.Errorf("NonNegative(-5) = %v, want 0", got)
	}
	if got := NonNegative(decimal.NewFromInt(5)); !got.Equal(decimal.NewFromInt(5)) {
		t.Errorf("NonNegative(5) = %v, want 5", got)
	}
}

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  bool
	}{
		{
			name:  "finite number",
			input: 123.45,
			want:  true,
		},
		{
			name:  "infinity",
			input: math.Inf(1),
			want:  false,
		},
		{
			name:  "NaN",
			input: math.NaN(),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsFinite(tt.input)
			if got != tt.want {
				t.Errorf("IsFinite() = %v, want %v", got, tt.want)
			}
		})
	}
}
