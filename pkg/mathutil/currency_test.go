package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Nearly two cents", 0.019, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Exactly zero", 0.0, true},
		{"Very small positive", 0.001, true},
		{"Very small negative", -0.001, true},
		{"Just above tolerance", 0.02, false},
		{"Large negative", -100.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsZero(tt.input); result != tt.expected {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestMinMax(t *testing.T) {
	if Min(3, 5) != 3 || Min(-1, -2) != -2 {
		t.Errorf("Min returned unexpected values")
	}
	if Max(3, 5) != 5 || Max(-1, -2) != -1 {
		t.Errorf("Max returned unexpected values")
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name        string
		numerator   float64
		denominator float64
		expected    float64
	}{
		{"Regular division", 50, 200, 0.25},
		{"Zero denominator", 50, 0, 0},
		{"Negative denominator", 50, -10, 0},
		{"Negative numerator", -50, 200, -0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Ratio(tt.numerator, tt.denominator); result != tt.expected {
				t.Errorf("Ratio(%v, %v) = %v, expected %v", tt.numerator, tt.denominator, result, tt.expected)
			}
		})
	}
}

func TestCalculatePercentage(t *testing.T) {
	if result := CalculatePercentage(25, 200); result != 12.5 {
		t.Errorf("CalculatePercentage(25, 200) = %v, expected 12.5", result)
	}
	if result := CalculatePercentage(25, 0); result != 0 {
		t.Errorf("CalculatePercentage(25, 0) = %v, expected 0", result)
	}
}

func TestApplyPercentage(t *testing.T) {
	if result := ApplyPercentage(1000000, 75); result != 750000 {
		t.Errorf("ApplyPercentage(1000000, 75) = %v, expected 750000", result)
	}
	if result := PercentToDecimal(2.5); math.Abs(result-0.025) > 1e-12 {
		t.Errorf("PercentToDecimal(2.5) = %v, expected 0.025", result)
	}
}

func TestFloorToMultiple(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		step     float64
		expected float64
	}{
		{"Already a multiple", 1500000, 50000, 1500000},
		{"Just below next multiple", 1549999.99, 50000, 1500000},
		{"Below one step", 49999, 50000, 0},
		{"Negative", -10, 50000, 0},
		{"Infinite", math.Inf(1), 50000, 0},
		{"Zero step", 1234, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := FloorToMultiple(tt.input, tt.step); result != tt.expected {
				t.Errorf("FloorToMultiple(%v, %v) = %v, expected %v", tt.input, tt.step, result, tt.expected)
			}
		})
	}
}
