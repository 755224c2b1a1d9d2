package circuit

import (
	"math"
	"testing"
)

func TestParseParamExpr(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		// Plain numbers
		{"1.5707", 1.5707, true},
		{"3.14", 3.14, true},
		{"-0.5", -0.5, true},
		{"0", 0, true},
		{"42", 42, true},
		{"3.14e-2", 3.14e-2, true},

		// Pi constant
		{"pi", math.Pi, true},
		{"PI", math.Pi, true},
		{"Pi", math.Pi, true},

		// Pi fractions
		{"pi/2", math.Pi / 2, true},
		{"pi/4", math.Pi / 4, true},
		{"pi/3", math.Pi / 3, true},
		{"pi/8", math.Pi / 8, true},

		// Coefficients
		{"2pi", 2 * math.Pi, true},
		{"2*pi", 2 * math.Pi, true},
		{"3pi/4", 3 * math.Pi / 4, true},
		{"3*pi/4", 3 * math.Pi / 4, true},
		{"2*pi/3", 2 * math.Pi / 3, true},

		// Negative
		{"-pi", -math.Pi, true},
		{"-pi/2", -math.Pi / 2, true},
		{"-3*pi/4", -3 * math.Pi / 4, true},
		{"-2pi", -2 * math.Pi, true},

		// Whitespace
		{" pi ", math.Pi, true},
		{" pi / 2 ", math.Pi / 2, true},
		{" 3 * pi / 4 ", 3 * math.Pi / 4, true},

		// Invalid
		{"", 0, false},
		{"abc", 0, false},
		{"pi/0", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseParamExpr(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseParamExpr(%q): ok=%v, want ok=%v", tt.input, ok, tt.ok)
			continue
		}
		if ok && math.Abs(got-tt.want) > 1e-10 {
			t.Errorf("ParseParamExpr(%q) = %g, want %g", tt.input, got, tt.want)
		}
	}
}

func TestFormatParam(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 4, "pi/4"},
		{math.Pi / 3, "pi/3"},
		{3 * math.Pi / 4, "3*pi/4"},
		{-math.Pi, "-pi"},
		{-math.Pi / 2, "-pi/2"},
		{2 * math.Pi, "2*pi"},
		{1.5, "1.5"},
		{0, "0"},
		{0.01, "0.01"},
	}

	for _, tt := range tests {
		got := FormatParam(tt.input)
		if got != tt.want {
			t.Errorf("FormatParam(%g) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseParamsValidation(t *testing.T) {
	// Valid inputs
	if params := ParseParams("pi/2"); params == nil || len(params) != 1 {
		t.Errorf("ParseParams('pi/2') should return 1 param, got %v", params)
	}
	if params := ParseParams("pi/2,pi/4"); params == nil || len(params) != 2 {
		t.Errorf("ParseParams('pi/2,pi/4') should return 2 params, got %v", params)
	}
	if params := ParseParams("1.5"); params == nil || len(params) != 1 {
		t.Errorf("ParseParams('1.5') should return 1 param, got %v", params)
	}

	// Invalid inputs should return nil
	if params := ParseParams("abc"); params != nil {
		t.Errorf("ParseParams('abc') should return nil, got %v", params)
	}
	if params := ParseParams("pi/2,garbage"); params != nil {
		t.Errorf("ParseParams('pi/2,garbage') should return nil, got %v", params)
	}

	// Empty input returns nil
	if params := ParseParams(""); params != nil {
		t.Errorf("ParseParams('') should return nil, got %v", params)
	}
}
