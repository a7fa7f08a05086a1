package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.0", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{"0.01", 0.01, true},
		{" 2.50 ", 2.5, true},
		{"1250.75", 1250.75, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatPHP(t *testing.T) {
	cases := []struct {
		in  float64
		out string
	}{
		{0, "₱0.00"},
		{5, "₱5.00"},
		{100, "₱100.00"},
		{999.999, "₱1,000.00"},
		{1234.5, "₱1,234.50"},
		{1234567.891, "₱1,234,567.89"},
		{-5, "-₱5.00"},
		{-1500.25, "-₱1,500.25"},
	}
	for _, tc := range cases {
		if got := FormatPHP(tc.in); got != tc.out {
			t.Errorf("FormatPHP(%v) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
