package core

import (
	"math"
	"strings"
	"testing"
)

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		in  string
		out float64
	}{
		{"R$ 1.234,56", 1234.56},
		{"R$ 4.500,00", 4500},
		{"R$ 700,00", 700},
		{"1.500", 1500},
		{"12,5", 12.5},
		{" 300 ", 300},
		{"-R$ 10,00", -10},
		{"", 0},
		{"   ", 0},
		{"abc", 0},
		{"R$", 0},
		{"1,2,3", 0},
		{"12,34abc", 0},
		{"--5", 0},
		{"9e999", 0},
		{"-9e999", 0},
		{"R$ 1" + strings.Repeat("0", 400) + ",00", 0},
	}
	for _, tc := range cases {
		if got := ParseCurrency(tc.in); got != tc.out {
			t.Fatalf("ParseCurrency(%q) = %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestParseCount(t *testing.T) {
	cases := []struct {
		in  string
		out int
	}{
		{"2", 2},
		{" 7 ", 7},
		{"3 reuniões", 3},
		{"-1", -1},
		{"2,5", 2},
		{"", 0},
		{"abc", 0},
		{"-", 0},
		{"99999999999999999999999", 0},
	}
	for _, tc := range cases {
		if got := ParseCount(tc.in); got != tc.out {
			t.Fatalf("ParseCount(%q) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		in  float64
		out string
	}{
		{0, "R$ 0,00"},
		{4500, "R$ 4.500,00"},
		{1234.56, "R$ 1.234,56"},
		{1234567.8, "R$ 1.234.567,80"},
		{-21012, "-R$ 21.012,00"},
		{999.999, "R$ 1.000,00"},
		{math.Inf(1), "R$ 0,00"},
		{math.NaN(), "R$ 0,00"},
	}
	for _, tc := range cases {
		if got := FormatBRL(tc.in); got != tc.out {
			t.Fatalf("FormatBRL(%v) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
