// Package core holds the dashboard domain model and the numeric helpers used
// to read it out of a human-edited spreadsheet.
//
// Spreadsheet cells arrive in pt-BR formatting ("R$ 1.234,56"). The helpers in
// this file never fail: anything that is not a number reads as zero.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// CurrencySymbol is the marker used by the sheet for monetary cells.
const CurrencySymbol = "R$"

// ParseCurrency converts a locale-formatted monetary cell into a float.
//
// It removes the currency symbol, every whitespace rune (non-breaking spaces
// included) and the "." grouping separators, turns the decimal comma into a
// point and parses the rest strictly. Empty, non-numeric and malformed input
// returns exactly 0, and so does a value too large for a float64.
//
// Examples:
//
//	ParseCurrency("R$ 1.234,56") -> 1234.56
//	ParseCurrency("4500")        -> 4500
//	ParseCurrency("1,2,3")       -> 0
//	ParseCurrency("")            -> 0
func ParseCurrency(s string) float64 {
	if strings.TrimSpace(s) == "" {
		return 0
	}
	clean := strings.Map(func(r rune) rune {
		if r == 'R' || r == '$' || r == '.' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	clean = strings.Replace(clean, ",", ".", 1)
	if clean == "" {
		return 0
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// ParseCount reads the leading integer of a counter cell ("3", "3 reuniões").
// Cells without a leading integer return 0.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// HasCurrencySymbol reports whether the cell is formatted as money.
func HasCurrencySymbol(s string) bool {
	return strings.Contains(s, CurrencySymbol)
}

// FormatBRL renders a value the way the dashboard shows it: "R$ 1.234,56".
// Non-finite values render as zero.
func FormatBRL(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		v = 0
	}
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := CurrencySymbol + " " + b.String() + "," + frac
	if neg {
		return "-" + out
	}
	return out
}
