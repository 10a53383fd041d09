// Package money holds the decimal helpers shared by the expense, settlement and split-bill code.
// Amounts are Indonesian rupiah without a minor unit in practice, but every value is kept as an
// exact decimal so percentages and per-head divisions do not accumulate float error.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var hundred = decimal.NewFromInt(100)

// EvenShare splits total across n participants and rounds each share to the nearest 100
// (half up). The shares may not add back up to total; callers store them as they are.
func EvenShare(total decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Div(hundred).Round(0).Mul(hundred)
}

// Percent returns pct percent of amount.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// CeilTo rounds amount up to the next multiple of increment. A non-positive increment means
// no rounding beyond whole units.
func CeilTo(amount, increment decimal.Decimal) decimal.Decimal {
	if !increment.IsPositive() {
		increment = decimal.NewFromInt(1)
	}
	return amount.Div(increment).Ceil().Mul(increment)
}

// NonNegative floors amount at zero.
func NonNegative(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// FormatIDR renders an amount the way Indonesian invoices do, e.g. "Rp 1.234.500".
// Fractions are rounded to whole rupiah.
func FormatIDR(amount decimal.Decimal) string {
	// the Indonesian locale groups thousands with dots
	idr := message.NewPrinter(language.Indonesian)
	rounded := amount.Round(0)
	if rounded.IsNegative() {
		return idr.Sprintf("-Rp %d", rounded.Abs().IntPart())
	}
	return idr.Sprintf("Rp %d", rounded.IntPart())
}
