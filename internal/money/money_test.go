package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestEvenShare(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		n     int
		want  int64
	}{
		{"exact split", 900_000, 3, 300_000},
		{"rounds to nearest hundred", 1_000_000, 3, 333_300},
		{"rounds half up", 250, 1, 300},
		{"rounds down below half", 1_000, 6, 200},
		{"single participant keeps total rounded", 123_456, 1, 123_500},
		{"zero participants yields zero", 500_000, 0, 0},
		{"negative participant count yields zero", 500_000, -2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvenShare(d(tt.total), tt.n)
			assert.True(t, d(tt.want).Equal(got), "got %s, want %d", got, tt.want)
		})
	}
}

func TestEvenShare_SumMayDifferFromTotal(t *testing.T) {
	share := EvenShare(d(1_000_000), 3)

	sum := share.Mul(d(3))

	assert.True(t, d(999_900).Equal(sum))
}

func TestCeilTo(t *testing.T) {
	assert.True(t, d(123_500).Equal(CeilTo(d(123_456), d(100))))
	assert.True(t, d(123_500).Equal(CeilTo(d(123_500), d(100))))
	assert.True(t, d(124_000).Equal(CeilTo(d(123_456), d(1_000))))
	assert.True(t, d(123_457).Equal(CeilTo(decimal.RequireFromString("123456.2"), d(1))))
	assert.True(t, d(123_457).Equal(CeilTo(decimal.RequireFromString("123456.2"), decimal.Zero)))
}

func TestPercent(t *testing.T) {
	assert.True(t, d(11_000).Equal(Percent(d(100_000), d(11))))
	assert.True(t, decimal.RequireFromString("2500").Equal(Percent(d(50_000), decimal.RequireFromString("5"))))
}

func TestNonNegative(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(NonNegative(d(-5))))
	assert.True(t, d(5).Equal(NonNegative(d(5))))
}

func TestFormatIDR(t *testing.T) {
	assert.Equal(t, "Rp 0", FormatIDR(decimal.Zero))
	assert.Equal(t, "Rp 900", FormatIDR(d(900)))
	assert.Equal(t, "Rp 1.234.500", FormatIDR(d(1_234_500)))
	assert.Equal(t, "Rp 300.000", FormatIDR(d(300_000)))
	assert.Equal(t, "Rp 333.334", FormatIDR(decimal.RequireFromString("333333.5")))
	assert.Equal(t, "-Rp 50.000", FormatIDR(d(-50_000)))
	assert.Equal(t, "Rp 12.345.678.900", FormatIDR(d(12_345_678_900)))
}
