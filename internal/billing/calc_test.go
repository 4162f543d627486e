package billing

import (
	"testing"

	"billbook/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(qty, price, discount, rate string) LineInput {
	return LineInput{
		Quantity:        d(qty),
		UnitPrice:       d(price),
		DiscountPercent: d(discount),
		TaxRatePercent:  d(rate),
	}
}

func TestCalcLineItem(t *testing.T) {
	tests := []struct {
		name       string
		line       LineInput
		amountType model.AmountType
		wantLine   string
		wantTax    string
	}{
		{"exclusive basic", line("2", "50", "0", "15"), model.AmountTypeExclusive, "100", "15"},
		{"exclusive two units", line("2", "100", "0", "15"), model.AmountTypeExclusive, "200", "30"},
		{"exclusive discount before tax", line("1", "100", "10", "15"), model.AmountTypeExclusive, "90", "13.5"},
		{"exclusive zero quantity", line("0", "100", "0", "15"), model.AmountTypeExclusive, "0", "0"},
		{"exclusive zero rate", line("5", "20", "0", "0"), model.AmountTypeExclusive, "100", "0"},
		{"exclusive full discount", line("5", "200", "100", "15"), model.AmountTypeExclusive, "0", "0"},
		{"exclusive fractional quantity", line("0.5", "100", "0", "15"), model.AmountTypeExclusive, "50", "7.5"},
		{"inclusive extracts tax", line("1", "115", "0", "15"), model.AmountTypeInclusive, "100", "15"},
		{"inclusive with discount", line("1", "115", "10", "15"), model.AmountTypeInclusive, "90", "13.5"},
		{"inclusive zero rate", line("1", "100", "0", "0"), model.AmountTypeInclusive, "100", "0"},
		{"no_tax ignores rate", line("2", "100", "0", "15"), model.AmountTypeNoTax, "200", "0"},
		{"no_tax with discount", line("1", "80", "25", "15"), model.AmountTypeNoTax, "60", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalcLineItem(tt.line, tt.amountType)
			require.NoError(t, err)
			assert.True(t, got.LineAmount.Equal(d(tt.wantLine)),
				"line amount: want %s, got %s", tt.wantLine, got.LineAmount)
			assert.True(t, got.TaxAmount.Equal(d(tt.wantTax)),
				"tax amount: want %s, got %s", tt.wantTax, got.TaxAmount)
		})
	}
}

func TestCalcLineItemZeroRateAllModes(t *testing.T) {
	in := line("3", "19.99", "5", "0")
	for _, mode := range []model.AmountType{model.AmountTypeExclusive, model.AmountTypeInclusive, model.AmountTypeNoTax} {
		got, err := CalcLineItem(in, mode)
		require.NoError(t, err)
		assert.True(t, got.TaxAmount.IsZero(), "mode %s: tax must be zero, got %s", mode, got.TaxAmount)
	}
}

func TestCalcLineItemInclusiveRoundTrip(t *testing.T) {
	// Line amount plus tax must reproduce the discounted gross even when the
	// division has no exact decimal representation.
	in := line("1", "10", "0", "15")
	got, err := CalcLineItem(in, model.AmountTypeInclusive)
	require.NoError(t, err)
	assert.True(t, got.LineAmount.Add(got.TaxAmount).Equal(d("10")),
		"round trip: %s + %s != 10", got.LineAmount, got.TaxAmount)
}

func TestCalcLineItemUnknownAmountType(t *testing.T) {
	_, err := CalcLineItem(line("1", "1", "0", "0"), model.AmountType("percent"))
	assert.ErrorIs(t, err, ErrUnknownAmountType)
}

func TestCalcTotals(t *testing.T) {
	t.Run("sums exclusive lines", func(t *testing.T) {
		totals, err := CalcTotals([]LineInput{
			line("2", "100", "0", "15"),
			line("1", "50", "0", "15"),
		}, model.AmountTypeExclusive)
		require.NoError(t, err)
		assert.True(t, totals.SubTotal.Equal(d("250")), "sub total %s", totals.SubTotal)
		assert.True(t, totals.TotalTax.Equal(d("37.5")), "total tax %s", totals.TotalTax)
		assert.True(t, totals.Total.Equal(d("287.5")), "total %s", totals.Total)
	})

	t.Run("empty lines are all zero", func(t *testing.T) {
		totals, err := CalcTotals(nil, model.AmountTypeExclusive)
		require.NoError(t, err)
		assert.True(t, totals.SubTotal.IsZero())
		assert.True(t, totals.TotalTax.IsZero())
		assert.True(t, totals.Total.IsZero())
	})

	t.Run("mixed tax rates", func(t *testing.T) {
		totals, err := CalcTotals([]LineInput{
			line("1", "100", "0", "15"),
			line("1", "100", "0", "0"),
		}, model.AmountTypeExclusive)
		require.NoError(t, err)
		assert.True(t, totals.SubTotal.Equal(d("200")))
		assert.True(t, totals.TotalTax.Equal(d("15")))
		assert.True(t, totals.Total.Equal(d("215")))
	})

	t.Run("inclusive totals", func(t *testing.T) {
		totals, err := CalcTotals([]LineInput{line("1", "115", "0", "15")}, model.AmountTypeInclusive)
		require.NoError(t, err)
		assert.True(t, totals.SubTotal.Equal(d("100")))
		assert.True(t, totals.TotalTax.Equal(d("15")))
		assert.True(t, totals.Total.Equal(d("115")))
	})

	t.Run("aggregation does not round per line", func(t *testing.T) {
		// 10 lines of 1.01 at 15%: per-line tax 0.1515 must survive summation
		// unrounded so the total does not drift.
		lines := make([]LineInput, 10)
		for i := range lines {
			lines[i] = line("1", "1.01", "0", "15")
		}
		totals, err := CalcTotals(lines, model.AmountTypeExclusive)
		require.NoError(t, err)
		assert.True(t, totals.SubTotal.Equal(d("10.1")), "sub total %s", totals.SubTotal)
		assert.True(t, totals.TotalTax.Equal(d("1.515")), "total tax %s", totals.TotalTax)
		assert.True(t, totals.Total.Equal(totals.SubTotal.Add(totals.TotalTax)))
	})

	t.Run("idempotent over the same input", func(t *testing.T) {
		lines := []LineInput{line("3", "1.01", "0", "15"), line("1", "999999.99", "0", "15")}
		first, err := CalcTotals(lines, model.AmountTypeExclusive)
		require.NoError(t, err)
		second, err := CalcTotals(lines, model.AmountTypeExclusive)
		require.NoError(t, err)
		assert.True(t, first.SubTotal.Equal(second.SubTotal))
		assert.True(t, first.TotalTax.Equal(second.TotalTax))
		assert.True(t, first.Total.Equal(second.Total))
	})

	t.Run("propagates unknown amount type", func(t *testing.T) {
		_, err := CalcTotals([]LineInput{line("1", "1", "0", "0")}, model.AmountType(""))
		assert.ErrorIs(t, err, ErrUnknownAmountType)
	})
}
