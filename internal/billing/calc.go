package billing

import (
	"fmt"

	"billbook/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineInput carries the raw figures of one document line.
type LineInput struct {
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal // 0-100
	TaxRatePercent  decimal.Decimal // >= 0
}

// LineCalc is the derived amount and tax of a single line.
type LineCalc struct {
	LineAmount decimal.Decimal
	TaxAmount  decimal.Decimal
}

// Totals is the roll-up of all line calculations for a document.
type Totals struct {
	SubTotal decimal.Decimal
	TotalTax decimal.Decimal
	Total    decimal.Decimal
}

// CalcLineItem computes the line amount and tax for one line under the given
// amount type. Discount applies before tax. For inclusive documents the
// discounted gross already contains tax, so the net is extracted by division;
// line amount plus tax always reproduces the discounted gross exactly.
// Results are unrounded; rounding happens at the display boundary only.
func CalcLineItem(line LineInput, amountType model.AmountType) (LineCalc, error) {
	gross := line.Quantity.Mul(line.UnitPrice)
	discounted := gross.Mul(hundred.Sub(line.DiscountPercent)).Div(hundred)

	switch amountType {
	case model.AmountTypeExclusive:
		return LineCalc{
			LineAmount: discounted,
			TaxAmount:  discounted.Mul(line.TaxRatePercent).Div(hundred),
		}, nil
	case model.AmountTypeInclusive:
		net := discounted.Div(hundred.Add(line.TaxRatePercent).Div(hundred))
		return LineCalc{
			LineAmount: net,
			TaxAmount:  discounted.Sub(net),
		}, nil
	case model.AmountTypeNoTax:
		return LineCalc{
			LineAmount: discounted,
			TaxAmount:  decimal.Zero,
		}, nil
	default:
		return LineCalc{}, fmt.Errorf("%w: %q", ErrUnknownAmountType, amountType)
	}
}

// CalcTotals maps every line through CalcLineItem and sums the unrounded
// results. An empty line list yields all-zero totals.
func CalcTotals(lines []LineInput, amountType model.AmountType) (Totals, error) {
	subTotal := decimal.Zero
	totalTax := decimal.Zero

	for _, line := range lines {
		calc, err := CalcLineItem(line, amountType)
		if err != nil {
			return Totals{}, err
		}
		subTotal = subTotal.Add(calc.LineAmount)
		totalTax = totalTax.Add(calc.TaxAmount)
	}

	return Totals{
		SubTotal: subTotal,
		TotalTax: totalTax,
		Total:    subTotal.Add(totalTax),
	}, nil
}
