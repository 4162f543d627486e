package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentApplication is the new paid/due pair after a payment is accepted.
type PaymentApplication struct {
	AmountPaid decimal.Decimal
	AmountDue  decimal.Decimal
}

// AmountDue derives the remaining amount on a document, clamped at zero to
// absorb residue from historic data.
func AmountDue(total, amountPaid decimal.Decimal) decimal.Decimal {
	due := total.Sub(amountPaid)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// ApplyPayment validates a payment amount against a document's total and
// amount paid so far, and returns the updated figures. Paying the exact
// remaining amount succeeds and leaves zero due; exceeding it by any margin
// fails. Either the whole payment applies or nothing does; the function never
// partially updates anything (it mutates no inputs at all).
func ApplyPayment(total, amountPaid, amount decimal.Decimal) (PaymentApplication, error) {
	if !amount.IsPositive() {
		return PaymentApplication{}, fmt.Errorf("%w: got %s", ErrInvalidPaymentAmount, amount)
	}

	due := AmountDue(total, amountPaid)
	if amount.GreaterThan(due) {
		return PaymentApplication{}, fmt.Errorf("%w: %s due, %s offered", ErrOverpayment, due, amount)
	}

	newPaid := amountPaid.Add(amount)
	return PaymentApplication{
		AmountPaid: newPaid,
		AmountDue:  AmountDue(total, newPaid),
	}, nil
}
