package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPayment(t *testing.T) {
	t.Run("partial payment", func(t *testing.T) {
		got, err := ApplyPayment(d("287.5"), d("0"), d("100"))
		require.NoError(t, err)
		assert.True(t, got.AmountPaid.Equal(d("100")))
		assert.True(t, got.AmountDue.Equal(d("187.5")))
	})

	t.Run("exact amount due succeeds and zeroes the balance", func(t *testing.T) {
		got, err := ApplyPayment(d("100"), d("40"), d("60"))
		require.NoError(t, err)
		assert.True(t, got.AmountPaid.Equal(d("100")))
		assert.True(t, got.AmountDue.IsZero())
	})

	t.Run("a cent over the amount due is rejected", func(t *testing.T) {
		_, err := ApplyPayment(d("100"), d("0"), d("100.01"))
		assert.ErrorIs(t, err, ErrOverpayment)
	})

	t.Run("overpaying a partly paid bill is rejected", func(t *testing.T) {
		_, err := ApplyPayment(d("100"), d("80"), d("20.01"))
		assert.ErrorIs(t, err, ErrOverpayment)
	})

	t.Run("zero amount is rejected", func(t *testing.T) {
		_, err := ApplyPayment(d("100"), d("0"), d("0"))
		assert.ErrorIs(t, err, ErrInvalidPaymentAmount)
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		_, err := ApplyPayment(d("100"), d("0"), d("-5"))
		assert.ErrorIs(t, err, ErrInvalidPaymentAmount)
	})
}

func TestAmountDue(t *testing.T) {
	assert.True(t, AmountDue(d("287.5"), d("100")).Equal(d("187.5")))
	assert.True(t, AmountDue(d("100"), d("100")).IsZero())
	// Historic overpayment residue clamps to zero instead of going negative.
	assert.True(t, AmountDue(d("100"), d("150")).IsZero())
}
