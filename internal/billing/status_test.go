package billing

import (
	"testing"

	"billbook/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatuses(t *testing.T) {
	tests := []struct {
		from model.BillStatus
		want []model.BillStatus
	}{
		{model.BillDraft, []model.BillStatus{model.BillSubmitted, model.BillVoided}},
		{model.BillSubmitted, []model.BillStatus{model.BillApproved, model.BillDraft, model.BillVoided}},
		{model.BillApproved, []model.BillStatus{model.BillPaid, model.BillVoided}},
		{model.BillPaid, []model.BillStatus{}},
		{model.BillVoided, []model.BillStatus{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			assert.Equal(t, tt.want, NextStatuses(tt.from))
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(model.BillDraft, model.BillSubmitted))
	assert.True(t, CanTransition(model.BillSubmitted, model.BillDraft), "submitted can revert to draft")
	assert.True(t, CanTransition(model.BillApproved, model.BillPaid))
	assert.True(t, CanTransition(model.BillApproved, model.BillVoided))

	assert.False(t, CanTransition(model.BillDraft, model.BillApproved), "cannot skip submitted")
	assert.False(t, CanTransition(model.BillDraft, model.BillPaid))
	assert.False(t, CanTransition(model.BillApproved, model.BillDraft))
	assert.False(t, CanTransition(model.BillPaid, model.BillVoided), "paid is terminal")
	assert.False(t, CanTransition(model.BillVoided, model.BillDraft), "voided is terminal")
	assert.False(t, CanTransition(model.BillStatus("archived"), model.BillDraft), "unknown status has no edges")
}

func TestApplyTransition(t *testing.T) {
	got, err := ApplyTransition(model.BillSubmitted, model.BillApproved)
	require.NoError(t, err)
	assert.Equal(t, model.BillApproved, got)

	_, err = ApplyTransition(model.BillDraft, model.BillPaid)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = ApplyTransition(model.BillVoided, model.BillDraft)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEditAndPaymentGates(t *testing.T) {
	assert.True(t, IsEditable(model.BillDraft))
	for _, s := range []model.BillStatus{model.BillSubmitted, model.BillApproved, model.BillPaid, model.BillVoided} {
		assert.False(t, IsEditable(s), "%s must not be editable", s)
	}

	assert.True(t, CanReceivePayment(model.BillApproved))
	for _, s := range []model.BillStatus{model.BillDraft, model.BillSubmitted, model.BillPaid, model.BillVoided} {
		assert.False(t, CanReceivePayment(s), "%s must not receive payment", s)
	}
}

func TestPurchaseOrderTransitions(t *testing.T) {
	assert.Equal(t, []model.PurchaseOrderStatus{model.POStatusSubmitted}, NextPOStatuses(model.POStatusDraft))
	assert.Equal(t, []model.PurchaseOrderStatus{model.POStatusApproved, model.POStatusDraft}, NextPOStatuses(model.POStatusSubmitted))
	assert.Equal(t, []model.PurchaseOrderStatus{model.POStatusBilled, model.POStatusClosed}, NextPOStatuses(model.POStatusApproved))
	assert.Empty(t, NextPOStatuses(model.POStatusBilled))
	assert.Empty(t, NextPOStatuses(model.POStatusClosed))

	assert.True(t, CanTransitionPO(model.POStatusSubmitted, model.POStatusDraft), "PO revert")
	assert.False(t, CanTransitionPO(model.POStatusDraft, model.POStatusApproved))

	got, err := ApplyPOTransition(model.POStatusApproved, model.POStatusBilled)
	require.NoError(t, err)
	assert.Equal(t, model.POStatusBilled, got)

	_, err = ApplyPOTransition(model.POStatusBilled, model.POStatusClosed)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.True(t, IsPOEditable(model.POStatusDraft))
	assert.False(t, IsPOEditable(model.POStatusApproved))
}
