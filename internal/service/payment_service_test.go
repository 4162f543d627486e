package service

import (
	"context"
	"testing"

	"billbook/internal/billing"
	"billbook/internal/model"
	"billbook/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestHub() *websocket.Hub {
	hub := websocket.NewHub()
	go hub.Run()
	return hub
}

func approvedBill(total, paid string) *model.Bill {
	return &model.Bill{
		ID:         uuid.New(),
		BillNumber: "BILL-0042",
		Status:     model.BillApproved,
		Total:      dec(total),
		AmountPaid: dec(paid),
		AmountDue:  billing.AmountDue(dec(total), dec(paid)),
	}
}

func TestRecordPaymentPartial(t *testing.T) {
	bill := approvedBill("100", "0")

	billRepo := new(mockBillRepo)
	paymentRepo := new(mockPaymentRepo)
	auditRepo := new(mockAuditRepo)

	billRepo.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)
	paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Payment")).Return(nil)
	billRepo.On("Update", mock.Anything, bill).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	billRepo.On("FindByIDWithLines", mock.Anything, bill.ID).Return(bill, nil)

	svc := NewPaymentService(paymentRepo, billRepo, auditRepo, fakeTxManager{}, newTestHub())

	result, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		BillID: bill.ID.String(),
		Amount: "40",
		Date:   "2024-06-01",
	}, uuid.NewString())
	require.NoError(t, err)

	assert.Equal(t, "40.00", result.Payment.Amount)
	assert.True(t, bill.AmountPaid.Equal(dec("40")))
	assert.True(t, bill.AmountDue.Equal(dec("60")))
	assert.Equal(t, model.BillApproved, bill.Status)
	billRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestRecordPaymentSettlesBill(t *testing.T) {
	bill := approvedBill("100", "60")

	billRepo := new(mockBillRepo)
	paymentRepo := new(mockPaymentRepo)
	auditRepo := new(mockAuditRepo)

	billRepo.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)
	paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Payment")).Return(nil)
	billRepo.On("Update", mock.Anything, bill).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	billRepo.On("FindByIDWithLines", mock.Anything, bill.ID).Return(bill, nil)

	svc := NewPaymentService(paymentRepo, billRepo, auditRepo, fakeTxManager{}, newTestHub())

	result, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		BillID: bill.ID.String(),
		Amount: "40",
		Date:   "2024-06-01",
	}, uuid.NewString())
	require.NoError(t, err)

	// Paying the exact outstanding balance settles the bill.
	assert.Equal(t, model.BillPaid, bill.Status)
	assert.True(t, bill.AmountDue.IsZero())
	assert.Equal(t, string(model.BillPaid), result.Bill.Status)
}

func TestRecordPaymentOverpaymentBlocksWrite(t *testing.T) {
	bill := approvedBill("100", "60")

	billRepo := new(mockBillRepo)
	paymentRepo := new(mockPaymentRepo)
	auditRepo := new(mockAuditRepo)

	billRepo.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)

	svc := NewPaymentService(paymentRepo, billRepo, auditRepo, fakeTxManager{}, newTestHub())

	_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		BillID: bill.ID.String(),
		Amount: "40.01",
		Date:   "2024-06-01",
	}, uuid.NewString())
	require.ErrorIs(t, err, billing.ErrOverpayment)

	// Nothing may be written when the ledger rejects the amount.
	paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	billRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Equal(t, model.BillApproved, bill.Status)
	assert.True(t, bill.AmountPaid.Equal(dec("60")))
}

func TestRecordPaymentRejectsNonApprovedBill(t *testing.T) {
	bill := approvedBill("100", "0")
	bill.Status = model.BillDraft

	billRepo := new(mockBillRepo)
	paymentRepo := new(mockPaymentRepo)
	auditRepo := new(mockAuditRepo)

	billRepo.On("FindByID", mock.Anything, bill.ID).Return(bill, nil)

	svc := NewPaymentService(paymentRepo, billRepo, auditRepo, fakeTxManager{}, newTestHub())

	_, err := svc.RecordPayment(context.Background(), RecordPaymentRequest{
		BillID: bill.ID.String(),
		Amount: "40",
		Date:   "2024-06-01",
	}, uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot record payment")
	paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBatchPaymentPaysBillsInFull(t *testing.T) {
	first := approvedBill("100", "30")
	second := approvedBill("250", "0")

	billRepo := new(mockBillRepo)
	paymentRepo := new(mockPaymentRepo)
	auditRepo := new(mockAuditRepo)

	billRepo.On("FindByID", mock.Anything, first.ID).Return(first, nil)
	billRepo.On("FindByID", mock.Anything, second.ID).Return(second, nil)
	paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Payment")).Return(nil)
	billRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Bill")).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)

	svc := NewPaymentService(paymentRepo, billRepo, auditRepo, fakeTxManager{}, newTestHub())

	result, err := svc.BatchPayment(context.Background(), BatchPaymentRequest{
		BillIDs: []string{first.ID.String(), second.ID.String()},
		Date:    "2024-06-01",
	}, uuid.NewString())
	require.NoError(t, err)

	assert.Equal(t, 2, result.PaidCount)
	assert.Equal(t, "70.00", result.Payments[0].Amount)
	assert.Equal(t, "250.00", result.Payments[1].Amount)
	assert.Equal(t, model.BillPaid, first.Status)
	assert.Equal(t, model.BillPaid, second.Status)
}
