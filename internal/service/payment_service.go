package service

import (
	"context"
	"fmt"
	"time"

	"billbook/internal/billing"
	"billbook/internal/model"
	"billbook/internal/repository"
	"billbook/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type RecordPaymentRequest struct {
	BillID      string `json:"bill_id" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	Reference   string `json:"reference"`
	BankAccount string `json:"bank_account"`
}

// BatchPaymentRequest pays each listed bill in full with a single reference.
type BatchPaymentRequest struct {
	BillIDs     []string `json:"bill_ids" binding:"required,min=1"`
	Date        string   `json:"date" binding:"required"`
	Reference   string   `json:"reference"`
	BankAccount string   `json:"bank_account"`
}

type PaymentResponse struct {
	ID          string `json:"id"`
	BillID      string `json:"bill_id"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Reference   string `json:"reference"`
	BankAccount string `json:"bank_account"`
	CreatedAt   string `json:"created_at"`
}

// RecordPaymentResult returns the payment together with the bill it settled
// against, so callers see the updated balance and status in one round trip.
type RecordPaymentResult struct {
	Payment PaymentResponse `json:"payment"`
	Bill    BillResponse    `json:"bill"`
}

type BatchPaymentResult struct {
	PaidCount int               `json:"paid_count"`
	Payments  []PaymentResponse `json:"payments"`
}

// --- Interface ---

type PaymentService interface {
	RecordPayment(ctx context.Context, req RecordPaymentRequest, userID string) (RecordPaymentResult, error)
	BatchPayment(ctx context.Context, req BatchPaymentRequest, userID string) (BatchPaymentResult, error)
	ListPayments(ctx context.Context, page, limit int) ([]PaymentResponse, int64, error)
	ListBillPayments(ctx context.Context, billID string) ([]PaymentResponse, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	billRepo    repository.BillRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *websocket.Hub
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	billRepo repository.BillRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		billRepo:    billRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// --- Implementation ---

// RecordPayment applies a payment to an approved bill. The payment row, the
// bill's running amounts, and the automatic approved->paid transition commit
// together or not at all.
func (s *paymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest, userID string) (RecordPaymentResult, error) {
	billID, err := uuid.Parse(req.BillID)
	if err != nil {
		return RecordPaymentResult{}, fmt.Errorf("invalid bill_id: %w", err)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return RecordPaymentResult{}, fmt.Errorf("invalid amount: %w", err)
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return RecordPaymentResult{}, err
	}

	var payment model.Payment
	var paid bool
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		p, becamePaid, applyErr := s.applyPayment(txCtx, billID, amount, date, req.Reference, req.BankAccount, userID)
		if applyErr != nil {
			return applyErr
		}
		payment = *p
		paid = becamePaid
		return nil
	})
	if err != nil {
		return RecordPaymentResult{}, err
	}

	s.broadcast(payment, billID, paid)

	bill, err := s.billRepo.FindByIDWithLines(ctx, billID)
	if err != nil {
		return RecordPaymentResult{}, fmt.Errorf("failed to reload bill: %w", err)
	}
	return RecordPaymentResult{
		Payment: toPaymentResponse(payment),
		Bill:    toBillResponse(*bill),
	}, nil
}

// BatchPayment pays every listed bill in full. The whole batch commits in a
// single transaction; one bad bill fails the lot.
func (s *paymentService) BatchPayment(ctx context.Context, req BatchPaymentRequest, userID string) (BatchPaymentResult, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return BatchPaymentResult{}, err
	}

	billIDs := make([]uuid.UUID, 0, len(req.BillIDs))
	for _, raw := range req.BillIDs {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return BatchPaymentResult{}, fmt.Errorf("invalid bill_id %q: %w", raw, parseErr)
		}
		billIDs = append(billIDs, id)
	}

	var payments []model.Payment
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, billID := range billIDs {
			bill, findErr := s.billRepo.FindByID(txCtx, billID)
			if findErr != nil {
				return fmt.Errorf("bill %s not found: %w", billID, findErr)
			}

			due := billing.AmountDue(bill.Total, bill.AmountPaid)
			if due.IsZero() {
				return fmt.Errorf("bill %s has no outstanding balance", bill.BillNumber)
			}

			p, _, applyErr := s.applyPayment(txCtx, billID, due, date, req.Reference, req.BankAccount, userID)
			if applyErr != nil {
				return applyErr
			}
			payments = append(payments, *p)
		}
		return nil
	})
	if err != nil {
		return BatchPaymentResult{}, err
	}

	for i, p := range payments {
		s.broadcast(p, billIDs[i], true)
	}

	result := BatchPaymentResult{PaidCount: len(payments), Payments: make([]PaymentResponse, 0, len(payments))}
	for _, p := range payments {
		result.Payments = append(result.Payments, toPaymentResponse(p))
	}
	return result, nil
}

func (s *paymentService) ListPayments(ctx context.Context, page, limit int) ([]PaymentResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	payments, total, err := s.paymentRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payments: %w", err)
	}

	result := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, toPaymentResponse(p))
	}
	return result, total, nil
}

func (s *paymentService) ListBillPayments(ctx context.Context, billID string) ([]PaymentResponse, error) {
	id, err := uuid.Parse(billID)
	if err != nil {
		return nil, fmt.Errorf("invalid bill id: %w", err)
	}

	payments, err := s.paymentRepo.ListByBill(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}

	result := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, toPaymentResponse(p))
	}
	return result, nil
}

// --- Helpers ---

// applyPayment runs inside an open transaction. It validates the bill can
// receive payments, applies the ledger math, writes the payment row and the
// updated bill, and flips approved bills to paid when the balance hits zero.
func (s *paymentService) applyPayment(ctx context.Context, billID uuid.UUID, amount decimal.Decimal, date time.Time, reference, bankAccount, userID string) (*model.Payment, bool, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, false, fmt.Errorf("bill not found: %w", err)
	}

	if !billing.CanReceivePayment(bill.Status) {
		return nil, false, fmt.Errorf("cannot record payment against %s bill %s", bill.Status, bill.BillNumber)
	}

	application, err := billing.ApplyPayment(bill.Total, bill.AmountPaid, amount)
	if err != nil {
		return nil, false, err
	}

	payment := model.Payment{
		BillID:      billID,
		Amount:      amount,
		Date:        date,
		Reference:   reference,
		BankAccount: bankAccount,
	}
	if err := s.paymentRepo.Create(ctx, &payment); err != nil {
		return nil, false, fmt.Errorf("failed to create payment: %w", err)
	}

	bill.AmountPaid = application.AmountPaid
	bill.AmountDue = application.AmountDue

	becamePaid := false
	if application.AmountDue.IsZero() {
		next, applyErr := billing.ApplyTransition(bill.Status, model.BillPaid)
		if applyErr != nil {
			return nil, false, applyErr
		}
		bill.Status = next
		becamePaid = true
	}

	if err := s.billRepo.Update(ctx, bill); err != nil {
		return nil, false, fmt.Errorf("failed to update bill: %w", err)
	}

	writeAuditLog(ctx, s.auditRepo, userID, model.ActionRecordPayment, bill.ID.String(), bill.BillNumber,
		map[string]string{
			"payment_id": payment.ID.String(),
			"amount":     amount.StringFixed(2),
			"amount_due": application.AmountDue.StringFixed(2),
		})

	return &payment, becamePaid, nil
}

func (s *paymentService) broadcast(payment model.Payment, billID uuid.UUID, becamePaid bool) {
	s.hub.BroadcastEvent(websocket.EventPaymentRecorded, map[string]string{
		"payment_id": payment.ID.String(),
		"bill_id":    billID.String(),
		"amount":     payment.Amount.StringFixed(2),
	})
	if becamePaid {
		s.hub.BroadcastEvent(websocket.EventBillStatusChanged, map[string]string{
			"bill_id": billID.String(),
			"from":    string(model.BillApproved),
			"to":      string(model.BillPaid),
		})
	}
}

// --- Mapping ---

func toPaymentResponse(p model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID.String(),
		BillID:      p.BillID.String(),
		Amount:      p.Amount.StringFixed(2),
		Date:        p.Date.Format(dateLayout),
		Reference:   p.Reference,
		BankAccount: p.BankAccount,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}
