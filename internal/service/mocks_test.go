package service

import (
	"context"
	"time"

	"billbook/internal/model"
	"billbook/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// fakeTxManager runs the callback directly; service tests care about the
// calls the services make, not about real transaction boundaries.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type mockBillRepo struct {
	mock.Mock
}

func (m *mockBillRepo) Create(ctx context.Context, bill *model.Bill) error {
	args := m.Called(ctx, bill)
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockBillRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bill), args.Error(1)
}

func (m *mockBillRepo) FindByIDWithLines(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bill), args.Error(1)
}

func (m *mockBillRepo) List(ctx context.Context, filter repository.BillListFilter) ([]model.Bill, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Bill), args.Get(1).(int64), args.Error(2)
}

func (m *mockBillRepo) ListUnpaidDueBefore(ctx context.Context, before time.Time) ([]model.Bill, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Bill), args.Error(1)
}

func (m *mockBillRepo) Update(ctx context.Context, bill *model.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *mockBillRepo) ReplaceLines(ctx context.Context, billID uuid.UUID, lines []model.LineItem) error {
	args := m.Called(ctx, billID, lines)
	return args.Error(0)
}

func (m *mockBillRepo) MaxNumberSuffix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *mockPaymentRepo) ListByBill(ctx context.Context, billID uuid.UUID) ([]model.Payment, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *mockPaymentRepo) List(ctx context.Context, page, limit int) ([]model.Payment, int64, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Payment), args.Get(1).(int64), args.Error(2)
}

type mockRecurringRepo struct {
	mock.Mock
}

func (m *mockRecurringRepo) Create(ctx context.Context, template *model.RecurringBill) error {
	args := m.Called(ctx, template)
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockRecurringRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RecurringBill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecurringBill), args.Error(1)
}

func (m *mockRecurringRepo) List(ctx context.Context, status model.RecurringBillStatus, page, limit int) ([]model.RecurringBill, int64, error) {
	args := m.Called(ctx, status, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.RecurringBill), args.Get(1).(int64), args.Error(2)
}

func (m *mockRecurringRepo) ListActiveDue(ctx context.Context, asOf time.Time) ([]model.RecurringBill, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RecurringBill), args.Error(1)
}

func (m *mockRecurringRepo) Update(ctx context.Context, template *model.RecurringBill) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *mockRecurringRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockAuditRepo) List(ctx context.Context, entityID string, page, limit int) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, entityID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.AuditLog), args.Get(1).(int64), args.Error(2)
}

type mockContactRepo struct {
	mock.Mock
}

func (m *mockContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	args := m.Called(ctx, contact)
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockContactRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *mockContactRepo) List(ctx context.Context, search string, page, limit int) ([]model.Contact, int64, error) {
	args := m.Called(ctx, search, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Contact), args.Get(1).(int64), args.Error(2)
}

func (m *mockContactRepo) Update(ctx context.Context, contact *model.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *mockContactRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
