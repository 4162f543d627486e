package service

import (
	"context"
	"testing"
	"time"

	"billbook/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func monthlyTemplate(next string) *model.RecurringBill {
	return &model.RecurringBill{
		ID:           uuid.New(),
		TemplateName: "Office rent",
		ContactID:    uuid.New(),
		ContactName:  "Acme Property",
		Frequency:    model.FreqMonthly,
		NextDate:     day(next),
		DaysUntilDue: 30,
		Status:       model.RecurringActive,
		AmountType:   model.AmountTypeExclusive,
		SubTotal:     dec("1000"),
		TotalTax:     dec("150"),
		Total:        dec("1150"),
	}
}

func newRecurringFixture(template *model.RecurringBill) (*mockRecurringRepo, *mockBillRepo, *mockAuditRepo, RecurringBillService) {
	recurringRepo := new(mockRecurringRepo)
	billRepo := new(mockBillRepo)
	auditRepo := new(mockAuditRepo)
	contactRepo := new(mockContactRepo)

	recurringRepo.On("FindByID", mock.Anything, template.ID).Return(template, nil)

	svc := NewRecurringBillService(recurringRepo, billRepo, contactRepo, auditRepo, fakeTxManager{}, newTestHub())
	return recurringRepo, billRepo, auditRepo, svc
}

func TestGenerateAdvancesNextDate(t *testing.T) {
	template := monthlyTemplate("2024-01-31")
	recurringRepo, billRepo, auditRepo, svc := newRecurringFixture(template)

	var created *model.Bill
	billRepo.On("MaxNumberSuffix", mock.Anything, BillNumberPrefix).Return(int64(7), nil)
	billRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Bill")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*model.Bill) }).
		Return(nil)
	recurringRepo.On("Update", mock.Anything, template).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	billRepo.On("FindByIDWithLines", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return(&model.Bill{ID: uuid.New(), Status: model.BillDraft}, nil)

	_, err := svc.Generate(context.Background(), template.ID.String(), uuid.NewString())
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, "BILL-0008", created.BillNumber)
	assert.Equal(t, model.BillDraft, created.Status)
	assert.Equal(t, day("2024-01-31"), created.Date)
	assert.Equal(t, day("2024-01-31").AddDate(0, 0, 30), created.DueDate)
	assert.True(t, created.AmountDue.Equal(dec("1150")))

	// Jan 31 + one month clamps to the leap-year Feb 29.
	assert.Equal(t, day("2024-02-29"), template.NextDate)
	assert.Equal(t, 1, template.TimesGenerated)
	assert.Equal(t, model.RecurringActive, template.Status)
}

func TestGenerateCompletesAtEndDate(t *testing.T) {
	template := monthlyTemplate("2024-03-01")
	end := day("2024-03-15")
	template.EndDate = &end

	recurringRepo, billRepo, auditRepo, svc := newRecurringFixture(template)

	billRepo.On("MaxNumberSuffix", mock.Anything, BillNumberPrefix).Return(int64(0), nil)
	billRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Bill")).Return(nil)
	recurringRepo.On("Update", mock.Anything, template).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.AuditLog")).Return(nil)
	billRepo.On("FindByIDWithLines", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return(&model.Bill{ID: uuid.New(), Status: model.BillDraft}, nil)

	_, err := svc.Generate(context.Background(), template.ID.String(), uuid.NewString())
	require.NoError(t, err)

	// The advanced next date (Apr 1) is past the end date, so the template
	// completes after this final generation.
	assert.Equal(t, day("2024-04-01"), template.NextDate)
	assert.Equal(t, model.RecurringCompleted, template.Status)
	assert.Equal(t, 1, template.TimesGenerated)
}

func TestGenerateRejectsInactiveTemplate(t *testing.T) {
	template := monthlyTemplate("2024-03-01")
	template.Status = model.RecurringPaused

	_, billRepo, _, svc := newRecurringFixture(template)

	_, err := svc.Generate(context.Background(), template.ID.String(), uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paused")
	billRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
