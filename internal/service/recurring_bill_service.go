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

type CreateRecurringBillRequest struct {
	TemplateName string `json:"template_name" binding:"required"`
	ContactID    string `json:"contact_id" binding:"required"`
	Frequency    string `json:"frequency" binding:"required,oneof=weekly fortnightly monthly bimonthly quarterly annually"`
	NextDate     string `json:"next_date" binding:"required"` // YYYY-MM-DD
	EndDate      string `json:"end_date"`                     // YYYY-MM-DD, optional
	DaysUntilDue int    `json:"days_until_due"`
	AmountType   string `json:"amount_type" binding:"omitempty,oneof=exclusive inclusive no_tax"`
	SubTotal     string `json:"sub_total" binding:"required"`
	TotalTax     string `json:"total_tax" binding:"required"`
	Total        string `json:"total" binding:"required"`
}

type UpdateRecurringBillRequest struct {
	TemplateName string `json:"template_name" binding:"required"`
	ContactID    string `json:"contact_id" binding:"required"`
	Frequency    string `json:"frequency" binding:"required,oneof=weekly fortnightly monthly bimonthly quarterly annually"`
	NextDate     string `json:"next_date" binding:"required"`
	EndDate      string `json:"end_date"`
	DaysUntilDue int    `json:"days_until_due"`
	Status       string `json:"status" binding:"omitempty,oneof=active paused completed"`
	AmountType   string `json:"amount_type" binding:"omitempty,oneof=exclusive inclusive no_tax"`
	SubTotal     string `json:"sub_total" binding:"required"`
	TotalTax     string `json:"total_tax" binding:"required"`
	Total        string `json:"total" binding:"required"`
}

type RecurringBillResponse struct {
	ID             string  `json:"id"`
	TemplateName   string  `json:"template_name"`
	ContactID      string  `json:"contact_id"`
	ContactName    string  `json:"contact_name"`
	Frequency      string  `json:"frequency"`
	NextDate       string  `json:"next_date"`
	EndDate        *string `json:"end_date"`
	DaysUntilDue   int     `json:"days_until_due"`
	Status         string  `json:"status"`
	AmountType     string  `json:"amount_type"`
	SubTotal       string  `json:"sub_total"`
	TotalTax       string  `json:"total_tax"`
	Total          string  `json:"total"`
	TimesGenerated int     `json:"times_generated"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// GenerateDueResult summarises a generate-due sweep.
type GenerateDueResult struct {
	GeneratedCount int            `json:"generated_count"`
	Bills          []BillResponse `json:"bills"`
}

// --- Interface ---

type RecurringBillService interface {
	CreateRecurringBill(ctx context.Context, req CreateRecurringBillRequest, userID string) (RecurringBillResponse, error)
	GetRecurringBill(ctx context.Context, id string) (RecurringBillResponse, error)
	ListRecurringBills(ctx context.Context, status string, page, limit int) ([]RecurringBillResponse, int64, error)
	UpdateRecurringBill(ctx context.Context, id string, req UpdateRecurringBillRequest, userID string) (RecurringBillResponse, error)
	DeleteRecurringBill(ctx context.Context, id string, userID string) error
	Generate(ctx context.Context, id string, userID string) (BillResponse, error)
	GenerateDue(ctx context.Context, userID string) (GenerateDueResult, error)
}

type recurringBillService struct {
	recurringRepo repository.RecurringBillRepository
	billRepo      repository.BillRepository
	contactRepo   repository.ContactRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	hub           *websocket.Hub
	now           func() time.Time
}

func NewRecurringBillService(
	recurringRepo repository.RecurringBillRepository,
	billRepo repository.BillRepository,
	contactRepo repository.ContactRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) RecurringBillService {
	return &recurringBillService{
		recurringRepo: recurringRepo,
		billRepo:      billRepo,
		contactRepo:   contactRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		hub:           hub,
		now:           time.Now,
	}
}

// --- Implementation ---

func (s *recurringBillService) CreateRecurringBill(ctx context.Context, req CreateRecurringBillRequest, userID string) (RecurringBillResponse, error) {
	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		return RecurringBillResponse{}, fmt.Errorf("invalid contact_id: %w", err)
	}
	contact, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		return RecurringBillResponse{}, fmt.Errorf("contact not found: %w", err)
	}

	nextDate, err := parseDate("next_date", req.NextDate)
	if err != nil {
		return RecurringBillResponse{}, err
	}
	endDate, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		return RecurringBillResponse{}, err
	}
	if endDate != nil && endDate.Before(nextDate) {
		return RecurringBillResponse{}, fmt.Errorf("end_date must not be before next_date")
	}

	subTotal, totalTax, total, err := parseTemplateAmounts(req.SubTotal, req.TotalTax, req.Total)
	if err != nil {
		return RecurringBillResponse{}, err
	}

	daysUntilDue := req.DaysUntilDue
	if daysUntilDue <= 0 {
		daysUntilDue = 30
	}
	amountType := model.AmountTypeExclusive
	if req.AmountType != "" {
		amountType = model.AmountType(req.AmountType)
	}

	template := model.RecurringBill{
		TemplateName: req.TemplateName,
		ContactID:    contactID,
		ContactName:  contact.Name,
		Frequency:    model.RecurrenceFrequency(req.Frequency),
		NextDate:     nextDate,
		EndDate:      endDate,
		DaysUntilDue: daysUntilDue,
		Status:       model.RecurringActive,
		AmountType:   amountType,
		SubTotal:     subTotal,
		TotalTax:     totalTax,
		Total:        total,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.recurringRepo.Create(txCtx, &template); createErr != nil {
			return fmt.Errorf("failed to create recurring bill: %w", createErr)
		}
		writeAuditLog(txCtx, s.auditRepo, userID, model.ActionCreateRecurringBill, template.ID.String(), template.TemplateName, req)
		return nil
	})
	if err != nil {
		return RecurringBillResponse{}, err
	}

	return toRecurringBillResponse(template), nil
}

func (s *recurringBillService) GetRecurringBill(ctx context.Context, id string) (RecurringBillResponse, error) {
	templateID, err := uuid.Parse(id)
	if err != nil {
		return RecurringBillResponse{}, fmt.Errorf("invalid recurring bill id: %w", err)
	}
	template, err := s.recurringRepo.FindByID(ctx, templateID)
	if err != nil {
		return RecurringBillResponse{}, fmt.Errorf("recurring bill not found: %w", err)
	}
	return toRecurringBillResponse(*template), nil
}

func (s *recurringBillService) ListRecurringBills(ctx context.Context, status string, page, limit int) ([]RecurringBillResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	templates, total, err := s.recurringRepo.List(ctx, model.RecurringBillStatus(status), page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch recurring bills: %w", err)
	}

	result := make([]RecurringBillResponse, 0, len(templates))
	for _, t := range templates {
		result = append(result, toRecurringBillResponse(t))
	}
	return result, total, nil
}

func (s *recurringBillService) UpdateRecurringBill(ctx context.Context, id string, req UpdateRecurringBillRequest, userID string) (RecurringBillResponse, error) {
	templateID, err := uuid.Parse(id)
	if err != nil {
		return RecurringBillResponse{}, fmt.Errorf("invalid recurring bill id: %w", err)
	}

	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		return RecurringBillResponse{}, fmt.Errorf("invalid contact_id: %w", err)
	}
	contact, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		return RecurringBillResponse{}, fmt.Errorf("contact not found: %w", err)
	}

	nextDate, err := parseDate("next_date", req.NextDate)
	if err != nil {
		return RecurringBillResponse{}, err
	}
	endDate, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		return RecurringBillResponse{}, err
	}
	if endDate != nil && endDate.Before(nextDate) {
		return RecurringBillResponse{}, fmt.Errorf("end_date must not be before next_date")
	}

	subTotal, totalTax, total, err := parseTemplateAmounts(req.SubTotal, req.TotalTax, req.Total)
	if err != nil {
		return RecurringBillResponse{}, err
	}

	var template *model.RecurringBill
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		template, findErr = s.recurringRepo.FindByID(txCtx, templateID)
		if findErr != nil {
			return fmt.Errorf("recurring bill not found: %w", findErr)
		}

		template.TemplateName = req.TemplateName
		template.ContactID = contactID
		template.ContactName = contact.Name
		template.Frequency = model.RecurrenceFrequency(req.Frequency)
		template.NextDate = nextDate
		template.EndDate = endDate
		if req.DaysUntilDue > 0 {
			template.DaysUntilDue = req.DaysUntilDue
		}
		if req.Status != "" {
			template.Status = model.RecurringBillStatus(req.Status)
		}
		if req.AmountType != "" {
			template.AmountType = model.AmountType(req.AmountType)
		}
		template.SubTotal = subTotal
		template.TotalTax = totalTax
		template.Total = total

		if updateErr := s.recurringRepo.Update(txCtx, template); updateErr != nil {
			return fmt.Errorf("failed to update recurring bill: %w", updateErr)
		}
		writeAuditLog(txCtx, s.auditRepo, userID, model.ActionUpdateRecurringBill, template.ID.String(), template.TemplateName, req)
		return nil
	})
	if err != nil {
		return RecurringBillResponse{}, err
	}

	return toRecurringBillResponse(*template), nil
}

func (s *recurringBillService) DeleteRecurringBill(ctx context.Context, id string, userID string) error {
	templateID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid recurring bill id: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		template, findErr := s.recurringRepo.FindByID(txCtx, templateID)
		if findErr != nil {
			return fmt.Errorf("recurring bill not found: %w", findErr)
		}
		if deleteErr := s.recurringRepo.Delete(txCtx, templateID); deleteErr != nil {
			return fmt.Errorf("failed to delete recurring bill: %w", deleteErr)
		}
		writeAuditLog(txCtx, s.auditRepo, userID, model.ActionDeleteRecurringBill, template.ID.String(), template.TemplateName, nil)
		return nil
	})
}

// Generate creates the next draft bill from an active template, advances the
// template's next date, and completes the template once the new next date
// passes its end date.
func (s *recurringBillService) Generate(ctx context.Context, id string, userID string) (BillResponse, error) {
	templateID, err := uuid.Parse(id)
	if err != nil {
		return BillResponse{}, fmt.Errorf("invalid recurring bill id: %w", err)
	}

	var bill model.Bill
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		template, findErr := s.recurringRepo.FindByID(txCtx, templateID)
		if findErr != nil {
			return fmt.Errorf("recurring bill not found: %w", findErr)
		}

		generated, genErr := s.generateFromTemplate(txCtx, template, userID)
		if genErr != nil {
			return genErr
		}
		bill = *generated
		return nil
	})
	if err != nil {
		return BillResponse{}, err
	}

	s.hub.BroadcastEvent(websocket.EventBillGenerated, map[string]string{
		"bill_id":           bill.ID.String(),
		"bill_number":       bill.BillNumber,
		"recurring_bill_id": templateID.String(),
	})

	reloaded, err := s.billRepo.FindByIDWithLines(ctx, bill.ID)
	if err != nil {
		return BillResponse{}, fmt.Errorf("failed to reload bill: %w", err)
	}
	return toBillResponse(*reloaded), nil
}

// GenerateDue generates a bill for every active template whose next date is
// today or earlier. Each template is processed in its own transaction so one
// failure does not roll back the rest of the sweep.
func (s *recurringBillService) GenerateDue(ctx context.Context, userID string) (GenerateDueResult, error) {
	today := startOfDay(s.now())
	templates, err := s.recurringRepo.ListActiveDue(ctx, today)
	if err != nil {
		return GenerateDueResult{}, fmt.Errorf("failed to fetch due recurring bills: %w", err)
	}

	result := GenerateDueResult{Bills: make([]BillResponse, 0, len(templates))}
	for i := range templates {
		template := templates[i]

		var bill model.Bill
		err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			generated, genErr := s.generateFromTemplate(txCtx, &template, userID)
			if genErr != nil {
				return genErr
			}
			bill = *generated
			return nil
		})
		if err != nil {
			return result, fmt.Errorf("failed to generate from template %s: %w", template.TemplateName, err)
		}

		s.hub.BroadcastEvent(websocket.EventBillGenerated, map[string]string{
			"bill_id":           bill.ID.String(),
			"bill_number":       bill.BillNumber,
			"recurring_bill_id": template.ID.String(),
		})

		reloaded, err := s.billRepo.FindByIDWithLines(ctx, bill.ID)
		if err != nil {
			return result, fmt.Errorf("failed to reload bill: %w", err)
		}
		result.Bills = append(result.Bills, toBillResponse(*reloaded))
		result.GeneratedCount++
	}

	return result, nil
}

// generateFromTemplate does the shared generation work inside an open
// transaction: it creates the draft bill dated at the template's current next
// date and then advances the template.
func (s *recurringBillService) generateFromTemplate(ctx context.Context, template *model.RecurringBill, userID string) (*model.Bill, error) {
	if template.Status != model.RecurringActive {
		return nil, fmt.Errorf("cannot generate from %s recurring bill", template.Status)
	}

	next, err := billing.NextOccurrence(template.NextDate, template.Frequency)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, fmt.Errorf("recurring bill %s has no repeat frequency", template.TemplateName)
	}

	max, err := s.billRepo.MaxNumberSuffix(ctx, BillNumberPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to generate bill number: %w", err)
	}

	billDate := template.NextDate
	bill := model.Bill{
		BillNumber:  fmt.Sprintf("%s%04d", BillNumberPrefix, max+1),
		Reference:   fmt.Sprintf("Recurring: %s", template.TemplateName),
		ContactID:   template.ContactID,
		ContactName: template.ContactName,
		Status:      model.BillDraft,
		AmountType:  template.AmountType,
		Currency:    "NZD",
		Date:        billDate,
		DueDate:     billDate.AddDate(0, 0, template.DaysUntilDue),
		SubTotal:    template.SubTotal,
		TotalTax:    template.TotalTax,
		Total:       template.Total,
		AmountDue:   template.Total,
	}
	if err := s.billRepo.Create(ctx, &bill); err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}

	template.NextDate = *next
	template.TimesGenerated++
	if template.EndDate != nil && template.NextDate.After(*template.EndDate) {
		template.Status = model.RecurringCompleted
	}
	if err := s.recurringRepo.Update(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to update recurring bill: %w", err)
	}

	writeAuditLog(ctx, s.auditRepo, userID, model.ActionGenerateBillFromRecur, template.ID.String(), template.TemplateName,
		map[string]string{"bill_id": bill.ID.String(), "bill_number": bill.BillNumber})

	return &bill, nil
}

// --- Helpers ---

func parseTemplateAmounts(subTotal, totalTax, total string) (decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	sub, err := decimal.NewFromString(subTotal)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("invalid sub_total: %w", err)
	}
	tax, err := decimal.NewFromString(totalTax)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("invalid total_tax: %w", err)
	}
	tot, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("invalid total: %w", err)
	}
	if sub.IsNegative() || tax.IsNegative() || tot.IsNegative() {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("template amounts must not be negative")
	}
	return sub, tax, tot, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// --- Mapping ---

func toRecurringBillResponse(t model.RecurringBill) RecurringBillResponse {
	resp := RecurringBillResponse{
		ID:             t.ID.String(),
		TemplateName:   t.TemplateName,
		ContactID:      t.ContactID.String(),
		ContactName:    t.ContactName,
		Frequency:      string(t.Frequency),
		NextDate:       t.NextDate.Format(dateLayout),
		DaysUntilDue:   t.DaysUntilDue,
		Status:         string(t.Status),
		AmountType:     string(t.AmountType),
		SubTotal:       t.SubTotal.StringFixed(2),
		TotalTax:       t.TotalTax.StringFixed(2),
		Total:          t.Total.StringFixed(2),
		TimesGenerated: t.TimesGenerated,
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      t.UpdatedAt.Format(time.RFC3339),
	}
	if t.EndDate != nil {
		s := t.EndDate.Format(dateLayout)
		resp.EndDate = &s
	}
	return resp
}
