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
)

// BillNumberPrefix is the sequence prefix for generated bill numbers.
const BillNumberPrefix = "BILL-"

// --- DTOs ---

type CreateBillRequest struct {
	Reference  string            `json:"reference"`
	ContactID  string            `json:"contact_id" binding:"required"`
	AmountType string            `json:"amount_type" binding:"omitempty,oneof=exclusive inclusive no_tax"`
	Currency   string            `json:"currency"`
	Date       string            `json:"date" binding:"required"`     // YYYY-MM-DD
	DueDate    string            `json:"due_date" binding:"required"` // YYYY-MM-DD
	LineItems  []LineItemRequest `json:"line_items"`
}

// UpdateBillRequest replaces a draft bill's content wholesale. Bills that
// have left draft reject edits.
type UpdateBillRequest struct {
	Reference  string            `json:"reference"`
	ContactID  string            `json:"contact_id" binding:"required"`
	AmountType string            `json:"amount_type" binding:"omitempty,oneof=exclusive inclusive no_tax"`
	Currency   string            `json:"currency"`
	Date       string            `json:"date" binding:"required"`
	DueDate    string            `json:"due_date" binding:"required"`
	LineItems  []LineItemRequest `json:"line_items"`
}

type ChangeBillStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft submitted approved paid voided"`
}

type BillFilter struct {
	Status     string
	BillNumber string
	Page       int
	Limit      int
}

type BillResponse struct {
	ID                    string             `json:"id"`
	BillNumber            string             `json:"bill_number"`
	Reference             string             `json:"reference"`
	ContactID             string             `json:"contact_id"`
	ContactName           string             `json:"contact_name"`
	Status                string             `json:"status"`
	NextStatuses          []string           `json:"next_statuses"`
	Editable              bool               `json:"editable"`
	CanReceivePayment     bool               `json:"can_receive_payment"`
	AmountType            string             `json:"amount_type"`
	Currency              string             `json:"currency"`
	Date                  string             `json:"date"`
	DueDate               string             `json:"due_date"`
	SubTotal              string             `json:"sub_total"`
	TotalTax              string             `json:"total_tax"`
	Total                 string             `json:"total"`
	AmountDue             string             `json:"amount_due"`
	AmountPaid            string             `json:"amount_paid"`
	SourcePurchaseOrderID *string            `json:"source_purchase_order_id"`
	LineItems             []LineItemResponse `json:"line_items,omitempty"`
	CreatedAt             string             `json:"created_at"`
	UpdatedAt             string             `json:"updated_at"`
}

// BillsDueResponse groups unpaid bills by how soon they fall due.
type BillsDueResponse struct {
	Overdue   []BillResponse `json:"overdue"`
	Today     []BillResponse `json:"today"`
	ThisWeek  []BillResponse `json:"this_week"`
	ThisMonth []BillResponse `json:"this_month"`
}

// --- Interface ---

type BillService interface {
	CreateBill(ctx context.Context, req CreateBillRequest, userID string) (BillResponse, error)
	GetBill(ctx context.Context, id string) (BillResponse, error)
	ListBills(ctx context.Context, filter BillFilter) ([]BillResponse, int64, error)
	GetBillsDue(ctx context.Context, asOf time.Time) (BillsDueResponse, error)
	UpdateBill(ctx context.Context, id string, req UpdateBillRequest, userID string) (BillResponse, error)
	ChangeStatus(ctx context.Context, id string, req ChangeBillStatusRequest, userID string) (BillResponse, error)
	CopyBill(ctx context.Context, id string, userID string) (BillResponse, error)
}

type billService struct {
	billRepo    repository.BillRepository
	contactRepo repository.ContactRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *websocket.Hub
}

func NewBillService(
	billRepo repository.BillRepository,
	contactRepo repository.ContactRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) BillService {
	return &billService{
		billRepo:    billRepo,
		contactRepo: contactRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *billService) CreateBill(ctx context.Context, req CreateBillRequest, userID string) (BillResponse, error) {
	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		return BillResponse{}, fmt.Errorf("invalid contact_id: %w", err)
	}
	contact, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		return BillResponse{}, fmt.Errorf("contact not found: %w", err)
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		return BillResponse{}, err
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return BillResponse{}, err
	}

	amountType := model.AmountTypeExclusive
	if req.AmountType != "" {
		amountType = model.AmountType(req.AmountType)
	}
	currency := req.Currency
	if currency == "" {
		currency = "NZD"
	}

	lines, totals, err := parseLineItems(req.LineItems, amountType)
	if err != nil {
		return BillResponse{}, err
	}

	var bill model.Bill
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		billNumber, numErr := s.generateBillNumber(txCtx)
		if numErr != nil {
			return fmt.Errorf("failed to generate bill number: %w", numErr)
		}

		bill = model.Bill{
			BillNumber:  billNumber,
			Reference:   req.Reference,
			ContactID:   contactID,
			ContactName: contact.Name,
			Status:      model.BillDraft,
			AmountType:  amountType,
			Currency:    currency,
			Date:        date,
			DueDate:     dueDate,
			SubTotal:    totals.SubTotal,
			TotalTax:    totals.TotalTax,
			Total:       totals.Total,
			AmountDue:   totals.Total,
			LineItems:   lines,
		}
		if createErr := s.billRepo.Create(txCtx, &bill); createErr != nil {
			return fmt.Errorf("failed to create bill: %w", createErr)
		}

		writeAuditLog(txCtx, s.auditRepo, userID, model.ActionCreateBill, bill.ID.String(), bill.BillNumber, req)
		return nil
	})
	if err != nil {
		return BillResponse{}, err
	}

	s.hub.BroadcastEvent(websocket.EventBillCreated, map[string]string{
		"bill_id":     bill.ID.String(),
		"bill_number": bill.BillNumber,
	})

	return s.reload(ctx, bill.ID)
}

func (s *billService) GetBill(ctx context.Context, id string) (BillResponse, error) {
	billID, err := uuid.Parse(id)
	if err != nil {
		return BillResponse{}, fmt.Errorf("invalid bill id: %w", err)
	}
	return s.reload(ctx, billID)
}

func (s *billService) ListBills(ctx context.Context, filter BillFilter) ([]BillResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	bills, total, err := s.billRepo.List(ctx, repository.BillListFilter{
		Status:     model.BillStatus(filter.Status),
		BillNumber: filter.BillNumber,
		Page:       filter.Page,
		Limit:      filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bills: %w", err)
	}

	result := make([]BillResponse, 0, len(bills))
	for _, b := range bills {
		result = append(result, toBillResponse(b))
	}
	return result, total, nil
}

// GetBillsDue buckets unpaid bills into overdue / today / this week / this
// month relative to asOf. Callers supply asOf so the grouping is testable.
func (s *billService) GetBillsDue(ctx context.Context, asOf time.Time) (BillsDueResponse, error) {
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
	weekFromNow := today.AddDate(0, 0, 7)
	monthFromNow := today.AddDate(0, 0, 30)

	bills, err := s.billRepo.ListUnpaidDueBefore(ctx, monthFromNow)
	if err != nil {
		return BillsDueResponse{}, fmt.Errorf("failed to fetch due bills: %w", err)
	}

	res := BillsDueResponse{
		Overdue:   []BillResponse{},
		Today:     []BillResponse{},
		ThisWeek:  []BillResponse{},
		ThisMonth: []BillResponse{},
	}
	for _, b := range bills {
		due := time.Date(b.DueDate.Year(), b.DueDate.Month(), b.DueDate.Day(), 0, 0, 0, 0, today.Location())
		resp := toBillResponse(b)
		switch {
		case due.Before(today):
			res.Overdue = append(res.Overdue, resp)
		case due.Equal(today):
			res.Today = append(res.Today, resp)
		case !due.After(weekFromNow):
			res.ThisWeek = append(res.ThisWeek, resp)
		default:
			res.ThisMonth = append(res.ThisMonth, resp)
		}
	}
	return res, nil
}

func (s *billService) UpdateBill(ctx context.Context, id string, req UpdateBillRequest, userID string) (BillResponse, error) {
	billID, err := uuid.Parse(id)
	if err != nil {
		return BillResponse{}, fmt.Errorf("invalid bill id: %w", err)
	}

	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		return BillResponse{}, fmt.Errorf("invalid contact_id: %w", err)
	}
	contact, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		return BillResponse{}, fmt.Errorf("contact not found: %w", err)
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		return BillResponse{}, err
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return BillResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		bill, findErr := s.billRepo.FindByID(txCtx, billID)
		if findErr != nil {
			return fmt.Errorf("bill not found: %w", findErr)
		}

		if !billing.IsEditable(bill.Status) {
			return fmt.Errorf("cannot edit bill with status %s", bill.Status)
		}

		amountType := bill.AmountType
		if req.AmountType != "" {
			amountType = model.AmountType(req.AmountType)
		}

		lines, totals, parseErr := parseLineItems(req.LineItems, amountType)
		if parseErr != nil {
			return parseErr
		}

		bill.Reference = req.Reference
		bill.ContactID = contactID
		bill.ContactName = contact.Name
		bill.AmountType = amountType
		if req.Currency != "" {
			bill.Currency = req.Currency
		}
		bill.Date = date
		bill.DueDate = dueDate
		bill.SubTotal = totals.SubTotal
		bill.TotalTax = totals.TotalTax
		bill.Total = totals.Total
		bill.AmountDue = billing.AmountDue(totals.Total, bill.AmountPaid)

		if replaceErr := s.billRepo.ReplaceLines(txCtx, billID, lines); replaceErr != nil {
			return fmt.Errorf("failed to replace line items: %w", replaceErr)
		}
		if updateErr := s.billRepo.Update(txCtx, bill); updateErr != nil {
			return fmt.Errorf("failed to update bill: %w", updateErr)
		}

		writeAuditLog(txCtx, s.auditRepo, userID, model.ActionUpdateBill, bill.ID.String(), bill.BillNumber, req)
		return nil
	})
	if err != nil {
		return BillResponse{}, err
	}

	return s.reload(ctx, billID)
}

func (s *billService) ChangeStatus(ctx context.Context, id string, req ChangeBillStatusRequest, userID string) (BillResponse, error) {
	billID, err := uuid.Parse(id)
	if err != nil {
		return BillResponse{}, fmt.Errorf("invalid bill id: %w", err)
	}

	var oldStatus, newStatus model.BillStatus
	var billNumber string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		bill, findErr := s.billRepo.FindByID(txCtx, billID)
		if findErr != nil {
			return fmt.Errorf("bill not found: %w", findErr)
		}

		oldStatus = bill.Status
		next, applyErr := billing.ApplyTransition(bill.Status, model.BillStatus(req.Status))
		if applyErr != nil {
			return applyErr
		}
		bill.Status = next
		newStatus = next
		billNumber = bill.BillNumber

		if updateErr := s.billRepo.Update(txCtx, bill); updateErr != nil {
			return fmt.Errorf("failed to update bill status: %w", updateErr)
		}

		writeAuditLog(txCtx, s.auditRepo, userID, model.ActionBillStatusChanged, bill.ID.String(), bill.BillNumber,
			map[string]string{"from": string(oldStatus), "to": string(newStatus)})
		return nil
	})
	if err != nil {
		return BillResponse{}, err
	}

	s.hub.BroadcastEvent(websocket.EventBillStatusChanged, map[string]string{
		"bill_id":     billID.String(),
		"bill_number": billNumber,
		"from":        string(oldStatus),
		"to":          string(newStatus),
	})

	return s.reload(ctx, billID)
}

// CopyBill clones an existing bill into a fresh draft with a new number and
// no payment history.
func (s *billService) CopyBill(ctx context.Context, id string, userID string) (BillResponse, error) {
	billID, err := uuid.Parse(id)
	if err != nil {
		return BillResponse{}, fmt.Errorf("invalid bill id: %w", err)
	}

	source, err := s.billRepo.FindByIDWithLines(ctx, billID)
	if err != nil {
		return BillResponse{}, fmt.Errorf("bill not found: %w", err)
	}

	var copyBill model.Bill
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		billNumber, numErr := s.generateBillNumber(txCtx)
		if numErr != nil {
			return fmt.Errorf("failed to generate bill number: %w", numErr)
		}

		lines := make([]model.LineItem, 0, len(source.LineItems))
		for _, l := range source.LineItems {
			lines = append(lines, model.LineItem{
				Description:     l.Description,
				Quantity:        l.Quantity,
				UnitPrice:       l.UnitPrice,
				DiscountPercent: l.DiscountPercent,
				TaxRatePercent:  l.TaxRatePercent,
				TaxAmount:       l.TaxAmount,
				LineAmount:      l.LineAmount,
			})
		}

		copyBill = model.Bill{
			BillNumber:  billNumber,
			Reference:   fmt.Sprintf("Copy of %s", source.BillNumber),
			ContactID:   source.ContactID,
			ContactName: source.ContactName,
			Status:      model.BillDraft,
			AmountType:  source.AmountType,
			Currency:    source.Currency,
			Date:        source.Date,
			DueDate:     source.DueDate,
			SubTotal:    source.SubTotal,
			TotalTax:    source.TotalTax,
			Total:       source.Total,
			AmountDue:   source.Total,
			LineItems:   lines,
		}
		if createErr := s.billRepo.Create(txCtx, &copyBill); createErr != nil {
			return fmt.Errorf("failed to create bill copy: %w", createErr)
		}

		writeAuditLog(txCtx, s.auditRepo, userID, model.ActionCopyBill, copyBill.ID.String(), copyBill.BillNumber,
			map[string]string{"source_bill_id": source.ID.String()})
		return nil
	})
	if err != nil {
		return BillResponse{}, err
	}

	s.hub.BroadcastEvent(websocket.EventBillCreated, map[string]string{
		"bill_id":     copyBill.ID.String(),
		"bill_number": copyBill.BillNumber,
	})

	return s.reload(ctx, copyBill.ID)
}

// --- Helpers ---

func (s *billService) generateBillNumber(ctx context.Context) (string, error) {
	max, err := s.billRepo.MaxNumberSuffix(ctx, BillNumberPrefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", BillNumberPrefix, max+1), nil
}

func (s *billService) reload(ctx context.Context, id uuid.UUID) (BillResponse, error) {
	bill, err := s.billRepo.FindByIDWithLines(ctx, id)
	if err != nil {
		return BillResponse{}, fmt.Errorf("failed to reload bill: %w", err)
	}
	return toBillResponse(*bill), nil
}

// --- Mapping ---

func toBillResponse(b model.Bill) BillResponse {
	next := billing.NextStatuses(b.Status)
	nextStrs := make([]string, 0, len(next))
	for _, s := range next {
		nextStrs = append(nextStrs, string(s))
	}

	resp := BillResponse{
		ID:                b.ID.String(),
		BillNumber:        b.BillNumber,
		Reference:         b.Reference,
		ContactID:         b.ContactID.String(),
		ContactName:       b.ContactName,
		Status:            string(b.Status),
		NextStatuses:      nextStrs,
		Editable:          billing.IsEditable(b.Status),
		CanReceivePayment: billing.CanReceivePayment(b.Status),
		AmountType:        string(b.AmountType),
		Currency:          b.Currency,
		Date:              b.Date.Format(dateLayout),
		DueDate:           b.DueDate.Format(dateLayout),
		SubTotal:          b.SubTotal.StringFixed(2),
		TotalTax:          b.TotalTax.StringFixed(2),
		Total:             b.Total.StringFixed(2),
		AmountDue:         b.AmountDue.StringFixed(2),
		AmountPaid:        b.AmountPaid.StringFixed(2),
		LineItems:         toLineItemResponses(b.LineItems),
		CreatedAt:         b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         b.UpdatedAt.Format(time.RFC3339),
	}
	if b.SourcePurchaseOrderID != nil {
		s := b.SourcePurchaseOrderID.String()
		resp.SourcePurchaseOrderID = &s
	}
	return resp
}
