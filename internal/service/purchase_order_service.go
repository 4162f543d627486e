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

// PONumberPrefix is the sequence prefix for generated purchase order numbers.
const PONumberPrefix = "PO-"

// --- DTOs ---

type CreatePurchaseOrderRequest struct {
	Reference       string            `json:"reference"`
	ContactID       string            `json:"contact_id" binding:"required"`
	AmountType      string            `json:"amount_type" binding:"omitempty,oneof=exclusive inclusive no_tax"`
	Currency        string            `json:"currency"`
	Date            string            `json:"date" binding:"required"` // YYYY-MM-DD
	DeliveryDate    string            `json:"delivery_date"`           // YYYY-MM-DD, optional
	DeliveryAddress string            `json:"delivery_address"`
	LineItems       []LineItemRequest `json:"line_items"`
}

type UpdatePurchaseOrderRequest struct {
	Reference       string            `json:"reference"`
	ContactID       string            `json:"contact_id" binding:"required"`
	AmountType      string            `json:"amount_type" binding:"omitempty,oneof=exclusive inclusive no_tax"`
	Currency        string            `json:"currency"`
	Date            string            `json:"date" binding:"required"`
	DeliveryDate    string            `json:"delivery_date"`
	DeliveryAddress string            `json:"delivery_address"`
	LineItems       []LineItemRequest `json:"line_items"`
}

type ChangePOStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft submitted approved billed closed"`
}

type PurchaseOrderFilter struct {
	Status string
	Page   int
	Limit  int
}

type PurchaseOrderResponse struct {
	ID              string             `json:"id"`
	PONumber        string             `json:"po_number"`
	Reference       string             `json:"reference"`
	ContactID       string             `json:"contact_id"`
	ContactName     string             `json:"contact_name"`
	Status          string             `json:"status"`
	NextStatuses    []string           `json:"next_statuses"`
	Editable        bool               `json:"editable"`
	AmountType      string             `json:"amount_type"`
	Currency        string             `json:"currency"`
	Date            string             `json:"date"`
	DeliveryDate    *string            `json:"delivery_date"`
	DeliveryAddress string             `json:"delivery_address"`
	SubTotal        string             `json:"sub_total"`
	TotalTax        string             `json:"total_tax"`
	Total           string             `json:"total"`
	ConvertedBillID *string            `json:"converted_bill_id"`
	LineItems       []LineItemResponse `json:"line_items,omitempty"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
}

// --- Interface ---

type PurchaseOrderService interface {
	CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest, userID string) (PurchaseOrderResponse, error)
	GetPurchaseOrder(ctx context.Context, id string) (PurchaseOrderResponse, error)
	ListPurchaseOrders(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrderResponse, int64, error)
	UpdatePurchaseOrder(ctx context.Context, id string, req UpdatePurchaseOrderRequest, userID string) (PurchaseOrderResponse, error)
	ChangeStatus(ctx context.Context, id string, req ChangePOStatusRequest, userID string) (PurchaseOrderResponse, error)
	ApprovePurchaseOrder(ctx context.Context, id string, userID string) (PurchaseOrderResponse, error)
	RevertPurchaseOrder(ctx context.Context, id string, userID string) (PurchaseOrderResponse, error)
	ConvertToBill(ctx context.Context, id string, userID string) (BillResponse, error)
}

type purchaseOrderService struct {
	poRepo      repository.PurchaseOrderRepository
	billRepo    repository.BillRepository
	contactRepo repository.ContactRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *websocket.Hub
}

func NewPurchaseOrderService(
	poRepo repository.PurchaseOrderRepository,
	billRepo repository.BillRepository,
	contactRepo repository.ContactRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) PurchaseOrderService {
	return &purchaseOrderService{
		poRepo:      poRepo,
		billRepo:    billRepo,
		contactRepo: contactRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *purchaseOrderService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest, userID string) (PurchaseOrderResponse, error) {
	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("invalid contact_id: %w", err)
	}
	contact, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("contact not found: %w", err)
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}
	deliveryDate, err := parseOptionalDate("delivery_date", req.DeliveryDate)
	if err != nil {
		return PurchaseOrderResponse{}, err
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
		return PurchaseOrderResponse{}, err
	}

	var po model.PurchaseOrder
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		poNumber, numErr := s.generatePONumber(txCtx)
		if numErr != nil {
			return fmt.Errorf("failed to generate PO number: %w", numErr)
		}

		po = model.PurchaseOrder{
			PONumber:        poNumber,
			Reference:       req.Reference,
			ContactID:       contactID,
			ContactName:     contact.Name,
			Status:          model.POStatusDraft,
			AmountType:      amountType,
			Currency:        currency,
			Date:            date,
			DeliveryDate:    deliveryDate,
			DeliveryAddress: req.DeliveryAddress,
			SubTotal:        totals.SubTotal,
			TotalTax:        totals.TotalTax,
			Total:           totals.Total,
			LineItems:       lines,
		}
		if createErr := s.poRepo.Create(txCtx, &po); createErr != nil {
			return fmt.Errorf("failed to create purchase order: %w", createErr)
		}

		writeAuditLog(txCtx, s.auditRepo, userID, model.ActionCreatePurchaseOrder, po.ID.String(), po.PONumber, req)
		return nil
	})
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	s.hub.BroadcastEvent(websocket.EventPOCreated, map[string]string{
		"purchase_order_id": po.ID.String(),
		"po_number":         po.PONumber,
	})

	return s.reload(ctx, po.ID)
}

func (s *purchaseOrderService) GetPurchaseOrder(ctx context.Context, id string) (PurchaseOrderResponse, error) {
	poID, err := uuid.Parse(id)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("invalid purchase order id: %w", err)
	}
	return s.reload(ctx, poID)
}

func (s *purchaseOrderService) ListPurchaseOrders(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	pos, total, err := s.poRepo.List(ctx, repository.PurchaseOrderListFilter{
		Status: model.PurchaseOrderStatus(filter.Status),
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchase orders: %w", err)
	}

	result := make([]PurchaseOrderResponse, 0, len(pos))
	for _, po := range pos {
		result = append(result, toPurchaseOrderResponse(po))
	}
	return result, total, nil
}

func (s *purchaseOrderService) UpdatePurchaseOrder(ctx context.Context, id string, req UpdatePurchaseOrderRequest, userID string) (PurchaseOrderResponse, error) {
	poID, err := uuid.Parse(id)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("invalid purchase order id: %w", err)
	}

	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("invalid contact_id: %w", err)
	}
	contact, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("contact not found: %w", err)
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}
	deliveryDate, err := parseOptionalDate("delivery_date", req.DeliveryDate)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		po, findErr := s.poRepo.FindByID(txCtx, poID)
		if findErr != nil {
			return fmt.Errorf("purchase order not found: %w", findErr)
		}

		if !billing.IsPOEditable(po.Status) {
			return fmt.Errorf("cannot edit purchase order with status %s", po.Status)
		}

		amountType := po.AmountType
		if req.AmountType != "" {
			amountType = model.AmountType(req.AmountType)
		}

		lines, totals, parseErr := parseLineItems(req.LineItems, amountType)
		if parseErr != nil {
			return parseErr
		}

		po.Reference = req.Reference
		po.ContactID = contactID
		po.ContactName = contact.Name
		po.AmountType = amountType
		if req.Currency != "" {
			po.Currency = req.Currency
		}
		po.Date = date
		po.DeliveryDate = deliveryDate
		po.DeliveryAddress = req.DeliveryAddress
		po.SubTotal = totals.SubTotal
		po.TotalTax = totals.TotalTax
		po.Total = totals.Total

		if replaceErr := s.poRepo.ReplaceLines(txCtx, poID, lines); replaceErr != nil {
			return fmt.Errorf("failed to replace line items: %w", replaceErr)
		}
		if updateErr := s.poRepo.Update(txCtx, po); updateErr != nil {
			return fmt.Errorf("failed to update purchase order: %w", updateErr)
		}

		writeAuditLog(txCtx, s.auditRepo, userID, model.ActionUpdatePurchaseOrder, po.ID.String(), po.PONumber, req)
		return nil
	})
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	return s.reload(ctx, poID)
}

func (s *purchaseOrderService) ChangeStatus(ctx context.Context, id string, req ChangePOStatusRequest, userID string) (PurchaseOrderResponse, error) {
	return s.transition(ctx, id, model.PurchaseOrderStatus(req.Status), userID)
}

// ApprovePurchaseOrder moves a submitted PO to approved.
func (s *purchaseOrderService) ApprovePurchaseOrder(ctx context.Context, id string, userID string) (PurchaseOrderResponse, error) {
	return s.transition(ctx, id, model.POStatusApproved, userID)
}

// RevertPurchaseOrder moves a submitted PO back to draft for further edits.
func (s *purchaseOrderService) RevertPurchaseOrder(ctx context.Context, id string, userID string) (PurchaseOrderResponse, error) {
	return s.transition(ctx, id, model.POStatusDraft, userID)
}

// ConvertToBill creates a draft bill from an approved purchase order and
// marks the PO billed. A PO converts at most once; the billed status has no
// outgoing edges.
func (s *purchaseOrderService) ConvertToBill(ctx context.Context, id string, userID string) (BillResponse, error) {
	poID, err := uuid.Parse(id)
	if err != nil {
		return BillResponse{}, fmt.Errorf("invalid purchase order id: %w", err)
	}

	var bill model.Bill
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		po, findErr := s.poRepo.FindByIDWithLines(txCtx, poID)
		if findErr != nil {
			return fmt.Errorf("purchase order not found: %w", findErr)
		}

		newStatus, applyErr := billing.ApplyPOTransition(po.Status, model.POStatusBilled)
		if applyErr != nil {
			return fmt.Errorf("only approved purchase orders can be converted to bills: %w", applyErr)
		}

		max, numErr := s.billRepo.MaxNumberSuffix(txCtx, BillNumberPrefix)
		if numErr != nil {
			return fmt.Errorf("failed to generate bill number: %w", numErr)
		}
		billNumber := fmt.Sprintf("%s%04d", BillNumberPrefix, max+1)

		lines := make([]model.LineItem, 0, len(po.LineItems))
		for _, l := range po.LineItems {
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

		bill = model.Bill{
			BillNumber:            billNumber,
			Reference:             fmt.Sprintf("From purchase order %s", po.PONumber),
			ContactID:             po.ContactID,
			ContactName:           po.ContactName,
			Status:                model.BillDraft,
			AmountType:            po.AmountType,
			Currency:              po.Currency,
			Date:                  po.Date,
			DueDate:               po.Date.AddDate(0, 0, 30),
			SubTotal:              po.SubTotal,
			TotalTax:              po.TotalTax,
			Total:                 po.Total,
			AmountDue:             po.Total,
			SourcePurchaseOrderID: &po.ID,
			LineItems:             lines,
		}
		if createErr := s.billRepo.Create(txCtx, &bill); createErr != nil {
			return fmt.Errorf("failed to create bill: %w", createErr)
		}

		po.Status = newStatus
		po.ConvertedBillID = &bill.ID
		if updateErr := s.poRepo.Update(txCtx, po); updateErr != nil {
			return fmt.Errorf("failed to update purchase order: %w", updateErr)
		}

		writeAuditLog(txCtx, s.auditRepo, userID, model.ActionConvertPOToBill, po.ID.String(), po.PONumber,
			map[string]string{"bill_id": bill.ID.String(), "bill_number": bill.BillNumber})
		return nil
	})
	if err != nil {
		return BillResponse{}, err
	}

	s.hub.BroadcastEvent(websocket.EventBillCreated, map[string]string{
		"bill_id":           bill.ID.String(),
		"bill_number":       bill.BillNumber,
		"purchase_order_id": poID.String(),
	})

	reloaded, err := s.billRepo.FindByIDWithLines(ctx, bill.ID)
	if err != nil {
		return BillResponse{}, fmt.Errorf("failed to reload bill: %w", err)
	}
	return toBillResponse(*reloaded), nil
}

// --- Helpers ---

func (s *purchaseOrderService) transition(ctx context.Context, id string, requested model.PurchaseOrderStatus, userID string) (PurchaseOrderResponse, error) {
	poID, err := uuid.Parse(id)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("invalid purchase order id: %w", err)
	}

	var oldStatus model.PurchaseOrderStatus
	var poNumber string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		po, findErr := s.poRepo.FindByID(txCtx, poID)
		if findErr != nil {
			return fmt.Errorf("purchase order not found: %w", findErr)
		}

		oldStatus = po.Status
		next, applyErr := billing.ApplyPOTransition(po.Status, requested)
		if applyErr != nil {
			return applyErr
		}
		po.Status = next
		poNumber = po.PONumber

		if updateErr := s.poRepo.Update(txCtx, po); updateErr != nil {
			return fmt.Errorf("failed to update purchase order status: %w", updateErr)
		}

		writeAuditLog(txCtx, s.auditRepo, userID, model.ActionPOStatusChanged, po.ID.String(), po.PONumber,
			map[string]string{"from": string(oldStatus), "to": string(requested)})
		return nil
	})
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	s.hub.BroadcastEvent(websocket.EventPOStatusChanged, map[string]string{
		"purchase_order_id": poID.String(),
		"po_number":         poNumber,
		"from":              string(oldStatus),
		"to":                string(requested),
	})

	return s.reload(ctx, poID)
}

func (s *purchaseOrderService) generatePONumber(ctx context.Context) (string, error) {
	max, err := s.poRepo.MaxNumberSuffix(ctx, PONumberPrefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", PONumberPrefix, max+1), nil
}

func (s *purchaseOrderService) reload(ctx context.Context, id uuid.UUID) (PurchaseOrderResponse, error) {
	po, err := s.poRepo.FindByIDWithLines(ctx, id)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("failed to reload purchase order: %w", err)
	}
	return toPurchaseOrderResponse(*po), nil
}

// --- Mapping ---

func toPurchaseOrderResponse(po model.PurchaseOrder) PurchaseOrderResponse {
	next := billing.NextPOStatuses(po.Status)
	nextStrs := make([]string, 0, len(next))
	for _, s := range next {
		nextStrs = append(nextStrs, string(s))
	}

	resp := PurchaseOrderResponse{
		ID:              po.ID.String(),
		PONumber:        po.PONumber,
		Reference:       po.Reference,
		ContactID:       po.ContactID.String(),
		ContactName:     po.ContactName,
		Status:          string(po.Status),
		NextStatuses:    nextStrs,
		Editable:        billing.IsPOEditable(po.Status),
		AmountType:      string(po.AmountType),
		Currency:        po.Currency,
		Date:            po.Date.Format(dateLayout),
		DeliveryAddress: po.DeliveryAddress,
		SubTotal:        po.SubTotal.StringFixed(2),
		TotalTax:        po.TotalTax.StringFixed(2),
		Total:           po.Total.StringFixed(2),
		LineItems:       toLineItemResponses(po.LineItems),
		CreatedAt:       po.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       po.UpdatedAt.Format(time.RFC3339),
	}
	if po.DeliveryDate != nil {
		s := po.DeliveryDate.Format(dateLayout)
		resp.DeliveryDate = &s
	}
	if po.ConvertedBillID != nil {
		s := po.ConvertedBillID.String()
		resp.ConvertedBillID = &s
	}
	return resp
}
