package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"billbook/internal/billing"
	"billbook/internal/model"
	"billbook/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// --- Shared line item DTOs ---

type LineItemRequest struct {
	Description     string `json:"description"`
	Quantity        string `json:"quantity" binding:"required"`
	UnitPrice       string `json:"unit_price" binding:"required"`
	DiscountPercent string `json:"discount_percent"` // Optional, defaults to 0
	TaxRatePercent  string `json:"tax_rate_percent"` // Optional, defaults to 0
}

type LineItemResponse struct {
	ID              string `json:"id"`
	Description     string `json:"description"`
	Quantity        string `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
	DiscountPercent string `json:"discount_percent"`
	TaxRatePercent  string `json:"tax_rate_percent"`
	TaxAmount       string `json:"tax_amount"`
	LineAmount      string `json:"line_amount"`
}

// parseLineItems validates and converts request lines, computing the stored
// per-line tax and amount plus the document totals in one pass.
func parseLineItems(reqs []LineItemRequest, amountType model.AmountType) ([]model.LineItem, billing.Totals, error) {
	lines := make([]model.LineItem, 0, len(reqs))
	inputs := make([]billing.LineInput, 0, len(reqs))

	for i, req := range reqs {
		quantity, err := decimal.NewFromString(req.Quantity)
		if err != nil {
			return nil, billing.Totals{}, fmt.Errorf("line %d: invalid quantity: %w", i+1, err)
		}
		unitPrice, err := decimal.NewFromString(req.UnitPrice)
		if err != nil {
			return nil, billing.Totals{}, fmt.Errorf("line %d: invalid unit_price: %w", i+1, err)
		}
		if quantity.IsNegative() || unitPrice.IsNegative() {
			return nil, billing.Totals{}, fmt.Errorf("line %d: quantity and unit_price must not be negative", i+1)
		}

		discount := decimal.Zero
		if req.DiscountPercent != "" {
			discount, err = decimal.NewFromString(req.DiscountPercent)
			if err != nil {
				return nil, billing.Totals{}, fmt.Errorf("line %d: invalid discount_percent: %w", i+1, err)
			}
		}
		if discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
			return nil, billing.Totals{}, fmt.Errorf("line %d: discount_percent must be between 0 and 100", i+1)
		}

		taxRate := decimal.Zero
		if req.TaxRatePercent != "" {
			taxRate, err = decimal.NewFromString(req.TaxRatePercent)
			if err != nil {
				return nil, billing.Totals{}, fmt.Errorf("line %d: invalid tax_rate_percent: %w", i+1, err)
			}
		}
		if taxRate.IsNegative() {
			return nil, billing.Totals{}, fmt.Errorf("line %d: tax_rate_percent must not be negative", i+1)
		}

		input := billing.LineInput{
			Quantity:        quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: discount,
			TaxRatePercent:  taxRate,
		}
		calc, err := billing.CalcLineItem(input, amountType)
		if err != nil {
			return nil, billing.Totals{}, fmt.Errorf("line %d: %w", i+1, err)
		}

		inputs = append(inputs, input)
		lines = append(lines, model.LineItem{
			Description:     req.Description,
			Quantity:        quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: discount,
			TaxRatePercent:  taxRate,
			TaxAmount:       calc.TaxAmount,
			LineAmount:      calc.LineAmount,
		})
	}

	totals, err := billing.CalcTotals(inputs, amountType)
	if err != nil {
		return nil, billing.Totals{}, err
	}

	return lines, totals, nil
}

func toLineItemResponse(l model.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:              l.ID.String(),
		Description:     l.Description,
		Quantity:        l.Quantity.String(),
		UnitPrice:       l.UnitPrice.String(),
		DiscountPercent: l.DiscountPercent.String(),
		TaxRatePercent:  l.TaxRatePercent.String(),
		TaxAmount:       l.TaxAmount.StringFixed(2),
		LineAmount:      l.LineAmount.StringFixed(2),
	}
}

func toLineItemResponses(lines []model.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, toLineItemResponse(l))
	}
	return out
}

// --- Audit helper ---

// writeAuditLog records a best-effort audit entry; failures never break the
// operation being audited.
func writeAuditLog(ctx context.Context, auditRepo repository.AuditRepository, userID, action, entityID, entityName string, details interface{}) {
	detailsJSON, _ := json.Marshal(details)

	entry := model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}

	if userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			entry.UserID = &parsed
		}
	}

	_ = auditRepo.Create(ctx, &entry)
}

// --- Parsing helpers ---

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date format (expected YYYY-MM-DD): %w", field, err)
	}
	return t, nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
