package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one row of a bill or purchase order. Exactly one of BillID /
// PurchaseOrderID is set. TaxAmount and LineAmount are computed from the
// parent document's amount type and stored for display.
type LineItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BillID          *uuid.UUID      `gorm:"type:uuid;index" json:"bill_id"`
	PurchaseOrderID *uuid.UUID      `gorm:"type:uuid;index" json:"purchase_order_id"`
	Description     string          `gorm:"type:varchar(500);not null;default:''" json:"description"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unit_price"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0" json:"discount_percent"`
	TaxRatePercent  decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0" json:"tax_rate_percent"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax_amount"`
	LineAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"line_amount"`
}
