package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus is the lifecycle stage of a bill.
type BillStatus string

const (
	BillDraft     BillStatus = "draft"
	BillSubmitted BillStatus = "submitted"
	BillApproved  BillStatus = "approved"
	BillPaid      BillStatus = "paid"
	BillVoided    BillStatus = "voided"
)

// AmountType determines how the tax rate is applied to line amounts.
type AmountType string

const (
	AmountTypeExclusive AmountType = "exclusive"
	AmountTypeInclusive AmountType = "inclusive"
	AmountTypeNoTax     AmountType = "no_tax"
)

// Bill represents a supplier bill. Totals are derived from its line items;
// amount_due is always total - amount_paid.
type Bill struct {
	ID                    uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BillNumber            string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"bill_number"`
	Reference             string          `gorm:"type:varchar(255)" json:"reference"`
	ContactID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"contact_id"`
	Contact               *Contact        `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	ContactName           string          `gorm:"type:varchar(255);not null" json:"contact_name"` // Hard copy at issue time
	Status                BillStatus      `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	AmountType            AmountType      `gorm:"type:varchar(20);not null;default:'exclusive'" json:"amount_type"`
	Currency              string          `gorm:"type:varchar(3);not null;default:'NZD'" json:"currency"`
	Date                  time.Time       `gorm:"type:date;not null" json:"date"`
	DueDate               time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	SubTotal              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"sub_total"`
	TotalTax              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_tax"`
	Total                 decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total"`
	AmountDue             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount_due"`
	AmountPaid            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount_paid"`
	SourcePurchaseOrderID *uuid.UUID      `gorm:"type:uuid;index" json:"source_purchase_order_id"`
	LineItems             []LineItem      `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"line_items,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}
