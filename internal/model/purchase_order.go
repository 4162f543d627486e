package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus is the lifecycle stage of a purchase order. Unlike
// bills, approved POs terminate by being billed or closed rather than paid.
type PurchaseOrderStatus string

const (
	POStatusDraft     PurchaseOrderStatus = "draft"
	POStatusSubmitted PurchaseOrderStatus = "submitted"
	POStatusApproved  PurchaseOrderStatus = "approved"
	POStatusBilled    PurchaseOrderStatus = "billed"
	POStatusClosed    PurchaseOrderStatus = "closed"
)

// PurchaseOrder represents an order placed with a supplier before a bill
// exists. An approved PO can be converted into a draft bill exactly once.
type PurchaseOrder struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PONumber        string              `gorm:"type:varchar(30);uniqueIndex;not null" json:"po_number"`
	Reference       string              `gorm:"type:varchar(255)" json:"reference"`
	ContactID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"contact_id"`
	Contact         *Contact            `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	ContactName     string              `gorm:"type:varchar(255);not null" json:"contact_name"`
	Status          PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	AmountType      AmountType          `gorm:"type:varchar(20);not null;default:'exclusive'" json:"amount_type"`
	Currency        string              `gorm:"type:varchar(3);not null;default:'NZD'" json:"currency"`
	Date            time.Time           `gorm:"type:date;not null" json:"date"`
	DeliveryDate    *time.Time          `gorm:"type:date" json:"delivery_date"`
	DeliveryAddress string              `gorm:"type:text" json:"delivery_address"`
	SubTotal        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"sub_total"`
	TotalTax        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"total_tax"`
	Total           decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"total"`
	ConvertedBillID *uuid.UUID          `gorm:"type:uuid" json:"converted_bill_id"`
	LineItems       []LineItem          `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"line_items,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}
