package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is a payment recorded against an approved bill. Payments are
// append-only: never updated or deleted, corrections go through new records.
type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BillID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	Bill        *Bill           `gorm:"foreignKey:BillID" json:"bill,omitempty"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Date        time.Time       `gorm:"type:date;not null" json:"date"`
	Reference   string          `gorm:"type:varchar(255)" json:"reference"`
	BankAccount string          `gorm:"type:varchar(50)" json:"bank_account"`
	CreatedAt   time.Time       `json:"created_at"`
}
