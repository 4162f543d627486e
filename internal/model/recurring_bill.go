package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurrenceFrequency is the repeat interval of a recurring bill template.
type RecurrenceFrequency string

const (
	FreqNone        RecurrenceFrequency = "none"
	FreqWeekly      RecurrenceFrequency = "weekly"
	FreqFortnightly RecurrenceFrequency = "fortnightly"
	FreqMonthly     RecurrenceFrequency = "monthly"
	FreqBimonthly   RecurrenceFrequency = "bimonthly"
	FreqQuarterly   RecurrenceFrequency = "quarterly"
	FreqAnnually    RecurrenceFrequency = "annually"
)

// RecurringBillStatus enum constants
type RecurringBillStatus string

const (
	RecurringActive    RecurringBillStatus = "active"
	RecurringPaused    RecurringBillStatus = "paused"
	RecurringCompleted RecurringBillStatus = "completed"
)

// RecurringBill is a template that generates draft bills on a schedule.
// NextDate is advanced by the recurrence scheduler on every generation;
// the template completes once NextDate passes EndDate.
type RecurringBill struct {
	ID             uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TemplateName   string              `gorm:"type:varchar(255);not null" json:"template_name"`
	ContactID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"contact_id"`
	Contact        *Contact            `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	ContactName    string              `gorm:"type:varchar(255);not null" json:"contact_name"`
	Frequency      RecurrenceFrequency `gorm:"type:varchar(20);not null" json:"frequency"`
	NextDate       time.Time           `gorm:"type:date;not null;index" json:"next_date"`
	EndDate        *time.Time          `gorm:"type:date" json:"end_date"`
	DaysUntilDue   int                 `gorm:"not null;default:30" json:"days_until_due"`
	Status         RecurringBillStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	AmountType     AmountType          `gorm:"type:varchar(20);not null;default:'exclusive'" json:"amount_type"`
	SubTotal       decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"sub_total"`
	TotalTax       decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"total_tax"`
	Total          decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"total"`
	TimesGenerated int                 `gorm:"not null;default:0" json:"times_generated"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
