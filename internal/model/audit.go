package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateBill            = "CREATE_BILL"
	ActionUpdateBill            = "UPDATE_BILL"
	ActionCopyBill              = "COPY_BILL"
	ActionBillStatusChanged     = "BILL_STATUS_CHANGED"
	ActionCreatePurchaseOrder   = "CREATE_PURCHASE_ORDER"
	ActionUpdatePurchaseOrder   = "UPDATE_PURCHASE_ORDER"
	ActionPOStatusChanged       = "PO_STATUS_CHANGED"
	ActionConvertPOToBill       = "CONVERT_PO_TO_BILL"
	ActionCreateRecurringBill   = "CREATE_RECURRING_BILL"
	ActionUpdateRecurringBill   = "UPDATE_RECURRING_BILL"
	ActionDeleteRecurringBill   = "DELETE_RECURRING_BILL"
	ActionGenerateBillFromRecur = "GENERATE_BILL_FROM_RECURRING"
	ActionRecordPayment         = "RECORD_PAYMENT"
	ActionCreateContact         = "CREATE_CONTACT"
	ActionUpdateContact         = "UPDATE_CONTACT"
	ActionDeleteContact         = "DELETE_CONTACT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated job
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/number)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
