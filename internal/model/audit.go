package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateDocument   = "CREATE_DOCUMENT"
	ActionUpdateDocument   = "UPDATE_DOCUMENT"
	ActionApproveStep      = "APPROVE_STEP"
	ActionCancelDocument   = "CANCEL_DOCUMENT"
	ActionRejectDocument   = "REJECT_DOCUMENT"
	ActionCompleteDocument = "COMPLETE_DOCUMENT"
	ActionCreateUser       = "CREATE_USER"
	ActionUpdateUser       = "UPDATE_USER"
	ActionDeleteUser       = "DELETE_USER"
)

// AuditLog tracks Who, What, and When for every document mutation. Rows are
// written inside the same transaction as the change they describe.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	DocType    string     `gorm:"type:varchar(50);index" json:"doc_type"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`     // Document uuid
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Document number
	Details    string     `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
