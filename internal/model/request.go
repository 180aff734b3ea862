package model

import (
	"fmt"
	"time"

	"backend/internal/workflow"

	"github.com/google/uuid"
)

// General request statuses
const (
	RequestStatusDraft              workflow.Status = "draft"
	RequestStatusCreatorApproved    workflow.Status = "creator_approved"
	RequestStatusFactoryApproved    workflow.Status = "factory_approved"
	RequestStatusManagementApproved workflow.Status = "management_approved"
	RequestStatusCanceled           workflow.Status = "canceled"
)

// General request approval steps. The first step is fired by the creator
// regardless of role: submitting the draft is itself the first approval.
const (
	RequestStepCreator    = "creator"
	RequestStepFactory    = "factory"
	RequestStepManagement = "management"
)

// RequestWorkflow is the chain for general administrative requests:
// draft → creator_approved → factory_approved → management_approved.
var RequestWorkflow = &workflow.Definition{
	DocType:  "general_request",
	Prefix:   "REQ",
	Initial:  RequestStatusDraft,
	Canceled: RequestStatusCanceled,
	Statuses: []workflow.Status{
		RequestStatusDraft,
		RequestStatusCreatorApproved,
		RequestStatusFactoryApproved,
		RequestStatusManagementApproved,
		RequestStatusCanceled,
	},
	Labels: map[workflow.Status]string{
		RequestStatusDraft:              "Draft",
		RequestStatusCreatorApproved:    "Submitted by requester",
		RequestStatusFactoryApproved:    "Factory manager approved",
		RequestStatusManagementApproved: "Management approved",
		RequestStatusCanceled:           "Canceled",
	},
	Steps: []workflow.Step{
		{Name: RequestStepCreator, From: RequestStatusDraft, To: RequestStatusCreatorApproved,
			CreatorOnly: true},
		{Name: RequestStepFactory, From: RequestStatusCreatorApproved, To: RequestStatusFactoryApproved,
			Roles: []workflow.Role{workflow.RoleFactoryManager}},
		{Name: RequestStepManagement, From: RequestStatusFactoryApproved, To: RequestStatusManagementApproved,
			Roles: []workflow.Role{workflow.RoleManagement}},
	},
}

// Request is a general administrative request (purchases, services, misc).
type Request struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"request_number"`
	Status        workflow.Status `gorm:"type:varchar(50);not null;default:'draft';index" json:"status"`
	CreatedByID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedBy     *User           `gorm:"foreignKey:CreatedByID" json:"creator,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	IsCompleted   bool            `gorm:"default:false" json:"is_completed"`

	CreatorApprovedByID    *uuid.UUID `gorm:"type:uuid" json:"creator_approved_by"`
	CreatorApprovedBy      *User      `gorm:"foreignKey:CreatorApprovedByID" json:"-"`
	CreatorApprovedAt      *time.Time `json:"creator_approved_at"`
	FactoryApprovedByID    *uuid.UUID `gorm:"type:uuid" json:"factory_approved_by"`
	FactoryApprovedBy      *User      `gorm:"foreignKey:FactoryApprovedByID" json:"-"`
	FactoryApprovedAt      *time.Time `json:"factory_approved_at"`
	ManagementApprovedByID *uuid.UUID `gorm:"type:uuid" json:"management_approved_by"`
	ManagementApprovedBy   *User      `gorm:"foreignKey:ManagementApprovedByID" json:"-"`
	ManagementApprovedAt   *time.Time `json:"management_approved_at"`

	CanceledByID *uuid.UUID `gorm:"type:uuid" json:"canceled_by"`
	CanceledBy   *User      `gorm:"foreignKey:CanceledByID" json:"-"`
	CanceledAt   *time.Time `json:"canceled_at"`
	CancelReason string     `gorm:"type:text" json:"cancel_reason"`

	Items []RequestItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items"`
}

// RequestItem is one line of a general request.
type RequestItem struct {
	ID            uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"request_id"`
	RequestTypeID uuid.UUID          `gorm:"type:uuid;not null" json:"request_type_id"`
	RequestType   *RequestTypeOption `gorm:"foreignKey:RequestTypeID" json:"request_type,omitempty"`
	CostCenterID  uuid.UUID          `gorm:"type:uuid;not null" json:"cost_center_id"`
	CostCenter    *CostCenter        `gorm:"foreignKey:CostCenterID" json:"cost_center,omitempty"`
	Description   string             `gorm:"type:text" json:"description"`
}

func (r *Request) DocType() string                { return RequestWorkflow.DocType }
func (r *Request) Number() string                 { return r.RequestNumber }
func (r *Request) CurrentStatus() workflow.Status { return r.Status }
func (r *Request) SetStatus(st workflow.Status)   { r.Status = st }
func (r *Request) CreatorID() uuid.UUID           { return r.CreatedByID }

func (r *Request) ApplyApproval(step string, by uuid.UUID, at time.Time) error {
	switch step {
	case RequestStepCreator:
		if r.CreatorApprovedByID != nil {
			return fmt.Errorf("%w: requester approval already recorded on %s", workflow.ErrPermissionDenied, r.RequestNumber)
		}
		r.CreatorApprovedByID = &by
		r.CreatorApprovedAt = &at
	case RequestStepFactory:
		if r.FactoryApprovedByID != nil {
			return fmt.Errorf("%w: factory approval already recorded on %s", workflow.ErrPermissionDenied, r.RequestNumber)
		}
		r.FactoryApprovedByID = &by
		r.FactoryApprovedAt = &at
	case RequestStepManagement:
		if r.ManagementApprovedByID != nil {
			return fmt.Errorf("%w: management approval already recorded on %s", workflow.ErrPermissionDenied, r.RequestNumber)
		}
		r.ManagementApprovedByID = &by
		r.ManagementApprovedAt = &at
	default:
		return fmt.Errorf("%w: unknown approval step %q", workflow.ErrNotFound, step)
	}
	return nil
}

func (r *Request) ApplyCancel(by uuid.UUID, at time.Time, reason string) error {
	if r.CanceledByID != nil {
		return fmt.Errorf("%w: request %s already canceled", workflow.ErrPermissionDenied, r.RequestNumber)
	}
	r.CanceledByID = &by
	r.CanceledAt = &at
	r.CancelReason = reason
	return nil
}

// CanEditBy: the creator edits until management has approved; the factory
// manager edits the statuses it gatekeeps; management edits any request that
// is neither canceled nor completed.
func (r *Request) CanEditBy(actor workflow.Actor) bool {
	if r.Status == RequestStatusCanceled || r.IsCompleted {
		return false
	}
	if actor.ID == r.CreatedByID {
		return r.Status == RequestStatusDraft ||
			r.Status == RequestStatusCreatorApproved ||
			r.Status == RequestStatusFactoryApproved
	}
	switch {
	case actor.Is(workflow.RoleFactoryManager):
		return r.Status == RequestStatusCreatorApproved || r.Status == RequestStatusFactoryApproved
	case actor.Is(workflow.RoleManagement):
		return true
	}
	return false
}

// CanCancelBy follows the edit branches but never admits cancellation from
// the management_approved terminal.
func (r *Request) CanCancelBy(actor workflow.Actor) bool {
	if r.Status == RequestStatusManagementApproved {
		return false
	}
	return r.CanEditBy(actor)
}
