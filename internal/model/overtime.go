package model

import (
	"fmt"
	"time"

	"backend/internal/workflow"

	"github.com/google/uuid"
)

// Overtime request statuses. rejected is an alternate terminal reachable
// from any pending status; canceled is the creator-side escape.
const (
	OvertimeStatusAdminPending      workflow.Status = "admin_pending"
	OvertimeStatusFactoryPending    workflow.Status = "factory_pending"
	OvertimeStatusManagementPending workflow.Status = "management_pending"
	OvertimeStatusApproved          workflow.Status = "approved"
	OvertimeStatusRejected          workflow.Status = "rejected"
	OvertimeStatusCanceled          workflow.Status = "canceled"
)

// Overtime approval steps
const (
	OvertimeStepAdmin      = "admin"
	OvertimeStepFactory    = "factory"
	OvertimeStepManagement = "management"
)

// OvertimeWorkflow is the three-gate chain for overtime requests:
// admin_pending → factory_pending → management_pending → approved.
// Unlike the other chains, management does not shortcut the earlier gates.
var OvertimeWorkflow = &workflow.Definition{
	DocType:  "overtime_request",
	Prefix:   "OT",
	Initial:  OvertimeStatusAdminPending,
	Canceled: OvertimeStatusCanceled,
	Statuses: []workflow.Status{
		OvertimeStatusAdminPending,
		OvertimeStatusFactoryPending,
		OvertimeStatusManagementPending,
		OvertimeStatusApproved,
		OvertimeStatusRejected,
		OvertimeStatusCanceled,
	},
	Labels: map[workflow.Status]string{
		OvertimeStatusAdminPending:      "Awaiting administrative officer",
		OvertimeStatusFactoryPending:    "Awaiting factory manager",
		OvertimeStatusManagementPending: "Awaiting management",
		OvertimeStatusApproved:          "Approved",
		OvertimeStatusRejected:          "Rejected",
		OvertimeStatusCanceled:          "Canceled",
	},
	Steps: []workflow.Step{
		{Name: OvertimeStepAdmin, From: OvertimeStatusAdminPending, To: OvertimeStatusFactoryPending,
			Roles: []workflow.Role{workflow.RoleAdministrativeOfficer}},
		{Name: OvertimeStepFactory, From: OvertimeStatusFactoryPending, To: OvertimeStatusManagementPending,
			Roles: []workflow.Role{workflow.RoleFactoryManager}},
		{Name: OvertimeStepManagement, From: OvertimeStatusManagementPending, To: OvertimeStatusApproved,
			Roles: []workflow.Role{workflow.RoleManagement}},
	},
}

// OvertimeRequest collects personnel overtime entries for one approval run.
type OvertimeRequest struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"request_number"`
	Status        workflow.Status `gorm:"type:varchar(20);not null;default:'admin_pending';index" json:"status"`
	CreatedByID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedBy     *User           `gorm:"foreignKey:CreatedByID" json:"creator,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	AdminApprovedByID      *uuid.UUID `gorm:"type:uuid" json:"admin_approved_by"`
	AdminApprovedBy        *User      `gorm:"foreignKey:AdminApprovedByID" json:"-"`
	AdminApprovedAt        *time.Time `json:"admin_approved_at"`
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

	Items []OvertimeItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items"`
}

// OvertimeItem is one person's overtime entry. Times are HH:MM clock strings;
// an end before the start means the shift crossed midnight.
type OvertimeItem struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"request_id"`
	EmployeeName string      `gorm:"type:varchar(200);not null" json:"employee_name"`
	DepartmentID uuid.UUID   `gorm:"type:uuid;not null" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	StartTime    string      `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime      string      `gorm:"type:varchar(5);not null" json:"end_time"`
	Reason       string      `gorm:"type:text;not null" json:"reason"`
}

// DurationMinutes computes the overtime length, rolling over midnight when
// the end time precedes the start.
func (i *OvertimeItem) DurationMinutes() int {
	start, err1 := time.Parse("15:04", i.StartTime)
	end, err2 := time.Parse("15:04", i.EndTime)
	if err1 != nil || err2 != nil {
		return 0
	}
	d := end.Sub(start)
	if d < 0 {
		d += 24 * time.Hour
	}
	return int(d.Minutes())
}

func (o *OvertimeRequest) DocType() string                { return OvertimeWorkflow.DocType }
func (o *OvertimeRequest) Number() string                 { return o.RequestNumber }
func (o *OvertimeRequest) CurrentStatus() workflow.Status { return o.Status }
func (o *OvertimeRequest) SetStatus(st workflow.Status)   { o.Status = st }
func (o *OvertimeRequest) CreatorID() uuid.UUID           { return o.CreatedByID }

// IsTerminal reports whether no further action can happen on the request.
func (o *OvertimeRequest) IsTerminal() bool {
	return o.Status == OvertimeStatusApproved ||
		o.Status == OvertimeStatusRejected ||
		o.Status == OvertimeStatusCanceled
}

func (o *OvertimeRequest) ApplyApproval(step string, by uuid.UUID, at time.Time) error {
	switch step {
	case OvertimeStepAdmin:
		if o.AdminApprovedByID != nil {
			return fmt.Errorf("%w: administrative approval already recorded on %s", workflow.ErrPermissionDenied, o.RequestNumber)
		}
		o.AdminApprovedByID = &by
		o.AdminApprovedAt = &at
	case OvertimeStepFactory:
		if o.FactoryApprovedByID != nil {
			return fmt.Errorf("%w: factory approval already recorded on %s", workflow.ErrPermissionDenied, o.RequestNumber)
		}
		o.FactoryApprovedByID = &by
		o.FactoryApprovedAt = &at
	case OvertimeStepManagement:
		if o.ManagementApprovedByID != nil {
			return fmt.Errorf("%w: management approval already recorded on %s", workflow.ErrPermissionDenied, o.RequestNumber)
		}
		o.ManagementApprovedByID = &by
		o.ManagementApprovedAt = &at
	default:
		return fmt.Errorf("%w: unknown approval step %q", workflow.ErrNotFound, step)
	}
	return nil
}

func (o *OvertimeRequest) ApplyCancel(by uuid.UUID, at time.Time, reason string) error {
	if o.CanceledByID != nil {
		return fmt.Errorf("%w: overtime request %s already canceled", workflow.ErrPermissionDenied, o.RequestNumber)
	}
	o.CanceledByID = &by
	o.CanceledAt = &at
	o.CancelReason = reason
	return nil
}

// CanEditBy is stamp-driven rather than purely status-driven: each party may
// edit until the next gate has signed off, and management may edit any
// non-terminal request.
func (o *OvertimeRequest) CanEditBy(actor workflow.Actor) bool {
	if o.IsTerminal() {
		return false
	}
	switch {
	case actor.ID == o.CreatedByID && o.AdminApprovedByID == nil:
		return true
	case actor.Is(workflow.RoleAdministrativeOfficer) && o.FactoryApprovedByID == nil:
		return true
	case actor.Is(workflow.RoleFactoryManager) && o.ManagementApprovedByID == nil:
		return true
	case actor.Is(workflow.RoleManagement):
		return true
	}
	return false
}

// CanCancelBy shares the edit predicate: whoever may still touch the request
// may withdraw it.
func (o *OvertimeRequest) CanCancelBy(actor workflow.Actor) bool {
	return o.CanEditBy(actor)
}

// CanRejectBy limits rejection to the approver roles while the request is
// still pending.
func (o *OvertimeRequest) CanRejectBy(actor workflow.Actor) bool {
	if o.IsTerminal() {
		return false
	}
	return actor.IsAny(workflow.RoleAdministrativeOfficer, workflow.RoleFactoryManager, workflow.RoleManagement)
}
