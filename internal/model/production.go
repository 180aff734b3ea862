package model

import (
	"fmt"
	"time"

	"backend/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Production request statuses
const (
	ProductionStatusDraft          workflow.Status = "draft"
	ProductionStatusPlanningSigned workflow.Status = "planning_signed"
	ProductionStatusFactorySigned  workflow.Status = "factory_signed"
	ProductionStatusCanceled       workflow.Status = "canceled"
)

// Production request approval steps
const (
	ProductionStepPlanning = "planning"
	ProductionStepFactory  = "factory"
)

// ProductionWorkflow is the two-signature chain for production requests:
// draft → planning_signed → factory_signed.
var ProductionWorkflow = &workflow.Definition{
	DocType:  "production_request",
	Prefix:   "PR",
	Initial:  ProductionStatusDraft,
	Canceled: ProductionStatusCanceled,
	Statuses: []workflow.Status{
		ProductionStatusDraft,
		ProductionStatusPlanningSigned,
		ProductionStatusFactorySigned,
		ProductionStatusCanceled,
	},
	Labels: map[workflow.Status]string{
		ProductionStatusDraft:          "Draft",
		ProductionStatusPlanningSigned: "Planning signed",
		ProductionStatusFactorySigned:  "Factory signed",
		ProductionStatusCanceled:       "Canceled",
	},
	Steps: []workflow.Step{
		{Name: ProductionStepPlanning, From: ProductionStatusDraft, To: ProductionStatusPlanningSigned,
			Roles: []workflow.Role{workflow.RoleFactoryPlanner, workflow.RoleManagement}},
		{Name: ProductionStepFactory, From: ProductionStatusPlanningSigned, To: ProductionStatusFactorySigned,
			Roles: []workflow.Role{workflow.RoleFactoryManager, workflow.RoleManagement}},
	},
}

// ProductionRequest asks the factory to produce goods, usually raised by the
// planning unit from approved sales orders.
type ProductionRequest struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestNumber string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"request_number"`
	Status        workflow.Status `gorm:"type:varchar(32);not null;default:'draft';index" json:"status"`
	CreatedByID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedBy     *User           `gorm:"foreignKey:CreatedByID" json:"creator,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	RequestDate   time.Time       `gorm:"type:date;not null" json:"request_date"`

	PlanningSignedByID *uuid.UUID `gorm:"type:uuid" json:"planning_signed_by"`
	PlanningSignedBy   *User      `gorm:"foreignKey:PlanningSignedByID" json:"-"`
	PlanningSignedAt   *time.Time `json:"planning_signed_at"`
	FactorySignedByID  *uuid.UUID `gorm:"type:uuid" json:"factory_signed_by"`
	FactorySignedBy    *User      `gorm:"foreignKey:FactorySignedByID" json:"-"`
	FactorySignedAt    *time.Time `json:"factory_signed_at"`

	CanceledByID *uuid.UUID `gorm:"type:uuid" json:"canceled_by"`
	CanceledBy   *User      `gorm:"foreignKey:CanceledByID" json:"-"`
	CanceledAt   *time.Time `json:"canceled_at"`
	CancelReason string     `gorm:"type:text" json:"cancel_reason"`

	Items []ProductionItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items"`
}

// ProductionItem is one product line on a production request.
type ProductionItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"request_id"`
	ProductName     string          `gorm:"type:varchar(200);not null" json:"product_name"`
	PackagingTypeID *uuid.UUID      `gorm:"type:uuid" json:"packaging_type_id"`
	PackagingType   *PackagingType  `gorm:"foreignKey:PackagingTypeID" json:"packaging_type,omitempty"`
	Quantity        decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	UnitID          *uuid.UUID      `gorm:"type:uuid" json:"unit_id"`
	Unit            *Unit           `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	CustomerName    string          `gorm:"type:varchar(200)" json:"customer_name"`
	Description     string          `gorm:"type:text" json:"description"`
}

func (p *ProductionRequest) DocType() string                { return ProductionWorkflow.DocType }
func (p *ProductionRequest) Number() string                 { return p.RequestNumber }
func (p *ProductionRequest) CurrentStatus() workflow.Status { return p.Status }
func (p *ProductionRequest) SetStatus(st workflow.Status)   { p.Status = st }
func (p *ProductionRequest) CreatorID() uuid.UUID           { return p.CreatedByID }

func (p *ProductionRequest) ApplyApproval(step string, by uuid.UUID, at time.Time) error {
	switch step {
	case ProductionStepPlanning:
		if p.PlanningSignedByID != nil {
			return fmt.Errorf("%w: planning signature already recorded on %s", workflow.ErrPermissionDenied, p.RequestNumber)
		}
		p.PlanningSignedByID = &by
		p.PlanningSignedAt = &at
	case ProductionStepFactory:
		if p.FactorySignedByID != nil {
			return fmt.Errorf("%w: factory signature already recorded on %s", workflow.ErrPermissionDenied, p.RequestNumber)
		}
		p.FactorySignedByID = &by
		p.FactorySignedAt = &at
	default:
		return fmt.Errorf("%w: unknown approval step %q", workflow.ErrNotFound, step)
	}
	return nil
}

func (p *ProductionRequest) ApplyCancel(by uuid.UUID, at time.Time, reason string) error {
	if p.CanceledByID != nil {
		return fmt.Errorf("%w: production request %s already canceled", workflow.ErrPermissionDenied, p.RequestNumber)
	}
	p.CanceledByID = &by
	p.CanceledAt = &at
	p.CancelReason = reason
	return nil
}

// CanEditBy: management and the factory manager edit freely; the planner
// edits only its own requests before the factory signs.
func (p *ProductionRequest) CanEditBy(actor workflow.Actor) bool {
	if p.Status == ProductionStatusCanceled {
		return false
	}
	switch {
	case actor.IsAny(workflow.RoleManagement, workflow.RoleFactoryManager):
		return true
	case actor.Is(workflow.RoleFactoryPlanner):
		return actor.ID == p.CreatedByID &&
			(p.Status == ProductionStatusDraft || p.Status == ProductionStatusPlanningSigned)
	}
	return false
}

// CanCancelBy: management always; the planner only for its own requests
// before the factory signature lands.
func (p *ProductionRequest) CanCancelBy(actor workflow.Actor) bool {
	if p.Status == ProductionStatusCanceled {
		return false
	}
	switch {
	case actor.Is(workflow.RoleManagement):
		return true
	case actor.Is(workflow.RoleFactoryPlanner):
		return actor.ID == p.CreatedByID &&
			(p.Status == ProductionStatusDraft || p.Status == ProductionStatusPlanningSigned)
	}
	return false
}
