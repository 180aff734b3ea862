package model

import (
	"fmt"
	"time"

	"backend/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfficialType enum constants
const (
	OfficialTypeOfficial = "official"
	OfficialTypeInformal = "informal"
)

// Sales order statuses
const (
	OrderStatusDraft              workflow.Status = "draft"
	OrderStatusSalesApproved      workflow.Status = "sales_approved"
	OrderStatusFinanceApproved    workflow.Status = "finance_approved"
	OrderStatusManagementApproved workflow.Status = "management_approved"
	OrderStatusCanceled           workflow.Status = "canceled"
)

// Sales order approval steps
const (
	OrderStepSales      = "sales"
	OrderStepFinance    = "finance"
	OrderStepManagement = "management"
)

// OrderWorkflow is the approval chain for customer orders:
// draft → sales_approved → finance_approved → management_approved.
var OrderWorkflow = &workflow.Definition{
	DocType:  "sales_order",
	Prefix:   "ORD",
	Initial:  OrderStatusDraft,
	Canceled: OrderStatusCanceled,
	Statuses: []workflow.Status{
		OrderStatusDraft,
		OrderStatusSalesApproved,
		OrderStatusFinanceApproved,
		OrderStatusManagementApproved,
		OrderStatusCanceled,
	},
	Labels: map[workflow.Status]string{
		OrderStatusDraft:              "Draft",
		OrderStatusSalesApproved:      "Sales approved",
		OrderStatusFinanceApproved:    "Finance approved",
		OrderStatusManagementApproved: "Management approved",
		OrderStatusCanceled:           "Canceled",
	},
	Steps: []workflow.Step{
		{Name: OrderStepSales, From: OrderStatusDraft, To: OrderStatusSalesApproved,
			Roles: []workflow.Role{workflow.RoleSalesManager, workflow.RoleManagement}},
		{Name: OrderStepFinance, From: OrderStatusSalesApproved, To: OrderStatusFinanceApproved,
			Roles: []workflow.Role{workflow.RoleFinanceManager, workflow.RoleManagement}},
		{Name: OrderStepManagement, From: OrderStatusFinanceApproved, To: OrderStatusManagementApproved,
			Roles: []workflow.Role{workflow.RoleManagement}},
	},
}

// CustomerOrder is a sales order submitted by the sales team. Customer data
// is snapshotted onto the order so later directory edits do not rewrite
// history.
type CustomerOrder struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"order_number"`
	Status      workflow.Status `gorm:"type:varchar(32);not null;default:'draft';index" json:"status"`
	CreatedByID uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedBy   *User           `gorm:"foreignKey:CreatedByID" json:"creator,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	OrderDate   time.Time       `gorm:"type:date;not null" json:"order_date"`

	OfficialType     string     `gorm:"type:varchar(10);not null;default:'official'" json:"official_type"`
	RequestTypeID    uuid.UUID  `gorm:"type:uuid;not null" json:"request_type_id"`
	RequestType      *RequestTypeOption `gorm:"foreignKey:RequestTypeID" json:"request_type,omitempty"`
	CustomerCode     string     `gorm:"type:varchar(50)" json:"customer_code"`
	CustomerName     string     `gorm:"type:varchar(200);not null" json:"customer_name"`
	CustomerPhone    string     `gorm:"type:varchar(50);not null" json:"customer_phone"`
	RecipientAddress string     `gorm:"type:text;not null" json:"recipient_address"`
	OrderNotes       string     `gorm:"type:text" json:"order_notes"`

	SalesApprovedByID      *uuid.UUID `gorm:"type:uuid" json:"sales_approved_by"`
	SalesApprovedBy        *User      `gorm:"foreignKey:SalesApprovedByID" json:"-"`
	SalesApprovedAt        *time.Time `json:"sales_approved_at"`
	FinanceApprovedByID    *uuid.UUID `gorm:"type:uuid" json:"finance_approved_by"`
	FinanceApprovedBy      *User      `gorm:"foreignKey:FinanceApprovedByID" json:"-"`
	FinanceApprovedAt      *time.Time `json:"finance_approved_at"`
	ManagementApprovedByID *uuid.UUID `gorm:"type:uuid" json:"management_approved_by"`
	ManagementApprovedBy   *User      `gorm:"foreignKey:ManagementApprovedByID" json:"-"`
	ManagementApprovedAt   *time.Time `json:"management_approved_at"`

	CanceledByID *uuid.UUID `gorm:"type:uuid" json:"canceled_by"`
	CanceledBy   *User      `gorm:"foreignKey:CanceledByID" json:"-"`
	CanceledAt   *time.Time `json:"canceled_at"`
	CancelReason string     `gorm:"type:text" json:"cancel_reason"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is a line item owned exclusively by its order.
type OrderItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID        *uuid.UUID      `gorm:"type:uuid" json:"product_id"`
	Product          *Product        `gorm:"foreignKey:ProductID" json:"-"`
	ProductCode      string          `gorm:"type:varchar(50)" json:"product_code"`
	ProductName      string          `gorm:"type:varchar(200);not null" json:"product_name"`
	PackagingTypeID  uuid.UUID       `gorm:"type:uuid;not null" json:"packaging_type_id"`
	PackagingType    *PackagingType  `gorm:"foreignKey:PackagingTypeID" json:"packaging_type,omitempty"`
	Quantity         decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	UnitID           uuid.UUID       `gorm:"type:uuid;not null" json:"unit_id"`
	Unit             *Unit           `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	BatchNumber      string          `gorm:"type:varchar(100)" json:"batch_number"`
	ShippingMethodID uuid.UUID       `gorm:"type:uuid;not null" json:"shipping_method_id"`
	ShippingMethod   *ShippingMethod `gorm:"foreignKey:ShippingMethodID" json:"shipping_method,omitempty"`
	Description      string          `gorm:"type:varchar(500)" json:"description"`
}

func (o *CustomerOrder) DocType() string                { return OrderWorkflow.DocType }
func (o *CustomerOrder) Number() string                 { return o.OrderNumber }
func (o *CustomerOrder) CurrentStatus() workflow.Status { return o.Status }
func (o *CustomerOrder) SetStatus(st workflow.Status)   { o.Status = st }
func (o *CustomerOrder) CreatorID() uuid.UUID           { return o.CreatedByID }

// ApplyApproval stamps the step's approver and timestamp. Stamps are
// write-once.
func (o *CustomerOrder) ApplyApproval(step string, by uuid.UUID, at time.Time) error {
	switch step {
	case OrderStepSales:
		if o.SalesApprovedByID != nil {
			return fmt.Errorf("%w: sales approval already recorded on %s", workflow.ErrPermissionDenied, o.OrderNumber)
		}
		o.SalesApprovedByID = &by
		o.SalesApprovedAt = &at
	case OrderStepFinance:
		if o.FinanceApprovedByID != nil {
			return fmt.Errorf("%w: finance approval already recorded on %s", workflow.ErrPermissionDenied, o.OrderNumber)
		}
		o.FinanceApprovedByID = &by
		o.FinanceApprovedAt = &at
	case OrderStepManagement:
		if o.ManagementApprovedByID != nil {
			return fmt.Errorf("%w: management approval already recorded on %s", workflow.ErrPermissionDenied, o.OrderNumber)
		}
		o.ManagementApprovedByID = &by
		o.ManagementApprovedAt = &at
	default:
		return fmt.Errorf("%w: unknown approval step %q", workflow.ErrNotFound, step)
	}
	return nil
}

// ApplyCancel records the cancellation triple, write-once.
func (o *CustomerOrder) ApplyCancel(by uuid.UUID, at time.Time, reason string) error {
	if o.CanceledByID != nil {
		return fmt.Errorf("%w: order %s already canceled", workflow.ErrPermissionDenied, o.OrderNumber)
	}
	o.CanceledByID = &by
	o.CanceledAt = &at
	o.CancelReason = reason
	return nil
}

// CanEditBy implements the order edit rule: management edits any non-canceled
// order; the sales manager edits up to and including the sales-approved
// status; the finance manager edits the two statuses it gatekeeps.
func (o *CustomerOrder) CanEditBy(actor workflow.Actor) bool {
	if o.Status == OrderStatusCanceled {
		return false
	}
	switch {
	case actor.Is(workflow.RoleManagement):
		return true
	case actor.Is(workflow.RoleSalesManager):
		return o.Status == OrderStatusDraft || o.Status == OrderStatusSalesApproved
	case actor.Is(workflow.RoleFinanceManager):
		return o.Status == OrderStatusSalesApproved || o.Status == OrderStatusFinanceApproved
	}
	return false
}

// CanCancelBy follows the same branches as editing: whoever may edit the
// order may also cancel it.
// TODO: product owner to confirm whether finance_manager should keep the
// ability to cancel sales-approved orders or only management and the sales
// manager should.
func (o *CustomerOrder) CanCancelBy(actor workflow.Actor) bool {
	return o.CanEditBy(actor)
}
