package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/logging"
	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type OrderItemInput struct {
	ProductID        string          `json:"product_id"`
	ProductCode      string          `json:"product_code"`
	ProductName      string          `json:"product_name" binding:"required"`
	PackagingTypeID  string          `json:"packaging_type_id" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"`
	UnitID           string          `json:"unit_id" binding:"required"`
	BatchNumber      string          `json:"batch_number"`
	ShippingMethodID string          `json:"shipping_method_id" binding:"required"`
	Description      string          `json:"description"`
}

type OrderInput struct {
	OfficialType     string           `json:"official_type" binding:"required,oneof=official informal"`
	RequestTypeID    string           `json:"request_type_id" binding:"required"`
	CustomerCode     string           `json:"customer_code"`
	CustomerName     string           `json:"customer_name" binding:"required"`
	CustomerPhone    string           `json:"customer_phone" binding:"required"`
	RecipientAddress string           `json:"recipient_address" binding:"required"`
	OrderNotes       string           `json:"order_notes"`
	Items            []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

type ApprovalStamp struct {
	By *uuid.UUID `json:"by"`
	At *time.Time `json:"at"`
}

type OrderResponse struct {
	ID           string                   `json:"id"`
	OrderNumber  string                   `json:"order_number"`
	Status       string                   `json:"status"`
	StatusLabel  string                   `json:"status_label"`
	CreatedBy    string                   `json:"created_by"`
	CreatorName  string                   `json:"creator_name,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	OrderDate    string                   `json:"order_date"`
	Order        *model.CustomerOrder     `json:"document"`
	Approvals    map[string]ApprovalStamp `json:"approvals"`
	CanEdit      bool                     `json:"can_edit"`
	CanCancel    bool                     `json:"can_cancel"`
	NextSteps    []string                 `json:"next_steps"`
}

// --- Interface ---

type OrderService interface {
	Create(ctx context.Context, actor workflow.Actor, input OrderInput) (OrderResponse, error)
	Update(ctx context.Context, actor workflow.Actor, id string, input OrderInput) (OrderResponse, error)
	Approve(ctx context.Context, actor workflow.Actor, id string, step string) (OrderResponse, error)
	Cancel(ctx context.Context, actor workflow.Actor, id string, reason string) (OrderResponse, error)
	Get(ctx context.Context, actor workflow.Actor, id string) (OrderResponse, error)
	List(ctx context.Context, actor workflow.Actor, page, limit int) ([]OrderResponse, int64, error)
}

type orderService struct {
	orders    repository.OrderRepository
	audits    repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
}

func NewOrderService(
	orders repository.OrderRepository,
	audits repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) OrderService {
	return &orderService{orders: orders, audits: audits, txManager: txManager, hub: hub}
}

var orderLog = logging.ForModule("orders")

// --- Implementation ---

func (s *orderService) Create(ctx context.Context, actor workflow.Actor, input OrderInput) (OrderResponse, error) {
	items, err := buildOrderItems(input.Items)
	if err != nil {
		return OrderResponse{}, err
	}
	requestTypeID, err := uuid.Parse(input.RequestTypeID)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("%w: invalid request_type_id", workflow.ErrValidationFailed)
	}

	now := time.Now()
	order := &model.CustomerOrder{
		Status:           model.OrderWorkflow.Initial,
		CreatedByID:      actor.ID,
		OrderDate:        now,
		OfficialType:     input.OfficialType,
		RequestTypeID:    requestTypeID,
		CustomerCode:     input.CustomerCode,
		CustomerName:     input.CustomerName,
		CustomerPhone:    input.CustomerPhone,
		RecipientAddress: input.RecipientAddress,
		OrderNotes:       input.OrderNotes,
		Items:            items,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, numErr := s.orders.NextNumber(txCtx, now)
		if numErr != nil {
			return numErr
		}
		order.OrderNumber = number
		if createErr := s.orders.Create(txCtx, order); createErr != nil {
			return createErr
		}
		return s.logAudit(txCtx, actor, model.ActionCreateDocument, order, map[string]interface{}{
			"customer_name": order.CustomerName,
			"item_count":    len(order.Items),
		})
	})
	if err != nil {
		return OrderResponse{}, err
	}

	orderLog.WithField("number", order.OrderNumber).Info("sales order created")
	s.hub.NotifyTaskUpdate(order.DocType(), order.OrderNumber, string(order.Status))
	return s.Get(ctx, actor, order.ID.String())
}

func (s *orderService) Update(ctx context.Context, actor workflow.Actor, id string, input OrderInput) (OrderResponse, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("%w: invalid order id", workflow.ErrNotFound)
	}
	items, err := buildOrderItems(input.Items)
	if err != nil {
		return OrderResponse{}, err
	}
	requestTypeID, err := uuid.Parse(input.RequestTypeID)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("%w: invalid request_type_id", workflow.ErrValidationFailed)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, findErr := s.orders.FindByIDForUpdate(txCtx, orderID)
		if findErr != nil {
			return findErr
		}
		if !order.CanEditBy(actor) {
			return fmt.Errorf("%w: order %s is not editable in status %s",
				workflow.ErrPermissionDenied, order.OrderNumber, order.Status)
		}

		order.OfficialType = input.OfficialType
		order.RequestTypeID = requestTypeID
		order.CustomerCode = input.CustomerCode
		order.CustomerName = input.CustomerName
		order.CustomerPhone = input.CustomerPhone
		order.RecipientAddress = input.RecipientAddress
		order.OrderNotes = input.OrderNotes

		if saveErr := s.orders.Save(txCtx, order); saveErr != nil {
			return saveErr
		}
		if itemsErr := s.orders.ReplaceItems(txCtx, order.ID, items); itemsErr != nil {
			return itemsErr
		}
		return s.logAudit(txCtx, actor, model.ActionUpdateDocument, order, map[string]interface{}{
			"item_count": len(items),
		})
	})
	if err != nil {
		return OrderResponse{}, err
	}

	return s.Get(ctx, actor, id)
}

func (s *orderService) Approve(ctx context.Context, actor workflow.Actor, id string, step string) (OrderResponse, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("%w: invalid order id", workflow.ErrNotFound)
	}

	var number, status string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, findErr := s.orders.FindByIDForUpdate(txCtx, orderID)
		if findErr != nil {
			return findErr
		}
		if trErr := workflow.Transition(model.OrderWorkflow, order, step, actor, time.Now()); trErr != nil {
			return trErr
		}
		if saveErr := s.orders.Save(txCtx, order); saveErr != nil {
			return saveErr
		}
		number, status = order.OrderNumber, string(order.Status)
		return s.logAudit(txCtx, actor, model.ActionApproveStep, order, map[string]interface{}{
			"step":       step,
			"new_status": order.Status,
		})
	})
	if err != nil {
		return OrderResponse{}, err
	}

	orderLog.WithField("number", number).WithField("step", step).Info("sales order approved")
	s.hub.NotifyTaskUpdate(model.OrderWorkflow.DocType, number, status)
	return s.Get(ctx, actor, id)
}

func (s *orderService) Cancel(ctx context.Context, actor workflow.Actor, id string, reason string) (OrderResponse, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("%w: invalid order id", workflow.ErrNotFound)
	}

	var number string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, findErr := s.orders.FindByIDForUpdate(txCtx, orderID)
		if findErr != nil {
			return findErr
		}
		if cancelErr := workflow.Cancel(model.OrderWorkflow, order, actor, time.Now(), reason); cancelErr != nil {
			return cancelErr
		}
		if saveErr := s.orders.Save(txCtx, order); saveErr != nil {
			return saveErr
		}
		number = order.OrderNumber
		return s.logAudit(txCtx, actor, model.ActionCancelDocument, order, map[string]interface{}{
			"reason": reason,
		})
	})
	if err != nil {
		return OrderResponse{}, err
	}

	orderLog.WithField("number", number).Info("sales order canceled")
	s.hub.NotifyTaskUpdate(model.OrderWorkflow.DocType, number, string(model.OrderStatusCanceled))
	return s.Get(ctx, actor, id)
}

func (s *orderService) Get(ctx context.Context, actor workflow.Actor, id string) (OrderResponse, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("%w: invalid order id", workflow.ErrNotFound)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return OrderResponse{}, err
	}
	return toOrderResponse(order, actor), nil
}

// List shows every order to the roles involved in the chain and only the
// caller's own orders to everyone else.
func (s *orderService) List(ctx context.Context, actor workflow.Actor, page, limit int) ([]OrderResponse, int64, error) {
	filter := repository.DocumentFilter{Page: page, Limit: limit}
	if !actor.IsAny(workflow.RoleManagement, workflow.RoleSalesManager, workflow.RoleFinanceManager) {
		filter.CreatedBy = &actor.ID
	}
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i], actor))
	}
	return out, total, nil
}

// --- Helpers ---

func buildOrderItems(inputs []OrderItemInput) ([]model.OrderItem, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", workflow.ErrValidationFailed)
	}
	items := make([]model.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: item quantity must be positive", workflow.ErrValidationFailed)
		}
		packagingID, err := uuid.Parse(in.PackagingTypeID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid packaging_type_id", workflow.ErrValidationFailed)
		}
		unitID, err := uuid.Parse(in.UnitID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid unit_id", workflow.ErrValidationFailed)
		}
		shippingID, err := uuid.Parse(in.ShippingMethodID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid shipping_method_id", workflow.ErrValidationFailed)
		}
		item := model.OrderItem{
			ProductCode:      in.ProductCode,
			ProductName:      in.ProductName,
			PackagingTypeID:  packagingID,
			Quantity:         in.Quantity,
			UnitID:           unitID,
			BatchNumber:      in.BatchNumber,
			ShippingMethodID: shippingID,
			Description:      in.Description,
		}
		if in.ProductID != "" {
			pid, err := uuid.Parse(in.ProductID)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid product_id", workflow.ErrValidationFailed)
			}
			item.ProductID = &pid
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *orderService) logAudit(ctx context.Context, actor workflow.Actor, action string, order *model.CustomerOrder, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	uid := actor.ID
	return s.audits.Log(ctx, &model.AuditLog{
		UserID:     &uid,
		Action:     action,
		DocType:    order.DocType(),
		EntityID:   order.ID.String(),
		EntityName: order.OrderNumber,
		Details:    string(payload),
	})
}

func toOrderResponse(order *model.CustomerOrder, actor workflow.Actor) OrderResponse {
	resp := OrderResponse{
		ID:          order.ID.String(),
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		StatusLabel: model.OrderWorkflow.Label(order.Status),
		CreatedBy:   order.CreatedByID.String(),
		CreatedAt:   order.CreatedAt,
		OrderDate:   order.OrderDate.Format("2006-01-02"),
		Order:       order,
		Approvals: map[string]ApprovalStamp{
			model.OrderStepSales:      {By: order.SalesApprovedByID, At: order.SalesApprovedAt},
			model.OrderStepFinance:    {By: order.FinanceApprovedByID, At: order.FinanceApprovedAt},
			model.OrderStepManagement: {By: order.ManagementApprovedByID, At: order.ManagementApprovedAt},
		},
		CanEdit:   order.CanEditBy(actor),
		CanCancel: order.CanCancelBy(actor),
		NextSteps: availableSteps(model.OrderWorkflow, order, actor),
	}
	if order.CreatedBy != nil {
		resp.CreatorName = order.CreatedBy.Username
	}
	return resp
}

// availableSteps lists the step names the actor could fire right now,
// ignoring the password re-verification requirement (the UI re-prompts for
// the password at click time).
func availableSteps(def *workflow.Definition, doc workflow.Document, actor workflow.Actor) []string {
	steps := []string{}
	for _, step := range def.Steps {
		if doc.CurrentStatus() == step.From && step.Permits(actor, doc.CreatorID()) {
			steps = append(steps, step.Name)
		}
	}
	return steps
}
