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

type ProductionItemInput struct {
	ProductName     string          `json:"product_name" binding:"required"`
	PackagingTypeID string          `json:"packaging_type_id"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitID          string          `json:"unit_id"`
	CustomerName    string          `json:"customer_name"`
	Description     string          `json:"description"`
}

type ProductionInput struct {
	RequestDate string                `json:"request_date" binding:"required"`
	Items       []ProductionItemInput `json:"items" binding:"required,min=1,dive"`
}

type ProductionResponse struct {
	ID            string                   `json:"id"`
	RequestNumber string                   `json:"request_number"`
	Status        string                   `json:"status"`
	StatusLabel   string                   `json:"status_label"`
	CreatedBy     string                   `json:"created_by"`
	CreatorName   string                   `json:"creator_name,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	RequestDate   string                   `json:"request_date"`
	Request       *model.ProductionRequest `json:"document"`
	Approvals     map[string]ApprovalStamp `json:"approvals"`
	CanEdit       bool                     `json:"can_edit"`
	CanCancel     bool                     `json:"can_cancel"`
	NextSteps     []string                 `json:"next_steps"`
}

type ProductionService interface {
	Create(ctx context.Context, actor workflow.Actor, input ProductionInput) (ProductionResponse, error)
	Update(ctx context.Context, actor workflow.Actor, id string, input ProductionInput) (ProductionResponse, error)
	Approve(ctx context.Context, actor workflow.Actor, id string, step string) (ProductionResponse, error)
	Cancel(ctx context.Context, actor workflow.Actor, id string, reason string) (ProductionResponse, error)
	Get(ctx context.Context, actor workflow.Actor, id string) (ProductionResponse, error)
	List(ctx context.Context, actor workflow.Actor, page, limit int) ([]ProductionResponse, int64, error)
}

type productionService struct {
	requests  repository.ProductionRepository
	audits    repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
}

func NewProductionService(
	requests repository.ProductionRepository,
	audits repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) ProductionService {
	return &productionService{requests: requests, audits: audits, txManager: txManager, hub: hub}
}

var productionLog = logging.ForModule("production")

func (s *productionService) Create(ctx context.Context, actor workflow.Actor, input ProductionInput) (ProductionResponse, error) {
	items, err := buildProductionItems(input.Items)
	if err != nil {
		return ProductionResponse{}, err
	}
	requestDate, err := time.Parse("2006-01-02", input.RequestDate)
	if err != nil {
		return ProductionResponse{}, fmt.Errorf("%w: request_date must be YYYY-MM-DD", workflow.ErrValidationFailed)
	}

	req := &model.ProductionRequest{
		Status:      model.ProductionWorkflow.Initial,
		CreatedByID: actor.ID,
		RequestDate: requestDate,
		Items:       items,
	}

	now := time.Now()
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, numErr := s.requests.NextNumber(txCtx, now)
		if numErr != nil {
			return numErr
		}
		req.RequestNumber = number
		if createErr := s.requests.Create(txCtx, req); createErr != nil {
			return createErr
		}
		return s.logAudit(txCtx, actor, model.ActionCreateDocument, req, map[string]interface{}{
			"item_count": len(req.Items),
		})
	})
	if err != nil {
		return ProductionResponse{}, err
	}

	productionLog.WithField("number", req.RequestNumber).Info("production request created")
	s.hub.NotifyTaskUpdate(req.DocType(), req.RequestNumber, string(req.Status))
	return s.Get(ctx, actor, req.ID.String())
}

func (s *productionService) Update(ctx context.Context, actor workflow.Actor, id string, input ProductionInput) (ProductionResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return ProductionResponse{}, fmt.Errorf("%w: invalid request id", workflow.ErrNotFound)
	}
	items, err := buildProductionItems(input.Items)
	if err != nil {
		return ProductionResponse{}, err
	}
	requestDate, err := time.Parse("2006-01-02", input.RequestDate)
	if err != nil {
		return ProductionResponse{}, fmt.Errorf("%w: request_date must be YYYY-MM-DD", workflow.ErrValidationFailed)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return findErr
		}
		if !req.CanEditBy(actor) {
			return fmt.Errorf("%w: production request %s is not editable in status %s",
				workflow.ErrPermissionDenied, req.RequestNumber, req.Status)
		}

		req.RequestDate = requestDate
		if saveErr := s.requests.Save(txCtx, req); saveErr != nil {
			return saveErr
		}
		if itemsErr := s.requests.ReplaceItems(txCtx, req.ID, items); itemsErr != nil {
			return itemsErr
		}
		return s.logAudit(txCtx, actor, model.ActionUpdateDocument, req, map[string]interface{}{
			"item_count": len(items),
		})
	})
	if err != nil {
		return ProductionResponse{}, err
	}
	return s.Get(ctx, actor, id)
}

func (s *productionService) Approve(ctx context.Context, actor workflow.Actor, id string, step string) (ProductionResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return ProductionResponse{}, fmt.Errorf("%w: invalid request id", workflow.ErrNotFound)
	}

	var number, status string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return findErr
		}
		if trErr := workflow.Transition(model.ProductionWorkflow, req, step, actor, time.Now()); trErr != nil {
			return trErr
		}
		if saveErr := s.requests.Save(txCtx, req); saveErr != nil {
			return saveErr
		}
		number, status = req.RequestNumber, string(req.Status)
		return s.logAudit(txCtx, actor, model.ActionApproveStep, req, map[string]interface{}{
			"step":       step,
			"new_status": req.Status,
		})
	})
	if err != nil {
		return ProductionResponse{}, err
	}

	productionLog.WithField("number", number).WithField("step", step).Info("production request signed")
	s.hub.NotifyTaskUpdate(model.ProductionWorkflow.DocType, number, status)
	return s.Get(ctx, actor, id)
}

func (s *productionService) Cancel(ctx context.Context, actor workflow.Actor, id string, reason string) (ProductionResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return ProductionResponse{}, fmt.Errorf("%w: invalid request id", workflow.ErrNotFound)
	}

	var number string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return findErr
		}
		if cancelErr := workflow.Cancel(model.ProductionWorkflow, req, actor, time.Now(), reason); cancelErr != nil {
			return cancelErr
		}
		if saveErr := s.requests.Save(txCtx, req); saveErr != nil {
			return saveErr
		}
		number = req.RequestNumber
		return s.logAudit(txCtx, actor, model.ActionCancelDocument, req, map[string]interface{}{
			"reason": reason,
		})
	})
	if err != nil {
		return ProductionResponse{}, err
	}

	productionLog.WithField("number", number).Info("production request canceled")
	s.hub.NotifyTaskUpdate(model.ProductionWorkflow.DocType, number, string(model.ProductionStatusCanceled))
	return s.Get(ctx, actor, id)
}

func (s *productionService) Get(ctx context.Context, actor workflow.Actor, id string) (ProductionResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return ProductionResponse{}, fmt.Errorf("%w: invalid request id", workflow.ErrNotFound)
	}
	req, err := s.requests.FindByID(ctx, reqID)
	if err != nil {
		return ProductionResponse{}, err
	}
	return toProductionResponse(req, actor), nil
}

// List: management and the factory manager see everything, the planner sees
// only requests it raised.
func (s *productionService) List(ctx context.Context, actor workflow.Actor, page, limit int) ([]ProductionResponse, int64, error) {
	filter := repository.DocumentFilter{Page: page, Limit: limit}
	if !actor.IsAny(workflow.RoleManagement, workflow.RoleFactoryManager) {
		filter.CreatedBy = &actor.ID
	}
	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProductionResponse, 0, len(requests))
	for i := range requests {
		out = append(out, toProductionResponse(&requests[i], actor))
	}
	return out, total, nil
}

func buildProductionItems(inputs []ProductionItemInput) ([]model.ProductionItem, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", workflow.ErrValidationFailed)
	}
	items := make([]model.ProductionItem, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: item quantity must be positive", workflow.ErrValidationFailed)
		}
		item := model.ProductionItem{
			ProductName:  in.ProductName,
			Quantity:     in.Quantity,
			CustomerName: in.CustomerName,
			Description:  in.Description,
		}
		if in.PackagingTypeID != "" {
			pid, err := uuid.Parse(in.PackagingTypeID)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid packaging_type_id", workflow.ErrValidationFailed)
			}
			item.PackagingTypeID = &pid
		}
		if in.UnitID != "" {
			uid, err := uuid.Parse(in.UnitID)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid unit_id", workflow.ErrValidationFailed)
			}
			item.UnitID = &uid
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *productionService) logAudit(ctx context.Context, actor workflow.Actor, action string, req *model.ProductionRequest, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	uid := actor.ID
	return s.audits.Log(ctx, &model.AuditLog{
		UserID:     &uid,
		Action:     action,
		DocType:    req.DocType(),
		EntityID:   req.ID.String(),
		EntityName: req.RequestNumber,
		Details:    string(payload),
	})
}

func toProductionResponse(req *model.ProductionRequest, actor workflow.Actor) ProductionResponse {
	resp := ProductionResponse{
		ID:            req.ID.String(),
		RequestNumber: req.RequestNumber,
		Status:        string(req.Status),
		StatusLabel:   model.ProductionWorkflow.Label(req.Status),
		CreatedBy:     req.CreatedByID.String(),
		CreatedAt:     req.CreatedAt,
		RequestDate:   req.RequestDate.Format("2006-01-02"),
		Request:       req,
		Approvals: map[string]ApprovalStamp{
			model.ProductionStepPlanning: {By: req.PlanningSignedByID, At: req.PlanningSignedAt},
			model.ProductionStepFactory:  {By: req.FactorySignedByID, At: req.FactorySignedAt},
		},
		CanEdit:   req.CanEditBy(actor),
		CanCancel: req.CanCancelBy(actor),
		NextSteps: availableSteps(model.ProductionWorkflow, req, actor),
	}
	if req.CreatedBy != nil {
		resp.CreatorName = req.CreatedBy.Username
	}
	return resp
}
