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
)

type RequestItemInput struct {
	RequestTypeID string `json:"request_type_id" binding:"required"`
	CostCenterID  string `json:"cost_center_id" binding:"required"`
	Description   string `json:"description"`
}

type RequestInput struct {
	Items []RequestItemInput `json:"items" binding:"required,min=1,dive"`
}

type RequestResponse struct {
	ID            string                   `json:"id"`
	RequestNumber string                   `json:"request_number"`
	Status        string                   `json:"status"`
	StatusLabel   string                   `json:"status_label"`
	CreatedBy     string                   `json:"created_by"`
	CreatorName   string                   `json:"creator_name,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	IsCompleted   bool                     `json:"is_completed"`
	Request       *model.Request           `json:"document"`
	Approvals     map[string]ApprovalStamp `json:"approvals"`
	CanEdit       bool                     `json:"can_edit"`
	CanCancel     bool                     `json:"can_cancel"`
	NextSteps     []string                 `json:"next_steps"`
}

type RequestService interface {
	Create(ctx context.Context, actor workflow.Actor, input RequestInput) (RequestResponse, error)
	Update(ctx context.Context, actor workflow.Actor, id string, input RequestInput) (RequestResponse, error)
	Approve(ctx context.Context, actor workflow.Actor, id string, step string) (RequestResponse, error)
	Cancel(ctx context.Context, actor workflow.Actor, id string, reason string) (RequestResponse, error)
	Complete(ctx context.Context, actor workflow.Actor, id string) (RequestResponse, error)
	Get(ctx context.Context, actor workflow.Actor, id string) (RequestResponse, error)
	List(ctx context.Context, actor workflow.Actor, page, limit int) ([]RequestResponse, int64, error)
}

type requestService struct {
	requests  repository.RequestRepository
	audits    repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
}

func NewRequestService(
	requests repository.RequestRepository,
	audits repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) RequestService {
	return &requestService{requests: requests, audits: audits, txManager: txManager, hub: hub}
}

var requestLog = logging.ForModule("requests")

func (s *requestService) Create(ctx context.Context, actor workflow.Actor, input RequestInput) (RequestResponse, error) {
	items, err := buildRequestItems(input.Items)
	if err != nil {
		return RequestResponse{}, err
	}

	req := &model.Request{
		Status:      model.RequestWorkflow.Initial,
		CreatedByID: actor.ID,
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
		return RequestResponse{}, err
	}

	requestLog.WithField("number", req.RequestNumber).Info("general request created")
	s.hub.NotifyTaskUpdate(req.DocType(), req.RequestNumber, string(req.Status))
	return s.Get(ctx, actor, req.ID.String())
}

func (s *requestService) Update(ctx context.Context, actor workflow.Actor, id string, input RequestInput) (RequestResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, fmt.Errorf("%w: invalid request id", workflow.ErrNotFound)
	}
	items, err := buildRequestItems(input.Items)
	if err != nil {
		return RequestResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return findErr
		}
		if !req.CanEditBy(actor) {
			return fmt.Errorf("%w: request %s is not editable in status %s",
				workflow.ErrPermissionDenied, req.RequestNumber, req.Status)
		}
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
		return RequestResponse{}, err
	}
	return s.Get(ctx, actor, id)
}

func (s *requestService) Approve(ctx context.Context, actor workflow.Actor, id string, step string) (RequestResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, fmt.Errorf("%w: invalid request id", workflow.ErrNotFound)
	}

	var number, status string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return findErr
		}
		if trErr := workflow.Transition(model.RequestWorkflow, req, step, actor, time.Now()); trErr != nil {
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
		return RequestResponse{}, err
	}

	requestLog.WithField("number", number).WithField("step", step).Info("general request approved")
	s.hub.NotifyTaskUpdate(model.RequestWorkflow.DocType, number, status)
	return s.Get(ctx, actor, id)
}

func (s *requestService) Cancel(ctx context.Context, actor workflow.Actor, id string, reason string) (RequestResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, fmt.Errorf("%w: invalid request id", workflow.ErrNotFound)
	}

	var number string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return findErr
		}
		if cancelErr := workflow.Cancel(model.RequestWorkflow, req, actor, time.Now(), reason); cancelErr != nil {
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
		return RequestResponse{}, err
	}

	requestLog.WithField("number", number).Info("general request canceled")
	s.hub.NotifyTaskUpdate(model.RequestWorkflow.DocType, number, string(model.RequestStatusCanceled))
	return s.Get(ctx, actor, id)
}

// Complete flags a fully approved request as executed. Management only.
func (s *requestService) Complete(ctx context.Context, actor workflow.Actor, id string) (RequestResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, fmt.Errorf("%w: invalid request id", workflow.ErrNotFound)
	}
	if !actor.Is(workflow.RoleManagement) {
		return RequestResponse{}, fmt.Errorf("%w: only management marks requests complete", workflow.ErrPermissionDenied)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return findErr
		}
		if req.Status != model.RequestStatusManagementApproved {
			return fmt.Errorf("%w: request %s must be fully approved before completion",
				workflow.ErrValidationFailed, req.RequestNumber)
		}
		if req.IsCompleted {
			return fmt.Errorf("%w: request %s is already complete", workflow.ErrValidationFailed, req.RequestNumber)
		}
		req.IsCompleted = true
		if saveErr := s.requests.Save(txCtx, req); saveErr != nil {
			return saveErr
		}
		return s.logAudit(txCtx, actor, model.ActionCompleteDocument, req, nil)
	})
	if err != nil {
		return RequestResponse{}, err
	}
	return s.Get(ctx, actor, id)
}

func (s *requestService) Get(ctx context.Context, actor workflow.Actor, id string) (RequestResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, fmt.Errorf("%w: invalid request id", workflow.ErrNotFound)
	}
	req, err := s.requests.FindByID(ctx, reqID)
	if err != nil {
		return RequestResponse{}, err
	}
	return toRequestResponse(req, actor), nil
}

// List: the approver roles see every submitted request plus their own drafts;
// everyone else sees only what they created.
func (s *requestService) List(ctx context.Context, actor workflow.Actor, page, limit int) ([]RequestResponse, int64, error) {
	var (
		requests []model.Request
		total    int64
		err      error
	)
	if actor.IsAny(workflow.RoleManagement, workflow.RoleFactoryManager) {
		requests, total, err = s.requests.ListVisible(ctx, actor.ID, page, limit)
	} else {
		requests, total, err = s.requests.List(ctx, repository.DocumentFilter{
			CreatedBy: &actor.ID, Page: page, Limit: limit,
		})
	}
	if err != nil {
		return nil, 0, err
	}
	out := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, toRequestResponse(&requests[i], actor))
	}
	return out, total, nil
}

func buildRequestItems(inputs []RequestItemInput) ([]model.RequestItem, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", workflow.ErrValidationFailed)
	}
	items := make([]model.RequestItem, 0, len(inputs))
	for _, in := range inputs {
		typeID, err := uuid.Parse(in.RequestTypeID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid request_type_id", workflow.ErrValidationFailed)
		}
		costID, err := uuid.Parse(in.CostCenterID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid cost_center_id", workflow.ErrValidationFailed)
		}
		items = append(items, model.RequestItem{
			RequestTypeID: typeID,
			CostCenterID:  costID,
			Description:   in.Description,
		})
	}
	return items, nil
}

func (s *requestService) logAudit(ctx context.Context, actor workflow.Actor, action string, req *model.Request, details map[string]interface{}) error {
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

func toRequestResponse(req *model.Request, actor workflow.Actor) RequestResponse {
	resp := RequestResponse{
		ID:            req.ID.String(),
		RequestNumber: req.RequestNumber,
		Status:        string(req.Status),
		StatusLabel:   model.RequestWorkflow.Label(req.Status),
		CreatedBy:     req.CreatedByID.String(),
		CreatedAt:     req.CreatedAt,
		IsCompleted:   req.IsCompleted,
		Request:       req,
		Approvals: map[string]ApprovalStamp{
			model.RequestStepCreator:    {By: req.CreatorApprovedByID, At: req.CreatorApprovedAt},
			model.RequestStepFactory:    {By: req.FactoryApprovedByID, At: req.FactoryApprovedAt},
			model.RequestStepManagement: {By: req.ManagementApprovedByID, At: req.ManagementApprovedAt},
		},
		CanEdit:   req.CanEditBy(actor),
		CanCancel: req.CanCancelBy(actor),
		NextSteps: availableSteps(model.RequestWorkflow, req, actor),
	}
	if req.CreatedBy != nil {
		resp.CreatorName = req.CreatedBy.Username
	}
	return resp
}
