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

type OvertimeItemInput struct {
	EmployeeName string `json:"employee_name" binding:"required"`
	DepartmentID string `json:"department_id" binding:"required"`
	StartTime    string `json:"start_time" binding:"required"`
	EndTime      string `json:"end_time" binding:"required"`
	Reason       string `json:"reason" binding:"required"`
}

type OvertimeInput struct {
	Items []OvertimeItemInput `json:"items" binding:"required,min=1,dive"`
}

type OvertimeResponse struct {
	ID            string                   `json:"id"`
	RequestNumber string                   `json:"request_number"`
	Status        string                   `json:"status"`
	StatusLabel   string                   `json:"status_label"`
	CreatedBy     string                   `json:"created_by"`
	CreatorName   string                   `json:"creator_name,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	TotalMinutes  int                      `json:"total_minutes"`
	Request       *model.OvertimeRequest   `json:"document"`
	Approvals     map[string]ApprovalStamp `json:"approvals"`
	CanEdit       bool                     `json:"can_edit"`
	CanCancel     bool                     `json:"can_cancel"`
	CanReject     bool                     `json:"can_reject"`
	NextSteps     []string                 `json:"next_steps"`
}

type OvertimeService interface {
	Create(ctx context.Context, actor workflow.Actor, input OvertimeInput) (OvertimeResponse, error)
	Update(ctx context.Context, actor workflow.Actor, id string, input OvertimeInput) (OvertimeResponse, error)
	Approve(ctx context.Context, actor workflow.Actor, id string, step string) (OvertimeResponse, error)
	Reject(ctx context.Context, actor workflow.Actor, id string, reason string) (OvertimeResponse, error)
	Cancel(ctx context.Context, actor workflow.Actor, id string, reason string) (OvertimeResponse, error)
	Get(ctx context.Context, actor workflow.Actor, id string) (OvertimeResponse, error)
	List(ctx context.Context, actor workflow.Actor, page, limit int) ([]OvertimeResponse, int64, error)
}

type overtimeService struct {
	requests  repository.OvertimeRepository
	audits    repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
}

func NewOvertimeService(
	requests repository.OvertimeRepository,
	audits repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) OvertimeService {
	return &overtimeService{requests: requests, audits: audits, txManager: txManager, hub: hub}
}

var overtimeLog = logging.ForModule("overtime")

func (s *overtimeService) Create(ctx context.Context, actor workflow.Actor, input OvertimeInput) (OvertimeResponse, error) {
	items, err := buildOvertimeItems(input.Items)
	if err != nil {
		return OvertimeResponse{}, err
	}

	req := &model.OvertimeRequest{
		Status:      model.OvertimeWorkflow.Initial,
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
		return OvertimeResponse{}, err
	}

	overtimeLog.WithField("number", req.RequestNumber).Info("overtime request created")
	s.hub.NotifyTaskUpdate(req.DocType(), req.RequestNumber, string(req.Status))
	return s.Get(ctx, actor, req.ID.String())
}

func (s *overtimeService) Update(ctx context.Context, actor workflow.Actor, id string, input OvertimeInput) (OvertimeResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return OvertimeResponse{}, fmt.Errorf("%w: invalid request id", workflow.ErrNotFound)
	}
	items, err := buildOvertimeItems(input.Items)
	if err != nil {
		return OvertimeResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return findErr
		}
		if !req.CanEditBy(actor) {
			return fmt.Errorf("%w: overtime request %s is not editable in status %s",
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
		return OvertimeResponse{}, err
	}
	return s.Get(ctx, actor, id)
}

func (s *overtimeService) Approve(ctx context.Context, actor workflow.Actor, id string, step string) (OvertimeResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return OvertimeResponse{}, fmt.Errorf("%w: invalid request id", workflow.ErrNotFound)
	}

	var number, status string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return findErr
		}
		if trErr := workflow.Transition(model.OvertimeWorkflow, req, step, actor, time.Now()); trErr != nil {
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
		return OvertimeResponse{}, err
	}

	overtimeLog.WithField("number", number).WithField("step", step).Info("overtime request approved")
	s.hub.NotifyTaskUpdate(model.OvertimeWorkflow.DocType, number, status)
	return s.Get(ctx, actor, id)
}

// Reject moves a pending request to the rejected terminal. The canceled_*
// columns record whichever terminal action ended the request, so the write-once
// guard in ApplyCancel covers rejection too.
func (s *overtimeService) Reject(ctx context.Context, actor workflow.Actor, id string, reason string) (OvertimeResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return OvertimeResponse{}, fmt.Errorf("%w: invalid request id", workflow.ErrNotFound)
	}
	if !actor.Reverified {
		return OvertimeResponse{}, fmt.Errorf("%w: password re-verification required", workflow.ErrPermissionDenied)
	}

	var number string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return findErr
		}
		if !req.CanRejectBy(actor) {
			return fmt.Errorf("%w: overtime request %s cannot be rejected by %s",
				workflow.ErrPermissionDenied, req.RequestNumber, actor.Role)
		}
		if applyErr := req.ApplyCancel(actor.ID, time.Now(), reason); applyErr != nil {
			return applyErr
		}
		req.SetStatus(model.OvertimeStatusRejected)
		if saveErr := s.requests.Save(txCtx, req); saveErr != nil {
			return saveErr
		}
		number = req.RequestNumber
		return s.logAudit(txCtx, actor, model.ActionRejectDocument, req, map[string]interface{}{
			"reason": reason,
		})
	})
	if err != nil {
		return OvertimeResponse{}, err
	}

	overtimeLog.WithField("number", number).Info("overtime request rejected")
	s.hub.NotifyTaskUpdate(model.OvertimeWorkflow.DocType, number, string(model.OvertimeStatusRejected))
	return s.Get(ctx, actor, id)
}

func (s *overtimeService) Cancel(ctx context.Context, actor workflow.Actor, id string, reason string) (OvertimeResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return OvertimeResponse{}, fmt.Errorf("%w: invalid request id", workflow.ErrNotFound)
	}

	var number string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requests.FindByIDForUpdate(txCtx, reqID)
		if findErr != nil {
			return findErr
		}
		if cancelErr := workflow.Cancel(model.OvertimeWorkflow, req, actor, time.Now(), reason); cancelErr != nil {
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
		return OvertimeResponse{}, err
	}

	overtimeLog.WithField("number", number).Info("overtime request canceled")
	s.hub.NotifyTaskUpdate(model.OvertimeWorkflow.DocType, number, string(model.OvertimeStatusCanceled))
	return s.Get(ctx, actor, id)
}

func (s *overtimeService) Get(ctx context.Context, actor workflow.Actor, id string) (OvertimeResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return OvertimeResponse{}, fmt.Errorf("%w: invalid request id", workflow.ErrNotFound)
	}
	req, err := s.requests.FindByID(ctx, reqID)
	if err != nil {
		return OvertimeResponse{}, err
	}
	return toOvertimeResponse(req, actor), nil
}

// List is open to everyone: overtime schedules are shared knowledge on the
// factory floor.
func (s *overtimeService) List(ctx context.Context, actor workflow.Actor, page, limit int) ([]OvertimeResponse, int64, error) {
	requests, total, err := s.requests.List(ctx, repository.DocumentFilter{Page: page, Limit: limit})
	if err != nil {
		return nil, 0, err
	}
	out := make([]OvertimeResponse, 0, len(requests))
	for i := range requests {
		out = append(out, toOvertimeResponse(&requests[i], actor))
	}
	return out, total, nil
}

func buildOvertimeItems(inputs []OvertimeItemInput) ([]model.OvertimeItem, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", workflow.ErrValidationFailed)
	}
	items := make([]model.OvertimeItem, 0, len(inputs))
	for _, in := range inputs {
		if _, err := time.Parse("15:04", in.StartTime); err != nil {
			return nil, fmt.Errorf("%w: start_time must be HH:MM", workflow.ErrValidationFailed)
		}
		if _, err := time.Parse("15:04", in.EndTime); err != nil {
			return nil, fmt.Errorf("%w: end_time must be HH:MM", workflow.ErrValidationFailed)
		}
		deptID, err := uuid.Parse(in.DepartmentID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid department_id", workflow.ErrValidationFailed)
		}
		items = append(items, model.OvertimeItem{
			EmployeeName: in.EmployeeName,
			DepartmentID: deptID,
			StartTime:    in.StartTime,
			EndTime:      in.EndTime,
			Reason:       in.Reason,
		})
	}
	return items, nil
}

func (s *overtimeService) logAudit(ctx context.Context, actor workflow.Actor, action string, req *model.OvertimeRequest, details map[string]interface{}) error {
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

func toOvertimeResponse(req *model.OvertimeRequest, actor workflow.Actor) OvertimeResponse {
	total := 0
	for i := range req.Items {
		total += req.Items[i].DurationMinutes()
	}
	resp := OvertimeResponse{
		ID:            req.ID.String(),
		RequestNumber: req.RequestNumber,
		Status:        string(req.Status),
		StatusLabel:   model.OvertimeWorkflow.Label(req.Status),
		CreatedBy:     req.CreatedByID.String(),
		CreatedAt:     req.CreatedAt,
		TotalMinutes:  total,
		Request:       req,
		Approvals: map[string]ApprovalStamp{
			model.OvertimeStepAdmin:      {By: req.AdminApprovedByID, At: req.AdminApprovedAt},
			model.OvertimeStepFactory:    {By: req.FactoryApprovedByID, At: req.FactoryApprovedAt},
			model.OvertimeStepManagement: {By: req.ManagementApprovedByID, At: req.ManagementApprovedAt},
		},
		CanEdit:   req.CanEditBy(actor),
		CanCancel: req.CanCancelBy(actor),
		CanReject: req.CanRejectBy(actor),
		NextSteps: availableSteps(model.OvertimeWorkflow, req, actor),
	}
	if req.CreatedBy != nil {
		resp.CreatorName = req.CreatedBy.Username
	}
	return resp
}
