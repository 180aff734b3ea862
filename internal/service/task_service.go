package service

import (
	"context"
	"sort"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/workflow"
)

// TaskItem is one row on the "my tasks" dashboard: a document waiting for an
// action the caller can take.
type TaskItem struct {
	DocType     string    `json:"doc_type"`
	DocumentID  string    `json:"document_id"`
	Number      string    `json:"number"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	CreatorName string    `json:"creator_name,omitempty"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"created_at"`
}

// docPaths maps a workflow doc type to its API resource path, used to build
// the detail link on task rows.
var docPaths = map[string]string{
	"sales_order":        "/api/orders",
	"production_request": "/api/production-requests",
	"overtime_request":   "/api/overtime-requests",
	"general_request":    "/api/requests",
}

// QueueCounts are the per-type pending counters shown as dashboard badges.
type QueueCounts struct {
	SalesOrders        int64 `json:"sales_orders"`
	ProductionRequests int64 `json:"production_requests"`
	OvertimeRequests   int64 `json:"overtime_requests"`
	GeneralRequests    int64 `json:"general_requests"`
	Total              int64 `json:"total"`
}

// MyDocument is one document the caller created, regardless of type or
// status, with a flag telling the client whether an edit is still possible.
type MyDocument struct {
	DocType     string    `json:"doc_type"`
	DocumentID  string    `json:"document_id"`
	Number      string    `json:"number"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	CanEdit     bool      `json:"can_edit"`
	CreatedAt   time.Time `json:"created_at"`
}

type TaskService interface {
	// PendingTasks lists actionable documents, optionally narrowed to one
	// doc type. An empty docType means all types.
	PendingTasks(ctx context.Context, actor workflow.Actor, docType string) ([]TaskItem, error)
	Counts(ctx context.Context, actor workflow.Actor) (QueueCounts, error)
	MyDocuments(ctx context.Context, actor workflow.Actor) ([]MyDocument, error)
}

type taskService struct {
	orders     repository.OrderRepository
	production repository.ProductionRepository
	overtime   repository.OvertimeRepository
	requests   repository.RequestRepository
}

func NewTaskService(
	orders repository.OrderRepository,
	production repository.ProductionRepository,
	overtime repository.OvertimeRepository,
	requests repository.RequestRepository,
) TaskService {
	return &taskService{orders: orders, production: production, overtime: overtime, requests: requests}
}

// PendingTasks aggregates, across all four document types, every document
// sitting in a status whose next step the actor's role may fire. General
// requests additionally surface the caller's own drafts, since only the
// creator can submit a draft.
func (s *taskService) PendingTasks(ctx context.Context, actor workflow.Actor, docType string) ([]TaskItem, error) {
	tasks := []TaskItem{}
	wanted := func(def *workflow.Definition) bool {
		return docType == "" || docType == def.DocType
	}

	if statuses := model.OrderWorkflow.PendingStatuses(actor.Role); wanted(model.OrderWorkflow) && len(statuses) > 0 {
		orders, _, err := s.orders.List(ctx, repository.DocumentFilter{Statuses: statuses})
		if err != nil {
			return nil, err
		}
		for i := range orders {
			o := &orders[i]
			tasks = append(tasks, taskItem(model.OrderWorkflow, o.ID.String(), o.OrderNumber, o.Status, o.CreatedBy, o.CreatedAt))
		}
	}

	if statuses := model.ProductionWorkflow.PendingStatuses(actor.Role); wanted(model.ProductionWorkflow) && len(statuses) > 0 {
		reqs, _, err := s.production.List(ctx, repository.DocumentFilter{Statuses: statuses})
		if err != nil {
			return nil, err
		}
		for i := range reqs {
			r := &reqs[i]
			tasks = append(tasks, taskItem(model.ProductionWorkflow, r.ID.String(), r.RequestNumber, r.Status, r.CreatedBy, r.CreatedAt))
		}
	}

	if statuses := model.OvertimeWorkflow.PendingStatuses(actor.Role); wanted(model.OvertimeWorkflow) && len(statuses) > 0 {
		reqs, _, err := s.overtime.List(ctx, repository.DocumentFilter{Statuses: statuses})
		if err != nil {
			return nil, err
		}
		for i := range reqs {
			r := &reqs[i]
			tasks = append(tasks, taskItem(model.OvertimeWorkflow, r.ID.String(), r.RequestNumber, r.Status, r.CreatedBy, r.CreatedAt))
		}
	}

	if wanted(model.RequestWorkflow) {
		reqs, err := s.requests.ListActionable(ctx, model.RequestWorkflow.PendingStatuses(actor.Role), actor.ID)
		if err != nil {
			return nil, err
		}
		for i := range reqs {
			r := &reqs[i]
			tasks = append(tasks, taskItem(model.RequestWorkflow, r.ID.String(), r.RequestNumber, r.Status, r.CreatedBy, r.CreatedAt))
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

func (s *taskService) Counts(ctx context.Context, actor workflow.Actor) (QueueCounts, error) {
	var counts QueueCounts

	if statuses := model.OrderWorkflow.PendingStatuses(actor.Role); len(statuses) > 0 {
		n, err := s.orders.CountInStatuses(ctx, statuses)
		if err != nil {
			return counts, err
		}
		counts.SalesOrders = n
	}
	if statuses := model.ProductionWorkflow.PendingStatuses(actor.Role); len(statuses) > 0 {
		n, err := s.production.CountInStatuses(ctx, statuses)
		if err != nil {
			return counts, err
		}
		counts.ProductionRequests = n
	}
	if statuses := model.OvertimeWorkflow.PendingStatuses(actor.Role); len(statuses) > 0 {
		n, err := s.overtime.CountInStatuses(ctx, statuses)
		if err != nil {
			return counts, err
		}
		counts.OvertimeRequests = n
	}
	if statuses := model.RequestWorkflow.PendingStatuses(actor.Role); len(statuses) > 0 {
		n, err := s.requests.CountInStatuses(ctx, statuses)
		if err != nil {
			return counts, err
		}
		counts.GeneralRequests = n
	}
	drafts, err := s.requests.CountDraftsBy(ctx, actor.ID)
	if err != nil {
		return counts, err
	}
	counts.GeneralRequests += drafts

	counts.Total = counts.SalesOrders + counts.ProductionRequests + counts.OvertimeRequests + counts.GeneralRequests
	return counts, nil
}

// MyDocuments lists everything the actor created, across all four document
// types, newest first.
func (s *taskService) MyDocuments(ctx context.Context, actor workflow.Actor) ([]MyDocument, error) {
	mine := repository.DocumentFilter{CreatedBy: &actor.ID}
	docs := []MyDocument{}

	orders, _, err := s.orders.List(ctx, mine)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		o := &orders[i]
		docs = append(docs, myDocument(model.OrderWorkflow, o.ID.String(), o.OrderNumber, o.Status, o.CanEditBy(actor), o.CreatedAt))
	}

	production, _, err := s.production.List(ctx, mine)
	if err != nil {
		return nil, err
	}
	for i := range production {
		r := &production[i]
		docs = append(docs, myDocument(model.ProductionWorkflow, r.ID.String(), r.RequestNumber, r.Status, r.CanEditBy(actor), r.CreatedAt))
	}

	overtime, _, err := s.overtime.List(ctx, mine)
	if err != nil {
		return nil, err
	}
	for i := range overtime {
		r := &overtime[i]
		docs = append(docs, myDocument(model.OvertimeWorkflow, r.ID.String(), r.RequestNumber, r.Status, r.CanEditBy(actor), r.CreatedAt))
	}

	requests, _, err := s.requests.List(ctx, mine)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		r := &requests[i]
		docs = append(docs, myDocument(model.RequestWorkflow, r.ID.String(), r.RequestNumber, r.Status, r.CanEditBy(actor), r.CreatedAt))
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	return docs, nil
}

func myDocument(def *workflow.Definition, id, number string, status workflow.Status, canEdit bool, createdAt time.Time) MyDocument {
	return MyDocument{
		DocType:     def.DocType,
		DocumentID:  id,
		Number:      number,
		Status:      string(status),
		StatusLabel: def.Label(status),
		CanEdit:     canEdit,
		CreatedAt:   createdAt,
	}
}

func taskItem(def *workflow.Definition, id, number string, status workflow.Status, creator *model.User, createdAt time.Time) TaskItem {
	item := TaskItem{
		DocType:     def.DocType,
		DocumentID:  id,
		Number:      number,
		Status:      string(status),
		StatusLabel: def.Label(status),
		Link:        docPaths[def.DocType] + "/" + id,
		CreatedAt:   createdAt,
	}
	if creator != nil {
		item.CreatorName = creator.Username
	}
	return item
}
