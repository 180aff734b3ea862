package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/workflow"

	"github.com/google/uuid"
)

type fakeOrders struct {
	repository.OrderRepository
	rows []model.CustomerOrder
}

func (f *fakeOrders) List(_ context.Context, filter repository.DocumentFilter) ([]model.CustomerOrder, int64, error) {
	out := filterRows(f.rows, filter,
		func(o model.CustomerOrder) workflow.Status { return o.Status },
		func(o model.CustomerOrder) uuid.UUID { return o.CreatedByID })
	return out, int64(len(out)), nil
}

func (f *fakeOrders) CountInStatuses(_ context.Context, statuses []workflow.Status) (int64, error) {
	return int64(len(filterRows(f.rows, repository.DocumentFilter{Statuses: statuses},
		func(o model.CustomerOrder) workflow.Status { return o.Status },
		func(o model.CustomerOrder) uuid.UUID { return o.CreatedByID }))), nil
}

type fakeProduction struct {
	repository.ProductionRepository
	rows []model.ProductionRequest
}

func (f *fakeProduction) List(_ context.Context, filter repository.DocumentFilter) ([]model.ProductionRequest, int64, error) {
	out := filterRows(f.rows, filter,
		func(r model.ProductionRequest) workflow.Status { return r.Status },
		func(r model.ProductionRequest) uuid.UUID { return r.CreatedByID })
	return out, int64(len(out)), nil
}

func (f *fakeProduction) CountInStatuses(_ context.Context, statuses []workflow.Status) (int64, error) {
	return int64(len(filterRows(f.rows, repository.DocumentFilter{Statuses: statuses},
		func(r model.ProductionRequest) workflow.Status { return r.Status },
		func(r model.ProductionRequest) uuid.UUID { return r.CreatedByID }))), nil
}

type fakeOvertime struct {
	repository.OvertimeRepository
	rows []model.OvertimeRequest
}

func (f *fakeOvertime) List(_ context.Context, filter repository.DocumentFilter) ([]model.OvertimeRequest, int64, error) {
	out := filterRows(f.rows, filter,
		func(r model.OvertimeRequest) workflow.Status { return r.Status },
		func(r model.OvertimeRequest) uuid.UUID { return r.CreatedByID })
	return out, int64(len(out)), nil
}

func (f *fakeOvertime) CountInStatuses(_ context.Context, statuses []workflow.Status) (int64, error) {
	return int64(len(filterRows(f.rows, repository.DocumentFilter{Statuses: statuses},
		func(r model.OvertimeRequest) workflow.Status { return r.Status },
		func(r model.OvertimeRequest) uuid.UUID { return r.CreatedByID }))), nil
}

type fakeRequests struct {
	repository.RequestRepository
	rows []model.Request
}

func (f *fakeRequests) List(_ context.Context, filter repository.DocumentFilter) ([]model.Request, int64, error) {
	out := filterRows(f.rows, filter,
		func(r model.Request) workflow.Status { return r.Status },
		func(r model.Request) uuid.UUID { return r.CreatedByID })
	return out, int64(len(out)), nil
}

func (f *fakeRequests) ListActionable(_ context.Context, statuses []workflow.Status, creatorID uuid.UUID) ([]model.Request, error) {
	var out []model.Request
	for _, r := range f.rows {
		if r.Status == model.RequestStatusDraft {
			if r.CreatedByID == creatorID {
				out = append(out, r)
			}
			continue
		}
		for _, st := range statuses {
			if r.Status == st {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRequests) CountInStatuses(_ context.Context, statuses []workflow.Status) (int64, error) {
	return int64(len(filterRows(f.rows, repository.DocumentFilter{Statuses: statuses},
		func(r model.Request) workflow.Status { return r.Status },
		func(r model.Request) uuid.UUID { return r.CreatedByID }))), nil
}

func (f *fakeRequests) CountDraftsBy(_ context.Context, creatorID uuid.UUID) (int64, error) {
	var n int64
	for _, r := range f.rows {
		if r.Status == model.RequestStatusDraft && r.CreatedByID == creatorID {
			n++
		}
	}
	return n, nil
}

func filterRows[T any](rows []T, filter repository.DocumentFilter, status func(T) workflow.Status, creator func(T) uuid.UUID) []T {
	var out []T
	for _, r := range rows {
		if filter.CreatedBy != nil && creator(r) != *filter.CreatedBy {
			continue
		}
		if len(filter.Statuses) > 0 {
			hit := false
			for _, st := range filter.Statuses {
				if status(r) == st {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func newTaskFixture() (*fakeOrders, *fakeProduction, *fakeOvertime, *fakeRequests, uuid.UUID) {
	me := uuid.New()
	other := uuid.New()
	now := time.Now()

	orders := &fakeOrders{rows: []model.CustomerOrder{
		{ID: uuid.New(), OrderNumber: "ORD-202608-0001", Status: model.OrderStatusDraft, CreatedByID: other, CreatedAt: now},
		{ID: uuid.New(), OrderNumber: "ORD-202608-0002", Status: model.OrderStatusSalesApproved, CreatedByID: other, CreatedAt: now},
		{ID: uuid.New(), OrderNumber: "ORD-202608-0003", Status: model.OrderStatusCanceled, CreatedByID: other, CreatedAt: now},
		{ID: uuid.New(), OrderNumber: "ORD-202608-0004", Status: model.OrderStatusCanceled, CreatedByID: me, CreatedAt: now.Add(-time.Hour)},
	}}
	production := &fakeProduction{rows: []model.ProductionRequest{
		{ID: uuid.New(), RequestNumber: "PR-202608-0001", Status: model.ProductionStatusDraft, CreatedByID: other, CreatedAt: now},
	}}
	overtime := &fakeOvertime{rows: []model.OvertimeRequest{
		{ID: uuid.New(), RequestNumber: "OT-202608-0001", Status: model.OvertimeStatusFactoryPending, CreatedByID: other, CreatedAt: now},
	}}
	requests := &fakeRequests{rows: []model.Request{
		{ID: uuid.New(), RequestNumber: "REQ-202608-0001", Status: model.RequestStatusDraft, CreatedByID: me, CreatedAt: now},
		{ID: uuid.New(), RequestNumber: "REQ-202608-0002", Status: model.RequestStatusDraft, CreatedByID: other, CreatedAt: now},
		{ID: uuid.New(), RequestNumber: "REQ-202608-0003", Status: model.RequestStatusCreatorApproved, CreatedByID: other, CreatedAt: now},
	}}
	return orders, production, overtime, requests, me
}

func taskNumbers(tasks []TaskItem) map[string]bool {
	out := map[string]bool{}
	for _, task := range tasks {
		out[task.Number] = true
	}
	return out
}

func TestPendingTasks_SalesManager(t *testing.T) {
	orders, production, overtime, requests, me := newTaskFixture()
	svc := NewTaskService(orders, production, overtime, requests)
	actor := workflow.Actor{ID: me, Role: workflow.RoleSalesManager, HasRole: true}

	tasks, err := svc.PendingTasks(context.Background(), actor, "")
	if err != nil {
		t.Fatalf("PendingTasks: %v", err)
	}
	got := taskNumbers(tasks)

	// Draft order awaits the sales gate; own draft general request awaits
	// submission. Nothing else is actionable by this role.
	for _, want := range []string{"ORD-202608-0001", "REQ-202608-0001"} {
		if !got[want] {
			t.Fatalf("missing task %s in %v", want, got)
		}
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d: %v", len(tasks), got)
	}
}

func TestPendingTasks_FactoryManager(t *testing.T) {
	orders, production, overtime, requests, me := newTaskFixture()
	svc := NewTaskService(orders, production, overtime, requests)
	actor := workflow.Actor{ID: me, Role: workflow.RoleFactoryManager, HasRole: true}

	tasks, err := svc.PendingTasks(context.Background(), actor, "")
	if err != nil {
		t.Fatalf("PendingTasks: %v", err)
	}
	got := taskNumbers(tasks)

	// Factory manager: overtime at the factory gate, submitted general
	// request, own general request draft. The production request is in
	// draft, which awaits the planning signature, not the factory one.
	for _, want := range []string{"OT-202608-0001", "REQ-202608-0003", "REQ-202608-0001"} {
		if !got[want] {
			t.Fatalf("missing task %s in %v", want, got)
		}
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d: %v", len(tasks), got)
	}
}

func TestCounts_Management(t *testing.T) {
	orders, production, overtime, requests, me := newTaskFixture()
	svc := NewTaskService(orders, production, overtime, requests)
	actor := workflow.Actor{ID: me, Role: workflow.RoleManagement, HasRole: true}

	counts, err := svc.Counts(context.Background(), actor)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}

	// Management gates orders at every step (draft + sales_approved rows),
	// production at both steps (one draft row), overtime only at the
	// management gate (the fixture's request sits at the factory gate) and
	// general requests at factory_approved (none), plus one own draft.
	if counts.SalesOrders != 2 {
		t.Fatalf("sales order count = %d", counts.SalesOrders)
	}
	if counts.ProductionRequests != 1 {
		t.Fatalf("production count = %d", counts.ProductionRequests)
	}
	if counts.OvertimeRequests != 0 {
		t.Fatalf("overtime count = %d", counts.OvertimeRequests)
	}
	if counts.GeneralRequests != 1 {
		t.Fatalf("general request count = %d", counts.GeneralRequests)
	}
	if counts.Total != 4 {
		t.Fatalf("total = %d", counts.Total)
	}
}

func TestMyDocuments_OwnOnlyNewestFirst(t *testing.T) {
	orders, production, overtime, requests, me := newTaskFixture()
	svc := NewTaskService(orders, production, overtime, requests)
	actor := workflow.Actor{ID: me, Role: workflow.RoleSalesManager, HasRole: true}

	docs, err := svc.MyDocuments(context.Background(), actor)
	if err != nil {
		t.Fatalf("MyDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d: %+v", len(docs), docs)
	}
	if docs[0].Number != "REQ-202608-0001" || docs[1].Number != "ORD-202608-0004" {
		t.Fatalf("wrong order: %s, %s", docs[0].Number, docs[1].Number)
	}
	if !docs[0].CanEdit {
		t.Fatalf("own draft request should be editable")
	}
	if docs[1].CanEdit {
		t.Fatalf("canceled order should not be editable")
	}
}

func TestPendingTasks_TypeFilter(t *testing.T) {
	orders, production, overtime, requests, me := newTaskFixture()
	svc := NewTaskService(orders, production, overtime, requests)
	actor := workflow.Actor{ID: me, Role: workflow.RoleFactoryManager, HasRole: true}

	tasks, err := svc.PendingTasks(context.Background(), actor, "overtime_request")
	if err != nil {
		t.Fatalf("PendingTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Number != "OT-202608-0001" {
		t.Fatalf("expected only the overtime task, got %+v", tasks)
	}
	if tasks[0].Link != "/api/overtime-requests/"+tasks[0].DocumentID {
		t.Fatalf("unexpected link %s", tasks[0].Link)
	}
}
