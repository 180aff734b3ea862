package model

import (
	"errors"
	"testing"
	"time"

	"backend/internal/workflow"

	"github.com/google/uuid"
)

func approver(role workflow.Role) workflow.Actor {
	return workflow.Actor{ID: uuid.New(), Role: role, HasRole: true, Reverified: true}
}

func TestOrderApprovalChain(t *testing.T) {
	sales := approver(workflow.RoleSalesManager)
	finance := approver(workflow.RoleFinanceManager)
	mgmt := approver(workflow.RoleManagement)
	now := time.Now()

	order := &CustomerOrder{
		OrderNumber: "ORD-202608-0001",
		Status:      OrderStatusDraft,
		CreatedByID: sales.ID,
	}

	if err := workflow.Transition(OrderWorkflow, order, OrderStepSales, sales, now); err != nil {
		t.Fatalf("sales step: %v", err)
	}
	if order.Status != OrderStatusSalesApproved {
		t.Fatalf("after sales step: %s", order.Status)
	}
	if order.SalesApprovedByID == nil || *order.SalesApprovedByID != sales.ID {
		t.Fatal("sales stamp not recorded")
	}
	if order.SalesApprovedAt == nil || !order.SalesApprovedAt.Equal(now) {
		t.Fatal("sales timestamp not recorded")
	}

	// The finance gate refuses the sales manager.
	if err := workflow.Transition(OrderWorkflow, order, OrderStepFinance, sales, now); !errors.Is(err, workflow.ErrPermissionDenied) {
		t.Fatalf("sales manager at finance gate: expected ErrPermissionDenied, got %v", err)
	}

	if err := workflow.Transition(OrderWorkflow, order, OrderStepFinance, finance, now); err != nil {
		t.Fatalf("finance step: %v", err)
	}
	if err := workflow.Transition(OrderWorkflow, order, OrderStepManagement, mgmt, now); err != nil {
		t.Fatalf("management step: %v", err)
	}
	if order.Status != OrderStatusManagementApproved {
		t.Fatalf("final status: %s", order.Status)
	}

	// Every stamp survived the whole run.
	if order.SalesApprovedByID == nil || order.FinanceApprovedByID == nil || order.ManagementApprovedByID == nil {
		t.Fatal("an approval stamp is missing after the full chain")
	}
}

func TestOrderManagementShortcut(t *testing.T) {
	mgmt := approver(workflow.RoleManagement)
	order := &CustomerOrder{OrderNumber: "ORD-202608-0002", Status: OrderStatusDraft, CreatedByID: uuid.New()}

	for _, step := range []string{OrderStepSales, OrderStepFinance, OrderStepManagement} {
		if err := workflow.Transition(OrderWorkflow, order, step, mgmt, time.Now()); err != nil {
			t.Fatalf("management firing %q: %v", step, err)
		}
	}
	if order.Status != OrderStatusManagementApproved {
		t.Fatalf("expected management_approved, got %s", order.Status)
	}
}

func TestOrderEditRules(t *testing.T) {
	cases := []struct {
		role   workflow.Role
		status workflow.Status
		want   bool
	}{
		{workflow.RoleManagement, OrderStatusDraft, true},
		{workflow.RoleManagement, OrderStatusManagementApproved, true},
		{workflow.RoleManagement, OrderStatusCanceled, false},
		{workflow.RoleSalesManager, OrderStatusDraft, true},
		{workflow.RoleSalesManager, OrderStatusSalesApproved, true},
		{workflow.RoleSalesManager, OrderStatusFinanceApproved, false},
		{workflow.RoleFinanceManager, OrderStatusSalesApproved, true},
		{workflow.RoleFinanceManager, OrderStatusFinanceApproved, true},
		{workflow.RoleFinanceManager, OrderStatusDraft, false},
		{workflow.RoleFactoryPlanner, OrderStatusDraft, false},
	}
	for _, tc := range cases {
		order := &CustomerOrder{Status: tc.status}
		if got := order.CanEditBy(approver(tc.role)); got != tc.want {
			t.Fatalf("CanEditBy(%s) in %s = %v, want %v", tc.role, tc.status, got, tc.want)
		}
	}
}

func TestProductionPlannerCreatorOnly(t *testing.T) {
	planner := approver(workflow.RoleFactoryPlanner)
	otherPlanner := approver(workflow.RoleFactoryPlanner)

	req := &ProductionRequest{Status: ProductionStatusDraft, CreatedByID: planner.ID}
	if !req.CanEditBy(planner) {
		t.Fatal("planner cannot edit own draft")
	}
	if req.CanEditBy(otherPlanner) {
		t.Fatal("planner can edit another planner's draft")
	}
	if !req.CanCancelBy(planner) {
		t.Fatal("planner cannot cancel own draft")
	}

	// Once the factory has signed, the planner is locked out.
	req.Status = ProductionStatusFactorySigned
	if req.CanEditBy(planner) || req.CanCancelBy(planner) {
		t.Fatal("planner still allowed after factory signature")
	}
	if !req.CanEditBy(approver(workflow.RoleFactoryManager)) {
		t.Fatal("factory manager locked out of signed request")
	}
}

func TestOvertimeNoManagementShortcut(t *testing.T) {
	mgmt := approver(workflow.RoleManagement)
	req := &OvertimeRequest{RequestNumber: "OT-202608-0001", Status: OvertimeStatusAdminPending, CreatedByID: uuid.New()}

	if err := workflow.Transition(OvertimeWorkflow, req, OvertimeStepAdmin, mgmt, time.Now()); !errors.Is(err, workflow.ErrPermissionDenied) {
		t.Fatalf("management at admin gate: expected ErrPermissionDenied, got %v", err)
	}
}

func TestOvertimeStampDrivenEdit(t *testing.T) {
	creator := workflow.Actor{ID: uuid.New(), Reverified: true}
	admin := approver(workflow.RoleAdministrativeOfficer)
	stamp := uuid.New()
	at := time.Now()

	req := &OvertimeRequest{Status: OvertimeStatusAdminPending, CreatedByID: creator.ID}
	if !req.CanEditBy(creator) {
		t.Fatal("creator cannot edit before admin stamp")
	}

	req.AdminApprovedByID = &stamp
	req.AdminApprovedAt = &at
	req.Status = OvertimeStatusFactoryPending
	if req.CanEditBy(creator) {
		t.Fatal("creator can still edit after admin stamp")
	}
	if !req.CanEditBy(admin) {
		t.Fatal("admin cannot edit before factory stamp")
	}

	req.FactoryApprovedByID = &stamp
	req.Status = OvertimeStatusManagementPending
	if req.CanEditBy(admin) {
		t.Fatal("admin can still edit after factory stamp")
	}

	req.Status = OvertimeStatusApproved
	if req.CanEditBy(approver(workflow.RoleManagement)) {
		t.Fatal("terminal request still editable")
	}
}

func TestOvertimeDurationMinutes(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"17:00", "19:30", 150},
		{"08:00", "08:00", 0},
		{"22:00", "02:00", 240}, // crosses midnight
		{"bad", "19:00", 0},
	}
	for _, tc := range cases {
		item := OvertimeItem{StartTime: tc.start, EndTime: tc.end}
		if got := item.DurationMinutes(); got != tc.want {
			t.Fatalf("DurationMinutes(%s-%s) = %d, want %d", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestRequestCreatorSubmit(t *testing.T) {
	creator := workflow.Actor{ID: uuid.New(), Role: workflow.RoleSalesManager, HasRole: true, Reverified: true}
	req := &Request{RequestNumber: "REQ-202608-0001", Status: RequestStatusDraft, CreatedByID: creator.ID}

	// Only the creator can submit the draft, role notwithstanding.
	mgmt := approver(workflow.RoleManagement)
	if err := workflow.Transition(RequestWorkflow, req, RequestStepCreator, mgmt, time.Now()); !errors.Is(err, workflow.ErrPermissionDenied) {
		t.Fatalf("non-creator submit: expected ErrPermissionDenied, got %v", err)
	}
	if err := workflow.Transition(RequestWorkflow, req, RequestStepCreator, creator, time.Now()); err != nil {
		t.Fatalf("creator submit: %v", err)
	}
	if req.Status != RequestStatusCreatorApproved {
		t.Fatalf("after submit: %s", req.Status)
	}
}

func TestRequestCancelNeverFromFinalApproval(t *testing.T) {
	mgmt := approver(workflow.RoleManagement)
	req := &Request{RequestNumber: "REQ-202608-0002", Status: RequestStatusManagementApproved, CreatedByID: mgmt.ID}

	if req.CanCancelBy(mgmt) {
		t.Fatal("management may cancel a fully approved request")
	}
	if err := workflow.Cancel(RequestWorkflow, req, mgmt, time.Now(), "changed mind"); !errors.Is(err, workflow.ErrPermissionDenied) {
		t.Fatalf("cancel from management_approved: expected ErrPermissionDenied, got %v", err)
	}
	if req.CanceledByID != nil {
		t.Fatal("cancel stamp written despite denial")
	}
}

func TestCancelRecordsTriple(t *testing.T) {
	mgmt := approver(workflow.RoleManagement)
	now := time.Now()
	order := &CustomerOrder{OrderNumber: "ORD-202608-0003", Status: OrderStatusSalesApproved, CreatedByID: uuid.New()}

	if err := workflow.Cancel(OrderWorkflow, order, mgmt, now, "customer withdrew"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if order.Status != OrderStatusCanceled {
		t.Fatalf("status after cancel: %s", order.Status)
	}
	if order.CanceledByID == nil || *order.CanceledByID != mgmt.ID {
		t.Fatal("canceled-by not recorded")
	}
	if order.CanceledAt == nil || !order.CanceledAt.Equal(now) {
		t.Fatal("canceled-at not recorded")
	}
	if order.CancelReason != "customer withdrew" {
		t.Fatalf("cancel reason: %q", order.CancelReason)
	}

	// Approvals on a canceled order are refused.
	if err := workflow.Transition(OrderWorkflow, order, OrderStepFinance, approver(workflow.RoleFinanceManager), now); !errors.Is(err, workflow.ErrPermissionDenied) {
		t.Fatalf("approve after cancel: expected ErrPermissionDenied, got %v", err)
	}
}

func TestUserActor(t *testing.T) {
	u := &User{ID: uuid.New(), Role: "factory_manager"}
	a := u.Actor(true)
	if !a.Is(workflow.RoleFactoryManager) || !a.Reverified {
		t.Fatalf("actor from user: %+v", a)
	}

	noRole := &User{ID: uuid.New(), Role: "intern"}
	if a := noRole.Actor(false); a.HasRole {
		t.Fatal("unknown role tag produced a role-bearing actor")
	}
}
