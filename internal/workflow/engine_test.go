package workflow

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// stubDoc is a minimal two-step document for exercising the engine.
type stubDoc struct {
	status   Status
	creator  uuid.UUID
	stamps   map[string]uuid.UUID
	canceled bool
	editable bool
}

func newStubDoc(status Status, creator uuid.UUID) *stubDoc {
	return &stubDoc{status: status, creator: creator, stamps: map[string]uuid.UUID{}, editable: true}
}

func (d *stubDoc) DocType() string        { return "stub" }
func (d *stubDoc) Number() string         { return "STB-202608-0001" }
func (d *stubDoc) CurrentStatus() Status  { return d.status }
func (d *stubDoc) SetStatus(st Status)    { d.status = st }
func (d *stubDoc) CreatorID() uuid.UUID   { return d.creator }
func (d *stubDoc) CanEditBy(Actor) bool   { return d.editable }
func (d *stubDoc) CanCancelBy(Actor) bool { return d.editable }

func (d *stubDoc) ApplyApproval(step string, by uuid.UUID, _ time.Time) error {
	if _, dup := d.stamps[step]; dup {
		return fmt.Errorf("%w: stamp already set", ErrPermissionDenied)
	}
	d.stamps[step] = by
	return nil
}

func (d *stubDoc) ApplyCancel(by uuid.UUID, _ time.Time, _ string) error {
	if d.canceled {
		return fmt.Errorf("%w: already canceled", ErrPermissionDenied)
	}
	d.canceled = true
	return nil
}

var stubDef = &Definition{
	DocType:  "stub",
	Prefix:   "STB",
	Initial:  "draft",
	Canceled: "canceled",
	Statuses: []Status{"draft", "first_approved", "second_approved", "canceled"},
	Steps: []Step{
		{Name: "first", From: "draft", To: "first_approved", Roles: []Role{RoleSalesManager, RoleManagement}},
		{Name: "second", From: "first_approved", To: "second_approved", Roles: []Role{RoleManagement}},
		{Name: "submit_alt", From: "draft", To: "first_approved", CreatorOnly: true},
	},
}

func actor(role Role) Actor {
	return Actor{ID: uuid.New(), Role: role, HasRole: true, Reverified: true}
}

func TestTransition_RoleGate(t *testing.T) {
	cases := []struct {
		step string
		role Role
		ok   bool
	}{
		{"first", RoleSalesManager, true},
		{"first", RoleManagement, true},
		{"first", RoleFinanceManager, false},
		{"first", RoleFactoryPlanner, false},
		{"second", RoleManagement, true},
		{"second", RoleSalesManager, false},
	}
	for _, tc := range cases {
		from := Status("draft")
		if tc.step == "second" {
			from = "first_approved"
		}
		doc := newStubDoc(from, uuid.New())
		err := Transition(stubDef, doc, tc.step, actor(tc.role), time.Now())
		if tc.ok && err != nil {
			t.Fatalf("step %q by %s: unexpected error %v", tc.step, tc.role, err)
		}
		if !tc.ok {
			if !errors.Is(err, ErrPermissionDenied) {
				t.Fatalf("step %q by %s: expected ErrPermissionDenied, got %v", tc.step, tc.role, err)
			}
			if doc.status != from {
				t.Fatalf("step %q by %s: status moved to %s on denial", tc.step, tc.role, doc.status)
			}
		}
	}
}

func TestTransition_CreatorOnlyStep(t *testing.T) {
	creator := uuid.New()
	doc := newStubDoc("draft", creator)

	other := actor(RoleManagement)
	if err := Transition(stubDef, doc, "submit_alt", other, time.Now()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("non-creator firing creator step: expected ErrPermissionDenied, got %v", err)
	}

	self := Actor{ID: creator, Reverified: true}
	if err := Transition(stubDef, doc, "submit_alt", self, time.Now()); err != nil {
		t.Fatalf("creator firing creator step: %v", err)
	}
	if doc.status != "first_approved" {
		t.Fatalf("expected first_approved, got %s", doc.status)
	}
}

func TestTransition_RequiresReverification(t *testing.T) {
	doc := newStubDoc("draft", uuid.New())
	a := actor(RoleManagement)
	a.Reverified = false
	if err := Transition(stubDef, doc, "first", a, time.Now()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied without reverification, got %v", err)
	}
	if len(doc.stamps) != 0 {
		t.Fatal("stamp written despite denial")
	}
}

func TestTransition_ReplayFails(t *testing.T) {
	doc := newStubDoc("draft", uuid.New())
	mgr := actor(RoleManagement)
	if err := Transition(stubDef, doc, "first", mgr, time.Now()); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	if err := Transition(stubDef, doc, "first", mgr, time.Now()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("replay: expected ErrPermissionDenied, got %v", err)
	}
	if doc.status != "first_approved" {
		t.Fatalf("replay changed status to %s", doc.status)
	}
}

func TestTransition_UnknownStep(t *testing.T) {
	doc := newStubDoc("draft", uuid.New())
	if err := Transition(stubDef, doc, "nonsense", actor(RoleManagement), time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransition_SkippingStepFails(t *testing.T) {
	doc := newStubDoc("draft", uuid.New())
	if err := Transition(stubDef, doc, "second", actor(RoleManagement), time.Now()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("firing second from draft: expected ErrPermissionDenied, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	doc := newStubDoc("first_approved", uuid.New())
	mgr := actor(RoleManagement)
	if err := Cancel(stubDef, doc, mgr, time.Now(), "not needed"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if doc.status != "canceled" || !doc.canceled {
		t.Fatalf("expected canceled, got %s", doc.status)
	}

	// A second cancellation must fail before touching the document.
	if err := Cancel(stubDef, doc, mgr, time.Now(), "again"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("double cancel: expected ErrPermissionDenied, got %v", err)
	}
}

func TestCancel_RequiresReverification(t *testing.T) {
	doc := newStubDoc("draft", uuid.New())
	a := actor(RoleManagement)
	a.Reverified = false
	if err := Cancel(stubDef, doc, a, time.Now(), ""); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestCancel_PredicateDenied(t *testing.T) {
	doc := newStubDoc("draft", uuid.New())
	doc.editable = false
	if err := Cancel(stubDef, doc, actor(RoleManagement), time.Now(), ""); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if doc.canceled {
		t.Fatal("cancel applied despite predicate denial")
	}
}

func TestPendingStatuses(t *testing.T) {
	got := stubDef.PendingStatuses(RoleSalesManager)
	if len(got) != 1 || got[0] != "draft" {
		t.Fatalf("sales manager pending: expected [draft], got %v", got)
	}
	got = stubDef.PendingStatuses(RoleManagement)
	if len(got) != 2 || got[0] != "draft" || got[1] != "first_approved" {
		t.Fatalf("management pending: expected [draft first_approved], got %v", got)
	}
	if got := stubDef.PendingStatuses(RoleFactoryPlanner); len(got) != 0 {
		t.Fatalf("planner pending: expected none, got %v", got)
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		parsed, ok := ParseRole(string(r))
		if !ok || parsed != r {
			t.Fatalf("ParseRole(%q) = %v, %v", r, parsed, ok)
		}
	}
	if _, ok := ParseRole("superuser"); ok {
		t.Fatal("ParseRole accepted unknown tag")
	}
}
