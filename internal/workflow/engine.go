package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is one value of a document type's ordered status enum.
type Status string

// Step is one gated status transition: it fires only from a specific prior
// status and only for a specific set of roles (or, for CreatorOnly steps,
// only for the document's creator regardless of role).
type Step struct {
	Name        string
	From        Status
	To          Status
	Roles       []Role
	CreatorOnly bool
}

// Permits reports whether the actor may fire this step on a document created
// by creatorID. It does not look at the document's current status.
func (s Step) Permits(actor Actor, creatorID uuid.UUID) bool {
	if s.CreatorOnly {
		return actor.ID == creatorID
	}
	return actor.IsAny(s.Roles...)
}

// Document is the behavior the engine needs from an approvable record. Each
// of the four document models implements it; the per-type edit and cancel
// predicates live on the models because the original rules are independently
// tuned per type.
type Document interface {
	DocType() string
	Number() string
	CurrentStatus() Status
	SetStatus(Status)
	CreatorID() uuid.UUID

	// ApplyApproval records the (approver, timestamp) stamp for a step.
	// Stamps are write-once: a second call for the same step must fail.
	ApplyApproval(step string, by uuid.UUID, at time.Time) error

	// ApplyCancel records the cancellation triple. Write-once as well.
	ApplyCancel(by uuid.UUID, at time.Time, reason string) error

	CanEditBy(actor Actor) bool
	CanCancelBy(actor Actor) bool
}

// Definition configures the approval state machine for one document type.
type Definition struct {
	DocType  string
	Prefix   string
	Initial  Status
	Canceled Status
	Statuses []Status
	Labels   map[Status]string
	Steps    []Step
}

// StepByName returns the named step.
func (d *Definition) StepByName(name string) (Step, bool) {
	for _, s := range d.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

// Label returns the display label for a status, falling back to the raw
// status value when no label is declared.
func (d *Definition) Label(st Status) string {
	if l, ok := d.Labels[st]; ok {
		return l
	}
	return string(st)
}

// PendingStatuses returns the statuses a role is authorized to act on next:
// the from-statuses of every step whose role set contains the role. This is
// the single source for both dashboard badge counts and task lists.
func (d *Definition) PendingStatuses(role Role) []Status {
	var out []Status
	for _, s := range d.Steps {
		for _, r := range s.Roles {
			if r == role {
				out = append(out, s.From)
				break
			}
		}
	}
	return out
}

// Transition fires the named step on the document. It succeeds iff the actor
// has re-verified their password, the step permits the actor, and the
// document's status equals the step's from-status. On success the status
// advances and the step's approval stamp is written exactly once. Replaying
// a fired step fails because the from-status no longer matches.
//
// The caller is responsible for running this inside a storage transaction
// with the document row locked, so the check-then-write is atomic with
// respect to concurrent transitions on the same document.
func Transition(def *Definition, doc Document, stepName string, actor Actor, now time.Time) error {
	step, ok := def.StepByName(stepName)
	if !ok {
		return fmt.Errorf("%w: unknown approval step %q for %s", ErrNotFound, stepName, def.DocType)
	}
	if !actor.Reverified {
		return fmt.Errorf("%w: password re-verification required", ErrPermissionDenied)
	}
	if !step.Permits(actor, doc.CreatorID()) {
		return fmt.Errorf("%w: role may not fire step %q on %s", ErrPermissionDenied, stepName, def.DocType)
	}
	if doc.CurrentStatus() != step.From {
		return fmt.Errorf("%w: %s %s is %s, step %q requires %s",
			ErrPermissionDenied, def.DocType, doc.Number(), doc.CurrentStatus(), stepName, step.From)
	}
	if err := doc.ApplyApproval(step.Name, actor.ID, now); err != nil {
		return err
	}
	doc.SetStatus(step.To)
	return nil
}

// Cancel marks the document canceled. It succeeds iff the actor has
// re-verified their password, the document is not already canceled, and the
// type's cancel predicate admits the actor from the current status. The
// cancellation triple is written exactly once. Same locking contract as
// Transition.
func Cancel(def *Definition, doc Document, actor Actor, now time.Time, reason string) error {
	if !actor.Reverified {
		return fmt.Errorf("%w: password re-verification required", ErrPermissionDenied)
	}
	if doc.CurrentStatus() == def.Canceled {
		return fmt.Errorf("%w: %s %s is already canceled", ErrPermissionDenied, def.DocType, doc.Number())
	}
	if !doc.CanCancelBy(actor) {
		return fmt.Errorf("%w: cancellation not permitted on %s %s in status %s",
			ErrPermissionDenied, def.DocType, doc.Number(), doc.CurrentStatus())
	}
	if err := doc.ApplyCancel(actor.ID, now, reason); err != nil {
		return err
	}
	doc.SetStatus(def.Canceled)
	return nil
}
