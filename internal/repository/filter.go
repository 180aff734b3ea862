package repository

import (
	"backend/internal/workflow"

	"github.com/google/uuid"
)

// DocumentFilter narrows document list queries. Zero values mean "no
// constraint"; Page/Limit of zero disables pagination.
type DocumentFilter struct {
	Statuses        []workflow.Status
	ExcludeStatuses []workflow.Status
	CreatedBy       *uuid.UUID
	Page            int
	Limit           int
}

func statusStrings(statuses []workflow.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
