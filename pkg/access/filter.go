package access

import (
	"slices"

	"github.com/dukex/workflows-api/pkg/models"
)

// Intent is the operation a caller wants to perform on a workflow.
type Intent string

const (
	IntentView   Intent = "view"
	IntentEdit   Intent = "edit"
	IntentDelete Intent = "delete"
)

// grantTypes returns the grant types that satisfy an intent. View is implied by any grant;
// edit and delete only by themselves.
func (i Intent) grantTypes() []models.PermissionType {
	switch i {
	case IntentView:
		return []models.PermissionType{models.PermissionView, models.PermissionEdit, models.PermissionDelete}
	case IntentEdit:
		return []models.PermissionType{models.PermissionEdit}
	case IntentDelete:
		return []models.PermissionType{models.PermissionDelete}
	default:
		return nil
	}
}

// Filter is the predicate a workflow must satisfy to be visible to a user for an intent:
// the user created it, or its id is in the granted set. Unknown intents fall back to
// ownership only.
type Filter struct {
	UserID string
	Intent Intent

	workflowIDs map[string]struct{}
}

// NewFilter builds the filter for the user's index and intent.
func NewFilter(userID string, index Index, intent Intent) Filter {
	workflowIDs := make(map[string]struct{})

	for _, permissionType := range intent.grantTypes() {
		for id := range index[permissionType] {
			workflowIDs[id] = struct{}{}
		}
	}

	return Filter{
		UserID:      userID,
		Intent:      intent,
		workflowIDs: workflowIDs,
	}
}

// Matches reports whether the workflow satisfies the filter.
func (f Filter) Matches(workflow *models.Workflow) bool {
	if workflow == nil {
		return false
	}

	if f.UserID != "" && workflow.CreatedBy == f.UserID {
		return true
	}

	_, ok := f.workflowIDs[workflow.ID]

	return ok
}

// WorkflowIDs returns the sorted ids granted to the user for the filter's intent.
func (f Filter) WorkflowIDs() []string {
	ids := make([]string, 0, len(f.workflowIDs))
	for id := range f.workflowIDs {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}
