// Package access decides which workflows a user may see or change, combining creator
// ownership with per-workflow permission grants.
package access

import (
	"slices"

	"github.com/dukex/workflows-api/pkg/models"
)

// Index holds, for each permission type, the ids of the workflows a user holds that grant on.
// Every known type is present, possibly with an empty set.
type Index map[models.PermissionType]map[string]struct{}

// NewIndex groups grants by permission type. Grants with unknown types are ignored.
func NewIndex(grants []*models.Permission) Index {
	index := make(Index, len(models.PermissionTypes))
	for _, permissionType := range models.PermissionTypes {
		index[permissionType] = make(map[string]struct{})
	}

	for _, grant := range grants {
		workflowIDs, ok := index[grant.Type]
		if !ok {
			continue
		}

		workflowIDs[grant.WorkflowID] = struct{}{}
	}

	return index
}

// Has reports whether the index holds a grant of the given type on the workflow.
func (i Index) Has(permissionType models.PermissionType, workflowID string) bool {
	_, ok := i[permissionType][workflowID]

	return ok
}

// WorkflowIDs returns the sorted ids of workflows granted with the given type.
func (i Index) WorkflowIDs(permissionType models.PermissionType) []string {
	ids := make([]string, 0, len(i[permissionType]))
	for id := range i[permissionType] {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}
