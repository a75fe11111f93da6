// Package access is the engine's access-control collaborator boundary. The
// engine queries it per call as a precondition for every guarded transition;
// it never owns or caches role data. Directory is injected as a dependency
// into each service, never global state.
package access

import (
	"context"

	id "verdict/pkg/domain"
)

// Action is a permitted operation class on a project.
type Action string

const (
	ActionView    Action = "view"
	ActionEdit    Action = "edit"
	ActionApprove Action = "approve"
	ActionReview  Action = "review"
)

// Role is a project-level role granted to a member. Roles map to action
// sets; the review threshold is deliberately above edit.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleEditor   Role = "editor"
	RoleApprover Role = "approver"
	RoleLead     Role = "lead"
)

var roleActions = map[Role]map[Action]bool{
	RoleViewer: {
		ActionView: true,
	},
	RoleEditor: {
		ActionView: true,
		ActionEdit: true,
	},
	RoleApprover: {
		ActionView:    true,
		ActionEdit:    true,
		ActionApprove: true,
	},
	RoleLead: {
		ActionView:    true,
		ActionEdit:    true,
		ActionApprove: true,
		ActionReview:  true,
	},
}

// Allows reports whether the role grants the action.
func (r Role) Allows(a Action) bool {
	return roleActions[r][a]
}

// Membership is one (user, project) role assignment. Inactive memberships
// grant nothing.
type Membership struct {
	UserID    id.UserID
	ProjectID id.ProjectID
	Role      Role
	Active    bool
}

// Allows reports whether this membership permits the action.
func (m *Membership) Allows(a Action) bool {
	return m != nil && m.Active && m.Role.Allows(a)
}

// Directory resolves (user, project) to a membership. Implementations are
// expected to be fast local reads; the engine treats lookups as
// non-blocking preconditions.
type Directory interface {
	// Membership returns the caller's membership in the project, or
	// sentinel.ErrNotFound when the user has none.
	Membership(ctx context.Context, userID id.UserID, projectID id.ProjectID) (*Membership, error)
	// ListProjects returns the projects where the user holds an active
	// membership.
	ListProjects(ctx context.Context, userID id.UserID) ([]id.ProjectID, error)
}
