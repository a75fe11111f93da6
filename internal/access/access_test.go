package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
)

func Test_Role_Allows(t *testing.T) {
	cases := []struct {
		role    Role
		allowed []Action
		denied  []Action
	}{
		{RoleViewer, []Action{ActionView}, []Action{ActionEdit, ActionApprove, ActionReview}},
		{RoleEditor, []Action{ActionView, ActionEdit}, []Action{ActionApprove, ActionReview}},
		{RoleApprover, []Action{ActionView, ActionEdit, ActionApprove}, []Action{ActionReview}},
		{RoleLead, []Action{ActionView, ActionEdit, ActionApprove, ActionReview}, nil},
	}
	for _, tc := range cases {
		for _, a := range tc.allowed {
			assert.True(t, tc.role.Allows(a), "%s should allow %s", tc.role, a)
		}
		for _, a := range tc.denied {
			assert.False(t, tc.role.Allows(a), "%s should deny %s", tc.role, a)
		}
	}
}

func Test_Membership_Allows(t *testing.T) {
	m := &Membership{Role: RoleLead, Active: true}
	assert.True(t, m.Allows(ActionReview))

	m.Active = false
	assert.False(t, m.Allows(ActionView), "inactive membership grants nothing")

	var nilMembership *Membership
	assert.False(t, nilMembership.Allows(ActionView))
}

func Test_InMemoryDirectory(t *testing.T) {
	ctx := context.Background()
	dir := NewInMemoryDirectory()
	user := id.NewUserID()
	projectA := id.NewProjectID()
	projectB := id.NewProjectID()

	t.Run("missing membership returns not found", func(t *testing.T) {
		_, err := dir.Membership(ctx, user, projectA)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("grant then lookup", func(t *testing.T) {
		dir.Grant(user, projectA, RoleEditor)
		m, err := dir.Membership(ctx, user, projectA)
		require.NoError(t, err)
		assert.Equal(t, RoleEditor, m.Role)
		assert.True(t, m.Active)
	})

	t.Run("grant replaces the prior role", func(t *testing.T) {
		dir.Grant(user, projectA, RoleLead)
		m, err := dir.Membership(ctx, user, projectA)
		require.NoError(t, err)
		assert.Equal(t, RoleLead, m.Role)
	})

	t.Run("list returns only active memberships", func(t *testing.T) {
		dir.Grant(user, projectB, RoleViewer)
		projects, err := dir.ListProjects(ctx, user)
		require.NoError(t, err)
		assert.ElementsMatch(t, []id.ProjectID{projectA, projectB}, projects)

		dir.Deactivate(user, projectB)
		projects, err = dir.ListProjects(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []id.ProjectID{projectA}, projects)
	})

	t.Run("deactivated membership still resolves but grants nothing", func(t *testing.T) {
		m, err := dir.Membership(ctx, user, projectB)
		require.NoError(t, err)
		assert.False(t, m.Active)
		assert.False(t, m.Allows(ActionView))
	})
}
