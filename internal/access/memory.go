package access

import (
	"context"
	"sync"

	id "verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
)

type membershipKey struct {
	user    id.UserID
	project id.ProjectID
}

// InMemoryDirectory is a map-backed Directory for development wiring and
// tests. Production deployments adapt the real membership service behind the
// same interface.
type InMemoryDirectory struct {
	mu          sync.RWMutex
	memberships map[membershipKey]*Membership
}

func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{memberships: make(map[membershipKey]*Membership)}
}

// Grant adds or replaces an active membership.
func (d *InMemoryDirectory) Grant(userID id.UserID, projectID id.ProjectID, role Role) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.memberships[membershipKey{userID, projectID}] = &Membership{
		UserID:    userID,
		ProjectID: projectID,
		Role:      role,
		Active:    true,
	}
}

// Deactivate marks an existing membership inactive without removing it.
func (d *InMemoryDirectory) Deactivate(userID id.UserID, projectID id.ProjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := d.memberships[membershipKey{userID, projectID}]; ok {
		m.Active = false
	}
}

func (d *InMemoryDirectory) Membership(_ context.Context, userID id.UserID, projectID id.ProjectID) (*Membership, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.memberships[membershipKey{userID, projectID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (d *InMemoryDirectory) ListProjects(_ context.Context, userID id.UserID) ([]id.ProjectID, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var projects []id.ProjectID
	for key, m := range d.memberships {
		if key.user == userID && m.Active {
			projects = append(projects, key.project)
		}
	}
	return projects, nil
}
