package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
)

func newTestUserService(t *testing.T) (*UserService, *memoryUserRepo, events.Dispatcher) {
	t.Helper()
	users := newMemoryUserRepo()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	return NewUserService(users, dispatcher, zap.NewNop()), users, dispatcher
}

func seedUser(t *testing.T, svc *UserService, name, email string, roles []domain.Role) *domain.User {
	t.Helper()
	user, err := svc.AdminCreate(context.Background(), name, email, "password", roles, nil)
	require.NoError(t, err)
	return user
}

func TestGetBatchSkipsUnknownIDs(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	alice := seedUser(t, svc, "Alice", "alice@example.com", []domain.Role{domain.RoleUser})
	bob := seedUser(t, svc, "Bob", "bob@example.com", []domain.Role{domain.RoleUser})

	users := svc.GetBatch(context.Background(), []string{alice.ID, "missing", bob.ID})
	require.Len(t, users, 2)
	assert.Equal(t, alice.ID, users[0].ID)
	assert.Equal(t, bob.ID, users[1].ID)
}

func TestUpdateCannotTouchRoles(t *testing.T) {
	svc, users, _ := newTestUserService(t)
	alice := seedUser(t, svc, "Alice", "alice@example.com", []domain.Role{domain.RoleUser})

	name := "Alicia"
	updated, err := svc.Update(context.Background(), alice.ID, UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)

	stored, err := users.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RoleUser}, stored.Roles)
}

func TestAdminUpdateReplacesRoleSet(t *testing.T) {
	svc, users, dispatcher := newTestUserService(t)
	alice := seedUser(t, svc, "Alice", "alice@example.com", []domain.Role{domain.RoleUser})

	var changed *events.RolesChangedPayload
	dispatcher.Subscribe(events.EventRolesChanged, func(_ context.Context, event events.Event) error {
		payload := event.Payload.(events.RolesChangedPayload)
		changed = &payload
		return nil
	})

	_, err := svc.AdminUpdate(context.Background(), alice.ID, AdminUpdate{
		Roles: []domain.Role{domain.RoleUser, domain.RoleModerator},
	})
	require.NoError(t, err)

	stored, err := users.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.Role{domain.RoleUser, domain.RoleModerator}, stored.Roles)

	require.NotNil(t, changed)
	assert.Equal(t, []domain.Role{domain.RoleUser}, changed.OldRoles)
}

func TestAdminUpdateRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	alice := seedUser(t, svc, "Alice", "alice@example.com", []domain.Role{domain.RoleUser})

	_, err := svc.AdminUpdate(context.Background(), alice.ID, AdminUpdate{
		Roles: []domain.Role{domain.Role("ROOT")},
	})
	assert.Error(t, err)
}

func TestAdminCreateRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	_, err := svc.AdminCreate(context.Background(), "Eve", "eve@example.com", "pw", []domain.Role{domain.Role("ROOT")}, nil)
	assert.Error(t, err)
}

func TestDeletePublishesEvent(t *testing.T) {
	svc, users, dispatcher := newTestUserService(t)
	alice := seedUser(t, svc, "Alice", "alice@example.com", []domain.Role{domain.RoleUser})

	var deleted bool
	dispatcher.Subscribe(events.EventUserDeleted, func(_ context.Context, _ events.Event) error {
		deleted = true
		return nil
	})

	require.NoError(t, svc.Delete(context.Background(), alice.ID))
	assert.True(t, deleted)

	_, err := users.GetByID(context.Background(), alice.ID)
	assert.Error(t, err)
}
