package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Zymart/shopbot-backend/pkg/enums"
	pkgerrors "github.com/Zymart/shopbot-backend/pkg/errors"
)

func newAuthzFixture(t *testing.T) Service {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS admin_grants (
  user_id TEXT PRIMARY KEY,
  role TEXT NOT NULL,
  granted_by TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)

	svc, err := NewService(conn, "owner-1")
	require.NoError(t, err)
	return svc
}

func TestOwnerIsImplicit(t *testing.T) {
	svc := newAuthzFixture(t)
	ctx := context.Background()

	role, ok, err := svc.RoleOf(ctx, "owner-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, enums.AdminRoleOwner, role)
	assert.True(t, svc.IsOwner("owner-1"))
	assert.False(t, svc.IsOwner("someone"))

	isAdmin, err := svc.IsAdmin(ctx, "owner-1")
	require.NoError(t, err)
	assert.True(t, isAdmin)

	_, ok, err = svc.RoleOf(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGrantHierarchy(t *testing.T) {
	svc := newAuthzFixture(t)
	ctx := context.Background()

	// Only the owner can mint admins.
	_, err := svc.Grant(ctx, "user-1", enums.AdminRoleAdmin, "user-2")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	grant, err := svc.Grant(ctx, "user-1", enums.AdminRoleAdmin, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, enums.AdminRoleAdmin, grant.Role)

	// Admins can mint moderators.
	_, err = svc.Grant(ctx, "user-2", enums.AdminRoleModerator, "user-1")
	require.NoError(t, err)

	// But moderators cannot mint anyone.
	_, err = svc.Grant(ctx, "user-3", enums.AdminRoleModerator, "user-2")
	require.Error(t, err)

	// And admins cannot mint admins.
	_, err = svc.Grant(ctx, "user-3", enums.AdminRoleAdmin, "user-1")
	require.Error(t, err)

	// Owner role is never grantable.
	_, err = svc.Grant(ctx, "user-3", enums.AdminRoleOwner, "owner-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestRequire(t *testing.T) {
	svc := newAuthzFixture(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, "mod-1", enums.AdminRoleModerator, "owner-1")
	require.NoError(t, err)

	require.NoError(t, svc.Require(ctx, "mod-1", enums.AdminRoleModerator))
	err = svc.Require(ctx, "mod-1", enums.AdminRoleAdmin)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	err = svc.Require(ctx, "ordinary", enums.AdminRoleModerator)
	require.Error(t, err)
}

func TestRevoke(t *testing.T) {
	svc := newAuthzFixture(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, "user-1", enums.AdminRoleAdmin, "owner-1")
	require.NoError(t, err)

	// Admins cannot revoke.
	err = svc.Revoke(ctx, "user-1", "user-1")
	require.Error(t, err)

	require.NoError(t, svc.Revoke(ctx, "user-1", "owner-1"))

	_, ok, err := svc.RoleOf(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	err = svc.Revoke(ctx, "user-1", "owner-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	err = svc.Revoke(ctx, "owner-1", "owner-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestGrantUpdatesExistingRole(t *testing.T) {
	svc := newAuthzFixture(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, "user-1", enums.AdminRoleModerator, "owner-1")
	require.NoError(t, err)
	_, err = svc.Grant(ctx, "user-1", enums.AdminRoleAdmin, "owner-1")
	require.NoError(t, err)

	role, ok, err := svc.RoleOf(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, enums.AdminRoleAdmin, role)

	grants, err := svc.ListGrants(ctx)
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}
