package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/domain"
)

func permNames(ps []domain.Permission) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestAddPermission_TwiceConflicts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	d, err := e.groups.AddPermission(ctx, e.gid("A"), e.pid("Read"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Read"}, permNames(d.Permissions))
	require.NotNil(t, d.UpdatedAt)

	_, err = e.groups.AddPermission(ctx, e.gid("A"), e.pid("Read"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "Permission 'Read' is already assigned to group 'A'", err.Error())
}

func TestAddPermission_MissingOrDeletedTargets(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.groups.AddPermission(ctx, "nope", e.pid("Read"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.groups.AddPermission(ctx, e.gid("A"), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, e.store.DB().Delete(e.fx.Permissions["Write"]).Error)
	_, err = e.groups.AddPermission(ctx, e.gid("A"), e.pid("Write"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, e.store.DB().Delete(e.fx.Groups["C"]).Error)
	_, err = e.groups.AddPermission(ctx, e.gid("C"), e.pid("Read"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemovePermission(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.groups.AddPermission(ctx, e.gid("A"), e.pid("Read"))
	require.NoError(t, err)
	_, err = e.groups.AddPermission(ctx, e.gid("A"), e.pid("Write"))
	require.NoError(t, err)
	before, err := e.groups.Get(ctx, e.gid("A"))
	require.NoError(t, err)

	d, err := e.groups.RemovePermission(ctx, e.gid("A"), e.pid("Read"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Write"}, permNames(d.Permissions))
	require.NotNil(t, d.UpdatedAt)
	assert.True(t, d.UpdatedAt.After(*before.UpdatedAt))

	_, err = e.groups.RemovePermission(ctx, e.gid("A"), e.pid("Read"))
	assert.ErrorIs(t, err, domain.ErrNotFound, "not assigned any more")
	_, err = e.groups.RemovePermission(ctx, "nope", e.pid("Write"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListAvailablePermissions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	ps, err := e.groups.ListAvailablePermissions(ctx, e.gid("B"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin", "Read", "Write"}, permNames(ps))

	_, err = e.groups.AddPermission(ctx, e.gid("B"), e.pid("Read"))
	require.NoError(t, err)
	require.NoError(t, e.store.DB().Delete(e.fx.Permissions["Admin"]).Error)

	ps, err = e.groups.ListAvailablePermissions(ctx, e.gid("B"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Write"}, permNames(ps))

	_, err = e.groups.ListAvailablePermissions(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGroupDetailListsLiveMembers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	live, err := e.users.Create(ctx, "live@example.com", []string{e.gid("A")})
	require.NoError(t, err)
	gone, err := e.users.Create(ctx, "gone@example.com", []string{e.gid("A")})
	require.NoError(t, err)
	require.NoError(t, e.users.Delete(ctx, gone.ID))

	d, err := e.groups.Get(ctx, e.gid("A"))
	require.NoError(t, err)
	require.Len(t, d.Users, 1)
	assert.Equal(t, live.ID, d.Users[0].ID)
	assert.Empty(t, d.Permissions)

	gs, err := e.groups.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, groupNames(gs))

	all, err := e.groups.ListPermissions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin", "Read", "Write"}, permNames(all))
}
