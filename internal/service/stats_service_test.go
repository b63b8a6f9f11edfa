package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/domain"
	"userhub/internal/service"
)

func TestUserCountPerGroup(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.users.Create(ctx, "p1@example.com", []string{e.gid("A"), e.gid("B")})
	require.NoError(t, err)
	gone, err := e.users.Create(ctx, "p2@example.com", []string{e.gid("A")})
	require.NoError(t, err)
	require.NoError(t, e.users.Delete(ctx, gone.ID))
	require.NoError(t, e.store.DB().Delete(e.fx.Groups["B"]).Error)

	m, err := e.stats.UserCountPerGroupByName(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"A": 1, "C": 0}, m)

	rows, err := e.stats.UserCountPerGroup(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.GroupUserCount{GroupID: e.gid("C"), GroupName: "C", UserCount: 0}, rows[1])

	n, err := e.stats.UserCountForGroup(ctx, e.gid("A"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = e.stats.UserCountForGroup(ctx, e.gid("B"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatisticsCounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.users.Create(ctx, "s1@example.com", nil)
	require.NoError(t, err)
	idle, err := e.users.Create(ctx, "s2@example.com", nil)
	require.NoError(t, err)
	_, err = e.users.Edit(ctx, idle.ID, service.EditUserInput{Active: boolp(false)})
	require.NoError(t, err)
	gone, err := e.users.Create(ctx, "s3@example.com", nil)
	require.NoError(t, err)
	require.NoError(t, e.users.Delete(ctx, gone.ID))

	st, err := e.stats.Statistics(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, st.TotalUsers)
	assert.EqualValues(t, 1, st.ActiveUsers)
	assert.EqualValues(t, 1, st.InactiveUsers)
	assert.EqualValues(t, 1, st.DeletedUsers)
	assert.EqualValues(t, 3, st.TotalIncludingDeleted)
	assert.Equal(t, map[string]int64{"A": 0, "B": 0, "C": 0}, st.UsersPerGroup)
}

// create {A,B} → edit to {C} → delete; the user ends up counted only as deleted.
func TestLifecycleWorkflow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.users.Create(ctx, "bystander@example.com", []string{e.gid("A")})
	require.NoError(t, err)
	before, err := e.stats.Statistics(ctx)
	require.NoError(t, err)

	u, err := e.users.Create(ctx, "flow@example.com", []string{e.gid("A"), e.gid("B")})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, groupNames(u.Groups))

	u, err = e.users.Edit(ctx, u.ID, service.EditUserInput{GroupIDs: []string{e.gid("C")}})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, groupNames(u.Groups))

	mid, err := e.stats.UserCountPerGroupByName(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"A": 1, "B": 0, "C": 1}, mid)

	require.NoError(t, e.users.Delete(ctx, u.ID))

	after, err := e.stats.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.TotalUsers, after.TotalUsers)
	assert.Equal(t, before.ActiveUsers, after.ActiveUsers)
	assert.Equal(t, before.DeletedUsers+1, after.DeletedUsers)
	assert.Equal(t, before.TotalIncludingDeleted+1, after.TotalIncludingDeleted)
	assert.Equal(t, before.UsersPerGroup, after.UsersPerGroup)
}
