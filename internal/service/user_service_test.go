package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"userhub/internal/domain"
	"userhub/internal/repo"
	"userhub/internal/service"
	"userhub/internal/testutil"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	store  *repo.Store
	users  *service.UserService
	groups *service.GroupService
	stats  *service.StatsService
	fx     testutil.Fixture
}

func newEnv(t *testing.T) env {
	t.Helper()
	st := testutil.OpenStore(t)
	clock := testutil.Clock(t0, time.Minute)
	log := zaptest.NewLogger(t)
	return env{
		store:  st,
		users:  service.NewUserService(st, log).WithClock(clock),
		groups: service.NewGroupService(st, log).WithClock(clock),
		stats:  service.NewStatsService(st),
		fx:     testutil.Seed(t, st, []string{"A", "B", "C"}, []string{"Read", "Write", "Admin"}),
	}
}

func (e env) gid(name string) string { return e.fx.Groups[name].ID }
func (e env) pid(name string) string { return e.fx.Permissions[name].ID }

func groupNames(gs []domain.Group) []string {
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.Name
	}
	return out
}

func strp(s string) *string { return &s }
func boolp(b bool) *bool     { return &b }

func TestCreate_BlankEmailIsValidationError(t *testing.T) {
	e := newEnv(t)
	for _, email := range []string{"", " ", "\t\n"} {
		_, err := e.users.Create(context.Background(), email, nil)
		require.Error(t, err, "email %q", email)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "Email is required", err.Error())
	}
}

func TestCreate_DefaultsAndTrim(t *testing.T) {
	e := newEnv(t)
	u, err := e.users.Create(context.Background(), "  alice@example.com ", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.True(t, u.Active)
	assert.False(t, u.Deleted())
	assert.True(t, u.CreatedAt.Equal(t0))
	assert.Nil(t, u.UpdatedAt)
	assert.Empty(t, u.Groups)

	got, err := e.users.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UpdatedAt)
	assert.True(t, got.CreatedAt.Equal(t0))
}

func TestCreate_DuplicateEmailConflict(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.users.Create(ctx, "bob@example.com", nil)
	require.NoError(t, err)

	_, err = e.users.Create(ctx, "bob@example.com", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "User with email 'bob@example.com' already exists", err.Error())
}

func TestCreate_EmailOfDeletedUserIsReusable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	old, err := e.users.Create(ctx, "carol@example.com", nil)
	require.NoError(t, err)
	require.NoError(t, e.users.Delete(ctx, old.ID))

	u, err := e.users.Create(ctx, "carol@example.com", nil)
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, u.ID)
}

func TestCreate_DropsUnknownAndDeletedGroups(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.store.DB().Delete(e.fx.Groups["B"]).Error)

	u, err := e.users.Create(ctx, "dave@example.com", []string{e.gid("A"), e.gid("B"), "no-such-group"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, groupNames(u.Groups))

	got, err := e.users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, groupNames(got.Groups))
}

func TestCreate_DuplicateGroupIDsCollapse(t *testing.T) {
	e := newEnv(t)
	u, err := e.users.Create(context.Background(), "erin@example.com", []string{e.gid("A"), e.gid("A")})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, groupNames(u.Groups))
}

func TestEdit_GroupSemantics(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, err := e.users.Create(ctx, "frank@example.com", []string{e.gid("A"), e.gid("B")})
	require.NoError(t, err)

	// omitted → untouched
	got, err := e.users.Edit(ctx, u.ID, service.EditUserInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, groupNames(got.Groups))

	// replace, filtering unknown ids
	got, err = e.users.Edit(ctx, u.ID, service.EditUserInput{GroupIDs: []string{e.gid("C"), "nope"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, groupNames(got.Groups))

	// empty → clear
	got, err = e.users.Edit(ctx, u.ID, service.EditUserInput{GroupIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, got.Groups)

	reloaded, err := e.users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Groups)
}

func TestEdit_Email(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, err := e.users.Create(ctx, "gina@example.com", nil)
	require.NoError(t, err)
	other, err := e.users.Create(ctx, "hank@example.com", nil)
	require.NoError(t, err)

	t.Run("own email is not a conflict", func(t *testing.T) {
		got, err := e.users.Edit(ctx, u.ID, service.EditUserInput{Email: strp("gina@example.com")})
		require.NoError(t, err)
		assert.Equal(t, "gina@example.com", got.Email)
	})
	t.Run("blank means no change", func(t *testing.T) {
		got, err := e.users.Edit(ctx, u.ID, service.EditUserInput{Email: strp("   ")})
		require.NoError(t, err)
		assert.Equal(t, "gina@example.com", got.Email)
	})
	t.Run("another live user's email conflicts", func(t *testing.T) {
		_, err := e.users.Edit(ctx, u.ID, service.EditUserInput{Email: strp(other.Email)})
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, "Email 'hank@example.com' is already in use", err.Error())
	})
	t.Run("deleted user's email is free", func(t *testing.T) {
		require.NoError(t, e.users.Delete(ctx, other.ID))
		got, err := e.users.Edit(ctx, u.ID, service.EditUserInput{Email: strp(other.Email)})
		require.NoError(t, err)
		assert.Equal(t, "hank@example.com", got.Email)
	})
}

func TestEdit_ActiveFlag(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, err := e.users.Create(ctx, "ivy@example.com", nil)
	require.NoError(t, err)

	got, err := e.users.Edit(ctx, u.ID, service.EditUserInput{Active: boolp(false)})
	require.NoError(t, err)
	assert.False(t, got.Active)

	got, err = e.users.Edit(ctx, u.ID, service.EditUserInput{})
	require.NoError(t, err)
	assert.False(t, got.Active, "omitted active must be left untouched")

	got, err = e.users.Edit(ctx, u.ID, service.EditUserInput{Active: boolp(true)})
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestEdit_MissingOrDeletedUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.users.Edit(ctx, "missing", service.EditUserInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	u, err := e.users.Create(ctx, "jack@example.com", nil)
	require.NoError(t, err)
	require.NoError(t, e.users.Delete(ctx, u.ID))
	_, err = e.users.Edit(ctx, u.ID, service.EditUserInput{Active: boolp(true)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEdit_FailureRollsBack(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, err := e.users.Create(ctx, "kate@example.com", []string{e.gid("A")})
	require.NoError(t, err)
	_, err = e.users.Create(ctx, "liam@example.com", nil)
	require.NoError(t, err)

	// conflict raised after nothing was written; groups stay as they were
	_, err = e.users.Edit(ctx, u.ID, service.EditUserInput{Email: strp("liam@example.com"), GroupIDs: []string{}})
	require.ErrorIs(t, err, domain.ErrConflict)

	got, err := e.users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, groupNames(got.Groups))
	assert.Nil(t, got.UpdatedAt)
}

func TestDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, err := e.users.Create(ctx, "mona@example.com", []string{e.gid("A")})
	require.NoError(t, err)

	require.NoError(t, e.users.Delete(ctx, u.ID))

	_, err = e.users.Get(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, e.users.Delete(ctx, u.ID), domain.ErrNotFound, "second delete must fail")
	assert.ErrorIs(t, e.users.Delete(ctx, "unknown"), domain.ErrNotFound)

	// row retained, reachable only when bypassing the filter
	row, err := e.store.Users().FindAnyByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.True(t, row.Deleted())
	assert.False(t, row.Active)
	require.NotNil(t, row.UpdatedAt)
	assert.True(t, row.UpdatedAt.After(row.CreatedAt))
}

func TestTimestampsAreMonotonic(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, err := e.users.Create(ctx, "nina@example.com", nil)
	require.NoError(t, err)
	created := u.CreatedAt

	var last time.Time
	for i := 0; i < 3; i++ {
		got, err := e.users.Edit(ctx, u.ID, service.EditUserInput{Active: boolp(i%2 == 0)})
		require.NoError(t, err)
		require.NotNil(t, got.UpdatedAt)
		assert.True(t, got.CreatedAt.Equal(created), "createdAt must never change")
		assert.False(t, got.UpdatedAt.Before(created))
		assert.False(t, got.UpdatedAt.Before(last))
		last = *got.UpdatedAt
	}
	require.NoError(t, e.users.Delete(ctx, u.ID))
	row, err := e.store.Users().FindAnyByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, row.CreatedAt.Equal(created))
	assert.False(t, row.UpdatedAt.Before(last))
}

func TestSearchAndPurge(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, err := e.users.Create(ctx, "ops-a@example.com", []string{e.gid("A")})
	require.NoError(t, err)
	b, err := e.users.Create(ctx, "ops-b@example.com", nil)
	require.NoError(t, err)
	_, err = e.users.Create(ctx, "other@example.com", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, e.users.Purge(ctx, a.ID), domain.ErrNotFound, "live users cannot be purged")
	require.NoError(t, e.users.Delete(ctx, a.ID))

	us, total, err := e.users.Search(ctx, domain.UserFilter{EmailLike: "ops-"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, us, 1)
	assert.Equal(t, b.ID, us[0].ID)

	us, total, err = e.users.Search(ctx, domain.UserFilter{EmailLike: "ops-", WithDeleted: true}, 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, us, 1)
	assert.Equal(t, a.ID, us[0].ID)
	assert.Equal(t, []string{"A"}, groupNames(us[0].Groups))

	require.NoError(t, e.users.Purge(ctx, a.ID))
	row, err := e.store.Users().FindAnyByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, row)
	assert.ErrorIs(t, e.users.Purge(ctx, a.ID), domain.ErrNotFound)
}

func TestListReturnsLiveUsersWithGroups(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, err := e.users.Create(ctx, "o1@example.com", []string{e.gid("B"), e.gid("A")})
	require.NoError(t, err)
	d, err := e.users.Create(ctx, "o2@example.com", nil)
	require.NoError(t, err)
	require.NoError(t, e.users.Delete(ctx, d.ID))

	us, err := e.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, us, 1)
	assert.Equal(t, a.ID, us[0].ID)
	assert.Equal(t, []string{"A", "B"}, groupNames(us[0].Groups))
}
