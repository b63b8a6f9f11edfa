// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"userhub/internal/core/database"
	"userhub/internal/domain"
	"userhub/internal/repo"
	"userhub/pkg/utils"
)

// OpenDB returns a migrated in-memory SQLite database private to t.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          "file:" + utils.NewID() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// OpenStore is OpenDB wrapped in a repo.Store.
func OpenStore(t testing.TB) *repo.Store {
	return repo.NewStore(OpenDB(t))
}

// Clock ticks forward by step on every call, starting at start.
func Clock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}

// Fixture is a small directory created directly through the repositories.
type Fixture struct {
	Groups      map[string]*domain.Group
	Permissions map[string]*domain.Permission
}

// Seed creates the named live groups and permissions.
func Seed(t testing.TB, st domain.Store, groups, perms []string) Fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := Fixture{Groups: map[string]*domain.Group{}, Permissions: map[string]*domain.Permission{}}
	for _, n := range groups {
		g := &domain.Group{Entity: domain.Entity{Active: true, CreatedAt: now}, Name: n}
		require.NoError(t, st.Groups().Create(ctx, g))
		f.Groups[n] = g
	}
	for _, n := range perms {
		p := &domain.Permission{Entity: domain.Entity{Active: true, CreatedAt: now}, Name: n}
		require.NoError(t, st.Permissions().Create(ctx, p))
		f.Permissions[n] = p
	}
	return f
}
