package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"userhub/internal/domain"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Group{},
		&domain.Permission{},
		&domain.Membership{},
		&domain.Grant{},
	)
}

// Seed loads the demo directory when the users table is empty (deleted rows included).
// It reports whether anything was written.
func Seed(ctx context.Context, db *gorm.DB) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Unscoped().Model(&domain.User{}).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	now := time.Now().UTC()
	entity := func() domain.Entity { return domain.Entity{Active: true, CreatedAt: now} }

	groups := map[string]*domain.Group{
		"Admin":   {Entity: entity(), Name: "Admin"},
		"Level 1": {Entity: entity(), Name: "Level 1"},
		"Level 2": {Entity: entity(), Name: "Level 2"},
	}
	perms := map[string]*domain.Permission{
		"ManageUsers":  {Entity: entity(), Name: "ManageUsers"},
		"ReadReports":  {Entity: entity(), Name: "ReadReports"},
		"WriteReports": {Entity: entity(), Name: "WriteReports"},
	}
	users := []struct {
		email  string
		groups []string
	}{
		{"admin@example.com", []string{"Admin"}},
		{"user1@example.com", []string{"Admin", "Level 1"}},
		{"user2@example.com", []string{"Level 2"}},
	}
	grants := map[string][]string{
		"Admin":   {"ManageUsers", "ReadReports", "WriteReports"},
		"Level 1": {"ReadReports"},
		"Level 2": {"ReadReports", "WriteReports"},
	}

	err := NewStore(db).InTx(ctx, func(tx domain.Store) error {
		for _, g := range groups {
			if err := tx.Groups().Create(ctx, g); err != nil {
				return fmt.Errorf("seed group %s: %w", g.Name, err)
			}
		}
		for _, p := range perms {
			if err := tx.Permissions().Create(ctx, p); err != nil {
				return fmt.Errorf("seed permission %s: %w", p.Name, err)
			}
		}
		for gname, pnames := range grants {
			for _, pname := range pnames {
				if err := tx.Grants().Add(ctx, groups[gname].ID, perms[pname].ID); err != nil {
					return fmt.Errorf("seed grant %s/%s: %w", gname, pname, err)
				}
			}
		}
		for _, su := range users {
			u := &domain.User{Entity: entity(), Email: su.email}
			if err := tx.Users().Create(ctx, u); err != nil {
				return fmt.Errorf("seed user %s: %w", su.email, err)
			}
			ids := make([]string, 0, len(su.groups))
			for _, gname := range su.groups {
				ids = append(ids, groups[gname].ID)
			}
			if err := tx.Memberships().Add(ctx, u.ID, ids...); err != nil {
				return fmt.Errorf("seed memberships %s: %w", su.email, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
