package repo

import (
	"context"

	"gorm.io/gorm"

	"userhub/internal/domain"
)

// Store binds every repository to the same *gorm.DB, which is either the pool or an open transaction.
type Store struct{ db *gorm.DB }

var _ domain.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Users() domain.UserRepository             { return NewUserRepo(s.db) }
func (s *Store) Groups() domain.GroupRepository           { return NewGroupRepo(s.db) }
func (s *Store) Permissions() domain.PermissionRepository { return NewPermissionRepo(s.db) }
func (s *Store) Memberships() domain.MembershipRepository { return NewMembershipRepo(s.db) }
func (s *Store) Grants() domain.GrantRepository           { return NewGrantRepo(s.db) }

// InTx commits when fn returns nil and rolls back otherwise, including on panic.
func (s *Store) InTx(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
