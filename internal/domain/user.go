package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Entity carries the lifecycle columns shared by users, groups and permissions.
// Deleted is derived from DeletedAt: GORM excludes soft-deleted rows from default queries.
type Entity struct {
	ID        string         `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Active    bool           `gorm:"not null" json:"active"`
	CreatedAt time.Time      `gorm:"autoCreateTime:false;not null" json:"createdAt"`
	UpdatedAt *time.Time     `gorm:"autoUpdateTime:false" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (e Entity) Deleted() bool { return e.DeletedAt.Valid }

type User struct {
	Entity
	// Not a unique index: deleted users keep their address and it may be reused.
	Email string `gorm:"size:191;not null;index" json:"email"`

	Groups []Group `gorm:"-" json:"groups"`
}

func (User) TableName() string { return "users" }

// UserFilter narrows user counts and listings.
type UserFilter struct {
	WithDeleted bool
	OnlyActive  bool
	EmailLike   string
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	// FindByID returns nil, nil when no live user has the id.
	FindByID(ctx context.Context, id string) (*User, error)
	// FindAnyByID also returns soft-deleted users.
	FindAnyByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// EmailTaken reports whether a live user other than exceptID owns email.
	EmailTaken(ctx context.Context, email, exceptID string) (bool, error)
	List(ctx context.Context, f UserFilter, offset, limit int) ([]User, int64, error)
	Count(ctx context.Context, f UserFilter) (int64, error)
	Update(ctx context.Context, u *User) error
	SoftDelete(ctx context.Context, u *User) error
	// Purge physically removes the row, bypassing the soft-delete filter.
	Purge(ctx context.Context, id string) error
}
