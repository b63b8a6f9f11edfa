package domain

import "context"

type Group struct {
	Entity
	Name string `gorm:"size:128;not null" json:"name"`
}

func (Group) TableName() string { return "access_groups" }

type Permission struct {
	Entity
	Name string `gorm:"size:128;not null" json:"name"`
}

func (Permission) TableName() string { return "permissions" }

// Membership is one (user, group) edge. The composite key keeps pairs unique.
type Membership struct {
	UserID  string `gorm:"primaryKey;type:varchar(32)"`
	GroupID string `gorm:"primaryKey;type:varchar(32);index"`
}

func (Membership) TableName() string { return "group_members" }

// Grant is one (group, permission) edge.
type Grant struct {
	GroupID      string `gorm:"primaryKey;type:varchar(32)"`
	PermissionID string `gorm:"primaryKey;type:varchar(32);index"`
}

func (Grant) TableName() string { return "group_permissions" }

// GroupUserCount is the number of live users in one live group.
type GroupUserCount struct {
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
	UserCount int64  `json:"userCount"`
}

type GroupRepository interface {
	Create(ctx context.Context, g *Group) error
	FindByID(ctx context.Context, id string) (*Group, error)
	// FindByIDs returns the live groups among ids; unknown and deleted ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]Group, error)
	List(ctx context.Context) ([]Group, error)
	Update(ctx context.Context, g *Group) error
}

type PermissionRepository interface {
	Create(ctx context.Context, p *Permission) error
	FindByID(ctx context.Context, id string) (*Permission, error)
	// List returns live permissions ordered by name, minus the excluded ids.
	List(ctx context.Context, exclude ...string) ([]Permission, error)
}

// MembershipRepository is the explicit user/group join table.
type MembershipRepository interface {
	Add(ctx context.Context, userID string, groupIDs ...string) error
	RemoveAll(ctx context.Context, userID string) error
	// GroupsOf lists the live groups of a user, ordered by name.
	GroupsOf(ctx context.Context, userID string) ([]Group, error)
	// GroupsOfMany is GroupsOf for a batch of users, keyed by user id.
	GroupsOfMany(ctx context.Context, userIDs []string) (map[string][]Group, error)
	// UsersOf lists the live users of a group.
	UsersOf(ctx context.Context, groupID string) ([]User, error)
	CountPerGroup(ctx context.Context) ([]GroupUserCount, error)
	CountForGroup(ctx context.Context, groupID string) (int64, error)
}

// GrantRepository is the explicit group/permission join table.
type GrantRepository interface {
	Add(ctx context.Context, groupID, permissionID string) error
	// Remove reports whether an edge was deleted.
	Remove(ctx context.Context, groupID, permissionID string) (bool, error)
	Has(ctx context.Context, groupID, permissionID string) (bool, error)
	// PermissionsOf lists live permissions granted to a group, ordered by name.
	PermissionsOf(ctx context.Context, groupID string) ([]Permission, error)
}

// Store hands out repositories bound to one connection or transaction.
type Store interface {
	Users() UserRepository
	Groups() GroupRepository
	Permissions() PermissionRepository
	Memberships() MembershipRepository
	Grants() GrantRepository
	// InTx runs fn against a transaction-scoped Store; a returned error rolls back.
	InTx(ctx context.Context, fn func(tx Store) error) error
}
