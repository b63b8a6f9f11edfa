package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"userhub/internal/domain"
)

type MembershipRepo struct{ db *gorm.DB }

func NewMembershipRepo(db *gorm.DB) *MembershipRepo { return &MembershipRepo{db: db} }

// Add inserts (user, group) pairs; pairs that already exist are left alone.
func (r *MembershipRepo) Add(ctx context.Context, userID string, groupIDs ...string) error {
	if len(groupIDs) == 0 {
		return nil
	}
	rows := make([]domain.Membership, 0, len(groupIDs))
	seen := make(map[string]struct{}, len(groupIDs))
	for _, gid := range groupIDs {
		if _, dup := seen[gid]; dup {
			continue
		}
		seen[gid] = struct{}{}
		rows = append(rows, domain.Membership{UserID: userID, GroupID: gid})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *MembershipRepo) RemoveAll(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Membership{}).Error
}

func (r *MembershipRepo) GroupsOf(ctx context.Context, userID string) ([]domain.Group, error) {
	var gs []domain.Group
	err := r.db.WithContext(ctx).Model(&domain.Group{}).
		Joins("JOIN group_members m ON m.group_id = access_groups.id").
		Where("m.user_id = ?", userID).
		Order("access_groups.name").
		Find(&gs).Error
	return gs, err
}

func (r *MembershipRepo) GroupsOfMany(ctx context.Context, userIDs []string) (map[string][]domain.Group, error) {
	out := make(map[string][]domain.Group, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	type row struct {
		UserID string
		domain.Group
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.Group{}).
		Select("m.user_id AS user_id, access_groups.*").
		Joins("JOIN group_members m ON m.group_id = access_groups.id").
		Where("m.user_id IN ?", userIDs).
		Order("access_groups.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		out[rw.UserID] = append(out[rw.UserID], rw.Group)
	}
	return out, nil
}

func (r *MembershipRepo) UsersOf(ctx context.Context, groupID string) ([]domain.User, error) {
	var us []domain.User
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Joins("JOIN group_members m ON m.user_id = users.id").
		Where("m.group_id = ?", groupID).
		Order("users.email").
		Find(&us).Error
	return us, err
}

// CountPerGroup counts live users per live group. Empty groups report zero.
func (r *MembershipRepo) CountPerGroup(ctx context.Context) ([]domain.GroupUserCount, error) {
	var rows []domain.GroupUserCount
	err := r.db.WithContext(ctx).Table("access_groups AS g").
		Select("g.id AS group_id, g.name AS group_name, COUNT(u.id) AS user_count").
		Joins("LEFT JOIN group_members m ON m.group_id = g.id").
		Joins("LEFT JOIN users u ON u.id = m.user_id AND u.deleted_at IS NULL").
		Where("g.deleted_at IS NULL").
		Group("g.id, g.name").
		Order("g.name").
		Scan(&rows).Error
	return rows, err
}

func (r *MembershipRepo) CountForGroup(ctx context.Context, groupID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("group_members AS m").
		Joins("JOIN users u ON u.id = m.user_id AND u.deleted_at IS NULL").
		Where("m.group_id = ?", groupID).
		Count(&n).Error
	return n, err
}

type GrantRepo struct{ db *gorm.DB }

func NewGrantRepo(db *gorm.DB) *GrantRepo { return &GrantRepo{db: db} }

func (r *GrantRepo) Add(ctx context.Context, groupID, permissionID string) error {
	return r.db.WithContext(ctx).Create(&domain.Grant{GroupID: groupID, PermissionID: permissionID}).Error
}

func (r *GrantRepo) Remove(ctx context.Context, groupID, permissionID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("group_id = ? AND permission_id = ?", groupID, permissionID).
		Delete(&domain.Grant{})
	return res.RowsAffected > 0, res.Error
}

func (r *GrantRepo) Has(ctx context.Context, groupID, permissionID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Grant{}).
		Where("group_id = ? AND permission_id = ?", groupID, permissionID).
		Count(&n).Error
	return n > 0, err
}

func (r *GrantRepo) PermissionsOf(ctx context.Context, groupID string) ([]domain.Permission, error) {
	var ps []domain.Permission
	err := r.db.WithContext(ctx).Model(&domain.Permission{}).
		Joins("JOIN group_permissions gp ON gp.permission_id = permissions.id").
		Where("gp.group_id = ?", groupID).
		Order("permissions.name").
		Find(&ps).Error
	return ps, err
}
