package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"userhub/internal/domain"
	"userhub/pkg/utils"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

func (r *UserRepo) FindAnyByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(r.db.WithContext(ctx).Unscoped(), "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(r.db.WithContext(ctx), "email = ?", email)
}

func (r *UserRepo) first(q *gorm.DB, cond string, arg any) (*domain.User, error) {
	var u domain.User
	err := q.First(&u, cond, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&n).Error
	return n > 0, err
}

// EmailLike 按字面匹配；用 '!' 作 LIKE 转义符，避开 MySQL 字面量里反斜杠的二次转义
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (r *UserRepo) scope(ctx context.Context, f domain.UserFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if f.WithDeleted {
		q = q.Unscoped()
	}
	if f.OnlyActive {
		q = q.Where("active = ?", true)
	}
	if s := strings.TrimSpace(f.EmailLike); s != "" {
		q = q.Where("email LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(s)+"%")
	}
	return q
}

// List pages through users, oldest first. limit <= 0 means no limit.
func (r *UserRepo) List(ctx context.Context, f domain.UserFilter, offset, limit int) ([]domain.User, int64, error) {
	var total int64
	if err := r.scope(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := r.scope(ctx, f).Order("created_at ASC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	var users []domain.User
	if err := q.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) Count(ctx context.Context, f domain.UserFilter) (int64, error) {
	var n int64
	err := r.scope(ctx, f).Count(&n).Error
	return n, err
}

// Update writes the mutable columns of a live user. Maps keep false/empty values.
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"email":      u.Email,
			"active":     u.Active,
			"updated_at": u.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundf("user with ID %s not found or has been deleted", u.ID)
	}
	return nil
}

// SoftDelete flags the user deleted in one statement, stamping deleted_at with UpdatedAt.
func (r *UserRepo) SoftDelete(ctx context.Context, u *domain.User) error {
	if u.UpdatedAt == nil {
		return errors.New("soft delete requires UpdatedAt")
	}
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"active":     u.Active,
			"updated_at": u.UpdatedAt,
			"deleted_at": *u.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundf("user with ID %s not found or has already been deleted", u.ID)
	}
	u.DeletedAt = gorm.DeletedAt{Time: *u.UpdatedAt, Valid: true}
	return nil
}

func (r *UserRepo) Purge(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Unscoped().
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Delete(&domain.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundf("no deleted user with ID %s", id)
	}
	return nil
}
