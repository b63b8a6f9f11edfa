package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"userhub/internal/domain"
	"userhub/pkg/utils"
)

type GroupRepo struct{ db *gorm.DB }

func NewGroupRepo(db *gorm.DB) *GroupRepo { return &GroupRepo{db: db} }

func (r *GroupRepo) Create(ctx context.Context, g *domain.Group) error {
	if g.ID == "" {
		g.ID = utils.NewID()
	}
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *GroupRepo) FindByID(ctx context.Context, id string) (*domain.Group, error) {
	var g domain.Group
	err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var gs []domain.Group
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name").Find(&gs).Error
	return gs, err
}

func (r *GroupRepo) List(ctx context.Context) ([]domain.Group, error) {
	var gs []domain.Group
	err := r.db.WithContext(ctx).Order("name").Order("id").Find(&gs).Error
	return gs, err
}

func (r *GroupRepo) Update(ctx context.Context, g *domain.Group) error {
	res := r.db.WithContext(ctx).Model(&domain.Group{}).
		Where("id = ?", g.ID).
		Updates(map[string]any{
			"name":       g.Name,
			"active":     g.Active,
			"updated_at": g.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundf("group with ID %s not found or has been deleted", g.ID)
	}
	return nil
}

type PermissionRepo struct{ db *gorm.DB }

func NewPermissionRepo(db *gorm.DB) *PermissionRepo { return &PermissionRepo{db: db} }

func (r *PermissionRepo) Create(ctx context.Context, p *domain.Permission) error {
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PermissionRepo) FindByID(ctx context.Context, id string) (*domain.Permission, error) {
	var p domain.Permission
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PermissionRepo) List(ctx context.Context, exclude ...string) ([]domain.Permission, error) {
	q := r.db.WithContext(ctx).Order("name").Order("id")
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	var ps []domain.Permission
	err := q.Find(&ps).Error
	return ps, err
}
