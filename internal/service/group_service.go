package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"userhub/internal/domain"
)

// GroupDetail is a live group with its live permissions and members.
type GroupDetail struct {
	domain.Group
	Permissions []domain.Permission
	Users       []domain.User
}

type GroupService struct {
	store domain.Store
	log   *zap.Logger
	now   Clock
}

func NewGroupService(store domain.Store, log *zap.Logger) *GroupService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GroupService{store: store, log: log.Named("groups"), now: utcNow}
}

func (s *GroupService) WithClock(c Clock) *GroupService {
	s.now = c
	return s
}

func (s *GroupService) List(ctx context.Context) ([]domain.Group, error) {
	gs, err := s.store.Groups().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return gs, nil
}

func (s *GroupService) Get(ctx context.Context, groupID string) (*GroupDetail, error) {
	return loadDetail(ctx, s.store, groupID)
}

func (s *GroupService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	ps, err := s.store.Permissions().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return ps, nil
}

func (s *GroupService) AddPermission(ctx context.Context, groupID, permissionID string) (*GroupDetail, error) {
	var out *GroupDetail
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		g, err := liveGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		p, err := tx.Permissions().FindByID(ctx, permissionID)
		if err != nil {
			return fmt.Errorf("load permission: %w", err)
		}
		if p == nil {
			return domain.NotFoundf("Permission with ID %s not found or has been deleted", permissionID)
		}
		has, err := tx.Grants().Has(ctx, g.ID, p.ID)
		if err != nil {
			return fmt.Errorf("check grant: %w", err)
		}
		if has {
			return domain.Conflictf("Permission '%s' is already assigned to group '%s'", p.Name, g.Name)
		}
		if err := tx.Grants().Add(ctx, g.ID, p.ID); err != nil {
			return fmt.Errorf("add grant: %w", err)
		}
		if err := s.touch(ctx, tx, g); err != nil {
			return err
		}
		out, err = loadDetail(ctx, tx, g.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("permission granted", zap.String("group_id", groupID), zap.String("permission_id", permissionID))
	return out, nil
}

// RemovePermission fails with NotFound when the permission is not assigned to the group.
func (s *GroupService) RemovePermission(ctx context.Context, groupID, permissionID string) (*GroupDetail, error) {
	var out *GroupDetail
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		g, err := liveGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		removed, err := tx.Grants().Remove(ctx, g.ID, permissionID)
		if err != nil {
			return fmt.Errorf("remove grant: %w", err)
		}
		if !removed {
			return domain.NotFoundf("Permission with ID %s is not assigned to this group", permissionID)
		}
		if err := s.touch(ctx, tx, g); err != nil {
			return err
		}
		out, err = loadDetail(ctx, tx, g.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("permission revoked", zap.String("group_id", groupID), zap.String("permission_id", permissionID))
	return out, nil
}

// ListAvailablePermissions returns live permissions not yet granted to the group, by name.
func (s *GroupService) ListAvailablePermissions(ctx context.Context, groupID string) ([]domain.Permission, error) {
	g, err := liveGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}
	assigned, err := s.store.Grants().PermissionsOf(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("load grants: %w", err)
	}
	exclude := make([]string, len(assigned))
	for i := range assigned {
		exclude[i] = assigned[i].ID
	}
	ps, err := s.store.Permissions().List(ctx, exclude...)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return ps, nil
}

func (s *GroupService) touch(ctx context.Context, tx domain.Store, g *domain.Group) error {
	now := s.now()
	g.UpdatedAt = &now
	return tx.Groups().Update(ctx, g)
}

func liveGroup(ctx context.Context, st domain.Store, groupID string) (*domain.Group, error) {
	g, err := st.Groups().FindByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}
	if g == nil {
		return nil, domain.NotFoundf("Group with ID %s not found or has been deleted", groupID)
	}
	return g, nil
}

func loadDetail(ctx context.Context, st domain.Store, groupID string) (*GroupDetail, error) {
	g, err := liveGroup(ctx, st, groupID)
	if err != nil {
		return nil, err
	}
	ps, err := st.Grants().PermissionsOf(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	us, err := st.Memberships().UsersOf(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	return &GroupDetail{Group: *g, Permissions: ps, Users: us}, nil
}
