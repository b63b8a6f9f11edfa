package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"userhub/internal/domain"
)

// Clock returns the current time. Tests swap it for a deterministic one.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

type UserService struct {
	store domain.Store
	log   *zap.Logger
	now   Clock
}

func NewUserService(store domain.Store, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{store: store, log: log.Named("users"), now: utcNow}
}

// WithClock replaces the time source.
func (s *UserService) WithClock(c Clock) *UserService {
	s.now = c
	return s
}

// EditUserInput holds the optional fields of an edit. A nil field is left untouched;
// GroupIDs set to an empty, non-nil slice clears every membership.
type EditUserInput struct {
	Email    *string
	GroupIDs []string
	Active   *bool
}

func (s *UserService) Create(ctx context.Context, email string, groupIDs []string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.Validationf("Email is required")
	}

	var out *domain.User
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		existing, err := tx.Users().FindByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("lookup email: %w", err)
		}
		if existing != nil {
			return domain.Conflictf("User with email '%s' already exists", email)
		}

		u := &domain.User{
			Entity: domain.Entity{Active: true, CreatedAt: s.now()},
			Email:  email,
		}
		if err := tx.Users().Create(ctx, u); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		groups, err := assignGroups(ctx, tx, u.ID, groupIDs)
		if err != nil {
			return err
		}
		u.Groups = groups
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user created", zap.String("user_id", out.ID), zap.Int("groups", len(out.Groups)))
	return out, nil
}

func (s *UserService) Edit(ctx context.Context, userID string, in EditUserInput) (*domain.User, error) {
	var out *domain.User
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		u, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if u == nil {
			return domain.NotFoundf("User with ID %s not found or has been deleted", userID)
		}

		if in.Email != nil {
			if email := strings.TrimSpace(*in.Email); email != "" {
				taken, err := tx.Users().EmailTaken(ctx, email, u.ID)
				if err != nil {
					return fmt.Errorf("check email: %w", err)
				}
				if taken {
					return domain.Conflictf("Email '%s' is already in use", email)
				}
				u.Email = email
			}
		}
		if in.Active != nil {
			u.Active = *in.Active
		}

		if in.GroupIDs != nil {
			if err := tx.Memberships().RemoveAll(ctx, u.ID); err != nil {
				return fmt.Errorf("clear memberships: %w", err)
			}
			if _, err := assignGroups(ctx, tx, u.ID, in.GroupIDs); err != nil {
				return err
			}
		}

		now := s.now()
		u.UpdatedAt = &now
		if err := tx.Users().Update(ctx, u); err != nil {
			return err
		}
		if u.Groups, err = tx.Memberships().GroupsOf(ctx, u.ID); err != nil {
			return fmt.Errorf("load groups: %w", err)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user updated", zap.String("user_id", out.ID), zap.Bool("active", out.Active))
	return out, nil
}

func (s *UserService) Delete(ctx context.Context, userID string) error {
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		u, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if u == nil {
			return domain.NotFoundf("User with ID %s not found or has already been deleted", userID)
		}
		now := s.now()
		u.Active = false
		u.UpdatedAt = &now
		return tx.Users().SoftDelete(ctx, u)
	})
	if err != nil {
		return err
	}
	s.log.Info("user deleted", zap.String("user_id", userID))
	return nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, domain.NotFoundf("User with ID %s not found", userID)
	}
	if u.Groups, err = s.store.Memberships().GroupsOf(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, _, err := s.Search(ctx, domain.UserFilter{}, 0, 0)
	return users, err
}

// Search pages through users with their groups. Deleted users are included only when f asks.
func (s *UserService) Search(ctx context.Context, f domain.UserFilter, offset, limit int) ([]domain.User, int64, error) {
	users, total, err := s.store.Users().List(ctx, f, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	ids := make([]string, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	byUser, err := s.store.Memberships().GroupsOfMany(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("load groups: %w", err)
	}
	for i := range users {
		users[i].Groups = byUser[users[i].ID]
	}
	return users, total, nil
}

// Purge physically erases a user that was already soft-deleted, together with its memberships.
func (s *UserService) Purge(ctx context.Context, userID string) error {
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		u, err := tx.Users().FindAnyByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if u == nil || !u.Deleted() {
			return domain.NotFoundf("no deleted user with ID %s", userID)
		}
		if err := tx.Memberships().RemoveAll(ctx, userID); err != nil {
			return fmt.Errorf("clear memberships: %w", err)
		}
		return tx.Users().Purge(ctx, userID)
	})
	if err != nil {
		return err
	}
	s.log.Warn("user purged", zap.String("user_id", userID))
	return nil
}

// assignGroups links the user to the live groups among ids. Unknown and deleted ids are dropped.
func assignGroups(ctx context.Context, tx domain.Store, userID string, ids []string) ([]domain.Group, error) {
	if len(ids) == 0 {
		return []domain.Group{}, nil
	}
	groups, err := tx.Groups().FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve groups: %w", err)
	}
	valid := make([]string, len(groups))
	for i := range groups {
		valid[i] = groups[i].ID
	}
	if err := tx.Memberships().Add(ctx, userID, valid...); err != nil {
		return nil, fmt.Errorf("add memberships: %w", err)
	}
	return groups, nil
}
