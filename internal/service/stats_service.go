package service

import (
	"context"
	"fmt"

	"userhub/internal/domain"
)

type Statistics struct {
	TotalUsers            int64            `json:"totalUsers"`
	ActiveUsers           int64            `json:"activeUsers"`
	InactiveUsers         int64            `json:"inactiveUsers"`
	DeletedUsers          int64            `json:"deletedUsers"`
	TotalIncludingDeleted int64            `json:"totalIncludingDeleted"`
	UsersPerGroup         map[string]int64 `json:"usersPerGroup"`
}

// StatsService answers read-only counting questions. It never writes.
type StatsService struct {
	store domain.Store
}

func NewStatsService(store domain.Store) *StatsService { return &StatsService{store: store} }

func (s *StatsService) TotalUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, domain.UserFilter{})
}

func (s *StatsService) TotalIncludingDeleted(ctx context.Context) (int64, error) {
	return s.count(ctx, domain.UserFilter{WithDeleted: true})
}

func (s *StatsService) ActiveUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, domain.UserFilter{OnlyActive: true})
}

func (s *StatsService) count(ctx context.Context, f domain.UserFilter) (int64, error) {
	n, err := s.store.Users().Count(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *StatsService) UserCountPerGroup(ctx context.Context) ([]domain.GroupUserCount, error) {
	rows, err := s.store.Memberships().CountPerGroup(ctx)
	if err != nil {
		return nil, fmt.Errorf("count per group: %w", err)
	}
	return rows, nil
}

// UserCountPerGroupByName keys the per-group counts by group name.
func (s *StatsService) UserCountPerGroupByName(ctx context.Context) (map[string]int64, error) {
	rows, err := s.UserCountPerGroup(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.GroupName] += r.UserCount
	}
	return out, nil
}

func (s *StatsService) UserCountForGroup(ctx context.Context, groupID string) (int64, error) {
	if _, err := liveGroup(ctx, s.store, groupID); err != nil {
		return 0, err
	}
	n, err := s.store.Memberships().CountForGroup(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("count group members: %w", err)
	}
	return n, nil
}

func (s *StatsService) Statistics(ctx context.Context) (*Statistics, error) {
	total, err := s.TotalUsers(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.ActiveUsers(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.TotalIncludingDeleted(ctx)
	if err != nil {
		return nil, err
	}
	perGroup, err := s.UserCountPerGroupByName(ctx)
	if err != nil {
		return nil, err
	}
	return &Statistics{
		TotalUsers:            total,
		ActiveUsers:           active,
		InactiveUsers:         total - active,
		DeletedUsers:          all - total,
		TotalIncludingDeleted: all,
		UsersPerGroup:         perGroup,
	}, nil
}
