package handler

import (
	"userhub/internal/domain"
	"userhub/internal/service"
	"userhub/pkg/api"
)

func toGroup(g domain.Group) api.Group { return api.Group{ID: g.ID, Name: g.Name} }

func toGroups(gs []domain.Group) []api.Group {
	out := make([]api.Group, 0, len(gs))
	for _, g := range gs {
		out = append(out, toGroup(g))
	}
	return out
}

func toPermissions(ps []domain.Permission) []api.Permission {
	out := make([]api.Permission, 0, len(ps))
	for _, p := range ps {
		out = append(out, api.Permission{ID: p.ID, Name: p.Name})
	}
	return out
}

func toUser(u domain.User) api.User {
	return api.User{
		ID:        u.ID,
		Email:     u.Email,
		Active:    u.Active,
		Deleted:   u.Deleted(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Groups:    toGroups(u.Groups),
	}
}

func toUsers(us []domain.User) []api.User {
	out := make([]api.User, 0, len(us))
	for _, u := range us {
		out = append(out, toUser(u))
	}
	return out
}

func toGroupDetail(d *service.GroupDetail) api.GroupDetail {
	return api.GroupDetail{
		ID:          d.ID,
		Name:        d.Name,
		Active:      d.Active,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Permissions: toPermissions(d.Permissions),
		Users:       toUsers(d.Users),
	}
}
