package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userhub/internal/service"
	httpez "userhub/internal/transport/http/ez"
	"userhub/pkg/api"
)

// UsersHandler serves /users, including the counting and statistics endpoints.
type UsersHandler struct {
	Users  *service.UserService
	Groups *service.GroupService
	Stats  *service.StatsService
	Log    *zap.Logger
}

func (h *UsersHandler) Priority() int { return 10 }

func (h *UsersHandler) MountAPI(g *gin.RouterGroup) {
	e := httpez.New(g, h.Log)

	httpez.RegisterAction(e, httpez.Action[struct{}, []api.User]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]api.User, error) {
			us, err := h.Users.List(c.Request.Context())
			if err != nil {
				return nil, err
			}
			return toUsers(us), nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, api.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (api.User, error) {
			u, err := h.Users.Get(c.Request.Context(), c.Param("id"))
			if err != nil {
				return api.User{}, err
			}
			return toUser(*u), nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[api.CreateUserRequest, api.User]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *api.CreateUserRequest) (api.User, error) {
			u, err := h.Users.Create(c.Request.Context(), in.Email, in.GroupIDs)
			if err != nil {
				return api.User{}, err
			}
			c.Header("Location", c.FullPath()+"/"+u.ID)
			return toUser(*u), nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[api.UpdateUserRequest, api.User]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *api.UpdateUserRequest) (api.User, error) {
			u, err := h.Users.Edit(c.Request.Context(), c.Param("id"), service.EditUserInput{
				Email:    in.Email,
				GroupIDs: in.GroupIDs,
				Active:   in.Active,
			})
			if err != nil {
				return api.User{}, err
			}
			return toUser(*u), nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, api.Deleted]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (api.Deleted, error) {
			id := c.Param("id")
			if err := h.Users.Delete(c.Request.Context(), id); err != nil {
				return api.Deleted{}, err
			}
			return api.Deleted{ID: id}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, []api.Group]{
		Method: http.MethodGet,
		Path:   "/users/groups",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]api.Group, error) {
			gs, err := h.Groups.List(c.Request.Context())
			if err != nil {
				return nil, err
			}
			return toGroups(gs), nil
		},
	})

	h.mountCounts(e)
}

func (h *UsersHandler) mountCounts(e httpez.EZ) {
	count := func(path string, fn func(c *gin.Context) (int64, error)) {
		httpez.RegisterAction(e, httpez.Action[struct{}, api.Count]{
			Method: http.MethodGet,
			Path:   path,
			Binder: httpez.BindNone,
			Handler: func(c *gin.Context, _ *struct{}) (api.Count, error) {
				n, err := fn(c)
				return api.Count{Count: n}, err
			},
		})
	}
	count("/users/count", func(c *gin.Context) (int64, error) {
		return h.Stats.TotalUsers(c.Request.Context())
	})
	count("/users/count/active", func(c *gin.Context) (int64, error) {
		return h.Stats.ActiveUsers(c.Request.Context())
	})
	count("/users/count/group/:groupId", func(c *gin.Context) (int64, error) {
		return h.Stats.UserCountForGroup(c.Request.Context(), c.Param("groupId"))
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, map[string]int64]{
		Method: http.MethodGet,
		Path:   "/users/count/per-group",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (map[string]int64, error) {
			return h.Stats.UserCountPerGroupByName(c.Request.Context())
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, api.Statistics]{
		Method: http.MethodGet,
		Path:   "/users/statistics",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (api.Statistics, error) {
			st, err := h.Stats.Statistics(c.Request.Context())
			if err != nil {
				return api.Statistics{}, err
			}
			return api.Statistics{
				TotalUsers:            st.TotalUsers,
				ActiveUsers:           st.ActiveUsers,
				InactiveUsers:         st.InactiveUsers,
				DeletedUsers:          st.DeletedUsers,
				TotalIncludingDeleted: st.TotalIncludingDeleted,
				UsersPerGroup:         st.UsersPerGroup,
			}, nil
		},
	})
}
