package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userhub/internal/service"
	httpez "userhub/internal/transport/http/ez"
	"userhub/pkg/api"
)

// GroupsHandler serves /groups and the group/permission associations.
type GroupsHandler struct {
	Groups *service.GroupService
	Log    *zap.Logger
}

func (h *GroupsHandler) Priority() int { return 20 }

func (h *GroupsHandler) MountAPI(g *gin.RouterGroup) {
	e := httpez.New(g, h.Log)

	httpez.RegisterAction(e, httpez.Action[struct{}, []api.Group]{
		Method: http.MethodGet,
		Path:   "/groups",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]api.Group, error) {
			gs, err := h.Groups.List(c.Request.Context())
			if err != nil {
				return nil, err
			}
			return toGroups(gs), nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, []api.Permission]{
		Method: http.MethodGet,
		Path:   "/groups/permissions",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]api.Permission, error) {
			ps, err := h.Groups.ListPermissions(c.Request.Context())
			if err != nil {
				return nil, err
			}
			return toPermissions(ps), nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, api.GroupDetail]{
		Method: http.MethodGet,
		Path:   "/groups/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (api.GroupDetail, error) {
			d, err := h.Groups.Get(c.Request.Context(), c.Param("id"))
			if err != nil {
				return api.GroupDetail{}, err
			}
			return toGroupDetail(d), nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, []api.Permission]{
		Method: http.MethodGet,
		Path:   "/groups/:id/available-permissions",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]api.Permission, error) {
			ps, err := h.Groups.ListAvailablePermissions(c.Request.Context(), c.Param("id"))
			if err != nil {
				return nil, err
			}
			return toPermissions(ps), nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[api.AddPermissionRequest, api.GroupDetail]{
		Method: http.MethodPost,
		Path:   "/groups/:id/permissions",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *api.AddPermissionRequest) (api.GroupDetail, error) {
			d, err := h.Groups.AddPermission(c.Request.Context(), c.Param("id"), in.PermissionID)
			if err != nil {
				return api.GroupDetail{}, err
			}
			return toGroupDetail(d), nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, api.GroupDetail]{
		Method: http.MethodDelete,
		Path:   "/groups/:id/permissions/:permissionId",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (api.GroupDetail, error) {
			d, err := h.Groups.RemovePermission(c.Request.Context(), c.Param("id"), c.Param("permissionId"))
			if err != nil {
				return api.GroupDetail{}, err
			}
			return toGroupDetail(d), nil
		},
	})
}
