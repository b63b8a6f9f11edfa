package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userhub/internal/core/auth"
	"userhub/internal/domain"
	"userhub/internal/service"
	httpez "userhub/internal/transport/http/ez"
	"userhub/pkg/api"
)

// AdminHandler serves the operator console under /admin/v1.
type AdminHandler struct {
	Users *service.UserService
	Auth  *service.AuthService
	Log   *zap.Logger
}

func NewAdminHandler(users *service.UserService, authSvc *service.AuthService, l *zap.Logger) *AdminHandler {
	return &AdminHandler{Users: users, Auth: authSvc, Log: l}
}

// MountPublic 挂载无需登录的接口
func (h *AdminHandler) MountPublic(g *gin.RouterGroup) {
	e := httpez.New(g, h.Log)

	httpez.RegisterAction(e, httpez.Action[api.LoginRequest, api.LoginResponse]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *api.LoginRequest) (api.LoginResponse, error) {
			tok, err := h.Auth.Login(in.Username, in.Password)
			if errors.Is(err, service.ErrInvalidCredentials) {
				h.Log.Warn("admin login rejected", zap.String("username", in.Username), zap.String("ip", c.ClientIP()))
				return api.LoginResponse{}, httpez.Unauthorized("invalid credentials")
			}
			if err != nil {
				return api.LoginResponse{}, httpez.Internal("issue token failed", err)
			}
			return api.LoginResponse{Token: tok}, nil
		},
	})
}

// MountAdmin 挂载需 admin 角色的接口（分组已走 AuthJWT）
func (h *AdminHandler) MountAdmin(g *gin.RouterGroup) {
	e := httpez.New(g, h.Log)

	type listQ struct {
		Offset      int    `form:"offset,default=0"`
		Limit       int    `form:"limit,default=20"`
		Q           string `form:"q"`            // 按 email 模糊搜
		WithDeleted bool   `form:"with_deleted"` // 是否包含软删
	}
	httpez.RegisterAction(e, httpez.Action[listQ, api.UserPage]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Auth:   true,
		Roles:  []string{auth.RoleAdmin},
		Handler: func(c *gin.Context, in *listQ) (api.UserPage, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			if in.Offset < 0 {
				in.Offset = 0
			}
			us, total, err := h.Users.Search(c.Request.Context(), domain.UserFilter{
				WithDeleted: in.WithDeleted,
				EmailLike:   in.Q,
			}, in.Offset, in.Limit)
			if err != nil {
				return api.UserPage{}, err
			}
			return api.UserPage{Total: total, Items: toUsers(us)}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, api.Deleted]{
		Method: http.MethodDelete,
		Path:   "/users/:id/purge",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  []string{auth.RoleAdmin},
		Handler: func(c *gin.Context, _ *struct{}) (api.Deleted, error) {
			id := c.Param("id")
			if err := h.Users.Purge(c.Request.Context(), id); err != nil {
				return api.Deleted{}, err
			}
			h.Log.Info("user purged by operator", zap.String("user_id", id), zap.String("operator", c.GetString(httpez.CtxUserID)))
			return api.Deleted{ID: id}, nil
		},
	})
}
