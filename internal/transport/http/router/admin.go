package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"userhub/internal/core/auth"
	"userhub/internal/transport/http/handler"
	mdw "userhub/internal/transport/http/middleware"
)

// NewAdminEngine 运维端：/admin/v1/auth/login 公开，其余统一要求 admin 角色
func NewAdminEngine(l *zap.Logger, adminH *handler.AdminHandler, jwter *auth.JWTer, lim Limits) *gin.Engine {
	r := baseEngine(l, lim)

	v1 := r.Group("/admin/v1")
	// 登录按 IP 单独限速：突发 5 次，之后每 12 秒 1 次
	adminH.MountPublic(v1.Group("", mdw.RateLimitPerIP(rate.Every(12*time.Second), 5)))

	admin := v1.Group("")
	admin.Use(mdw.AuthJWT(jwter, auth.RoleAdmin))

	reg := &Registry{}
	reg.Register(adminH)
	reg.MountAllAdmin(admin)
	return r
}
