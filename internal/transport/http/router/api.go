package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"userhub/internal/core/server"
	"userhub/internal/domain"
	"userhub/internal/service"
	"userhub/internal/transport/http/handler"
	mdw "userhub/internal/transport/http/middleware"
)

// Limits 是各 engine 共用的保护参数
type Limits struct {
	RPS            float64
	Burst          int
	MaxInFlight    int64
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	// 并发满时的最长排队时间
	QueueWait time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.RPS <= 0 {
		l.RPS = 200
	}
	if l.Burst <= 0 {
		l.Burst = 400
	}
	if l.MaxInFlight <= 0 {
		l.MaxInFlight = 300
	}
	if l.MaxBodyBytes <= 0 {
		l.MaxBodyBytes = 1 << 20
	}
	if l.RequestTimeout <= 0 {
		l.RequestTimeout = 10 * time.Second
	}
	if l.QueueWait <= 0 {
		l.QueueWait = time.Second
	}
	return l
}

func baseEngine(l *zap.Logger, lim Limits) *gin.Engine {
	lim = lim.withDefaults()
	r := server.NewRouter(l)
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.MaxInFlight, lim.QueueWait),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.RequestTimeout, "/metrics"),
		mdw.Metrics(),
		mdw.AccessLog(l, "/health", "/metrics"),
	)

	// 健康检查 + 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// NewAPIEngine 用户/分组/统计接口，挂在 /api 下
func NewAPIEngine(l *zap.Logger, store domain.Store, lim Limits) *gin.Engine {
	r := baseEngine(l, lim)

	users := service.NewUserService(store, l)
	groups := service.NewGroupService(store, l)
	stats := service.NewStatsService(store)

	reg := &Registry{}
	reg.Register(
		&handler.UsersHandler{Users: users, Groups: groups, Stats: stats, Log: l},
		&handler.GroupsHandler{Groups: groups, Log: l},
	)
	reg.MountAllAPI(r.Group("/api"))
	return r
}
