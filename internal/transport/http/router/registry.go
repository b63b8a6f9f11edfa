package router

import (
	"slices"

	"github.com/gin-gonic/gin"
)

// APIModule / AdminModule：handler 实现其一或两者即可被挂载
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// 实现 Priority 可控制挂载顺序，越小越先；默认 100。
// gin 的路由树与注册顺序无关，顺序只影响中间件分组与启动日志。
type prioritizer interface{ Priority() int }

// Registry 收集 handler 后一次性挂载，每个 engine 一个，只在启动时使用
type Registry struct {
	api   []APIModule
	admin []AdminModule
}

// Register 按实现的接口分发；两个都没实现的值被忽略
func (r *Registry) Register(mods ...any) {
	for _, mod := range mods {
		if m, ok := mod.(APIModule); ok {
			r.api = append(r.api, m)
		}
		if m, ok := mod.(AdminModule); ok {
			r.admin = append(r.admin, m)
		}
	}
}

func (r *Registry) MountAllAPI(g *gin.RouterGroup) {
	for _, m := range byPriority(r.api) {
		m.MountAPI(g)
	}
}

func (r *Registry) MountAllAdmin(g *gin.RouterGroup) {
	for _, m := range byPriority(r.admin) {
		m.MountAdmin(g)
	}
}

func byPriority[T any](mods []T) []T {
	out := slices.Clone(mods)
	slices.SortStableFunc(out, func(a, b T) int { return priorityOf(a) - priorityOf(b) })
	return out
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
