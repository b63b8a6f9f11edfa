package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	resp "userhub/internal/transport/http/response"
)

// Timeout 给请求上下文设截止时间；service 与 GORM 都沿用该 ctx。
// 处理器超时且尚未写响应时补 504。skip 中的路径前缀不受限制（如 /metrics）。
func Timeout(d time.Duration, skip ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range skip {
			if strings.HasPrefix(c.Request.URL.Path, p) {
				c.Next()
				return
			}
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			resp.Abort(c, resp.CodeTimeout, "request timed out")
		}
	}
}
