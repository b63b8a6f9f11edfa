package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "userhub/internal/transport/http/response"
)

// MaxBodyBytes 拒绝声明长度超限的请求；未声明长度的按读取截断
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, resp.CodeTooLarge, "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
