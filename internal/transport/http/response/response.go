package response

import (
	"github.com/gin-gonic/gin"

	"userhub/pkg/api"
)

// Body 与客户端解码用的 api.Envelope 同构
type Body = api.Envelope[any]

// OK data 为 nil 时输出 {}，客户端不用判 null
func OK(data any) Body {
	if data == nil {
		data = struct{}{}
	}
	return Body{Code: CodeOK, Msg: CodeMsgMap[CodeOK], Data: data}
}

func Fail(code int, msg string) Body {
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	return Body{Code: code, Msg: msg, Data: struct{}{}}
}

// Abort 以 code 对应的 HTTP 状态中断请求
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(HTTPStatus(code), Fail(code, msg))
}
