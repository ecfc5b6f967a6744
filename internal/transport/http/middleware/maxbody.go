package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "neontask/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；声明长度超限直接 413，其余由绑定时的 MaxBytesError 兜底
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, http.StatusRequestEntityTooLarge, resp.MsgBodyTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
