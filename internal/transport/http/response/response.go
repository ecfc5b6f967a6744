package response

import "github.com/gin-gonic/gin"

// ErrorBody 所有失败响应的统一形状
type ErrorBody struct {
	Error string `json:"error"`
}

func Error(msg string) ErrorBody {
	if msg == "" {
		msg = MsgInternal
	}
	return ErrorBody{Error: msg}
}

// Abort 写错误并终止后续 handler
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Error(msg))
}
