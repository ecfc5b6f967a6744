// Package ez 把 "绑定入参 -> 调用 service -> 映射错误" 收敛成一行注册
package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"neontask/internal/domain"
	mdw "neontask/internal/transport/http/middleware"
	resp "neontask/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// Action I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string // 例："/auth/login"、"/tasks/:id"
	Binder  Binder
	Auth    bool   // 要求分组已挂 AuthJWT，取不到身份直接 401
	Status  int    // 成功状态码，默认 200
	FailMsg string // 非业务错误时对外的固定文案
	Handler func(c *gin.Context, id domain.Identity, in *I) (O, error)
}

func Register[I any, O any](g *gin.RouterGroup, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		var id domain.Identity
		if a.Auth {
			var ok bool
			if id, ok = mdw.CurrentIdentity(c); !ok {
				resp.Abort(c, http.StatusUnauthorized, domain.MsgNoToken)
				return
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			_ = c.Error(bindErr).SetType(gin.ErrorTypeBind)
			code, msg := BindError(bindErr)
			resp.Abort(c, code, msg)
			return
		}

		out, err := a.Handler(c, id, &in)
		if err != nil {
			Fail(c, err, a.FailMsg)
			return
		}
		c.JSON(status, out)
	}
	g.Handle(strings.ToUpper(a.Method), a.Path, h)
}

// Fail 统一错误映射：业务错误用自带文案，其余只回固定文案，原因进 c.Errors 供访问日志记录
func Fail(c *gin.Context, err error, failMsg string) {
	_ = c.Error(err)
	var de *domain.Error
	if errors.As(err, &de) {
		if de.Kind != domain.KindInternal || failMsg == "" {
			resp.Abort(c, resp.StatusOf(de.Kind), de.Msg)
			return
		}
	}
	resp.Abort(c, http.StatusInternalServerError, failMsg)
}

// BindError 绑定失败 -> (状态码, 文案)，不回显解析器的原始报错
func BindError(err error) (int, string) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge, resp.MsgBodyTooLarge
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return http.StatusBadRequest, "VALIDATION FAILED: " + strings.ToUpper(ve[0].Field())
	}
	return http.StatusBadRequest, resp.MsgMalformedRequest
}
