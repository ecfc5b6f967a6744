package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"neontask/internal/core/auth"
	"neontask/internal/domain"
	resp "neontask/internal/transport/http/response"
)

const keyIdentity = "neontask.identity"

// Authenticator 由 service.AuthService 实现
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}

// AuthJWT 鉴权闸门：Bearer token -> 身份，写入 gin.Context
func AuthJWT(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			authFailures.WithLabelValues("missing").Inc()
			resp.Abort(c, http.StatusUnauthorized, domain.MsgNoToken)
			return
		}
		id, err := a.Authenticate(c.Request.Context(), tok)
		if err != nil {
			_ = c.Error(err)
			authFailures.WithLabelValues(failureReason(err)).Inc()
			var de *domain.Error
			if errors.As(err, &de) && de.Kind == domain.KindInternal {
				resp.Abort(c, http.StatusInternalServerError, de.Msg)
				return
			}
			resp.Abort(c, http.StatusUnauthorized, domain.MsgInvalidToken)
			return
		}
		SetIdentity(c, id)
		c.Next()
	}
}

// BearerToken 解析 "Bearer <token>"，scheme 不区分大小写
func BearerToken(header string) (string, bool) {
	scheme, tok, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

func SetIdentity(c *gin.Context, id domain.Identity) { c.Set(keyIdentity, id) }

func CurrentIdentity(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(keyIdentity)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok && id.ID != ""
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "expired"
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid"
	case domain.IsKind(err, domain.KindUnauthorized):
		return "unknown_user"
	}
	return "error"
}
