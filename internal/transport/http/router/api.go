package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"neontask/internal/core/config"
	"neontask/internal/core/server"
	mdw "neontask/internal/transport/http/middleware"
	resp "neontask/internal/transport/http/response"
)

func NewAPIEngine(l *zap.Logger, hc config.HTTP, gate mdw.Authenticator, reg *Registry) *gin.Engine {
	r := server.NewRouter(l, hc.CORSOrigins)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.Metrics(),
		mdw.AccessLog(l),
		mdw.ConcurrencyLimit(hc.MaxInFlight),
		mdw.MaxBodyBytes(bodyLimit(hc.MaxBodyBytes)),
		mdw.Timeout(requestTimeout(hc.RequestTimeoutSec)),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	reg.MountPublic(api)

	// 鉴权分组：身份由 AuthJWT 写入 gin.Context
	private := api.Group("", mdw.AuthJWT(gate))
	reg.MountPrivate(private)

	r.NoRoute(func(c *gin.Context) {
		resp.Abort(c, http.StatusNotFound, resp.MsgEndpointNotFound)
	})
	return r
}

func bodyLimit(n int64) int64 {
	if n <= 0 {
		return 1 << 20
	}
	return n
}

func requestTimeout(sec int) time.Duration {
	if sec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(sec) * time.Second
}
