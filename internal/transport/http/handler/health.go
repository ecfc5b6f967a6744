package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const SystemVersion = "NeonTask v1.0.4"

type healthOK struct {
	Status    string `json:"status"`
	System    string `json:"system"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

type healthDegraded struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health GET /health，探测数据库连通性
type Health struct {
	ping func(ctx context.Context) error
	now  func() time.Time
}

func NewHealth(ping func(ctx context.Context) error) *Health {
	return &Health{ping: ping, now: time.Now}
}

func (h *Health) Priority() int { return 0 }

func (h *Health) MountPublic(g *gin.RouterGroup) {
	g.GET("/health", h.check)
}

func (h *Health) check(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, healthDegraded{Status: "DEGRADED", Database: "DISCONNECTED"})
		return
	}
	c.JSON(http.StatusOK, healthOK{
		Status:    "ONLINE",
		System:    SystemVersion,
		Database:  "CONNECTED",
		Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}
