package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schedule-board/backend/pkg/response"
)

const healthTimeout = 2 * time.Second

// Pinger 可探活的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler 健康检查
// 数据库不可用返回 503；缓存不可用只标记为 degraded
type HealthHandler struct {
	db     Pinger
	cache  Pinger
	logger *zap.Logger
}

// NewHealthHandler 创建 HealthHandler，db / cache 可为 nil
func NewHealthHandler(db, cache Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, logger: logger}
}

// Health 健康检查
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	checks := gin.H{}
	status := "ok"

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Error("数据库健康检查失败", zap.Error(err))
			checks["database"] = "down"
			c.JSON(http.StatusServiceUnavailable, response.Response{
				Code:    response.CodeServiceUnavailable,
				Message: "database unavailable",
				Data:    gin.H{"status": "down", "checks": checks},
			})
			return
		}
		checks["database"] = "up"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.Warn("缓存健康检查失败", zap.Error(err))
			checks["cache"] = "down"
			status = "degraded"
		} else {
			checks["cache"] = "up"
		}
	}

	response.OK(c, gin.H{"status": status, "checks": checks})
}
