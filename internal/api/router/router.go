package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"schedule-board/backend/config"
	"schedule-board/backend/internal/api/handler"
	"schedule-board/backend/internal/api/middleware"
	"schedule-board/backend/pkg/jwt"
	"schedule-board/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时跳过 Token 吊销检查与限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		revocations middleware.RevocationChecker
		limiter     middleware.Limiter
	)
	if rdb != nil {
		revocations = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())

	// ── 健康检查 / 指标 ──
	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, revocations))
	v1.Use(middleware.RateLimit(limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window))
	{
		// 原始记录（远程视图客户端的数据源）
		bookings := v1.Group("/bookings")
		{
			bookings.GET("", h.Record.ListBookings)
			bookings.GET("/booked-slots", h.Record.ListBookedSlots)
		}

		timetable := v1.Group("/timetable")
		{
			timetable.GET("", h.Record.ListTimetable)
			timetable.GET("/today", h.Record.ListTodayTimetable)
		}

		// 聚合视图
		views := v1.Group("/views")
		{
			views.GET("/schedule", h.Schedule.GetSchedule)
			views.GET("/schedule/me", h.Schedule.GetMySchedule)
			views.GET("/timetable", h.Timetable.GetTimetable)
		}

		// 导出
		export := v1.Group("/export")
		{
			export.GET("/schedule", h.Export.ExportSchedule)
			export.GET("/timetable.ics", h.Export.ExportTimetableICS)
		}
	}

	return r
}
