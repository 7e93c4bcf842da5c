package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"schedule-board/backend/config"
	"schedule-board/backend/internal/api/handler"
	"schedule-board/backend/internal/api/router"
	"schedule-board/backend/internal/cron"
	"schedule-board/backend/internal/metrics"
	"schedule-board/backend/internal/provider"
	"schedule-board/backend/internal/repository"
	"schedule-board/backend/internal/service"
	"schedule-board/backend/pkg/clock"
	"schedule-board/backend/pkg/database"
	"schedule-board/backend/pkg/jwt"
	applogger "schedule-board/backend/pkg/logger"
	"schedule-board/backend/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	loc, err := cfg.Schedule.Location()
	if err != nil {
		logger.Fatal("时区无效", zap.Error(err))
	}

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", loc.String()),
	)

	metrics.Register()

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，缓存、限流与 Token 吊销检查将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Repository → Provider → Service → Handler
	clk := clock.NewRealClock()
	repo := repository.NewRepository(db)

	var (
		cache     provider.Cache
		cachePing handler.Pinger
	)
	if rdb != nil {
		cachePing = rdb
		if cfg.Cache.Enabled {
			cache = rdb
		}
	}
	src := provider.NewCachedProvider(provider.NewDBProvider(repo, clk, loc, logger), cache, cfg.Cache.TTL, clk, loc, logger)

	svc := service.NewService(src, clk, loc, logger)
	h := handler.NewHandler(svc, handler.NewHealthHandler(repo, cachePing, logger))

	// 7. 缓存预热任务
	var scheduler *cron.Scheduler
	if cache != nil {
		scheduler, err = cron.NewScheduler(src, cfg.Cache.WarmSpec, loc, logger)
		if err != nil {
			logger.Fatal("初始化定时任务失败", zap.Error(err))
		}
		scheduler.Start()
	}

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if scheduler != nil {
		scheduler.Stop(ctx)
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
