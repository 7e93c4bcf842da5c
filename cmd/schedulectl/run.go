package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"schedule-board/backend/config"
	"schedule-board/backend/internal/aggregate"
	"schedule-board/backend/internal/provider"
	"schedule-board/backend/internal/view"
	"schedule-board/backend/pkg/clock"
	"schedule-board/backend/pkg/database"
	"schedule-board/backend/pkg/jwt"
	applogger "schedule-board/backend/pkg/logger"
	"schedule-board/backend/pkg/redis"
)

const usage = `用法: schedulectl <command> [flags]

命令:
  schedule   显示日程视图
  timetable  显示课表视图
  token      签发访问 Token（需要配置中的 jwt_secret）
  revoke     吊销访问 Token（写入 Redis 黑名单）
  migrate    执行数据库迁移 up / down
`

var errUsage = errors.New("参数错误")

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch args[0] {
	case "schedule":
		err = runSchedule(ctx, args[1:], stdout, stderr)
	case "timetable":
		err = runTimetable(ctx, args[1:], stdout, stderr)
	case "token":
		err = runToken(args[1:], stdout, stderr)
	case "revoke":
		err = runRevoke(ctx, args[1:], stdout, stderr)
	case "migrate":
		err = runMigrate(args[1:], stderr)
	default:
		fmt.Fprint(stderr, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 2
	case errors.Is(err, errUsage):
		if err != errUsage {
			fmt.Fprintf(stderr, "schedulectl: %v\n", err)
		}
		return 2
	default:
		fmt.Fprintf(stderr, "schedulectl: %v\n", err)
		return 1
	}
}

// ── 公共参数 ──

type sourceFlags struct {
	server   string
	token    string
	ics      string
	timezone string
	timeout  time.Duration
	logLevel string
}

func (s *sourceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.server, "server", "http://localhost:8080", "服务地址")
	fs.StringVar(&s.token, "token", "", "访问 Token")
	fs.StringVar(&s.ics, "ics", "", "ICS 文件路径或订阅 URL（仅课表）")
	fs.StringVar(&s.timezone, "tz", "Asia/Shanghai", "显示时区")
	fs.DurationVar(&s.timeout, "timeout", 10*time.Second, "请求超时")
	fs.StringVar(&s.logLevel, "log-level", "warn", "日志级别")
}

func (s *sourceFlags) location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		return nil, fmt.Errorf("时区无效: %w", err)
	}
	return loc, nil
}

func (s *sourceFlags) logger() (*zap.Logger, error) {
	return applogger.NewLogger(&config.LogConfig{Level: s.logLevel, Format: "console"})
}

func (s *sourceFlags) provider(clk clock.Clock, loc *time.Location) provider.Provider {
	if s.ics != "" {
		return provider.NewICSProvider(s.ics, clk, loc)
	}
	return provider.NewHTTPProvider(s.server, s.token, s.timeout)
}

// stderrNotifier 错误提示输出到 stderr
func stderrNotifier(w io.Writer) view.Notifier {
	return view.NotifierFunc(func(title, message string) {
		fmt.Fprintf(w, "%s: %s\n", title, message)
	})
}

// ── schedule ──

func runSchedule(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("schedule", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var src sourceFlags
	src.register(fs)
	userID := fs.String("user", "", "只显示该用户的预约")
	date := fs.String("date", "", "只显示该日期 (YYYY-MM-DD)")
	filter := fs.String("filter", "all", "all / upcoming / past")
	title := fs.String("title", "", "标题")
	hideFilters := fs.Bool("hide-filters", false, "不显示过滤栏")
	watch := fs.Duration("watch", 0, "按间隔刷新，0 表示只显示一次")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loc, err := src.location()
	if err != nil {
		return err
	}
	logger, err := src.logger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	clk := clock.NewRealClock()
	v, err := view.NewScheduleView(src.provider(clk, loc), clk, loc, stderrNotifier(stderr), logger, view.ScheduleProps{
		UserID:      *userID,
		Title:       *title,
		Date:        *date,
		ShowFilters: !*hideFilters,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	defer v.Close()

	if err := v.SetFilter(aggregate.Filter(*filter)); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	render := func() error {
		resp, loading := v.Render()
		return view.RenderSchedule(stdout, resp, loading)
	}
	return drive(ctx, *watch, v.Mount, v.Refresh, render)
}

// ── timetable ──

func runTimetable(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("timetable", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var src sourceFlags
	src.register(fs)
	today := fs.Bool("today", false, "只显示今天")
	title := fs.String("title", "", "标题")
	watch := fs.Duration("watch", 0, "按间隔刷新，0 表示只显示一次")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loc, err := src.location()
	if err != nil {
		return err
	}
	logger, err := src.logger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	clk := clock.NewRealClock()
	v := view.NewTimetableView(src.provider(clk, loc), stderrNotifier(stderr), logger, view.TimetableProps{
		Title:     *title,
		TodayOnly: *today,
	})
	defer v.Close()

	render := func() error {
		resp, loading := v.Render()
		return view.RenderTimetable(stdout, resp, loading)
	}
	return drive(ctx, *watch, v.Mount, v.Mount, render)
}

// drive 首次取数后渲染；watch > 0 时按间隔刷新直到 ctx 结束
func drive(ctx context.Context, watch time.Duration, mount, refresh func(context.Context) <-chan struct{}, render func() error) error {
	select {
	case <-mount(ctx):
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := render(); err != nil {
		return err
	}
	if watch <= 0 {
		return nil
	}

	ticker := time.NewTicker(watch)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			select {
			case <-refresh(ctx):
			case <-ctx.Done():
				return nil
			}
			if err := render(); err != nil {
				return err
			}
		}
	}
}

// ── token ──

func runToken(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "配置文件路径")
	userID := fs.String("user", "", "用户 ID")
	role := fs.String("role", "member", "角色")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		fmt.Fprintln(stderr, "缺少 -user")
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(*userID, *role)
	if err != nil {
		return fmt.Errorf("签发 Token 失败: %w", err)
	}
	fmt.Fprintln(stdout, token)
	return nil
}

// ── revoke ──

// tokenRevoker 由 pkg/redis.Client 实现
type tokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

func runRevoke(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("revoke", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "配置文件路径")
	token := fs.String("token", "", "待吊销的 Token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *token == "" {
		fmt.Fprintln(stderr, "缺少 -token")
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	jti, err := revokeToken(ctx, jwt.NewManager(&cfg.Auth), rdb, *token, cfg.Auth.AccessTokenTTL, time.Now())
	if err != nil {
		return err
	}
	if jti == "" {
		fmt.Fprintln(stderr, "Token 已过期，无需吊销")
		return nil
	}
	fmt.Fprintln(stdout, jti)
	return nil
}

// revokeToken 校验 Token 后按剩余有效期写入黑名单，返回 jti；已过期的 Token 返回空 jti
// Token 未携带过期时间时使用 fallbackTTL
func revokeToken(ctx context.Context, mgr *jwt.Manager, store tokenRevoker, raw string, fallbackTTL time.Duration, now time.Time) (string, error) {
	claims, err := mgr.ParseToken(raw)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", errUsage, err)
	}
	if claims.ID == "" {
		return "", fmt.Errorf("%w: Token 缺少 jti", errUsage)
	}

	ttl := fallbackTTL
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(now)
	}
	if err := store.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		return "", fmt.Errorf("写入黑名单失败: %w", err)
	}
	return claims.ID, nil
}

// ── migrate ──

func runMigrate(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "配置文件路径")
	steps := fs.Int("steps", 1, "down 回滚步数")

	var direction string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		direction, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if direction == "" {
		direction = fs.Arg(0)
	}
	if direction != "up" && direction != "down" {
		fmt.Fprintln(stderr, "用法: schedulectl migrate up|down [-steps n]")
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if direction == "up" {
		return database.RunMigrations(sqlDB, logger)
	}
	return database.RollbackMigrations(sqlDB, *steps, logger)
}
