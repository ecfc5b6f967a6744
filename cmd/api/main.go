package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"neontask/internal/core/auth"
	"neontask/internal/core/cache"
	"neontask/internal/core/config"
	"neontask/internal/core/database"
	"neontask/internal/core/logger"
	"neontask/internal/core/server"
	"neontask/internal/repo"
	"neontask/internal/service"
	"neontask/internal/transport/http/handler"
	"neontask/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected",
		zap.String("driver", cfg.DB.Driver),
		zap.String("dsn", database.MaskDSN(cfg.DB.DSN)),
	)
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 身份缓存（redis.addr 为空则关闭）
	idCache := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer idCache.Close()
	if idCache.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := idCache.Ping(ctx); err != nil {
			log.Warn("redis unreachable, identity lookups go to the database", zap.Error(err))
		} else {
			log.Info("identity cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
		cancel()
	}

	// JWT
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		Leeway: time.Duration(cfg.JWT.LeewaySec) * time.Second,
	}

	authSvc := service.NewAuthService(repo.NewUserRepo(db), jwter, idCache,
		time.Duration(cfg.Redis.IdentityTTLSec)*time.Second)
	taskSvc := service.NewTaskService(repo.NewTaskRepo(db))

	reg := router.NewRegistry(
		handler.NewHealth(func(ctx context.Context) error { return database.Ping(ctx, db) }),
		handler.NewAuth(authSvc),
		handler.NewTasks(taskSvc),
	)
	r := router.NewAPIEngine(log, cfg.App.HTTP, authSvc, reg)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("neontask api starting",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/api/health"),
		zap.String("metrics", baseURL+"/metrics"),
	)

	// 异步启动
	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("neontask api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("neontask api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	gormLog, err := logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		l.Fatal("gorm logger", zap.Error(err))
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             gormLog,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
