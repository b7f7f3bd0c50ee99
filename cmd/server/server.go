package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"
	"go.uber.org/zap"

	cfg "Reformly/config"
	"Reformly/internal/middleware"
	"Reformly/internal/router"
	"Reformly/internal/service"
	"Reformly/pkg/identity"
	"Reformly/pkg/logger"
	"Reformly/pkg/mailer"
	"Reformly/pkg/metrics"
	"Reformly/pkg/otel"
	"Reformly/pkg/snowflake"
	"Reformly/pkg/token"
	"Reformly/storage"
)

func main() {
	// 日志部分
	logger.Init()
	defer logger.Sync()

	if err := cfg.Cfg.Validate(); err != nil {
		logger.Logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	// otel 需要在存储层之前初始化，redis/gorm 的 tracing hook 依赖全局 provider
	var serverOpts []config.Option
	var tracingMiddleware app.HandlerFunc
	if cfg.Cfg.OTELEnabled {
		shutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
			ServiceName:  cfg.Cfg.ServiceName,
			Environment:  cfg.Cfg.Environment,
			OTLPEndpoint: cfg.Cfg.OTELEndpoint,
			SampleRatio:  cfg.Cfg.OTELSampler,
			Secure:       cfg.Cfg.OTELSecure,
		})
		if err != nil {
			logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()

		if err := metrics.InitMetrics(); err != nil {
			logger.Logger.Fatal("Failed to initialize metrics", zap.Error(err))
		}

		tracerOpt, mw := middleware.NewServerTracerConfig()
		serverOpts = append(serverOpts, tracerOpt)
		tracingMiddleware = mw
	}

	// 初始化存储层，记得关闭外部连接
	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(cfg.Cfg.SnowflakeMachineID, cfg.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := mailer.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize mailer", zap.Error(err))
	}

	// google 登录不可用时仍可走邮箱验证码
	if cfg.Cfg.FirebaseProjectID != "" {
		verifier, err := identity.NewFirebaseVerifier(ctx, identity.FirebaseConfig{
			ProjectID:       cfg.Cfg.FirebaseProjectID,
			CredentialsFile: cfg.Cfg.FirebaseCredentialsFile,
			CredentialsJSON: cfg.Cfg.FirebaseCredentialsJSON,
		})
		if err != nil {
			logger.Logger.Warn("Failed to initialize firebase, google sign-in disabled", zap.Error(err))
		} else {
			service.SetIdentityVerifier(verifier)
		}
	} else {
		logger.Logger.Info("FIREBASE_PROJECT_ID not set, google sign-in disabled")
	}

	if err := token.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize token package", zap.Error(err))
	} // token 在中间件前初始化，middleware 依赖 token

	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	logger.Logger.Info("Server starting",
		zap.String("service", cfg.Cfg.ServiceName),
		zap.String("port", cfg.Cfg.ServerPort),
		zap.String("environment", cfg.Cfg.Environment),
	)

	addr := net.JoinHostPort(cfg.Cfg.ServerHost, cfg.Cfg.ServerPort)
	serverOpts = append(serverOpts, server.WithHostPorts(addr), server.WithExitWaitTime(5*time.Second))
	h := server.Default(serverOpts...)
	if tracingMiddleware != nil {
		h.Use(tracingMiddleware)
	}

	router.Register(h)

	// 优雅关闭：在单独的 goroutine 中监听关闭信号并调用 Shutdown
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
