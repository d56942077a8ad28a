package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	appbook "github.com/xiebiao/library/internal/application/book"
	appborrow "github.com/xiebiao/library/internal/application/borrow"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/mq"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/internal/interface/http/router"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

// @title           Library API
// @version         1.0
// @description     图书馆借阅管理：图书、读者、借阅单
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("加载配置失败")
	}

	if err := logger.Init(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	}); err != nil {
		log.Fatal().Err(err).Msg("初始化日志失败")
	}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("初始化链路追踪失败")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("关闭链路追踪失败")
			}
		}()
	}

	srv, cleanup, err := buildServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化服务失败")
	}
	defer cleanup()

	go func() {
		log.Info().Str("addr", srv.Addr).Str("mode", cfg.Server.Mode).Msg("服务启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("服务异常退出")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("服务关闭超时")
	}
	log.Info().Msg("服务已退出")
}

// buildServer 手动依赖注入
// Repository ← Service ← UseCase ← Handler
func buildServer(cfg *config.Config) (*http.Server, func(), error) {
	db, err := mysql.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	events, closeEvents, err := mq.NewEventPublisher(cfg)
	if err != nil {
		_ = redisClient.Close()
		return nil, nil, err
	}
	loc, err := provideLocation(cfg)
	if err != nil {
		closeEvents()
		_ = redisClient.Close()
		return nil, nil, err
	}

	cleanup := func() {
		closeEvents()
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("关闭Redis连接失败")
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	slipRepo := mysql.NewBorrowSlipRepository(db)
	txManager := mysql.NewTxManager(db)
	tokenStore := provideTokenStore(cfg, redisClient)
	jwtManager := provideJWTManager(cfg)

	// 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)

	// 应用层
	deps := provideBorrowDeps(cfg, slipRepo, bookRepo, userRepo, txManager, events, loc)

	handlers := router.Handlers{
		Borrow: handler.NewBorrowHandler(
			appborrow.NewCreateSlipUseCase(deps),
			appborrow.NewReturnBookUseCase(deps),
			appborrow.NewUpdateSlipUseCase(deps),
			appborrow.NewDeleteSlipUseCase(deps),
			appborrow.NewDeleteUserSlipsUseCase(deps),
			appborrow.NewQuerySlipsUseCase(deps),
		),
		Book: handler.NewBookHandler(
			appbook.NewCreateBookUseCase(bookService),
			appbook.NewUpdateBookUseCase(bookService, txManager),
			appbook.NewDeleteBookUseCase(bookRepo, slipRepo, txManager),
			appbook.NewQueryBooksUseCase(bookService),
		),
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService),
			appuser.NewManageUsersUseCase(userService),
			appuser.NewDeleteUserUseCase(userRepo, slipRepo, txManager),
		),
		Auth: handler.NewAuthHandler(
			appuser.NewLoginUseCase(userService, jwtManager),
			appuser.NewIntrospectUseCase(jwtManager, tokenStore),
			appuser.NewLogoutUseCase(jwtManager, tokenStore),
		),
	}

	// 接口层
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, tokenStore)
	engine := router.New(cfg, handlers, authMiddleware)

	return provideHTTPServer(cfg, engine), cleanup, nil
}
