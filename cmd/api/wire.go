//go:build wireinject
// +build wireinject

// Wire 依赖声明，`wire gen ./cmd/api` 生成 wire_gen.go 后可替换 main.go 中的 buildServer

package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"

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
)

// infrastructureSet 数据库、Redis、消息
var infrastructureSet = wire.NewSet(
	mysql.NewDB,
	redis.NewClient,
	mq.NewEventPublisher,
	provideLocation,
)

var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewBorrowSlipRepository,
	mysql.NewTxManager,
	wire.Bind(new(appbook.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appuser.TxManager), new(*mysql.TxManager)),
)

var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
)

var applicationSet = wire.NewSet(
	provideBorrowDeps,
	appborrow.NewCreateSlipUseCase,
	appborrow.NewReturnBookUseCase,
	appborrow.NewUpdateSlipUseCase,
	appborrow.NewDeleteSlipUseCase,
	appborrow.NewDeleteUserSlipsUseCase,
	appborrow.NewQuerySlipsUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewQueryBooksUseCase,
	appuser.NewRegisterUseCase,
	appuser.NewManageUsersUseCase,
	appuser.NewDeleteUserUseCase,
	appuser.NewLoginUseCase,
	appuser.NewIntrospectUseCase,
	appuser.NewLogoutUseCase,
)

// authSet 令牌签发与黑名单
var authSet = wire.NewSet(
	provideJWTManager,
	provideTokenStore,
	wire.Bind(new(appuser.TokenBlacklist), new(*redis.TokenStore)),
	wire.Bind(new(middleware.RevocationChecker), new(*redis.TokenStore)),
	middleware.NewAuthMiddleware,
)

var handlerSet = wire.NewSet(
	handler.NewBorrowHandler,
	handler.NewBookHandler,
	handler.NewUserHandler,
	handler.NewAuthHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
	wire.Bind(new(http.Handler), new(*gin.Engine)),
	provideHTTPServer,
)

// InitializeServer 与 buildServer 产出相同的 *http.Server
func InitializeServer(cfg *config.Config) (*http.Server, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		authSet,
		handlerSet,
	)
	return nil, nil, nil
}
