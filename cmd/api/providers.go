package main

import (
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	appborrow "github.com/xiebiao/library/internal/application/borrow"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/pkg/jwt"
)

// 以下 Provider 同时被 main.go 的手动装配和 wire.go 使用

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire)
}

func provideTokenStore(cfg *config.Config, client *goredis.Client) *redis.TokenStore {
	return redis.NewTokenStore(client, cfg.Redis.KeyPrefix)
}

// provideLocation 日期查询按数据库连接的时区划分自然日
func provideLocation(cfg *config.Config) (*time.Location, error) {
	loc, err := time.LoadLocation(cfg.Database.Loc)
	if err != nil {
		return nil, fmt.Errorf("无效的时区 %q: %w", cfg.Database.Loc, err)
	}
	return loc, nil
}

func provideBorrowDeps(
	cfg *config.Config,
	slips borrow.Repository,
	books book.Repository,
	users user.Repository,
	tx *mysql.TxManager,
	events borrow.EventPublisher,
	loc *time.Location,
) appborrow.Deps {
	return appborrow.Deps{
		Slips:    slips,
		Books:    books,
		Users:    users,
		Tx:       tx,
		Events:   events,
		LoanDays: cfg.Borrow.LoanDays,
		Location: loc,
	}
}

func provideHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
