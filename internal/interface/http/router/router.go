package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/library/docs"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// Handlers 全部HTTP处理器
type Handlers struct {
	Borrow *handler.BorrowHandler
	Book   *handler.BookHandler
	User   *handler.UserHandler
	Auth   *handler.AuthHandler
}

// New 创建Gin引擎并注册全部路由
//
// 中间件顺序：Recovery → RequestLogger → CORS → Metrics
// 鉴权分三级：公开、登录（RequireAuth）、管理员（SCOPE_ADMIN）
func New(cfg *config.Config, h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.CORS(cfg.Server.CORS))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "healthy"})
	})

	if cfg.Server.Mode != "release" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	login := auth.RequireAuth()
	admin := []gin.HandlerFunc{login, auth.RequireAuthority(middleware.AuthorityAdmin)}

	authn := r.Group("/authentication")
	{
		authn.POST("/token", h.Auth.Token)
		authn.POST("/introspect", h.Auth.Introspect)
		authn.POST("/logout", login, h.Auth.Logout)
	}

	api := r.Group("/api")

	slips := api.Group("/borrowSlips")
	{
		slips.POST("", h.Borrow.Create)
		slips.GET("", h.Borrow.List)
		slips.GET("/createdAt", h.Borrow.ListByCreatedAt)
		slips.GET("/user/:userId", h.Borrow.ListByUser)
		slips.GET("/book/:bookId", h.Borrow.ListByBook)
		slips.GET("/:id", login, h.Borrow.Get)
		slips.PUT("/return/:detailId", login, h.Borrow.Return)
		slips.PUT("/:id", append(admin, h.Borrow.Update)...)
		slips.DELETE("/user/:userId", append(admin, h.Borrow.DeleteByUser)...)
		slips.DELETE("/:id", append(admin, h.Borrow.Delete)...)
	}

	books := api.Group("/books")
	{
		books.GET("", h.Book.List)
		books.GET("/:id", h.Book.Get)
		books.POST("", append(admin, h.Book.Create)...)
		books.PUT("/:id", append(admin, h.Book.Update)...)
		books.DELETE("/:id", append(admin, h.Book.Delete)...)
	}

	users := api.Group("/users")
	{
		users.POST("", h.User.Create)
		users.GET("", append(admin, h.User.List)...)
		users.GET("/:id", login, h.User.Get)
		users.PUT("/:id", login, h.User.Update)
		users.DELETE("/:id", append(admin, h.User.Delete)...)
		users.POST("/:id/admin", append(admin, h.User.GrantAdmin)...)
		users.DELETE("/:id/admin", append(admin, h.User.RevokeAdmin)...)
	}

	return r
}
