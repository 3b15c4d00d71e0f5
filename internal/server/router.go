package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"vault-core/internal/handler"
	"vault-core/internal/handler/middleware"
	"vault-core/internal/handler/response"
	"vault-core/pkg/monitor"
	"vault-core/pkg/validator"
)

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(vault *handler.VaultHandler) *gin.Engine {
	// 0. 初始化监控指标和参数校验器
	monitor.Init()
	validator.Init()

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware())

	// 3. 注册基础路由
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 4. 注册 API 路由组
	api := r.Group("/api/v1")
	{
		api.GET("/ping", func(c *gin.Context) {
			response.Success(c, gin.H{"pong": true})
		})

		v := api.Group("/vault", middleware.CallerIdentity())
		{
			v.POST("/register", vault.Register)
			v.POST("/deposit", vault.Deposit)
			v.POST("/withdraw", vault.Withdraw)
			v.GET("/detail", vault.Detail)
		}
	}

	return r
}
