package router

import (
	"fmt"
	"strings"

	"github.com/rollstock-erp/internal/cache"
	"github.com/rollstock-erp/internal/config"
	opshandlers "github.com/rollstock-erp/internal/http/handlers/ops"
	"github.com/rollstock-erp/internal/logger"
	"github.com/rollstock-erp/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	opsHandler := opshandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "rollstock"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), opsHandler.Login)
		}

		// 作业接口（需鉴权）
		authed := apiV1.Group("")
		authed.Use(OperatorJWTAuthMiddleware(cfg.JWT.SecretKey, c.OperatorRepo))
		{
			authed.GET("/me", opsHandler.GetCurrentOperator)
			authed.PUT("/me/password", opsHandler.ChangePassword)

			// 库存单元
			authed.POST("/units/primary", opsHandler.IntakeUnit)
			authed.POST("/units/primary/batch", opsHandler.IntakeBatch)
			authed.POST("/units/cut", opsHandler.CutUnit)
			authed.GET("/units/primary", opsHandler.ListPrimaryUnits)
			authed.GET("/units/derived", opsHandler.ListDerivedUnits)
			authed.DELETE("/units/primary/:id", opsHandler.DeletePrimaryUnit)
			authed.DELETE("/units/derived/:id", opsHandler.DeleteDerivedUnit)
			authed.GET("/units/by-barcode/:barcode", opsHandler.LookupBarcode)

			// 客户
			authed.POST("/customers", opsHandler.CreateCustomer)
			authed.GET("/customers", opsHandler.ListCustomers)
			authed.GET("/customers/:id", opsHandler.GetCustomer)

			// 订单
			authed.POST("/orders", opsHandler.CreateOrder)
			authed.GET("/orders", opsHandler.ListOrders)
			authed.GET("/orders/outstanding", opsHandler.ListOutstandingOrders)
			authed.GET("/orders/:id", opsHandler.GetOrder)
			authed.GET("/orders/:id/progress", opsHandler.GetOrderProgress)
			authed.GET("/orders/:id/shipment", opsHandler.GetOrderShipment)

			// 扫描
			authed.POST("/scans", opsHandler.RecordScan)
			authed.POST("/scans/uncoded", opsHandler.RecordUncoded)
			authed.DELETE("/scans/:id", opsHandler.UndoScan)

			// 发货
			authed.POST("/shipments/finalize", opsHandler.FinalizeShipment)
			authed.GET("/shipments", opsHandler.ListShipments)
			authed.GET("/shipments/:id", opsHandler.GetShipment)
		}
	}

	return r
}
