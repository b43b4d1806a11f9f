package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/aurelia-jewelry/internal/config"
	adminhandlers "github.com/aurelia-jewelry/internal/http/handlers/admin"
	publichandlers "github.com/aurelia-jewelry/internal/http/handlers/public"
	"github.com/aurelia-jewelry/internal/http/response"
	"github.com/aurelia-jewelry/internal/logger"
	"github.com/aurelia-jewelry/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "aurelia"
	}
	redisClient := c.Cache.Client()
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.RateLimit.Checkout.WindowSeconds,
		MaxRequests:   cfg.RateLimit.Checkout.MaxRequests,
		BlockSeconds:  cfg.RateLimit.Checkout.BlockSeconds,
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.RateLimit.Login.WindowSeconds,
		MaxRequests:   cfg.RateLimit.Login.MaxRequests,
		BlockSeconds:  cfg.RateLimit.Login.BlockSeconds,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	r.Use(MetricsMiddleware(c.Metrics))

	r.GET("/health", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{"status": "ok"})
	})
	if c.MetricsRegistry != nil {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.HandlerFor(c.MetricsRegistry, promhttp.HandlerOpts{})))
	}

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/banners", publicHandler.GetBanners)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:slug", publicHandler.GetProductBySlug)
			public.POST("/pricing/quote", publicHandler.QuotePricing)
			public.POST("/coupons/validate", publicHandler.ValidateCoupon)
			public.POST("/cart/combo", publicHandler.BuildCombo)
			public.POST("/cart/summary", publicHandler.SummarizeCart)
			public.POST("/checkout", RateLimitMiddleware(redisClient, checkoutRule, KeyByIPAndJSONField("contact.email")), publicHandler.CreateCheckout)
		}

		// 支付回调（原始状态码）
		apiV1.POST("/payments/webhook/stripe", publicHandler.HandleStripeWebhook)

		// 管理端
		apiV1.POST("/admin/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(c.AuthService, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
		{
			admin.GET("/me", adminHandler.GetAdminMe)

			admin.GET("/products", adminHandler.GetAdminProducts)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.GET("/products/:id", adminHandler.GetAdminProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)

			admin.GET("/categories", adminHandler.GetAdminCategories)
			admin.POST("/categories", adminHandler.CreateCategory)
			admin.PUT("/categories/:id", adminHandler.UpdateCategory)
			admin.DELETE("/categories/:id", adminHandler.DeleteCategory)

			admin.GET("/coupons", adminHandler.GetAdminCoupons)
			admin.POST("/coupons", adminHandler.CreateCoupon)
			admin.PUT("/coupons/:id", adminHandler.UpdateCoupon)
			admin.DELETE("/coupons/:id", adminHandler.DeleteCoupon)

			admin.GET("/shipping-rules", adminHandler.GetShippingRules)
			admin.POST("/shipping-rules", adminHandler.CreateShippingRule)
			admin.PUT("/shipping-rules/:id", adminHandler.UpdateShippingRule)
			admin.DELETE("/shipping-rules/:id", adminHandler.DeleteShippingRule)

			admin.GET("/orders", adminHandler.GetAdminOrders)
			admin.GET("/orders/:id", adminHandler.GetAdminOrder)
			admin.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)

			admin.GET("/banners", adminHandler.GetAdminBanners)
			admin.POST("/banners", adminHandler.CreateBanner)
			admin.PUT("/banners/:id", adminHandler.UpdateBanner)
			admin.DELETE("/banners/:id", adminHandler.DeleteBanner)

			admin.GET("/settings/store", adminHandler.GetStoreSettings)
			admin.PUT("/settings/store", adminHandler.UpdateStoreSettings)
		}
	}

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, response.Response{StatusCode: response.CodeNotFound, Msg: "not found"})
	})

	return r
}
