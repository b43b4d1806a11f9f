package provider

import (
	"errors"
	"time"

	"github.com/aurelia-jewelry/internal/authz"
	"github.com/aurelia-jewelry/internal/cache"
	"github.com/aurelia-jewelry/internal/config"
	"github.com/aurelia-jewelry/internal/logger"
	"github.com/aurelia-jewelry/internal/metrics"
	"github.com/aurelia-jewelry/internal/payment/stripe"
	"github.com/aurelia-jewelry/internal/queue"
	"github.com/aurelia-jewelry/internal/repository"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config          *config.Config
	DB              *gorm.DB
	Cache           *cache.Store
	QueueClient     *queue.Client
	Metrics         *metrics.Store
	MetricsRegistry *prometheus.Registry
	StripeGateway   *stripe.Gateway

	// Repositories
	AdminRepo        repository.AdminRepository
	OrderRepo        repository.OrderRepository
	ProductRepo      repository.ProductRepository
	CategoryRepo     repository.CategoryRepository
	CouponRepo       repository.CouponRepository
	ShippingRuleRepo repository.ShippingRuleRepository
	BannerRepo       repository.BannerRepository
	SettingRepo      repository.SettingRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	EmailService        *service.EmailService
	SettingService      *service.SettingService
	CartService         *service.CartService
	PricingService      *service.PricingService
	CheckoutService     *service.CheckoutService
	OrderMaterializer   *service.OrderMaterializer
	OrderService        *service.OrderService
	ProductService      *service.ProductService
	CategoryService     *service.CategoryService
	BannerService       *service.BannerService
	CouponAdminService  *service.CouponAdminService
	ShippingRuleService *service.ShippingRuleService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if db == nil {
		return nil, errors.New("db is nil")
	}

	c := &Container{
		Config: cfg,
		DB:     db,
		Cache:  cache.New(cfg.Redis),
	}
	if !c.Cache.Enabled() {
		logger.Infow("provider_cache_disabled")
	}

	if cfg.Metrics.Enabled {
		c.MetricsRegistry = prometheus.NewRegistry()
		c.Metrics = metrics.New(c.MetricsRegistry)
	}

	// 初始化队列客户端
	qc, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
	} else {
		c.QueueClient = qc
	}

	c.StripeGateway = stripe.New(stripe.Config{
		SecretKey:               cfg.Stripe.SecretKey,
		WebhookSecret:           cfg.Stripe.WebhookSecret,
		SuccessURL:              cfg.Stripe.SuccessURL,
		CancelURL:               cfg.Stripe.CancelURL,
		APIBaseURL:              cfg.Stripe.APIBaseURL,
		WebhookToleranceSeconds: cfg.Stripe.WebhookToleranceSeconds,
		PaymentMethodTypes:      cfg.Stripe.PaymentMethodTypes,
		Timeout:                 time.Duration(cfg.Stripe.TimeoutSeconds) * time.Second,
	})

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() {
	db := c.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.ShippingRuleRepo = repository.NewShippingRuleRepository(db)
	c.BannerRepo = repository.NewBannerRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}
	c.AuthzService = authzService

	cfg := c.Config
	c.AuthService = service.NewAuthService(cfg.JWT, c.AdminRepo)
	c.EmailService = service.NewEmailService(&cfg.Email)
	c.SettingService = service.NewSettingService(c.SettingRepo, c.Cache, cfg.Store, cfg.Redis.SettingsTTL())
	c.PricingService = service.NewPricingService(c.CouponRepo, c.ShippingRuleRepo)
	c.CartService = service.NewCartService(c.ProductRepo, c.SettingService)
	c.CheckoutService = service.NewCheckoutService(c.CartService, c.PricingService, c.SettingService, c.StripeGateway, c.Metrics)

	// 队列未启用时注入无类型 nil，业务侧据此跳过邮件
	var mailQueue service.OrderMailQueue
	if c.QueueClient.Enabled() {
		mailQueue = c.QueueClient
	}
	c.OrderMaterializer = service.NewOrderMaterializer(c.OrderRepo, c.StripeGateway, mailQueue, c.Metrics)
	c.OrderService = service.NewOrderService(c.OrderRepo, mailQueue)

	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo, c.Cache, cfg.Redis.CatalogTTL())
	c.BannerService = service.NewBannerService(c.BannerRepo, c.Cache, cfg.Redis.CatalogTTL())
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo)
	c.ShippingRuleService = service.NewShippingRuleService(c.ShippingRuleRepo)
	return nil
}

// Close 释放外部连接
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.QueueClient != nil {
		errs = append(errs, c.QueueClient.Close())
	}
	if client := c.Cache.Client(); client != nil {
		errs = append(errs, client.Close())
	}
	return errors.Join(errs...)
}
