package main

import (
	"context"

	"github.com/aurelia-jewelry/internal/config"
	"github.com/aurelia-jewelry/internal/constants"
	"github.com/aurelia-jewelry/internal/logger"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/repository"
	"github.com/aurelia-jewelry/internal/service"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Database.Debug); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(models.DB); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.InitDefaultAdmin(models.DB, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		stdLog.Printf("Failed to create default admin: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{Slug: "rings", Name: "Rings", Description: "Stackable bands and statement rings", IsActive: true, SortOrder: 1},
		{Slug: "earrings", Name: "Earrings", Description: "Hoops, studs and drops", IsActive: true, SortOrder: 2},
		{Slug: "necklaces", Name: "Necklaces", Description: "Chains and pendants", IsActive: true, SortOrder: 3},
	}
	categoryIDs := map[string]uint{}
	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err == nil {
			stdLog.Printf("Category already exists: %s", cat.Slug)
			categoryIDs[cat.Slug] = existing.ID
			continue
		}
		if err := models.DB.Create(&cat).Error; err != nil {
			stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			continue
		}
		stdLog.Printf("Created category: %s", cat.Slug)
		categoryIDs[cat.Slug] = cat.ID
	}

	// 添加商品
	products := []models.Product{
		{
			CategoryID:      categoryIDs["rings"],
			Slug:            "classic-stack-band",
			Name:            "Classic Stack Band",
			Description:     "A slim polished band made for stacking.",
			PriceAmount:     models.MustMoney("39.00"),
			ImageURL:        "https://images.unsplash.com/photo-1605100804763-247f67b3557e?w=800",
			Colors:          models.StringArray{"Gold", "Silver", "Rose Gold"},
			Sizes:           models.StringArray{"5", "6", "7", "8"},
			IsComboEligible: true,
			IsActive:        true,
			SortOrder:       1,
		},
		{
			CategoryID:      categoryIDs["rings"],
			Slug:            "twisted-rope-ring",
			Name:            "Twisted Rope Ring",
			Description:     "Braided texture that catches the light.",
			PriceAmount:     models.MustMoney("45.00"),
			ImageURL:        "https://images.unsplash.com/photo-1603561591411-07134e71a2a9?w=800",
			Colors:          models.StringArray{"Gold", "Silver"},
			Sizes:           models.StringArray{"5", "6", "7", "8"},
			IsComboEligible: true,
			IsActive:        true,
			SortOrder:       2,
		},
		{
			CategoryID:      categoryIDs["earrings"],
			Slug:            "mini-hoop-earrings",
			Name:            "Mini Hoop Earrings",
			Description:     "Everyday hoops in a lightweight finish.",
			PriceAmount:     models.MustMoney("50.00"),
			ImageURL:        "https://images.unsplash.com/photo-1535632066927-ab7c9ab60908?w=800",
			Colors:          models.StringArray{"Gold", "Silver"},
			IsComboEligible: true,
			IsActive:        true,
			SortOrder:       3,
		},
		{
			CategoryID:  categoryIDs["necklaces"],
			Slug:        "pearl-pendant-necklace",
			Name:        "Pearl Pendant Necklace",
			Description: "Freshwater pearl on a fine chain.",
			PriceAmount: models.MustMoney("120.00"),
			ImageURL:    "https://images.unsplash.com/photo-1599643478518-a784e5dc4c8f?w=800",
			Colors:      models.StringArray{"Gold"},
			Sizes:       models.StringArray{"16in", "18in"},
			IsActive:    true,
			SortOrder:   4,
		},
	}
	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err == nil {
			stdLog.Printf("Product already exists: %s", product.Slug)
			continue
		}
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
		} else {
			stdLog.Printf("Created product: %s", product.Slug)
		}
	}

	// 优惠码
	coupon := models.Coupon{
		Code:          "SAVE10",
		DiscountType:  constants.DiscountTypePercentage,
		DiscountValue: models.MustMoney("10"),
		IsActive:      true,
	}
	var existingCoupon models.Coupon
	if err := models.DB.Where("code = ?", coupon.Code).First(&existingCoupon).Error; err == nil {
		stdLog.Printf("Coupon already exists: %s", coupon.Code)
	} else if err := models.DB.Create(&coupon).Error; err != nil {
		stdLog.Printf("Failed to create coupon %s: %v", coupon.Code, err)
	} else {
		stdLog.Printf("Created coupon: %s", coupon.Code)
	}

	// 运费区间
	var ruleCount int64
	models.DB.Model(&models.ShippingRule{}).Count(&ruleCount)
	if ruleCount == 0 {
		rules := []models.ShippingRule{
			{Name: "Standard", MinAmount: models.MustMoney("0"), MaxAmount: models.MoneyPtr("99.99"), Price: models.MustMoney("9.99"), SortOrder: 1},
			{Name: "Free over 100", MinAmount: models.MustMoney("100"), Price: models.MustMoney("0"), SortOrder: 2},
		}
		if err := models.DB.Create(&rules).Error; err != nil {
			stdLog.Printf("Failed to create shipping rules: %v", err)
		} else {
			stdLog.Printf("Created %d shipping rules", len(rules))
		}
	}

	// 店铺设置
	comboPrice := cfg.Store.ComboPrice
	deliveryWindow := cfg.Store.DeliveryWindow
	pickupEnabled := cfg.Store.PickupEnabled
	pickupAddress := cfg.Store.PickupAddress
	if pickupAddress == "" {
		pickupAddress = "12 Main St, Springfield"
	}
	settingSvc := service.NewSettingService(repository.NewSettingRepository(models.DB), nil, cfg.Store, 0)
	if _, err := settingSvc.UpdateStoreSettings(context.Background(), service.StoreSettingsInput{
		ComboPrice:     &comboPrice,
		DeliveryWindow: &deliveryWindow,
		PickupEnabled:  &pickupEnabled,
		PickupAddress:  &pickupAddress,
	}); err != nil {
		stdLog.Printf("Failed to save store settings: %v", err)
	}

	// 首页横幅
	var bannerCount int64
	models.DB.Model(&models.Banner{}).Count(&bannerCount)
	if bannerCount == 0 {
		banner := models.Banner{
			Title:    "Build your stack",
			Subtitle: "Any three combo pieces for one price",
			ImageURL: "https://images.unsplash.com/photo-1515562141207-7a88fb7ce338?w=1600",
			LinkURL:  "/combo",
			IsActive: true,
		}
		if err := models.DB.Create(&banner).Error; err != nil {
			stdLog.Printf("Failed to create banner: %v", err)
		}
	}

	stdLog.Printf("Seed completed")
}
