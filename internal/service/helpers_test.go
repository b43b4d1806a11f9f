package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/aurelia-jewelry/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type fixedSettings StoreSettings

func (f fixedSettings) GetStoreSettings(context.Context) (StoreSettings, error) {
	return StoreSettings(f), nil
}

func testStoreSettings() fixedSettings {
	return fixedSettings{
		ComboPrice:     models.MustMoney("100"),
		DeliveryWindow: "3-5 business days",
		PickupEnabled:  true,
		PickupAddress:  "12 Main St",
		Currency:       "usd",
	}
}

func seedTestProduct(t *testing.T, db *gorm.DB, product models.Product) models.Product {
	t.Helper()
	if product.CategoryID == 0 {
		category := models.Category{Slug: "rings-" + product.Slug, Name: "Rings", IsActive: true}
		if err := db.Create(&category).Error; err != nil {
			t.Fatalf("create category failed: %v", err)
		}
		product.CategoryID = category.ID
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}
