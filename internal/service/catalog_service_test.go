package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aurelia-jewelry/internal/constants"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/repository"
)

func TestCategoryServiceSlugAndDelete(t *testing.T) {
	db := openServiceTestDB(t)
	categories := repository.NewCategoryRepository(db)
	svc := NewCategoryService(categories, nil, 0)
	products := NewProductService(repository.NewProductRepository(db), categories)
	ctx := context.Background()

	rings, err := svc.Create(ctx, CategoryInput{Slug: " Fine Rings ", Name: "Rings"})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if rings.Slug != "fine-rings" || !rings.IsActive {
		t.Fatalf("unexpected category: %+v", rings)
	}
	if _, err := svc.Create(ctx, CategoryInput{Slug: "fine-rings", Name: "Dup"}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("expected slug exists, got %v", err)
	}
	var fieldErr *FieldError
	if _, err := svc.Create(ctx, CategoryInput{}); !errors.As(err, &fieldErr) || len(fieldErr.Fields) != 2 {
		t.Fatalf("expected field errors, got %v", err)
	}

	if _, err := products.Create(ProductInput{CategoryID: rings.ID, Slug: "band", Name: "Band", Price: models.MustMoney("30")}); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := svc.Delete(ctx, rings.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected category in use, got %v", err)
	}

	hidden := false
	if _, err := svc.Update(ctx, rings.ID, CategoryInput{Slug: "fine-rings", Name: "Rings", IsActive: &hidden}); err != nil {
		t.Fatalf("update category failed: %v", err)
	}
	public, err := svc.ListPublic(ctx)
	if err != nil || len(public) != 0 {
		t.Fatalf("hidden category should not be public: %v err=%v", public, err)
	}
}

func TestProductServiceValidationAndPublicListing(t *testing.T) {
	db := openServiceTestDB(t)
	categories := repository.NewCategoryRepository(db)
	svc := NewProductService(repository.NewProductRepository(db), categories)
	catSvc := NewCategoryService(categories, nil, 0)
	necklaces, err := catSvc.Create(context.Background(), CategoryInput{Slug: "necklaces", Name: "Necklaces"})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	var fieldErr *FieldError
	if _, err := svc.Create(ProductInput{Slug: "x"}); !errors.As(err, &fieldErr) {
		t.Fatalf("expected field error, got %v", err)
	}
	if fieldErr.Fields["price"] == "" || fieldErr.Fields["category_id"] == "" || fieldErr.Fields["name"] == "" {
		t.Fatalf("unexpected fields: %v", fieldErr.Fields)
	}
	if _, err := svc.Create(ProductInput{CategoryID: 999, Slug: "x", Name: "X", Price: models.MustMoney("1")}); !errors.Is(err, ErrProductCategoryInvalid) {
		t.Fatalf("expected category invalid, got %v", err)
	}

	chain, err := svc.Create(ProductInput{
		CategoryID: necklaces.ID, Slug: "gold-chain", Name: "Gold Chain", Price: models.MustMoney("80"),
		Colors: []string{" Gold ", "Gold", "", "Silver"},
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if len(chain.Colors) != 2 || chain.Colors[0] != "Gold" {
		t.Fatalf("colors should be cleaned: %v", chain.Colors)
	}
	inactive := false
	if _, err := svc.Create(ProductInput{CategoryID: necklaces.ID, Slug: "draft", Name: "Draft", Price: models.MustMoney("10"), IsActive: &inactive}); err != nil {
		t.Fatalf("create draft failed: %v", err)
	}

	list, total, err := svc.ListPublic("necklaces", "", false, 1, 20)
	if err != nil || total != 1 || list[0].Slug != "gold-chain" {
		t.Fatalf("unexpected public list: total=%d err=%v", total, err)
	}
	if _, err := svc.GetPublicBySlug("draft"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("draft should be hidden, got %v", err)
	}
}

func TestCouponAdminServiceRules(t *testing.T) {
	svc := NewCouponAdminService(repository.NewCouponRepository(openServiceTestDB(t)))

	coupon, err := svc.Create(CouponInput{Code: " save10 ", DiscountType: "percentage", DiscountValue: models.MustMoney("10")})
	if err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	if coupon.Code != "SAVE10" || coupon.DiscountType != constants.DiscountTypePercentage {
		t.Fatalf("unexpected coupon: %+v", coupon)
	}
	if _, err := svc.Create(CouponInput{Code: "SAVE10", DiscountType: "FIXED", DiscountValue: models.MustMoney("5")}); !errors.Is(err, ErrCouponCodeExists) {
		t.Fatalf("expected duplicate code, got %v", err)
	}
	cases := []CouponInput{
		{Code: "A", DiscountType: "PERCENTAGE", DiscountValue: models.MustMoney("120")},
		{Code: "B", DiscountType: "FIXED", DiscountValue: models.MustMoney("0")},
		{Code: "C", DiscountType: "BOGO", DiscountValue: models.MustMoney("5")},
		{Code: "D", DiscountType: "FIXED", DiscountValue: models.MustMoney("5"), MinOrderAmount: models.MustMoney("-1")},
	}
	for _, input := range cases {
		if _, err := svc.Create(input); !errors.Is(err, ErrDiscountInvalid) {
			t.Fatalf("coupon %s expected discount invalid, got %v", input.Code, err)
		}
	}
	if err := svc.Delete(9999); !errors.Is(err, ErrCouponMissing) {
		t.Fatalf("expected missing coupon, got %v", err)
	}
}

func TestShippingRuleServiceRange(t *testing.T) {
	svc := NewShippingRuleService(repository.NewShippingRuleRepository(openServiceTestDB(t)))

	if _, err := svc.Create(ShippingRuleInput{MinAmount: models.MustMoney("50"), MaxAmount: models.MoneyPtr("10"), Price: models.MustMoney("5")}); !errors.Is(err, ErrShippingRuleInvalid) {
		t.Fatalf("expected invalid range, got %v", err)
	}
	rule, err := svc.Create(ShippingRuleInput{Name: " standard ", MinAmount: models.MustMoney("0"), MaxAmount: models.MoneyPtr("49.99"), Price: models.MustMoney("7.99")})
	if err != nil {
		t.Fatalf("create rule failed: %v", err)
	}
	updated, err := svc.Update(rule.ID, ShippingRuleInput{Name: "standard", MinAmount: models.MustMoney("0"), Price: models.MustMoney("6")})
	if err != nil {
		t.Fatalf("update rule failed: %v", err)
	}
	if updated.MaxAmount != nil || updated.Price.String() != "6.00" {
		t.Fatalf("unexpected rule: %+v", updated)
	}
}

func TestShippingRuleServiceRejectsOverlap(t *testing.T) {
	svc := NewShippingRuleService(repository.NewShippingRuleRepository(openServiceTestDB(t)))

	low, err := svc.Create(ShippingRuleInput{Name: "standard", MinAmount: models.MustMoney("0"), MaxAmount: models.MoneyPtr("99.99"), Price: models.MustMoney("7.99")})
	if err != nil {
		t.Fatalf("create low bracket failed: %v", err)
	}
	high, err := svc.Create(ShippingRuleInput{Name: "free", MinAmount: models.MustMoney("100"), Price: models.MustMoney("0")})
	if err != nil {
		t.Fatalf("adjacent bracket should be accepted: %v", err)
	}

	overlapping := []ShippingRuleInput{
		{Name: "inside low", MinAmount: models.MustMoney("20"), MaxAmount: models.MoneyPtr("30"), Price: models.MustMoney("5")},
		{Name: "shared edge", MinAmount: models.MustMoney("99.99"), MaxAmount: models.MoneyPtr("99.99"), Price: models.MustMoney("5")},
		{Name: "unbounded", MinAmount: models.MustMoney("500"), Price: models.MustMoney("0")},
	}
	for _, input := range overlapping {
		if _, err := svc.Create(input); !errors.Is(err, ErrShippingRuleOverlap) || !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected overlap error, got %v", input.Name, err)
		}
	}

	if _, err := svc.Update(low.ID, ShippingRuleInput{Name: "standard", MinAmount: models.MustMoney("0"), MaxAmount: models.MoneyPtr("150"), Price: models.MustMoney("7.99")}); !errors.Is(err, ErrShippingRuleOverlap) {
		t.Fatalf("expected overlap on update, got %v", err)
	}
	if _, err := svc.Update(high.ID, ShippingRuleInput{Name: "free", MinAmount: models.MustMoney("100"), Price: models.MustMoney("0")}); err != nil {
		t.Fatalf("updating a rule in place should not conflict with itself: %v", err)
	}
	list, err := svc.List()
	if err != nil || len(list) != 2 {
		t.Fatalf("unexpected rules: %v err=%v", list, err)
	}
}

func TestBannerServiceRequiresImage(t *testing.T) {
	svc := NewBannerService(repository.NewBannerRepository(openServiceTestDB(t)), nil, 0)
	ctx := context.Background()
	var fieldErr *FieldError
	if _, err := svc.Create(ctx, BannerInput{Title: "Spring"}); !errors.As(err, &fieldErr) {
		t.Fatalf("expected image required, got %v", err)
	}
	if _, err := svc.Create(ctx, BannerInput{Title: "Spring", ImageURL: "https://cdn.example.com/spring.jpg"}); err != nil {
		t.Fatalf("create banner failed: %v", err)
	}
	list, err := svc.ListPublic(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("unexpected public banners: %v err=%v", list, err)
	}
	if err := svc.Delete(ctx, 4242); !errors.Is(err, ErrBannerNotFound) {
		t.Fatalf("expected banner not found, got %v", err)
	}
}
