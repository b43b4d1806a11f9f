package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/repository"
)

func TestResolveUsesServerPrices(t *testing.T) {
	db := openServiceTestDB(t)
	ring := seedTestProduct(t, db, models.Product{Slug: "pearl-ring", Name: "Pearl Ring", PriceAmount: models.MustMoney("45.50"), Sizes: models.StringArray{"6", "7"}, IsActive: true})
	svc := NewCartService(repository.NewProductRepository(db), testStoreSettings())

	resolved, err := svc.Resolve(context.Background(), []CartLineInput{
		{ProductID: ring.ID, Quantity: 1, Size: "7"},
		{ProductID: ring.ID, Quantity: 2, Size: " 7 "},
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(resolved.Items) != 1 || resolved.Items[0].Quantity != 3 {
		t.Fatalf("same variant should merge: %+v", resolved.Items)
	}
	if resolved.Total().StringFixed(2) != "136.50" {
		t.Fatalf("unexpected total: %s", resolved.Total())
	}
}

func TestResolveRejectsInvalidLines(t *testing.T) {
	db := openServiceTestDB(t)
	ring := seedTestProduct(t, db, models.Product{Slug: "band", Name: "Band", PriceAmount: models.MustMoney("30"), Sizes: models.StringArray{"6"}, IsActive: true})
	hidden := seedTestProduct(t, db, models.Product{Slug: "hidden", Name: "Hidden", PriceAmount: models.MustMoney("30")})
	svc := NewCartService(repository.NewProductRepository(db), testStoreSettings())

	cases := []struct {
		name  string
		lines []CartLineInput
		want  error
	}{
		{"empty", nil, ErrCartEmpty},
		{"zero quantity", []CartLineInput{{ProductID: ring.ID, Quantity: 0}}, ErrCartItemInvalid},
		{"unknown size", []CartLineInput{{ProductID: ring.ID, Quantity: 1, Size: "9"}}, ErrCartItemInvalid},
		{"inactive", []CartLineInput{{ProductID: hidden.ID, Quantity: 1}}, ErrProductUnavailable},
		{"missing", []CartLineInput{{ProductID: 9999, Quantity: 1}}, ErrProductUnavailable},
	}
	for _, tc := range cases {
		if _, err := svc.Resolve(context.Background(), tc.lines); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestBuildComboSplitsComboPrice(t *testing.T) {
	db := openServiceTestDB(t)
	ids := make([]uint, 0, 3)
	for _, slug := range []string{"studs", "chain", "cuff"} {
		p := seedTestProduct(t, db, models.Product{Slug: slug, Name: slug, PriceAmount: models.MustMoney("60"), IsComboEligible: true, IsActive: true})
		ids = append(ids, p.ID)
	}
	svc := NewCartService(repository.NewProductRepository(db), testStoreSettings())

	items, err := svc.BuildCombo(context.Background(), []ComboPickInput{{ProductID: ids[0]}, {ProductID: ids[1]}, {ProductID: ids[2]}})
	if err != nil {
		t.Fatalf("build combo failed: %v", err)
	}
	if len(items) != 3 || items[0].ComboGroupID == "" || items[0].ComboGroupID != items[2].ComboGroupID {
		t.Fatalf("unexpected combo items: %+v", items)
	}
	if items[0].UnitPrice.StringFixed(2) != "33.33" || items[2].UnitPrice.StringFixed(2) != "33.34" {
		t.Fatalf("unexpected combo split: %s %s", items[0].UnitPrice, items[2].UnitPrice)
	}

	// 客户端回传的组合行按当前组合价重算
	lines := make([]CartLineInput, 0, 3)
	for _, item := range items {
		lines = append(lines, CartLineInput{ProductID: item.ProductID, Quantity: 1, ComboGroupID: item.ComboGroupID})
	}
	summary, err := svc.Summarize(context.Background(), lines)
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if summary.Total.String() != "100.00" || len(summary.Groups) != 1 || summary.Count != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestResolveRejectsComboLineQuantity(t *testing.T) {
	db := openServiceTestDB(t)
	ids := make([]uint, 0, 3)
	for _, slug := range []string{"hoops", "pendant", "bangle"} {
		p := seedTestProduct(t, db, models.Product{Slug: slug, Name: slug, PriceAmount: models.MustMoney("60"), IsComboEligible: true, IsActive: true})
		ids = append(ids, p.ID)
	}
	svc := NewCartService(repository.NewProductRepository(db), testStoreSettings())

	lines := []CartLineInput{
		{ProductID: ids[0], Quantity: 5, ComboGroupID: "grp-qty"},
		{ProductID: ids[1], Quantity: 1, ComboGroupID: "grp-qty"},
		{ProductID: ids[2], Quantity: 1, ComboGroupID: "grp-qty"},
	}
	if _, err := svc.Resolve(context.Background(), lines); !errors.Is(err, ErrComboInvalid) {
		t.Fatalf("expected combo invalid for quantity 5, got %v", err)
	}

	lines[0].Quantity = 1
	resolved, err := svc.Resolve(context.Background(), lines)
	if err != nil {
		t.Fatalf("resolve combo failed: %v", err)
	}
	if resolved.Count() != 3 {
		t.Fatalf("unexpected combo count: %d", resolved.Count())
	}
}

func TestBuildComboRejectsIneligibleProduct(t *testing.T) {
	db := openServiceTestDB(t)
	a := seedTestProduct(t, db, models.Product{Slug: "a", Name: "A", PriceAmount: models.MustMoney("10"), IsComboEligible: true, IsActive: true})
	b := seedTestProduct(t, db, models.Product{Slug: "b", Name: "B", PriceAmount: models.MustMoney("10"), IsComboEligible: true, IsActive: true})
	c := seedTestProduct(t, db, models.Product{Slug: "c", Name: "C", PriceAmount: models.MustMoney("10"), IsActive: true})
	svc := NewCartService(repository.NewProductRepository(db), testStoreSettings())

	_, err := svc.BuildCombo(context.Background(), []ComboPickInput{{ProductID: a.ID}, {ProductID: b.ID}, {ProductID: c.ID}})
	if !errors.Is(err, ErrComboInvalid) {
		t.Fatalf("expected combo invalid, got %v", err)
	}
	if _, err := svc.BuildCombo(context.Background(), []ComboPickInput{{ProductID: a.ID}}); !errors.Is(err, ErrComboInvalid) {
		t.Fatalf("expected combo size error, got %v", err)
	}
}
