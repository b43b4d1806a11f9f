package repository

import (
	"testing"

	"github.com/aurelia-jewelry/internal/models"
)

func seedSearchProducts(t *testing.T, repo *GormProductRepository) []models.Product {
	t.Helper()
	seed := []models.Product{
		{CategoryID: 1, Slug: "rose-gold-band", Name: "Rose Gold Band", Description: "Slim stacking band", PriceAmount: models.MustMoney("40"), IsActive: true, IsComboEligible: true},
		{CategoryID: 1, Slug: "silver-hoop", Name: "Silver Hoop", Description: "Everyday 100% recycled silver", PriceAmount: models.MustMoney("30"), IsActive: true},
		{CategoryID: 1, Slug: "gold_chain", Name: "Fine Chain", PriceAmount: models.MustMoney("80"), IsActive: true, IsComboEligible: true},
	}
	for i := range seed {
		if err := repo.Create(&seed[i]); err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}
	return seed
}

func TestProductSearchMatchesNameSlugAndDescription(t *testing.T) {
	repo := NewProductRepository(openTestDB(t))
	seedSearchProducts(t, repo)

	cases := map[string][]string{
		"GOLD":     {"rose-gold-band", "gold_chain"},
		"stacking": {"rose-gold-band"},
		"100%":     {"silver-hoop"},
		"d_c":      {"gold_chain"},
		"missing":  nil,
	}
	for keyword, want := range cases {
		list, total, err := repo.List(ProductListFilter{Search: keyword, OnlyActive: true})
		if err != nil {
			t.Fatalf("%s: list failed: %v", keyword, err)
		}
		if int(total) != len(want) || len(list) != len(want) {
			t.Fatalf("%s: want %v got total=%d list=%+v", keyword, want, total, list)
		}
		got := map[string]bool{}
		for _, p := range list {
			got[p.Slug] = true
		}
		for _, slug := range want {
			if !got[slug] {
				t.Fatalf("%s: missing %s in %+v", keyword, slug, list)
			}
		}
	}
}

func TestProductComboFilterAndListByIDs(t *testing.T) {
	repo := NewProductRepository(openTestDB(t))
	seed := seedSearchProducts(t, repo)

	combo, total, err := repo.List(ProductListFilter{ComboEligible: true, OnlyActive: true})
	if err != nil || total != 2 || len(combo) != 2 {
		t.Fatalf("combo filter: total=%d err=%v", total, err)
	}

	byIDs, err := repo.ListByIDs([]uint{seed[0].ID, seed[2].ID, 999})
	if err != nil {
		t.Fatalf("list by ids failed: %v", err)
	}
	if len(byIDs) != 2 {
		t.Fatalf("unknown ids should be skipped, got %d", len(byIDs))
	}

	count, err := repo.CountBySlug("silver-hoop", seed[1].ID)
	if err != nil || count != 0 {
		t.Fatalf("slug check should exclude self, count=%d err=%v", count, err)
	}
	count, err = repo.CountBySlug("silver-hoop", 0)
	if err != nil || count != 1 {
		t.Fatalf("slug check should see existing slug, count=%d err=%v", count, err)
	}
}
