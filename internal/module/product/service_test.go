package product

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/simp-lee/showroom/internal/domain"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&domain.Collection{},
		&domain.Product{},
		&domain.ProductVariant{},
		&domain.ProductImage{},
		&domain.TechnicalSpecification{},
		&domain.SizeChart{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo, err := NewRepository(db)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	return NewService(repo), db
}

func seedCollection(t *testing.T, db *gorm.DB) *domain.Collection {
	t.Helper()
	c := &domain.Collection{
		Name:   "Collection " + uuid.NewString()[:8],
		Slug:   "collection-" + uuid.NewString()[:8],
		Season: "Summer",
		Year:   2024,
		Status: domain.CollectionStatusActive,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed collection: %v", err)
	}
	return c
}

func validBundle(collectionID uuid.UUID, sku string) *domain.ProductBundle {
	return &domain.ProductBundle{
		Product: domain.Product{
			Name:         "Wave Rider",
			SKU:          sku,
			Category:     "bikini",
			CollectionID: collectionID,
		},
	}
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func appError(t *testing.T, err error) *domain.AppError {
	t.Helper()
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("err = %v, want *domain.AppError", err)
	}
	return appErr
}

func TestService_Create_PersistsBundle(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	b := validBundle(col.ID, "wr-001")
	b.Variants = []domain.BundleVariant{
		{ProductVariant: domain.ProductVariant{Name: "Coral", Color: "Coral", ColorCode: "#FF6F61"}, SKUSuffix: "cor"},
		{ProductVariant: domain.ProductVariant{Name: "Navy", Color: "Navy"}, SKUSuffix: "NAV"},
	}
	b.Specifications = []domain.TechnicalSpecification{
		{Type: "material", Title: "Fabric", Content: map[string]any{"composition": "78% ECONYL"}},
	}
	b.SizeChart = &domain.SizeChart{
		Sizes: []domain.SizeChartRow{{"size": "S", "uk": "8", "eu": "36"}},
	}

	created, err := svc.Create(ctx, b, "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.SKU != "WR-001" {
		t.Errorf("sku = %q, want upper-cased WR-001", created.SKU)
	}
	if created.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR default", created.Currency)
	}
	if created.Status != domain.ProductStatusActive {
		t.Errorf("status = %q, want active default", created.Status)
	}
	if len(created.Variants) != 2 {
		t.Fatalf("variants = %d, want 2", len(created.Variants))
	}
	skus := map[string]bool{}
	for _, v := range created.Variants {
		skus[v.SKU] = true
	}
	if !skus["WR-001-COR"] || !skus["WR-001-NAV"] {
		t.Errorf("variant skus = %v, want WR-001-COR and WR-001-NAV", skus)
	}
	if len(created.Specifications) != 1 {
		t.Errorf("specifications = %d, want 1", len(created.Specifications))
	}
	if created.SizeChart == nil {
		t.Fatal("size chart not loaded")
	}
	if created.SizeChart.ChartType != "standard" || created.SizeChart.MeasurementUnit != "inches" {
		t.Errorf("chart defaults = %q/%q, want standard/inches",
			created.SizeChart.ChartType, created.SizeChart.MeasurementUnit)
	}
	if created.Collection == nil || created.Collection.ID != col.ID {
		t.Error("collection relation not loaded")
	}
}

func TestService_Create_CollectionMissing(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Create(context.Background(), validBundle(uuid.New(), "WR-002"), "tester")
	if !domain.IsValidation(err) || domain.Reason(err) != "COLLECTION_NOT_FOUND" {
		t.Fatalf("err = %v, want COLLECTION_NOT_FOUND validation", err)
	}
}

func TestService_Create_SKUValidation(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	cases := []struct {
		name   string
		sku    string
		reason string
	}{
		{"illegal characters", "bad sku!", "INVALID_SKU_FORMAT"},
		{"too short", "AB", "INVALID_SKU_LENGTH"},
		{"too long", strings.Repeat("A", 51), "INVALID_SKU_LENGTH"},
		{"empty", "", "INVALID_SKU_FORMAT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, validBundle(col.ID, tc.sku), "tester")
			if !domain.IsValidation(err) || domain.Reason(err) != tc.reason {
				t.Fatalf("err = %v, want %s validation", err, tc.reason)
			}
		})
	}
}

func TestService_Create_DuplicateSKU(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	if _, err := svc.Create(ctx, validBundle(col.ID, "WR-003"), "tester"); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	// Case differences do not evade the uniqueness check.
	_, err := svc.Create(ctx, validBundle(col.ID, "wr-003"), "tester")
	if !domain.IsConflict(err) || domain.Reason(err) != "SKU_ALREADY_EXISTS" {
		t.Fatalf("err = %v, want SKU_ALREADY_EXISTS conflict", err)
	}
}

func TestService_Create_PriceValidation(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	cases := []struct {
		name      string
		wholesale *decimal.Decimal
		retail    *decimal.Decimal
		reason    string
	}{
		{"negative retail", nil, decimalPtr("-1"), "INVALID_RETAIL_PRICE"},
		{"negative wholesale", decimalPtr("-0.01"), nil, "INVALID_WHOLESALE_PRICE"},
		{"wholesale equals retail", decimalPtr("50"), decimalPtr("50"), "WHOLESALE_PRICE_TOO_HIGH"},
		{"wholesale above retail", decimalPtr("60"), decimalPtr("50"), "WHOLESALE_PRICE_TOO_HIGH"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := validBundle(col.ID, "PRICE-"+uuid.NewString()[:8])
			b.Product.WholesalePrice = tc.wholesale
			b.Product.RetailPrice = tc.retail
			_, err := svc.Create(ctx, b, "tester")
			if !domain.IsValidation(err) || domain.Reason(err) != tc.reason {
				t.Fatalf("err = %v, want %s validation", err, tc.reason)
			}
		})
	}

	ok := validBundle(col.ID, "PRICE-OK-1")
	ok.Product.WholesalePrice = decimalPtr("22.50")
	ok.Product.RetailPrice = decimalPtr("65.00")
	if _, err := svc.Create(ctx, ok, "tester"); err != nil {
		t.Fatalf("Create with valid prices: %v", err)
	}
}

func TestService_Create_VariantValidation(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	b := validBundle(col.ID, "WR-004")
	b.Variants = []domain.BundleVariant{
		{ProductVariant: domain.ProductVariant{Name: "Coral", Color: "Coral"}, SKUSuffix: "COR"},
		{ProductVariant: domain.ProductVariant{Name: "Navy", Color: "Navy", ColorCode: "blue"}, SKUSuffix: "NAV"},
	}

	_, err := svc.Create(ctx, b, "tester")
	if !domain.IsValidation(err) || domain.Reason(err) != "INVALID_COLOR_CODE" {
		t.Fatalf("err = %v, want INVALID_COLOR_CODE validation", err)
	}
	if idx := appError(t, err).Context["variant_index"]; idx != 1 {
		t.Errorf("variant_index = %v, want 1", idx)
	}
}

func TestService_Create_DuplicateVariantSuffix(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	b := validBundle(col.ID, "WR-005")
	b.Variants = []domain.BundleVariant{
		{ProductVariant: domain.ProductVariant{Name: "Red", Color: "Red"}, SKUSuffix: "RED"},
		{ProductVariant: domain.ProductVariant{Name: "Red 2", Color: "Red"}, SKUSuffix: "red"},
	}

	_, err := svc.Create(ctx, b, "tester")
	if !domain.IsConflict(err) || domain.Reason(err) != "SKU_ALREADY_EXISTS" {
		t.Fatalf("err = %v, want SKU_ALREADY_EXISTS conflict for duplicate suffix", err)
	}
}

func TestService_BulkCreate(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	created, err := svc.BulkCreate(ctx, []*domain.ProductBundle{
		validBundle(col.ID, "BULK-001"),
		validBundle(col.ID, "BULK-002"),
	}, "tester")
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created = %d products, want 2", len(created))
	}
	for i, p := range created {
		if p.ID == uuid.Nil {
			t.Errorf("product %d has no id", i)
		}
	}
}

func TestService_BulkCreate_DuplicateWithinBatch(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	_, err := svc.BulkCreate(ctx, []*domain.ProductBundle{
		validBundle(col.ID, "BULK-003"),
		validBundle(col.ID, "bulk-003"),
	}, "tester")
	if !domain.IsConflict(err) || domain.Reason(err) != "SKU_ALREADY_EXISTS" {
		t.Fatalf("err = %v, want SKU_ALREADY_EXISTS conflict", err)
	}
	if idx := appError(t, err).Context["item_index"]; idx != 1 {
		t.Errorf("item_index = %v, want 1", idx)
	}

	var count int64
	db.Model(&domain.Product{}).Count(&count)
	if count != 0 {
		t.Errorf("products persisted = %d, want 0 after failed batch", count)
	}
}

func TestService_BulkCreate_InvalidItemReportsIndex(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	bad := validBundle(col.ID, "BULK-004")
	bad.Product.Category = "swimwear"

	_, err := svc.BulkCreate(ctx, []*domain.ProductBundle{
		validBundle(col.ID, "BULK-005"),
		bad,
	}, "tester")
	if !domain.IsValidation(err) || domain.Reason(err) != "INVALID_CATEGORY" {
		t.Fatalf("err = %v, want INVALID_CATEGORY validation", err)
	}
	if idx := appError(t, err).Context["item_index"]; idx != 1 {
		t.Errorf("item_index = %v, want 1", idx)
	}
}

func TestService_UpdateStatus(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	created, err := svc.Create(ctx, validBundle(col.ID, "STAT-001"), "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, created.ID, "retired", "tester"); !domain.IsValidation(err) || domain.Reason(err) != "INVALID_STATUS" {
		t.Fatalf("err = %v, want INVALID_STATUS validation", err)
	}

	updated, err := svc.UpdateStatus(ctx, created.ID, domain.ProductStatusDiscontinued, "tester")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != domain.ProductStatusDiscontinued {
		t.Errorf("status = %q, want discontinued", updated.Status)
	}
}

func TestService_ToggleFeatured(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	created, err := svc.Create(ctx, validBundle(col.ID, "FEAT-001"), "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	on, err := svc.ToggleFeatured(ctx, created.ID, "tester")
	if err != nil {
		t.Fatalf("ToggleFeatured: %v", err)
	}
	if !on.IsFeatured {
		t.Error("first toggle should set the flag")
	}
	off, err := svc.ToggleFeatured(ctx, created.ID, "tester")
	if err != nil {
		t.Fatalf("second ToggleFeatured: %v", err)
	}
	if off.IsFeatured {
		t.Error("second toggle should clear the flag")
	}
}

func TestService_Update_MergedPriceValidation(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	b := validBundle(col.ID, "UPD-001")
	b.Product.RetailPrice = decimalPtr("50")
	created, err := svc.Create(ctx, b, "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The new wholesale price is checked against the stored retail price.
	_, err = svc.Update(ctx, created.ID, map[string]any{"wholesale_price": decimal.RequireFromString("60")}, "tester")
	if !domain.IsValidation(err) || domain.Reason(err) != "WHOLESALE_PRICE_TOO_HIGH" {
		t.Fatalf("err = %v, want WHOLESALE_PRICE_TOO_HIGH validation", err)
	}

	updated, err := svc.Update(ctx, created.ID, map[string]any{"wholesale_price": decimal.RequireFromString("20")}, "tester")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.WholesalePrice == nil || !updated.WholesalePrice.Equal(decimal.RequireFromString("20")) {
		t.Errorf("wholesale price = %v, want 20", updated.WholesalePrice)
	}
}

func TestService_Update_SKUChange(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	first, err := svc.Create(ctx, validBundle(col.ID, "UPD-002"), "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := svc.Create(ctx, validBundle(col.ID, "UPD-003"), "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Stealing another product's SKU is a conflict.
	_, err = svc.Update(ctx, second.ID, map[string]any{"sku": "upd-002"}, "tester")
	if !domain.IsConflict(err) || domain.Reason(err) != "SKU_ALREADY_EXISTS" {
		t.Fatalf("err = %v, want SKU_ALREADY_EXISTS conflict", err)
	}

	// Re-submitting its own SKU in another case is fine.
	updated, err := svc.Update(ctx, first.ID, map[string]any{"sku": "upd-002"}, "tester")
	if err != nil {
		t.Fatalf("Update with own sku: %v", err)
	}
	if updated.SKU != "UPD-002" {
		t.Errorf("sku = %q, want UPD-002", updated.SKU)
	}
}

func TestService_Update_CollectionMove(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)
	other := seedCollection(t, db)

	created, err := svc.Create(ctx, validBundle(col.ID, "MOVE-001"), "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Update(ctx, created.ID, map[string]any{"collection_id": uuid.New()}, "tester")
	if !domain.IsValidation(err) || domain.Reason(err) != "COLLECTION_NOT_FOUND" {
		t.Fatalf("err = %v, want COLLECTION_NOT_FOUND validation", err)
	}

	moved, err := svc.Update(ctx, created.ID, map[string]any{"collection_id": other.ID}, "tester")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if moved.CollectionID != other.ID {
		t.Errorf("collection_id = %s, want %s", moved.CollectionID, other.ID)
	}
}

func TestService_GetBySKU(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	if _, err := svc.Create(ctx, validBundle(col.ID, "SKU-LOOKUP-1"), "tester"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	p, err := svc.GetBySKU(ctx, "sku-lookup-1")
	if err != nil {
		t.Fatalf("GetBySKU: %v", err)
	}
	if p.SKU != "SKU-LOOKUP-1" {
		t.Errorf("sku = %q, want SKU-LOOKUP-1", p.SKU)
	}

	if _, err := svc.GetBySKU(ctx, "SKU-MISSING"); !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestService_Search(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)
	other := seedCollection(t, db)

	wave := validBundle(col.ID, "SRCH-001")
	wave.Product.Name = "Wave Rider Top"
	if _, err := svc.Create(ctx, wave, "tester"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	tide := validBundle(other.ID, "SRCH-002")
	tide.Product.Name = "Tidal Current"
	tide.Product.Category = "one-piece"
	tide.Product.Description = "Deep wave pattern"
	if _, err := svc.Create(ctx, tide, "tester"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Search(ctx, "w", "", nil, 0, 0); !domain.IsValidation(err) || domain.Reason(err) != "INVALID_SEARCH_QUERY" {
		t.Fatalf("err = %v, want INVALID_SEARCH_QUERY validation", err)
	}
	if _, err := svc.Search(ctx, "wave", "swimwear", nil, 0, 0); !domain.IsValidation(err) || domain.Reason(err) != "INVALID_CATEGORY" {
		t.Fatalf("err = %v, want INVALID_CATEGORY validation", err)
	}

	// Name and description both match, case-insensitively.
	results, err := svc.Search(ctx, "WAVE", "", nil, 0, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	// SKU fragments match too.
	results, err = svc.Search(ctx, "srch-002", "", nil, 0, 0)
	if err != nil {
		t.Fatalf("Search by sku: %v", err)
	}
	if len(results) != 1 || results[0].SKU != "SRCH-002" {
		t.Fatalf("results = %v, want the SRCH-002 product", results)
	}

	// Category and collection narrow the match set.
	results, err = svc.Search(ctx, "wave", "bikini", nil, 0, 0)
	if err != nil {
		t.Fatalf("Search by category: %v", err)
	}
	if len(results) != 1 || results[0].SKU != "SRCH-001" {
		t.Fatalf("results = %v, want the SRCH-001 product", results)
	}
	results, err = svc.Search(ctx, "wave", "", &other.ID, 0, 0)
	if err != nil {
		t.Fatalf("Search by collection: %v", err)
	}
	if len(results) != 1 || results[0].SKU != "SRCH-002" {
		t.Fatalf("results = %v, want the SRCH-002 product", results)
	}
}

func TestService_Featured(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	featured := validBundle(col.ID, "FEAT-A")
	featured.Product.IsFeatured = true
	if _, err := svc.Create(ctx, featured, "tester"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	retired := validBundle(col.ID, "FEAT-B")
	retired.Product.IsFeatured = true
	retired.Product.Status = domain.ProductStatusDiscontinued
	if _, err := svc.Create(ctx, retired, "tester"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, validBundle(col.ID, "FEAT-C"), "tester"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	products, err := svc.Featured(ctx, 10)
	if err != nil {
		t.Fatalf("Featured: %v", err)
	}
	if len(products) != 1 || products[0].SKU != "FEAT-A" {
		t.Fatalf("featured = %v, want only the active featured product", products)
	}
}

func TestService_ByCollection(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	if _, err := svc.Create(ctx, validBundle(col.ID, "COL-A"), "tester"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	inactive := validBundle(col.ID, "COL-B")
	inactive.Product.Status = domain.ProductStatusComingSoon
	if _, err := svc.Create(ctx, inactive, "tester"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.ByCollection(ctx, uuid.New(), false, 0, 0); !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want not found for unknown collection", err)
	}

	active, err := svc.ByCollection(ctx, col.ID, false, 0, 0)
	if err != nil {
		t.Fatalf("ByCollection: %v", err)
	}
	if len(active) != 1 || active[0].SKU != "COL-A" {
		t.Fatalf("products = %v, want only the active product", active)
	}

	all, err := svc.ByCollection(ctx, col.ID, true, 0, 0)
	if err != nil {
		t.Fatalf("ByCollection include_inactive: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("products = %d, want 2 with inactive included", len(all))
	}
}

func TestService_AddVariant(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	created, err := svc.Create(ctx, validBundle(col.ID, "VAR-001"), "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	v := &domain.ProductVariant{Name: "Sage", Color: "Sage"}
	added, err := svc.AddVariant(ctx, created.ID, v, "sag", "tester")
	if err != nil {
		t.Fatalf("AddVariant: %v", err)
	}
	if added.SKU != "VAR-001-SAG" {
		t.Errorf("variant sku = %q, want VAR-001-SAG", added.SKU)
	}
	if added.ProductID != created.ID {
		t.Error("variant not attached to the product")
	}

	dup := &domain.ProductVariant{Name: "Sage 2", Color: "Sage"}
	if _, err := svc.AddVariant(ctx, created.ID, dup, "SAG", "tester"); !domain.IsConflict(err) || domain.Reason(err) != "SKU_ALREADY_EXISTS" {
		t.Fatalf("err = %v, want SKU_ALREADY_EXISTS conflict", err)
	}

	missing := &domain.ProductVariant{Name: "Lost", Color: "Lost"}
	if _, err := svc.AddVariant(ctx, uuid.New(), missing, "LST", "tester"); !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want not found for unknown product", err)
	}
}

func TestService_UpdateVariant(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	b := validBundle(col.ID, "VAR-002")
	b.Variants = []domain.BundleVariant{
		{ProductVariant: domain.ProductVariant{Name: "Coral", Color: "Coral"}, SKUSuffix: "COR"},
		{ProductVariant: domain.ProductVariant{Name: "Navy", Color: "Navy"}, SKUSuffix: "NAV"},
	}
	created, err := svc.Create(ctx, b, "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	var coral domain.ProductVariant
	for _, v := range created.Variants {
		if v.SKU == "VAR-002-COR" {
			coral = v
		}
	}
	if coral.ID == uuid.Nil {
		t.Fatalf("coral variant missing from %v", created.Variants)
	}

	updated, err := svc.UpdateVariant(ctx, coral.ID, map[string]any{"color": "Deep Coral"}, nil, "tester")
	if err != nil {
		t.Fatalf("UpdateVariant: %v", err)
	}
	if updated.Color != "Deep Coral" {
		t.Errorf("color = %q, want Deep Coral", updated.Color)
	}
	if updated.SKU != "VAR-002-COR" {
		t.Errorf("sku = %q, should not change without a suffix", updated.SKU)
	}

	// A new suffix recomputes the SKU from the parent product.
	suffix := "crl"
	updated, err = svc.UpdateVariant(ctx, coral.ID, map[string]any{}, &suffix, "tester")
	if err != nil {
		t.Fatalf("UpdateVariant with suffix: %v", err)
	}
	if updated.SKU != "VAR-002-CRL" {
		t.Errorf("sku = %q, want VAR-002-CRL", updated.SKU)
	}

	// Colliding with a sibling variant is a conflict.
	taken := "NAV"
	if _, err := svc.UpdateVariant(ctx, coral.ID, map[string]any{}, &taken, "tester"); !domain.IsConflict(err) || domain.Reason(err) != "SKU_ALREADY_EXISTS" {
		t.Fatalf("err = %v, want SKU_ALREADY_EXISTS conflict", err)
	}

	if _, err := svc.UpdateVariant(ctx, uuid.New(), map[string]any{"color": "X"}, nil, "tester"); !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestService_AddImage(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	b := validBundle(col.ID, "IMG-001")
	b.Variants = []domain.BundleVariant{
		{ProductVariant: domain.ProductVariant{Name: "Coral", Color: "Coral"}, SKUSuffix: "COR"},
	}
	created, err := svc.Create(ctx, b, "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	otherBundle := validBundle(col.ID, "IMG-002")
	otherBundle.Variants = []domain.BundleVariant{
		{ProductVariant: domain.ProductVariant{Name: "Navy", Color: "Navy"}, SKUSuffix: "NAV"},
	}
	other, err := svc.Create(ctx, otherBundle, "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	img := &domain.ProductImage{URL: "/uploads/2024/06/01/front.jpg", Type: "hero"}
	if _, err := svc.AddImage(ctx, created.ID, img, "tester"); !domain.IsValidation(err) || domain.Reason(err) != "INVALID_IMAGE_TYPE" {
		t.Fatalf("err = %v, want INVALID_IMAGE_TYPE validation", err)
	}

	foreign := &domain.ProductImage{URL: "/uploads/2024/06/01/side.jpg", Type: "main", VariantID: &other.Variants[0].ID}
	if _, err := svc.AddImage(ctx, created.ID, foreign, "tester"); !domain.IsValidation(err) || domain.Reason(err) != "INVALID_VARIANT" {
		t.Fatalf("err = %v, want INVALID_VARIANT validation", err)
	}

	ok := &domain.ProductImage{URL: "/uploads/2024/06/01/main.jpg", Type: "main", VariantID: &created.Variants[0].ID}
	added, err := svc.AddImage(ctx, created.ID, ok, "tester")
	if err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	if added.ProductID != created.ID {
		t.Error("image not attached to the product")
	}
}

func TestService_AddSpecification(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	created, err := svc.Create(ctx, validBundle(col.ID, "SPC-001"), "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	bad := &domain.TechnicalSpecification{Type: "shipping", Title: "Shipping"}
	if _, err := svc.AddSpecification(ctx, created.ID, bad, "tester"); !domain.IsValidation(err) || domain.Reason(err) != "INVALID_SPECIFICATION_TYPE" {
		t.Fatalf("err = %v, want INVALID_SPECIFICATION_TYPE validation", err)
	}

	untitled := &domain.TechnicalSpecification{Type: "care", Title: "  "}
	if _, err := svc.AddSpecification(ctx, created.ID, untitled, "tester"); !domain.IsValidation(err) || domain.Reason(err) != "TITLE_REQUIRED" {
		t.Fatalf("err = %v, want TITLE_REQUIRED validation", err)
	}

	spec := &domain.TechnicalSpecification{
		Type:    "care",
		Title:   "Care Guide",
		Content: map[string]any{"wash": "cold hand wash"},
	}
	added, err := svc.AddSpecification(ctx, created.ID, spec, "tester")
	if err != nil {
		t.Fatalf("AddSpecification: %v", err)
	}
	if added.ProductID != created.ID {
		t.Error("specification not attached to the product")
	}
}

func TestService_AddSizeChart(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	created, err := svc.Create(ctx, validBundle(col.ID, "CHT-001"), "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	bad := &domain.SizeChart{ChartType: "petite"}
	if _, err := svc.AddSizeChart(ctx, created.ID, bad, "tester"); !domain.IsValidation(err) || domain.Reason(err) != "INVALID_CHART_TYPE" {
		t.Fatalf("err = %v, want INVALID_CHART_TYPE validation", err)
	}
	metric := &domain.SizeChart{MeasurementUnit: "meters"}
	if _, err := svc.AddSizeChart(ctx, created.ID, metric, "tester"); !domain.IsValidation(err) || domain.Reason(err) != "INVALID_MEASUREMENT_UNIT" {
		t.Fatalf("err = %v, want INVALID_MEASUREMENT_UNIT validation", err)
	}

	chart := &domain.SizeChart{Sizes: []domain.SizeChartRow{{"size": "M", "eu": "38"}}, MeasurementUnit: "CM"}
	added, err := svc.AddSizeChart(ctx, created.ID, chart, "tester")
	if err != nil {
		t.Fatalf("AddSizeChart: %v", err)
	}
	if added.ChartType != "standard" || added.MeasurementUnit != "cm" {
		t.Errorf("chart = %q/%q, want standard/cm", added.ChartType, added.MeasurementUnit)
	}

	second := &domain.SizeChart{Sizes: []domain.SizeChartRow{{"size": "L"}}}
	if _, err := svc.AddSizeChart(ctx, created.ID, second, "tester"); !domain.IsConflict(err) || domain.Reason(err) != "SIZE_CHART_EXISTS" {
		t.Fatalf("err = %v, want SIZE_CHART_EXISTS conflict", err)
	}
}

func TestService_List_AnonymousHidesDeleted(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	keep, err := svc.Create(ctx, validBundle(col.ID, "LIST-001"), "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	gone, err := svc.Create(ctx, validBundle(col.ID, "LIST-002"), "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, gone.ID, false, "tester"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	anon, err := svc.List(ctx, domain.ListParams{Limit: 10, IncludeDeleted: true}, "")
	if err != nil {
		t.Fatalf("List anonymous: %v", err)
	}
	if anon.Total != 1 || anon.Items[0].ID != keep.ID {
		t.Fatalf("anonymous list = %d items, want only the live product", anon.Total)
	}

	authed, err := svc.List(ctx, domain.ListParams{Limit: 10, IncludeDeleted: true}, "tester")
	if err != nil {
		t.Fatalf("List authenticated: %v", err)
	}
	if authed.Total != 2 {
		t.Fatalf("authenticated list = %d items, want 2 with deleted included", authed.Total)
	}
}

func TestService_Stats(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	col := seedCollection(t, db)

	featured := validBundle(col.ID, "STATS-001")
	featured.Product.IsFeatured = true
	if _, err := svc.Create(ctx, featured, "tester"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	onePiece := validBundle(col.ID, "STATS-002")
	onePiece.Product.Category = "one-piece"
	onePiece.Product.Status = domain.ProductStatusComingSoon
	if _, err := svc.Create(ctx, onePiece, "tester"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
	if stats.Featured != 1 {
		t.Errorf("featured = %d, want 1", stats.Featured)
	}
	if stats.ByStatus[domain.ProductStatusActive] != 1 || stats.ByStatus[domain.ProductStatusComingSoon] != 1 {
		t.Errorf("by status = %v, want one active and one coming_soon", stats.ByStatus)
	}
	if stats.ByCategory["bikini"] != 1 || stats.ByCategory["one-piece"] != 1 {
		t.Errorf("by category = %v, want one bikini and one one-piece", stats.ByCategory)
	}
}
