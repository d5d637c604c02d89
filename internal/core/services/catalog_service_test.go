package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"
	"github.com/Shadow52186/rs-1/internal/adapters/persistence/repositories"
	"github.com/Shadow52186/rs-1/internal/core/domain"

	"gorm.io/gorm"
)

func newCatalogService(t *testing.T, db *gorm.DB) *CatalogService {
	t.Helper()

	// No CLOUDINARY_URL: image operations become no-ops
	assets, err := NewAssetService("")
	if err != nil {
		t.Fatalf("NewAssetService: %v", err)
	}

	return NewCatalogService(
		repositories.NewCategoryRepository(db),
		repositories.NewProductRepository(db),
		repositories.NewStockRepository(db),
		assets,
		db,
	)
}

func newStockService(db *gorm.DB) *StockService {
	return NewStockService(
		repositories.NewStockRepository(db),
		repositories.NewProductRepository(db),
	)
}

func TestCategoryLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, &CategoryInput{Name: "FPS Games"}, nil)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	updated, err := svc.UpdateCategory(ctx, category.ID, &CategoryInput{Name: "Shooter Games"}, nil)
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if updated.Name != "Shooter Games" {
		t.Errorf("name = %q, want Shooter Games", updated.Name)
	}

	if err := svc.DeleteCategory(ctx, category.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	_, err = svc.GetCategory(ctx, category.ID)
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("error = %v, want ErrCategoryNotFound", err)
	}
}

func TestDeleteCategoryWithProductsRefused(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, "Occupant", 50, 0)

	err := svc.DeleteCategory(ctx, product.CategoryID)
	if !errors.Is(err, ErrCategoryNotEmpty) {
		t.Fatalf("error = %v, want ErrCategoryNotEmpty", err)
	}
}

func TestProductStockCounts(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, "Counted", 75, 3)

	view, err := svc.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if view.StockCount != 3 {
		t.Errorf("stock count = %d, want 3", view.StockCount)
	}

	// A sale drops the visible count
	buyer := seedUser(t, db, "counter", "secret123", 100)
	if _, err := newPurchaseService(db).Buy(ctx, buyer.ID, product.ID); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	view, err = svc.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if view.StockCount != 2 {
		t.Errorf("stock count after sale = %d, want 2", view.StockCount)
	}
}

func TestDeleteProductKeepsReceipts(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, "Discontinued", 60, 2)
	buyer := seedUser(t, db, "keeper", "secret123", 100)

	receipt, err := newPurchaseService(db).Buy(ctx, buyer.ID, product.ID)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}

	if err := svc.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}

	var remaining int64
	db.Model(&models.ProductStock{}).Where("product_id = ?", product.ID).Count(&remaining)
	if remaining != 0 {
		t.Errorf("%d stock entries left behind, want 0", remaining)
	}

	// The snapshot on the receipt survives the product
	var kept models.PurchaseHistory
	if err := db.First(&kept, receipt.ID).Error; err != nil {
		t.Fatalf("receipt gone after product delete: %v", err)
	}
	if kept.ProductName != "Discontinued" {
		t.Errorf("receipt product name = %q", kept.ProductName)
	}
	if kept.Username == "" || kept.Password == "" {
		t.Error("receipt lost its delivered credential")
	}
}

func TestStockUpdateRefusedOnceSold(t *testing.T) {
	db := newTestDB(t)
	svc := newStockService(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Frozen", 40, 1)
	buyer := seedUser(t, db, "freezer", "secret123", 100)

	entries, err := svc.ListByProduct(ctx, product.ID, true)
	if err != nil {
		t.Fatalf("ListByProduct: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	soldID := entries[0].ID

	if _, err := newPurchaseService(db).Buy(ctx, buyer.ID, product.ID); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	_, err = svc.Update(ctx, soldID, &StockInput{Username: "new", Password: "new"})
	if !errors.Is(err, ErrStockAlreadySold) {
		t.Fatalf("Update error = %v, want ErrStockAlreadySold", err)
	}

	if err := svc.Delete(ctx, soldID); !errors.Is(err, ErrStockAlreadySold) {
		t.Fatalf("Delete error = %v, want ErrStockAlreadySold", err)
	}
}

func TestAddStockToUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := newStockService(db)
	ctx := context.Background()

	_, err := svc.Add(ctx, 999, &StockInput{Username: "a", Password: "b"})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("error = %v, want ErrProductNotFound", err)
	}
}
