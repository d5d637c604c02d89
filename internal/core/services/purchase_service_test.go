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

func newPurchaseService(db *gorm.DB) *PurchaseService {
	return NewPurchaseService(
		db,
		repositories.NewUserRepository(db),
		repositories.NewProductRepository(db),
		repositories.NewStockRepository(db),
		repositories.NewPurchaseRepository(db),
	)
}

func TestBuyDebitsBalanceAndDeliversCredential(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db)
	ctx := context.Background()

	user := seedUser(t, db, "buyer", "secret123", 150)
	product := seedProduct(t, db, "Valorant Account", 100, 2)

	receipt, err := svc.Buy(ctx, user.ID, product.ID)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}

	if receipt.PurchasePrice != 100 {
		t.Errorf("purchase price = %.2f, want 100", receipt.PurchasePrice)
	}
	if receipt.ProductName != "Valorant Account" {
		t.Errorf("product name = %q", receipt.ProductName)
	}
	if receipt.BuyerUsername != "buyer" {
		t.Errorf("buyer username = %q", receipt.BuyerUsername)
	}
	if receipt.Username == "" || receipt.Password == "" {
		t.Error("receipt is missing the delivered credential")
	}

	if got := userBalance(t, db, user.ID); got != 50 {
		t.Errorf("balance after purchase = %.2f, want 50", got)
	}

	// The claimed stock row must be flagged sold
	var stock models.ProductStock
	if err := db.First(&stock, receipt.StockID).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	if !stock.IsSold {
		t.Error("claimed stock entry is not marked sold")
	}
}

func TestBuyInsufficientBalanceChangesNothing(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db)
	ctx := context.Background()

	user := seedUser(t, db, "broke", "secret123", 30)
	product := seedProduct(t, db, "Steam Account", 100, 1)

	_, err := svc.Buy(ctx, user.ID, product.ID)
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("Buy error = %v, want ErrInsufficientBalance", err)
	}

	if got := userBalance(t, db, user.ID); got != 30 {
		t.Errorf("balance = %.2f, want untouched 30", got)
	}

	var sold int64
	db.Model(&models.ProductStock{}).Where("is_sold = ?", true).Count(&sold)
	if sold != 0 {
		t.Errorf("%d stock entries marked sold, want 0", sold)
	}
}

func TestBuyOutOfStockRefundsDebit(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db)
	ctx := context.Background()

	user := seedUser(t, db, "eager", "secret123", 500)
	product := seedProduct(t, db, "Empty Product", 100, 0)

	_, err := svc.Buy(ctx, user.ID, product.ID)
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("Buy error = %v, want ErrOutOfStock", err)
	}

	// The debit ran inside the transaction and must have rolled back
	if got := userBalance(t, db, user.ID); got != 500 {
		t.Errorf("balance = %.2f, want 500 after rollback", got)
	}
}

func TestBuySingleUnitSoldExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db)
	ctx := context.Background()

	first := seedUser(t, db, "first", "secret123", 200)
	second := seedUser(t, db, "second", "secret123", 200)
	product := seedProduct(t, db, "Rare Account", 100, 1)

	if _, err := svc.Buy(ctx, first.ID, product.ID); err != nil {
		t.Fatalf("first Buy: %v", err)
	}

	_, err := svc.Buy(ctx, second.ID, product.ID)
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("second Buy error = %v, want ErrOutOfStock", err)
	}

	if got := userBalance(t, db, second.ID); got != 200 {
		t.Errorf("loser balance = %.2f, want untouched 200", got)
	}

	var receipts int64
	db.Model(&models.PurchaseHistory{}).Where("product_id = ?", product.ID).Count(&receipts)
	if receipts != 1 {
		t.Errorf("%d receipts for one unit, want exactly 1", receipts)
	}
}

func TestHistoryReturnsOwnPurchasesNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := newPurchaseService(db)
	ctx := context.Background()

	buyer := seedUser(t, db, "collector", "secret123", 1000)
	other := seedUser(t, db, "other", "secret123", 1000)
	product := seedProduct(t, db, "Bundle", 100, 3)

	if _, err := svc.Buy(ctx, buyer.ID, product.ID); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if _, err := svc.Buy(ctx, buyer.ID, product.ID); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if _, err := svc.Buy(ctx, other.ID, product.ID); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	histories, total, err := svc.History(ctx, buyer.ID, 0, 50)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if total != 2 || len(histories) != 2 {
		t.Fatalf("history total = %d len = %d, want 2", total, len(histories))
	}
	if histories[0].ID < histories[1].ID {
		t.Error("history is not newest first")
	}

	// Admin sales log sees all three
	_, allTotal, err := svc.SalesLog(ctx, 0, 50)
	if err != nil {
		t.Fatalf("SalesLog: %v", err)
	}
	if allTotal != 3 {
		t.Errorf("sales log total = %d, want 3", allTotal)
	}
}

func TestAllocateUnsoldPicksOldestFirst(t *testing.T) {
	db := newTestDB(t)
	stockRepo := repositories.NewStockRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Ordered", 50, 3)

	stocks, err := stockRepo.ListByProduct(ctx, product.ID, false)
	if err != nil {
		t.Fatalf("ListByProduct: %v", err)
	}

	claimed, err := stockRepo.AllocateUnsold(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("AllocateUnsold: %v", err)
	}
	if claimed.ID != stocks[0].ID {
		t.Errorf("claimed stock %d, want oldest %d", claimed.ID, stocks[0].ID)
	}
}

func TestAllocateUnsoldNeverRepeatsACandidate(t *testing.T) {
	db := newTestDB(t)
	stockRepo := repositories.NewStockRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Drained", 50, 3)

	// Each claim must land on a fresh row, never a previously taken one,
	// and exhaustion must surface as out-of-stock rather than spinning
	seen := make(map[uint]bool)
	for i := 0; i < 3; i++ {
		claimed, err := stockRepo.AllocateUnsold(ctx, db, product.ID)
		if err != nil {
			t.Fatalf("claim %d: %v", i, err)
		}
		if seen[claimed.ID] {
			t.Fatalf("claim %d returned stock %d twice", i, claimed.ID)
		}
		seen[claimed.ID] = true
	}

	_, err := stockRepo.AllocateUnsold(ctx, db, product.ID)
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("exhausted product: error = %v, want ErrOutOfStock", err)
	}
}
