package services

import (
	"context"
	"errors"
	"log"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"
	"github.com/Shadow52186/rs-1/internal/adapters/persistence/repositories"
	"github.com/Shadow52186/rs-1/internal/core/domain"

	"gorm.io/gorm"
)

// PurchaseService handles the buy flow and purchase history
type PurchaseService struct {
	db           *gorm.DB
	userRepo     repositories.UserRepository
	productRepo  repositories.ProductRepository
	stockRepo    repositories.StockRepository
	purchaseRepo repositories.PurchaseRepository
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	db *gorm.DB,
	userRepo repositories.UserRepository,
	productRepo repositories.ProductRepository,
	stockRepo repositories.StockRepository,
	purchaseRepo repositories.PurchaseRepository,
) *PurchaseService {
	return &PurchaseService{
		db:           db,
		userRepo:     userRepo,
		productRepo:  productRepo,
		stockRepo:    stockRepo,
		purchaseRepo: purchaseRepo,
	}
}

// Buy debits the buyer and hands over exactly one credential.
// Debit, stock claim and receipt all live in one transaction: any
// failure rolls the whole thing back, so the buyer is never charged
// for stock they did not get, and a claimed row is never given twice.
func (s *PurchaseService) Buy(ctx context.Context, userID, productID uint) (*models.PurchaseHistory, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	categoryName := ""
	if product.Category != nil {
		categoryName = product.Category.Name
	}

	var receipt *models.PurchaseHistory

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// 1. Debit first; the balance guard rejects overdrafts
		ok, err := s.userRepo.DebitPoints(ctx, tx, userID, product.Price)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInsufficientBalance
		}

		// 2. Claim one unsold credential
		stock, err := s.stockRepo.AllocateUnsold(ctx, tx, productID)
		if err != nil {
			return err
		}

		// 3. Write the receipt with everything snapshotted, so the
		// record survives later edits and deletions of the product
		receipt = &models.PurchaseHistory{
			UserID:        userID,
			ProductID:     productID,
			StockID:       stock.ID,
			ProductName:   product.Name,
			CategoryName:  categoryName,
			BuyerUsername: user.Username,
			PurchasePrice: product.Price,
			Username:      stock.Username,
			Password:      stock.Password,
		}
		return s.purchaseRepo.Create(ctx, tx, receipt)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Purchase: user %s bought %s for %.2f", user.Username, product.Name, product.Price)
	return receipt, nil
}

// History lists the user's own purchases, newest first
func (s *PurchaseService) History(ctx context.Context, userID uint, offset, limit int) ([]*models.PurchaseHistory, int64, error) {
	return s.purchaseRepo.ListByUser(ctx, userID, offset, limit)
}

// SalesLog lists every sale for the admin view, newest first
func (s *PurchaseService) SalesLog(ctx context.Context, offset, limit int) ([]*models.PurchaseHistory, int64, error) {
	return s.purchaseRepo.ListAll(ctx, offset, limit)
}
