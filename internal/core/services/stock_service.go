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

// ErrStockAlreadySold is returned when editing or deleting a sold entry
var ErrStockAlreadySold = errors.New("stock entry has already been sold")

// StockService handles admin management of sellable credentials
type StockService struct {
	stockRepo   repositories.StockRepository
	productRepo repositories.ProductRepository
}

// NewStockService creates a new stock service
func NewStockService(stockRepo repositories.StockRepository, productRepo repositories.ProductRepository) *StockService {
	return &StockService{
		stockRepo:   stockRepo,
		productRepo: productRepo,
	}
}

// StockInput represents a credential pair to add or update
type StockInput struct {
	Username string `json:"username" validate:"required,min=1,max=200"`
	Password string `json:"password" validate:"required,min=1,max=200"`
}

// Add adds one credential entry to a product's stock
func (s *StockService) Add(ctx context.Context, productID uint, input *StockInput) (*models.ProductStock, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	stock := &models.ProductStock{
		ProductID: productID,
		Username:  input.Username,
		Password:  input.Password,
	}

	if err := s.stockRepo.Create(ctx, stock); err != nil {
		return nil, err
	}

	log.Printf("✅ Stock added to product %d (stock ID: %d)", productID, stock.ID)
	return stock, nil
}

// AddBatch adds several credential entries at once
func (s *StockService) AddBatch(ctx context.Context, productID uint, inputs []*StockInput) ([]*models.ProductStock, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	stocks := make([]*models.ProductStock, 0, len(inputs))
	for _, input := range inputs {
		stock := &models.ProductStock{
			ProductID: productID,
			Username:  input.Username,
			Password:  input.Password,
		}
		if err := s.stockRepo.Create(ctx, stock); err != nil {
			return nil, err
		}
		stocks = append(stocks, stock)
	}

	log.Printf("✅ %d stock entries added to product %d", len(stocks), productID)
	return stocks, nil
}

// ListByProduct lists a product's stock entries.
// includeSold is the admin view; buyers only ever see unsold counts.
func (s *StockService) ListByProduct(ctx context.Context, productID uint, includeSold bool) ([]*models.ProductStock, error) {
	return s.stockRepo.ListByProduct(ctx, productID, includeSold)
}

// Update rewrites an unsold entry's credentials.
// Sold entries are frozen: the buyer already holds a snapshot.
func (s *StockService) Update(ctx context.Context, id uint, input *StockInput) (*models.ProductStock, error) {
	stock, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if stock.IsSold {
		return nil, ErrStockAlreadySold
	}

	stock.Username = input.Username
	stock.Password = input.Password

	if err := s.stockRepo.Update(ctx, stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// Delete removes an unsold entry
func (s *StockService) Delete(ctx context.Context, id uint) error {
	stock, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if stock.IsSold {
		return ErrStockAlreadySold
	}

	if err := s.stockRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("✅ Stock entry deleted (ID: %d)", id)
	return nil
}

func (s *StockService) get(ctx context.Context, id uint) (*models.ProductStock, error) {
	stock, err := s.stockRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStockNotFound
		}
		return nil, err
	}
	return stock, nil
}
