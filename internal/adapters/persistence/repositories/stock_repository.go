package repositories

import (
	"context"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"
	"github.com/Shadow52186/rs-1/internal/core/domain"

	"gorm.io/gorm"
)

// allocateRetries bounds the claim loop when buyers race on the same rows
const allocateRetries = 5

// stockRepository implements StockRepository interface
type stockRepository struct {
	db *gorm.DB
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

// Create creates a new stock entry
func (r *stockRepository) Create(ctx context.Context, stock *models.ProductStock) error {
	return r.db.WithContext(ctx).Create(stock).Error
}

// GetByID gets a stock entry by ID
func (r *stockRepository) GetByID(ctx context.Context, id uint) (*models.ProductStock, error) {
	var stock models.ProductStock
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&stock).Error
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

// Update updates a stock entry
func (r *stockRepository) Update(ctx context.Context, stock *models.ProductStock) error {
	return r.db.WithContext(ctx).Save(stock).Error
}

// Delete deletes a stock entry
func (r *stockRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ProductStock{}, id).Error
}

// ListByProduct lists stock entries for a product.
// Sold entries are included only when includeSold is set (admin view).
func (r *stockRepository) ListByProduct(ctx context.Context, productID uint, includeSold bool) ([]*models.ProductStock, error) {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if !includeSold {
		query = query.Where("is_sold = ?", false)
	}

	var stocks []*models.ProductStock
	if err := query.Order("id ASC").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// CountAvailable counts unsold entries for a product
func (r *stockRepository) CountAvailable(ctx context.Context, productID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductStock{}).
		Where("product_id = ? AND is_sold = ?", productID, false).
		Count(&count).Error
	return count, err
}

// AllocateUnsold claims the oldest unsold entry for the product.
// The claim is a conditional update keyed on is_sold, so two buyers
// racing for the same row see exactly one RowsAffected == 1. A lost
// race retries with the next candidate until entries run out. Lost
// candidates are excluded explicitly: under REPEATABLE READ the
// re-read serves the transaction snapshot, which would hand back the
// row we just lost.
func (r *stockRepository) AllocateUnsold(ctx context.Context, tx *gorm.DB, productID uint) (*models.ProductStock, error) {
	tried := make([]uint, 0, allocateRetries)
	for i := 0; i < allocateRetries; i++ {
		query := tx.WithContext(ctx).
			Where("product_id = ? AND is_sold = ?", productID, false)
		if len(tried) > 0 {
			query = query.Where("id NOT IN ?", tried)
		}

		var candidate models.ProductStock
		err := query.Order("id ASC").First(&candidate).Error
		if err != nil {
			if IsNotFound(err) {
				return nil, domain.ErrOutOfStock
			}
			return nil, err
		}

		result := tx.WithContext(ctx).Model(&models.ProductStock{}).
			Where("id = ? AND is_sold = ?", candidate.ID, false).
			Update("is_sold", true)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			candidate.IsSold = true
			return &candidate, nil
		}
		// Another buyer took this row; pick the next one.
		tried = append(tried, candidate.ID)
	}

	return nil, domain.ErrOutOfStock
}

// DeleteByProduct removes all stock entries for a product.
// Runs on the given handle so the product-delete cascade stays atomic.
func (r *stockRepository) DeleteByProduct(ctx context.Context, tx *gorm.DB, productID uint) error {
	return tx.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.ProductStock{}).Error
}
