package repositories

import (
	"context"
	"time"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// purchaseRepository implements PurchaseRepository interface
type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase history repository
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

// Create inserts a purchase receipt on the given handle
func (r *purchaseRepository) Create(ctx context.Context, tx *gorm.DB, history *models.PurchaseHistory) error {
	return tx.WithContext(ctx).Create(history).Error
}

// ListByUser lists a user's purchases, newest first
func (r *purchaseRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.PurchaseHistory, int64, error) {
	var histories []*models.PurchaseHistory
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.PurchaseHistory{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&histories).Error; err != nil {
		return nil, 0, err
	}

	return histories, total, nil
}

// ListAll lists all purchases for the admin sales log, newest first
func (r *purchaseRepository) ListAll(ctx context.Context, offset, limit int) ([]*models.PurchaseHistory, int64, error) {
	var histories []*models.PurchaseHistory
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.PurchaseHistory{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&histories).Error; err != nil {
		return nil, 0, err
	}

	return histories, total, nil
}

// CountSince counts purchases created at or after the given time
func (r *purchaseRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PurchaseHistory{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// SumRevenueSince sums purchase prices at or after the given time
func (r *purchaseRepository) SumRevenueSince(ctx context.Context, since time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.PurchaseHistory{}).
		Where("created_at >= ?", since).
		Select("COALESCE(SUM(purchase_price), 0)").
		Scan(&total).Error
	return total, err
}
