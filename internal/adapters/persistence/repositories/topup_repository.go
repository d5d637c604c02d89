package repositories

import (
	"context"
	"time"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// topupRepository implements TopupRepository interface
type topupRepository struct {
	db *gorm.DB
}

// NewTopupRepository creates a new topup repository
func NewTopupRepository(db *gorm.DB) TopupRepository {
	return &topupRepository{db: db}
}

// CreateHistory inserts a topup record on the given handle.
// The unique index on transaction_id makes this the dedup point for
// bank slips: a replayed slip fails here with a duplicate-key error.
func (r *topupRepository) CreateHistory(ctx context.Context, tx *gorm.DB, history *models.TopupHistory) error {
	return tx.WithContext(ctx).Create(history).Error
}

// ListHistoryByUser lists a user's topups, newest first
func (r *topupRepository) ListHistoryByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.TopupHistory, int64, error) {
	var histories []*models.TopupHistory
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.TopupHistory{}).
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

// ListAllHistory lists all topups for the admin view, newest first
func (r *topupRepository) ListAllHistory(ctx context.Context, offset, limit int) ([]*models.TopupHistory, int64, error) {
	var histories []*models.TopupHistory
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.TopupHistory{}).Count(&total).Error; err != nil {
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

// CreateRedeemedLink inserts a consumed gift link on the given handle.
// The unique index on link resolves concurrent redeems to one winner.
func (r *topupRepository) CreateRedeemedLink(ctx context.Context, tx *gorm.DB, link *models.RedeemedLink) error {
	return tx.WithContext(ctx).Create(link).Error
}

// LinkExists checks whether a gift link was already recorded
func (r *topupRepository) LinkExists(ctx context.Context, link string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RedeemedLink{}).
		Where("link = ?", link).
		Count(&count).Error
	return count > 0, err
}

// SumAmountSince sums credited topups at or after the given time
func (r *topupRepository) SumAmountSince(ctx context.Context, since time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.TopupHistory{}).
		Where("created_at >= ?", since).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
