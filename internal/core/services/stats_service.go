package services

import (
	"context"
	"time"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"
	"github.com/Shadow52186/rs-1/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// StoreStats is the admin dashboard summary
type StoreStats struct {
	TotalUsers     int64   `json:"total_users"`
	TotalProducts  int64   `json:"total_products"`
	TotalSales     int64   `json:"total_sales"`
	SalesToday     int64   `json:"sales_today"`
	RevenueTotal   float64 `json:"revenue_total"`
	RevenueToday   float64 `json:"revenue_today"`
	TopupTotal     float64 `json:"topup_total"`
	AvailableStock int64   `json:"available_stock"`
	BannedIPs      int64   `json:"banned_ips"`
}

// StatsService aggregates storefront numbers for the admin dashboard
type StatsService struct {
	db           *gorm.DB
	purchaseRepo repositories.PurchaseRepository
	topupRepo    repositories.TopupRepository
}

// NewStatsService creates a new stats service
func NewStatsService(db *gorm.DB, purchaseRepo repositories.PurchaseRepository, topupRepo repositories.TopupRepository) *StatsService {
	return &StatsService{
		db:           db,
		purchaseRepo: purchaseRepo,
		topupRepo:    topupRepo,
	}
}

// Summary builds the dashboard summary
func (s *StatsService) Summary(ctx context.Context) (*StoreStats, error) {
	stats := &StoreStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.ProductStock{}).
		Where("is_sold = ?", false).
		Count(&stats.AvailableStock).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.BannedIP{}).Count(&stats.BannedIPs).Error; err != nil {
		return nil, err
	}

	var err error
	epoch := time.Time{}
	today := startOfDay(time.Now())

	if stats.TotalSales, err = s.purchaseRepo.CountSince(ctx, epoch); err != nil {
		return nil, err
	}
	if stats.SalesToday, err = s.purchaseRepo.CountSince(ctx, today); err != nil {
		return nil, err
	}
	if stats.RevenueTotal, err = s.purchaseRepo.SumRevenueSince(ctx, epoch); err != nil {
		return nil, err
	}
	if stats.RevenueToday, err = s.purchaseRepo.SumRevenueSince(ctx, today); err != nil {
		return nil, err
	}
	if stats.TopupTotal, err = s.topupRepo.SumAmountSince(ctx, epoch); err != nil {
		return nil, err
	}

	return stats, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
