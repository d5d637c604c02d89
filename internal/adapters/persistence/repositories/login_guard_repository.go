package repositories

import (
	"context"
	"time"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// loginGuardRepository implements LoginGuardRepository interface
type loginGuardRepository struct {
	db *gorm.DB
}

// NewLoginGuardRepository creates a new login guard repository
func NewLoginGuardRepository(db *gorm.DB) LoginGuardRepository {
	return &loginGuardRepository{db: db}
}

// IsBanned checks whether the IP has a ban record
func (r *loginGuardRepository) IsBanned(ctx context.Context, ip string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BannedIP{}).
		Where("ip = ?", ip).
		Count(&count).Error
	return count > 0, err
}

// Ban records a permanent ban for the IP. Idempotent: banning an
// already-banned IP keeps the original record.
func (r *loginGuardRepository) Ban(ctx context.Context, ip, reason string) error {
	ban := models.BannedIP{IP: ip, Reason: reason}
	return r.db.WithContext(ctx).
		Where("ip = ?", ip).
		FirstOrCreate(&ban).Error
}

// Unban removes the ban record and any attempt counters for the IP
func (r *loginGuardRepository) Unban(ctx context.Context, ip string) error {
	if err := r.db.WithContext(ctx).
		Where("ip = ?", ip).
		Delete(&models.BannedIP{}).Error; err != nil {
		return err
	}
	return r.ResetLoginAttempts(ctx, ip)
}

// ListBanned lists all banned IPs, newest first
func (r *loginGuardRepository) ListBanned(ctx context.Context) ([]*models.BannedIP, error) {
	var banned []*models.BannedIP
	err := r.db.WithContext(ctx).Order("id DESC").Find(&banned).Error
	if err != nil {
		return nil, err
	}
	return banned, nil
}

// IncrementLoginAttempt bumps the failure counter for the IP and
// returns the new count. The upsert keeps concurrent failures from
// losing increments.
func (r *loginGuardRepository) IncrementLoginAttempt(ctx context.Context, ip string) (int, error) {
	attempt := models.LoginAttempt{IP: ip, Count: 1, LastAttempt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ip"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":        gorm.Expr("count + 1"),
			"last_attempt": time.Now(),
		}),
	}).Create(&attempt).Error
	if err != nil {
		return 0, err
	}

	var current models.LoginAttempt
	if err := r.db.WithContext(ctx).Where("ip = ?", ip).First(&current).Error; err != nil {
		return 0, err
	}
	return current.Count, nil
}

// ResetLoginAttempts clears the failure counter for the IP
func (r *loginGuardRepository) ResetLoginAttempts(ctx context.Context, ip string) error {
	return r.db.WithContext(ctx).
		Where("ip = ?", ip).
		Delete(&models.LoginAttempt{}).Error
}

// IncrementRegisterAttempt bumps the registration counter for the IP
// and returns the new count
func (r *loginGuardRepository) IncrementRegisterAttempt(ctx context.Context, ip string) (int, error) {
	attempt := models.RegisterAttempt{IP: ip, Count: 1, LastAttempt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ip"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":        gorm.Expr("count + 1"),
			"last_attempt": time.Now(),
		}),
	}).Create(&attempt).Error
	if err != nil {
		return 0, err
	}

	var current models.RegisterAttempt
	if err := r.db.WithContext(ctx).Where("ip = ?", ip).First(&current).Error; err != nil {
		return 0, err
	}
	return current.Count, nil
}

// DeleteStaleAttempts drops attempt counters untouched since the cutoff.
// Ban records are never touched here.
func (r *loginGuardRepository) DeleteStaleAttempts(ctx context.Context, before time.Time) error {
	if err := r.db.WithContext(ctx).
		Where("last_attempt < ?", before).
		Delete(&models.LoginAttempt{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("last_attempt < ?", before).
		Delete(&models.RegisterAttempt{}).Error
}
