package repositories

import (
	"context"
	"time"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	Search(ctx context.Context, query string, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// DebitPoints subtracts amount only when the balance covers it.
	// Returns false when the guard rejects the update. Runs on the
	// given handle so it can join an outer transaction.
	DebitPoints(ctx context.Context, tx *gorm.DB, userID uint, amount float64) (bool, error)
	// CreditPoints adds amount to the user's balance on the given handle.
	CreditPoints(ctx context.Context, tx *gorm.DB, userID uint, amount float64) error
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// CategoryRepository defines category repository interface
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*models.Category, error)
}

// ProductRepository defines product repository interface
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Product, int64, error)
	ListByCategory(ctx context.Context, categoryID uint) ([]*models.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]*models.Product, error)
	CountByCategory(ctx context.Context, categoryID uint) (int64, error)
}

// StockRepository defines product stock repository interface
type StockRepository interface {
	Create(ctx context.Context, stock *models.ProductStock) error
	GetByID(ctx context.Context, id uint) (*models.ProductStock, error)
	Update(ctx context.Context, stock *models.ProductStock) error
	Delete(ctx context.Context, id uint) error
	ListByProduct(ctx context.Context, productID uint, includeSold bool) ([]*models.ProductStock, error)
	CountAvailable(ctx context.Context, productID uint) (int64, error)
	// AllocateUnsold claims one unsold entry for the product and marks
	// it sold. Returns ErrOutOfStock when none remain. Runs on the
	// given handle so the purchase transaction owns the claim.
	AllocateUnsold(ctx context.Context, tx *gorm.DB, productID uint) (*models.ProductStock, error)
	DeleteByProduct(ctx context.Context, tx *gorm.DB, productID uint) error
}

// PurchaseRepository defines purchase history repository interface
type PurchaseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, history *models.PurchaseHistory) error
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.PurchaseHistory, int64, error)
	ListAll(ctx context.Context, offset, limit int) ([]*models.PurchaseHistory, int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	SumRevenueSince(ctx context.Context, since time.Time) (float64, error)
}

// TopupRepository defines topup history and redeemed link repository interface
type TopupRepository interface {
	CreateHistory(ctx context.Context, tx *gorm.DB, history *models.TopupHistory) error
	ListHistoryByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.TopupHistory, int64, error)
	ListAllHistory(ctx context.Context, offset, limit int) ([]*models.TopupHistory, int64, error)
	CreateRedeemedLink(ctx context.Context, tx *gorm.DB, link *models.RedeemedLink) error
	LinkExists(ctx context.Context, link string) (bool, error)
	SumAmountSince(ctx context.Context, since time.Time) (float64, error)
}

// LoginGuardRepository defines per-IP attempt tracking and ban interface
type LoginGuardRepository interface {
	IsBanned(ctx context.Context, ip string) (bool, error)
	Ban(ctx context.Context, ip, reason string) error
	Unban(ctx context.Context, ip string) error
	ListBanned(ctx context.Context) ([]*models.BannedIP, error)
	IncrementLoginAttempt(ctx context.Context, ip string) (int, error)
	ResetLoginAttempts(ctx context.Context, ip string) error
	IncrementRegisterAttempt(ctx context.Context, ip string) (int, error)
	DeleteStaleAttempts(ctx context.Context, before time.Time) error
}
