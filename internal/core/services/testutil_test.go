package services

import (
	"context"
	"testing"
	"time"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"
	"github.com/Shadow52186/rs-1/internal/adapters/persistence/repositories"
	"github.com/Shadow52186/rs-1/internal/config"
	"github.com/Shadow52186/rs-1/internal/core/domain"
	"github.com/Shadow52186/rs-1/internal/pkg/password"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with all tables migrated
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// A single connection keeps every session on the same in-memory DB
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

// newTestConfig returns a config with the production defaults the
// services care about
func newTestConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  60,
			RefreshTokenDays: 7,
		},
		Store: config.StoreConfig{
			LoginBanThreshold:    20,
			RegisterBanThreshold: 25,
			SlipMaxAge:           5 * time.Minute,
		},
	}
}

// seedUser inserts a user with a known password and balance
func seedUser(t *testing.T, db *gorm.DB, username, plain string, point float64) *models.User {
	t.Helper()

	hashed, err := password.Hash(plain)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Password: hashed,
		Point:    point,
		Role:     string(domain.RoleUser),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// seedProduct inserts a category, a product and n unsold stock entries
func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stockCount int) *models.Product {
	t.Helper()

	category := &models.Category{Name: "Test Games"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	product := &models.Product{
		Name:       name,
		Price:      price,
		CategoryID: category.ID,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	for i := 0; i < stockCount; i++ {
		stock := &models.ProductStock{
			ProductID: product.ID,
			Username:  "acc" + string(rune('a'+i)),
			Password:  "pass" + string(rune('a'+i)),
		}
		if err := db.Create(stock).Error; err != nil {
			t.Fatalf("seed stock: %v", err)
		}
	}

	return product
}

// userBalance reads the current point balance straight from the table
func userBalance(t *testing.T, db *gorm.DB, userID uint) float64 {
	t.Helper()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	return user.Point
}

func newGuardService(db *gorm.DB, cfg *config.Config) *LoginGuardService {
	return NewLoginGuardService(repositories.NewLoginGuardRepository(db), cfg)
}

// passAllRecaptcha accepts every token, like a deployment with no secret
type passAllRecaptcha struct{}

func (passAllRecaptcha) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	return true, nil
}
