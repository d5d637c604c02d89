package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Point     float64        `gorm:"type:decimal(12,2);not null;default:0" json:"point"`
	Role      string         `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Point     float64   `json:"point"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Point:     u.Point,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Catalog Tables
// ============================================================

// Category groups products on the storefront
type Category struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	Image         string    `gorm:"size:500" json:"image"`
	ImagePublicID string    `gorm:"size:255" json:"-"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// Product is a sellable game-account listing
type Product struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:200;not null" json:"name"`
	Detail        string    `gorm:"type:text" json:"detail"`
	Price         float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	CategoryID    uint      `gorm:"not null;index" json:"category_id"`
	Image         string    `gorm:"size:500" json:"image"`
	ImagePublicID string    `gorm:"size:255" json:"-"`
	IsFeatured    bool      `gorm:"default:false" json:"is_featured"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// ProductStock is one sellable credential pair for a product.
// Visible to buyers only while is_sold = false; the purchase flow flips
// the flag with a conditional update so a row is consumed at most once.
type ProductStock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Username  string    `gorm:"size:200;not null" json:"username"`
	Password  string    `gorm:"size:200;not null" json:"password"`
	IsSold    bool      `gorm:"not null;default:false;index" json:"is_sold"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (ProductStock) TableName() string {
	return "product_stocks"
}

// ============================================================
// Purchase Tables
// ============================================================

// PurchaseHistory is the immutable receipt for one consumed stock entry.
// Product name, category and price are snapshotted at the time of sale;
// the credential copy here is the only place the buyer can retrieve it.
type PurchaseHistory struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	ProductID     uint      `gorm:"not null;index" json:"product_id"`
	StockID       uint      `gorm:"not null;uniqueIndex" json:"stock_id"`
	ProductName   string    `gorm:"size:200;not null" json:"product_name"`
	CategoryName  string    `gorm:"size:100;not null" json:"category_name"`
	BuyerUsername string    `gorm:"size:30;not null" json:"buyer_username"`
	PurchasePrice float64   `gorm:"type:decimal(10,2);not null" json:"purchase_price"`
	Username      string    `gorm:"size:200;not null" json:"username"`
	Password      string    `gorm:"size:200;not null" json:"password"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PurchaseHistory) TableName() string {
	return "purchase_histories"
}

// ============================================================
// Topup Tables
// ============================================================

// TopupHistory records one balance credit. TransactionID is the external
// slip reference; its sparse unique index is the replay-protection anchor
// for bank-slip verification.
type TopupHistory struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Amount        float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method        string    `gorm:"size:20;not null" json:"method"`
	Note          string    `gorm:"size:255" json:"note"`
	TransactionID *string   `gorm:"size:100;uniqueIndex" json:"transaction_id"`
	SlipTime      string    `gorm:"size:64" json:"slip_time"`
	Sender        string    `gorm:"size:500" json:"sender"`
	Receiver      string    `gorm:"size:500" json:"receiver"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TopupHistory) TableName() string {
	return "topup_histories"
}

// RedeemedLink marks a gift link as consumed (or burned by a failed
// attempt). The unique index on link is what makes concurrent redeems
// of the same link resolve to a single success.
type RedeemedLink struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Link      string    `gorm:"size:255;not null;uniqueIndex" json:"link"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Amount    float64   `gorm:"type:decimal(12,2)" json:"amount"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RedeemedLink) TableName() string {
	return "redeemed_links"
}

// ============================================================
// Login Guard Tables
// ============================================================

// LoginAttempt counts failed logins per source IP
type LoginAttempt struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	IP          string    `gorm:"size:45;not null;uniqueIndex" json:"ip"`
	Count       int       `gorm:"not null;default:0" json:"count"`
	LastAttempt time.Time `gorm:"not null" json:"last_attempt"`
}

func (LoginAttempt) TableName() string {
	return "login_attempts"
}

// RegisterAttempt counts registration requests per source IP.
// Durable counterpart of the in-memory counter the storefront used to
// keep, so the limit survives restarts.
type RegisterAttempt struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	IP          string    `gorm:"size:45;not null;uniqueIndex" json:"ip"`
	Count       int       `gorm:"not null;default:0" json:"count"`
	LastAttempt time.Time `gorm:"not null" json:"last_attempt"`
}

func (RegisterAttempt) TableName() string {
	return "register_attempts"
}

// BannedIP is a permanent ban record; presence short-circuits all logins
type BannedIP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IP        string    `gorm:"size:45;not null;uniqueIndex" json:"ip"`
	Reason    string    `gorm:"size:255;default:'Too many login attempts'" json:"reason"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"banned_at"`
}

func (BannedIP) TableName() string {
	return "banned_ips"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Category{},
		&Product{},
		&ProductStock{},
		&PurchaseHistory{},
		&TopupHistory{},
		&RedeemedLink{},
		&LoginAttempt{},
		&RegisterAttempt{},
		&BannedIP{},
	)
}
