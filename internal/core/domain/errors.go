package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Catalog errors
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrStockNotFound    = errors.New("stock entry not found")
)

// Purchase errors
var (
	ErrOutOfStock          = errors.New("product is out of stock")
	ErrInsufficientBalance = errors.New("insufficient point balance")
)

// Topup errors
var (
	ErrSlipAlreadyUsed = errors.New("slip has already been used")
	ErrSlipExpired     = errors.New("slip is older than the accepted window")
	ErrSlipInvalid     = errors.New("slip is not valid")
	ErrLinkAlreadyUsed = errors.New("gift link has already been redeemed")
	ErrInvalidLink     = errors.New("gift link is invalid or expired")
	ErrExternalService = errors.New("external payment service unavailable")
)

// Login guard errors
var (
	ErrIPBanned = errors.New("ip address is permanently banned")
)
