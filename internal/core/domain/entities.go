package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// TopupMethod identifies how a balance credit was funded
type TopupMethod string

const (
	TopupMethodBank TopupMethod = "bank"
	TopupMethodGift TopupMethod = "gift-link"
)

// RedeemStatus is the outcome recorded for a gift-link redemption attempt
type RedeemStatus string

const (
	RedeemStatusSuccess RedeemStatus = "success"
	RedeemStatusFail    RedeemStatus = "fail"
)

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SlipCheck is the normalized result of an external slip verification
type SlipCheck struct {
	Valid       bool
	AlreadyUsed bool
	Amount      float64
	SlipRef     string
	SlipTime    time.Time
	Sender      string
	Receiver    string
}

// GiftRedeem is the normalized result of an external gift-link redemption
type GiftRedeem struct {
	OK      bool
	Amount  float64
	Message string
}
