package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"
	"github.com/Shadow52186/rs-1/internal/adapters/persistence/repositories"
	"github.com/Shadow52186/rs-1/internal/config"
	"github.com/Shadow52186/rs-1/internal/core/domain"

	"gorm.io/gorm"
)

// TopupService credits user balances from verified payments
type TopupService struct {
	db        *gorm.DB
	userRepo  repositories.UserRepository
	topupRepo repositories.TopupRepository
	byshop    ByShopClient
	cfg       *config.Config
}

// NewTopupService creates a new topup service
func NewTopupService(
	db *gorm.DB,
	userRepo repositories.UserRepository,
	topupRepo repositories.TopupRepository,
	byshop ByShopClient,
	cfg *config.Config,
) *TopupService {
	return &TopupService{
		db:        db,
		userRepo:  userRepo,
		topupRepo: topupRepo,
		byshop:    byshop,
		cfg:       cfg,
	}
}

// SlipInput represents a bank-slip verification request
type SlipInput struct {
	QRText string `json:"qr_text" validate:"required,min=10"`
}

// GiftLinkInput represents a gift-link redemption request
type GiftLinkInput struct {
	Link string `json:"link" validate:"required,startswith=https://gift.truemoney.com/"`
}

// TopupResult is the outcome of a successful credit
type TopupResult struct {
	Amount  float64              `json:"amount"`
	History *models.TopupHistory `json:"history"`
}

// VerifySlip verifies a bank-transfer slip and credits its amount.
// Replay protection is layered: the gateway's check_slip flag catches
// slips burned anywhere, and the unique transaction_id index catches
// a concurrent double-submit on our side.
func (s *TopupService) VerifySlip(ctx context.Context, userID uint, input *SlipInput) (*TopupResult, error) {
	check, err := s.byshop.CheckSlip(ctx, input.QRText)
	if err != nil {
		return nil, err
	}

	if check.AlreadyUsed {
		return nil, domain.ErrSlipAlreadyUsed
	}
	if !check.Valid {
		return nil, domain.ErrSlipInvalid
	}
	if time.Since(check.SlipTime) > s.cfg.Store.SlipMaxAge {
		return nil, domain.ErrSlipExpired
	}
	if check.Amount <= 0 {
		return nil, domain.ErrSlipInvalid
	}

	// A blank ref would collide on the unique index and misreport the
	// next ref-less slip as already used
	slipRef := strings.TrimSpace(check.SlipRef)
	if slipRef == "" {
		return nil, domain.ErrSlipInvalid
	}
	history := &models.TopupHistory{
		UserID:        userID,
		Amount:        check.Amount,
		Method:        string(domain.TopupMethodBank),
		TransactionID: &slipRef,
		SlipTime:      check.SlipTime.Format("2006-01-02 15:04:05"),
		Sender:        check.Sender,
		Receiver:      check.Receiver,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Insert first: a duplicate slip_ref aborts before any credit
		if err := s.topupRepo.CreateHistory(ctx, tx, history); err != nil {
			if repositories.IsDuplicateKey(err) {
				return domain.ErrSlipAlreadyUsed
			}
			return err
		}
		return s.userRepo.CreditPoints(ctx, tx, userID, check.Amount)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Slip topup: user %d credited %.2f (ref: %s)", userID, check.Amount, slipRef)
	return &TopupResult{Amount: check.Amount, History: history}, nil
}

// RedeemGiftLink redeems a TrueMoney gift link and credits its amount.
// A link is single-use forever: even a failed gateway call burns it,
// because the gateway may have consumed the gift despite the error
// surface, and re-tries would double-credit.
func (s *TopupService) RedeemGiftLink(ctx context.Context, userID uint, input *GiftLinkInput) (*TopupResult, error) {
	link := strings.TrimSpace(input.Link)

	// Cheap local check before spending a gateway call
	used, err := s.topupRepo.LinkExists(ctx, link)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, domain.ErrLinkAlreadyUsed
	}

	redeem, err := s.byshop.RedeemGift(ctx, link)
	if err != nil {
		return nil, err
	}

	if !redeem.OK {
		s.recordFailedLink(ctx, userID, link)
		if redeem.Message != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidLink, redeem.Message)
		}
		return nil, domain.ErrInvalidLink
	}

	history := &models.TopupHistory{
		UserID: userID,
		Amount: redeem.Amount,
		Method: string(domain.TopupMethodGift),
		Note:   link,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// The unique link index resolves a concurrent redeem race
		record := &models.RedeemedLink{
			Link:   link,
			UserID: userID,
			Amount: redeem.Amount,
			Status: string(domain.RedeemStatusSuccess),
		}
		if err := s.topupRepo.CreateRedeemedLink(ctx, tx, record); err != nil {
			if repositories.IsDuplicateKey(err) {
				return domain.ErrLinkAlreadyUsed
			}
			return err
		}
		if err := s.topupRepo.CreateHistory(ctx, tx, history); err != nil {
			return err
		}
		return s.userRepo.CreditPoints(ctx, tx, userID, redeem.Amount)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Gift topup: user %d credited %.2f", userID, redeem.Amount)
	return &TopupResult{Amount: redeem.Amount, History: history}, nil
}

// recordFailedLink burns a link that failed at the gateway
func (s *TopupService) recordFailedLink(ctx context.Context, userID uint, link string) {
	record := &models.RedeemedLink{
		Link:   link,
		UserID: userID,
		Status: string(domain.RedeemStatusFail),
	}
	if err := s.topupRepo.CreateRedeemedLink(ctx, s.db, record); err != nil && !repositories.IsDuplicateKey(err) {
		log.Printf("⚠️ Failed to record burned gift link: %v", err)
	}
}

// History lists the user's own topups, newest first
func (s *TopupService) History(ctx context.Context, userID uint, offset, limit int) ([]*models.TopupHistory, int64, error) {
	return s.topupRepo.ListHistoryByUser(ctx, userID, offset, limit)
}

// AllHistory lists every topup for the admin view, newest first
func (s *TopupService) AllHistory(ctx context.Context, offset, limit int) ([]*models.TopupHistory, int64, error) {
	return s.topupRepo.ListAllHistory(ctx, offset, limit)
}
