package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"
	"github.com/Shadow52186/rs-1/internal/adapters/persistence/repositories"
	"github.com/Shadow52186/rs-1/internal/core/domain"
	"github.com/Shadow52186/rs-1/internal/pkg/validate"

	"gorm.io/gorm"
)

// fakeByShop scripts gateway responses per slip ref / link
type fakeByShop struct {
	slip  *domain.SlipCheck
	gift  *domain.GiftRedeem
	err   error
	calls int
}

func (f *fakeByShop) CheckSlip(ctx context.Context, qrText string) (*domain.SlipCheck, error) {
	f.calls++
	return f.slip, f.err
}

func (f *fakeByShop) RedeemGift(ctx context.Context, giftLink string) (*domain.GiftRedeem, error) {
	f.calls++
	return f.gift, f.err
}

func newTopupService(db *gorm.DB, byshop ByShopClient) *TopupService {
	return NewTopupService(
		db,
		repositories.NewUserRepository(db),
		repositories.NewTopupRepository(db),
		byshop,
		newTestConfig(),
	)
}

func freshSlip(ref string, amount float64) *domain.SlipCheck {
	return &domain.SlipCheck{
		Valid:    true,
		Amount:   amount,
		SlipRef:  ref,
		SlipTime: time.Now().Add(-1 * time.Minute),
		Sender:   "Buyer B.",
		Receiver: "RS Store",
	}
}

func TestVerifySlipCreditsOnce(t *testing.T) {
	db := newTestDB(t)
	byshop := &fakeByShop{slip: freshSlip("TX-001", 250)}
	svc := newTopupService(db, byshop)
	ctx := context.Background()

	user := seedUser(t, db, "payer", "secret123", 0)

	result, err := svc.VerifySlip(ctx, user.ID, &SlipInput{QRText: "0041000600000101TX-001"})
	if err != nil {
		t.Fatalf("VerifySlip: %v", err)
	}
	if result.Amount != 250 {
		t.Errorf("credited amount = %.2f, want 250", result.Amount)
	}
	if got := userBalance(t, db, user.ID); got != 250 {
		t.Errorf("balance = %.2f, want 250", got)
	}

	// Same slip again: the unique transaction_id blocks the replay
	_, err = svc.VerifySlip(ctx, user.ID, &SlipInput{QRText: "0041000600000101TX-001"})
	if !errors.Is(err, domain.ErrSlipAlreadyUsed) {
		t.Fatalf("replay error = %v, want ErrSlipAlreadyUsed", err)
	}
	if got := userBalance(t, db, user.ID); got != 250 {
		t.Errorf("balance after replay = %.2f, want unchanged 250", got)
	}
}

func TestVerifySlipRejectsGatewayFlaggedReplay(t *testing.T) {
	db := newTestDB(t)
	slip := freshSlip("TX-002", 100)
	slip.AlreadyUsed = true
	svc := newTopupService(db, &fakeByShop{slip: slip})
	ctx := context.Background()

	user := seedUser(t, db, "payer", "secret123", 0)

	_, err := svc.VerifySlip(ctx, user.ID, &SlipInput{QRText: "qr-payload-002"})
	if !errors.Is(err, domain.ErrSlipAlreadyUsed) {
		t.Fatalf("error = %v, want ErrSlipAlreadyUsed", err)
	}
	if got := userBalance(t, db, user.ID); got != 0 {
		t.Errorf("balance = %.2f, want 0", got)
	}
}

func TestVerifySlipRejectsStaleSlip(t *testing.T) {
	db := newTestDB(t)
	slip := freshSlip("TX-003", 100)
	slip.SlipTime = time.Now().Add(-6 * time.Minute)
	svc := newTopupService(db, &fakeByShop{slip: slip})
	ctx := context.Background()

	user := seedUser(t, db, "payer", "secret123", 0)

	_, err := svc.VerifySlip(ctx, user.ID, &SlipInput{QRText: "qr-payload-003"})
	if !errors.Is(err, domain.ErrSlipExpired) {
		t.Fatalf("error = %v, want ErrSlipExpired", err)
	}
}

func TestVerifySlipRejectsInvalidSlip(t *testing.T) {
	db := newTestDB(t)
	slip := freshSlip("TX-004", 100)
	slip.Valid = false
	svc := newTopupService(db, &fakeByShop{slip: slip})
	ctx := context.Background()

	user := seedUser(t, db, "payer", "secret123", 0)

	_, err := svc.VerifySlip(ctx, user.ID, &SlipInput{QRText: "qr-payload-004"})
	if !errors.Is(err, domain.ErrSlipInvalid) {
		t.Fatalf("error = %v, want ErrSlipInvalid", err)
	}
}

func TestVerifySlipRejectsBlankRef(t *testing.T) {
	db := newTestDB(t)
	slip := freshSlip("  ", 100)
	svc := newTopupService(db, &fakeByShop{slip: slip})
	ctx := context.Background()

	user := seedUser(t, db, "payer", "secret123", 0)

	// A ref-less slip must not be persisted: a second one would collide
	// on the unique transaction_id and read as a replay
	_, err := svc.VerifySlip(ctx, user.ID, &SlipInput{QRText: "qr-payload-005"})
	if !errors.Is(err, domain.ErrSlipInvalid) {
		t.Fatalf("error = %v, want ErrSlipInvalid", err)
	}
	if got := userBalance(t, db, user.ID); got != 0 {
		t.Errorf("balance = %.2f, want 0", got)
	}

	var recorded int64
	db.Model(&models.TopupHistory{}).Count(&recorded)
	if recorded != 0 {
		t.Errorf("%d topup records persisted for a ref-less slip, want 0", recorded)
	}
}

func TestGiftLinkValidationRejectsLookalikeDomain(t *testing.T) {
	bad := &GiftLinkInput{Link: "https://gift.truemoney.com.evil.example/campaign/?v=x"}
	if err := validate.Struct(bad); err == nil {
		t.Error("lookalike domain passed validation")
	}

	good := &GiftLinkInput{Link: "https://gift.truemoney.com/campaign/?v=ok"}
	if err := validate.Struct(good); err != nil {
		t.Errorf("genuine gift link rejected: %v", err)
	}
}

func TestRedeemGiftLinkCreditsOnce(t *testing.T) {
	db := newTestDB(t)
	byshop := &fakeByShop{gift: &domain.GiftRedeem{OK: true, Amount: 120}}
	svc := newTopupService(db, byshop)
	ctx := context.Background()

	user := seedUser(t, db, "gifted", "secret123", 0)
	link := "https://gift.truemoney.com/campaign/?v=abc123"

	result, err := svc.RedeemGiftLink(ctx, user.ID, &GiftLinkInput{Link: link})
	if err != nil {
		t.Fatalf("RedeemGiftLink: %v", err)
	}
	if result.Amount != 120 {
		t.Errorf("credited amount = %.2f, want 120", result.Amount)
	}
	if got := userBalance(t, db, user.ID); got != 120 {
		t.Errorf("balance = %.2f, want 120", got)
	}

	// Second redeem of the same link must fail without a gateway call
	callsBefore := byshop.calls
	_, err = svc.RedeemGiftLink(ctx, user.ID, &GiftLinkInput{Link: link})
	if !errors.Is(err, domain.ErrLinkAlreadyUsed) {
		t.Fatalf("reuse error = %v, want ErrLinkAlreadyUsed", err)
	}
	if byshop.calls != callsBefore {
		t.Error("reused link still hit the gateway")
	}
	if got := userBalance(t, db, user.ID); got != 120 {
		t.Errorf("balance after reuse = %.2f, want unchanged 120", got)
	}
}

func TestRedeemGiftLinkFailureBurnsLink(t *testing.T) {
	db := newTestDB(t)
	byshop := &fakeByShop{gift: &domain.GiftRedeem{OK: false, Message: "gift expired"}}
	svc := newTopupService(db, byshop)
	ctx := context.Background()

	user := seedUser(t, db, "unlucky", "secret123", 0)
	link := "https://gift.truemoney.com/campaign/?v=dead"

	_, err := svc.RedeemGiftLink(ctx, user.ID, &GiftLinkInput{Link: link})
	if !errors.Is(err, domain.ErrInvalidLink) {
		t.Fatalf("error = %v, want ErrInvalidLink", err)
	}

	// The failure is recorded so the link cannot be retried
	var record models.RedeemedLink
	if err := db.Where("link = ?", link).First(&record).Error; err != nil {
		t.Fatalf("failed link was not recorded: %v", err)
	}
	if record.Status != string(domain.RedeemStatusFail) {
		t.Errorf("recorded status = %q, want fail", record.Status)
	}

	_, err = svc.RedeemGiftLink(ctx, user.ID, &GiftLinkInput{Link: link})
	if !errors.Is(err, domain.ErrLinkAlreadyUsed) {
		t.Fatalf("retry error = %v, want ErrLinkAlreadyUsed", err)
	}
}

func TestTopupHistoryScopedToUser(t *testing.T) {
	db := newTestDB(t)
	byshop := &fakeByShop{gift: &domain.GiftRedeem{OK: true, Amount: 50}}
	svc := newTopupService(db, byshop)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "secret123", 0)
	bob := seedUser(t, db, "bob", "secret123", 0)

	if _, err := svc.RedeemGiftLink(ctx, alice.ID, &GiftLinkInput{Link: "https://gift.truemoney.com/campaign/?v=a1"}); err != nil {
		t.Fatalf("RedeemGiftLink: %v", err)
	}
	if _, err := svc.RedeemGiftLink(ctx, bob.ID, &GiftLinkInput{Link: "https://gift.truemoney.com/campaign/?v=b1"}); err != nil {
		t.Fatalf("RedeemGiftLink: %v", err)
	}

	_, total, err := svc.History(ctx, alice.ID, 0, 50)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if total != 1 {
		t.Errorf("alice history total = %d, want 1", total)
	}

	_, allTotal, err := svc.AllHistory(ctx, 0, 50)
	if err != nil {
		t.Fatalf("AllHistory: %v", err)
	}
	if allTotal != 2 {
		t.Errorf("admin history total = %d, want 2", allTotal)
	}
}
