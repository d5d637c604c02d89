package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"
	"github.com/Shadow52186/rs-1/internal/adapters/persistence/repositories"
	"github.com/Shadow52186/rs-1/internal/core/domain"

	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := newTestConfig()
	return NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewRefreshTokenRepository(db),
		newGuardService(db, cfg),
		passAllRecaptcha{},
		cfg,
	)
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{Username: "newuser", Password: "secret123"}, "10.0.0.1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("registration did not issue tokens")
	}
	if resp.User.Role != string(domain.RoleUser) {
		t.Errorf("new user role = %q, want user", resp.User.Role)
	}

	login, err := svc.Login(ctx, &LoginInput{Username: "newuser", Password: "secret123"}, "10.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.Username != "newuser" {
		t.Errorf("logged in as %q", login.User.Username)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterInput{Username: "taken", Password: "secret123"}, "10.0.0.1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Register(ctx, &RegisterInput{Username: "taken", Password: "other456"}, "10.0.0.2")
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("error = %v, want ErrUserAlreadyExists", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	seedUser(t, db, "victim", "secret123", 0)

	_, err := svc.Login(ctx, &LoginInput{Username: "victim", Password: "wrong"}, "10.0.0.1")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}

	// Unknown usernames get the same answer as wrong passwords
	_, err = svc.Login(ctx, &LoginInput{Username: "ghost", Password: "whatever"}, "10.0.0.1")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginBanAfterRepeatedFailures(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()
	ip := "203.0.113.9"

	seedUser(t, db, "target", "secret123", 0)

	// Failures 1..19 are plain rejections, the 20th trips the ban
	for i := 1; i < 20; i++ {
		_, err := svc.Login(ctx, &LoginInput{Username: "target", Password: "wrong"}, ip)
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("failure %d: error = %v, want ErrInvalidCredentials", i, err)
		}
	}
	_, err := svc.Login(ctx, &LoginInput{Username: "target", Password: "wrong"}, ip)
	if !errors.Is(err, domain.ErrIPBanned) {
		t.Fatalf("failure 20: error = %v, want ErrIPBanned", err)
	}

	// The ban holds even with the correct password
	_, err = svc.Login(ctx, &LoginInput{Username: "target", Password: "secret123"}, ip)
	if !errors.Is(err, domain.ErrIPBanned) {
		t.Fatalf("banned IP with correct password: error = %v, want ErrIPBanned", err)
	}

	// Other IPs are unaffected
	if _, err := svc.Login(ctx, &LoginInput{Username: "target", Password: "secret123"}, "203.0.113.10"); err != nil {
		t.Fatalf("clean IP login: %v", err)
	}
}

func TestLoginSuccessResetsFailureCounter(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()
	ip := "203.0.113.20"

	seedUser(t, db, "forgetful", "secret123", 0)

	for i := 0; i < 19; i++ {
		if _, err := svc.Login(ctx, &LoginInput{Username: "forgetful", Password: "wrong"}, ip); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("failure %d: %v", i, err)
		}
	}
	if _, err := svc.Login(ctx, &LoginInput{Username: "forgetful", Password: "secret123"}, ip); err != nil {
		t.Fatalf("successful login: %v", err)
	}

	// The counter restarted, so 19 more failures still do not ban
	for i := 0; i < 19; i++ {
		if _, err := svc.Login(ctx, &LoginInput{Username: "forgetful", Password: "wrong"}, ip); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("post-reset failure %d: %v", i, err)
		}
	}
	if _, err := svc.Login(ctx, &LoginInput{Username: "forgetful", Password: "secret123"}, ip); err != nil {
		t.Fatalf("login after reset window: %v", err)
	}
}

func TestRegisterBanAfterRepeatedAttempts(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()
	ip := "198.51.100.7"

	// Every registration counts, successful or not
	for i := 1; i < 25; i++ {
		username := fmt.Sprintf("bot%02d", i)
		if _, err := svc.Register(ctx, &RegisterInput{Username: username, Password: "secret123"}, ip); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}

	_, err := svc.Register(ctx, &RegisterInput{Username: "bot25", Password: "secret123"}, ip)
	if !errors.Is(err, domain.ErrIPBanned) {
		t.Fatalf("attempt 25: error = %v, want ErrIPBanned", err)
	}

	// Once banned, login is blocked from that IP too
	_, err = svc.Login(ctx, &LoginInput{Username: "bot01", Password: "secret123"}, ip)
	if !errors.Is(err, domain.ErrIPBanned) {
		t.Fatalf("login from banned IP: error = %v, want ErrIPBanned", err)
	}
}

func TestUnbanRestoresAccess(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	guard := newGuardService(db, cfg)
	svc := NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewRefreshTokenRepository(db),
		guard,
		passAllRecaptcha{},
		cfg,
	)
	ctx := context.Background()
	ip := "203.0.113.30"

	seedUser(t, db, "redeemed", "secret123", 0)

	for i := 0; i < 20; i++ {
		svc.Login(ctx, &LoginInput{Username: "redeemed", Password: "wrong"}, ip)
	}
	if _, err := svc.Login(ctx, &LoginInput{Username: "redeemed", Password: "secret123"}, ip); !errors.Is(err, domain.ErrIPBanned) {
		t.Fatalf("expected ban before unban, got %v", err)
	}

	if err := guard.Unban(ctx, ip); err != nil {
		t.Fatalf("Unban: %v", err)
	}

	// Counters were cleared along with the ban
	if _, err := svc.Login(ctx, &LoginInput{Username: "redeemed", Password: "secret123"}, ip); err != nil {
		t.Fatalf("login after unban: %v", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{Username: "rotator", Password: "secret123"}, "10.0.0.1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	refreshed, err := svc.RefreshToken(ctx, resp.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if refreshed.RefreshToken == resp.RefreshToken {
		t.Error("refresh did not rotate the token")
	}

	// The old token was revoked by the rotation
	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	if !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("replayed refresh: error = %v, want ErrTokenRevoked", err)
	}

	// The new token still works
	if _, err := svc.RefreshToken(ctx, refreshed.RefreshToken); err != nil {
		t.Fatalf("refresh with rotated token: %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterInput{Username: "leaver", Password: "secret123"}, "10.0.0.1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.Logout(ctx, resp.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	if !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("refresh after logout: error = %v, want ErrTokenRevoked", err)
	}

	// Logging out again is a no-op
	if err := svc.Logout(ctx, resp.RefreshToken); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	first, err := svc.Register(ctx, &RegisterInput{Username: "multi", Password: "secret123"}, "10.0.0.1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	second, err := svc.Login(ctx, &LoginInput{Username: "multi", Password: "secret123"}, "10.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.LogoutAll(ctx, first.User.ID); err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}

	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		if _, err := svc.RefreshToken(ctx, token); !errors.Is(err, ErrTokenRevoked) {
			t.Fatalf("refresh after logout-all: error = %v, want ErrTokenRevoked", err)
		}
	}

	var live int64
	db.Model(&models.RefreshToken{}).Where("revoked_at IS NULL").Count(&live)
	if live != 0 {
		t.Errorf("%d refresh tokens still live, want 0", live)
	}
}
