package services

import (
	"context"
	"log"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"
	"github.com/Shadow52186/rs-1/internal/adapters/persistence/repositories"
	"github.com/Shadow52186/rs-1/internal/config"
)

// LoginGuardService tracks failed logins per IP and escalates to a
// permanent ban once the threshold is crossed.
type LoginGuardService struct {
	guardRepo repositories.LoginGuardRepository
	cfg       *config.Config
}

// NewLoginGuardService creates a new login guard service
func NewLoginGuardService(guardRepo repositories.LoginGuardRepository, cfg *config.Config) *LoginGuardService {
	return &LoginGuardService{
		guardRepo: guardRepo,
		cfg:       cfg,
	}
}

// IsBanned checks whether the IP is blocked
func (s *LoginGuardService) IsBanned(ctx context.Context, ip string) (bool, error) {
	return s.guardRepo.IsBanned(ctx, ip)
}

// RecordLoginFailure bumps the failure counter and bans the IP when it
// reaches the threshold. Returns true when the IP is now banned.
func (s *LoginGuardService) RecordLoginFailure(ctx context.Context, ip string) (bool, error) {
	count, err := s.guardRepo.IncrementLoginAttempt(ctx, ip)
	if err != nil {
		return false, err
	}

	if count >= s.cfg.Store.LoginBanThreshold {
		if err := s.guardRepo.Ban(ctx, ip, "Too many failed login attempts"); err != nil {
			return false, err
		}
		log.Printf("🚫 IP banned after %d failed logins: %s", count, ip)
		return true, nil
	}

	return false, nil
}

// RecordLoginSuccess clears the failure counter for the IP
func (s *LoginGuardService) RecordLoginSuccess(ctx context.Context, ip string) error {
	return s.guardRepo.ResetLoginAttempts(ctx, ip)
}

// RecordRegisterAttempt bumps the registration counter and bans the IP
// when it reaches the threshold. Returns true when the IP is now banned.
func (s *LoginGuardService) RecordRegisterAttempt(ctx context.Context, ip string) (bool, error) {
	count, err := s.guardRepo.IncrementRegisterAttempt(ctx, ip)
	if err != nil {
		return false, err
	}

	if count >= s.cfg.Store.RegisterBanThreshold {
		if err := s.guardRepo.Ban(ctx, ip, "Too many registration attempts"); err != nil {
			return false, err
		}
		log.Printf("🚫 IP banned after %d registration attempts: %s", count, ip)
		return true, nil
	}

	return false, nil
}

// ListBanned lists all banned IPs
func (s *LoginGuardService) ListBanned(ctx context.Context) ([]*models.BannedIP, error) {
	return s.guardRepo.ListBanned(ctx)
}

// Unban lifts the ban and clears counters for the IP
func (s *LoginGuardService) Unban(ctx context.Context, ip string) error {
	if err := s.guardRepo.Unban(ctx, ip); err != nil {
		return err
	}
	log.Printf("✅ IP unbanned: %s", ip)
	return nil
}
