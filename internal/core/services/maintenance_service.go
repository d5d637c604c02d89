package services

import (
	"context"
	"log"
	"time"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// staleAttemptAge is how long a sub-threshold attempt counter lives.
// Banned IPs are unaffected; only counters that never tripped the ban
// get swept.
const staleAttemptAge = 30 * 24 * time.Hour

// MaintenanceService runs scheduled cleanup jobs
type MaintenanceService struct {
	cron             *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
	guardRepo        repositories.LoginGuardRepository
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(
	refreshTokenRepo repositories.RefreshTokenRepository,
	guardRepo repositories.LoginGuardRepository,
) *MaintenanceService {
	return &MaintenanceService{
		cron:             cron.New(),
		refreshTokenRepo: refreshTokenRepo,
		guardRepo:        guardRepo,
	}
}

// Start schedules the nightly cleanup at 03:00
func (s *MaintenanceService) Start() error {
	if _, err := s.cron.AddFunc("0 3 * * *", s.runCleanup); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Maintenance scheduler started (nightly cleanup at 03:00)")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *MaintenanceService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✅ Maintenance scheduler stopped")
}

// runCleanup purges expired refresh tokens and stale attempt counters
func (s *MaintenanceService) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("⚠️ Cleanup: failed to delete expired refresh tokens: %v", err)
	}

	cutoff := time.Now().Add(-staleAttemptAge)
	if err := s.guardRepo.DeleteStaleAttempts(ctx, cutoff); err != nil {
		log.Printf("⚠️ Cleanup: failed to delete stale attempt counters: %v", err)
	}

	log.Println("🧹 Nightly cleanup completed")
}
