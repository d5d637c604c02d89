package services

import (
	"context"
	"errors"
	"log"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"
	"github.com/Shadow52186/rs-1/internal/adapters/persistence/repositories"
	"github.com/Shadow52186/rs-1/internal/config"
	"github.com/Shadow52186/rs-1/internal/core/domain"
	"github.com/Shadow52186/rs-1/internal/pkg/jwt"
	"github.com/Shadow52186/rs-1/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserAlreadyExists = errors.New("username already taken")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenRevoked      = errors.New("token revoked")
	ErrRecaptchaFailed   = errors.New("recaptcha verification failed")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	loginGuard       *LoginGuardService
	recaptcha        RecaptchaVerifier
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	loginGuard *LoginGuardService,
	recaptcha RecaptchaVerifier,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		loginGuard:       loginGuard,
		recaptcha:        recaptcha,
		cfg:              cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Username       string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password       string `json:"password" validate:"required,min=6"`
	RecaptchaToken string `json:"recaptcha_token"`
}

// LoginInput represents login input
type LoginInput struct {
	Username       string `json:"username" validate:"required"`
	Password       string `json:"password" validate:"required"`
	RecaptchaToken string `json:"recaptcha_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// Register registers a new user.
// Every call counts against the per-IP registration limit, whether it
// succeeds or not, so scripted signups burn themselves out.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput, ip string) (*AuthResponse, error) {
	// 1. Banned IPs never get through
	banned, err := s.loginGuard.IsBanned(ctx, ip)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, domain.ErrIPBanned
	}

	// 2. Count this attempt; the increment may trip the ban
	nowBanned, err := s.loginGuard.RecordRegisterAttempt(ctx, ip)
	if err != nil {
		return nil, err
	}
	if nowBanned {
		return nil, domain.ErrIPBanned
	}

	// 3. Verify reCAPTCHA when configured
	ok, err := s.recaptcha.Verify(ctx, input.RecaptchaToken, ip)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRecaptchaFailed
	}

	// 4. Check if username already exists
	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	// 5. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 6. Create user
	user := &models.User{
		Username: input.Username,
		Password: hashedPassword,
		Role:     string(domain.RoleUser),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	// 7. Generate and store tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ User registered: %s", user.Username)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Login authenticates a user.
// The ban check runs before credentials are even looked at, and every
// failed attempt feeds the per-IP counter.
func (s *AuthService) Login(ctx context.Context, input *LoginInput, ip string) (*AuthResponse, error) {
	// 1. Banned IPs are rejected outright, correct password or not
	banned, err := s.loginGuard.IsBanned(ctx, ip)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, domain.ErrIPBanned
	}

	// 2. Verify reCAPTCHA when configured
	ok, err := s.recaptcha.Verify(ctx, input.RecaptchaToken, ip)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRecaptchaFailed
	}

	// 3. Find user by username
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.failLogin(ctx, ip)
		}
		return nil, err
	}

	// 4. Verify password
	if !password.Verify(input.Password, user.Password) {
		return nil, s.failLogin(ctx, ip)
	}

	// 5. Success clears the failure counter
	if err := s.loginGuard.RecordLoginSuccess(ctx, ip); err != nil {
		log.Printf("⚠️ Failed to reset login attempts for %s: %v", ip, err)
	}

	// 6. Generate and store tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.Username)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// failLogin records the failure and maps the outcome to an error.
// When the failure trips the ban the caller sees ErrIPBanned, matching
// what every later request from that IP will get.
func (s *AuthService) failLogin(ctx context.Context, ip string) error {
	nowBanned, err := s.loginGuard.RecordLoginFailure(ctx, ip)
	if err != nil {
		log.Printf("⚠️ Failed to record login failure for %s: %v", ip, err)
	}
	if nowBanned {
		return domain.ErrIPBanned
	}
	return domain.ErrInvalidCredentials
}

// RefreshToken refreshes the access token using refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Hash the token to find in DB
	tokenHash := password.HashToken(refreshToken)

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// 3. Rotate: revoke the old token before issuing a new pair
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for user: %s", user.Username)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // Already gone, logout is idempotent
		}
		return err
	}

	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return err
	}

	log.Printf("✅ User logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for user ID: %d", userID)
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*domain.TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Username,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
