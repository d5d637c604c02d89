package services

import (
	"context"
	"errors"
	"log"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"
	"github.com/Shadow52186/rs-1/internal/adapters/persistence/repositories"
	"github.com/Shadow52186/rs-1/internal/core/domain"
	"github.com/Shadow52186/rs-1/internal/pkg/password"

	"gorm.io/gorm"
)

// UserAdminService handles admin management of user accounts
type UserAdminService struct {
	userRepo repositories.UserRepository
}

// NewUserAdminService creates a new user admin service
func NewUserAdminService(userRepo repositories.UserRepository) *UserAdminService {
	return &UserAdminService{userRepo: userRepo}
}

// UserUpdateInput represents an admin edit of a user account.
// Zero-value fields are left untouched; Password resets the credential
// when set.
type UserUpdateInput struct {
	Username string   `json:"username" validate:"omitempty,min=3,max=30,alphanum"`
	Password string   `json:"password" validate:"omitempty,min=6"`
	Point    *float64 `json:"point" validate:"omitempty,gte=0"`
	Role     string   `json:"role" validate:"omitempty,oneof=user admin"`
}

// List lists users with pagination
func (s *UserAdminService) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, offset, limit)
}

// Search lists users matching a username query
func (s *UserAdminService) Search(ctx context.Context, query string, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.Search(ctx, query, offset, limit)
}

// Get gets a user by ID
func (s *UserAdminService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Update applies an admin edit to a user account
func (s *UserAdminService) Update(ctx context.Context, id uint, input *UserUpdateInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != "" && input.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUserAlreadyExists
		}
		user.Username = input.Username
	}

	if input.Password != "" {
		hashed, err := password.Hash(input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if input.Point != nil {
		user.Point = *input.Point
	}

	if input.Role != "" {
		user.Role = input.Role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User updated by admin: %s (ID: %d)", user.Username, user.ID)
	return user, nil
}

// Delete soft-deletes a user account.
// Purchase and topup history stay behind for bookkeeping.
func (s *UserAdminService) Delete(ctx context.Context, id uint) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("✅ User deleted: %s (ID: %d)", user.Username, id)
	return nil
}
