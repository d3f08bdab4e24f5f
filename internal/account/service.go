package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/domain"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// Service implements the business logic for user account administration.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new account service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateUserInput holds the parameters for creating a user.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	Phone     string
}

// UpdateUserInput holds the parameters for updating a user. Nil fields are
// left unchanged.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Role      *string
	Status    *string
	Phone     *string
}

// ListUsers returns all user accounts.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id int) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// CreateUser creates a new user account with a hashed password.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, apperrors.InvalidInput("role must be user or admin")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: string(hashed),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         role,
		Status:       domain.UserStatusActive,
		Phone:        input.Phone,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user created",
		slog.Int("user_id", user.ID),
		slog.String("role", user.Role),
	)
	return user, nil
}

// UpdateUser applies a partial update to the user with the given ID.
func (s *Service) UpdateUser(ctx context.Context, id int, input UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Role != nil {
		if *input.Role != domain.RoleUser && *input.Role != domain.RoleAdmin {
			return nil, apperrors.InvalidInput("role must be user or admin")
		}
		user.Role = *input.Role
	}
	if input.Status != nil {
		if *input.Status != domain.UserStatusActive && *input.Status != domain.UserStatusInactive {
			return nil, apperrors.InvalidInput("status must be active or inactive")
		}
		user.Status = *input.Status
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.InfoContext(ctx, "user updated", slog.Int("user_id", user.ID))
	return user, nil
}

// DeleteUser removes the user with the given ID.
func (s *Service) DeleteUser(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.InfoContext(ctx, "user deleted", slog.Int("user_id", id))
	return nil
}
