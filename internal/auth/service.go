package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/account"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/kv"
)

// sessionKeyPrefix scopes persisted sessions in the key-value store.
const sessionKeyPrefix = "auth_user:"

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// Service implements login, registration, and session management. The
// authenticated user is persisted per session in the key-value store, so a
// session survives process restarts when a durable backend is configured.
// Session persistence follows the same fail-soft policy as the cart: a
// storage failure is logged, never returned to the caller.
type Service struct {
	users   account.Repository
	jwt     *JWTManager
	storage kv.Store
	logger  *slog.Logger
}

// NewService creates a new auth service.
func NewService(users account.Repository, jwt *JWTManager, storage kv.Store, logger *slog.Logger) *Service {
	return &Service{
		users:   users,
		jwt:     jwt,
		storage: storage,
		logger:  logger,
	}
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Session is the result of a successful login or registration.
type Session struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Login verifies the credentials, records the login time, and opens a
// session. Unknown email and wrong password return the same error so the
// response does not reveal which accounts exist.
func (s *Service) Login(ctx context.Context, sessionID string, input LoginInput) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if user.Status != domain.UserStatusActive {
		return nil, apperrors.Forbidden("account is inactive")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "failed to record login time",
			slog.Int("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	session, err := s.openSession(ctx, sessionID, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.Int("user_id", user.ID))
	return session, nil
}

// Register creates a new customer account and opens a session for it.
func (s *Service) Register(ctx context.Context, sessionID string, input RegisterInput) (*Session, error) {
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.InvalidInput("password must be at least 8 characters")
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
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	session, err := s.openSession(ctx, sessionID, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", slog.Int("user_id", user.ID))
	return session, nil
}

// Logout drops the persisted session. Logging out a session that has no
// user is a no-op.
func (s *Service) Logout(ctx context.Context, sessionID string) {
	if err := s.storage.Remove(ctx, sessionKeyPrefix+sessionID); err != nil && !errors.Is(err, kv.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to remove persisted session",
			slog.String("error", err.Error()),
		)
	}
}

// CurrentUser returns the user persisted for the session, or ErrUnauthorized
// when the session is anonymous.
func (s *Service) CurrentUser(ctx context.Context, sessionID string) (*domain.User, error) {
	raw, err := s.storage.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, apperrors.Unauthorized("not logged in")
		}
		return nil, fmt.Errorf("read persisted session: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.WarnContext(ctx, "corrupted session payload, treating as anonymous",
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Unauthorized("not logged in")
	}
	return &user, nil
}

// ChangePassword verifies the current password and replaces it.
func (s *Service) ChangePassword(ctx context.Context, userID int, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user by id: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperrors.Unauthorized("current password is incorrect")
	}
	if len(next) < 8 {
		return apperrors.InvalidInput("password must be at least 8 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashed)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.logger.InfoContext(ctx, "password changed", slog.Int("user_id", userID))
	return nil
}

// ValidateToken exposes token validation for the HTTP middleware.
func (s *Service) ValidateToken(token string) (*Claims, error) {
	return s.jwt.ValidateToken(token)
}

func (s *Service) openSession(ctx context.Context, sessionID string, user *domain.User) (*Session, error) {
	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := s.storage.Set(ctx, sessionKeyPrefix+sessionID, string(data)); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist session",
			slog.Int("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return &Session{User: *user, Token: token}, nil
}
