package account

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"

	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/domain"
)

// MemoryRepository is an in-memory user repository. IDs are assigned as one
// past the current maximum, so deleting the highest user makes its ID
// reusable.
type MemoryRepository struct {
	mu    sync.RWMutex
	users []domain.User
}

// NewMemoryRepository creates an in-memory repository seeded with the given
// users.
func NewMemoryRepository(seed []domain.User) *MemoryRepository {
	return &MemoryRepository{users: slices.Clone(seed)}
}

// List returns all users in insertion order.
func (r *MemoryRepository) List(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.users), nil
}

// GetByID retrieves a user by ID.
func (r *MemoryRepository) GetByID(ctx context.Context, id int) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("user", strconv.Itoa(id))
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if strings.EqualFold(r.users[i].Email, email) {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("user", email)
}

// Create adds a new user, assigning the next ID. Fails when the email is
// already taken.
func (r *MemoryRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if strings.EqualFold(r.users[i].Email, user.Email) {
			return apperrors.AlreadyExists("user", "email", user.Email)
		}
	}

	user.ID = r.nextID()
	r.users = append(r.users, *user)
	return nil
}

// Update replaces the stored user with the same ID.
func (r *MemoryRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].ID == user.ID {
			r.users[i] = *user
			return nil
		}
	}
	return apperrors.NotFound("user", strconv.Itoa(user.ID))
}

// Delete removes the user with the given ID.
func (r *MemoryRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.users)
	r.users = slices.DeleteFunc(r.users, func(u domain.User) bool {
		return u.ID == id
	})
	if len(r.users) == before {
		return apperrors.NotFound("user", strconv.Itoa(id))
	}
	return nil
}

func (r *MemoryRepository) nextID() int {
	max := 0
	for i := range r.users {
		if r.users[i].ID > max {
			max = r.users[i].ID
		}
	}
	return max + 1
}
