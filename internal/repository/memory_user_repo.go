package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user-import-api/internal/models"
)

// memoryUserRepo keeps users in insertion order behind a mutex
type memoryUserRepo struct {
	mu      sync.RWMutex
	users   []*models.User
	byEmail map[string]*models.User
	now     func() time.Time
}

// NewMemoryUserRepo creates an empty in-memory user repository
func NewMemoryUserRepo() UserRepository {
	return &memoryUserRepo{
		byEmail: make(map[string]*models.User),
		now:     time.Now,
	}
}

// Insert stores a new user with a generated id and the current time
func (r *memoryUserRepo) Insert(ctx context.Context, in *models.NewUser) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[in.Email]; exists {
		return nil, ErrDuplicateEmail
	}

	user := &models.User{
		ID:          uuid.New().String(),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Birthdate:   in.Birthdate,
		PhoneNumber: in.PhoneNumber,
		CreatedAt:   r.now(),
	}
	r.users = append(r.users, user)
	r.byEmail[user.Email] = user

	return copyUser(user), nil
}

// List returns a snapshot of all users in insertion order
func (r *memoryUserRepo) List(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*models.User, len(r.users))
	for i, u := range r.users {
		users[i] = copyUser(u)
	}
	return users, nil
}

// FindByEmail returns the user with exactly this email, or nil
func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return copyUser(user), nil
}

// Count returns the total number of users
func (r *memoryUserRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

// StreamAll calls callback for each user in insertion order, over a snapshot
func (r *memoryUserRepo) StreamAll(ctx context.Context, callback func(*models.User) error) error {
	users, _ := r.List(ctx)
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := callback(user); err != nil {
			return err
		}
	}
	return nil
}

// Records are immutable once stored, so callers get their own copy
func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}
