package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/user-import-api/internal/models"
	"github.com/user-import-api/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	Users            []*models.User
	EmailToUser      map[string]*models.User
	InsertError      error
	FindError        error
	ListError        error
	FindByEmailFunc  func(ctx context.Context, email string) (*models.User, error)
	InsertCalls      int
	FindByEmailCalls int
	nextID           int
}

// Verify interface compliance
var _ repository.UserRepository = (*MockUserRepository)(nil)

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		EmailToUser: make(map[string]*models.User),
	}
}

// Seed stores a user directly, bypassing Insert bookkeeping
func (m *MockUserRepository) Seed(user *models.User) {
	m.Users = append(m.Users, user)
	m.EmailToUser[user.Email] = user
}

func (m *MockUserRepository) Insert(ctx context.Context, in *models.NewUser) (*models.User, error) {
	m.InsertCalls++
	if m.InsertError != nil {
		return nil, m.InsertError
	}
	if _, exists := m.EmailToUser[in.Email]; exists {
		return nil, repository.ErrDuplicateEmail
	}
	m.nextID++
	user := &models.User{
		ID:          fmt.Sprintf("user-%d", m.nextID),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Birthdate:   in.Birthdate,
		PhoneNumber: in.PhoneNumber,
		CreatedAt:   time.Now(),
	}
	m.Seed(user)
	return user, nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	users := make([]*models.User, len(m.Users))
	copy(users, m.Users)
	return users, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.FindByEmailCalls++
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	if m.FindError != nil {
		return nil, m.FindError
	}
	return m.EmailToUser[email], nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	return len(m.Users), nil
}

func (m *MockUserRepository) StreamAll(ctx context.Context, callback func(*models.User) error) error {
	if m.ListError != nil {
		return m.ListError
	}
	for _, user := range m.Users {
		if err := callback(user); err != nil {
			return err
		}
	}
	return nil
}
