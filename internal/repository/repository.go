package repository

import (
	"context"
	"errors"

	"github.com/user-import-api/internal/database"
	"github.com/user-import-api/internal/models"
)

// ErrDuplicateEmail is returned by Insert when a record with the same email is already stored
var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository is the record store collaborator used by the import pipeline.
// Implementations own their backing collection and generate ids and timestamps on insert.
type UserRepository interface {
	Insert(ctx context.Context, user *models.NewUser) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.User) error) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	User UserRepository
}

// New creates Postgres-backed repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User: NewUserRepo(db),
	}
}

// NewMemory creates process-local repositories. Contents are lost on restart.
func NewMemory() *Repositories {
	return &Repositories{
		User: NewMemoryUserRepo(),
	}
}
