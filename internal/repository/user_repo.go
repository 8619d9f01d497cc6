package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/user-import-api/internal/database"
	"github.com/user-import-api/internal/models"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations
const uniqueViolation = "23505"

const userColumns = `id, first_name, last_name, email, birthdate, phone_number, created_at`

// userRepo is the Postgres implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

// Insert stores a new user. The unique index on email rejects duplicates.
func (r *userRepo) Insert(ctx context.Context, in *models.NewUser) (*models.User, error) {
	query := `
		INSERT INTO users (id, first_name, last_name, email, birthdate, phone_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	user := &models.User{
		ID:          uuid.New().String(),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Birthdate:   in.Birthdate,
		PhoneNumber: in.PhoneNumber,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email,
		user.Birthdate, user.PhoneNumber, user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// List returns all users in insertion order
func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.StreamAll(ctx, func(u *models.User) error {
		users = append(users, u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FindByEmail retrieves a user by exact email
func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// Count returns the total number of users
func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// StreamAll streams all users for export (memory efficient)
func (r *userRepo) StreamAll(ctx context.Context, callback func(*models.User) error) error {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return err
		}
		if err := callback(user); err != nil {
			return err
		}
	}

	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user      models.User
		birthdate time.Time
	)
	err := row.Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email,
		&birthdate, &user.PhoneNumber, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Birthdate = birthdate.Format("2006-01-02")
	return &user, nil
}
