package validation

import (
	"context"
	"fmt"

	"github.com/user-import-api/internal/models"
)

// DuplicateStatus is the outcome of an email uniqueness check
type DuplicateStatus int

const (
	DuplicateNone DuplicateStatus = iota
	DuplicateInBatch
	DuplicateInStore
)

func (s DuplicateStatus) String() string {
	switch s {
	case DuplicateInBatch:
		return "duplicate-in-batch"
	case DuplicateInStore:
		return "duplicate-in-store"
	default:
		return "ok"
	}
}

// Message returns the rejection reason for a duplicate status, or "" for DuplicateNone
func (s DuplicateStatus) Message() string {
	switch s {
	case DuplicateInBatch:
		return MsgDuplicateInBatch
	case DuplicateInStore:
		return MsgDuplicateInStore
	default:
		return ""
	}
}

// EmailLookup finds a stored user by exact email
type EmailLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// EmailSet tracks emails accepted so far in one upload. Matching is exact.
type EmailSet map[string]struct{}

// NewEmailSet creates an empty set
func NewEmailSet() EmailSet {
	return make(EmailSet)
}

// Has reports whether email was already accepted
func (s EmailSet) Has(email string) bool {
	_, ok := s[email]
	return ok
}

// Add records email as accepted
func (s EmailSet) Add(email string) {
	s[email] = struct{}{}
}

// DuplicateChecker detects email collisions within a batch and against the store
type DuplicateChecker struct {
	store EmailLookup
}

// NewDuplicateChecker creates a checker backed by store
func NewDuplicateChecker(store EmailLookup) *DuplicateChecker {
	return &DuplicateChecker{store: store}
}

// Check classifies email. The batch set is consulted first and the store is only
// queried when the email is new to the batch. seen is never modified here; callers
// add the email once the whole row has been accepted. A nil seen skips the batch check.
func (c *DuplicateChecker) Check(ctx context.Context, email string, seen EmailSet) (DuplicateStatus, error) {
	if seen.Has(email) {
		return DuplicateInBatch, nil
	}

	existing, err := c.store.FindByEmail(ctx, email)
	if err != nil {
		return DuplicateNone, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return DuplicateInStore, nil
	}
	return DuplicateNone, nil
}
