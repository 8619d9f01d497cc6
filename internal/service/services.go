package service

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/user-import-api/internal/models"
	"github.com/user-import-api/internal/repository"
)

// ImportService defines the interface for upload and single-record validation
type ImportService interface {
	UploadCSV(ctx context.Context, data []byte, dryRun bool) (*models.ImportResult, error)
	ValidateUser(ctx context.Context, row models.RawRow) *models.ValidateResponse
	SaveValidated(ctx context.Context, row models.RawRow) (*models.User, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	ExportCSV(ctx context.Context) (string, error)
	StreamUsers(ctx context.Context, w http.ResponseWriter, format models.ExportFormat) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetCount(ctx context.Context) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Import ImportService
	Export ExportService
}

// Option customizes service construction
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the wall clock used for age checks and preview timestamps
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, log zerolog.Logger, opts ...Option) *Services {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Services{
		Import: newImportService(repos.User, o.now, log),
		Export: newExportService(repos.User, log),
	}
}
