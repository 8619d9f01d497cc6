package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/user-import-api/internal/csvcodec"
	"github.com/user-import-api/internal/models"
	"github.com/user-import-api/internal/repository"
	"github.com/user-import-api/internal/validation"
)

// RejectionError is returned by SaveValidated when the record fails validation
type RejectionError struct {
	Errors []string
}

func (e *RejectionError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// importService is the concrete implementation of ImportService
type importService struct {
	rows  *rowProcessor
	store repository.UserRepository
	now   func() time.Time
	log   zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(store repository.UserRepository, now func() time.Time, log zerolog.Logger) *importService {
	log = log.With().Str("service", "import").Logger()
	return &importService{
		rows:  newRowProcessor(store, now, log),
		store: store,
		now:   now,
		log:   log,
	}
}

// UploadCSV parses data and processes every row in order. Rows never abort the batch;
// only an unparseable document returns an error, and then no partial result.
func (s *importService) UploadCSV(ctx context.Context, data []byte, dryRun bool) (*models.ImportResult, error) {
	startTime := time.Now()
	mode := modeLabel(dryRun)

	rows, err := csvcodec.Parse(data)
	if err != nil {
		s.log.Warn().Err(err).Int("size_bytes", len(data)).Msg("Rejected unparseable upload")
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	s.log.Info().
		Int("rows", len(rows)).
		Bool("dry_run", dryRun).
		Msg("Starting upload processing")

	result := &models.ImportResult{
		Accepted: []*models.User{},
		Rejected: []*models.RejectedRow{},
	}
	seen := validation.NewEmailSet()

	// Sequential on purpose: later rows must see earlier emails in seen
	for i, row := range rows {
		accepted, rejected := s.rows.process(ctx, row, i, seen, dryRun)
		if rejected != nil {
			result.Rejected = append(result.Rejected, rejected)
			rowsProcessed.WithLabelValues("rejected", mode).Inc()
			continue
		}
		result.Accepted = append(result.Accepted, accepted)
		rowsProcessed.WithLabelValues("accepted", mode).Inc()
	}

	duration := time.Since(startTime)
	uploadDuration.WithLabelValues(mode).Observe(duration.Seconds())

	s.log.Info().
		Int("total", len(rows)).
		Int("accepted", len(result.Accepted)).
		Int("rejected", len(result.Rejected)).
		Bool("dry_run", dryRun).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("Upload completed")

	return result, nil
}

// ValidateUser checks one record against the same rules as an upload row, with only
// stored records counted as duplicates. It never writes to the store.
func (s *importService) ValidateUser(ctx context.Context, row models.RawRow) *models.ValidateResponse {
	candidate, errs, err := s.rows.check(ctx, row, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("Single validation failed")
		errs = []string{validation.MsgUnexpected}
	}
	if len(errs) > 0 {
		singleValidations.WithLabelValues("validate", "rejected").Inc()
		return &models.ValidateResponse{Valid: false, Data: row, Errors: errs}
	}

	singleValidations.WithLabelValues("validate", "accepted").Inc()
	return &models.ValidateResponse{
		Valid: true,
		User:  preview(candidate, singlePreviewID, s.now()),
	}
}

// SaveValidated re-runs the single-record checks and persists the record once.
// A failing record returns a *RejectionError.
func (s *importService) SaveValidated(ctx context.Context, row models.RawRow) (*models.User, error) {
	candidate, errs, err := s.rows.check(ctx, row, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to validate user: %w", err)
	}
	if len(errs) > 0 {
		singleValidations.WithLabelValues("save", "rejected").Inc()
		return nil, &RejectionError{Errors: errs}
	}

	user, err := s.store.Insert(ctx, candidate)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		singleValidations.WithLabelValues("save", "rejected").Inc()
		return nil, &RejectionError{Errors: []string{validation.MsgDuplicateInStore}}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	singleValidations.WithLabelValues("save", "accepted").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("Validated user saved")

	return user, nil
}
