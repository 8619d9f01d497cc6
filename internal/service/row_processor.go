package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/user-import-api/internal/models"
	"github.com/user-import-api/internal/repository"
	"github.com/user-import-api/internal/validation"
)

// Preview ids for records that were validated but not persisted
const (
	previewIDPrefix  = "temp-"
	singlePreviewID  = "temp"
	firstDataRowLine = 2 // the header is row 1
)

// rowProcessor decides accept or reject for one row at a time
type rowProcessor struct {
	fields *validation.FieldValidator
	dupes  *validation.DuplicateChecker
	store  repository.UserRepository
	now    func() time.Time
	log    zerolog.Logger
}

func newRowProcessor(store repository.UserRepository, now func() time.Time, log zerolog.Logger) *rowProcessor {
	return &rowProcessor{
		fields: validation.NewFieldValidator(),
		dupes:  validation.NewDuplicateChecker(store),
		store:  store,
		now:    now,
		log:    log,
	}
}

// check runs field rules, then the duplicate check, then the age rule, stopping at
// the first stage that fails. On success it returns the normalized record.
// The error is reserved for collaborator failures.
func (p *rowProcessor) check(ctx context.Context, row models.RawRow, seen validation.EmailSet) (*models.NewUser, []string, error) {
	if errs := p.fields.Validate(row); len(errs) > 0 {
		return nil, errs, nil
	}

	candidate := normalize(row)

	status, err := p.dupes.Check(ctx, candidate.Email, seen)
	if err != nil {
		return nil, nil, err
	}
	if status != validation.DuplicateNone {
		return nil, []string{status.Message()}, nil
	}

	birth, err := validation.ParseDate(candidate.Birthdate)
	if err != nil {
		// unreachable after field validation
		return nil, nil, fmt.Errorf("parse birthdate: %w", err)
	}
	if !validation.IsOldEnough(birth, p.now()) {
		return nil, []string{validation.MsgUnderage}, nil
	}
	candidate.Birthdate = birth.Format(validation.ISODate)

	return candidate, nil, nil
}

// process handles one data row at zero-based position. Exactly one of the results is non-nil.
// Panics and collaborator failures become a generic rejection for this row only.
func (p *rowProcessor) process(ctx context.Context, row models.RawRow, position int, seen validation.EmailSet, dryRun bool) (accepted *models.User, rejected *models.RejectedRow) {
	rowIndex := position + firstDataRowLine
	reject := func(errs ...string) (*models.User, *models.RejectedRow) {
		return nil, &models.RejectedRow{RowIndex: rowIndex, Data: row, Errors: errs}
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Error().
				Interface("panic", r).
				Int("row_index", rowIndex).
				Msg("Row processing panicked - recovered")
			accepted, rejected = reject(validation.MsgUnexpected)
		}
	}()

	candidate, errs, err := p.check(ctx, row, seen)
	if err != nil {
		p.log.Error().Err(err).Int("row_index", rowIndex).Msg("Row processing failed")
		return reject(validation.MsgUnexpected)
	}
	if len(errs) > 0 {
		return reject(errs...)
	}

	if dryRun {
		seen.Add(candidate.Email)
		return preview(candidate, previewIDPrefix+strconv.Itoa(position), p.now()), nil
	}

	user, err := p.store.Insert(ctx, candidate)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// another request stored this email after our lookup
		return reject(validation.MsgDuplicateInStore)
	}
	if err != nil {
		p.log.Error().Err(err).Int("row_index", rowIndex).Msg("Failed to store row")
		return reject(validation.MsgUnexpected)
	}
	seen.Add(candidate.Email)

	return user, nil
}

func normalize(row models.RawRow) *models.NewUser {
	return &models.NewUser{
		FirstName:   strings.TrimSpace(row.Get(models.FieldFirstName)),
		LastName:    strings.TrimSpace(row.Get(models.FieldLastName)),
		Email:       strings.TrimSpace(row.Get(models.FieldEmail)),
		Birthdate:   strings.TrimSpace(row.Get(models.FieldBirthdate)),
		PhoneNumber: strings.TrimSpace(row.Get(models.FieldPhoneNumber)),
	}
}

func preview(candidate *models.NewUser, id string, now time.Time) *models.User {
	return &models.User{
		ID:          id,
		FirstName:   candidate.FirstName,
		LastName:    candidate.LastName,
		Email:       candidate.Email,
		Birthdate:   candidate.Birthdate,
		PhoneNumber: candidate.PhoneNumber,
		CreatedAt:   now,
	}
}
