package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/user-import-api/internal/csvcodec"
	"github.com/user-import-api/internal/models"
	"github.com/user-import-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

const (
	exportFilename = "users"
	xlsxSheet      = "Sheet1"
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	store repository.UserRepository
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(store repository.UserRepository, log zerolog.Logger) *exportService {
	return &exportService{
		store: store,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// ExportCSV returns every stored user as CSV text in store order.
// It is the non-streaming entry point; GET /export streams through StreamUsers,
// which writes the same bytes row by row via csvcodec.UserWriter.
func (s *exportService) ExportCSV(ctx context.Context) (string, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list users: %w", err)
	}
	return csvcodec.Serialize(users)
}

// ListUsers returns every stored user in store order
func (s *exportService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// GetCount returns the number of stored users
func (s *exportService) GetCount(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// StreamUsers writes all users to w as an attachment in the given format
func (s *exportService) StreamUsers(ctx context.Context, w http.ResponseWriter, format models.ExportFormat) error {
	s.log.Info().Str("format", string(format)).Msg("Starting users export")

	switch format {
	case models.ExportFormatCSV:
		return s.streamUsersCSV(ctx, w)
	case models.ExportFormatJSON:
		return s.streamUsersJSON(ctx, w)
	case models.ExportFormatNDJSON:
		return s.streamUsersNDJSON(ctx, w)
	case models.ExportFormatXLSX:
		return s.writeUsersXLSX(ctx, w)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func setAttachment(w http.ResponseWriter, contentType string, format models.ExportFormat) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename+"."+string(format)))
}

func (s *exportService) streamUsersCSV(ctx context.Context, w http.ResponseWriter) error {
	setAttachment(w, "text/csv", models.ExportFormatCSV)

	writer := csvcodec.NewUserWriter(w)
	count := 0
	err := s.store.StreamAll(ctx, func(user *models.User) error {
		count++
		return writer.Write(user)
	})
	if err != nil {
		return err
	}

	s.log.Info().Int("count", count).Msg("Users export completed")
	return writer.Flush()
}

func (s *exportService) streamUsersNDJSON(ctx context.Context, w http.ResponseWriter) error {
	setAttachment(w, "application/x-ndjson", models.ExportFormatNDJSON)

	flusher, _ := w.(http.Flusher)
	count := 0

	err := s.store.StreamAll(ctx, func(user *models.User) error {
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	s.log.Info().Int("count", count).Msg("Users export completed")
	return err
}

func (s *exportService) streamUsersJSON(ctx context.Context, w http.ResponseWriter) error {
	setAttachment(w, "application/json", models.ExportFormatJSON)

	w.Write([]byte("["))
	first := true

	err := s.store.StreamAll(ctx, func(user *models.User) error {
		if !first {
			w.Write([]byte(","))
		}
		first = false

		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		w.Write(data)
		return nil
	})

	w.Write([]byte("]"))
	return err
}

// writeUsersXLSX builds the workbook in memory; the archive format cannot be streamed row by row
func (s *exportService) writeUsersXLSX(ctx context.Context, w http.ResponseWriter) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet writer: %w", err)
	}

	header := make([]interface{}, len(models.ExportFields))
	for i, field := range models.ExportFields {
		header[i] = field
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	rowNum := 1
	err = s.store.StreamAll(ctx, func(user *models.User) error {
		rowNum++
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		values := user.Values()
		row := make([]interface{}, len(values))
		for i, v := range values {
			row[i] = v
		}
		return sw.SetRow(cell, row)
	})
	if err != nil {
		return err
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	setAttachment(w, xlsxMIME, models.ExportFormatXLSX)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.log.Info().Int("count", rowNum-1).Msg("Users export completed")
	return nil
}
