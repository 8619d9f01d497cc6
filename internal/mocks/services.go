package mocks

import (
	"context"
	"net/http"

	"github.com/user-import-api/internal/models"
	"github.com/user-import-api/internal/service"
)

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	UploadFunc   func(ctx context.Context, data []byte, dryRun bool) (*models.ImportResult, error)
	ValidateFunc func(ctx context.Context, row models.RawRow) *models.ValidateResponse
	SaveFunc     func(ctx context.Context, row models.RawRow) (*models.User, error)
	Uploads      [][]byte
	DryRuns      []bool
	Validated    []models.RawRow
	Saved        []models.RawRow
}

// Verify interface compliance
var _ service.ImportService = (*MockImportService)(nil)

func NewMockImportService() *MockImportService {
	return &MockImportService{}
}

func (m *MockImportService) UploadCSV(ctx context.Context, data []byte, dryRun bool) (*models.ImportResult, error) {
	m.Uploads = append(m.Uploads, data)
	m.DryRuns = append(m.DryRuns, dryRun)
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, data, dryRun)
	}
	return &models.ImportResult{
		Accepted: []*models.User{},
		Rejected: []*models.RejectedRow{},
	}, nil
}

func (m *MockImportService) ValidateUser(ctx context.Context, row models.RawRow) *models.ValidateResponse {
	m.Validated = append(m.Validated, row)
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, row)
	}
	return &models.ValidateResponse{Valid: true}
}

func (m *MockImportService) SaveValidated(ctx context.Context, row models.RawRow) (*models.User, error) {
	m.Saved = append(m.Saved, row)
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, row)
	}
	return &models.User{ID: "saved-user"}, nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamUsersFunc func(ctx context.Context, w http.ResponseWriter, format models.ExportFormat) error
	Users           []*models.User
	CSV             string
	Count           int
	Formats         []models.ExportFormat
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{}
}

func (m *MockExportService) ExportCSV(ctx context.Context) (string, error) {
	return m.CSV, nil
}

func (m *MockExportService) StreamUsers(ctx context.Context, w http.ResponseWriter, format models.ExportFormat) error {
	m.Formats = append(m.Formats, format)
	if m.StreamUsersFunc != nil {
		return m.StreamUsersFunc(ctx, w, format)
	}
	return nil
}

func (m *MockExportService) ListUsers(ctx context.Context) ([]*models.User, error) {
	if m.Users == nil {
		return []*models.User{}, nil
	}
	return m.Users, nil
}

func (m *MockExportService) GetCount(ctx context.Context) (int, error) {
	return m.Count, nil
}
