package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"terroir/internal/domain"
	"terroir/internal/dossier"
	"terroir/internal/importer"
	"terroir/internal/service"
	"terroir/internal/validator"
)

// MockImportService is a mock implementation of service.ImportService.
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) Sanitize(raw string) *service.SanitizeResult {
	args := m.Called(raw)
	return args.Get(0).(*service.SanitizeResult)
}

func (m *MockImportService) Preview(ctx context.Context, input *service.PreviewInput) (*importer.Preview, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importer.Preview), args.Error(1)
}

func (m *MockImportService) Commit(ctx context.Context, input *service.CommitInput) (*service.CommitResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CommitResult), args.Error(1)
}

func (m *MockImportService) Draft(ctx context.Context, input *service.DraftInput) (*service.DraftResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DraftResult), args.Error(1)
}

func (m *MockImportService) Rules() []validator.RuleInfo {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]validator.RuleInfo)
}

func (m *MockImportService) Get(ctx context.Context, targets dossier.Targets) (*domain.DossierRecord, error) {
	args := m.Called(ctx, targets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DossierRecord), args.Error(1)
}

func (m *MockImportService) History(ctx context.Context, targets dossier.Targets, offset, limit int) ([]domain.ImportAuditEntry, int, error) {
	args := m.Called(ctx, targets, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ImportAuditEntry), args.Int(1), args.Error(2)
}
