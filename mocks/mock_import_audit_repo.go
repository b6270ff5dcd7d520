package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"terroir/internal/domain"
	"terroir/internal/dossier"
)

// MockImportAuditRepo is a mock implementation of port.ImportAuditRepository.
type MockImportAuditRepo struct {
	mock.Mock
}

func (m *MockImportAuditRepo) Create(ctx context.Context, entry *domain.ImportAuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockImportAuditRepo) ListByTargets(ctx context.Context, targets dossier.Targets, offset, limit int) ([]domain.ImportAuditEntry, int, error) {
	args := m.Called(ctx, targets, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ImportAuditEntry), args.Int(1), args.Error(2)
}
