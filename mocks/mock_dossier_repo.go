package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"terroir/internal/domain"
	"terroir/internal/dossier"
)

// MockDossierRepo is a mock implementation of port.DossierRepository.
type MockDossierRepo struct {
	mock.Mock
}

func (m *MockDossierRepo) Save(ctx context.Context, targets dossier.Targets, doc *dossier.ImportDocument, scores domain.Scores) (*domain.DossierRecord, error) {
	args := m.Called(ctx, targets, doc, scores)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DossierRecord), args.Error(1)
}

func (m *MockDossierRepo) GetByTargets(ctx context.Context, targets dossier.Targets) (*domain.DossierRecord, error) {
	args := m.Called(ctx, targets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DossierRecord), args.Error(1)
}
