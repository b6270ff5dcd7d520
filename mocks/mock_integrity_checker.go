package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"terroir/internal/dossier"
)

// MockIntegrityChecker is a mock implementation of port.IntegrityChecker.
type MockIntegrityChecker struct {
	mock.Mock
}

func (m *MockIntegrityChecker) Check(ctx context.Context, targets dossier.Targets) error {
	args := m.Called(ctx, targets)
	return args.Error(0)
}
