package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"terroir/internal/port"
)

// MockDossierAssistant is a mock implementation of port.DossierAssistant.
type MockDossierAssistant struct {
	mock.Mock
}

func (m *MockDossierAssistant) Draft(ctx context.Context, input port.DraftInput) (*port.DraftOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.DraftOutput), args.Error(1)
}
