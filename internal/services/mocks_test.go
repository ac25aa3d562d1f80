package services_test

import (
	"context"

	"github.com/drsite/drsite-web/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockDelivery is a mock implementation of Delivery
type MockDelivery struct {
	mock.Mock
}

func (m *MockDelivery) Name() string {
	return "mock"
}

func (m *MockDelivery) Deliver(ctx context.Context, rec *models.SubmissionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// MockSubmissionRepository is a mock implementation of SubmissionRepositoryInterface
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, rec *models.SubmissionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
