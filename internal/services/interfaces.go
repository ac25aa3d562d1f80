package services

import (
	"context"

	"github.com/drsite/drsite-web/internal/models"
)

// SubmissionServiceInterface defines the submissions API operations
type SubmissionServiceInterface interface {
	SubmitRequest(ctx context.Context, req *models.SubmissionRequest, remoteIP string) (*models.SubmissionResponse, error)
}

