package repository

import (
	"context"

	"github.com/drsite/drsite-web/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the part of a pgx pool the repository needs
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SubmissionRepositoryInterface stores form submissions
type SubmissionRepositoryInterface interface {
	Create(ctx context.Context, rec *models.SubmissionRecord) error
}
