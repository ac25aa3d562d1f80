package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/drsite/drsite-web/internal/models"
	"github.com/drsite/drsite-web/pkg/logger"
	"github.com/drsite/drsite-web/pkg/metrics"
	"go.uber.org/zap"
)

// SubmissionRepository handles form submission data access
type SubmissionRepository struct {
	db Execer
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db Execer) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const insertSubmissionSQL = `
INSERT INTO form_submissions (
	id, form_id, page_id, lang, first_name, last_name, email, phone,
	message, service, subject, consent, source, submitted_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

// Create inserts a submission. Inserting the same id twice fails.
func (r *SubmissionRepository) Create(ctx context.Context, rec *models.SubmissionRecord) error {
	start := time.Now()

	tag, err := r.db.Exec(ctx, insertSubmissionSQL,
		rec.ID, rec.FormID, rec.PageID, rec.Lang,
		rec.FirstName, rec.LastName, rec.Email, rec.Phone,
		rec.Message, rec.Service, rec.Subject, rec.Consent,
		rec.Source, rec.SubmittedAt,
	)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		logger.LogAPICall("postgres", "createSubmission", "error", duration, zap.Error(err))
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	if tag.RowsAffected() != 1 {
		logger.LogAPICall("postgres", "createSubmission", "error", duration)
		return fmt.Errorf("failed to insert submission: %d rows affected", tag.RowsAffected())
	}

	logger.LogAPICall("postgres", "createSubmission", "success", duration,
		zap.String("submission_id", rec.ID),
		zap.String("form_id", rec.FormID))
	return nil
}
