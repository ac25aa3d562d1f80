package services

import (
	"context"
	"time"

	"github.com/drsite/drsite-web/config"
	"github.com/drsite/drsite-web/internal/forms"
	"github.com/drsite/drsite-web/internal/models"
	apperrors "github.com/drsite/drsite-web/pkg/errors"
	"github.com/drsite/drsite-web/pkg/httpclient"
	"github.com/drsite/drsite-web/pkg/logger"
	"github.com/drsite/drsite-web/pkg/metrics"
	"github.com/drsite/drsite-web/pkg/recaptcha"
	"github.com/drsite/drsite-web/pkg/sanitize"
	"github.com/drsite/drsite-web/pkg/tracing"
	"github.com/drsite/drsite-web/pkg/trigger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SubmissionService delivers valid form submissions. It is the Submitter of
// every form bound on a page and also serves the JSON submissions API.
type SubmissionService struct {
	config            *config.Config
	delivery          Delivery
	httpClient        httpclient.Client
	recaptchaVerifier *recaptcha.Verifier
}

var _ forms.Submitter = (*SubmissionService)(nil)

// NewSubmissionService creates a new submission service instance
func NewSubmissionService(cfg *config.Config, delivery Delivery, httpClient httpclient.Client) *SubmissionService {
	s := &SubmissionService{
		config:     cfg,
		delivery:   delivery,
		httpClient: httpClient,
	}
	if cfg.CaptchaEnabled() {
		s.recaptchaVerifier = recaptcha.NewVerifier(cfg.ReCAPTCHA.SecretKey, cfg.ReCAPTCHA.MinScore, httpClient)
	}
	return s
}

// WithVerifier replaces the reCAPTCHA verifier
func (s *SubmissionService) WithVerifier(v *recaptcha.Verifier) *SubmissionService {
	s.recaptchaVerifier = v
	return s
}

// Submit delivers a submission coming from a form on a page.
func (s *SubmissionService) Submit(ctx context.Context, sub *forms.Submission) error {
	values := sanitize.Map(sub.Values)
	rec := &models.SubmissionRecord{
		FormID:      sub.FormID,
		PageID:      sub.PageID,
		Lang:        sub.Lang,
		FirstName:   values[forms.FirstName],
		LastName:    values[forms.LastName],
		Email:       values[forms.Email],
		Phone:       values[forms.Phone],
		Message:     values[forms.Message],
		Service:     values[forms.Service],
		Subject:     values[forms.Subject],
		Consent:     sub.Consent,
		Source:      models.SourcePage,
		SubmittedAt: sub.SubmittedAt,
	}
	_, err := s.deliver(ctx, rec)
	return err
}

// SubmitRequest delivers a submission posted to the JSON API. The request
// must already be bound and validated.
func (s *SubmissionService) SubmitRequest(ctx context.Context, req *models.SubmissionRequest, remoteIP string) (*models.SubmissionResponse, error) {
	if s.recaptchaVerifier != nil {
		if err := s.recaptchaVerifier.Verify(ctx, req.RecaptchaToken, remoteIP); err != nil {
			metrics.FormSubmissions.WithLabelValues(req.FormID, "captcha_failed").Inc()
			logger.Warn("ReCAPTCHA verification failed", zap.String("form_id", req.FormID), zap.Error(err))
			return nil, err
		}
	}

	lang := req.Lang
	if lang == "" {
		lang = s.config.Site.Lang
	}
	rec := &models.SubmissionRecord{
		FormID:      req.FormID,
		Lang:        lang,
		FirstName:   sanitize.Text(req.FirstName),
		LastName:    sanitize.Text(req.LastName),
		Email:       sanitize.Text(req.Email),
		Phone:       sanitize.Text(req.Phone),
		Message:     sanitize.Text(req.Message),
		Service:     sanitize.Text(req.Service),
		Subject:     sanitize.Text(req.Subject),
		Consent:     req.Privacy,
		Source:      models.SourceAPI,
		SubmittedAt: time.Now().UTC(),
	}

	id, err := s.deliver(ctx, rec)
	if err != nil {
		metrics.FormSubmissions.WithLabelValues(req.FormID, "error").Inc()
		return nil, err
	}

	metrics.FormSubmissions.WithLabelValues(req.FormID, "success").Inc()
	return &models.SubmissionResponse{Success: true, SubmissionID: id}, nil
}

func (s *SubmissionService) deliver(ctx context.Context, rec *models.SubmissionRecord) (string, error) {
	rec.ID = uuid.NewString()
	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = time.Now().UTC()
	}

	ctx, span := tracing.StartSpan(ctx, "submission.deliver",
		attribute.String("submission.id", rec.ID),
		attribute.String("submission.form_id", rec.FormID),
		attribute.String("submission.delivery", s.delivery.Name()),
	)

	start := time.Now()
	err := s.delivery.Deliver(ctx, rec)
	duration := metrics.MeasureDuration(start)
	tracing.EndSpan(span, err)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SubmitterRequestDuration.WithLabelValues(s.delivery.Name(), status).Observe(duration)
	metrics.SubmitterRequestTotal.WithLabelValues(s.delivery.Name(), status).Inc()
	logger.LogAPICall(s.delivery.Name(), "deliverSubmission", status, duration,
		zap.String("submission_id", rec.ID),
		zap.String("form_id", rec.FormID),
		zap.String("source", rec.Source))

	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		if apperrors.Is(err, apperrors.ErrUnavailable) {
			return "", err
		}
		return "", apperrors.UnavailableError("submission "+s.delivery.Name(), err)
	}

	// Notify downstream automation (non-blocking)
	trigger.CallAsync(s.config.EventTriggers.SubmissionCreatedTriggerURL, rec.ID, s.httpClient)

	return rec.ID, nil
}
