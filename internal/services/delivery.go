package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/drsite/drsite-web/config"
	"github.com/drsite/drsite-web/internal/models"
	"github.com/drsite/drsite-web/internal/repository"
	"github.com/drsite/drsite-web/pkg/circuitbreaker"
	apperrors "github.com/drsite/drsite-web/pkg/errors"
	"github.com/drsite/drsite-web/pkg/httpclient"
	"github.com/drsite/drsite-web/pkg/retry"
	"github.com/sony/gobreaker"
)

// Delivery hands a submission record to its destination
type Delivery interface {
	Name() string
	Deliver(ctx context.Context, rec *models.SubmissionRecord) error
}

// NewDelivery builds the delivery selected by SUBMISSION_MODE. repo is only
// used in database mode and may be nil otherwise.
func NewDelivery(cfg *config.Config, repo repository.SubmissionRepositoryInterface, httpClient httpclient.Client) (Delivery, error) {
	switch cfg.Submission.Mode {
	case config.SubmissionSimulated:
		return SimulatedDelivery{}, nil
	case config.SubmissionEndpoint:
		return NewEndpointDelivery(cfg.Submission.EndpointURL, cfg.Submission.APIKey, httpClient), nil
	case config.SubmissionDatabase:
		if repo == nil {
			return nil, fmt.Errorf("database delivery needs a submission repository")
		}
		return &DatabaseDelivery{repo: repo}, nil
	default:
		return nil, fmt.Errorf("unsupported submission mode %q", cfg.Submission.Mode)
	}
}

// SimulatedDelivery accepts every submission without sending it anywhere.
// The busy window of the form is the only visible effect.
type SimulatedDelivery struct{}

func (SimulatedDelivery) Name() string { return config.SubmissionSimulated }

func (SimulatedDelivery) Deliver(ctx context.Context, _ *models.SubmissionRecord) error {
	return ctx.Err()
}

// DatabaseDelivery stores submissions in PostgreSQL
type DatabaseDelivery struct {
	repo repository.SubmissionRepositoryInterface
}

func (d *DatabaseDelivery) Name() string { return config.SubmissionDatabase }

func (d *DatabaseDelivery) Deliver(ctx context.Context, rec *models.SubmissionRecord) error {
	return retry.Do(ctx, retry.DefaultConfig(), "store_submission", func() error {
		return d.repo.Create(ctx, rec)
	})
}

// EndpointDelivery POSTs submissions as JSON to a configured URL, behind a
// circuit breaker. 4xx answers are final, everything else is retried.
type EndpointDelivery struct {
	url        string
	apiKey     string
	httpClient httpclient.Client
	breaker    *gobreaker.CircuitBreaker
	retry      retry.Config
}

// NewEndpointDelivery creates an endpoint delivery
func NewEndpointDelivery(url, apiKey string, httpClient httpclient.Client) *EndpointDelivery {
	cbCfg := circuitbreaker.DefaultConfig("submission_endpoint")
	cbCfg.IsSuccessful = func(err error) bool {
		// A rejected payload says nothing about the health of the endpoint.
		return err == nil || !retry.IsRetryable(err)
	}
	return &EndpointDelivery{
		url:        url,
		apiKey:     apiKey,
		httpClient: httpClient,
		breaker:    circuitbreaker.NewCircuitBreaker(cbCfg),
		retry:      retry.EndpointConfig(),
	}
}

func (d *EndpointDelivery) Name() string { return config.SubmissionEndpoint }

func (d *EndpointDelivery) Deliver(ctx context.Context, rec *models.SubmissionRecord) error {
	return retry.Do(ctx, d.retry, "post_submission", func() error {
		_, err := circuitbreaker.Execute(d.breaker, func() (struct{}, error) {
			return struct{}{}, d.post(ctx, rec)
		})
		if apperrors.Is(err, apperrors.ErrUnavailable) && circuitbreaker.IsCircuitOpen(d.breaker) {
			return retry.Permanent(err)
		}
		return err
	})
}

func (d *EndpointDelivery) post(ctx context.Context, rec *models.SubmissionRecord) error {
	headers := map[string]string{}
	if d.apiKey != "" {
		headers["Authorization"] = "Bearer " + d.apiKey
	}

	resp, err := httpclient.PostJSON(ctx, d.httpClient, d.url, rec, headers)
	if err != nil {
		return fmt.Errorf("failed to post submission: %w", err)
	}
	defer httpclient.Drain(resp)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck
	err = fmt.Errorf("submission endpoint returned %d: %s", resp.StatusCode, string(body))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return retry.Permanent(err)
	}
	return err
}
