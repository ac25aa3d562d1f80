package trigger

import (
	"context"
	"net/url"
	"time"

	"github.com/drsite/drsite-web/pkg/httpclient"
	"github.com/drsite/drsite-web/pkg/logger"
	"go.uber.org/zap"
)

const callTimeout = 10 * time.Second

// CallAsync calls triggerURL with the submission id appended, in the
// background. It is used to notify downstream automation about a new
// submission. Failures are logged and never reach the caller.
// The returned channel is closed once the call has finished.
func CallAsync(triggerURL, submissionID string, httpClient httpclient.Client) <-chan struct{} {
	done := make(chan struct{})
	if triggerURL == "" {
		close(done)
		return done
	}

	go func() {
		defer close(done)

		targetURL := triggerURL + url.QueryEscape(submissionID)

		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		logger.Debug("Calling trigger URL",
			zap.String("url", targetURL),
			zap.String("submission_id", submissionID))

		resp, err := httpclient.Get(ctx, httpClient, targetURL)
		if err != nil {
			logger.Error("Failed to call trigger URL",
				zap.Error(err),
				zap.String("url", targetURL),
				zap.String("submission_id", submissionID))
			return
		}
		defer httpclient.Drain(resp)

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("Trigger URL called successfully",
				zap.String("url", targetURL),
				zap.String("submission_id", submissionID),
				zap.Int("status_code", resp.StatusCode))
		} else {
			logger.Warn("Trigger URL returned non-success status",
				zap.String("url", targetURL),
				zap.String("submission_id", submissionID),
				zap.Int("status_code", resp.StatusCode))
		}
	}()

	return done
}
