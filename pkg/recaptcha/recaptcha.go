package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/drsite/drsite-web/pkg/errors"
	"github.com/drsite/drsite-web/pkg/httpclient"
)

// DefaultVerifyURL is Google's verification endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Response represents the response from Google's reCAPTCHA verification API
type Response struct {
	Success     bool     `json:"success"`
	Score       float64  `json:"score"`
	Action      string   `json:"action"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verifier handles reCAPTCHA verification
type Verifier struct {
	secretKey  string
	minScore   float64
	verifyURL  string
	httpClient httpclient.Client
}

// NewVerifier creates a reCAPTCHA verifier. minScore only applies to v3
// tokens, which report a score.
func NewVerifier(secretKey string, minScore float64, httpClient httpclient.Client) *Verifier {
	return &Verifier{
		secretKey:  secretKey,
		minScore:   minScore,
		verifyURL:  DefaultVerifyURL,
		httpClient: httpClient,
	}
}

// WithVerifyURL points the verifier at another endpoint.
func (v *Verifier) WithVerifyURL(u string) *Verifier {
	v.verifyURL = u
	return v
}

// Verify checks a token. An empty or rejected token is invalid input; a
// failed call to the verification service is reported as unavailable.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.InvalidInputError("recaptchaToken", "missing")
	}

	data := url.Values{}
	data.Set("secret", v.secretKey)
	data.Set("response", token)
	if remoteIP != "" {
		data.Set("remoteip", remoteIP)
	}

	resp, err := httpclient.PostForm(ctx, v.httpClient, v.verifyURL, data)
	if err != nil {
		return apperrors.UnavailableError("recaptcha", err)
	}
	defer httpclient.Drain(resp)

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return apperrors.UnavailableError("recaptcha", fmt.Errorf("failed to decode response: %w", err))
	}

	if !result.Success {
		return apperrors.InvalidInputError("recaptchaToken", "verification failed: "+strings.Join(result.ErrorCodes, ","))
	}
	if result.Score > 0 && result.Score < v.minScore {
		return apperrors.InvalidInputError("recaptchaToken", fmt.Sprintf("score %.2f below threshold", result.Score))
	}

	return nil
}
