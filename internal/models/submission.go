package models

import "time"

// Submission sources
const (
	SourcePage = "page"
	SourceAPI  = "api"
)

// SubmissionRequest is a form submission posted as JSON to the submissions API.
// The field rules mirror the ones applied to forms rendered on the site.
// FormID comes from the request path.
type SubmissionRequest struct {
	FormID         string `json:"-"`
	FirstName      string `json:"firstName" binding:"required,personname"`
	LastName       string `json:"lastName" binding:"required,personname"`
	Email          string `json:"email" binding:"required,looseemail"`
	Phone          string `json:"phone" binding:"omitempty,phonenumber"`
	Message        string `json:"message" binding:"omitempty,formmessage"`
	Service        string `json:"service" binding:"omitempty,max=100"`
	Subject        string `json:"subject" binding:"omitempty,max=100"`
	Privacy        bool   `json:"privacy" binding:"required"`
	Lang           string `json:"lang" binding:"omitempty,oneof=nl en"`
	RecaptchaToken string `json:"recaptchaToken"`
}

// SubmissionResponse is returned by the submissions API
type SubmissionResponse struct {
	Success      bool   `json:"success"`
	SubmissionID string `json:"submissionId,omitempty"`
	Error        string `json:"error,omitempty"`
}

// SubmissionRecord is a stored or forwarded form submission
type SubmissionRecord struct {
	ID          string    `json:"id"`
	FormID      string    `json:"formId"`
	PageID      string    `json:"pageId,omitempty"`
	Lang        string    `json:"lang"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Message     string    `json:"message,omitempty"`
	Service     string    `json:"service,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	Consent     bool      `json:"consent"`
	Source      string    `json:"source"`
	SubmittedAt time.Time `json:"submittedAt"`
}
