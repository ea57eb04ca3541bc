package services

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/AtRiskMedia/edify/internal/infrastructure/email"
	"github.com/AtRiskMedia/edify/internal/infrastructure/email/templates"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/edify/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/edify/internal/infrastructure/security"
)

// ContactRequest is what the contact form posts.
type ContactRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Message string `json:"message" form:"message"`
}

// ContactSubmission is the accepted, normalized submission.
type ContactSubmission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
	Delivered   bool      `json:"delivered"`
	Simulated   bool      `json:"simulated"`
}

// ContactService validates contact messages and hands them to the mailer.
// Without a mailer, submissions are logged and reported as simulated.
type ContactService struct {
	mailer      email.Service
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	now         func() time.Time
}

// NewContactService creates a contact service. mailer may be nil.
func NewContactService(mailer email.Service, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ContactService {
	return &ContactService{mailer: mailer, logger: logger, perfTracker: perfTracker, now: time.Now}
}

// Submit validates and delivers a message.
func (s *ContactService) Submit(req ContactRequest) (*ContactSubmission, error) {
	marker := s.perfTracker.StartOperation("contact:submit")
	defer s.perfTracker.CompleteOperation(marker)

	submission := &ContactSubmission{
		ID:          security.GenerateULID(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Message:     strings.TrimSpace(req.Message),
		SubmittedAt: s.now().UTC(),
	}
	if submission.Message == "" {
		marker.SetError(ErrMessageRequired)
		return nil, ErrMessageRequired
	}
	if submission.Email != "" {
		if _, err := mail.ParseAddress(submission.Email); err != nil {
			marker.SetError(ErrInvalidEmail)
			return nil, fmt.Errorf("%w: %s", ErrInvalidEmail, submission.Email)
		}
	}
	if submission.Name == "" {
		submission.Name = "Anonymous"
	}

	if s.mailer == nil {
		submission.Simulated = true
		s.logger.Contact().Info("Contact message received (delivery simulated)",
			"id", submission.ID,
			"name", submission.Name,
			"hasEmail", submission.Email != "",
			"length", len(submission.Message))
		return submission, nil
	}

	err := s.mailer.SendContactEmail(templates.ContactEmailProps{
		ID:          submission.ID,
		Name:        submission.Name,
		Email:       submission.Email,
		Message:     submission.Message,
		SubmittedAt: submission.SubmittedAt,
	})
	if err != nil {
		marker.SetError(err)
		s.logger.LogError(logging.ChannelContact, "send", err, map[string]any{"id": submission.ID})
		return nil, fmt.Errorf("failed to deliver contact message: %w", err)
	}

	submission.Delivered = true
	s.logger.Contact().Info("Contact message delivered", "id", submission.ID)
	return submission, nil
}
