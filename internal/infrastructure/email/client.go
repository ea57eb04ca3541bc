// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"

	"github.com/resendlabs/resend-go"

	"github.com/AtRiskMedia/edify/internal/infrastructure/email/templates"
	"github.com/AtRiskMedia/edify/pkg/config"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendContactEmail(msg templates.ContactEmailProps) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	toEmail   string
}

// NewService creates a new email service client, returning the Service interface.
func NewService(cfg config.ContactConfig) (Service, error) {
	if cfg.ResendAPIKey == "" {
		return nil, fmt.Errorf("contact.resend_api_key is required")
	}
	if cfg.ToEmail == "" {
		return nil, fmt.Errorf("contact.to_email is required")
	}

	return &ResendClient{
		client:    resend.NewClient(cfg.ResendAPIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		toEmail:   cfg.ToEmail,
	}, nil
}

// SendContactEmail forwards a contact submission to the site owner.
func (c *ResendClient) SendContactEmail(msg templates.ContactEmailProps) error {
	htmlContent, err := templates.GetContactEmail(msg)
	if err != nil {
		return fmt.Errorf("failed to render contact email: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{c.toEmail},
		Subject: fmt.Sprintf("Edify contact: %s", msg.Name),
		Html:    htmlContent,
		Text:    msg.Message,
	}
	if msg.Email != "" {
		params.ReplyTo = msg.Email
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send contact email via Resend: %w", err)
	}
	return nil
}
