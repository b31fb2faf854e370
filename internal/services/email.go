package services

import (
	"context"
	"fmt"

	"afisha/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendEventPublished sends the publication notice using the "event_published" template.
func (s *emailService) SendEventPublished(ctx context.Context, data *domain.EventPublishedEmailData) error {
	if data == nil {
		return fmt.Errorf("event published data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("event_published", data)
	if err != nil {
		return fmt.Errorf("failed to render event_published template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send publication notice: %w", err)
	}
	return nil
}

// SendRequestConfirmed sends the admission notice using the "request_confirmed" template.
func (s *emailService) SendRequestConfirmed(ctx context.Context, data *domain.RequestConfirmedEmailData) error {
	if data == nil {
		return fmt.Errorf("request confirmed data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("request_confirmed", data)
	if err != nil {
		return fmt.Errorf("failed to render request_confirmed template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send admission notice: %w", err)
	}
	return nil
}
