package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EventPublishedEmailData holds data for the publication notice sent to the
// event initiator.
type EventPublishedEmailData struct {
	Email         string
	InitiatorName string
	EventTitle    string
	EventDate     string
}

// RequestConfirmedEmailData holds data for the admission notice sent to a
// requester whose seat was confirmed.
type RequestConfirmedEmailData struct {
	Email      string
	Name       string
	EventTitle string
}

// EmailService sends domain-level notification emails. Delivery is
// best-effort: failures are logged by callers and never abort the operation
// that triggered them.
type EmailService interface {
	SendEventPublished(ctx context.Context, data *EventPublishedEmailData) error
	SendRequestConfirmed(ctx context.Context, data *RequestConfirmedEmailData) error
}
