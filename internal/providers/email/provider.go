package email

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by Send when no SMTP relay is set up.
var ErrNotConfigured = errors.New("email_not_configured")

// Message is a rendered HTML email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

type Provider interface {
	Send(ctx context.Context, msg Message) error
	SendTemplate(ctx context.Context, to []string, subject, templateName string, data any) error
	Enabled() bool
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, msg Message) error {
	return ErrNotConfigured
}

func (p *NoOpProvider) SendTemplate(ctx context.Context, to []string, subject, templateName string, data any) error {
	return ErrNotConfigured
}

func (p *NoOpProvider) Enabled() bool { return false }
