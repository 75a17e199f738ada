package email

import "context"

// Email represents a fully rendered message handed to a delivery provider.
type Email struct {
	To       []string          // Recipient email addresses
	Cc       []string          // Carbon copy recipients (optional)
	Bcc      []string          // Blind carbon copy recipients (optional)
	From     string            // Sender email address
	Subject  string            // Email subject
	TextBody string            // Plain text body
	HTMLBody string            // HTML body
	Headers  map[string]string // Custom headers (optional)
}

// Sender defines the interface for delivery providers.
// Implementations can use SMTP, Postmark, or an in-memory double for tests.
type Sender interface {
	// Send dispatches an email message.
	// Returns the provider's message ID; a returned error means the
	// transport rejected the message and no delivery happened.
	Send(ctx context.Context, email *Email) (string, error)
}
