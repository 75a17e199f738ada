package email

import (
	"context"
	"sync"
)

// MockSender is a Sender test double that records every dispatched message.
// Configure MessageID for the returned provider id and Err to simulate a
// transport failure. Safe for concurrent use.
type MockSender struct {
	mu        sync.Mutex
	sent      []Email
	MessageID string
	Err       error
}

// NewMockSender returns a mock that reports the given provider message ID.
func NewMockSender(messageID string) *MockSender {
	return &MockSender{MessageID: messageID}
}

// Send records the message and returns the configured result.
func (m *MockSender) Send(ctx context.Context, email *Email) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}

	m.mu.Lock()
	m.sent = append(m.sent, *email)
	m.mu.Unlock()

	return m.MessageID, nil
}

// Sent returns a copy of all messages dispatched so far.
func (m *MockSender) Sent() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Email, len(m.sent))
	copy(out, m.sent)
	return out
}
