// Package mailer sends the console's outbound notification email.
package mailer

import (
	"context"
	"errors"
	"strings"
)

// ErrNoRecipients is returned when a message has no usable To address.
var ErrNoRecipients = errors.New("mailer: message has no recipients")

// Message represents an email to send.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
	// Tags are provider-side labels, e.g. {"kind": "flood_report"}.
	Tags map[string]string
}

// SendResult contains the response from the provider.
type SendResult struct {
	ProviderMessageID string
}

// Provider sends emails via a specific backend.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) (SendResult, error)
}

// Mailer is the top-level entry point for sending emails.
type Mailer struct {
	provider    Provider
	fromAddress string
}

// New creates a new Mailer with the given provider and default sender address.
func New(provider Provider, fromAddress string) *Mailer {
	return &Mailer{
		provider:    provider,
		fromAddress: fromAddress,
	}
}

// Send sends an email message via the configured provider.
// If msg.From is empty, the default fromAddress is used. Blank recipients
// are dropped before the provider is called.
func (m *Mailer) Send(ctx context.Context, msg Message) (SendResult, error) {
	if msg.From == "" {
		msg.From = m.fromAddress
	}
	msg.To = cleanRecipients(msg.To)
	if len(msg.To) == 0 {
		return SendResult{}, ErrNoRecipients
	}
	return m.provider.Send(ctx, msg)
}

// ProviderName returns the name of the configured provider.
func (m *Mailer) ProviderName() string {
	return m.provider.Name()
}

// ParseRecipients splits a comma separated address list.
func ParseRecipients(raw string) []string {
	return cleanRecipients(strings.Split(raw, ","))
}

func cleanRecipients(addresses []string) []string {
	cleaned := make([]string, 0, len(addresses))
	seen := make(map[string]struct{}, len(addresses))
	for _, address := range addresses {
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}
		key := strings.ToLower(address)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, address)
	}
	return cleaned
}
