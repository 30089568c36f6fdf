package mailer

import (
	"context"
	"fmt"
	"sort"

	"github.com/resend/resend-go/v2"
)

// ResendProvider sends emails via the Resend API.
type ResendProvider struct {
	client *resend.Client
}

// NewResendProvider creates a new Resend provider with the given API key.
func NewResendProvider(apiKey string) *ResendProvider {
	return &ResendProvider{
		client: resend.NewClient(apiKey),
	}
}

func (r *ResendProvider) Name() string {
	return "resend"
}

// Send sends an email via the Resend API.
func (r *ResendProvider) Send(ctx context.Context, msg Message) (SendResult, error) {
	sent, err := r.client.Emails.SendWithContext(ctx, resendRequest(msg))
	if err != nil {
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}
	return SendResult{ProviderMessageID: sent.Id}, nil
}

func resendRequest(msg Message) *resend.SendEmailRequest {
	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	}
	if len(msg.Tags) > 0 {
		names := make([]string, 0, len(msg.Tags))
		for name := range msg.Tags {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			params.Tags = append(params.Tags, resend.Tag{Name: name, Value: msg.Tags[name]})
		}
	}
	return params
}
