package ses

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/dspinellis/ai-repo-feedback/internal/email"
)

// mockSESClient implements SendEmailAPI for testing.
type mockSESClient struct {
	sendFn    func(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
	callCount int
	lastInput *sesv2.SendEmailInput
}

func (m *mockSESClient) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.callCount++
	m.lastInput = params
	if m.sendFn != nil {
		return m.sendFn(ctx, params, optFns...)
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("test-message-id")}, nil
}

func TestName(t *testing.T) {
	t.Parallel()
	p := NewWithClient(&mockSESClient{})
	if got := p.Name(); got != "ses" {
		t.Errorf("Name(): got %q, want %q", got, "ses")
	}
}

func TestSend_SimpleTextEmail(t *testing.T) {
	t.Parallel()

	mock := &mockSESClient{}
	p := NewWithClient(mock)

	msg := &email.Message{
		FromEmail:   "sender@example.com",
		ToEmail:     "to@example.com",
		CcEmails:    []string{"cc@example.com"},
		Subject:     "Test Subject",
		ContentType: "plain",
		Body:        "Hello, World!",
	}

	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.callCount != 1 {
		t.Fatalf("SendEmail calls: got %d, want 1", mock.callCount)
	}

	input := mock.lastInput
	if input.Content.Simple == nil {
		t.Fatal("expected simple content for body-only message")
	}
	if got := aws.ToString(input.FromEmailAddress); got != "sender@example.com" {
		t.Errorf("FromEmailAddress: got %q, want %q", got, "sender@example.com")
	}
	if got := aws.ToString(input.Content.Simple.Subject.Data); got != "Test Subject" {
		t.Errorf("Subject: got %q, want %q", got, "Test Subject")
	}
	if input.Content.Simple.Body.Text == nil {
		t.Fatal("expected a text body")
	}
	if got := aws.ToString(input.Content.Simple.Body.Text.Data); got != "Hello, World!" {
		t.Errorf("Body: got %q, want %q", got, "Hello, World!")
	}
	if input.Content.Simple.Body.Html != nil {
		t.Error("unexpected HTML body for plain content type")
	}
	if len(input.Destination.ToAddresses) != 1 || input.Destination.ToAddresses[0] != "to@example.com" {
		t.Errorf("ToAddresses: got %v", input.Destination.ToAddresses)
	}
	if len(input.Destination.CcAddresses) != 1 || input.Destination.CcAddresses[0] != "cc@example.com" {
		t.Errorf("CcAddresses: got %v", input.Destination.CcAddresses)
	}
}

func TestSend_HTMLBody(t *testing.T) {
	t.Parallel()

	mock := &mockSESClient{}
	p := NewWithClient(mock)

	msg := &email.Message{
		FromEmail:   "sender@example.com",
		ToEmail:     "to@example.com",
		Subject:     "HTML",
		ContentType: "html",
		Body:        "<p>hi</p>",
	}

	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := mock.lastInput.Content.Simple.Body
	if body.Html == nil {
		t.Fatal("expected an HTML body")
	}
	if got := aws.ToString(body.Html.Data); got != "<p>hi</p>" {
		t.Errorf("HTML body: got %q, want %q", got, "<p>hi</p>")
	}
	if body.Text != nil {
		t.Error("unexpected text body for html content type")
	}
}

func TestSend_AttachmentsUseRawMessage(t *testing.T) {
	t.Parallel()

	mock := &mockSESClient{}
	p := NewWithClient(mock)

	msg := &email.Message{
		FromEmail: "sender@example.com",
		ToEmail:   "to@example.com",
		Subject:   "With Attachment",
		Body:      "see attached",
		Attachments: []email.Attachment{
			{Filename: "file.bin", Content: []byte{1, 2, 3}},
		},
	}

	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := mock.lastInput
	if input.Content.Raw == nil {
		t.Fatal("expected raw content for message with attachments")
	}
	raw := string(input.Content.Raw.Data)
	if !strings.Contains(raw, "multipart/mixed") {
		t.Error("raw message is not multipart/mixed")
	}
	if !strings.Contains(raw, "filename=file.bin") {
		t.Error("raw message does not carry the attachment disposition")
	}
}

func TestSend_SingleAttemptOnError(t *testing.T) {
	t.Parallel()

	mock := &mockSESClient{
		sendFn: func(context.Context, *sesv2.SendEmailInput, ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}
	p := NewWithClient(mock)

	msg := &email.Message{
		FromEmail: "sender@example.com",
		ToEmail:   "to@example.com",
		Subject:   "S",
		Body:      "b",
	}

	err := p.Send(context.Background(), msg)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if mock.callCount != 1 {
		t.Errorf("SendEmail calls: got %d, want exactly 1 (no retry)", mock.callCount)
	}
}
