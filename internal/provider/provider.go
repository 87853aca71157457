// Package provider defines the interface for email delivery backends.
package provider

import (
	"context"

	"github.com/dspinellis/ai-repo-feedback/internal/email"
)

// Provider is the interface that email delivery backends must implement.
// Each provider performs exactly one delivery attempt for the composed
// message; retry policy is deliberately left to the caller, and the
// single-shot CLI does not implement one.
type Provider interface {
	// Send delivers an email message through this provider.
	// It returns an error if the delivery fails.
	Send(ctx context.Context, msg *email.Message) error

	// Name returns the human-readable name of this provider.
	Name() string
}
