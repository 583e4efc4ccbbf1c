// Package webhook verifies Svix-signed deliveries such as the identity
// provider's user lifecycle events.
package webhook

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	svix "github.com/svix/svix-webhooks/go"
)

const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

var (
	ErrMissingHeaders   = errors.New("missing svix headers")
	ErrInvalidSignature = errors.New("invalid svix signature")
)

// Verifier checks svix signatures against a shared secret. The svix library
// enforces its own five minute timestamp tolerance.
type Verifier struct {
	wh *svix.Webhook
}

// NewVerifier accepts the secret as issued ("whsec_<base64>") or raw base64.
func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("webhook secret is empty")
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("decode webhook secret: %w", err)
	}
	return &Verifier{wh: wh}, nil
}

// Verify validates body against the svix headers.
func (v *Verifier) Verify(body []byte, headers http.Header) error {
	if strings.TrimSpace(headers.Get(HeaderID)) == "" ||
		strings.TrimSpace(headers.Get(HeaderTimestamp)) == "" ||
		strings.TrimSpace(headers.Get(HeaderSignature)) == "" {
		return ErrMissingHeaders
	}
	if err := v.wh.Verify(body, headers); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}
