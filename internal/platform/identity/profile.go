package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkuser "github.com/clerk/clerk-sdk-go/v2/user"

	"github.com/quildacademy/quild-backend/internal/platform/httpx"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

var ErrProviderUnavailable = errors.New("identity provider unavailable")

// Profile is the subset of the provider's user record mirrored locally.
type Profile struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
	ImageURL   string
}

type EmailAddress struct {
	EmailAddress string `json:"email_address"`
}

// UserPayload is the provider's user object as delivered in webhook event data.
type UserPayload struct {
	ID             string         `json:"id"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	ImageURL       string         `json:"image_url"`
}

func (p UserPayload) Profile() Profile {
	out := Profile{
		ExternalID: strings.TrimSpace(p.ID),
		FirstName:  strings.TrimSpace(p.FirstName),
		LastName:   strings.TrimSpace(p.LastName),
		ImageURL:   strings.TrimSpace(p.ImageURL),
	}
	if len(p.EmailAddresses) > 0 {
		out.Email = strings.TrimSpace(p.EmailAddresses[0].EmailAddress)
	}
	return out
}

// ProfileFetcher looks up a user profile at the identity provider.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, externalID string) (*Profile, error)
}

type ClientConfig struct {
	// BaseURL overrides the SDK's default API root.
	BaseURL    string
	SecretKey  string
	Timeout    time.Duration
	Attempts   int
	HTTPClient *http.Client
}

type client struct {
	log      *logger.Logger
	users    *clerkuser.Client
	attempts int
}

func NewClient(log *logger.Logger, cfg ClientConfig) (ProfileFetcher, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, fmt.Errorf("identity provider secret key required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	backend := clerk.BackendConfig{
		HTTPClient: hc,
		Key:        clerk.String(secret),
	}
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		backend.URL = clerk.String(base)
	}
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	return &client{
		log:      log.With("client", "IdentityProvider"),
		users:    clerkuser.NewClient(&clerk.ClientConfig{BackendConfig: backend}),
		attempts: attempts,
	}, nil
}

func (c *client) FetchProfile(ctx context.Context, externalID string) (*Profile, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, fmt.Errorf("external id required")
	}
	var u *clerk.User
	err := httpx.Retry(ctx, c.attempts, 200*time.Millisecond, func(ctx context.Context) error {
		got, err := c.users.Get(ctx, externalID)
		if err != nil {
			return upstreamError(err)
		}
		u = got
		return nil
	})
	if err != nil {
		c.log.Warn("profile lookup failed", "external_id", externalID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	p := profileFromUser(u)
	if p.ExternalID == "" {
		p.ExternalID = externalID
	}
	return &p, nil
}

// upstreamError turns SDK API errors into httpx.StatusError so the retry
// policy can see the status code.
func upstreamError(err error) error {
	var apiErr *clerk.APIErrorResponse
	if errors.As(err, &apiErr) {
		return &httpx.StatusError{Status: apiErr.HTTPStatusCode, Body: apiErr.Error()}
	}
	return err
}

func profileFromUser(u *clerk.User) Profile {
	if u == nil {
		return Profile{}
	}
	out := Profile{
		ExternalID: strings.TrimSpace(u.ID),
		FirstName:  deref(u.FirstName),
		LastName:   deref(u.LastName),
		ImageURL:   deref(u.ImageURL),
	}
	primary := deref(u.PrimaryEmailAddressID)
	for _, e := range u.EmailAddresses {
		if e == nil {
			continue
		}
		if out.Email == "" || (primary != "" && e.ID == primary) {
			out.Email = strings.TrimSpace(e.EmailAddress)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
