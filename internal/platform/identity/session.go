package identity

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoVerificationKey = errors.New("no session verification key configured")
	ErrInvalidSession    = errors.New("invalid session token")
	ErrUnauthorizedParty = errors.New("session issued for an unauthorized party")
)

// SessionClaims are the claims the identity provider puts in a session token.
type SessionClaims struct {
	AuthorizedParty string `json:"azp,omitempty"`
	SessionID       string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Session is a verified caller.
type Session struct {
	ExternalID string
	SessionID  string
	ExpiresAt  time.Time
}

type SessionConfig struct {
	// PEM encoded RSA public key used for RS256 tokens.
	PublicKeyPEM string
	// Shared secret for HS256 tokens, used in development and tests.
	HMACSecret        string
	AuthorizedParties []string
	Leeway            time.Duration
}

type SessionVerifier struct {
	rsaKey  *rsa.PublicKey
	hmacKey []byte
	parties map[string]struct{}
	leeway  time.Duration
	methods []string
}

func NewSessionVerifier(cfg SessionConfig) (*SessionVerifier, error) {
	v := &SessionVerifier{leeway: cfg.Leeway}
	if v.leeway <= 0 {
		v.leeway = 5 * time.Second
	}
	if pem := strings.TrimSpace(cfg.PublicKeyPEM); pem != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("parse session public key: %w", err)
		}
		v.rsaKey = key
		v.methods = append(v.methods, jwt.SigningMethodRS256.Alg())
	}
	if secret := strings.TrimSpace(cfg.HMACSecret); secret != "" {
		v.hmacKey = []byte(secret)
		v.methods = append(v.methods, jwt.SigningMethodHS256.Alg())
	}
	if len(v.methods) == 0 {
		return nil, ErrNoVerificationKey
	}
	for _, p := range cfg.AuthorizedParties {
		if p = strings.TrimSpace(p); p != "" {
			if v.parties == nil {
				v.parties = map[string]struct{}{}
			}
			v.parties[p] = struct{}{}
		}
	}
	return v, nil
}

func (v *SessionVerifier) keyFunc(t *jwt.Token) (interface{}, error) {
	switch t.Method.(type) {
	case *jwt.SigningMethodRSA:
		if v.rsaKey != nil {
			return v.rsaKey, nil
		}
	case *jwt.SigningMethodHMAC:
		if v.hmacKey != nil {
			return v.hmacKey, nil
		}
	}
	return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
}

// Verify parses and validates a session token. The subject is the external id.
func (v *SessionVerifier) Verify(tokenString string) (*Session, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(
		strings.TrimSpace(tokenString),
		claims,
		v.keyFunc,
		jwt.WithValidMethods(v.methods),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidSession
	}
	if v.parties != nil && claims.AuthorizedParty != "" {
		if _, ok := v.parties[claims.AuthorizedParty]; !ok {
			return nil, ErrUnauthorizedParty
		}
	}
	s := &Session{ExternalID: claims.Subject, SessionID: claims.SessionID}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// IssueHS256 mints a development token signed with secret.
func IssueHS256(secret, externalID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: "sess_dev",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   externalID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
