package webhook

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

var testSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("super-secret-signing-key"))

func signedHeaders(t *testing.T, secret, id string, at time.Time, body []byte) http.Header {
	t.Helper()
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		t.Fatalf("svix.NewWebhook: %v", err)
	}
	sig, err := wh.Sign(id, at, body)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	h := http.Header{}
	h.Set(HeaderID, id)
	h.Set(HeaderTimestamp, strconv.FormatInt(at.Unix(), 10))
	h.Set(HeaderSignature, sig)
	return h
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	v, err := NewVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	body := []byte(`{"type":"user.created"}`)
	h := signedHeaders(t, testSecret, "msg_1", time.Now(), body)
	h.Set(HeaderSignature, "v1,bm90LWl0 "+h.Get(HeaderSignature))

	if err := v.Verify(body, h); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyAcceptsRawBase64Secret(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("raw-key"))
	v, err := NewVerifier(raw)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	body := []byte(`{"type":"user.updated"}`)
	if err := v.Verify(body, signedHeaders(t, "whsec_"+raw, "msg_raw", time.Now(), body)); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejects(t *testing.T) {
	now := time.Now()
	v, err := NewVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	body := []byte(`{"type":"user.created"}`)

	tampered := signedHeaders(t, testSecret, "msg_1", now, body)
	if err := v.Verify([]byte(`{"type":"user.deleted"}`), tampered); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("tampered body: expected ErrInvalidSignature, got %v", err)
	}

	stale := signedHeaders(t, testSecret, "msg_1", now.Add(-10*time.Minute), body)
	if err := v.Verify(body, stale); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("stale: expected ErrInvalidSignature, got %v", err)
	}

	missing := signedHeaders(t, testSecret, "msg_1", now, body)
	missing.Del(HeaderID)
	if err := v.Verify(body, missing); !errors.Is(err, ErrMissingHeaders) {
		t.Fatalf("missing: expected ErrMissingHeaders, got %v", err)
	}

	foreign := signedHeaders(t, base64.StdEncoding.EncodeToString([]byte("another-key")), "msg_1", now, body)
	if err := v.Verify(body, foreign); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("foreign key: expected ErrInvalidSignature, got %v", err)
	}
}

func TestNewVerifierRejectsBadSecret(t *testing.T) {
	if _, err := NewVerifier(""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	if _, err := NewVerifier("whsec_%%%"); err == nil {
		t.Fatalf("expected error for non-base64 secret")
	}
}
