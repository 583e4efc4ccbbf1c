package services

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/platform/identity"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
	"github.com/quildacademy/quild-backend/internal/platform/webhook"
)

const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
)

type identityEvent struct {
	Type string               `json:"type" validate:"required"`
	Data identity.UserPayload `json:"data"`
}

type WebhookService interface {
	// HandleIdentityEvent verifies and applies one delivery. It returns the
	// event type; unhandled types are acknowledged without side effects.
	HandleIdentityEvent(ctx context.Context, body []byte, headers http.Header) (string, error)
}

type webhookService struct {
	log      *logger.Logger
	verifier *webhook.Verifier
	users    UserService
	validate *validator.Validate
}

func NewWebhookService(log *logger.Logger, verifier *webhook.Verifier, users UserService) WebhookService {
	return &webhookService{
		log:      log.With("service", "WebhookService"),
		verifier: verifier,
		users:    users,
		validate: validator.New(),
	}
}

func (s *webhookService) HandleIdentityEvent(ctx context.Context, body []byte, headers http.Header) (string, error) {
	const op = "webhook.identity_event"
	if s.verifier == nil {
		return "", domainagg.NewError(domainagg.CodeInternal, op, "webhook secret not configured", nil)
	}
	if err := s.verifier.Verify(body, headers); err != nil {
		s.log.Warn("webhook signature rejected", "error", err)
		return "", domainagg.NewError(domainagg.CodeValidation, op, "invalid webhook signature", err)
	}
	var evt identityEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return "", domainagg.NewError(domainagg.CodeValidation, op, "malformed event payload", err)
	}
	if err := s.validate.Struct(evt); err != nil {
		return "", domainagg.NewError(domainagg.CodeValidation, op, "malformed event payload", err)
	}

	switch evt.Type {
	case EventUserCreated, EventUserUpdated:
		u, err := s.users.UpsertProfile(ctx, evt.Data.Profile())
		if err != nil {
			return evt.Type, err
		}
		s.log.Info("user synced from webhook", "event", evt.Type, "user_id", u.ID, "external_id", u.ExternalID)
	default:
		s.log.Debug("ignoring webhook event", "event", evt.Type)
	}
	return evt.Type, nil
}
