package services

import (
	"errors"
	"strings"

	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/platform/ctxutil"
	"github.com/quildacademy/quild-backend/internal/platform/identity"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

type AuthService interface {
	// Authenticate verifies a session token and returns the caller. UserID is
	// left unset; the ensure-user guard fills it in.
	Authenticate(token string) (*ctxutil.RequestData, error)
}

type authService struct {
	log      *logger.Logger
	verifier *identity.SessionVerifier
}

func NewAuthService(log *logger.Logger, verifier *identity.SessionVerifier) AuthService {
	return &authService{log: log.With("service", "AuthService"), verifier: verifier}
}

func (s *authService) Authenticate(token string) (*ctxutil.RequestData, error) {
	const op = "auth.authenticate"
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "missing session token", nil)
	}
	if s.verifier == nil {
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "session verification not configured", identity.ErrNoVerificationKey)
	}
	sess, err := s.verifier.Verify(token)
	if err != nil {
		msg := "invalid session"
		if errors.Is(err, identity.ErrUnauthorizedParty) {
			msg = "session not valid for this origin"
		}
		s.log.Debug("session rejected", "error", err)
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, msg, err)
	}
	return &ctxutil.RequestData{ExternalID: sess.ExternalID, SessionID: sess.SessionID}, nil
}
