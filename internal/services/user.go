package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/quildacademy/quild-backend/internal/data/aggregates"
	"github.com/quildacademy/quild-backend/internal/data/repos"
	types "github.com/quildacademy/quild-backend/internal/domain"
	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/domain/user"
	"github.com/quildacademy/quild-backend/internal/platform/ctxutil"
	"github.com/quildacademy/quild-backend/internal/platform/identity"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
)

type UserService interface {
	// EnsureUser returns the local user for externalID, creating it from the
	// provider profile. Provider failure is CodeProviderUnavailable.
	EnsureUser(ctx context.Context, externalID string) (*types.User, error)
	// EnsureUserWithFallback is EnsureUser that creates a placeholder user when
	// the provider cannot be reached.
	EnsureUserWithFallback(ctx context.Context, externalID string) (*types.User, error)
	UpsertProfile(ctx context.Context, p identity.Profile) (*types.User, error)
	GetMe(ctx context.Context) (*types.User, error)
}

type userService struct {
	log      *logger.Logger
	users    repos.UserRepo
	profiles identity.ProfileFetcher
}

// NewUserService builds the service. profiles may be nil, in which case every
// lookup of an unknown user is treated as a provider outage.
func NewUserService(log *logger.Logger, users repos.UserRepo, profiles identity.ProfileFetcher) UserService {
	return &userService{
		log:      log.With("service", "UserService"),
		users:    users,
		profiles: profiles,
	}
}

func (s *userService) existing(ctx context.Context, op, externalID string) (*types.User, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "missing external id", nil)
	}
	u, err := s.users.GetByExternalID(ctx, nil, externalID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return u, nil
}

func (s *userService) fetch(ctx context.Context, op, externalID string) (*identity.Profile, error) {
	if s.profiles == nil {
		return nil, domainagg.NewError(domainagg.CodeProviderUnavailable, op, "identity provider not configured", identity.ErrProviderUnavailable)
	}
	p, err := s.profiles.FetchProfile(ctx, externalID)
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeProviderUnavailable, op, "identity provider unavailable", err)
	}
	return p, nil
}

func (s *userService) EnsureUser(ctx context.Context, externalID string) (*types.User, error) {
	const op = "user.ensure"
	u, err := s.existing(ctx, op, externalID)
	if err != nil || u != nil {
		return u, err
	}
	p, err := s.fetch(ctx, op, externalID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, op, &types.User{
		ID:         uuid.New(),
		ExternalID: externalID,
		Email:      p.Email,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Photo:      p.ImageURL,
	})
}

func (s *userService) EnsureUserWithFallback(ctx context.Context, externalID string) (*types.User, error) {
	const op = "user.ensure_fallback"
	u, err := s.existing(ctx, op, externalID)
	if err != nil || u != nil {
		return u, err
	}
	candidate := &types.User{
		ID:         uuid.New(),
		ExternalID: externalID,
		Email:      user.PlaceholderEmail,
		FirstName:  user.PlaceholderFirstName,
		LastName:   user.PlaceholderLastName,
	}
	p, err := s.fetch(ctx, op, externalID)
	if err != nil {
		s.log.Warn("identity provider unavailable, creating placeholder user", "external_id", externalID, "error", err)
	} else {
		candidate.Email = p.Email
		candidate.FirstName = p.FirstName
		candidate.LastName = p.LastName
		candidate.Photo = p.ImageURL
	}
	return s.create(ctx, op, candidate)
}

func (s *userService) create(ctx context.Context, op string, u *types.User) (*types.User, error) {
	stored, err := s.users.FindOrCreate(ctx, nil, u)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if stored.ID == u.ID {
		s.log.Info("user created", "user_id", stored.ID, "external_id", stored.ExternalID)
	}
	return stored, nil
}

func (s *userService) UpsertProfile(ctx context.Context, p identity.Profile) (*types.User, error) {
	const op = "user.upsert_profile"
	if strings.TrimSpace(p.ExternalID) == "" {
		return nil, domainagg.Validation(op, "missing user id")
	}
	u, err := s.users.UpsertProfile(ctx, nil, &types.User{
		ID:         uuid.New(),
		ExternalID: p.ExternalID,
		Email:      p.Email,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Photo:      p.ImageURL,
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return u, nil
}

func (s *userService) GetMe(ctx context.Context) (*types.User, error) {
	const op = "user.get_me"
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		s.log.Warn("Request data not set in context")
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "not signed in", nil)
	}
	found, err := s.users.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if len(found) == 0 {
		return nil, domainagg.NotFound(op, "user not found")
	}
	return found[0], nil
}
