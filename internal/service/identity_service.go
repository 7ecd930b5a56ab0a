package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/repository"
)

// IdentityService maps an authenticated subject id to a resolved actor.
// Role, tenant and campus always come from the stored profile, never from
// token claims.
type IdentityService interface {
	Resolve(ctx context.Context, actorID string) (authz.Actor, error)
}

type identityService struct {
	profiles repository.UserProfileRepository
	logger   zerolog.Logger
}

// NewIdentityService constructs the identity resolver.
func NewIdentityService(profiles repository.UserProfileRepository, logger zerolog.Logger) IdentityService {
	return &identityService{
		profiles: profiles,
		logger:   logger.With().Str("component", "identity_service").Logger(),
	}
}

func (s *identityService) Resolve(ctx context.Context, actorID string) (authz.Actor, error) {
	if actorID == "" {
		return authz.Actor{}, authz.ErrUnauthenticated
	}

	profile, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.Actor{}, authz.ErrUnauthenticated
		}
		s.logger.Error().Err(err).Str("actor_id", actorID).Msg("failed to resolve actor profile")
		return authz.Actor{}, err
	}

	return authz.ActorFromProfile(profile), nil
}
