package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"classic-armory/internal/api"
	"classic-armory/internal/constants"
	"classic-armory/internal/domain"
	"classic-armory/internal/normalize"
	"classic-armory/internal/schema"

	"github.com/rs/zerolog"
)

// GuildStore is the cache surface for guild rosters.
type GuildStore interface {
	Available() bool
	Find(ctx context.Context, key domain.CharacterKey) (*domain.Guild, error)
	Upsert(ctx context.Context, guild *domain.Guild) (*domain.Guild, error)
	Recent(ctx context.Context, limit int) ([]domain.Guild, error)
}

type GuildService struct {
	client    ProfileAPI
	repo      GuildStore
	validator *schema.Validator
	logger    zerolog.Logger
}

func NewGuildService(client ProfileAPI, repo GuildStore, validator *schema.Validator, logger zerolog.Logger) *GuildService {
	return &GuildService{
		client:    client,
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

// GetGuild serves a guild roster, from cache when fresh, otherwise from the
// upstream API. Guild names keep their case; only the realm is lowered.
func (s *GuildService) GetGuild(ctx context.Context, name, realm, region string, refresh, era bool) (*domain.Guild, error) {
	realm = strings.ToLower(realm)
	gameType := domain.GameTypeFor(realm, era)
	key := domain.CharacterKey{Name: name, Realm: realm, Region: region, GameType: gameType}

	if !refresh && s.repo.Available() {
		cached, err := s.repo.Find(ctx, key)
		if err != nil {
			return nil, err
		}
		if cached != nil && fresh(time.Now(), cached.UpdatedAt, constants.GuildRefreshTTL) {
			s.logger.Debug().Str("name", name).Str("realm", realm).Msg("serving cached guild")
			return cached, nil
		}
	}

	token, err := s.obtainToken(ctx)
	if err != nil {
		return nil, err
	}

	ref := api.CharacterRef{Region: region, Realm: realm, Name: name, Era: era}
	body, status, err := s.client.GuildRoster(ctx, token, ref)
	if err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("guild roster fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: guild roster fetch returned %d", ErrUpstreamUnavailable, status)
	}

	var roster api.GuildRosterResponse
	if err := s.validator.Decode(schema.GuildRoster, body, &roster); err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("guild roster validation failed")
		return nil, fmt.Errorf("%w: %v", ErrInvalidRemoteData, err)
	}

	guild := domain.Guild{
		Name:        name,
		DisplayName: roster.Guild.Name,
		Realm:       realm,
		Region:      region,
		GameType:    gameType,
		Members:     normalize.GuildMembers(&roster),
	}

	if !s.repo.Available() {
		now := time.Now().UTC()
		guild.CreatedAt = now
		guild.UpdatedAt = now
		return &guild, nil
	}
	return s.repo.Upsert(ctx, &guild)
}

// Recent lists the most recently refreshed guilds.
func (s *GuildService) Recent(ctx context.Context) ([]domain.Guild, error) {
	if !s.repo.Available() {
		return nil, ErrCacheUnavailable
	}
	return s.repo.Recent(ctx, constants.RecentListLimit)
}

func (s *GuildService) obtainToken(ctx context.Context) (string, error) {
	body, status, err := s.client.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrAuthFailed, status)
	}
	var token api.AuthTokenResponse
	if err := s.validator.Decode(schema.AuthToken, body, &token); err != nil {
		s.logger.Error().Err(err).Msg("auth token validation failed")
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	return token.AccessToken, nil
}
