package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"classic-armory/internal/api"
	"classic-armory/internal/constants"
	"classic-armory/internal/domain"
	"classic-armory/internal/gearscore"
	"classic-armory/internal/itemdata"
	"classic-armory/internal/normalize"
	"classic-armory/internal/schema"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ProfileAPI is the upstream profile API surface the service depends on.
type ProfileAPI interface {
	Token(ctx context.Context) ([]byte, int, error)
	CharacterEquipment(ctx context.Context, token string, ref api.CharacterRef) ([]byte, int, error)
	CharacterProfile(ctx context.Context, token string, ref api.CharacterRef) ([]byte, int, error)
	CharacterMedia(ctx context.Context, token string, ref api.CharacterRef) ([]byte, int, error)
	CharacterAchievements(ctx context.Context, token string, ref api.CharacterRef) ([]byte, int, error)
	CharacterSpecializations(ctx context.Context, token string, ref api.CharacterRef) ([]byte, int, error)
	CharacterPvPSummary(ctx context.Context, token string, ref api.CharacterRef) ([]byte, int, error)
	GuildRoster(ctx context.Context, token string, ref api.CharacterRef) ([]byte, int, error)
}

// CharacterStore is the cache surface for character profiles.
type CharacterStore interface {
	Available() bool
	Find(ctx context.Context, key domain.CharacterKey) (*domain.Profile, error)
	Upsert(ctx context.Context, character *domain.Character, meta *domain.Metadata) (*domain.Character, *domain.RankingParse, error)
	UpdateParse(ctx context.Context, characterID int64, parse *domain.RankingParse) error
	Recent(ctx context.Context, limit int) ([]domain.Character, error)
}

type ProfileService struct {
	client    ProfileAPI
	repo      CharacterStore
	validator *schema.Validator
	items     *itemdata.Resolver
	logger    zerolog.Logger
}

func NewProfileService(client ProfileAPI, repo CharacterStore, validator *schema.Validator, items *itemdata.Resolver, logger zerolog.Logger) *ProfileService {
	return &ProfileService{
		client:    client,
		repo:      repo,
		validator: validator,
		items:     items,
		logger:    logger,
	}
}

// fresh reports whether a cached record is still inside its refresh window.
func fresh(now, updatedAt time.Time, window time.Duration) bool {
	return now.Sub(updatedAt) < window
}

// GetProfile serves a character profile, from cache when fresh, otherwise by
// fetching, validating, normalizing and persisting the upstream data.
func (s *ProfileService) GetProfile(ctx context.Context, name, realm, region string, refresh, era bool) (*domain.Profile, error) {
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	name = strings.ToLower(name)
	realm = strings.ToLower(realm)
	gameType := domain.GameTypeFor(realm, era)
	key := domain.CharacterKey{Name: name, Realm: realm, Region: region, GameType: gameType}

	if !refresh && s.repo.Available() {
		cached, err := s.repo.Find(ctx, key)
		if err != nil {
			return nil, err
		}
		if cached != nil && fresh(time.Now(), cached.UpdatedAt, constants.ProfileRefreshTTL) {
			s.logger.Debug().Str("name", name).Str("realm", realm).Msg("serving cached profile")
			return cached, nil
		}
	}

	token, err := s.obtainToken(ctx)
	if err != nil {
		return nil, err
	}

	ref := api.CharacterRef{Region: region, Realm: realm, Name: name, Era: era}

	var (
		equipmentBody, profileBody, mediaBody []byte
		specsBody, pvpBody, achievementsBody  []byte
		equipmentStatus, profileStatus        int
		mediaStatus, specsStatus, pvpStatus   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		equipmentBody, equipmentStatus, err = s.client.CharacterEquipment(gctx, token, ref)
		return err
	})
	g.Go(func() error {
		var err error
		profileBody, profileStatus, err = s.client.CharacterProfile(gctx, token, ref)
		return err
	})
	g.Go(func() error {
		var err error
		mediaBody, mediaStatus, err = s.client.CharacterMedia(gctx, token, ref)
		return err
	})
	g.Go(func() error {
		var err error
		specsBody, specsStatus, err = s.client.CharacterSpecializations(gctx, token, ref)
		return err
	})
	g.Go(func() error {
		var err error
		pvpBody, pvpStatus, err = s.client.CharacterPvPSummary(gctx, token, ref)
		return err
	})
	if !era {
		g.Go(func() error {
			var err error
			achievementsBody, _, err = s.client.CharacterAchievements(gctx, token, ref)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("upstream fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if equipmentStatus == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if equipmentStatus != http.StatusOK {
		return nil, fmt.Errorf("%w: equipment fetch returned %d", ErrUpstreamUnavailable, equipmentStatus)
	}
	if profileStatus != http.StatusOK {
		return nil, fmt.Errorf("%w: profile fetch returned %d", ErrUpstreamUnavailable, profileStatus)
	}

	var equipment api.EquipmentResponse
	if err := s.validator.Decode(schema.Equipment, equipmentBody, &equipment); err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("equipment validation failed")
		return nil, fmt.Errorf("%w: %v", ErrInvalidRemoteData, err)
	}
	var profileData api.ProfileResponse
	if err := s.validator.Decode(schema.CharacterProfile, profileBody, &profileData); err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("profile validation failed")
		return nil, fmt.Errorf("%w: %v", ErrInvalidRemoteData, err)
	}

	media := decodeOptional[api.MediaResponse](s, schema.Media, mediaBody, mediaStatus, name)
	pvp := decodeOptional[api.PvPResponse](s, schema.PvPSummary, pvpBody, pvpStatus, name)

	talents := domain.Talents{Era: domain.TalentEraModern}
	if era {
		talents.Era = domain.TalentEraClassic
		specs := decodeOptional[api.ClassicSpecsResponse](s, schema.SpecializationsClassic, specsBody, specsStatus, name)
		talents.Classic = normalize.ClassicSpecs(specs)
	} else {
		specs := decodeOptional[api.ModernSpecsResponse](s, schema.SpecializationsModern, specsBody, specsStatus, name)
		talents.Modern = normalize.ModernSpecs(specs)
	}

	// Achievement statistics are best-effort; a malformed payload just means
	// no achievement section on the profile.
	var achievements *domain.AchievementSummary
	if !era && len(achievementsBody) > 0 {
		var raw api.AchievementsResponse
		if err := json.Unmarshal(achievementsBody, &raw); err != nil {
			s.logger.Warn().Err(err).Str("name", name).Msg("discarding undecodable achievement statistics")
		} else {
			achievements = normalize.Achievements(&raw)
		}
	}

	itemIDs := make([]int, 0, len(equipment.EquippedItems))
	for _, item := range equipment.EquippedItems {
		itemIDs = append(itemIDs, item.Item.ID)
	}
	info := s.items.Lookup(itemIDs, era)
	items := normalize.EquippedItems(&equipment, info)

	itemLevel := gearscore.ItemLevel(items)
	var score *int
	if !era {
		gs := gearscore.GearScore(items)
		score = &gs
	}

	pvpSummary := normalize.PvP(pvp)

	gender := 1
	if profileData.Gender.Type == "MALE" {
		gender = 0
	}

	character := domain.Character{
		Name:              name,
		Realm:             realm,
		Region:            region,
		GameType:          gameType,
		Race:              profileData.Race.ID,
		Gender:            gender,
		Class:             profileData.CharacterClass.ID,
		Level:             profileData.Level,
		Gearscore:         score,
		ItemLevel:         itemLevel,
		AchievementPoints: profileData.AchievementPoints,
	}
	if profileData.Guild != nil {
		character.Guild = profileData.Guild.Name
	}
	if media != nil && len(media.Assets) > 0 {
		character.ProfileImageURL = media.Assets[0].Value
	}
	if pvpSummary != nil {
		kills := pvpSummary.HonorableKills
		character.HonorableKills = &kills
	}

	meta := domain.Metadata{
		Items:        items,
		Talents:      talents,
		Achievements: achievements,
		PvP:          pvpSummary,
	}

	var (
		stored *domain.Character
		parse  *domain.RankingParse
	)
	if s.repo.Available() {
		stored, parse, err = s.repo.Upsert(ctx, &character, &meta)
		if err != nil {
			return nil, err
		}
	} else {
		// Degraded mode: serve the assembled profile without persisting it.
		now := time.Now().UTC()
		character.CreatedAt = now
		character.UpdatedAt = now
		stored = &character
	}

	return &domain.Profile{
		Character:    *stored,
		Items:        items,
		Talents:      talents,
		Achievements: achievements,
		PvP:          pvpSummary,
		Parse:        parse,
	}, nil
}

// Recent lists the most recently refreshed characters.
func (s *ProfileService) Recent(ctx context.Context) ([]domain.Character, error) {
	if !s.repo.Available() {
		return nil, ErrCacheUnavailable
	}
	return s.repo.Recent(ctx, constants.RecentListLimit)
}

// obtainToken fetches and validates a client-credentials token.
func (s *ProfileService) obtainToken(ctx context.Context) (string, error) {
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

// decodeOptional validates a non-critical payload, returning nil instead of
// an error so the profile can still be assembled without that section.
func decodeOptional[T any](s *ProfileService, name string, body []byte, status int, character string) *T {
	if status != http.StatusOK {
		s.logger.Warn().Int("status", status).Str("schema", name).Str("name", character).Msg("skipping optional payload")
		return nil
	}
	var out T
	if err := s.validator.Decode(name, body, &out); err != nil {
		s.logger.Warn().Err(err).Str("schema", name).Str("name", character).Msg("optional payload validation failed")
		return nil
	}
	return &out
}
