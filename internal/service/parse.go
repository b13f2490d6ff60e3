package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"classic-armory/internal/api"
	"classic-armory/internal/constants"
	"classic-armory/internal/domain"
	"classic-armory/internal/schema"

	"github.com/rs/zerolog"
)

// RankingAPI is the combat log ranking surface the service depends on.
type RankingAPI interface {
	Token(ctx context.Context, gt domain.GameType) ([]byte, int, error)
	ZoneRankings(ctx context.Context, token string, q api.RankingQuery) (*api.RankingResponse, error)
}

// specNameToMetric maps a specialization to the ranking metric it is
// measured by. Specs missing from this table cannot be ranked.
var specNameToMetric = map[string]string{
	"Restoration":   "hps",
	"Holy":          "hps",
	"Discipline":    "hps",
	"Mistweaver":    "hps",
	"Beast Mastery": "dps",
	"Marksmanship":  "dps",
	"Survival":      "dps",
	"Frost":         "dps",
	"Unholy":        "dps",
	"Blood":         "dps",
	"Havoc":         "dps",
	"Vengeance":     "dps",
	"Balance":       "dps",
	"Feral":         "dps",
	"Guardian":      "dps",
	"Arcane":        "dps",
	"Fire":          "dps",
	"Affliction":    "dps",
	"Demonology":    "dps",
	"Destruction":   "dps",
	"Elemental":     "dps",
	"Enhancement":   "dps",
	"Arms":          "dps",
	"Fury":          "dps",
	"Protection":    "dps",
	"Assassination": "dps",
	"Outlaw":        "dps",
	"Subtlety":      "dps",
	"Shadow":        "dps",
	"Brewmaster":    "dps",
	"Windwalker":    "dps",
	"Retribution":   "dps",
	"Combat":        "dps",
	"Feral Combat":  "dps",
}

type ParseService struct {
	client    RankingAPI
	repo      CharacterStore
	validator *schema.Validator
	logger    zerolog.Logger
}

func NewParseService(client RankingAPI, repo CharacterStore, validator *schema.Validator, logger zerolog.Logger) *ParseService {
	return &ParseService{
		client:    client,
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

// RefreshParse refreshes a character's ranking parse from the combat log
// API. The character must already be cached; refreshes are rate limited to
// one per day per character. A refusal (unknown spec, too recent) returns
// the stored parse unchanged.
func (s *ParseService) RefreshParse(ctx context.Context, name, realm, region string, era bool) (*domain.RankingParse, error) {
	if !s.repo.Available() {
		return nil, ErrCacheUnavailable
	}

	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	name = strings.ToLower(name)
	realm = strings.ToLower(realm)
	gameType := domain.GameTypeFor(realm, era)
	key := domain.CharacterKey{Name: name, Realm: realm, Region: region, GameType: gameType}

	cached, err := s.repo.Find(ctx, key)
	if err != nil {
		return nil, err
	}
	if cached == nil {
		return nil, ErrNotFound
	}

	specName := cached.Talents.SpecName(true)
	if specName == "" {
		s.logger.Warn().Str("name", name).Msg("no specialization, skipping ranking refresh")
		return cached.Parse, nil
	}
	metric, ok := specNameToMetric[specName]
	if !ok {
		s.logger.Warn().Str("name", name).Str("spec", specName).Msg("no metric for specialization, skipping ranking refresh")
		return cached.Parse, nil
	}
	if cached.Parse != nil && fresh(time.Now(), cached.Parse.LastUpdated, constants.ParseRefreshTTL) {
		s.logger.Debug().Str("name", name).Msg("ranking refreshed too recently, skipping")
		return cached.Parse, nil
	}

	token, err := s.obtainToken(ctx, gameType)
	if err != nil {
		return nil, err
	}

	query := api.RankingQuery{
		Name:     name,
		Server:   realm,
		Region:   region,
		Metric:   metric,
		SpecName: specName,
		GameType: gameType,
	}

	rankings, err := s.zoneRankings(ctx, token, query)
	if err != nil {
		return nil, err
	}

	// No data on the primary spec: try the game type's fallbacks before
	// writing a no-logs sentinel.
	if rankings == nil {
		switch gameType {
		case domain.GameTypeNormal:
			sized := query
			sized.Size = 10
			rankings, err = s.zoneRankings(ctx, token, sized)
			if err != nil {
				return nil, err
			}
			if rankings == nil {
				if secondary := cached.Talents.SpecName(false); secondary != "" {
					if m, ok := specNameToMetric[secondary]; ok {
						query.SpecName = secondary
						query.Metric = m
						specName, metric = secondary, m
						rankings, err = s.zoneRankings(ctx, token, query)
						if err != nil {
							return nil, err
						}
					}
				}
			}
		case domain.GameTypeSeasonal:
			if secondary := cached.Talents.SpecName(false); secondary != "" {
				if m, ok := specNameToMetric[secondary]; ok {
					query.SpecName = secondary
					query.Metric = m
					specName, metric = secondary, m
					rankings, err = s.zoneRankings(ctx, token, query)
					if err != nil {
						return nil, err
					}
				}
			}
		}
	}

	if rankings == nil {
		parse := &domain.RankingParse{NoLogs: true, LastUpdated: time.Now().UTC()}
		if err := s.repo.UpdateParse(ctx, cached.ID, parse); err != nil {
			return nil, err
		}
		s.logger.Info().Str("name", name).Str("spec", specName).Msg("no ranking data found")
		return parse, nil
	}

	encounters := make([]domain.EncounterRanking, 0, len(rankings.Rankings))
	for _, ranking := range rankings.Rankings {
		encounter := domain.EncounterRanking{
			Name: ranking.Encounter.Name,
			ID:   ranking.Encounter.ID,
		}
		if ranking.AllStars != nil {
			percent := ranking.AllStars.RankPercent
			encounter.Percent = &percent
		}
		encounters = append(encounters, encounter)
	}

	parse := &domain.RankingParse{
		SpecName:    specName,
		Metric:      metric,
		LastUpdated: time.Now().UTC(),
		Encounters:  encounters,
	}
	if err := s.repo.UpdateParse(ctx, cached.ID, parse); err != nil {
		return nil, err
	}
	return parse, nil
}

// zoneRankings runs one ranking query, returning nil when the character has
// no data for it.
func (s *ParseService) zoneRankings(ctx context.Context, token string, q api.RankingQuery) (*api.ZoneRankings, error) {
	resp, err := s.client.ZoneRankings(ctx, token, q)
	if err != nil {
		s.logger.Error().Err(err).Str("name", q.Name).Str("spec", q.SpecName).Msg("ranking query failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	character := resp.Data.CharacterData.Character
	if character == nil || character.ZoneRankings == nil || character.ZoneRankings.BestPerformanceAverage == nil {
		return nil, nil
	}
	return character.ZoneRankings, nil
}

func (s *ParseService) obtainToken(ctx context.Context, gt domain.GameType) (string, error) {
	body, status, err := s.client.Token(ctx, gt)
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
