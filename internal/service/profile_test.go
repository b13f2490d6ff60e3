package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"classic-armory/internal/api"
	"classic-armory/internal/domain"
	"classic-armory/internal/itemdata"
	"classic-armory/internal/schema"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validToken = `{"access_token": "tok", "token_type": "bearer", "expires_in": 86399}`

// Payloads reference item 51228, which resolves to level 264 in the
// non-era dataset.
const validEquipment = `{
	"equipped_items": [
		{
			"item": {"id": 51228},
			"inventory_type": {"type": "HEAD", "name": "Head"},
			"slot": {"type": "HEAD", "name": "Head"},
			"quality": {"type": "EPIC", "name": "Epic"},
			"name": "Sanctified Crimson Acolyte Cowl"
		}
	]
}`

const validProfile = `{
	"id": 1001, "name": "thrall", "level": 80,
	"gender": {"type": "MALE", "name": "Male"},
	"faction": {"type": "HORDE", "name": "Horde"},
	"race": {"id": 2}, "character_class": {"id": 7},
	"guild": {"name": "Earthen Ring", "id": 55},
	"achievement_points": 1240
}`

const validMedia = `{"assets": [{"key": "avatar", "value": "https://render.example.com/avatar.jpg"}]}`

const validModernSpecs = `{
	"specializations": [{"specialization": {"name": "Elemental"}}],
	"specialization_groups": [{"is_active": true}]
}`

const validPvP = `{"pvp_rank": 11, "honorable_kills": 7342}`

const validAchievements = `{
	"categories": [
		{"id": 122, "name": "Deaths", "statistics": [{"id": 60, "name": "Total deaths", "quantity": 55}]}
	]
}`

type fetchResult struct {
	body   []byte
	status int
	err    error
}

func ok(body string) fetchResult {
	return fetchResult{body: []byte(body), status: 200}
}

type fakeProfileAPI struct {
	token        fetchResult
	equipment    fetchResult
	profile      fetchResult
	media        fetchResult
	specs        fetchResult
	pvp          fetchResult
	achievements fetchResult
	roster       fetchResult

	calls             int
	achievementsCalls int
}

func newFakeProfileAPI() *fakeProfileAPI {
	return &fakeProfileAPI{
		token:        ok(validToken),
		equipment:    ok(validEquipment),
		profile:      ok(validProfile),
		media:        ok(validMedia),
		specs:        ok(validModernSpecs),
		pvp:          ok(validPvP),
		achievements: ok(validAchievements),
	}
}

func (f *fakeProfileAPI) Token(context.Context) ([]byte, int, error) {
	f.calls++
	return f.token.body, f.token.status, f.token.err
}

func (f *fakeProfileAPI) CharacterEquipment(_ context.Context, _ string, _ api.CharacterRef) ([]byte, int, error) {
	f.calls++
	return f.equipment.body, f.equipment.status, f.equipment.err
}

func (f *fakeProfileAPI) CharacterProfile(_ context.Context, _ string, _ api.CharacterRef) ([]byte, int, error) {
	f.calls++
	return f.profile.body, f.profile.status, f.profile.err
}

func (f *fakeProfileAPI) CharacterMedia(_ context.Context, _ string, _ api.CharacterRef) ([]byte, int, error) {
	f.calls++
	return f.media.body, f.media.status, f.media.err
}

func (f *fakeProfileAPI) CharacterAchievements(_ context.Context, _ string, _ api.CharacterRef) ([]byte, int, error) {
	f.calls++
	f.achievementsCalls++
	return f.achievements.body, f.achievements.status, f.achievements.err
}

func (f *fakeProfileAPI) CharacterSpecializations(_ context.Context, _ string, _ api.CharacterRef) ([]byte, int, error) {
	f.calls++
	return f.specs.body, f.specs.status, f.specs.err
}

func (f *fakeProfileAPI) CharacterPvPSummary(_ context.Context, _ string, _ api.CharacterRef) ([]byte, int, error) {
	f.calls++
	return f.pvp.body, f.pvp.status, f.pvp.err
}

func (f *fakeProfileAPI) GuildRoster(_ context.Context, _ string, _ api.CharacterRef) ([]byte, int, error) {
	f.calls++
	return f.roster.body, f.roster.status, f.roster.err
}

type fakeCharacterStore struct {
	available bool
	found     *domain.Profile

	upserts       int
	lastCharacter *domain.Character
	lastMeta      *domain.Metadata
	storedParse   *domain.RankingParse
	parseWrites   []*domain.RankingParse
}

func (f *fakeCharacterStore) Available() bool {
	return f.available
}

func (f *fakeCharacterStore) Find(context.Context, domain.CharacterKey) (*domain.Profile, error) {
	return f.found, nil
}

func (f *fakeCharacterStore) Upsert(_ context.Context, character *domain.Character, meta *domain.Metadata) (*domain.Character, *domain.RankingParse, error) {
	f.upserts++
	f.lastCharacter = character
	f.lastMeta = meta
	stored := *character
	stored.ID = 42
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = time.Now()
	return &stored, f.storedParse, nil
}

func (f *fakeCharacterStore) UpdateParse(_ context.Context, _ int64, parse *domain.RankingParse) error {
	f.parseWrites = append(f.parseWrites, parse)
	f.storedParse = parse
	return nil
}

func (f *fakeCharacterStore) Recent(context.Context, int) ([]domain.Character, error) {
	return nil, nil
}

func newProfileService(t *testing.T, client ProfileAPI, store CharacterStore) *ProfileService {
	t.Helper()
	validator, err := schema.NewValidator()
	require.NoError(t, err)
	items, err := itemdata.NewResolver()
	require.NoError(t, err)
	return NewProfileService(client, store, validator, items, zerolog.Nop())
}

func TestGetProfileServesFreshCache(t *testing.T) {
	client := newFakeProfileAPI()
	cached := &domain.Profile{Character: domain.Character{ID: 7, Name: "thrall", UpdatedAt: time.Now()}}
	store := &fakeCharacterStore{available: true, found: cached}
	svc := newProfileService(t, client, store)

	profile, err := svc.GetProfile(context.Background(), "Thrall", "Benediction", "us", false, false)
	require.NoError(t, err)
	assert.Equal(t, cached, profile)
	assert.Zero(t, client.calls)
	assert.Zero(t, store.upserts)
}

func TestGetProfileRefreshBypassesCache(t *testing.T) {
	client := newFakeProfileAPI()
	cached := &domain.Profile{Character: domain.Character{ID: 7, Name: "thrall", UpdatedAt: time.Now()}}
	store := &fakeCharacterStore{available: true, found: cached}
	svc := newProfileService(t, client, store)

	profile, err := svc.GetProfile(context.Background(), "Thrall", "Benediction", "us", true, false)
	require.NoError(t, err)
	assert.Positive(t, client.calls)
	assert.Equal(t, 1, store.upserts)
	assert.Equal(t, int64(42), profile.ID)
}

func TestGetProfileStaleCacheRefetches(t *testing.T) {
	client := newFakeProfileAPI()
	stale := &domain.Profile{Character: domain.Character{ID: 7, Name: "thrall", UpdatedAt: time.Now().Add(-8 * 24 * time.Hour)}}
	store := &fakeCharacterStore{available: true, found: stale}
	svc := newProfileService(t, client, store)

	_, err := svc.GetProfile(context.Background(), "Thrall", "Benediction", "us", false, false)
	require.NoError(t, err)
	assert.Equal(t, 1, store.upserts)
}

func TestGetProfileAssemblesCharacter(t *testing.T) {
	client := newFakeProfileAPI()
	store := &fakeCharacterStore{available: true}
	svc := newProfileService(t, client, store)

	profile, err := svc.GetProfile(context.Background(), "Thrall", "Benediction", "us", false, false)
	require.NoError(t, err)

	assert.Equal(t, "thrall", profile.Name)
	assert.Equal(t, "benediction", profile.Realm)
	assert.Equal(t, domain.GameTypeNormal, profile.GameType)
	assert.Equal(t, 0, profile.Gender)
	assert.Equal(t, 2, profile.Race)
	assert.Equal(t, 7, profile.Class)
	assert.Equal(t, "Earthen Ring", profile.Guild)
	assert.Equal(t, "https://render.example.com/avatar.jpg", profile.ProfileImageURL)
	require.NotNil(t, profile.AchievementPoints)
	assert.Equal(t, 1240, *profile.AchievementPoints)

	assert.Equal(t, 264, profile.ItemLevel)
	require.NotNil(t, profile.Gearscore)
	assert.Equal(t, 494, *profile.Gearscore)

	assert.Equal(t, domain.TalentEraModern, profile.Talents.Era)
	require.Len(t, profile.Talents.Modern, 1)
	assert.Equal(t, "Elemental", profile.Talents.Modern[0].Name)
	assert.True(t, profile.Talents.Modern[0].IsActive)

	require.NotNil(t, profile.PvP)
	assert.Equal(t, 11, profile.PvP.Rank)
	require.NotNil(t, profile.HonorableKills)
	assert.Equal(t, 7342, *profile.HonorableKills)

	require.NotNil(t, profile.Achievements)
	require.Len(t, profile.Achievements.Achievements, 1)
	assert.Equal(t, 55, profile.Achievements.Achievements[0].Quantity)
}

func TestGetProfileNotFound(t *testing.T) {
	client := newFakeProfileAPI()
	client.equipment = fetchResult{body: []byte(`{"detail": "Not Found"}`), status: 404}
	store := &fakeCharacterStore{available: true}
	svc := newProfileService(t, client, store)

	_, err := svc.GetProfile(context.Background(), "nobody", "benediction", "us", false, false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.upserts)
}

func TestGetProfileUpstreamFailure(t *testing.T) {
	client := newFakeProfileAPI()
	client.equipment = fetchResult{err: errors.New("connection refused")}
	store := &fakeCharacterStore{available: true}
	svc := newProfileService(t, client, store)

	_, err := svc.GetProfile(context.Background(), "thrall", "benediction", "us", false, false)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Zero(t, store.upserts)
}

func TestGetProfileInvalidEquipment(t *testing.T) {
	client := newFakeProfileAPI()
	client.equipment = ok(`{"equipped_items": [{"name": "missing everything"}]}`)
	store := &fakeCharacterStore{available: true}
	svc := newProfileService(t, client, store)

	_, err := svc.GetProfile(context.Background(), "thrall", "benediction", "us", false, false)
	assert.ErrorIs(t, err, ErrInvalidRemoteData)
	assert.Zero(t, store.upserts)
}

func TestGetProfileAuthFailure(t *testing.T) {
	client := newFakeProfileAPI()
	client.token = fetchResult{body: []byte(`{"error": "invalid_client"}`), status: 401}
	store := &fakeCharacterStore{available: true}
	svc := newProfileService(t, client, store)

	_, err := svc.GetProfile(context.Background(), "thrall", "benediction", "us", false, false)
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestGetProfileTokenEndpointUnreachable(t *testing.T) {
	client := newFakeProfileAPI()
	client.token = fetchResult{err: errors.New("dial tcp: connection refused")}
	store := &fakeCharacterStore{available: true}
	svc := newProfileService(t, client, store)

	_, err := svc.GetProfile(context.Background(), "thrall", "benediction", "us", false, false)
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Zero(t, store.upserts)
}

func TestGetProfileInvalidPvPDegradesGracefully(t *testing.T) {
	client := newFakeProfileAPI()
	client.pvp = ok(`{"wrong": true}`)
	store := &fakeCharacterStore{available: true}
	svc := newProfileService(t, client, store)

	profile, err := svc.GetProfile(context.Background(), "thrall", "benediction", "us", false, false)
	require.NoError(t, err)
	assert.Nil(t, profile.PvP)
	assert.Nil(t, profile.HonorableKills)
	assert.Equal(t, 1, store.upserts)
}

func TestGetProfileEra(t *testing.T) {
	client := newFakeProfileAPI()
	client.equipment = ok(`{
		"equipped_items": [
			{
				"item": {"id": 17076},
				"inventory_type": {"type": "TWOHWEAPON", "name": "Two-Hand"},
				"slot": {"type": "MAIN_HAND", "name": "Main Hand"},
				"quality": {"type": "LEGENDARY", "name": "Legendary"},
				"name": "Sulfuras, Hand of Ragnaros"
			}
		]
	}`)
	client.specs = ok(`{
		"specialization_groups": [
			{
				"is_active": true,
				"specializations": [
					{
						"specialization_name": "Fury",
						"spent_points": 31,
						"talents": [
							{"talent_rank": 5, "talent": {"id": 901}, "spell_tooltip": {"spell": {"id": 12321}}}
						]
					}
				]
			}
		]
	}`)
	store := &fakeCharacterStore{available: true}
	svc := newProfileService(t, client, store)

	profile, err := svc.GetProfile(context.Background(), "thrall", "whitemane", "us", false, true)
	require.NoError(t, err)

	assert.Equal(t, domain.GameTypeEra, profile.GameType)
	assert.Zero(t, client.achievementsCalls)
	assert.Nil(t, profile.Achievements)
	assert.Nil(t, profile.Gearscore)
	assert.Equal(t, 77, profile.ItemLevel)
	assert.Equal(t, domain.TalentEraClassic, profile.Talents.Era)
	require.Len(t, profile.Talents.Classic, 1)
	assert.Equal(t, "Fury", profile.Talents.Classic[0].Trees[0].Name)
}

func TestGetProfileCacheless(t *testing.T) {
	client := newFakeProfileAPI()
	store := &fakeCharacterStore{available: false}
	svc := newProfileService(t, client, store)

	profile, err := svc.GetProfile(context.Background(), "thrall", "benediction", "us", false, false)
	require.NoError(t, err)
	assert.Zero(t, store.upserts)
	assert.Equal(t, int64(0), profile.ID)
	assert.Nil(t, profile.Parse)
	assert.False(t, profile.UpdatedAt.IsZero())
}

func TestRecentRequiresCache(t *testing.T) {
	svc := newProfileService(t, newFakeProfileAPI(), &fakeCharacterStore{available: false})
	_, err := svc.Recent(context.Background())
	assert.ErrorIs(t, err, ErrCacheUnavailable)
}
