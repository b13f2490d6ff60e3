package repository

import (
	"context"
	"testing"
	"time"

	"classic-armory/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGuild() *domain.Guild {
	return &domain.Guild{
		Name:        "earthen-ring",
		DisplayName: "Earthen Ring",
		Realm:       "benediction",
		Region:      "us",
		GameType:    domain.GameTypeNormal,
		Members: []domain.GuildMember{
			{Name: "Thrall", Level: 80, Race: 2, Class: 7, Rank: 0},
			{Name: "Rehgar", Level: 76, Race: 2, Class: 7, Rank: 3},
		},
	}
}

func TestGuildUpsertAndFind(t *testing.T) {
	store := newTestStore(t)
	repo := NewGuildRepository(store, zerolog.Nop())
	ctx := context.Background()

	stored, err := repo.Upsert(ctx, testGuild())
	require.NoError(t, err)
	assert.Positive(t, stored.ID)

	found, err := repo.Find(ctx, domain.CharacterKey{Name: "earthen-ring", Realm: "benediction", Region: "us", GameType: domain.GameTypeNormal})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Earthen Ring", found.DisplayName)
	require.Len(t, found.Members, 2)
	assert.Equal(t, "Thrall", found.Members[0].Name)
}

func TestGuildFindMiss(t *testing.T) {
	store := newTestStore(t)
	repo := NewGuildRepository(store, zerolog.Nop())

	found, err := repo.Find(context.Background(), domain.CharacterKey{Name: "nobody", Realm: "benediction", Region: "us", GameType: domain.GameTypeNormal})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestGuildUpsertReplacesRoster(t *testing.T) {
	store := newTestStore(t)
	repo := NewGuildRepository(store, zerolog.Nop())
	ctx := context.Background()

	first, err := repo.Upsert(ctx, testGuild())
	require.NoError(t, err)

	smaller := testGuild()
	smaller.Members = smaller.Members[:1]
	second, err := repo.Upsert(ctx, smaller)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	found, err := repo.Find(ctx, domain.CharacterKey{Name: "earthen-ring", Realm: "benediction", Region: "us", GameType: domain.GameTypeNormal})
	require.NoError(t, err)
	require.Len(t, found.Members, 1)
}

func TestGuildFindToleratesCorruptRoster(t *testing.T) {
	store := newTestStore(t)
	repo := NewGuildRepository(store, zerolog.Nop())
	ctx := context.Background()

	stored, err := repo.Upsert(ctx, testGuild())
	require.NoError(t, err)

	_, err = store.DB.ExecContext(ctx, `UPDATE guilds SET members = 'not json' WHERE id = ?`, stored.ID)
	require.NoError(t, err)

	found, err := repo.Find(ctx, domain.CharacterKey{Name: "earthen-ring", Realm: "benediction", Region: "us", GameType: domain.GameTypeNormal})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Empty(t, found.Members)
}

func TestGuildRecent(t *testing.T) {
	store := newTestStore(t)
	repo := NewGuildRepository(store, zerolog.Nop())
	ctx := context.Background()

	_, err := repo.Upsert(ctx, testGuild())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	other := testGuild()
	other.Name = "apes"
	other.DisplayName = "APES"
	_, err = repo.Upsert(ctx, other)
	require.NoError(t, err)

	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "apes", recent[0].Name)
}
