package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"classic-armory/internal/database"
	"classic-armory/internal/domain"

	"github.com/rs/zerolog"
)

type GuildRepository struct {
	store  *database.Store
	logger zerolog.Logger
}

func NewGuildRepository(store *database.Store, logger zerolog.Logger) *GuildRepository {
	return &GuildRepository{store: store, logger: logger}
}

func (r *GuildRepository) Available() bool {
	return r.store.Available()
}

// Find returns the cached guild for the key, or nil on a miss. A members
// column that fails to decode is logged and served as an empty roster rather
// than failing the lookup.
func (r *GuildRepository) Find(ctx context.Context, key domain.CharacterKey) (*domain.Guild, error) {
	row := r.store.DB.QueryRowContext(ctx, `
		SELECT id, name, display_name, realm, region, game_type, members, created_at, updated_at
		FROM guilds
		WHERE name = ? AND realm = ? AND region = ? AND game_type = ?`,
		key.Name, key.Realm, key.Region, key.GameType)

	var (
		guild   domain.Guild
		members string
	)
	err := row.Scan(
		&guild.ID, &guild.Name, &guild.DisplayName, &guild.Realm, &guild.Region,
		&guild.GameType, &members, &guild.CreatedAt, &guild.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("name", key.Name).Msg("failed to query guild")
		return nil, fmt.Errorf("failed to query guild: %w", err)
	}

	if err := json.Unmarshal([]byte(members), &guild.Members); err != nil {
		r.logger.Warn().Err(err).Str("name", key.Name).Msg("discarding undecodable guild roster")
		guild.Members = []domain.GuildMember{}
	}
	return &guild, nil
}

func (r *GuildRepository) Upsert(ctx context.Context, guild *domain.Guild) (*domain.Guild, error) {
	membersJSON, err := json.Marshal(guild.Members)
	if err != nil {
		return nil, fmt.Errorf("failed to encode guild roster: %w", err)
	}

	now := time.Now().UTC()
	stored := *guild

	err = r.store.DB.QueryRowContext(ctx, `
		INSERT INTO guilds (name, display_name, realm, region, game_type, members, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, realm, region, game_type) DO UPDATE SET
			display_name = excluded.display_name,
			members = excluded.members,
			updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at`,
		guild.Name, guild.DisplayName, guild.Realm, guild.Region, guild.GameType,
		string(membersJSON), now, now,
	).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", guild.Name).Msg("failed to upsert guild")
		return nil, fmt.Errorf("failed to upsert guild: %w", err)
	}

	return &stored, nil
}

// Recent lists the most recently refreshed guilds.
func (r *GuildRepository) Recent(ctx context.Context, limit int) ([]domain.Guild, error) {
	rows, err := r.store.DB.QueryContext(ctx, `
		SELECT id, name, display_name, realm, region, game_type, members, created_at, updated_at
		FROM guilds
		ORDER BY updated_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent guilds: %w", err)
	}
	defer rows.Close()

	var guilds []domain.Guild
	for rows.Next() {
		var (
			guild   domain.Guild
			members string
		)
		err := rows.Scan(
			&guild.ID, &guild.Name, &guild.DisplayName, &guild.Realm, &guild.Region,
			&guild.GameType, &members, &guild.CreatedAt, &guild.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guild: %w", err)
		}
		if err := json.Unmarshal([]byte(members), &guild.Members); err != nil {
			r.logger.Warn().Err(err).Str("name", guild.Name).Msg("discarding undecodable guild roster")
			guild.Members = []domain.GuildMember{}
		}
		guilds = append(guilds, guild)
	}
	return guilds, rows.Err()
}
