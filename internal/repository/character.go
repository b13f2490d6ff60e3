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

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type CharacterRepository struct {
	store  *database.Store
	logger zerolog.Logger
}

func NewCharacterRepository(store *database.Store, logger zerolog.Logger) *CharacterRepository {
	return &CharacterRepository{store: store, logger: logger}
}

func (r *CharacterRepository) Available() bool {
	return r.store.Available()
}

// Find returns the cached profile for the key, or nil when no usable cache
// entry exists. A character row without metadata counts as a miss.
func (r *CharacterRepository) Find(ctx context.Context, key domain.CharacterKey) (*domain.Profile, error) {
	row := r.store.DB.QueryRowContext(ctx, `
		SELECT c.id, c.name, c.realm, c.region, c.game_type, c.race, c.gender,
		       c.class, c.level, c.guild, c.profile_image_url, c.gearscore,
		       c.item_level, c.achievement_points, c.honorable_kills,
		       c.created_at, c.updated_at,
		       m.items, m.talents, m.achievements, m.pvp, m.parse
		FROM characters c
		LEFT JOIN character_metadata m ON m.character_id = c.id
		WHERE c.name = ? AND c.realm = ? AND c.region = ? AND c.game_type = ?`,
		key.Name, key.Realm, key.Region, key.GameType)

	var (
		profile           domain.Profile
		guild             sql.NullString
		profileImageURL   sql.NullString
		gearscore         sql.NullInt64
		achievementPoints sql.NullInt64
		honorableKills    sql.NullInt64
		items             sql.NullString
		talents           sql.NullString
		achievements      sql.NullString
		pvp               sql.NullString
		parse             sql.NullString
	)

	err := row.Scan(
		&profile.ID, &profile.Name, &profile.Realm, &profile.Region, &profile.GameType,
		&profile.Race, &profile.Gender, &profile.Class, &profile.Level,
		&guild, &profileImageURL, &gearscore, &profile.ItemLevel,
		&achievementPoints, &honorableKills, &profile.CreatedAt, &profile.UpdatedAt,
		&items, &talents, &achievements, &pvp, &parse,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("name", key.Name).Msg("failed to query character")
		return nil, fmt.Errorf("failed to query character: %w", err)
	}
	if !items.Valid || !talents.Valid {
		r.logger.Debug().Str("name", key.Name).Msg("character row has no metadata, treating as miss")
		return nil, nil
	}

	profile.Guild = guild.String
	profile.ProfileImageURL = profileImageURL.String
	profile.Gearscore = nullableInt(gearscore)
	profile.AchievementPoints = nullableInt(achievementPoints)
	profile.HonorableKills = nullableInt(honorableKills)

	if err := json.Unmarshal([]byte(items.String), &profile.Items); err != nil {
		return nil, fmt.Errorf("failed to decode cached items: %w", err)
	}
	if err := json.Unmarshal([]byte(talents.String), &profile.Talents); err != nil {
		return nil, fmt.Errorf("failed to decode cached talents: %w", err)
	}
	if achievements.Valid {
		if err := json.Unmarshal([]byte(achievements.String), &profile.Achievements); err != nil {
			return nil, fmt.Errorf("failed to decode cached achievements: %w", err)
		}
	}
	if pvp.Valid {
		if err := json.Unmarshal([]byte(pvp.String), &profile.PvP); err != nil {
			return nil, fmt.Errorf("failed to decode cached pvp summary: %w", err)
		}
	}
	if parse.Valid {
		if err := json.Unmarshal([]byte(parse.String), &profile.Parse); err != nil {
			return nil, fmt.Errorf("failed to decode cached parse: %w", err)
		}
	}

	return &profile, nil
}

// Upsert writes the character row and its metadata in one transaction. The
// parse column is intentionally not touched here so a profile refresh never
// clobbers ranking data; the stored parse is read back and returned.
func (r *CharacterRepository) Upsert(ctx context.Context, character *domain.Character, meta *domain.Metadata) (*domain.Character, *domain.RankingParse, error) {
	itemsJSON, err := json.Marshal(meta.Items)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode items: %w", err)
	}
	talentsJSON, err := json.Marshal(meta.Talents)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode talents: %w", err)
	}
	achievementsJSON, err := marshalNullable(meta.Achievements)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode achievements: %w", err)
	}
	pvpJSON, err := marshalNullable(meta.PvP)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode pvp summary: %w", err)
	}

	tx, err := r.store.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	stored := *character

	err = tx.QueryRowContext(ctx, `
		INSERT INTO characters (
			name, realm, region, game_type, race, gender, class, level,
			guild, profile_image_url, gearscore, item_level,
			achievement_points, honorable_kills, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, realm, region, game_type) DO UPDATE SET
			race = excluded.race,
			gender = excluded.gender,
			class = excluded.class,
			level = excluded.level,
			guild = excluded.guild,
			profile_image_url = excluded.profile_image_url,
			gearscore = excluded.gearscore,
			item_level = excluded.item_level,
			achievement_points = excluded.achievement_points,
			honorable_kills = excluded.honorable_kills,
			updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at`,
		character.Name, character.Realm, character.Region, character.GameType,
		character.Race, character.Gender, character.Class, character.Level,
		nullableString(character.Guild), nullableString(character.ProfileImageURL),
		intPointer(character.Gearscore), character.ItemLevel,
		intPointer(character.AchievementPoints), intPointer(character.HonorableKills),
		now, now,
	).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", character.Name).Msg("failed to upsert character")
		return nil, nil, fmt.Errorf("failed to upsert character: %w", err)
	}

	metaID, err := gonanoid.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate metadata id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO character_metadata (
			id, character_id, items, talents, achievements, pvp, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (character_id) DO UPDATE SET
			items = excluded.items,
			talents = excluded.talents,
			achievements = excluded.achievements,
			pvp = excluded.pvp,
			updated_at = excluded.updated_at`,
		metaID, stored.ID, string(itemsJSON), string(talentsJSON),
		achievementsJSON, pvpJSON, now, now)
	if err != nil {
		r.logger.Error().Err(err).Str("name", character.Name).Msg("failed to upsert character metadata")
		return nil, nil, fmt.Errorf("failed to upsert character metadata: %w", err)
	}

	var parseJSON sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT parse FROM character_metadata WHERE character_id = ?`, stored.ID,
	).Scan(&parseJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read back parse: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit upsert: %w", err)
	}

	var parse *domain.RankingParse
	if parseJSON.Valid {
		if err := json.Unmarshal([]byte(parseJSON.String), &parse); err != nil {
			r.logger.Warn().Err(err).Str("name", character.Name).Msg("discarding undecodable cached parse")
			parse = nil
		}
	}

	return &stored, parse, nil
}

// UpdateParse replaces the stored ranking parse for a character.
func (r *CharacterRepository) UpdateParse(ctx context.Context, characterID int64, parse *domain.RankingParse) error {
	parseJSON, err := json.Marshal(parse)
	if err != nil {
		return fmt.Errorf("failed to encode parse: %w", err)
	}

	result, err := r.store.DB.ExecContext(ctx, `
		UPDATE character_metadata SET parse = ?, updated_at = ? WHERE character_id = ?`,
		string(parseJSON), time.Now().UTC(), characterID)
	if err != nil {
		r.logger.Error().Err(err).Int64("character_id", characterID).Msg("failed to update parse")
		return fmt.Errorf("failed to update parse: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("no metadata row for character %d", characterID)
	}
	return nil
}

// Recent lists the most recently refreshed characters.
func (r *CharacterRepository) Recent(ctx context.Context, limit int) ([]domain.Character, error) {
	rows, err := r.store.DB.QueryContext(ctx, `
		SELECT id, name, realm, region, game_type, race, gender, class, level,
		       guild, profile_image_url, gearscore, item_level,
		       achievement_points, honorable_kills, created_at, updated_at
		FROM characters
		ORDER BY updated_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent characters: %w", err)
	}
	defer rows.Close()

	var characters []domain.Character
	for rows.Next() {
		var (
			c                 domain.Character
			guild             sql.NullString
			profileImageURL   sql.NullString
			gearscore         sql.NullInt64
			achievementPoints sql.NullInt64
			honorableKills    sql.NullInt64
		)
		err := rows.Scan(
			&c.ID, &c.Name, &c.Realm, &c.Region, &c.GameType, &c.Race, &c.Gender,
			&c.Class, &c.Level, &guild, &profileImageURL, &gearscore, &c.ItemLevel,
			&achievementPoints, &honorableKills, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}
		c.Guild = guild.String
		c.ProfileImageURL = profileImageURL.String
		c.Gearscore = nullableInt(gearscore)
		c.AchievementPoints = nullableInt(achievementPoints)
		c.HonorableKills = nullableInt(honorableKills)
		characters = append(characters, c)
	}
	return characters, rows.Err()
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func intPointer(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func marshalNullable(v any) (any, error) {
	if v == nil || isNilPointer(v) {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func isNilPointer(v any) bool {
	switch p := v.(type) {
	case *domain.AchievementSummary:
		return p == nil
	case *domain.PvPSummary:
		return p == nil
	}
	return false
}
