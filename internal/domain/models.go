package domain

import (
	"time"
)

// GameType partitions every entity by the rule-set instance it belongs to.
type GameType string

const (
	GameTypeNormal   GameType = "NORMAL"
	GameTypeSeasonal GameType = "SEASONAL"
	GameTypeEra      GameType = "ERA"
)

// Realms running the seasonal rule set. Everything else on the non-era
// namespace is normal classic progression.
var seasonalRealms = map[string]struct{}{
	"wild-growth":     {},
	"crusader-strike": {},
	"living-flame":    {},
	"lone-wolf":       {},
	"chaos-bolt":      {},
	"lava-lash":       {},
	"penance":         {},
	"shadowstrike":    {},
}

func GameTypeFor(realm string, era bool) GameType {
	if era {
		return GameTypeEra
	}
	if _, ok := seasonalRealms[realm]; ok {
		return GameTypeSeasonal
	}
	return GameTypeNormal
}

// CharacterKey uniquely identifies a character or guild record.
type CharacterKey struct {
	Name     string
	Realm    string
	Region   string
	GameType GameType
}

type Character struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Realm             string    `json:"realm"`
	Region            string    `json:"region"`
	GameType          GameType  `json:"game_type"`
	Race              int       `json:"race"`
	Gender            int       `json:"gender"`
	Class             int       `json:"class"`
	Level             int       `json:"level"`
	Guild             string    `json:"guild,omitempty"`
	ProfileImageURL   string    `json:"profile_image_url,omitempty"`
	Gearscore         *int      `json:"gearscore,omitempty"`
	ItemLevel         int       `json:"item_level"`
	AchievementPoints *int      `json:"achievement_points,omitempty"`
	HonorableKills    *int      `json:"honorable_kills,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (c *Character) Key() CharacterKey {
	return CharacterKey{Name: c.Name, Realm: c.Realm, Region: c.Region, GameType: c.GameType}
}

// TypedName is the {type, name} pair the upstream API uses for enums.
type TypedName struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type Enchantment struct {
	EnchantmentID int    `json:"enchantment_id"`
	SlotID        int    `json:"slot_id"`
	DisplayString string `json:"display_string,omitempty"`
	SourceItemID  *int   `json:"source_item_id,omitempty"`
}

type SetItem struct {
	ItemID     int  `json:"item_id"`
	IsEquipped bool `json:"is_equipped,omitempty"`
}

type ItemSet struct {
	Items []SetItem `json:"items"`
}

type EquippedItem struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	InventoryType string        `json:"inventory_type"`
	Slot          TypedName     `json:"slot"`
	Quality       TypedName     `json:"quality"`
	ItemLevel     *int          `json:"item_level,omitempty"`
	DisplayID     *int          `json:"display_id,omitempty"`
	Icon          string        `json:"icon,omitempty"`
	Enchantments  []Enchantment `json:"enchantments,omitempty"`
	Set           *ItemSet      `json:"set,omitempty"`
}

type Achievement struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type AchievementSummary struct {
	Achievements []Achievement `json:"achievements"`
}

type PvPMapStatistics struct {
	Map    string `json:"map"`
	Played int    `json:"played"`
	Won    int    `json:"wins"`
	Lost   int    `json:"losses"`
}

type PvPSummary struct {
	Rank           int                `json:"rank"`
	HonorableKills int                `json:"honorable_kills"`
	MapStatistics  []PvPMapStatistics `json:"map_stats,omitempty"`
}

type EncounterRanking struct {
	Name    string   `json:"encounter"`
	ID      int      `json:"id"`
	Percent *float64 `json:"percent,omitempty"`
}

// RankingParse records the outcome of the last ranking refresh. NoLogs marks
// the sentinel written when the fallback search exhausted without data; it
// still carries LastUpdated so repeated refreshes stay suppressed.
type RankingParse struct {
	NoLogs      bool               `json:"no_logs,omitempty"`
	SpecName    string             `json:"spec_name,omitempty"`
	Metric      string             `json:"metric,omitempty"`
	LastUpdated time.Time          `json:"last_updated"`
	Encounters  []EncounterRanking `json:"encounters,omitempty"`
}

// Metadata is the JSON side of a character record, persisted alongside the
// scalar columns.
type Metadata struct {
	Items        []EquippedItem      `json:"items"`
	Talents      Talents             `json:"talents"`
	Achievements *AchievementSummary `json:"achievements,omitempty"`
	PvP          *PvPSummary         `json:"pvp,omitempty"`
	Parse        *RankingParse       `json:"parse,omitempty"`
}

type Profile struct {
	Character
	Items        []EquippedItem      `json:"items"`
	Talents      Talents             `json:"talents"`
	Achievements *AchievementSummary `json:"achievements,omitempty"`
	PvP          *PvPSummary         `json:"pvp,omitempty"`
	Parse        *RankingParse       `json:"parse,omitempty"`
}

type GuildMember struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	Race  int    `json:"race"`
	Class int    `json:"class"`
	Rank  int    `json:"rank"`
}

type Guild struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	DisplayName string        `json:"display_name"`
	Realm       string        `json:"realm"`
	Region      string        `json:"region"`
	GameType    GameType      `json:"game_type"`
	Members     []GuildMember `json:"members"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
