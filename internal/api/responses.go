package api

// Upstream response shapes. Every payload is schema-validated before being
// decoded into these types, so optional pointers here mean "genuinely absent
// upstream", not "maybe malformed".

type AuthTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

type IDRef struct {
	ID int `json:"id"`
}

type TypedNameRef struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type EnchantmentResponse struct {
	DisplayString string `json:"display_string,omitempty"`
	SourceItem    *IDRef `json:"source_item,omitempty"`
	EnchantmentID int    `json:"enchantment_id"`
	EnchantmentSlot struct {
		ID int `json:"id"`
	} `json:"enchantment_slot"`
}

type SetItemResponse struct {
	Item       *IDRef `json:"item"`
	IsEquipped bool   `json:"is_equipped,omitempty"`
}

type ItemSetResponse struct {
	Items []*SetItemResponse `json:"items"`
}

type EquippedItemResponse struct {
	Item          IDRef                  `json:"item"`
	InventoryType TypedNameRef           `json:"inventory_type"`
	Enchantments  []*EnchantmentResponse `json:"enchantments,omitempty"`
	Slot          TypedNameRef           `json:"slot"`
	Quality       TypedNameRef           `json:"quality"`
	Name          string                 `json:"name"`
	Set           *ItemSetResponse       `json:"set,omitempty"`
}

type EquipmentResponse struct {
	EquippedItems []EquippedItemResponse `json:"equipped_items"`
}

type ProfileResponse struct {
	ID     int          `json:"id"`
	Name   string       `json:"name"`
	Gender TypedNameRef `json:"gender"`
	Faction TypedNameRef `json:"faction"`
	Race           IDRef `json:"race"`
	CharacterClass IDRef `json:"character_class"`
	Guild          *struct {
		Name string `json:"name"`
		ID   int    `json:"id"`
	} `json:"guild,omitempty"`
	Level             int  `json:"level"`
	AchievementPoints *int `json:"achievement_points,omitempty"`
}

type MediaResponse struct {
	Assets []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"assets,omitempty"`
}

type PvPResponse struct {
	PvPRank        int `json:"pvp_rank"`
	HonorableKills int `json:"honorable_kills"`
	PvPMapStatistics []struct {
		WorldMap struct {
			Name string `json:"name"`
		} `json:"world_map"`
		MatchStatistics struct {
			Played int `json:"played"`
			Won    int `json:"won"`
			Lost   int `json:"lost"`
		} `json:"match_statistics"`
	} `json:"pvp_map_statistics,omitempty"`
}

type SpellTooltipRef struct {
	Spell IDRef `json:"spell"`
}

type ModernTalentResponse struct {
	SpellTooltip SpellTooltipRef `json:"spell_tooltip"`
	Talent       IDRef           `json:"talent"`
}

type ModernSpecResponse struct {
	Specialization *struct {
		Name string `json:"name"`
	} `json:"specialization,omitempty"`
	Talents []ModernTalentResponse `json:"talents,omitempty"`
}

type ClassicTalentResponse struct {
	SpellTooltip SpellTooltipRef `json:"spell_tooltip"`
	TalentRank   int             `json:"talent_rank"`
	Talent       IDRef           `json:"talent"`
}

type ClassicSpecializationResponse struct {
	SpecializationName string                  `json:"specialization_name"`
	SpentPoints        int                     `json:"spent_points"`
	Talents            []ClassicTalentResponse `json:"talents,omitempty"`
}

type SpecGroupResponse struct {
	IsActive bool `json:"is_active"`
	Glyphs   []struct {
		Name string `json:"name"`
	} `json:"glyphs,omitempty"`
	Specializations []ClassicSpecializationResponse `json:"specializations,omitempty"`
}

// ModernSpecsResponse pairs each entry of Specializations with the group at
// the same index in SpecializationGroups (active flag, glyphs).
type ModernSpecsResponse struct {
	Specializations      []ModernSpecResponse `json:"specializations,omitempty"`
	SpecializationGroups []SpecGroupResponse  `json:"specialization_groups"`
}

type ClassicSpecsResponse struct {
	SpecializationGroups []SpecGroupResponse `json:"specialization_groups"`
}

type AchievementStatistic struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type AchievementCategory struct {
	ID            int                    `json:"id"`
	Name          string                 `json:"name"`
	Statistics    []AchievementStatistic `json:"statistics,omitempty"`
	SubCategories []AchievementCategory  `json:"sub_categories,omitempty"`
}

type AchievementsResponse struct {
	Categories []AchievementCategory `json:"categories,omitempty"`
}

type GuildMemberResponse struct {
	Character struct {
		Name          string `json:"name"`
		Level         int    `json:"level"`
		PlayableClass IDRef  `json:"playable_class"`
		PlayableRace  IDRef  `json:"playable_race"`
	} `json:"character"`
	Rank int `json:"rank"`
}

type GuildRosterResponse struct {
	Guild struct {
		Name string `json:"name"`
	} `json:"guild"`
	Members []GuildMemberResponse `json:"members"`
}
