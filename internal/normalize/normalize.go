// Package normalize projects upstream API payloads into the domain model.
// Every function here is pure; malformed or partial fragments are dropped,
// never errored on.
package normalize

import (
	"classic-armory/internal/api"
	"classic-armory/internal/domain"
	"classic-armory/internal/itemdata"
)

// EquippedItems merges the equipment payload with the static item dataset.
// Items missing from the dataset keep a nil level so they stay out of the
// item level average.
func EquippedItems(equipment *api.EquipmentResponse, info map[int]itemdata.Item) []domain.EquippedItem {
	items := make([]domain.EquippedItem, 0, len(equipment.EquippedItems))
	for _, raw := range equipment.EquippedItems {
		item := domain.EquippedItem{
			ID:            raw.Item.ID,
			Name:          raw.Name,
			InventoryType: raw.InventoryType.Type,
			Slot:          domain.TypedName{Type: raw.Slot.Type, Name: raw.Slot.Name},
			Quality:       domain.TypedName{Type: raw.Quality.Type, Name: raw.Quality.Name},
			Enchantments:  Enchantments(raw.Enchantments),
			Set:           Set(raw.Set),
		}
		if data, ok := info[raw.Item.ID]; ok {
			level := data.ItemLevel
			item.ItemLevel = &level
			item.DisplayID = data.DisplayID
			item.Icon = data.Icon
		}
		items = append(items, item)
	}
	return items
}

// Enchantments drops null entries and keeps only the fields the profile
// exposes.
func Enchantments(raw []*api.EnchantmentResponse) []domain.Enchantment {
	if len(raw) == 0 {
		return nil
	}
	enchantments := make([]domain.Enchantment, 0, len(raw))
	for _, e := range raw {
		if e == nil {
			continue
		}
		enchantment := domain.Enchantment{
			EnchantmentID: e.EnchantmentID,
			SlotID:        e.EnchantmentSlot.ID,
			DisplayString: e.DisplayString,
		}
		if e.SourceItem != nil {
			id := e.SourceItem.ID
			enchantment.SourceItemID = &id
		}
		enchantments = append(enchantments, enchantment)
	}
	if len(enchantments) == 0 {
		return nil
	}
	return enchantments
}

// Set projects an item set reference. A set with any null member is discarded
// whole rather than reported with missing pieces.
func Set(raw *api.ItemSetResponse) *domain.ItemSet {
	if raw == nil {
		return nil
	}
	items := make([]domain.SetItem, 0, len(raw.Items))
	for _, member := range raw.Items {
		if member == nil || member.Item == nil {
			return nil
		}
		items = append(items, domain.SetItem{ItemID: member.Item.ID, IsEquipped: member.IsEquipped})
	}
	return &domain.ItemSet{Items: items}
}

// ClassicSpecs projects the tree-format talent payload. Groups without
// specializations and trees without talents are skipped.
func ClassicSpecs(raw *api.ClassicSpecsResponse) []domain.ClassicSpec {
	if raw == nil {
		return nil
	}
	specs := make([]domain.ClassicSpec, 0, len(raw.SpecializationGroups))
	for _, group := range raw.SpecializationGroups {
		if len(group.Specializations) == 0 {
			continue
		}
		spec := domain.ClassicSpec{
			IsActive: group.IsActive,
			Glyphs:   glyphNames(group),
		}
		for _, tree := range group.Specializations {
			if len(tree.Talents) == 0 {
				continue
			}
			talents := make([]domain.ClassicTalent, 0, len(tree.Talents))
			for _, t := range tree.Talents {
				talents = append(talents, domain.ClassicTalent{
					SpellID:  t.SpellTooltip.Spell.ID,
					TalentID: t.Talent.ID,
					Rank:     t.TalentRank,
				})
			}
			spec.Trees = append(spec.Trees, domain.TalentTree{
				Name:        tree.SpecializationName,
				PointsSpent: tree.SpentPoints,
				Talents:     talents,
			})
		}
		specs = append(specs, spec)
	}
	return specs
}

// ModernSpecs pairs each specialization with the group at the same index,
// which carries the active flag and glyphs.
func ModernSpecs(raw *api.ModernSpecsResponse) []domain.ModernSpec {
	if raw == nil {
		return nil
	}
	specs := make([]domain.ModernSpec, 0, len(raw.Specializations))
	for i, rawSpec := range raw.Specializations {
		spec := domain.ModernSpec{}
		if rawSpec.Specialization != nil {
			spec.Name = rawSpec.Specialization.Name
		}
		if i < len(raw.SpecializationGroups) {
			group := raw.SpecializationGroups[i]
			spec.IsActive = group.IsActive
			spec.Glyphs = glyphNames(group)
		}
		for _, t := range rawSpec.Talents {
			spec.Talents = append(spec.Talents, domain.ModernTalent{
				SpellID:  t.SpellTooltip.Spell.ID,
				TalentID: t.Talent.ID,
			})
		}
		specs = append(specs, spec)
	}
	return specs
}

func glyphNames(group api.SpecGroupResponse) []string {
	if len(group.Glyphs) == 0 {
		return nil
	}
	names := make([]string, 0, len(group.Glyphs))
	for _, g := range group.Glyphs {
		names = append(names, g.Name)
	}
	return names
}

const (
	deathsCategoryID  = 122
	deathsStatisticID = 60
	raidCategoryID    = 14807
	raidSubCategoryID = 15096
)

// Achievements extracts the two statistics the profile surfaces from the full
// category tree: total deaths and raid boss kills.
func Achievements(raw *api.AchievementsResponse) *domain.AchievementSummary {
	if raw == nil {
		return nil
	}
	summary := &domain.AchievementSummary{Achievements: []domain.Achievement{}}
	for _, category := range raw.Categories {
		switch category.ID {
		case deathsCategoryID:
			for _, stat := range category.Statistics {
				if stat.ID == deathsStatisticID {
					summary.Achievements = append(summary.Achievements, domain.Achievement{
						ID:       deathsCategoryID,
						Name:     stat.Name,
						Quantity: stat.Quantity,
					})
				}
			}
		case raidCategoryID:
			for _, sub := range category.SubCategories {
				if sub.ID != raidSubCategoryID {
					continue
				}
				for _, stat := range sub.Statistics {
					summary.Achievements = append(summary.Achievements, domain.Achievement{
						ID:       stat.ID,
						Name:     stat.Name,
						Quantity: stat.Quantity,
					})
				}
			}
		}
	}
	return summary
}

func PvP(raw *api.PvPResponse) *domain.PvPSummary {
	if raw == nil {
		return nil
	}
	summary := &domain.PvPSummary{
		Rank:           raw.PvPRank,
		HonorableKills: raw.HonorableKills,
	}
	for _, stat := range raw.PvPMapStatistics {
		summary.MapStatistics = append(summary.MapStatistics, domain.PvPMapStatistics{
			Map:    stat.WorldMap.Name,
			Played: stat.MatchStatistics.Played,
			Won:    stat.MatchStatistics.Won,
			Lost:   stat.MatchStatistics.Lost,
		})
	}
	return summary
}

func GuildMembers(raw *api.GuildRosterResponse) []domain.GuildMember {
	members := make([]domain.GuildMember, 0, len(raw.Members))
	for _, m := range raw.Members {
		members = append(members, domain.GuildMember{
			Name:  m.Character.Name,
			Level: m.Character.Level,
			Race:  m.Character.PlayableRace.ID,
			Class: m.Character.PlayableClass.ID,
			Rank:  m.Rank,
		})
	}
	return members
}
