// Package gearscore computes the aggregate gear score and average item
// level for an equipped item list.
package gearscore

import (
	"math"

	"classic-armory/internal/domain"
)

const (
	defaultItemLevel = 1
	scaleFactor      = 1.8618
)

var qualityMod = map[string]float64{
	"Legendary": 1.3,
}

var rarityModA = map[string]float64{
	"Uncommon":  73,
	"Rare":      81.375,
	"Epic":      91.45,
	"Legendary": 91.45,
	"Heirloom":  1,
}

var rarityModB = map[string]float64{
	"Uncommon":  1,
	"Heirloom":  1,
	"Rare":      0.8125,
	"Epic":      0.65,
	"Legendary": 0.65,
}

var slotMod = map[string]float64{
	"HEAD":      1,
	"NECK":      0.5625,
	"SHOULDER":  0.75,
	"BACK":      0.5625,
	"CHEST":     1,
	"WRIST":     0.5625,
	"HANDS":     0.75,
	"WAIST":     0.75,
	"LEGS":      1,
	"FEET":      0.75,
	"FINGER_1":  0.5625,
	"FINGER_2":  0.5625,
	"TRINKET_1": 0.5625,
	"TRINKET_2": 0.5625,
	"MAIN_HAND": 1,
	"OFF_HAND":  1,
	"RANGED":    0.3164,
	"IDOL":      0.5625,
}

// Slots that never carry stats and are excluded from the item level average.
var cosmeticInventoryTypes = map[string]bool{
	"SHIRT":  true,
	"TABARD": true,
	"BODY":   true,
}

// ItemLevel returns the rounded average item level over the stat-bearing
// equipped items, or 0 when none carry a resolved level.
func ItemLevel(items []domain.EquippedItem) int {
	var sum, count int
	for _, item := range items {
		if cosmeticInventoryTypes[item.InventoryType] {
			continue
		}
		if item.ItemLevel == nil {
			continue
		}
		sum += *item.ItemLevel
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}

// GearScore computes the total gear score across all equipped items. A
// two-handed weapon counts double when the off hand is empty.
func GearScore(items []domain.EquippedItem) int {
	offHandEquipped := false
	for _, item := range items {
		if item.Slot.Type == "OFF_HAND" {
			offHandEquipped = true
			break
		}
	}

	total := 0.0
	for _, item := range items {
		double := item.Slot.Type == "MAIN_HAND" && !offHandEquipped
		total += itemScore(item, double)
	}
	if total < 0 {
		return 0
	}
	return int(total)
}

func itemScore(item domain.EquippedItem, double bool) float64 {
	rarity := item.Quality.Name
	if rarity == "Common" {
		return 0
	}
	if rarity == "Heirloom" {
		return 1
	}

	slot, ok := slotMod[item.Slot.Type]
	if !ok {
		return 0
	}
	if double {
		slot *= 2
	}
	modA, okA := rarityModA[rarity]
	modB, okB := rarityModB[rarity]
	if !okA || !okB {
		return 0
	}

	level := defaultItemLevel
	if item.ItemLevel != nil {
		level = *item.ItemLevel
	}

	quality := 1.0
	if q, ok := qualityMod[rarity]; ok {
		quality = q
	}

	score := ((float64(level) - modA) / modB) * slot * scaleFactor * quality
	return math.Floor(score)
}
