package gearscore

import (
	"testing"

	"classic-armory/internal/domain"

	"github.com/stretchr/testify/assert"
)

func item(slot, quality string, level int) domain.EquippedItem {
	return domain.EquippedItem{
		Slot:      domain.TypedName{Type: slot, Name: slot},
		Quality:   domain.TypedName{Type: quality, Name: quality},
		ItemLevel: &level,
	}
}

func TestGearScoreTwoHanderDoubledWithoutOffHand(t *testing.T) {
	items := []domain.EquippedItem{item("MAIN_HAND", "Rare", 250)}
	assert.Equal(t, 772, GearScore(items))
}

func TestGearScoreMainHandNotDoubledWithOffHand(t *testing.T) {
	items := []domain.EquippedItem{
		item("MAIN_HAND", "Rare", 250),
		item("OFF_HAND", "Common", 250),
	}
	assert.Equal(t, 386, GearScore(items))
}

func TestGearScoreEpicHead(t *testing.T) {
	items := []domain.EquippedItem{item("HEAD", "Epic", 264)}
	assert.Equal(t, 494, GearScore(items))
}

func TestGearScoreCommonContributesNothing(t *testing.T) {
	items := []domain.EquippedItem{item("CHEST", "Common", 264)}
	assert.Equal(t, 0, GearScore(items))
}

func TestGearScoreHeirloomContributesOne(t *testing.T) {
	items := []domain.EquippedItem{item("CHEST", "Heirloom", 1)}
	assert.Equal(t, 1, GearScore(items))
}

func TestGearScoreUnknownSlotSkipped(t *testing.T) {
	items := []domain.EquippedItem{item("TABARD", "Epic", 264)}
	assert.Equal(t, 0, GearScore(items))
}

func TestGearScoreNeverNegative(t *testing.T) {
	// A low level uncommon scores below zero on its own.
	items := []domain.EquippedItem{item("WRIST", "Uncommon", 5)}
	assert.Equal(t, 0, GearScore(items))
}

func TestGearScoreMissingLevelUsesDefault(t *testing.T) {
	withLevel := item("HEAD", "Epic", 264)
	noLevel := domain.EquippedItem{
		Slot:    domain.TypedName{Type: "WRIST", Name: "Wrist"},
		Quality: domain.TypedName{Type: "Uncommon", Name: "Uncommon"},
	}
	// The unresolved wrist scores negative at the default level and drags
	// the total down instead of being skipped.
	assert.Less(t, GearScore([]domain.EquippedItem{withLevel, noLevel}), GearScore([]domain.EquippedItem{withLevel}))
}

func TestGearScoreEmpty(t *testing.T) {
	assert.Equal(t, 0, GearScore(nil))
}

func TestItemLevelAverageRounds(t *testing.T) {
	items := []domain.EquippedItem{
		item("HEAD", "Epic", 251),
		item("CHEST", "Epic", 252),
	}
	assert.Equal(t, 252, ItemLevel(items))
}

func TestItemLevelIgnoresCosmeticSlots(t *testing.T) {
	shirt := item("BODY", "Common", 1)
	shirt.InventoryType = "SHIRT"
	items := []domain.EquippedItem{
		item("HEAD", "Epic", 264),
		shirt,
	}
	assert.Equal(t, 264, ItemLevel(items))
}

func TestItemLevelIgnoresUnresolvedItems(t *testing.T) {
	unresolved := domain.EquippedItem{
		Slot:    domain.TypedName{Type: "HEAD", Name: "Head"},
		Quality: domain.TypedName{Type: "Epic", Name: "Epic"},
	}
	items := []domain.EquippedItem{item("CHEST", "Epic", 264), unresolved}
	assert.Equal(t, 264, ItemLevel(items))
}

func TestItemLevelEmpty(t *testing.T) {
	assert.Equal(t, 0, ItemLevel(nil))
}
