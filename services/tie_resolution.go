package services

import (
	"errors"
	"sort"

	"archery-competition-system/models"

	"gorm.io/gorm"
)

type overrideKey struct {
	RankingType string
	CategoryKey string
	EntityID    string
}

// OverrideCache is a read-through snapshot of the rank_overrides table,
// loaded at the start of each ranking computation cycle and passed
// explicitly into every call that needs it. It is never kept between
// cycles, so a concurrent edit is picked up by the next recomputation.
type OverrideCache struct {
	ranks map[overrideKey]int
}

// LoadOverrideCache reads every persisted override into a fresh cache.
func LoadOverrideCache(db *gorm.DB) (*OverrideCache, error) {
	var rows []models.RankOverride
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	cache := &OverrideCache{ranks: make(map[overrideKey]int, len(rows))}
	for _, row := range rows {
		cache.ranks[overrideKey{row.RankingType, row.CategoryKey, row.EntityID}] = row.ManualRank
	}
	return cache, nil
}

// Lookup returns the manual rank stored for the entity, if any.
func (c *OverrideCache) Lookup(rankingType, categoryKey, entityID string) (int, bool) {
	rank, ok := c.ranks[overrideKey{rankingType, categoryKey, entityID}]
	return rank, ok
}

// effectiveRanks assigns every item its effective rank: the manual rank when
// an override exists, the item's discovery index otherwise. items must be in
// discovery order. Swaps exchange exactly these values, so the comparator
// and the swap write into the same rank space and a swap in the middle of a
// tie band cannot displace untouched peers.
func effectiveRanks[T models.RankedItem](items []T, cache *OverrideCache, rankingType, categoryKey string) map[string]int {
	ranks := make(map[string]int, len(items))
	for i, item := range items {
		if rank, ok := cache.Lookup(rankingType, categoryKey, item.RankEntityID()); ok {
			ranks[item.RankEntityID()] = rank
		} else {
			ranks[item.RankEntityID()] = i
		}
	}
	return ranks
}

// ApplyOverrides orders a discovery-ordered ranking list with the
// override-aware comparator:
//  1. raw score descending — an override can never move an item ahead of a
//     strictly higher score;
//  2. on equal scores, effective rank ascending (manual rank if overridden,
//     discovery index otherwise);
//  3. on equal effective ranks, the overridden item wins; otherwise the sort
//     is stable and discovery order holds.
func ApplyOverrides[T models.RankedItem](items []T, cache *OverrideCache, rankingType, categoryKey string) []T {
	effective := effectiveRanks(items, cache, rankingType, categoryKey)
	ordered := make([]T, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.RankScore() != b.RankScore() {
			return a.RankScore() > b.RankScore()
		}
		rankA, rankB := effective[a.RankEntityID()], effective[b.RankEntityID()]
		if rankA != rankB {
			return rankA < rankB
		}
		_, okA := cache.Lookup(rankingType, categoryKey, a.RankEntityID())
		_, okB := cache.Lookup(rankingType, categoryKey, b.RankEntityID())
		return okA && !okB
	})
	return ordered
}

// DecorateRows turns an ordered ranking into the display tuples consumed by
// the presentation layer. Consecutive items sharing a score form a tie band;
// only bands of two or more are flagged tied, and their edges are marked so
// the renderer can disable the out-of-band move controls.
func DecorateRows[T models.RankedItem](ordered []T, cache *OverrideCache, rankingType, categoryKey string) []models.RankedRow[T] {
	rows := make([]models.RankedRow[T], len(ordered))
	for i, item := range ordered {
		_, has := cache.Lookup(rankingType, categoryKey, item.RankEntityID())
		rows[i] = models.RankedRow[T]{
			DisplayRank: i + 1,
			Item:        item,
			HasOverride: has,
		}
	}
	for start := 0; start < len(ordered); {
		end := start + 1
		for end < len(ordered) && ordered[end].RankScore() == ordered[start].RankScore() {
			end++
		}
		if end-start >= 2 {
			for k := start; k < end; k++ {
				rows[k].IsTied = true
			}
			rows[start].IsFirstInBand = true
			rows[end-1].IsLastInBand = true
		}
		start = end
	}
	return rows
}

// upsertOverride updates the override row for the identity or inserts a new
// one.
func upsertOverride(db *gorm.DB, rankingType, categoryKey, entityID string, rank int) error {
	var row models.RankOverride
	err := db.Where("ranking_type = ? AND category_key = ? AND entity_id = ?",
		rankingType, categoryKey, entityID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&models.RankOverride{
			RankingType: rankingType,
			CategoryKey: categoryKey,
			EntityID:    entityID,
			ManualRank:  rank,
		}).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&row).Update("manual_rank", rank).Error
}

// deleteOverride removes the override row for the identity. A missing row is
// a no-op, not an error.
func deleteOverride(db *gorm.DB, rankingType, categoryKey, entityID string) error {
	return db.Where("ranking_type = ? AND category_key = ? AND entity_id = ?",
		rankingType, categoryKey, entityID).Delete(&models.RankOverride{}).Error
}
