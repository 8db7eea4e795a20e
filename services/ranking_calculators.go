package services

import (
	"fmt"
	"sort"

	"archery-competition-system/models"
)

// The seven ranking calculators. All of them are pure: they take the full
// archer and result collections and return sorted lists without touching
// storage. Ties are NOT broken here — sorting is stable and equal scores
// keep their discovery order until the tie resolution engine is applied.

// findIndividualResult returns the first individual result recorded for the
// archer, which by the upsert rule of the result service is the only one.
func findIndividualResult(results []models.Result, archerID uint) *models.Result {
	for i := range results {
		r := &results[i]
		if r.IsIndividual() && *r.ArcherID == archerID {
			return r
		}
	}
	return nil
}

// findPairArchers resolves the archers of a pair structurally: the archers
// assigned to the same series and target whose position belongs to the pair
// type (A/C for AC, B/D for BD).
func findPairArchers(archers []models.Archer, seriesID uint, targetNumber int, pairType string) []models.Archer {
	var matched []models.Archer
	for _, a := range archers {
		if !a.AssignedTo(seriesID, targetNumber) || a.Position == nil {
			continue
		}
		p := *a.Position
		if pairType == models.PairTypeAC {
			if p == models.PositionA || p == models.PositionC {
				matched = append(matched, a)
			}
		} else {
			if p == models.PositionB || p == models.PositionD {
				matched = append(matched, a)
			}
		}
	}
	return matched
}

func sortIndividualEntries(entries []models.IndividualEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}

func sortPairEntries(entries []models.PairEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}

// CalculateIndividualRanking ranks every archer with a recorded individual
// score, all clubs and categories together.
func CalculateIndividualRanking(archers []models.Archer, results []models.Result) []models.IndividualEntry {
	var ranking []models.IndividualEntry
	for _, archer := range archers {
		if r := findIndividualResult(results, archer.ID); r != nil {
			ranking = append(ranking, models.IndividualEntry{Archer: archer, Score: *r.IndividualScore})
		}
	}
	sortIndividualEntries(ranking)
	return ranking
}

// CalculateIndividualRankingByCategory groups the individual ranking by
// category code. Archers without a category are excluded.
func CalculateIndividualRankingByCategory(archers []models.Archer, results []models.Result) map[string][]models.IndividualEntry {
	byCategory := make(map[string][]models.IndividualEntry)
	for _, archer := range archers {
		r := findIndividualResult(results, archer.ID)
		if r == nil || archer.Category == "" {
			continue
		}
		byCategory[archer.Category] = append(byCategory[archer.Category],
			models.IndividualEntry{Archer: archer, Score: *r.IndividualScore})
	}
	for _, entries := range byCategory {
		sortIndividualEntries(entries)
	}
	return byCategory
}

// CalculateIndividualRankingByCategoryWeapon groups the individual ranking by
// the category-weapon composite key. Archers missing either code are excluded.
func CalculateIndividualRankingByCategoryWeapon(archers []models.Archer, results []models.Result) map[string]models.CategoryWeaponGroup {
	groups := make(map[string]models.CategoryWeaponGroup)
	for _, archer := range archers {
		r := findIndividualResult(results, archer.ID)
		if r == nil || archer.Category == "" || archer.Weapon == "" {
			continue
		}
		key := models.CategoryWeaponKey(archer.Category, archer.Weapon)
		group, ok := groups[key]
		if !ok {
			group = models.CategoryWeaponGroup{Category: archer.Category, Weapon: archer.Weapon}
		}
		group.Archers = append(group.Archers, models.IndividualEntry{Archer: archer, Score: *r.IndividualScore})
		groups[key] = group
	}
	for key, group := range groups {
		sortIndividualEntries(group.Archers)
		groups[key] = group
	}
	return groups
}

// collectPairEntries scans results for pair scores, deduplicated by
// (seriesId, targetNumber, pairType) so each physical pair contributes one
// entry, and resolves the participating archers structurally.
func collectPairEntries(results []models.Result, archers []models.Archer) []models.PairEntry {
	var entries []models.PairEntry
	seen := make(map[string]bool)
	for i := range results {
		r := &results[i]
		if !r.IsPair() {
			continue
		}
		key := fmt.Sprintf("%d-%d-%s", *r.SeriesID, *r.TargetNumber, *r.PairType)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, models.PairEntry{
			SeriesID:     *r.SeriesID,
			TargetNumber: *r.TargetNumber,
			PairType:     *r.PairType,
			Score:        *r.PairScore,
			Archers:      findPairArchers(archers, *r.SeriesID, *r.TargetNumber, *r.PairType),
		})
	}
	return entries
}

// CalculatePairRanking ranks all pairs together. A pair whose positions have
// no archers yet still ranks, with an empty archer list.
func CalculatePairRanking(results []models.Result, archers []models.Archer) []models.PairEntry {
	ranking := collectPairEntries(results, archers)
	sortPairEntries(ranking)
	return ranking
}

// CalculatePairRankingByCategory groups pairs by the category of the first
// resolved archer. Attributing a mixed pair to its first archer is a known
// approximation carried over from the competition rules as applied so far;
// pairs with no resolved archers or a blank category are excluded.
func CalculatePairRankingByCategory(results []models.Result, archers []models.Archer) map[string][]models.PairEntry {
	byCategory := make(map[string][]models.PairEntry)
	for _, entry := range collectPairEntries(results, archers) {
		if len(entry.Archers) == 0 || entry.Archers[0].Category == "" {
			continue
		}
		category := entry.Archers[0].Category
		byCategory[category] = append(byCategory[category], entry)
	}
	for _, entries := range byCategory {
		sortPairEntries(entries)
	}
	return byCategory
}

// CalculatePairRankingByCategoryWeapon groups pairs by the first resolved
// archer's category-weapon composite key, same attribution rule as
// CalculatePairRankingByCategory.
func CalculatePairRankingByCategoryWeapon(results []models.Result, archers []models.Archer) map[string]models.PairCategoryWeaponGroup {
	groups := make(map[string]models.PairCategoryWeaponGroup)
	for _, entry := range collectPairEntries(results, archers) {
		if len(entry.Archers) == 0 {
			continue
		}
		first := entry.Archers[0]
		if first.Category == "" || first.Weapon == "" {
			continue
		}
		key := models.CategoryWeaponKey(first.Category, first.Weapon)
		group, ok := groups[key]
		if !ok {
			group = models.PairCategoryWeaponGroup{Category: first.Category, Weapon: first.Weapon}
		}
		group.Pairs = append(group.Pairs, entry)
		groups[key] = group
	}
	for key, group := range groups {
		sortPairEntries(group.Pairs)
		groups[key] = group
	}
	return groups
}

// CalculateClubRanking sums, per club, the individual scores of its archers
// plus the pair scores of pairs whose first resolved archer belongs to the
// club (same attribution rule as the grouped pair views).
func CalculateClubRanking(archers []models.Archer, results []models.Result) []models.ClubEntry {
	totals := make(map[string]*models.ClubEntry)
	var order []string

	bucket := func(club string) *models.ClubEntry {
		if entry, ok := totals[club]; ok {
			return entry
		}
		entry := &models.ClubEntry{Club: club}
		totals[club] = entry
		order = append(order, club)
		return entry
	}

	for _, archer := range archers {
		if archer.Club == "" {
			continue
		}
		if r := findIndividualResult(results, archer.ID); r != nil {
			bucket(archer.Club).IndividualTotal += *r.IndividualScore
		}
	}

	for _, entry := range collectPairEntries(results, archers) {
		if len(entry.Archers) == 0 || entry.Archers[0].Club == "" {
			continue
		}
		bucket(entry.Archers[0].Club).PairTotal += entry.Score
	}

	ranking := make([]models.ClubEntry, 0, len(order))
	for _, club := range order {
		entry := totals[club]
		entry.Total = entry.IndividualTotal + entry.PairTotal
		ranking = append(ranking, *entry)
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Total > ranking[j].Total
	})
	return ranking
}
