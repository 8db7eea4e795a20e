package services

import (
	"testing"

	"archery-competition-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archerEntityID(a models.Archer) string {
	return models.IndividualEntry{Archer: a}.RankEntityID()
}

func cacheWith(t *testing.T, rankingType, categoryKey string, ranks map[string]int) *OverrideCache {
	t.Helper()
	db := openTestDB(t)
	for entityID, rank := range ranks {
		require.NoError(t, upsertOverride(db, rankingType, categoryKey, entityID, rank))
	}
	cache, err := LoadOverrideCache(db)
	require.NoError(t, err)
	return cache
}

func entryNames(entries []models.IndividualEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Archer.Name
	}
	return names
}

func TestApplyOverridesScoreAlwaysWins(t *testing.T) {
	entries := []models.IndividualEntry{
		{Archer: models.Archer{ID: 1, Name: "Low"}, Score: 100},
		{Archer: models.Archer{ID: 2, Name: "High"}, Score: 200},
	}
	// An override on the lower score cannot move it past the higher one.
	cache := cacheWith(t, models.RankingIndividual, models.CategoryKeyAll, map[string]int{"1": 0})

	ordered := ApplyOverrides(entries, cache, models.RankingIndividual, models.CategoryKeyAll)
	assert.Equal(t, []string{"High", "Low"}, entryNames(ordered))
}

func TestApplyOverridesOrdersWithinTieBand(t *testing.T) {
	entries := []models.IndividualEntry{
		{Archer: models.Archer{ID: 1, Name: "A"}, Score: 100},
		{Archer: models.Archer{ID: 2, Name: "B"}, Score: 100},
		{Archer: models.Archer{ID: 3, Name: "C"}, Score: 100},
	}

	t.Run("no overrides keeps discovery order", func(t *testing.T) {
		cache := cacheWith(t, models.RankingIndividual, models.CategoryKeyAll, nil)
		ordered := ApplyOverrides(entries, cache, models.RankingIndividual, models.CategoryKeyAll)
		assert.Equal(t, []string{"A", "B", "C"}, entryNames(ordered))
	})

	t.Run("manual ranks interleave with discovery positions", func(t *testing.T) {
		// C's manual rank 0 collides with A's discovery index 0; the
		// overridden item wins. B's manual rank 5 is past every discovery
		// index, so B sorts last.
		cache := cacheWith(t, models.RankingIndividual, models.CategoryKeyAll, map[string]int{"3": 0, "2": 5})
		ordered := ApplyOverrides(entries, cache, models.RankingIndividual, models.CategoryKeyAll)
		assert.Equal(t, []string{"C", "A", "B"}, entryNames(ordered))
	})

	t.Run("a swapped pair leaves untouched peers in place", func(t *testing.T) {
		// B and C exchanged effective ranks; A kept its discovery index 0
		// and must stay first.
		cache := cacheWith(t, models.RankingIndividual, models.CategoryKeyAll, map[string]int{"2": 2, "3": 1})
		ordered := ApplyOverrides(entries, cache, models.RankingIndividual, models.CategoryKeyAll)
		assert.Equal(t, []string{"A", "C", "B"}, entryNames(ordered))
	})

	t.Run("overrides of another view are ignored", func(t *testing.T) {
		cache := cacheWith(t, models.RankingClub, models.CategoryKeyAll, map[string]int{"3": 0})
		ordered := ApplyOverrides(entries, cache, models.RankingIndividual, models.CategoryKeyAll)
		assert.Equal(t, []string{"A", "B", "C"}, entryNames(ordered))
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		cache := cacheWith(t, models.RankingIndividual, models.CategoryKeyAll, map[string]int{"3": 0})
		_ = ApplyOverrides(entries, cache, models.RankingIndividual, models.CategoryKeyAll)
		assert.Equal(t, []string{"A", "B", "C"}, entryNames(entries))
	})
}

func TestDecorateRows(t *testing.T) {
	entries := []models.IndividualEntry{
		{Archer: models.Archer{ID: 1, Name: "Solo"}, Score: 250},
		{Archer: models.Archer{ID: 2, Name: "TieA"}, Score: 200},
		{Archer: models.Archer{ID: 3, Name: "TieB"}, Score: 200},
		{Archer: models.Archer{ID: 4, Name: "TieC"}, Score: 200},
		{Archer: models.Archer{ID: 5, Name: "Last"}, Score: 150},
	}
	cache := cacheWith(t, models.RankingIndividual, models.CategoryKeyAll, map[string]int{"3": 0})
	ordered := ApplyOverrides(entries, cache, models.RankingIndividual, models.CategoryKeyAll)
	rows := DecorateRows(ordered, cache, models.RankingIndividual, models.CategoryKeyAll)
	require.Len(t, rows, 5)

	assert.Equal(t, 1, rows[0].DisplayRank)
	assert.False(t, rows[0].IsTied, "a lone score is not a tie band")

	// The 200 band: TieB first via its override, then TieA, TieC.
	assert.Equal(t, "TieB", rows[1].Item.Archer.Name)
	assert.True(t, rows[1].HasOverride)
	assert.True(t, rows[1].IsFirstInBand)
	assert.False(t, rows[1].IsLastInBand)
	assert.True(t, rows[2].IsTied)
	assert.False(t, rows[2].IsFirstInBand)
	assert.True(t, rows[3].IsLastInBand)

	assert.False(t, rows[4].IsTied)
	assert.Equal(t, 5, rows[4].DisplayRank)
}

func TestUpsertAndDeleteOverride(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, upsertOverride(db, models.RankingIndividual, "all", "7", 2))
	require.NoError(t, upsertOverride(db, models.RankingIndividual, "all", "7", 4))

	var rows []models.RankOverride
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1, "second upsert updates in place")
	assert.Equal(t, 4, rows[0].ManualRank)

	require.NoError(t, deleteOverride(db, models.RankingIndividual, "all", "7"))
	require.NoError(t, deleteOverride(db, models.RankingIndividual, "all", "7"), "deleting a missing override is a no-op")
	require.NoError(t, db.Find(&rows).Error)
	assert.Empty(t, rows)
}

// seedTiedTrio registers three archers all shooting the same score and
// returns the service. Discovery order is Alpha, Bravo, Charlie.
func seedTiedTrio(t *testing.T) (*RankingService, []models.Archer) {
	t.Helper()
	db := openTestDB(t)
	series := seedSeries(t, db, 1, models.DefaultTargetCount)
	names := []string{"Alpha", "Bravo", "Charlie"}
	positions := []string{"A", "B", "C"}
	archers := make([]models.Archer, len(names))
	for i, name := range names {
		archers[i] = seedArcher(t, db, models.Archer{
			Name: name, FirstName: "Test", License: name + "-lic",
			Category: "SHCL", Weapon: "CL", Club: "Lyon",
			SeriesID: &series.ID, TargetNumber: ptrTo(1), Position: &positions[i],
		})
		seedIndividualResult(t, db, archers[i].ID, 200)
	}
	return NewRankingService(db), archers
}

func orderedNames(t *testing.T, s *RankingService) []string {
	t.Helper()
	ordered, _, _, err := s.fetchOrdered(models.RankingIndividual, models.CategoryKeyAll)
	require.NoError(t, err)
	names := make([]string, len(ordered))
	for i, item := range ordered {
		names[i] = item.(models.IndividualEntry).Archer.Name
	}
	return names
}

func TestSwapRanks(t *testing.T) {
	s, archers := seedTiedTrio(t)
	bravoID := archerEntityID(archers[1])

	require.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, orderedNames(t, s))

	// Bravo moves up past Alpha.
	require.NoError(t, s.SwapRanks(models.RankingIndividual, models.CategoryKeyAll, bravoID, 1, -1))
	require.Equal(t, []string{"Bravo", "Alpha", "Charlie"}, orderedNames(t, s))

	// Moving Bravo back down restores the original order: the swap is a true
	// exchange, not an accumulation.
	require.NoError(t, s.SwapRanks(models.RankingIndividual, models.CategoryKeyAll, bravoID, 0, +1))
	require.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, orderedNames(t, s))
}

func TestSwapRanksAtEdgeIsNoop(t *testing.T) {
	s, archers := seedTiedTrio(t)

	require.NoError(t, s.SwapRanks(models.RankingIndividual, models.CategoryKeyAll, archerEntityID(archers[0]), 0, -1))
	require.NoError(t, s.SwapRanks(models.RankingIndividual, models.CategoryKeyAll, archerEntityID(archers[2]), 2, +1))

	var count int64
	require.NoError(t, s.DB.Model(&models.RankOverride{}).Count(&count).Error)
	assert.Zero(t, count, "edge moves write nothing")
}

func TestSwapRanksStalePosition(t *testing.T) {
	s, archers := seedTiedTrio(t)
	charlieID := archerEntityID(archers[2])

	// The operator acted on a stale row index; the engine relocates Charlie
	// by entity id and still swaps with the correct neighbor.
	require.NoError(t, s.SwapRanks(models.RankingIndividual, models.CategoryKeyAll, charlieID, 0, -1))
	require.Equal(t, []string{"Alpha", "Charlie", "Bravo"}, orderedNames(t, s))
}

func TestSwapRanksUnknownEntity(t *testing.T) {
	s, _ := seedTiedTrio(t)
	err := s.SwapRanks(models.RankingIndividual, models.CategoryKeyAll, "999", 0, -1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetRankRevertsToDiscoveryOrder(t *testing.T) {
	s, archers := seedTiedTrio(t)
	bravoID := archerEntityID(archers[1])

	require.NoError(t, s.SwapRanks(models.RankingIndividual, models.CategoryKeyAll, bravoID, 1, -1))
	require.Equal(t, []string{"Bravo", "Alpha", "Charlie"}, orderedNames(t, s))

	require.NoError(t, s.ResetRank(models.RankingIndividual, models.CategoryKeyAll, bravoID))
	require.NoError(t, s.ResetRank(models.RankingIndividual, models.CategoryKeyAll, archerEntityID(archers[0])))
	require.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, orderedNames(t, s))

	// Resetting again is a no-op.
	require.NoError(t, s.ResetRank(models.RankingIndividual, models.CategoryKeyAll, bravoID))
}

func TestSwapRanksInCategoryWeaponGroup(t *testing.T) {
	db := openTestDB(t)
	series := seedSeries(t, db, 1, models.DefaultTargetCount)
	dupont := seedArcher(t, db, models.Archer{
		Name: "Dupont", FirstName: "Jean", License: "123",
		Category: "SHCL", Weapon: "CL",
		SeriesID: &series.ID, TargetNumber: ptrTo(1), Position: ptrTo("A"),
	})
	martin := seedArcher(t, db, models.Archer{
		Name: "Martin", FirstName: "Paul", License: "124",
		Category: "SHCL", Weapon: "CL",
		SeriesID: &series.ID, TargetNumber: ptrTo(1), Position: ptrTo("B"),
	})
	seedIndividualResult(t, db, dupont.ID, 280)
	seedIndividualResult(t, db, martin.ID, 280)
	s := NewRankingService(db)

	key := models.CategoryWeaponKey("SHCL", "CL")
	require.NoError(t, s.SwapRanks(models.RankingIndividualByCategoryBow, key, archerEntityID(martin), 1, -1))

	ordered, _, _, err := s.fetchOrdered(models.RankingIndividualByCategoryBow, key)
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, archerEntityID(martin), ordered[0].RankEntityID())
	assert.Equal(t, archerEntityID(dupont), ordered[1].RankEntityID())

	// Both swapped entities carry a persisted override scoped to the group.
	var overrides []models.RankOverride
	require.NoError(t, db.Find(&overrides).Error)
	require.Len(t, overrides, 2)
	for _, o := range overrides {
		assert.Equal(t, models.RankingIndividualByCategoryBow, o.RankingType)
		assert.Equal(t, key, o.CategoryKey)
	}
}

func TestSwapRanksBoundedByScore(t *testing.T) {
	s, archers := seedTiedTrio(t)
	// Delta outscores everyone; no override on the trio can pass Delta.
	delta := seedArcher(t, s.DB, models.Archer{
		Name: "Delta", FirstName: "Test", License: "Delta-lic",
		Category: "SHCL", Weapon: "CL", Club: "Annecy",
	})
	seedIndividualResult(t, s.DB, delta.ID, 300)

	require.Equal(t, []string{"Delta", "Alpha", "Bravo", "Charlie"}, orderedNames(t, s))

	require.NoError(t, s.SwapRanks(models.RankingIndividual, models.CategoryKeyAll, archerEntityID(archers[0]), 1, -1))
	names := orderedNames(t, s)
	assert.Equal(t, "Delta", names[0], "an override never beats a strictly higher score")
}
