package services

import (
	"testing"

	"archery-competition-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archerAt(id uint, name, category, weapon, club string, seriesID uint, target int, position string) models.Archer {
	return models.Archer{
		ID: id, Name: name, FirstName: "Test", License: name + "-lic",
		Category: category, Weapon: weapon, Club: club,
		SeriesID: ptrTo(seriesID), TargetNumber: ptrTo(target), Position: ptrTo(position),
	}
}

func individualResult(archerID uint, score int) models.Result {
	return models.Result{ArcherID: ptrTo(archerID), IndividualScore: ptrTo(score)}
}

func pairResult(seriesID uint, target int, pairType string, score int) models.Result {
	return models.Result{
		SeriesID: ptrTo(seriesID), TargetNumber: ptrTo(target),
		PairType: ptrTo(pairType), PairScore: ptrTo(score),
	}
}

func TestCalculateIndividualRanking(t *testing.T) {
	archers := []models.Archer{
		archerAt(1, "Durand", "SHCL", "CL", "Lyon", 1, 1, "A"),
		archerAt(2, "Martin", "SHCL", "CL", "Lyon", 1, 1, "B"),
		archerAt(3, "Petit", "SFCL", "CL", "Annecy", 1, 2, "A"),
		archerAt(4, "Sans-Score", "SHCL", "CL", "Lyon", 1, 2, "B"),
	}
	results := []models.Result{
		individualResult(1, 250),
		individualResult(2, 280),
		individualResult(3, 250),
	}

	ranking := CalculateIndividualRanking(archers, results)
	require.Len(t, ranking, 3, "archers without a score do not rank")

	assert.Equal(t, "Martin", ranking[0].Archer.Name)
	assert.Equal(t, 280, ranking[0].Score)
	// Equal scores keep discovery order: Durand appears before Petit.
	assert.Equal(t, "Durand", ranking[1].Archer.Name)
	assert.Equal(t, "Petit", ranking[2].Archer.Name)
}

func TestCalculateIndividualRankingEmpty(t *testing.T) {
	assert.Empty(t, CalculateIndividualRanking(nil, nil))
	assert.Empty(t, CalculateIndividualRanking([]models.Archer{archerAt(1, "Durand", "SHCL", "CL", "", 1, 1, "A")}, nil))
}

func TestCalculateIndividualRankingByCategory(t *testing.T) {
	noCategory := archerAt(3, "Anonyme", "", "CL", "", 1, 2, "A")
	archers := []models.Archer{
		archerAt(1, "Durand", "SHCL", "CL", "Lyon", 1, 1, "A"),
		archerAt(2, "Petit", "SFCL", "CL", "Annecy", 1, 1, "B"),
		noCategory,
	}
	results := []models.Result{
		individualResult(1, 250),
		individualResult(2, 260),
		individualResult(3, 300),
	}

	byCategory := CalculateIndividualRankingByCategory(archers, results)
	require.Len(t, byCategory, 2, "archers without a category are excluded")
	require.Len(t, byCategory["SHCL"], 1)
	require.Len(t, byCategory["SFCL"], 1)
	assert.Equal(t, "Petit", byCategory["SFCL"][0].Archer.Name)
}

func TestCalculateIndividualRankingByCategoryWeapon(t *testing.T) {
	archers := []models.Archer{
		archerAt(1, "Durand", "SHCL", "CL", "Lyon", 1, 1, "A"),
		archerAt(2, "Martin", "SHCL", "CO", "Lyon", 1, 1, "B"),
		archerAt(3, "SansArme", "SHCL", "", "Lyon", 1, 2, "A"),
	}
	results := []models.Result{
		individualResult(1, 250),
		individualResult(2, 240),
		individualResult(3, 230),
	}

	groups := CalculateIndividualRankingByCategoryWeapon(archers, results)
	require.Len(t, groups, 2, "archers missing a weapon code are excluded")

	group, ok := groups["SHCL-CL"]
	require.True(t, ok)
	assert.Equal(t, "SHCL", group.Category)
	assert.Equal(t, "CL", group.Weapon)
	require.Len(t, group.Archers, 1)
	assert.Equal(t, "Durand", group.Archers[0].Archer.Name)
}

func TestCollectPairEntriesDeduplicates(t *testing.T) {
	results := []models.Result{
		pairResult(1, 3, models.PairTypeAC, 200),
		pairResult(1, 3, models.PairTypeAC, 210),
		pairResult(1, 3, models.PairTypeBD, 190),
	}

	entries := collectPairEntries(results, nil)
	require.Len(t, entries, 2, "one entry per (series, target, pair type)")
	assert.Equal(t, 200, entries[0].Score, "first recorded score wins within a duplicate")
}

func TestCalculatePairRankingWithoutArchers(t *testing.T) {
	// A pair score recorded before any archer sits on the target still ranks.
	results := []models.Result{pairResult(1, 5, models.PairTypeAC, 180)}

	ranking := CalculatePairRanking(results, nil)
	require.Len(t, ranking, 1)
	assert.Empty(t, ranking[0].Archers)
	assert.Equal(t, "1-5-AC", ranking[0].RankEntityID())
}

func TestCalculatePairRankingResolvesArchers(t *testing.T) {
	archers := []models.Archer{
		archerAt(1, "Durand", "SHCL", "CL", "Lyon", 1, 3, "A"),
		archerAt(2, "Martin", "SHCL", "CL", "Lyon", 1, 3, "C"),
		archerAt(3, "Petit", "SFCL", "CL", "Annecy", 1, 3, "B"),
		archerAt(4, "Autre", "SFCL", "CL", "Annecy", 2, 3, "A"),
	}
	results := []models.Result{
		pairResult(1, 3, models.PairTypeAC, 220),
		pairResult(1, 3, models.PairTypeBD, 150),
	}

	ranking := CalculatePairRanking(results, archers)
	require.Len(t, ranking, 2)
	require.Len(t, ranking[0].Archers, 2, "AC pair resolves positions A and C of that target only")
	assert.Equal(t, "Durand", ranking[0].Archers[0].Name)
	assert.Equal(t, "Martin", ranking[0].Archers[1].Name)
	require.Len(t, ranking[1].Archers, 1)
	assert.Equal(t, "Petit", ranking[1].Archers[0].Name)
}

func TestCalculatePairRankingByCategory(t *testing.T) {
	archers := []models.Archer{
		archerAt(1, "Durand", "SHCL", "CL", "Lyon", 1, 1, "A"),
		archerAt(2, "Petit", "SFCL", "CL", "Annecy", 1, 1, "C"),
	}
	results := []models.Result{
		pairResult(1, 1, models.PairTypeAC, 200),
		pairResult(1, 2, models.PairTypeAC, 250), // nobody on that target
	}

	byCategory := CalculatePairRankingByCategory(results, archers)
	require.Len(t, byCategory, 1, "pairs without resolved archers are excluded")
	// Mixed pair attributed to the first resolved archer's category.
	require.Len(t, byCategory["SHCL"], 1)
	assert.Equal(t, 200, byCategory["SHCL"][0].Score)
}

func TestCalculateClubRanking(t *testing.T) {
	archers := []models.Archer{
		archerAt(1, "Durand", "SHCL", "CL", "Lyon", 1, 1, "A"),
		archerAt(2, "Martin", "SHCL", "CL", "Lyon", 1, 1, "C"),
		archerAt(3, "Petit", "SFCL", "CL", "Annecy", 1, 2, "A"),
		archerAt(4, "SansClub", "SFCL", "CL", "", 1, 2, "B"),
	}
	results := []models.Result{
		individualResult(1, 120),
		individualResult(2, 130),
		individualResult(3, 200),
		individualResult(4, 300),
		pairResult(1, 1, models.PairTypeAC, 180),
	}

	ranking := CalculateClubRanking(archers, results)
	require.Len(t, ranking, 2, "archers without a club do not contribute")

	lyon := ranking[0]
	assert.Equal(t, "Lyon", lyon.Club)
	assert.Equal(t, 250, lyon.IndividualTotal)
	assert.Equal(t, 180, lyon.PairTotal)
	assert.Equal(t, 430, lyon.Total)

	annecy := ranking[1]
	assert.Equal(t, "Annecy", annecy.Club)
	assert.Equal(t, 200, annecy.Total)
}
