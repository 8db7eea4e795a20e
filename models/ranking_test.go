package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRankingType(t *testing.T) {
	for _, valid := range []string{
		RankingIndividual, RankingIndividualByCategory, RankingIndividualByCategoryBow,
		RankingPair, RankingPairByCategory, RankingPairByCategoryBow, RankingClub,
	} {
		assert.True(t, ValidRankingType(valid), valid)
	}
	assert.False(t, ValidRankingType("teams"))
	assert.False(t, ValidRankingType(""))
}

func TestRankEntityIDs(t *testing.T) {
	assert.Equal(t, "42", IndividualEntry{Archer: Archer{ID: 42}}.RankEntityID())
	assert.Equal(t, "2-7-BD", PairEntry{SeriesID: 2, TargetNumber: 7, PairType: PairTypeBD}.RankEntityID())
	assert.Equal(t, "Lyon", ClubEntry{Club: "Lyon"}.RankEntityID())
}

func TestCategoryNameFallsBackToCode(t *testing.T) {
	assert.Equal(t, "Senior homme arc classique", CategoryName("SHCL"))
	assert.Equal(t, "XX", CategoryName("XX"))
	assert.Equal(t, "Arc Classique", WeaponName("CL"))
	assert.Equal(t, "??", WeaponName("??"))
}
