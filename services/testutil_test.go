package services

import (
	"testing"

	"archery-competition-system/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTestDB returns a fresh in-memory database with the full schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Archer{},
		&models.Series{},
		&models.Result{},
		&models.RankOverride{},
		&models.Category{},
	))
	return db
}

func ptrTo[T any](v T) *T { return &v }

// seedArcher inserts an archer with an optional target assignment.
func seedArcher(t *testing.T, db *gorm.DB, archer models.Archer) models.Archer {
	t.Helper()
	require.NoError(t, db.Create(&archer).Error)
	return archer
}

func seedSeries(t *testing.T, db *gorm.DB, number, targets int) models.Series {
	t.Helper()
	series := models.Series{Number: number, NumberOfTargets: targets}
	require.NoError(t, db.Create(&series).Error)
	return series
}

func seedIndividualResult(t *testing.T, db *gorm.DB, archerID uint, score int) {
	t.Helper()
	require.NoError(t, db.Create(&models.Result{
		ArcherID:        &archerID,
		IndividualScore: &score,
	}).Error)
}

func seedPairResult(t *testing.T, db *gorm.DB, seriesID uint, targetNumber int, pairType string, score int) {
	t.Helper()
	require.NoError(t, db.Create(&models.Result{
		SeriesID:     &seriesID,
		TargetNumber: &targetNumber,
		PairType:     &pairType,
		PairScore:    &score,
	}).Error)
}
