package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"archery-competition-system/models"
	"archery-competition-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// ExportVersion tags JSON exports so a future import can tell apart
// incompatible layouts.
const ExportVersion = "1.0"

type ExportService struct {
	DB *gorm.DB
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{DB: db}
}

// Snapshot is the full competition state as written to JSON exports and
// periodic backup files.
type Snapshot struct {
	Version    string `json:"version"`
	ExportDate string `json:"export_date"`
	Data       struct {
		Archers   []models.Archer       `json:"archers"`
		Series    []models.Series       `json:"series"`
		Results   []models.Result       `json:"results"`
		Overrides []models.RankOverride `json:"rank_overrides"`
	} `json:"data"`
}

// BuildSnapshot reads the whole competition state.
func (s *ExportService) BuildSnapshot() (*Snapshot, error) {
	snap := &Snapshot{
		Version:    ExportVersion,
		ExportDate: time.Now().Format(time.RFC3339),
	}
	if err := s.DB.Order("id").Find(&snap.Data.Archers).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Order("id").Find(&snap.Data.Series).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Order("id").Find(&snap.Data.Results).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Order("id").Find(&snap.Data.Overrides).Error; err != nil {
		return nil, err
	}
	return snap, nil
}

// SnapshotFilename builds a collision-free name for a snapshot file,
// e.g. "concours-salle-2026-08-30-1a2b3c4d.json".
func SnapshotFilename(competitionName string, t time.Time) string {
	base := slug.Make(competitionName)
	if base == "" {
		base = "competition"
	}
	short := uuid.NewString()[:8]
	return fmt.Sprintf("%s-%s-%s.json", base, t.Format("2006-01-02"), short)
}

// ExportJSON streams the full state as a downloadable JSON file.
func (s *ExportService) ExportJSON(c *fiber.Ctx) error {
	snap, err := s.BuildSnapshot()
	if err != nil {
		log.Printf("ERROR building export snapshot: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to build export"})
	}
	name := SnapshotFilename(os.Getenv("COMPETITION_NAME"), time.Now())
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.JSON(snap)
}

func writeCSV(c *fiber.Ctx, filename string, rows [][]string) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	w := csv.NewWriter(c)
	w.Comma = ';'
	return w.WriteAll(rows)
}

func intOrEmpty(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func uintOrEmpty(p *uint) string {
	if p == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*p), 10)
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ExportArchersCSV writes the archer list as semicolon-separated CSV, the
// format the federation's spreadsheets expect.
func (s *ExportService) ExportArchersCSV(c *fiber.Ctx) error {
	var archers []models.Archer
	if err := s.DB.Order("name, first_name").Find(&archers).Error; err != nil {
		log.Printf("ERROR exporting archers: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to export archers"})
	}

	seriesNumbers, err := s.seriesNumbersByID()
	if err != nil {
		log.Printf("ERROR exporting archers: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to export archers"})
	}

	rows := [][]string{{"Nom", "Prénom", "Licence", "Catégorie", "Arme", "Club", "Série", "Cible", "Position"}}
	for _, a := range archers {
		seriesNumber := ""
		if a.SeriesID != nil {
			if n, ok := seriesNumbers[*a.SeriesID]; ok {
				seriesNumber = strconv.Itoa(n)
			}
		}
		rows = append(rows, []string{
			a.Name, a.FirstName, a.License,
			models.CategoryName(a.Category), models.WeaponName(a.Weapon), a.Club,
			seriesNumber, intOrEmpty(a.TargetNumber), strOrEmpty(a.Position),
		})
	}
	return writeCSV(c, "archers.csv", rows)
}

func (s *ExportService) seriesNumbersByID() (map[uint]int, error) {
	var series []models.Series
	if err := s.DB.Find(&series).Error; err != nil {
		return nil, err
	}
	numbers := make(map[uint]int, len(series))
	for _, sr := range series {
		numbers[sr.ID] = sr.Number
	}
	return numbers, nil
}

// ExportResultsCSV writes every score with the archer or pair it belongs to.
func (s *ExportService) ExportResultsCSV(c *fiber.Ctx) error {
	var results []models.Result
	if err := s.DB.Order("id").Find(&results).Error; err != nil {
		log.Printf("ERROR exporting results: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to export results"})
	}
	var archers []models.Archer
	if err := s.DB.Find(&archers).Error; err != nil {
		log.Printf("ERROR exporting results: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to export results"})
	}
	byID := make(map[uint]models.Archer, len(archers))
	for _, a := range archers {
		byID[a.ID] = a
	}

	rows := [][]string{{"Type", "Archer/Équipe", "Licence", "Série", "Cible", "Score"}}
	for _, r := range results {
		if r.IsIndividual() {
			a := byID[*r.ArcherID]
			rows = append(rows, []string{
				"Individuel",
				a.Name + " " + a.FirstName,
				a.License,
				"", "",
				intOrEmpty(r.IndividualScore),
			})
			continue
		}
		if r.IsPair() {
			members := findPairArchers(archers, *r.SeriesID, *r.TargetNumber, *r.PairType)
			label := "Équipe " + *r.PairType
			for _, m := range members {
				label += " / " + m.Name
			}
			rows = append(rows, []string{
				"Doublette",
				label,
				"",
				uintOrEmpty(r.SeriesID),
				intOrEmpty(r.TargetNumber),
				intOrEmpty(r.PairScore),
			})
		}
	}
	return writeCSV(c, "resultats.csv", rows)
}

// ExportSeriesCSV writes series with their fill state.
func (s *ExportService) ExportSeriesCSV(c *fiber.Ctx) error {
	var series []models.Series
	if err := s.DB.Order("number").Find(&series).Error; err != nil {
		log.Printf("ERROR exporting series: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to export series"})
	}
	var archers []models.Archer
	if err := s.DB.Find(&archers).Error; err != nil {
		log.Printf("ERROR exporting series: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to export series"})
	}

	assigned := make(map[uint]int)
	for _, a := range archers {
		if a.SeriesID != nil {
			assigned[*a.SeriesID]++
		}
	}

	rows := [][]string{{"Série", "Cibles", "Archers inscrits", "Places"}}
	for _, sr := range series {
		rows = append(rows, []string{
			strconv.Itoa(sr.Number),
			strconv.Itoa(sr.NumberOfTargets),
			strconv.Itoa(assigned[sr.ID]),
			strconv.Itoa(sr.NumberOfTargets * 4),
		})
	}
	return writeCSV(c, "series.csv", rows)
}

// GetStats summarizes the competition for the settings screen.
func (s *ExportService) GetStats(c *fiber.Ctx) error {
	var archerCount, seriesCount, individualResults, pairResults, overrideCount int64
	if err := s.DB.Model(&models.Archer{}).Count(&archerCount).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute stats"})
	}
	if err := s.DB.Model(&models.Series{}).Count(&seriesCount).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute stats"})
	}
	if err := s.DB.Model(&models.Result{}).Where("archer_id IS NOT NULL").Count(&individualResults).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute stats"})
	}
	if err := s.DB.Model(&models.Result{}).Where("pair_type IS NOT NULL").Count(&pairResults).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute stats"})
	}
	if err := s.DB.Model(&models.RankOverride{}).Count(&overrideCount).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute stats"})
	}

	var clubs []string
	if err := s.DB.Model(&models.Archer{}).Where("club <> ''").Distinct("club").Pluck("club", &clubs).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute stats"})
	}

	var scores struct {
		MinScore   int
		MaxScore   int
		AvgScore   float64
		TotalScore int
	}
	err := s.DB.Model(&models.Result{}).
		Where("individual_score IS NOT NULL").
		Select("COALESCE(MIN(individual_score), 0) AS min_score, " +
			"COALESCE(MAX(individual_score), 0) AS max_score, " +
			"COALESCE(AVG(individual_score), 0) AS avg_score, " +
			"COALESCE(SUM(individual_score), 0) AS total_score").
		Scan(&scores).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute stats"})
	}

	return c.JSON(fiber.Map{
		"archers":                archerCount,
		"series":                 seriesCount,
		"individual_results":     individualResults,
		"pair_results":           pairResults,
		"rank_overrides":         overrideCount,
		"clubs":                  len(clubs),
		"individual_score_min":   scores.MinScore,
		"individual_score_max":   scores.MaxScore,
		"individual_score_avg":   scores.AvgScore,
		"individual_score_total": scores.TotalScore,
	})
}

// ResetCompetition wipes archers, series, results and rank overrides but
// keeps the category referential so a new competition can start at once.
func (s *ExportService) ResetCompetition(c *fiber.Ctx) error {
	type Req struct {
		Confirm bool `json:"confirm"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil || !req.Confirm {
		return c.Status(400).JSON(fiber.Map{"error": "reset requires {\"confirm\": true}"})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.RankOverride{}, &models.Result{}, &models.Archer{}, &models.Series{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("ERROR resetting competition: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to reset competition"})
	}

	log.Printf("competition data reset")
	return c.JSON(fiber.Map{"message": "competition reset"})
}

// WriteSnapshot builds the current snapshot and writes it to the local
// snapshots directory, optionally mirroring it to R2. Used by the periodic
// backup job.
func (s *ExportService) WriteSnapshot() (string, error) {
	snap, err := s.BuildSnapshot()
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}
	name := SnapshotFilename(os.Getenv("COMPETITION_NAME"), time.Now())
	path, err := utils.WriteSnapshotFile(name, data)
	if err != nil {
		return "", err
	}
	return path, nil
}
