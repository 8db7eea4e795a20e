package services

import (
	"errors"
	"fmt"
	"log"

	"archery-competition-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ResultService struct {
	DB *gorm.DB
}

func NewResultService(db *gorm.DB) *ResultService {
	return &ResultService{DB: db}
}

// SubmitResult records one score. A result is either individual (archer_id
// plus individual_score) or pair (series_id, target_number, pair_type plus
// pair_score), never both. Submitting again for the same identity replaces
// the previous score.
func (s *ResultService) SubmitResult(c *fiber.Ctx) error {
	type Req struct {
		ArcherID        *uint   `json:"archer_id"`
		IndividualScore *int    `json:"individual_score"`
		SeriesID        *uint   `json:"series_id"`
		TargetNumber    *int    `json:"target_number"`
		PairType        *string `json:"pair_type"`
		PairScore       *int    `json:"pair_score"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	individual := req.ArcherID != nil || req.IndividualScore != nil
	pair := req.SeriesID != nil || req.TargetNumber != nil || req.PairType != nil || req.PairScore != nil
	if individual == pair {
		return c.Status(400).JSON(fiber.Map{"error": "submit either an individual result or a pair result"})
	}

	if individual {
		if req.ArcherID == nil || req.IndividualScore == nil {
			return c.Status(400).JSON(fiber.Map{"error": "archer_id and individual_score are required"})
		}
		if *req.IndividualScore < 0 || *req.IndividualScore > models.MaxIndividualScore {
			return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("individual_score must be between 0 and %d", models.MaxIndividualScore)})
		}
		var archer models.Archer
		if err := s.DB.First(&archer, "id = ?", *req.ArcherID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(404).JSON(fiber.Map{"error": "archer not found"})
			}
			return c.Status(500).JSON(fiber.Map{"error": "failed to save result"})
		}

		result, err := s.upsertIndividual(*req.ArcherID, *req.IndividualScore)
		if err != nil {
			log.Printf("ERROR saving individual result for archer %d: %v", *req.ArcherID, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to save result"})
		}
		return c.Status(201).JSON(result)
	}

	if req.SeriesID == nil || req.TargetNumber == nil || req.PairType == nil || req.PairScore == nil {
		return c.Status(400).JSON(fiber.Map{"error": "series_id, target_number, pair_type and pair_score are required"})
	}
	if !models.ValidPairType(*req.PairType) {
		return c.Status(400).JSON(fiber.Map{"error": "pair_type must be AC or BD"})
	}
	if *req.PairScore < 0 || *req.PairScore > models.MaxPairScore {
		return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("pair_score must be between 0 and %d", models.MaxPairScore)})
	}
	var series models.Series
	if err := s.DB.First(&series, "id = ?", *req.SeriesID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "series not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to save result"})
	}
	if *req.TargetNumber < 1 || *req.TargetNumber > series.NumberOfTargets {
		return c.Status(400).JSON(fiber.Map{"error": "target_number is out of range for that series"})
	}

	result, err := s.upsertPair(*req.SeriesID, *req.TargetNumber, *req.PairType, *req.PairScore)
	if err != nil {
		log.Printf("ERROR saving pair result %d/%d/%s: %v", *req.SeriesID, *req.TargetNumber, *req.PairType, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to save result"})
	}
	return c.Status(201).JSON(result)
}

func (s *ResultService) upsertIndividual(archerID uint, score int) (*models.Result, error) {
	var result models.Result
	err := s.DB.Where("archer_id = ?", archerID).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		result = models.Result{ArcherID: &archerID, IndividualScore: &score}
		if err := s.DB.Create(&result).Error; err != nil {
			return nil, err
		}
		return &result, nil
	}
	if err != nil {
		return nil, err
	}
	result.IndividualScore = &score
	if err := s.DB.Save(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *ResultService) upsertPair(seriesID uint, targetNumber int, pairType string, score int) (*models.Result, error) {
	var result models.Result
	err := s.DB.Where("series_id = ? AND target_number = ? AND pair_type = ?", seriesID, targetNumber, pairType).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		result = models.Result{SeriesID: &seriesID, TargetNumber: &targetNumber, PairType: &pairType, PairScore: &score}
		if err := s.DB.Create(&result).Error; err != nil {
			return nil, err
		}
		return &result, nil
	}
	if err != nil {
		return nil, err
	}
	result.PairScore = &score
	if err := s.DB.Save(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// ResultView is a result joined with its archer or pair members for display.
type ResultView struct {
	Result  models.Result   `json:"result"`
	Archer  *models.Archer  `json:"archer,omitempty"`
	Members []models.Archer `json:"members,omitempty"`
}

func (s *ResultService) GetAllResults(c *fiber.Ctx) error {
	var results []models.Result
	if err := s.DB.Order("id").Find(&results).Error; err != nil {
		log.Printf("ERROR listing results: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list results"})
	}
	var archers []models.Archer
	if err := s.DB.Find(&archers).Error; err != nil {
		log.Printf("ERROR listing archers: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list results"})
	}

	byID := make(map[uint]*models.Archer, len(archers))
	for i := range archers {
		byID[archers[i].ID] = &archers[i]
	}

	views := make([]ResultView, 0, len(results))
	for _, r := range results {
		view := ResultView{Result: r}
		if r.IsIndividual() {
			view.Archer = byID[*r.ArcherID]
		} else if r.IsPair() {
			view.Members = findPairArchers(archers, *r.SeriesID, *r.TargetNumber, *r.PairType)
		}
		views = append(views, view)
	}
	return c.JSON(fiber.Map{"results": views})
}

func (s *ResultService) DeleteResult(c *fiber.Ctx) error {
	res := s.DB.Delete(&models.Result{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		log.Printf("ERROR deleting result %s: %v", c.Params("id"), res.Error)
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete result"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "result not found"})
	}
	return c.JSON(fiber.Map{"message": "result deleted"})
}
