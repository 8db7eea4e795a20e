package services

import (
	"errors"
	"log"

	"archery-competition-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SeriesService struct {
	DB *gorm.DB
}

func NewSeriesService(db *gorm.DB) *SeriesService {
	return &SeriesService{DB: db}
}

func (s *SeriesService) CreateSeries(c *fiber.Ctx) error {
	type Req struct {
		Number          int `json:"number"`
		NumberOfTargets int `json:"number_of_targets"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Number < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "number must be >= 1"})
	}
	if req.NumberOfTargets == 0 {
		req.NumberOfTargets = models.DefaultTargetCount
	}
	if req.NumberOfTargets < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "number_of_targets must be >= 1"})
	}

	var existing models.Series
	err := s.DB.Where("number = ?", req.Number).First(&existing).Error
	if err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "series number already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("ERROR checking series %d: %v", req.Number, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create series"})
	}

	series := models.Series{Number: req.Number, NumberOfTargets: req.NumberOfTargets}
	if err := s.DB.Create(&series).Error; err != nil {
		log.Printf("ERROR creating series %d: %v", req.Number, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create series"})
	}
	return c.Status(201).JSON(series)
}

func (s *SeriesService) GetAllSeries(c *fiber.Ctx) error {
	var series []models.Series
	if err := s.DB.Order("number").Find(&series).Error; err != nil {
		log.Printf("ERROR listing series: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list series"})
	}
	return c.JSON(fiber.Map{"series": series})
}

// TargetOccupancy is one target of a series with its booked positions.
type TargetOccupancy struct {
	TargetNumber int                       `json:"target_number"`
	Positions    map[string]*models.Archer `json:"positions"`
}

// GetSeriesTargets reports, target by target, which positions are taken.
// The registration form uses this to offer only free slots.
func (s *SeriesService) GetSeriesTargets(c *fiber.Ctx) error {
	var series models.Series
	if err := s.DB.First(&series, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "series not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to load series"})
	}

	var archers []models.Archer
	if err := s.DB.Where("series_id = ?", series.ID).Find(&archers).Error; err != nil {
		log.Printf("ERROR loading archers of series %d: %v", series.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to load series targets"})
	}

	targets := make([]TargetOccupancy, series.NumberOfTargets)
	for i := range targets {
		targets[i] = TargetOccupancy{
			TargetNumber: i + 1,
			Positions:    make(map[string]*models.Archer, 4),
		}
	}
	for i := range archers {
		a := &archers[i]
		if a.TargetNumber == nil || a.Position == nil {
			continue
		}
		n := *a.TargetNumber
		if n < 1 || n > series.NumberOfTargets {
			continue
		}
		targets[n-1].Positions[*a.Position] = a
	}

	return c.JSON(fiber.Map{"series": series, "targets": targets})
}

// DeleteSeries removes a series and unassigns its archers. The archers
// themselves stay registered.
func (s *SeriesService) DeleteSeries(c *fiber.Ctx) error {
	var series models.Series
	if err := s.DB.First(&series, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "series not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to load series"})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Archer{}).Where("series_id = ?", series.ID).Updates(map[string]interface{}{
			"series_id":     nil,
			"target_number": nil,
			"position":      nil,
		}).Error
		if err != nil {
			return err
		}
		if err := tx.Where("series_id = ?", series.ID).Delete(&models.Result{}).Error; err != nil {
			return err
		}
		return tx.Delete(&series).Error
	})
	if err != nil {
		log.Printf("ERROR deleting series %d: %v", series.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete series"})
	}
	return c.JSON(fiber.Map{"message": "series deleted"})
}
