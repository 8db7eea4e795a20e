package services

import (
	"errors"
	"log"
	"strings"

	"archery-competition-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ArcherService struct {
	DB *gorm.DB
}

func NewArcherService(db *gorm.DB) *ArcherService {
	return &ArcherService{DB: db}
}

// ArcherInput is one archer as submitted by the registration form.
type ArcherInput struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	License   string `json:"license"`
	Category  string `json:"category"`
	Weapon    string `json:"weapon"`
	Club      string `json:"club"`
}

func (in *ArcherInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return errors.New("first_name is required")
	}
	if strings.TrimSpace(in.License) == "" {
		return errors.New("license is required")
	}
	return nil
}

// findOrCreateSeries resolves a series by its number, creating it with the
// default target count when the competition has not used that series yet.
func findOrCreateSeries(tx *gorm.DB, number int) (*models.Series, error) {
	var series models.Series
	err := tx.Where("number = ?", number).First(&series).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		series = models.Series{Number: number, NumberOfTargets: models.DefaultTargetCount}
		if err := tx.Create(&series).Error; err != nil {
			return nil, err
		}
		return &series, nil
	}
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// RegisterArchers books between one and four archers onto a single target.
// The whole registration is one transaction: either every submitted archer
// is created and assigned, or none is.
func (s *ArcherService) RegisterArchers(c *fiber.Ctx) error {
	type Req struct {
		SeriesNumber int                     `json:"series_number"`
		TargetNumber int                     `json:"target_number"`
		Positions    map[string]*ArcherInput `json:"positions"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.SeriesNumber < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "series_number must be >= 1"})
	}
	if req.TargetNumber < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "target_number must be >= 1"})
	}

	submitted := make(map[string]*ArcherInput)
	for pos, in := range req.Positions {
		if in == nil {
			continue
		}
		if !models.ValidPosition(pos) {
			return c.Status(400).JSON(fiber.Map{"error": "position must be one of A, B, C, D"})
		}
		if err := in.validate(); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error(), "position": pos})
		}
		submitted[pos] = in
	}
	if len(submitted) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "at least one archer is required"})
	}

	// Deterministic duplicate-license responses instead of a raw unique
	// constraint failure from the driver.
	for pos, in := range submitted {
		var count int64
		if err := s.DB.Model(&models.Archer{}).Where("license = ?", in.License).Count(&count).Error; err != nil {
			log.Printf("ERROR checking license %s: %v", in.License, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to register archers"})
		}
		if count > 0 {
			return c.Status(409).JSON(fiber.Map{"error": ErrDuplicateLicense.Error(), "license": in.License, "position": pos})
		}
	}

	var created []models.Archer
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		series, err := findOrCreateSeries(tx, req.SeriesNumber)
		if err != nil {
			return err
		}
		if req.TargetNumber > series.NumberOfTargets {
			return fiber.NewError(400, "target_number exceeds series target count")
		}

		var occupied []models.Archer
		if err := tx.Where("series_id = ? AND target_number = ?", series.ID, req.TargetNumber).Find(&occupied).Error; err != nil {
			return err
		}
		taken := make(map[string]bool, len(occupied))
		for _, a := range occupied {
			if a.Position != nil {
				taken[*a.Position] = true
			}
		}

		for _, pos := range []string{models.PositionA, models.PositionB, models.PositionC, models.PositionD} {
			in, ok := submitted[pos]
			if !ok {
				continue
			}
			if taken[pos] {
				return fiber.NewError(409, "position "+pos+" already occupied on that target")
			}
			position := pos
			targetNumber := req.TargetNumber
			seriesID := series.ID
			archer := models.Archer{
				Name:         strings.TrimSpace(in.Name),
				FirstName:    strings.TrimSpace(in.FirstName),
				License:      strings.TrimSpace(in.License),
				Category:     in.Category,
				Weapon:       in.Weapon,
				Club:         strings.TrimSpace(in.Club),
				SeriesID:     &seriesID,
				TargetNumber: &targetNumber,
				Position:     &position,
			}
			if err := tx.Create(&archer).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fiber.NewError(409, ErrDuplicateLicense.Error())
				}
				return err
			}
			created = append(created, archer)
		}
		return nil
	})
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		log.Printf("ERROR registering archers: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to register archers"})
	}

	return c.Status(201).JSON(fiber.Map{"archers": created})
}

func (s *ArcherService) GetAllArchers(c *fiber.Ctx) error {
	var archers []models.Archer
	if err := s.DB.Order("name, first_name").Find(&archers).Error; err != nil {
		log.Printf("ERROR listing archers: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list archers"})
	}
	return c.JSON(fiber.Map{"archers": archers})
}

func (s *ArcherService) GetArcher(c *fiber.Ctx) error {
	var archer models.Archer
	if err := s.DB.First(&archer, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "archer not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to load archer"})
	}
	return c.JSON(archer)
}

// UpdateAssignment moves an archer to another series/target/position, or
// clears the assignment entirely when the body is {"clear": true}.
func (s *ArcherService) UpdateAssignment(c *fiber.Ctx) error {
	type Req struct {
		Clear        bool   `json:"clear"`
		SeriesNumber int    `json:"series_number"`
		TargetNumber int    `json:"target_number"`
		Position     string `json:"position"`
	}

	var archer models.Archer
	if err := s.DB.First(&archer, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "archer not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "failed to load archer"})
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	if req.Clear {
		err := s.DB.Model(&archer).Updates(map[string]interface{}{
			"series_id":     nil,
			"target_number": nil,
			"position":      nil,
		}).Error
		if err != nil {
			log.Printf("ERROR clearing assignment for archer %d: %v", archer.ID, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to update assignment"})
		}
		archer.SeriesID, archer.TargetNumber, archer.Position = nil, nil, nil
		return c.JSON(archer)
	}

	if req.SeriesNumber < 1 || req.TargetNumber < 1 || !models.ValidPosition(req.Position) {
		return c.Status(400).JSON(fiber.Map{"error": "series_number, target_number and position are required"})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		series, err := findOrCreateSeries(tx, req.SeriesNumber)
		if err != nil {
			return err
		}
		if req.TargetNumber > series.NumberOfTargets {
			return fiber.NewError(400, "target_number exceeds series target count")
		}

		var count int64
		err = tx.Model(&models.Archer{}).
			Where("series_id = ? AND target_number = ? AND position = ? AND id <> ?",
				series.ID, req.TargetNumber, req.Position, archer.ID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(409, "position "+req.Position+" already occupied on that target")
		}

		seriesID := series.ID
		targetNumber := req.TargetNumber
		position := req.Position
		archer.SeriesID = &seriesID
		archer.TargetNumber = &targetNumber
		archer.Position = &position
		return tx.Save(&archer).Error
	})
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		log.Printf("ERROR updating assignment for archer %d: %v", archer.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update assignment"})
	}

	return c.JSON(archer)
}

// DeleteArcher removes an archer. Results keep their rows; the ranking
// calculators ignore results whose archer no longer exists.
func (s *ArcherService) DeleteArcher(c *fiber.Ctx) error {
	res := s.DB.Delete(&models.Archer{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		log.Printf("ERROR deleting archer %s: %v", c.Params("id"), res.Error)
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete archer"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "archer not found"})
	}
	return c.JSON(fiber.Map{"message": "archer deleted"})
}
