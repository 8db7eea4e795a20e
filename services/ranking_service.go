package services

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"archery-competition-system/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// RankingService computes the seven ranking views and applies operator rank
// edits. Every computation re-reads archers, results and overrides from the
// store — a previously rendered list is never trusted, so a score entered
// concurrently is reflected by the next call.
type RankingService struct {
	DB *gorm.DB
}

func NewRankingService(db *gorm.DB) *RankingService {
	return &RankingService{DB: db}
}

// frCollator orders French category/club headings the way the printed sheets
// expect (é after e, not after z).
var frCollator = collate.New(language.French)

// snapshot reads the full archer and result collections plus a fresh
// override cache.
func (s *RankingService) snapshot() ([]models.Archer, []models.Result, *OverrideCache, error) {
	var archers []models.Archer
	if err := s.DB.Order("id").Find(&archers).Error; err != nil {
		return nil, nil, nil, err
	}
	var results []models.Result
	if err := s.DB.Order("id").Find(&results).Error; err != nil {
		return nil, nil, nil, err
	}
	cache, err := LoadOverrideCache(s.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	return archers, results, cache, nil
}

func toRankedItems[T models.RankedItem](entries []T) []models.RankedItem {
	items := make([]models.RankedItem, len(entries))
	for i, e := range entries {
		items[i] = e
	}
	return items
}

// fetchOrdered recomputes one view from a fresh snapshot and applies
// overrides. For grouped views categoryKey selects the group; an unknown key
// yields an empty list. The returned map carries each entity's effective
// rank (manual rank if overridden, discovery index otherwise).
func (s *RankingService) fetchOrdered(rankingType, categoryKey string) ([]models.RankedItem, map[string]int, *OverrideCache, error) {
	archers, results, cache, err := s.snapshot()
	if err != nil {
		return nil, nil, nil, err
	}

	var items []models.RankedItem
	switch rankingType {
	case models.RankingIndividual:
		items = toRankedItems(CalculateIndividualRanking(archers, results))
	case models.RankingIndividualByCategory:
		items = toRankedItems(CalculateIndividualRankingByCategory(archers, results)[categoryKey])
	case models.RankingIndividualByCategoryBow:
		items = toRankedItems(CalculateIndividualRankingByCategoryWeapon(archers, results)[categoryKey].Archers)
	case models.RankingPair:
		items = toRankedItems(CalculatePairRanking(results, archers))
	case models.RankingPairByCategory:
		items = toRankedItems(CalculatePairRankingByCategory(results, archers)[categoryKey])
	case models.RankingPairByCategoryBow:
		items = toRankedItems(CalculatePairRankingByCategoryWeapon(results, archers)[categoryKey].Pairs)
	case models.RankingClub:
		items = toRankedItems(CalculateClubRanking(archers, results))
	default:
		return nil, nil, nil, fmt.Errorf("%w: unknown ranking type %q", ErrValidation, rankingType)
	}

	effective := effectiveRanks(items, cache, rankingType, categoryKey)
	return ApplyOverrides(items, cache, rankingType, categoryKey), effective, cache, nil
}

// SwapRanks exchanges the effective manual ranks of the item at currentPos
// and its neighbor at currentPos+direction, then persists both overrides.
// An out-of-bounds neighbor is a no-op. The two writes are independent: if
// the second fails after the first succeeded the pair transiently disagrees
// until the operator retries.
func (s *RankingService) SwapRanks(rankingType, categoryKey, entityID string, currentPos, direction int) error {
	ordered, effective, _, err := s.fetchOrdered(rankingType, categoryKey)
	if err != nil {
		return err
	}

	idx := currentPos
	if idx < 0 || idx >= len(ordered) || ordered[idx].RankEntityID() != entityID {
		// The display position went stale (a score changed since the list
		// was rendered); re-locate the entity in the fresh ranking.
		idx = -1
		for i, item := range ordered {
			if item.RankEntityID() == entityID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: entity %q not in ranking %s/%s", ErrNotFound, entityID, rankingType, categoryKey)
		}
	}

	neighbor := idx + direction
	if neighbor < 0 || neighbor >= len(ordered) {
		return nil
	}

	rankHere := effective[ordered[idx].RankEntityID()]
	rankThere := effective[ordered[neighbor].RankEntityID()]

	if err := upsertOverride(s.DB, rankingType, categoryKey, ordered[idx].RankEntityID(), rankThere); err != nil {
		return err
	}
	return upsertOverride(s.DB, rankingType, categoryKey, ordered[neighbor].RankEntityID(), rankHere)
}

// ResetRank deletes the entity's override; it reverts to discovery order
// within its tie band. Resetting an absent override is a no-op.
func (s *RankingService) ResetRank(rankingType, categoryKey, entityID string) error {
	return deleteOverride(s.DB, rankingType, categoryKey, entityID)
}

// RankingGroup is one section of a grouped view in API responses.
type RankingGroup[T models.RankedItem] struct {
	CategoryKey  string                `json:"category_key"`
	Category     string                `json:"category"`
	CategoryName string                `json:"category_name"`
	Weapon       string                `json:"weapon,omitempty"`
	WeaponName   string                `json:"weapon_name,omitempty"`
	Rows         []models.RankedRow[T] `json:"rows"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return frCollator.CompareString(keys[i], keys[j]) < 0
	})
	return keys
}

func decorateGroup[T models.RankedItem](entries []T, cache *OverrideCache, rankingType, categoryKey string) []models.RankedRow[T] {
	ordered := ApplyOverrides(entries, cache, rankingType, categoryKey)
	return DecorateRows(ordered, cache, rankingType, categoryKey)
}

// GetAllRankings returns all seven views at once, decorated for rendering.
// This backs the printable rankings sheet.
func (s *RankingService) GetAllRankings(c *fiber.Ctx) error {
	archers, results, cache, err := s.snapshot()
	if err != nil {
		log.Printf("ERROR loading ranking snapshot: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to load rankings"})
	}

	individualAll := decorateGroup(CalculateIndividualRanking(archers, results),
		cache, models.RankingIndividual, models.CategoryKeyAll)

	byCategory := CalculateIndividualRankingByCategory(archers, results)
	individualByCategory := make([]RankingGroup[models.IndividualEntry], 0, len(byCategory))
	for _, key := range sortedKeys(byCategory) {
		individualByCategory = append(individualByCategory, RankingGroup[models.IndividualEntry]{
			CategoryKey:  key,
			Category:     key,
			CategoryName: models.CategoryName(key),
			Rows:         decorateGroup(byCategory[key], cache, models.RankingIndividualByCategory, key),
		})
	}

	byCategoryBow := CalculateIndividualRankingByCategoryWeapon(archers, results)
	individualByCategoryBow := make([]RankingGroup[models.IndividualEntry], 0, len(byCategoryBow))
	for _, key := range sortedKeys(byCategoryBow) {
		group := byCategoryBow[key]
		individualByCategoryBow = append(individualByCategoryBow, RankingGroup[models.IndividualEntry]{
			CategoryKey:  key,
			Category:     group.Category,
			CategoryName: models.CategoryName(group.Category),
			Weapon:       group.Weapon,
			WeaponName:   models.WeaponName(group.Weapon),
			Rows:         decorateGroup(group.Archers, cache, models.RankingIndividualByCategoryBow, key),
		})
	}

	pairAll := decorateGroup(CalculatePairRanking(results, archers),
		cache, models.RankingPair, models.CategoryKeyAll)

	pairByCategory := CalculatePairRankingByCategory(results, archers)
	pairByCategoryGroups := make([]RankingGroup[models.PairEntry], 0, len(pairByCategory))
	for _, key := range sortedKeys(pairByCategory) {
		pairByCategoryGroups = append(pairByCategoryGroups, RankingGroup[models.PairEntry]{
			CategoryKey:  key,
			Category:     key,
			CategoryName: models.CategoryName(key),
			Rows:         decorateGroup(pairByCategory[key], cache, models.RankingPairByCategory, key),
		})
	}

	pairByCategoryBow := CalculatePairRankingByCategoryWeapon(results, archers)
	pairByCategoryBowGroups := make([]RankingGroup[models.PairEntry], 0, len(pairByCategoryBow))
	for _, key := range sortedKeys(pairByCategoryBow) {
		group := pairByCategoryBow[key]
		pairByCategoryBowGroups = append(pairByCategoryBowGroups, RankingGroup[models.PairEntry]{
			CategoryKey:  key,
			Category:     group.Category,
			CategoryName: models.CategoryName(group.Category),
			Weapon:       group.Weapon,
			WeaponName:   models.WeaponName(group.Weapon),
			Rows:         decorateGroup(group.Pairs, cache, models.RankingPairByCategoryBow, key),
		})
	}

	clubAll := decorateGroup(CalculateClubRanking(archers, results),
		cache, models.RankingClub, models.CategoryKeyAll)

	return c.JSON(fiber.Map{
		"individual":                    individualAll,
		"individual_by_category":        individualByCategory,
		"individual_by_category_weapon": individualByCategoryBow,
		"pair":                          pairAll,
		"pair_by_category":              pairByCategoryGroups,
		"pair_by_category_weapon":       pairByCategoryBowGroups,
		"club":                          clubAll,
	})
}

// GetRanking returns a single view. Grouped views take ?category_key=.
func (s *RankingService) GetRanking(c *fiber.Ctx) error {
	rankingType := c.Params("type")
	if !models.ValidRankingType(rankingType) {
		return c.Status(400).JSON(fiber.Map{"error": "unknown ranking type"})
	}
	categoryKey := c.Query("category_key", models.CategoryKeyAll)

	ordered, _, cache, err := s.fetchOrdered(rankingType, categoryKey)
	if err != nil {
		log.Printf("ERROR computing ranking %s/%s: %v", rankingType, categoryKey, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute ranking"})
	}
	return c.JSON(fiber.Map{
		"ranking_type": rankingType,
		"category_key": categoryKey,
		"rows":         DecorateRows(ordered, cache, rankingType, categoryKey),
	})
}

// ExecuteRankCommand applies one operator rank edit (up, down or reset).
func (s *RankingService) ExecuteRankCommand(c *fiber.Ctx) error {
	var cmd models.RankCommand
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if !models.ValidRankingType(cmd.RankingType) {
		return c.Status(400).JSON(fiber.Map{"error": "unknown ranking type"})
	}
	if cmd.CategoryKey == "" {
		cmd.CategoryKey = models.CategoryKeyAll
	}
	if cmd.EntityID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "entity_id is required"})
	}

	var err error
	switch cmd.Action {
	case models.RankActionUp:
		err = s.SwapRanks(cmd.RankingType, cmd.CategoryKey, cmd.EntityID, cmd.CurrentRank, -1)
	case models.RankActionDown:
		err = s.SwapRanks(cmd.RankingType, cmd.CategoryKey, cmd.EntityID, cmd.CurrentRank, +1)
	case models.RankActionReset:
		err = s.ResetRank(cmd.RankingType, cmd.CategoryKey, cmd.EntityID)
	default:
		return c.Status(400).JSON(fiber.Map{"error": "action must be up, down or reset"})
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("ERROR applying rank command %+v: %v", cmd, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to apply rank edit"})
	}

	// Return the freshly re-ordered view so the operator sees the edit
	// applied against current scores.
	ordered, _, cache, err := s.fetchOrdered(cmd.RankingType, cmd.CategoryKey)
	if err != nil {
		log.Printf("ERROR recomputing ranking after command: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "edit applied but recomputation failed"})
	}
	return c.JSON(fiber.Map{
		"ranking_type": cmd.RankingType,
		"category_key": cmd.CategoryKey,
		"rows":         DecorateRows(ordered, cache, cmd.RankingType, cmd.CategoryKey),
	})
}
