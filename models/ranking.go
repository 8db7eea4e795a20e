package models

import (
	"fmt"
	"strconv"
)

// The seven ranking views.
const (
	RankingIndividual              = "individual"
	RankingIndividualByCategory    = "individual-by-category"
	RankingIndividualByCategoryBow = "individual-by-category-weapon"
	RankingPair                    = "pair"
	RankingPairByCategory          = "pair-by-category"
	RankingPairByCategoryBow       = "pair-by-category-weapon"
	RankingClub                    = "club"
)

// CategoryKeyAll is the category key of the ungrouped views.
const CategoryKeyAll = "all"

// ValidRankingType reports whether t names one of the seven views.
func ValidRankingType(t string) bool {
	switch t {
	case RankingIndividual, RankingIndividualByCategory, RankingIndividualByCategoryBow,
		RankingPair, RankingPairByCategory, RankingPairByCategoryBow, RankingClub:
		return true
	}
	return false
}

// CategoryWeaponKey builds the composite group key of the by-category-and-
// weapon views.
func CategoryWeaponKey(category, weapon string) string {
	return category + "-" + weapon
}

// RankedItem is the tagged union over the three entry kinds. Every entry
// exposes its raw score and the entity id used to address rank overrides,
// so no caller ever has to guess a kind from field presence.
type RankedItem interface {
	RankScore() int
	RankEntityID() string
}

// IndividualEntry is one row of the individual rankings.
type IndividualEntry struct {
	Archer Archer `json:"archer"`
	Score  int    `json:"score"`
}

func (e IndividualEntry) RankScore() int { return e.Score }

func (e IndividualEntry) RankEntityID() string {
	return strconv.FormatUint(uint64(e.Archer.ID), 10)
}

// PairEntry is one row of the pair rankings. Archers may be empty when no
// archer sits on the referenced positions yet; the score still ranks.
type PairEntry struct {
	SeriesID     uint     `json:"series_id"`
	TargetNumber int      `json:"target_number"`
	PairType     string   `json:"pair_type"`
	Score        int      `json:"score"`
	Archers      []Archer `json:"archers"`
}

func (e PairEntry) RankScore() int { return e.Score }

func (e PairEntry) RankEntityID() string {
	return fmt.Sprintf("%d-%d-%s", e.SeriesID, e.TargetNumber, e.PairType)
}

// ClubEntry is one row of the club ranking. Total is always
// IndividualTotal + PairTotal.
type ClubEntry struct {
	Club            string `json:"club"`
	IndividualTotal int    `json:"individual_total"`
	PairTotal       int    `json:"pair_total"`
	Total           int    `json:"total"`
}

func (e ClubEntry) RankScore() int { return e.Total }

func (e ClubEntry) RankEntityID() string { return e.Club }

// CategoryWeaponGroup is one section of the individual by-category-and-weapon
// view.
type CategoryWeaponGroup struct {
	Category string            `json:"category"`
	Weapon   string            `json:"weapon"`
	Archers  []IndividualEntry `json:"archers"`
}

// PairCategoryWeaponGroup is one section of the pair by-category-and-weapon
// view.
type PairCategoryWeaponGroup struct {
	Category string      `json:"category"`
	Weapon   string      `json:"weapon"`
	Pairs    []PairEntry `json:"pairs"`
}

// RankedRow is the display tuple handed to the presentation layer. It carries
// everything needed to render a table row and its up/down/reset controls
// without re-deriving tie or override state.
type RankedRow[T RankedItem] struct {
	DisplayRank   int  `json:"display_rank"`
	Item          T    `json:"item"`
	HasOverride   bool `json:"has_override"`
	IsTied        bool `json:"is_tied"`
	IsFirstInBand bool `json:"is_first_in_band"`
	IsLastInBand  bool `json:"is_last_in_band"`
}

// Rank edit actions.
const (
	RankActionUp    = "up"
	RankActionDown  = "down"
	RankActionReset = "reset"
)

// RankCommand is one operator rank-edit request, decoupled from any UI event
// system. CurrentRank is the zero-based display position the operator acted
// on; the engine re-resolves it against a fresh ranking before applying.
type RankCommand struct {
	Action      string `json:"action"`
	RankingType string `json:"ranking_type"`
	CategoryKey string `json:"category_key"`
	EntityID    string `json:"entity_id"`
	CurrentRank int    `json:"current_rank"`
}
