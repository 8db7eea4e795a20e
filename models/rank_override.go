package models

import (
	"time"
)

// RankOverride is an operator-assigned tie-break. It only ever reorders
// entries inside a band of equal scores; the score comparison always wins.
// Identity is (RankingType, CategoryKey, EntityID). Overrides referencing
// deleted archers/pairs/clubs are left in place and simply never match.
type RankOverride struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RankingType string    `json:"ranking_type" gorm:"not null;uniqueIndex:idx_rank_override_identity"`
	CategoryKey string    `json:"category_key" gorm:"not null;uniqueIndex:idx_rank_override_identity"`
	EntityID    string    `json:"entity_id" gorm:"not null;uniqueIndex:idx_rank_override_identity"`
	ManualRank  int       `json:"manual_rank" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
