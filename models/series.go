package models

import (
	"time"
)

// DefaultTargetCount is used when a registration references a series number
// that does not exist yet and the series has to be created on the fly.
const DefaultTargetCount = 10

// Series is a numbered shooting round comprising NumberOfTargets targets.
// Lookup is by Number; storage does not enforce uniqueness of Number but
// registration always reuses the first match.
type Series struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Number          int       `json:"number" gorm:"not null;index"`
	NumberOfTargets int       `json:"number_of_targets" gorm:"default:10"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}
