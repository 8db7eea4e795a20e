package models

import (
	"time"
)

// Target positions. A target holds up to 4 archers; A+C and B+D form the
// two scoring pairs.
const (
	PositionA = "A"
	PositionB = "B"
	PositionC = "C"
	PositionD = "D"
)

// ValidPosition reports whether p is one of the four target positions.
func ValidPosition(p string) bool {
	switch p {
	case PositionA, PositionB, PositionC, PositionD:
		return true
	}
	return false
}

// Archer is a registered competitor. The assignment fields (SeriesID,
// TargetNumber, Position) stay nil until the archer is placed on a target.
type Archer struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null;index"`
	FirstName    string    `json:"first_name" gorm:"not null"`
	License      string    `json:"license" gorm:"uniqueIndex;not null"`
	Category     string    `json:"category" gorm:"index"`
	Weapon       string    `json:"weapon"`
	Club         string    `json:"club"`
	SeriesID     *uint     `json:"series_id,omitempty" gorm:"index"`
	TargetNumber *int      `json:"target_number,omitempty"`
	Position     *string   `json:"position,omitempty" gorm:"type:varchar(1)"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// AssignedTo reports whether the archer sits on the given series/target slot.
func (a *Archer) AssignedTo(seriesID uint, targetNumber int) bool {
	return a.SeriesID != nil && *a.SeriesID == seriesID &&
		a.TargetNumber != nil && *a.TargetNumber == targetNumber
}
