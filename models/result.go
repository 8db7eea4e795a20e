package models

import (
	"time"
)

// Score bounds per FSCF scoring sheets.
const (
	MaxIndividualScore = 300
	MaxPairScore       = 310
)

// Pair types: AC is the pair at positions A and C of a target, BD at B and D.
const (
	PairTypeAC = "AC"
	PairTypeBD = "BD"
)

// ValidPairType reports whether t is one of the two pair types.
func ValidPairType(t string) bool {
	return t == PairTypeAC || t == PairTypeBD
}

// Result is polymorphic: either an individual result (ArcherID +
// IndividualScore) or a pair result (SeriesID + TargetNumber + PairType +
// PairScore). The two kinds never share one row; which pointer group is
// populated decides the kind.
type Result struct {
	ID uint `json:"id" gorm:"primaryKey"`

	ArcherID        *uint `json:"archer_id,omitempty" gorm:"index"`
	IndividualScore *int  `json:"individual_score,omitempty"`

	SeriesID     *uint   `json:"series_id,omitempty" gorm:"index"`
	TargetNumber *int    `json:"target_number,omitempty"`
	PairType     *string `json:"pair_type,omitempty" gorm:"type:varchar(2)"`
	PairScore    *int    `json:"pair_score,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsIndividual reports whether the result carries an individual score.
func (r *Result) IsIndividual() bool {
	return r.ArcherID != nil && r.IndividualScore != nil
}

// IsPair reports whether the result carries a pair score.
func (r *Result) IsPair() bool {
	return r.SeriesID != nil && r.TargetNumber != nil &&
		r.PairType != nil && r.PairScore != nil
}
