package models

import "gorm.io/gorm"

// Category is a seeded reference row: either a competition category code
// (Type "category") or a bow type code (Type "weapon").
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Code string `json:"code" gorm:"uniqueIndex;not null"`
	Name string `json:"name" gorm:"not null"`
	Type string `json:"type" gorm:"index"`
}

// DefaultCategories holds the FSCF category and weapon codes seeded on first
// startup.
var DefaultCategories = []Category{
	// Championnat Jeune
	{Code: "BF", Name: "Benjamine", Type: "category"},
	{Code: "BH", Name: "Benjamin", Type: "category"},
	{Code: "MF", Name: "Minime fille", Type: "category"},
	{Code: "MH", Name: "Minime garçon", Type: "category"},
	{Code: "CF", Name: "Cadette", Type: "category"},
	{Code: "CH", Name: "Cadet", Type: "category"},
	// Championnat Adulte - Junior
	{Code: "JFCL", Name: "Junior femme arc classique", Type: "category"},
	{Code: "JFAP", Name: "Junior femme arc à poulie", Type: "category"},
	{Code: "JHCL", Name: "Junior homme arc classique", Type: "category"},
	{Code: "JHAP", Name: "Junior homme arc à poulie", Type: "category"},
	// Championnat Adulte - Senior
	{Code: "SFCL", Name: "Senior femme arc classique", Type: "category"},
	{Code: "SFAP", Name: "Senior femme arc à poulie", Type: "category"},
	{Code: "SHCL", Name: "Senior homme arc classique", Type: "category"},
	{Code: "SHAP", Name: "Senior homme arc à poulie", Type: "category"},
	// Championnat Adulte - Vétéran
	{Code: "VFCL", Name: "Vétéran femme arc classique", Type: "category"},
	{Code: "VFAP", Name: "Vétéran femme arc à poulie", Type: "category"},
	{Code: "VHCL", Name: "Vétéran homme arc classique", Type: "category"},
	{Code: "VHAP", Name: "Vétéran homme arc à poulie", Type: "category"},
	// Championnat Adulte - Super Vétéran
	{Code: "SVFCL", Name: "Super vétéran femme arc classique", Type: "category"},
	{Code: "SVFAP", Name: "Super vétéran femme arc à poulie", Type: "category"},
	{Code: "SVHCL", Name: "Super vétéran homme arc classique", Type: "category"},
	{Code: "SVHAP", Name: "Super vétéran homme arc à poulie", Type: "category"},
	// Types d'arc
	{Code: "CL", Name: "Arc Classique", Type: "weapon"},
	{Code: "CO", Name: "Arc à Poulies", Type: "weapon"},
	{Code: "BB", Name: "Bare Bow", Type: "weapon"},
	{Code: "AD", Name: "Arc Droit", Type: "weapon"},
}

var categoryNames = buildNameIndex("category")
var weaponNames = buildNameIndex("weapon")

func buildNameIndex(kind string) map[string]string {
	idx := make(map[string]string)
	for _, c := range DefaultCategories {
		if c.Type == kind {
			idx[c.Code] = c.Name
		}
	}
	return idx
}

// CategoryName returns the display name for a category code, or the code
// itself when unknown.
func CategoryName(code string) string {
	if name, ok := categoryNames[code]; ok {
		return name
	}
	return code
}

// WeaponName returns the display name for a weapon code, or the code itself
// when unknown.
func WeaponName(code string) string {
	if name, ok := weaponNames[code]; ok {
		return name
	}
	return code
}

// SeedDefaultCategories inserts any missing default rows. Already seeded
// codes keep their current name so a renamed category survives restarts.
func SeedDefaultCategories(db *gorm.DB) error {
	for _, c := range DefaultCategories {
		seed := c
		err := db.Where(Category{Code: seed.Code}).FirstOrCreate(&seed).Error
		if err != nil {
			return err
		}
	}
	return nil
}
