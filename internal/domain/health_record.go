// File: internal/domain/health_record.go
package domain

import (
	"errors"
	"time"
)

// RecordCategory identifies which variant of a health record is populated.
type RecordCategory string

const (
	CategoryMeal      RecordCategory = "meal"
	CategoryLabResult RecordCategory = "lab_result"
	CategorySymptom   RecordCategory = "symptom"
)

// Categories lists every record category in the order the context block
// renders them.
var Categories = []RecordCategory{CategoryMeal, CategoryLabResult, CategorySymptom}

// Meal is a logged meal entry.
type Meal struct {
	Description string `json:"description"`
	Calories    int    `json:"calories,omitempty"`
	MealTime    string `json:"meal_time,omitempty"` // breakfast, lunch, dinner, snack
}

// LabResult is a single lab measurement.
type LabResult struct {
	TestName       string `json:"test_name"`
	Value          string `json:"value"`
	Unit           string `json:"unit,omitempty"`
	ReferenceRange string `json:"reference_range,omitempty"`
}

// Symptom is a self-reported symptom entry.
type Symptom struct {
	Description string `json:"description"`
	Severity    int    `json:"severity,omitempty"` // 1-10
	Duration    string `json:"duration,omitempty"`
}

// HealthRecord is a tagged union: Category selects which of Meal, LabResult
// or Symptom is set. Exactly one variant is non-nil on a valid record.
type HealthRecord struct {
	ID         uint           `json:"id" gorm:"primarykey"`
	UserID     uint           `json:"user_id" gorm:"not null;index"`
	Category   RecordCategory `json:"category" gorm:"not null;index"`
	RecordedAt time.Time      `json:"recorded_at" gorm:"not null;index"`

	Meal      *Meal      `json:"meal,omitempty" gorm:"-"`
	LabResult *LabResult `json:"lab_result,omitempty" gorm:"-"`
	Symptom   *Symptom   `json:"symptom,omitempty" gorm:"-"`

	// Data holds the JSON-encoded variant for persistence. The repository
	// keeps it in sync with the typed variant fields.
	Data string `json:"-" gorm:"type:text;not null"`
}

// Validate checks that the category matches the populated variant.
func (r *HealthRecord) Validate() error {
	if r.UserID == 0 {
		return errors.New("user ID is required")
	}
	switch r.Category {
	case CategoryMeal:
		if r.Meal == nil || r.Meal.Description == "" {
			return errors.New("meal record requires a description")
		}
	case CategoryLabResult:
		if r.LabResult == nil || r.LabResult.TestName == "" {
			return errors.New("lab result record requires a test name")
		}
	case CategorySymptom:
		if r.Symptom == nil || r.Symptom.Description == "" {
			return errors.New("symptom record requires a description")
		}
	default:
		return errors.New("unknown record category")
	}
	return nil
}
