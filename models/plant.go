package models

import (
	"time"

	"github.com/google/uuid"
)

// Plant is an encyclopedia entry with care guidance
type Plant struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name             string     `json:"name" gorm:"not null" binding:"required"`
	ScientificName   string     `json:"scientific_name"`
	Description      string     `json:"description"`
	CareInstructions JSONB      `json:"care_instructions" gorm:"type:jsonb;default:'{}'"`
	PlantingTips     StringList `json:"planting_tips" gorm:"type:jsonb;default:'[]'"`
	CommonProblems   StringList `json:"common_problems" gorm:"type:jsonb;default:'[]'"`
	SeasonalCare     JSONB      `json:"seasonal_care" gorm:"type:jsonb;default:'{}'"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Plant) TableName() string {
	return "plants"
}
