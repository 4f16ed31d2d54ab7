package models

import (
	"time"

	"github.com/google/uuid"
)

// ReminderPlant is a plant tracked by the watering reminder feature
type ReminderPlant struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name          string    `json:"name" gorm:"not null" binding:"required"`
	Location      string    `json:"location" gorm:"not null"`
	ImageURL      string    `json:"imageUrl" gorm:"not null"`
	NextWatering  time.Time `json:"nextWatering" gorm:"not null;index"`
	LastWatered   time.Time `json:"lastWatered" gorm:"not null"`
	CareSchedule  JSONB     `json:"careSchedule" gorm:"type:jsonb;default:'{}'"`
	Notifications bool      `json:"notifications" gorm:"default:false"`
	UserEmail     string    `json:"userEmail"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (ReminderPlant) TableName() string {
	return "reminder_plants"
}
