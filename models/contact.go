package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactSubjects are the accepted contact form categories.
var ContactSubjects = []string{
	"plant-identification",
	"care-advice",
	"app-support",
	"partnership",
	"feedback",
	"other",
}

// Contact is a submitted contact form message
type Contact struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name      string    `json:"name" gorm:"not null" binding:"required"`
	Email     string    `json:"email" gorm:"not null" binding:"required"`
	Subject   string    `json:"subject" gorm:"not null" binding:"required"`
	Message   string    `json:"message" gorm:"not null" binding:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Contact) TableName() string {
	return "contacts"
}

// ValidSubject reports whether the contact subject is one of the accepted categories.
func ValidSubject(subject string) bool {
	for _, s := range ContactSubjects {
		if s == subject {
			return true
		}
	}
	return false
}
