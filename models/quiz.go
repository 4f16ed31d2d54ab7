package models

import (
	"time"

	"github.com/google/uuid"
)

// Question is a quiz question with exactly four options
type Question struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Question      string     `json:"question" gorm:"not null" binding:"required"`
	Options       StringList `json:"options" gorm:"type:jsonb;not null" binding:"required"`
	CorrectAnswer string     `json:"correctAnswer" gorm:"not null" binding:"required"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// QuizAttempt records a completed quiz run
type QuizAttempt struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID         *uuid.UUID `json:"user_id" gorm:"type:uuid"`
	Score          int        `json:"score" gorm:"not null"`
	TotalQuestions int        `json:"totalQuestions" gorm:"not null"`
	Percentage     int        `json:"percentage" gorm:"not null"`
	Timestamp      time.Time  `json:"timestamp" gorm:"autoCreateTime"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
