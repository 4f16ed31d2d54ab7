package models

import (
	"time"

	"github.com/google/uuid"
)

// User status values written by the presence transition function.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User represents a registered gardener
type User struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name       string     `json:"name" gorm:"not null" binding:"required"`
	Email      string     `json:"email" gorm:"uniqueIndex;not null" binding:"required"`
	Password   string     `json:"-" gorm:"not null"`
	Status     string     `json:"status" gorm:"default:inactive;index"`
	LastActive *time.Time `json:"last_active" gorm:"index"`
	LastLogin  *time.Time `json:"last_login"`
	LastLogout *time.Time `json:"last_logout"`
	LoginCount int        `json:"login_count" gorm:"default:0"`
	IsAdmin    bool       `json:"is_admin" gorm:"default:false"`
	Avatar     string     `json:"avatar"`
	Phone      string     `json:"phone"`
	Location   string     `json:"location"`
	JoinDate   time.Time  `json:"join_date" gorm:"autoCreateTime"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// PresenceRecord is the Redis-cached view of a user's presence
type PresenceRecord struct {
	UserID   string    `json:"user_id"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"last_seen"`
}

// OnlineUsersResponse lists the users currently marked online
type OnlineUsersResponse struct {
	Count int              `json:"count"`
	Users []PresenceRecord `json:"users"`
}
