package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Like records a user who liked a post
type Like struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
}

// LikeList is a JSONB-backed array of likes
type LikeList []Like

func (l LikeList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *LikeList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Comment is an embedded post comment
type Comment struct {
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// CommentList is a JSONB-backed array of comments
type CommentList []Comment

func (c CommentList) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *CommentList) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, c)
}

// Post represents a community sharing post
type Post struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	AuthorID  uuid.UUID   `json:"author_id" gorm:"type:uuid;not null;index"`
	Content   string      `json:"content" gorm:"not null" binding:"required"`
	Image     string      `json:"image"`
	Likes     LikeList    `json:"likes" gorm:"type:jsonb;default:'[]'"`
	Comments  CommentList `json:"comments" gorm:"type:jsonb;default:'[]'"`
	Tags      StringList  `json:"tags" gorm:"type:jsonb;default:'[]'"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	// Relations
	Author User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

func (Post) TableName() string {
	return "posts"
}
