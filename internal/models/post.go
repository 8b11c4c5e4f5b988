package models

import (
	"time"
)

type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Text     string `gorm:"type:text;not null" json:"text"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	GroupID  *uint  `gorm:"index" json:"group_id"` // Nullable, cleared when the group is deleted
	Group    *Group `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"group"`
	Image    string `json:"image"` // Stored file path, optional
	// CreatedAt is the publication time. It is assigned once by the system
	// and updates never touch it.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Filled at query time, not a database column
	CommentCount int `gorm:"-" json:"comment_count"`
}
