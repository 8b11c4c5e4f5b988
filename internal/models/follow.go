package models

import (
	"time"
)

// Follow is a directed edge in the social graph: the follower subscribes to
// the author's posts. The composite unique index keeps the edge singular;
// self-follows are rejected in the service layer.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;index;uniqueIndex:idx_follower_author" json:"follower_id"`
	Follower   User      `gorm:"foreignKey:FollowerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"follower"`
	AuthorID   uint      `gorm:"not null;index;uniqueIndex:idx_follower_author" json:"author_id"`
	Author     User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	CreatedAt  time.Time `json:"created_at"`
}
