package services

import (
	"errors"

	"inkwell/internal/db"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Follow creates the follower -> author edge. Following yourself, or an
// author you already follow, is a no-op.
func Follow(followerID, authorID uint) error {
	if followerID == authorID {
		return nil
	}

	var existing models.Follow
	err := db.DB.Where("follower_id = ? AND author_id = ?", followerID, authorID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return db.DB.Create(&models.Follow{
		FollowerID: followerID,
		AuthorID:   authorID,
	}).Error
}

// Unfollow removes the edge if present; removing a missing edge is a no-op.
func Unfollow(followerID, authorID uint) error {
	return db.DB.Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Follow{}).Error
}

// FollowerCount returns how many users follow the given user.
func FollowerCount(userID uint) int64 {
	var count int64
	db.DB.Model(&models.Follow{}).Where("author_id = ?", userID).Count(&count)
	return count
}

// FollowingCount returns how many authors the given user follows.
func FollowingCount(userID uint) int64 {
	var count int64
	db.DB.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count)
	return count
}

// IsFollowedBy reports whether the viewer follows the author.
func IsFollowedBy(authorID, viewerID uint) bool {
	var follow models.Follow
	err := db.DB.Where("follower_id = ? AND author_id = ?", viewerID, authorID).
		First(&follow).Error
	return err == nil
}
