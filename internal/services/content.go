package services

import (
	"strings"

	"inkwell/internal/db"
	apperr "inkwell/internal/errors"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostInput carries the author-editable fields of a post.
type PostInput struct {
	Text    string
	GroupID *uint
	Image   string // stored file path, empty means unchanged / none
}

// CreatePost stores a new post for the author. The id and publication time
// are assigned by the system.
func CreatePost(authorID uint, input PostInput) (*models.Post, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, &apperr.ValidationError{Field: "text", Message: "text must not be empty"}
	}

	post := models.Post{
		Text:     input.Text,
		AuthorID: authorID,
		GroupID:  input.GroupID,
		Image:    input.Image,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost replaces the editable fields in place. Only the author may
// edit; the author and publication time are never altered.
func UpdatePost(post *models.Post, editorID uint, input PostInput) error {
	if post.AuthorID != editorID {
		return apperr.ErrForbidden
	}
	if strings.TrimSpace(input.Text) == "" {
		return &apperr.ValidationError{Field: "text", Message: "text must not be empty"}
	}

	updates := map[string]interface{}{
		"text":     input.Text,
		"group_id": input.GroupID,
	}
	if input.Image != "" {
		updates["image"] = input.Image
	}
	return db.DB.Model(post).Updates(updates).Error
}

// DeletePost removes the post and its comments. Only the author may delete.
func DeletePost(post *models.Post, editorID uint) error {
	if post.AuthorID != editorID {
		return apperr.ErrForbidden
	}
	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
}

// CreateComment appends a comment to the post with a system timestamp.
func CreateComment(postID, authorID uint, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &apperr.ValidationError{Field: "text", Message: "text must not be empty"}
	}

	comment := models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Text:     text,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteGroup removes the group and clears the group reference on its posts.
// The posts themselves survive.
func DeleteGroup(groupID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Post{}).
			Where("group_id = ?", groupID).
			UpdateColumn("group_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, groupID).Error
	})
}

// DeleteAccount removes a user and everything hanging off the identity: the
// user's follow edges in both directions, their comments, comments on their
// posts, and finally their posts. Done explicitly in one transaction so the
// behavior does not depend on database-side referential actions.
func DeleteAccount(userID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("follower_id = ? OR author_id = ?", userID, userID).
			Delete(&models.Follow{}).Error
		if err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", userID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		ownPosts := tx.Model(&models.Post{}).Select("id").Where("author_id = ?", userID)
		if err := tx.Where("post_id IN (?)", ownPosts).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
}
