package feed

import (
	"log"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// FillCommentCounts fills CommentCount on each post with one grouped query
// instead of a count per item. A failed count only costs the badge numbers,
// so it is logged and the feed renders anyway.
func FillCommentCounts(gdb *gorm.DB, posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	err := gdb.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error
	if err != nil {
		log.Printf("Failed to count comments: %v", err)
		return
	}

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}
