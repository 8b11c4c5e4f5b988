package handlers

import (
	"net/http"

	"inkwell/internal/db"
	"inkwell/internal/feed"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// Show renders an author's page: their posts plus follower/following counts
// and, for a logged-in viewer, whether a follow or unfollow action applies.
func (h *ProfileHandler) Show(c *gin.Context) {
	username := c.Param("username")

	var author models.User
	if err := db.DB.Where("username = ?", username).First(&author).Error; err != nil {
		RenderError(c, http.StatusNotFound, "User not found")
		return
	}

	page := utils.StringToInt(c.Query("page"))
	pg, err := feed.Fetch(db.DB, feed.ByAuthor(username), page, feed.ProfilePageSize)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Failed to load the profile feed")
		return
	}
	feed.FillCommentCounts(db.DB, pg.Items)

	isFollowing := false
	isOwnProfile := false
	if viewer := middleware.CurrentUser(c); viewer != nil {
		isOwnProfile = viewer.ID == author.ID
		if !isOwnProfile {
			isFollowing = services.IsFollowedBy(author.ID, viewer.ID)
		}
	}

	Render(c, http.StatusOK, "profile.html", gin.H{
		"Title":          author.Username,
		"Author":         author,
		"Page":           pg,
		"PostCount":      pg.Total,
		"FollowerCount":  services.FollowerCount(author.ID),
		"FollowingCount": services.FollowingCount(author.ID),
		"IsFollowing":    isFollowing,
		"IsOwnProfile":   isOwnProfile,
		"PagePrefix":     "/" + author.Username + "?page=",
	})
}
